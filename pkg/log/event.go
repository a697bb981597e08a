package log

import (
	"strings"
	"time"
)

// Event is one trace record. CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the engine instance that produced the event.
	SessionID string `cbor:"2,keyasint"`

	// Direction is IN for calls into the accessory, OUT for calls into the
	// engine.
	Direction Direction `cbor:"3,keyasint"`

	Layer    Layer    `cbor:"4,keyasint"`
	Category Category `cbor:"5,keyasint"`

	// AccessoryID is the accessory identifier ("11:22:33:44:55:66").
	AccessoryID string `cbor:"6,keyasint,omitempty"`

	// AID is the accessory instance ID assigned by the engine.
	AID uint64 `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Registration *RegistrationEvent `cbor:"10,keyasint,omitempty"`
	Access       *AccessEvent       `cbor:"11,keyasint,omitempty"`
	Notification *NotificationEvent `cbor:"12,keyasint,omitempty"`
	Error        *ErrorEventData    `cbor:"13,keyasint,omitempty"`
}

// Direction indicates which side initiated a call.
type Direction uint8

const (
	DirectionIn  Direction = 0
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// ParseDirection parses a direction name as returned by String.
func ParseDirection(s string) (Direction, bool) {
	return parseEnum(s, []Direction{DirectionIn, DirectionOut})
}

// Layer indicates where the event was captured.
type Layer uint8

const (
	// LayerEngine is the engine registry (registration, event push).
	LayerEngine Layer = 0
	// LayerController is the controller side (remote reads and writes).
	LayerController Layer = 1
	// LayerBridge is a mirror of characteristic values, such as MQTT.
	LayerBridge Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerEngine:
		return "ENGINE"
	case LayerController:
		return "CONTROLLER"
	case LayerBridge:
		return "BRIDGE"
	default:
		return "UNKNOWN"
	}
}

// ParseLayer parses a layer name as returned by String.
func ParseLayer(s string) (Layer, bool) {
	return parseEnum(s, []Layer{LayerEngine, LayerController, LayerBridge})
}

// Category classifies the event.
type Category uint8

const (
	CategoryRegistration Category = 0
	CategoryAccess       Category = 1
	CategoryNotification Category = 2
	CategoryError        Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryRegistration:
		return "REGISTRATION"
	case CategoryAccess:
		return "ACCESS"
	case CategoryNotification:
		return "NOTIFICATION"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseCategory parses a category name as returned by String.
func ParseCategory(s string) (Category, bool) {
	return parseEnum(s, []Category{CategoryRegistration, CategoryAccess, CategoryNotification, CategoryError})
}

// RegistrationEvent records engine setup calls.
type RegistrationEvent struct {
	Step RegistrationStep `cbor:"1,keyasint"`

	// Name is the accessory name (StepAccessory).
	Name string `cbor:"2,keyasint,omitempty"`

	// Category is the accessory category number (StepAccessory).
	Category uint8 `cbor:"3,keyasint,omitempty"`

	// Service is the service type (StepService).
	Service string `cbor:"4,keyasint,omitempty"`

	// Characteristics is the number of characteristics added (StepService).
	Characteristics int `cbor:"5,keyasint,omitempty"`
}

// RegistrationStep identifies the registration call.
type RegistrationStep uint8

const (
	StepInit            RegistrationStep = 0
	StepAccessory       RegistrationStep = 1
	StepAccessoryObject RegistrationStep = 2
	StepService         RegistrationStep = 3
	StepStart           RegistrationStep = 4
)

// String returns the step name.
func (s RegistrationStep) String() string {
	switch s {
	case StepInit:
		return "INIT"
	case StepAccessory:
		return "ACCESSORY"
	case StepAccessoryObject:
		return "ACCESSORY_OBJECT"
	case StepService:
		return "SERVICE"
	case StepStart:
		return "START"
	default:
		return "UNKNOWN"
	}
}

// AccessEvent records one controller access to a characteristic.
type AccessEvent struct {
	Op AccessOp `cbor:"1,keyasint"`

	// IID is the characteristic instance ID.
	IID uint64 `cbor:"2,keyasint"`

	// Type is the characteristic type UUID.
	Type string `cbor:"3,keyasint"`

	// Value read or written (bool, int, float32 or string). Decoded events
	// hold the CBOR representation (uint64, int64, float64).
	Value any `cbor:"4,keyasint,omitempty"`

	// Status is the HAP status code, 0 on success.
	Status int `cbor:"5,keyasint,omitempty"`

	// Duration of the accessory callback, stored as nanoseconds.
	Duration *time.Duration `cbor:"6,keyasint,omitempty"`
}

// AccessOp is the kind of characteristic access.
type AccessOp uint8

const (
	OpRead        AccessOp = 0
	OpWrite       AccessOp = 1
	OpSubscribe   AccessOp = 2
	OpUnsubscribe AccessOp = 3
)

// String returns the operation name.
func (o AccessOp) String() string {
	switch o {
	case OpRead:
		return "READ"
	case OpWrite:
		return "WRITE"
	case OpSubscribe:
		return "SUBSCRIBE"
	case OpUnsubscribe:
		return "UNSUBSCRIBE"
	default:
		return "UNKNOWN"
	}
}

// NotificationEvent records a value pushed to a subscriber.
type NotificationEvent struct {
	IID         uint64 `cbor:"1,keyasint"`
	Type        string `cbor:"2,keyasint"`
	EventHandle string `cbor:"3,keyasint"`
	Value       any    `cbor:"4,keyasint,omitempty"`
}

// ErrorEventData records an error at any layer.
type ErrorEventData struct {
	Layer   Layer  `cbor:"1,keyasint"`
	Message string `cbor:"2,keyasint"`

	// Code is the HAP status code, if applicable.
	Code *int `cbor:"3,keyasint,omitempty"`

	// Context describes the operation that failed.
	Context string `cbor:"4,keyasint,omitempty"`
}

func parseEnum[E interface {
	~uint8
	String() string
}](s string, all []E) (E, bool) {
	for _, e := range all {
		if strings.EqualFold(e.String(), s) {
			return e, true
		}
	}
	var zero E
	return zero, false
}
