package engine

import (
	"errors"
	"slices"

	"github.com/hap-go/hap-go/pkg/hap"
)

// Engine errors.
var (
	ErrNotInitialized     = errors.New("engine not initialized")
	ErrUnknownAccessory   = errors.New("unknown accessory handle")
	ErrUnknownObject      = errors.New("unknown accessory object")
	ErrUnknownEventHandle = errors.New("unknown event handle")
	ErrAlreadyStarted     = errors.New("engine already started")
)

// AccessoryHandle identifies a registered accessory. Zero is never a valid handle.
type AccessoryHandle uint64

// AccessoryObject identifies the engine-side accessory database entry
// returned by AddAccessory. Zero is never a valid object.
type AccessoryObject uint64

// EventHandle is an opaque token for an active subscriber of a
// characteristic. The empty handle means no subscriber.
type EventHandle string

// RegistrationInfo holds the identity an accessory registers with.
type RegistrationInfo struct {
	Name          string
	ID            string
	SetupCode     string
	Manufacturer  string
	Category      hap.Category
	Port          int
	ConfigVersion int
}

// InitFunc is called by the engine, once, when it is ready for the
// accessory to add its services.
type InitFunc func() error

// Handler is the capability object an engine calls back into for one
// characteristic.
type Handler interface {
	ReadValue() (hap.Value, error)
	WriteValue(v hap.Value) error
	SetEventHandle(h EventHandle, enable bool) error
}

// ReadFunc returns the current value of the owner.
type ReadFunc func(owner Handler) (hap.Value, error)

// WriteFunc stores a value received from a controller.
type WriteFunc func(owner Handler, v hap.Value) error

// SubscribeFunc sets or clears the owner's subscriber handle.
type SubscribeFunc func(owner Handler, h EventHandle, enable bool) error

// Descriptor describes one characteristic to the engine.
type Descriptor struct {
	Type   hap.CharacteristicType
	Format hap.Format

	// Value is the value at registration time. For characteristics without
	// a Read function it is the static value served to controllers.
	Value hap.Value

	// Owner is passed to Read, Write and Subscribe. Nil for static
	// characteristics.
	Owner Handler

	Read      ReadFunc
	Write     WriteFunc
	Subscribe SubscribeFunc

	OverrideMax bool
	Max         hap.Value

	OverrideMin bool
	Min         hap.Value

	OverrideValidValues bool
	ValidValues         []int
}

// CanRead reports whether controllers may read the characteristic, either
// through Read or from the static Value.
func (d *Descriptor) CanRead() bool {
	return d.Read != nil || d.Value.IsValid()
}

// CanWrite reports whether controllers may write the characteristic.
func (d *Descriptor) CanWrite() bool {
	return d.Write != nil
}

// CanNotify reports whether controllers may subscribe to the characteristic.
// Only readable characteristics with an owner produce events.
func (d *Descriptor) CanNotify() bool {
	return d.Subscribe != nil && d.Read != nil
}

// Permissions returns the HAP permission strings for the descriptor
// ("pr", "pw", "ev").
func (d *Descriptor) Permissions() []string {
	perms := make([]string, 0, 3)
	if d.CanRead() {
		perms = append(perms, PermissionRead)
	}
	if d.CanWrite() {
		perms = append(perms, PermissionWrite)
	}
	if d.CanNotify() {
		perms = append(perms, PermissionEvents)
	}
	return perms
}

// Clone returns a copy that shares no memory with d.
func (d Descriptor) Clone() Descriptor {
	d.ValidValues = slices.Clone(d.ValidValues)
	return d
}

// HAP permission strings.
const (
	PermissionRead   = "pr"
	PermissionWrite  = "pw"
	PermissionEvents = "ev"
)

// Engine is a HAP protocol engine.
type Engine interface {
	// Init performs process-wide engine setup. The adapter calls it once.
	Init() error

	// RegisterAccessory registers an accessory identity. The engine calls
	// initFn once, later, to let the accessory add its services.
	RegisterAccessory(info RegistrationInfo, initFn InitFunc) (AccessoryHandle, error)

	// AddAccessory creates the accessory database entry for a handle.
	AddAccessory(h AccessoryHandle) (AccessoryObject, error)

	// AddServiceAndCharacteristics adds one service with its
	// characteristics. The engine must not retain descs.
	AddServiceAndCharacteristics(h AccessoryHandle, obj AccessoryObject, svc hap.ServiceType, descs []Descriptor) error

	// PushEvent delivers a changed value to the subscriber behind ev.
	PushEvent(h AccessoryHandle, ev EventHandle, v hap.Value) error
}
