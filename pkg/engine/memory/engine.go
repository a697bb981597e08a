// Package memory provides an in-process HAP engine.
//
// The engine keeps the accessory database in memory and simulates a
// controller: tests, examples and the interactive simulator read, write and
// subscribe to characteristics through it exactly as a paired iOS device
// would through a network engine. Init callbacks run when Start is called.
package memory

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hap-go/hap-go/pkg/engine"
	"github.com/hap-go/hap-go/pkg/hap"
	"github.com/hap-go/hap-go/pkg/log"
)

// Errors returned by the memory engine.
var (
	ErrDuplicateAccessory     = errors.New("accessory id already registered")
	ErrUnknownCharacteristic  = errors.New("unknown characteristic")
	ErrInvalidDescriptor      = errors.New("invalid characteristic descriptor")
	ErrAccessoryObjectCreated = errors.New("accessory object already created")
)

// Event is a value pushed to a subscriber.
type Event struct {
	AID    uint64
	IID    uint64
	Type   hap.CharacteristicType
	Handle engine.EventHandle
	Value  hap.Value
	Time   time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithTrace sets the trace logger.
func WithTrace(l log.Logger) Option {
	return func(e *Engine) { e.trace = log.OrNoop(l) }
}

// WithLogger sets the operational logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock sets the time source used for events and traces.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine is an in-memory engine. It is safe for concurrent use; accessory
// callbacks are invoked without holding the engine lock.
type Engine struct {
	logger  *slog.Logger
	trace   log.Logger
	now     func() time.Time
	session string

	mu          sync.Mutex
	initCount   int
	nextHandle  engine.AccessoryHandle
	accessories []*accessoryEntry
	byHandle    map[engine.AccessoryHandle]*accessoryEntry
	byAID       map[uint64]*accessoryEntry
	subs        map[engine.EventHandle]*charEntry
	events      []Event
}

type accessoryEntry struct {
	handle   engine.AccessoryHandle
	aid      uint64
	info     engine.RegistrationInfo
	initFn   engine.InitFunc
	initDone bool
	object   engine.AccessoryObject
	nextIID  uint64
	services []*serviceEntry
	chars    map[uint64]*charEntry
}

type serviceEntry struct {
	iid   uint64
	typ   hap.ServiceType
	chars []*charEntry
}

type charEntry struct {
	acc  *accessoryEntry
	iid  uint64
	desc engine.Descriptor

	// last is the last value read, written or pushed.
	last   hap.Value
	handle engine.EventHandle
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:   slog.Default(),
		trace:    log.NoopLogger{},
		now:      time.Now,
		session:  uuid.NewString(),
		byHandle: make(map[engine.AccessoryHandle]*accessoryEntry),
		byAID:    make(map[uint64]*accessoryEntry),
		subs:     make(map[engine.EventHandle]*charEntry),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SessionID returns the trace session ID of this engine.
func (e *Engine) SessionID() string {
	return e.session
}

// Init records process-wide engine setup.
func (e *Engine) Init() error {
	e.mu.Lock()
	e.initCount++
	e.mu.Unlock()

	e.traceRegistration(nil, &log.RegistrationEvent{Step: log.StepInit})
	return nil
}

// InitCount returns how often Init was called.
func (e *Engine) InitCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initCount
}

// RegisterAccessory registers an accessory. initFn runs on the next Start.
func (e *Engine) RegisterAccessory(info engine.RegistrationInfo, initFn engine.InitFunc) (engine.AccessoryHandle, error) {
	e.mu.Lock()
	if e.initCount == 0 {
		e.mu.Unlock()
		return 0, engine.ErrNotInitialized
	}
	for _, a := range e.accessories {
		if a.info.ID == info.ID {
			e.mu.Unlock()
			return 0, fmt.Errorf("%w: %s", ErrDuplicateAccessory, info.ID)
		}
	}

	e.nextHandle++
	a := &accessoryEntry{
		handle: e.nextHandle,
		aid:    uint64(len(e.accessories) + 1),
		info:   info,
		initFn: initFn,
		chars:  make(map[uint64]*charEntry),
	}
	e.accessories = append(e.accessories, a)
	e.byHandle[a.handle] = a
	e.byAID[a.aid] = a
	e.mu.Unlock()

	e.traceRegistration(a, &log.RegistrationEvent{
		Step:     log.StepAccessory,
		Name:     info.Name,
		Category: uint8(info.Category),
	})
	return a.handle, nil
}

// Start runs the init callback of every accessory registered since the last
// Start, in registration order. Each callback runs exactly once. The first
// failing callback stops Start; callbacks that did not run stay pending.
func (e *Engine) Start() error {
	for {
		e.mu.Lock()
		var next *accessoryEntry
		for _, a := range e.accessories {
			if !a.initDone {
				next = a
				break
			}
		}
		if next == nil {
			e.mu.Unlock()
			return nil
		}
		next.initDone = true
		e.mu.Unlock()

		e.logger.Debug("running accessory init callback", "accessory", next.info.Name, "aid", next.aid)
		e.traceRegistration(next, &log.RegistrationEvent{Step: log.StepStart, Name: next.info.Name})
		if next.initFn == nil {
			continue
		}
		if err := next.initFn(); err != nil {
			e.traceError(next, log.LayerEngine, err, "init callback")
			return fmt.Errorf("init %s: %w", next.info.Name, err)
		}
	}
}

// AddAccessory creates the accessory object for a registered accessory.
func (e *Engine) AddAccessory(h engine.AccessoryHandle) (engine.AccessoryObject, error) {
	e.mu.Lock()
	a, ok := e.byHandle[h]
	if !ok {
		e.mu.Unlock()
		return 0, fmt.Errorf("%w: %d", engine.ErrUnknownAccessory, h)
	}
	if a.object != 0 {
		e.mu.Unlock()
		return 0, ErrAccessoryObjectCreated
	}
	a.object = engine.AccessoryObject(a.aid)
	a.nextIID = 1
	e.mu.Unlock()

	e.traceRegistration(a, &log.RegistrationEvent{Step: log.StepAccessoryObject})
	return a.object, nil
}

// AddServiceAndCharacteristics adds a service. Descriptors are copied;
// instance IDs are assigned in order, service first.
func (e *Engine) AddServiceAndCharacteristics(h engine.AccessoryHandle, obj engine.AccessoryObject, svc hap.ServiceType, descs []engine.Descriptor) error {
	for i := range descs {
		if err := validateDescriptor(&descs[i]); err != nil {
			return fmt.Errorf("%w: %s characteristic %d: %w", ErrInvalidDescriptor, svc, i, err)
		}
	}

	e.mu.Lock()
	a, ok := e.byHandle[h]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: %d", engine.ErrUnknownAccessory, h)
	}
	if a.object == 0 || a.object != obj {
		e.mu.Unlock()
		return fmt.Errorf("%w: %d", engine.ErrUnknownObject, obj)
	}

	s := &serviceEntry{iid: a.nextIID, typ: svc}
	a.nextIID++
	for _, d := range descs {
		c := &charEntry{acc: a, iid: a.nextIID, desc: d.Clone(), last: d.Value}
		a.nextIID++
		s.chars = append(s.chars, c)
		a.chars[c.iid] = c
	}
	a.services = append(a.services, s)
	e.mu.Unlock()

	e.traceRegistration(a, &log.RegistrationEvent{
		Step:            log.StepService,
		Service:         string(svc),
		Characteristics: len(descs),
	})
	return nil
}

func validateDescriptor(d *engine.Descriptor) error {
	if d.Type == "" {
		return errors.New("missing type")
	}
	kind := d.Format.Kind()
	if kind == hap.KindInvalid {
		return fmt.Errorf("unknown format %q", d.Format)
	}
	if d.Value.IsValid() && d.Value.Kind() != kind {
		return fmt.Errorf("%w: value %s for format %s", hap.ErrKindMismatch, d.Value.Kind(), d.Format)
	}
	if (d.Write != nil || d.Subscribe != nil) && d.Owner == nil {
		return errors.New("write or subscribe callback without owner")
	}
	return nil
}

// PushEvent records a value pushed to the subscriber behind ev.
func (e *Engine) PushEvent(h engine.AccessoryHandle, ev engine.EventHandle, v hap.Value) error {
	e.mu.Lock()
	c, ok := e.subs[ev]
	if !ok || c.acc.handle != h {
		e.mu.Unlock()
		return fmt.Errorf("%w: %q", engine.ErrUnknownEventHandle, ev)
	}
	c.last = v
	event := Event{AID: c.acc.aid, IID: c.iid, Type: c.desc.Type, Handle: ev, Value: v, Time: e.now()}
	e.events = append(e.events, event)
	e.mu.Unlock()

	e.emit(log.Event{
		Direction:   log.DirectionOut,
		Layer:       log.LayerEngine,
		Category:    log.CategoryNotification,
		AccessoryID: c.acc.info.ID,
		AID:         c.acc.aid,
		Notification: &log.NotificationEvent{
			IID:         c.iid,
			Type:        string(c.desc.Type),
			EventHandle: string(ev),
			Value:       v.Native(),
		},
	})
	return nil
}

// Events returns the values pushed so far.
func (e *Engine) Events() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.events)
}

// ClearEvents drops the recorded events.
func (e *Engine) ClearEvents() {
	e.mu.Lock()
	e.events = nil
	e.mu.Unlock()
}

func (e *Engine) emit(ev log.Event) {
	ev.Timestamp = e.now()
	ev.SessionID = e.session
	e.trace.Log(ev)
}

func (e *Engine) traceRegistration(a *accessoryEntry, r *log.RegistrationEvent) {
	ev := log.Event{
		Direction:    log.DirectionOut,
		Layer:        log.LayerEngine,
		Category:     log.CategoryRegistration,
		Registration: r,
	}
	if a != nil {
		ev.AccessoryID = a.info.ID
		ev.AID = a.aid
	}
	e.emit(ev)
}

func (e *Engine) traceError(a *accessoryEntry, layer log.Layer, err error, context string) {
	e.logger.Warn("engine error", "context", context, "error", err)
	code := int(hap.StatusFor(err))
	ev := log.Event{
		Direction: log.DirectionIn,
		Layer:     layer,
		Category:  log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   layer,
			Message: err.Error(),
			Code:    &code,
			Context: context,
		},
	}
	if a != nil {
		ev.AccessoryID = a.info.ID
		ev.AID = a.aid
	}
	e.emit(ev)
}

// Compile-time interface satisfaction check.
var _ engine.Engine = (*Engine)(nil)
