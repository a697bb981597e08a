// Package hapserver provides an engine backed by github.com/brutella/hap.
//
// brutella/hap owns pairing, mDNS advertisement and the HTTP/TLV transport.
// This package translates the descriptors registered by the adapter into
// brutella characteristics and forwards remote reads, writes and event
// pushes between the two.
package hapserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	haps "github.com/brutella/hap"
	hapacc "github.com/brutella/hap/accessory"
	haplog "github.com/brutella/hap/log"
	hapsvc "github.com/brutella/hap/service"
	"github.com/google/uuid"

	"github.com/hap-go/hap-go/pkg/engine"
	"github.com/hap-go/hap-go/pkg/hap"
	"github.com/hap-go/hap-go/pkg/log"
)

// Errors returned by the engine.
var (
	ErrNoStoragePath   = errors.New("storage path is required")
	ErrNoAccessories   = errors.New("no accessories registered")
	ErrSetupCodeDiffer = errors.New("accessories use different setup codes")
)

// Config configures the engine.
type Config struct {
	// StoragePath is the directory brutella/hap keeps pairings and keys in.
	StoragePath string

	// Addr is the listen address. Empty uses the port of the first
	// accessory, or a random port if that is zero.
	Addr string

	// Debug enables brutella/hap debug output.
	Debug bool

	Logger *slog.Logger
	Trace  log.Logger
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		StoragePath: "hap-data",
	}
}

// Engine is a brutella/hap engine. Accessories must be registered before
// ListenAndServe is called.
type Engine struct {
	config  Config
	logger  *slog.Logger
	trace   log.Logger
	session string

	mu          sync.Mutex
	initialized bool
	serving     bool
	nextHandle  engine.AccessoryHandle
	accessories []*accessoryEntry
	byHandle    map[engine.AccessoryHandle]*accessoryEntry
	events      map[engine.EventHandle]*eventTarget
	store       haps.Store
}

type accessoryEntry struct {
	handle   engine.AccessoryHandle
	info     engine.RegistrationInfo
	initFn   engine.InitFunc
	initDone bool
	object   engine.AccessoryObject
	acc      *hapacc.A
}

type eventTarget struct {
	acc  *accessoryEntry
	c    *remoteChar
	kind hap.Kind
}

// New creates an engine.
func New(config Config) *Engine {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		config:   config,
		logger:   logger,
		trace:    log.OrNoop(config.Trace),
		session:  uuid.NewString(),
		byHandle: make(map[engine.AccessoryHandle]*accessoryEntry),
		events:   make(map[engine.EventHandle]*eventTarget),
	}
}

// Init opens the pairing store.
func (e *Engine) Init() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.config.StoragePath == "" {
		return ErrNoStoragePath
	}
	if e.config.Debug {
		haplog.Debug.Enable()
	}
	e.store = haps.NewFsStore(e.config.StoragePath)
	e.initialized = true

	e.traceRegistration(nil, &log.RegistrationEvent{Step: log.StepInit})
	return nil
}

// RegisterAccessory creates the brutella accessory. initFn runs when
// ListenAndServe is called.
func (e *Engine) RegisterAccessory(info engine.RegistrationInfo, initFn engine.InitFunc) (engine.AccessoryHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return 0, engine.ErrNotInitialized
	}
	if e.serving {
		return 0, engine.ErrAlreadyStarted
	}

	e.nextHandle++
	a := &accessoryEntry{
		handle: e.nextHandle,
		info:   info,
		initFn: initFn,
		acc: hapacc.New(hapacc.Info{
			Name:         info.Name,
			SerialNumber: info.ID,
			Manufacturer: info.Manufacturer,
		}, byte(info.Category)),
	}
	e.accessories = append(e.accessories, a)
	e.byHandle[a.handle] = a

	e.traceRegistration(a, &log.RegistrationEvent{
		Step:     log.StepAccessory,
		Name:     info.Name,
		Category: uint8(info.Category),
	})
	return a.handle, nil
}

// AddAccessory returns the object of a registered accessory. brutella/hap
// creates the accessory object together with the accessory, so this only
// marks it as in use.
func (e *Engine) AddAccessory(h engine.AccessoryHandle) (engine.AccessoryObject, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.byHandle[h]
	if !ok {
		return 0, fmt.Errorf("%w: %d", engine.ErrUnknownAccessory, h)
	}
	a.object = engine.AccessoryObject(h)

	e.traceRegistration(a, &log.RegistrationEvent{Step: log.StepAccessoryObject})
	return a.object, nil
}

// AddServiceAndCharacteristics adds a service to a brutella accessory. The
// accessory information service updates the one brutella creates itself.
func (e *Engine) AddServiceAndCharacteristics(h engine.AccessoryHandle, obj engine.AccessoryObject, svc hap.ServiceType, descs []engine.Descriptor) error {
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
	e.mu.Unlock()

	if svc == hap.ServiceAccessoryInformation {
		updateInformation(a.acc.Info, descs)
	} else {
		s := hapsvc.New(string(svc))
		for i := range descs {
			// The adapter releases descs when this call returns.
			d := descs[i].Clone()
			c := newCharacteristic(&d)
			s.AddC(c.C)

			if d.CanNotify() {
				if err := e.subscribe(a, c, &d); err != nil {
					return fmt.Errorf("enable events for %s: %w", d.Type, err)
				}
			}
		}
		a.acc.AddS(s)
	}

	e.traceRegistration(a, &log.RegistrationEvent{
		Step:            log.StepService,
		Service:         string(svc),
		Characteristics: len(descs),
	})
	return nil
}

// subscribe hands out the event handle of an evented characteristic.
// brutella/hap tracks controller subscriptions itself, so every evented
// characteristic is subscribed for its whole lifetime.
func (e *Engine) subscribe(a *accessoryEntry, c *remoteChar, d *engine.Descriptor) error {
	ev := engine.EventHandle(uuid.NewString())
	if err := d.Subscribe(d.Owner, ev, true); err != nil {
		return err
	}
	e.mu.Lock()
	e.events[ev] = &eventTarget{acc: a, c: c, kind: d.Format.Kind()}
	e.mu.Unlock()
	return nil
}

// PushEvent updates the brutella characteristic behind ev. brutella/hap
// notifies every controller subscribed to it. A push made while a controller
// write to the same characteristic is forwarded is left to brutella/hap,
// which notifies everyone but the writer once the write returns.
func (e *Engine) PushEvent(h engine.AccessoryHandle, ev engine.EventHandle, v hap.Value) error {
	e.mu.Lock()
	t, ok := e.events[ev]
	e.mu.Unlock()
	if !ok || t.acc.handle != h {
		return fmt.Errorf("%w: %q", engine.ErrUnknownEventHandle, ev)
	}
	if v.Kind() != t.kind {
		return fmt.Errorf("%w: %s for %s", hap.ErrKindMismatch, v.Kind(), t.c.Format)
	}

	if !t.c.inRemoteWrite() {
		t.c.SetValueRequest(toJSON(v), nil)
	}

	e.emit(log.Event{
		Direction:   log.DirectionOut,
		Layer:       log.LayerEngine,
		Category:    log.CategoryNotification,
		AccessoryID: t.acc.info.ID,
		AID:         t.acc.acc.Id,
		Notification: &log.NotificationEvent{
			IID:         t.c.Id,
			Type:        t.c.Type,
			EventHandle: string(ev),
			Value:       v.Native(),
		},
	})
	return nil
}

// ListenAndServe runs the init callback of every accessory, once, and
// serves until ctx is cancelled. The first accessory is the primary one;
// all accessories share its setup code.
func (e *Engine) ListenAndServe(ctx context.Context) error {
	if err := e.start(); err != nil {
		return err
	}

	srv, err := e.server()
	if err != nil {
		return err
	}

	e.logger.Info("hap server listening", "addr", srv.Addr, "accessories", len(e.accessories))
	return srv.ListenAndServe(ctx)
}

// start runs pending init callbacks in registration order. It stops at the
// first failure.
func (e *Engine) start() error {
	e.mu.Lock()
	e.serving = true
	pending := slices.Clone(e.accessories)
	e.mu.Unlock()

	for _, a := range pending {
		e.mu.Lock()
		done := a.initDone
		a.initDone = true
		e.mu.Unlock()
		if done || a.initFn == nil {
			continue
		}

		e.traceRegistration(a, &log.RegistrationEvent{Step: log.StepStart, Name: a.info.Name})
		if err := a.initFn(); err != nil {
			e.traceError(a, err, "init callback")
			return fmt.Errorf("init %s: %w", a.info.Name, err)
		}
	}
	return nil
}

func (e *Engine) server() (*haps.Server, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.accessories) == 0 {
		return nil, ErrNoAccessories
	}
	primary := e.accessories[0]
	for _, a := range e.accessories[1:] {
		if a.info.SetupCode != primary.info.SetupCode {
			return nil, fmt.Errorf("%w: %s and %s", ErrSetupCodeDiffer, primary.info.Name, a.info.Name)
		}
	}
	pin, err := pinFor(primary.info.SetupCode)
	if err != nil {
		return nil, err
	}

	others := make([]*hapacc.A, 0, len(e.accessories)-1)
	for _, a := range e.accessories[1:] {
		others = append(others, a.acc)
	}
	srv, err := haps.NewServer(e.store, primary.acc, others...)
	if err != nil {
		return nil, fmt.Errorf("create hap server: %w", err)
	}
	srv.Pin = pin
	srv.Addr = e.config.Addr
	if srv.Addr == "" && primary.info.Port != 0 {
		srv.Addr = fmt.Sprintf(":%d", primary.info.Port)
	}
	return srv, nil
}

// pinFor converts a setup code to the 8-digit pin brutella/hap expects.
func pinFor(setupCode string) (string, error) {
	code, err := hap.ParseSetupCode(setupCode)
	if err != nil {
		return "", err
	}
	return code.Pin(), nil
}

// updateInformation copies the static values of the adapter's information
// service into the service brutella/hap created.
func updateInformation(info *hapsvc.AccessoryInformation, descs []engine.Descriptor) {
	for _, d := range descs {
		s, err := d.Value.Text()
		if err != nil {
			continue
		}
		switch d.Type {
		case hap.CharManufacturer:
			info.Manufacturer.SetValue(s)
		case hap.CharModel:
			info.Model.SetValue(s)
		case hap.CharName:
			info.Name.SetValue(s)
		case hap.CharSerialNumber:
			info.SerialNumber.SetValue(s)
		case hap.CharFirmwareRevision:
			info.FirmwareRevision.SetValue(s)
		}
	}
}

func (e *Engine) emit(ev log.Event) {
	ev.Timestamp = time.Now()
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
	}
	e.emit(ev)
}

func (e *Engine) traceError(a *accessoryEntry, err error, context string) {
	e.logger.Warn("engine error", "context", context, "error", err)
	code := int(hap.StatusFor(err))
	e.emit(log.Event{
		Direction:   log.DirectionIn,
		Layer:       log.LayerEngine,
		Category:    log.CategoryError,
		AccessoryID: a.info.ID,
		Error: &log.ErrorEventData{
			Layer:   log.LayerEngine,
			Message: err.Error(),
			Code:    &code,
			Context: context,
		},
	})
}

// Compile-time interface satisfaction check.
var _ engine.Engine = (*Engine)(nil)
