package accessory

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/hap-go/hap-go/pkg/engine"
	"github.com/hap-go/hap-go/pkg/hap"
)

// Accessory errors.
var (
	ErrInvalidInfo       = errors.New("invalid accessory info")
	ErrAlreadyRegistered = errors.New("accessory already registered")
	ErrNotRegistered     = errors.New("accessory not registered")
	ErrAlreadyStarted    = errors.New("accessory init callback already ran")
	ErrNotStarted        = errors.New("accessory object not created yet")
)

// Default accessory settings.
const (
	DefaultManufacturer  = "hap-go"
	DefaultModel         = "hap-go accessory"
	DefaultFirmware      = "1.0.0"
	DefaultConfigVersion = 1
)

// Info holds the identity of an accessory.
type Info struct {
	Name            string
	ID              string
	SetupCode       string
	Manufacturer    string
	FirmwareVersion string
	Model           string
	SerialNumber    string
	Category        hap.Category

	// Port is the TCP port the engine listens on. Zero lets the engine pick.
	Port int

	// ConfigVersion must be incremented whenever the services change.
	ConfigVersion int
}

// WithDefaults returns a copy of i with empty optional fields filled in.
func (i Info) WithDefaults() Info {
	if i.Manufacturer == "" {
		i.Manufacturer = DefaultManufacturer
	}
	if i.Model == "" {
		i.Model = DefaultModel
	}
	if i.FirmwareVersion == "" {
		i.FirmwareVersion = DefaultFirmware
	}
	if i.SerialNumber == "" {
		i.SerialNumber = i.ID
	}
	if i.Category == 0 {
		i.Category = hap.CategoryOther
	}
	if i.ConfigVersion == 0 {
		i.ConfigVersion = DefaultConfigVersion
	}
	return i
}

// Validate checks the required fields.
func (i Info) Validate() error {
	if i.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInfo)
	}
	if i.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidInfo)
	}
	if _, err := hap.ParseSetupCode(i.SetupCode); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInfo, err)
	}
	if i.Port < 0 || i.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidInfo, i.Port)
	}
	return nil
}

// InitFunc adds the accessory's own services. It runs inside the engine's
// init callback, after the accessory information service was added.
type InitFunc func(a *Accessory) error

// Service is a service added to an accessory.
type Service struct {
	Type            hap.ServiceType
	Characteristics []Characteristic
}

// Option configures an Accessory.
type Option func(*Accessory)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *Accessory) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithReady sets a function called once the accessory's services were added.
// It runs on the engine's init callback.
func WithReady(fn func(a *Accessory)) Option {
	return func(a *Accessory) { a.ready = fn }
}

// Accessory is one HomeKit accessory registered with an engine.
type Accessory struct {
	engine engine.Engine
	info   Info
	initFn InitFunc
	ready  func(a *Accessory)
	logger *slog.Logger

	// regMu serializes Register.
	regMu sync.Mutex

	mu         sync.RWMutex
	registered bool
	started    bool
	handle     engine.AccessoryHandle
	object     engine.AccessoryObject
	services   []Service
}

// New creates an accessory. Empty optional info fields get defaults; see
// Info.WithDefaults. initFn may be nil for accessories without services of
// their own.
func New(e engine.Engine, info Info, initFn InitFunc, opts ...Option) *Accessory {
	a := &Accessory{
		engine: e,
		info:   info.WithDefaults(),
		initFn: initFn,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("accessory", a.info.Name)
	return a
}

// Info returns the accessory identity.
func (a *Accessory) Info() Info {
	return a.info
}

// Handle returns the engine handle, zero before Register.
func (a *Accessory) Handle() engine.AccessoryHandle {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.handle
}

// Registered reports whether Register succeeded.
func (a *Accessory) Registered() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.registered
}

// Services returns the services added so far, excluding the accessory
// information service.
func (a *Accessory) Services() []Service {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.services)
}

// Characteristics returns every characteristic of every service.
func (a *Accessory) Characteristics() []Characteristic {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var out []Characteristic
	for _, s := range a.services {
		out = append(out, s.Characteristics...)
	}
	return out
}

// Register initializes the engine, once per process, and registers the
// accessory. The engine calls back later to let the accessory add its
// services.
func (a *Accessory) Register() error {
	if err := a.info.Validate(); err != nil {
		return err
	}
	code, _ := hap.ParseSetupCode(a.info.SetupCode)

	a.regMu.Lock()
	defer a.regMu.Unlock()

	if a.Registered() {
		return ErrAlreadyRegistered
	}

	if err := initEngine(a.engine); err != nil {
		return fmt.Errorf("engine init: %w", err)
	}

	h, err := a.engine.RegisterAccessory(engine.RegistrationInfo{
		Name:          a.info.Name,
		ID:            a.info.ID,
		SetupCode:     code.String(),
		Manufacturer:  a.info.Manufacturer,
		Category:      a.info.Category,
		Port:          a.info.Port,
		ConfigVersion: a.info.ConfigVersion,
	}, a.initCallback)
	if err != nil {
		return fmt.Errorf("register accessory: %w", err)
	}

	a.mu.Lock()
	a.registered = true
	a.handle = h
	a.mu.Unlock()

	a.logger.Debug("accessory registered", "handle", uint64(h), "category", a.info.Category.String())
	return nil
}

// initCallback is called by the engine once the accessory may add services.
func (a *Accessory) initCallback() error {
	a.mu.Lock()
	if !a.registered {
		a.mu.Unlock()
		return ErrNotRegistered
	}
	if a.started {
		a.mu.Unlock()
		return ErrAlreadyStarted
	}
	a.started = true
	h := a.handle
	a.mu.Unlock()

	obj, err := a.engine.AddAccessory(h)
	if err != nil {
		return fmt.Errorf("add accessory: %w", err)
	}

	a.mu.Lock()
	a.object = obj
	a.mu.Unlock()

	if err := a.addInformationService(h, obj); err != nil {
		return err
	}

	if a.initFn != nil {
		if err := a.initFn(a); err != nil {
			return fmt.Errorf("accessory init: %w", err)
		}
	}
	if a.ready != nil {
		a.ready(a)
	}
	return nil
}

// addInformationService adds the mandatory accessory information service.
// Identify always reads true; the other fields are static strings.
func (a *Accessory) addInformationService(h engine.AccessoryHandle, obj engine.AccessoryObject) error {
	b := acquireBatch(6)
	defer b.release()

	b.add(engine.Descriptor{
		Type:   hap.CharIdentify,
		Format: hap.FormatBool,
		Value:  hap.BoolValue(true),
		Read:   identifyRead,
	})
	for _, f := range []struct {
		typ hap.CharacteristicType
		val string
	}{
		{hap.CharManufacturer, a.info.Manufacturer},
		{hap.CharModel, a.info.Model},
		{hap.CharName, a.info.Name},
		{hap.CharSerialNumber, a.info.SerialNumber},
		{hap.CharFirmwareRevision, a.info.FirmwareVersion},
	} {
		b.add(engine.Descriptor{
			Type:   f.typ,
			Format: hap.FormatString,
			Value:  hap.StringValue(f.val),
		})
	}

	if err := a.engine.AddServiceAndCharacteristics(h, obj, hap.ServiceAccessoryInformation, b.descs); err != nil {
		return fmt.Errorf("add %s service: %w", hap.ServiceAccessoryInformation, err)
	}
	return nil
}

// AddService attaches the characteristics to this accessory and adds them
// to the engine as one service. It must be called from the InitFunc, or
// after it ran. On error no characteristic stays attached.
func (a *Accessory) AddService(svc hap.ServiceType, chars ...Characteristic) (err error) {
	a.mu.RLock()
	h, obj := a.handle, a.object
	a.mu.RUnlock()
	if obj == 0 {
		return fmt.Errorf("%w: add %s service", ErrNotStarted, svc)
	}

	b := acquireBatch(len(chars))
	defer b.release()

	attached := make([]Characteristic, 0, len(chars))
	defer func() {
		if err != nil {
			for _, c := range attached {
				c.detach()
			}
		}
	}()

	for _, c := range chars {
		if err := c.attach(a); err != nil {
			return err
		}
		attached = append(attached, c)

		d, err := c.descriptor(b)
		if err != nil {
			return err
		}
		b.add(d)
	}

	if err := a.engine.AddServiceAndCharacteristics(h, obj, svc, b.descs); err != nil {
		return fmt.Errorf("add %s service: %w", svc, err)
	}

	a.mu.Lock()
	a.services = append(a.services, Service{Type: svc, Characteristics: slices.Clone(chars)})
	a.mu.Unlock()

	a.logger.Debug("service added", "service", svc.String(), "characteristics", len(chars))
	return nil
}

// pushEvent forwards a changed value to the engine. Failures are logged;
// listeners are still called.
func (a *Accessory) pushEvent(c Characteristic, ev engine.EventHandle, v hap.Value) {
	if err := a.engine.PushEvent(a.Handle(), ev, v); err != nil {
		a.logger.Warn("event push failed",
			"characteristic", c.Type().String(),
			"value", v.String(),
			"error", err)
	}
}
