package accessory

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/hap-go/hap-go/pkg/engine"
	"github.com/hap-go/hap-go/pkg/hap"
)

// Characteristic errors. ErrNotReadable and ErrNotWritable are the hap
// package errors, so engines map them to HAP status codes.
var (
	ErrNotReadable     = hap.ErrNotReadable
	ErrNotWritable     = hap.ErrNotWritable
	ErrNotAttached     = errors.New("characteristic is not attached to an accessory")
	ErrAlreadyAttached = errors.New("characteristic is already attached")
)

// Listener is called after the value of a characteristic changed.
type Listener func(c Characteristic)

// Characteristic is a typed characteristic as seen by accessories and
// engines. All implementations are *Typed values.
type Characteristic interface {
	engine.Handler

	// Type returns the HAP characteristic type.
	Type() hap.CharacteristicType

	// Format returns the HAP format announced to the engine.
	Format() hap.Format

	// Kind returns the value kind carried by the characteristic.
	Kind() hap.Kind

	CanRead() bool
	CanWrite() bool

	// Notify announces a value change made outside of a write. It is a
	// no-op for characteristics that cannot be read.
	Notify()

	// OnChange registers a listener for value changes.
	OnChange(fn Listener)

	// EventHandle returns the current subscriber handle, if any.
	EventHandle() engine.EventHandle

	// Attached reports whether the characteristic belongs to an accessory.
	Attached() bool

	descriptor(b *descriptorBatch) (engine.Descriptor, error)
	attach(a *Accessory) error
	detach()
}

// CharOption configures a characteristic.
type CharOption func(*charConfig)

type charConfig struct {
	format      hap.Format
	min, max    any
	validValues []int
}

// WithMin overrides the minimum value announced to controllers.
func WithMin[T int | float32](v T) CharOption {
	return func(c *charConfig) { c.min = v }
}

// WithMax overrides the maximum value announced to controllers.
func WithMax[T int | float32](v T) CharOption {
	return func(c *charConfig) { c.max = v }
}

// WithValidValues restricts an integer characteristic to a list of values.
func WithValidValues(vals ...int) CharOption {
	return func(c *charConfig) { c.validValues = slices.Clone(vals) }
}

// WithFormat overrides the HAP format. The default is the format of the
// characteristic type, or the default format of the value kind for unknown
// types.
func WithFormat(f hap.Format) CharOption {
	return func(c *charConfig) { c.format = f }
}

// Typed is a characteristic carrying values of type T.
type Typed[T Scalar] struct {
	typ    hap.CharacteristicType
	format hap.Format
	codec  codec[T]

	read  func() (T, error)
	write func(T) error

	min, max    hap.Value
	validValues []int

	mu          sync.RWMutex
	accessory   *Accessory
	eventHandle engine.EventHandle
	listeners   []Listener
}

// NewTyped creates a characteristic bound to the given read and write
// functions. A nil function means the capability is not supported. NewTyped
// panics if a
// bound cannot be represented in the characteristic's kind or the format
// does not carry T.
func NewTyped[T Scalar](typ hap.CharacteristicType, read func() (T, error), write func(T) error, opts ...CharOption) *Typed[T] {
	cfg := charConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Typed[T]{
		typ:         typ,
		codec:       codecFor[T](),
		read:        read,
		write:       write,
		validValues: cfg.validValues,
	}

	c.format = cfg.format
	if c.format == "" {
		c.format = typ.Format()
	}
	if c.format == "" || c.format.Kind() != c.codec.kind {
		if cfg.format != "" {
			panic(fmt.Sprintf("accessory: format %s cannot carry %s values", cfg.format, c.codec.kind))
		}
		c.format = c.codec.kind.DefaultFormat()
	}

	if cfg.min != nil {
		c.min = mustBound(c.codec.kind, cfg.min)
	}
	if cfg.max != nil {
		c.max = mustBound(c.codec.kind, cfg.max)
	}

	return c
}

func mustBound(kind hap.Kind, v any) hap.Value {
	b, err := encodeBound(kind, v)
	if err != nil {
		panic("accessory: " + err.Error())
	}
	return b
}

// NewBool creates a bool characteristic.
func NewBool(typ hap.CharacteristicType, read func() (bool, error), write func(bool) error, opts ...CharOption) *Typed[bool] {
	return NewTyped(typ, read, write, opts...)
}

// NewInt creates an integer characteristic. Values are passed to the engine
// directly in the value slot.
func NewInt(typ hap.CharacteristicType, read func() (int, error), write func(int) error, opts ...CharOption) *Typed[int] {
	return NewTyped(typ, read, write, opts...)
}

// NewFloat creates a float characteristic. Values and bounds are passed to
// the engine in fixed-point form, round(f*100).
func NewFloat(typ hap.CharacteristicType, read func() (float32, error), write func(float32) error, opts ...CharOption) *Typed[float32] {
	return NewTyped(typ, read, write, opts...)
}

// NewString creates a string characteristic.
func NewString(typ hap.CharacteristicType, read func() (string, error), write func(string) error, opts ...CharOption) *Typed[string] {
	return NewTyped(typ, read, write, opts...)
}

// Type returns the HAP characteristic type.
func (c *Typed[T]) Type() hap.CharacteristicType { return c.typ }

// Format returns the HAP format.
func (c *Typed[T]) Format() hap.Format { return c.format }

// Kind returns the value kind.
func (c *Typed[T]) Kind() hap.Kind { return c.codec.kind }

// CanRead reports whether a read function is bound.
func (c *Typed[T]) CanRead() bool { return c.read != nil }

// CanWrite reports whether a write function is bound.
func (c *Typed[T]) CanWrite() bool { return c.write != nil }

// Min returns the minimum override, if any.
func (c *Typed[T]) Min() (hap.Value, bool) { return c.min, c.min.IsValid() }

// Max returns the maximum override, if any.
func (c *Typed[T]) Max() (hap.Value, bool) { return c.max, c.max.IsValid() }

// ValidValues returns a copy of the valid values override, or nil.
func (c *Typed[T]) ValidValues() []int { return slices.Clone(c.validValues) }

// Read returns the current value.
func (c *Typed[T]) Read() (T, error) {
	if c.read == nil {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrNotReadable, c.typ)
	}
	return c.read()
}

// Write stores a new value and notifies the subscriber and listeners.
// Nothing is called when the characteristic is not writable or not attached.
func (c *Typed[T]) Write(v T) error {
	if err := c.checkWrite(); err != nil {
		return err
	}
	if err := c.write(v); err != nil {
		return err
	}
	c.valueChanged(c.codec.encode(v))
	return nil
}

// ReadValue returns the current value in engine form.
func (c *Typed[T]) ReadValue() (hap.Value, error) {
	v, err := c.Read()
	if err != nil {
		return hap.Value{}, err
	}
	return c.codec.encode(v), nil
}

// WriteValue stores a value received from the engine. The value pushed to the
// subscriber is v itself.
func (c *Typed[T]) WriteValue(v hap.Value) error {
	if err := c.checkWrite(); err != nil {
		return err
	}
	x, err := c.codec.decode(v)
	if err != nil {
		return fmt.Errorf("write %s: %w", c.typ, err)
	}
	if err := c.write(x); err != nil {
		return err
	}
	c.valueChanged(v)
	return nil
}

// SetEventHandle stores the subscriber handle when enable is true and clears
// it otherwise.
func (c *Typed[T]) SetEventHandle(h engine.EventHandle, enable bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessory == nil {
		return fmt.Errorf("%w: %s", ErrNotAttached, c.typ)
	}
	if enable {
		c.eventHandle = h
	} else {
		c.eventHandle = ""
	}
	return nil
}

// EventHandle returns the current subscriber handle.
func (c *Typed[T]) EventHandle() engine.EventHandle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.eventHandle
}

// Attached reports whether the characteristic belongs to an accessory.
func (c *Typed[T]) Attached() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessory != nil
}

// OnChange registers a listener. Nil listeners are ignored.
func (c *Typed[T]) OnChange(fn Listener) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Notify reads the current value and announces it as a change.
func (c *Typed[T]) Notify() {
	if !c.CanRead() {
		return
	}
	v, err := c.ReadValue()
	if err != nil {
		if a := c.owner(); a != nil {
			a.logger.Warn("notify: read failed", "characteristic", c.typ.String(), "error", err)
		}
		return
	}
	c.valueChanged(v)
}

func (c *Typed[T]) checkWrite() error {
	if c.write == nil {
		return fmt.Errorf("%w: %s", ErrNotWritable, c.typ)
	}
	if c.owner() == nil {
		return fmt.Errorf("%w: %s", ErrNotAttached, c.typ)
	}
	return nil
}

func (c *Typed[T]) owner() *Accessory {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessory
}

// valueChanged pushes v to the subscriber, if any, then calls the listeners.
func (c *Typed[T]) valueChanged(v hap.Value) {
	c.mu.RLock()
	a := c.accessory
	ev := c.eventHandle
	listeners := slices.Clone(c.listeners)
	c.mu.RUnlock()

	if a != nil && ev != "" {
		a.pushEvent(c, ev, v)
	}
	for _, fn := range listeners {
		fn(c)
	}
}

func (c *Typed[T]) attach(a *Accessory) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessory != nil {
		return fmt.Errorf("%w: %s", ErrAlreadyAttached, c.typ)
	}
	c.accessory = a
	return nil
}

func (c *Typed[T]) detach() {
	c.mu.Lock()
	c.accessory = nil
	c.eventHandle = ""
	c.mu.Unlock()
}

// descriptor builds the engine descriptor. Valid values are copied into
// storage owned by b.
func (c *Typed[T]) descriptor(b *descriptorBatch) (engine.Descriptor, error) {
	d := engine.Descriptor{
		Type:      c.typ,
		Format:    c.format,
		Owner:     c,
		Subscribe: setCharacteristicEventHandle,
	}

	if c.CanRead() {
		v, err := c.ReadValue()
		if err != nil {
			return engine.Descriptor{}, fmt.Errorf("initial read of %s: %w", c.typ, err)
		}
		d.Value = v
		d.Read = readCharacteristic
	}
	if c.CanWrite() {
		d.Write = writeCharacteristic
	}

	if c.max.IsValid() {
		d.OverrideMax = true
		d.Max = c.max
	}
	if c.min.IsValid() {
		d.OverrideMin = true
		d.Min = c.min
	}
	if c.validValues != nil {
		d.OverrideValidValues = true
		d.ValidValues = b.copyValidValues(c.validValues)
	}

	return d, nil
}

// Compile-time interface satisfaction checks.
var (
	_ Characteristic = (*Typed[bool])(nil)
	_ Characteristic = (*Typed[int])(nil)
	_ Characteristic = (*Typed[float32])(nil)
	_ Characteristic = (*Typed[string])(nil)
)
