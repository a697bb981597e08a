package examples

import (
	"sync"

	"github.com/hap-go/hap-go/pkg/accessory"
	"github.com/hap-go/hap-go/pkg/engine"
	"github.com/hap-go/hap-go/pkg/hap"
)

// LightState is the state of a Lightbulb.
type LightState struct {
	On         bool
	Brightness int     // percent
	Hue        float32 // degrees
	Saturation float32 // percent
}

// Lightbulb represents a color lightbulb.
// It demonstrates how to build an accessory that:
//   - Exposes bool, int and float characteristics of one service
//   - Keeps its state in the Go struct the characteristics are bound to
//   - Reports state changes made at the device itself
type Lightbulb struct {
	mu    sync.RWMutex
	state LightState

	accessory *accessory.Accessory

	On         *accessory.Typed[bool]
	Brightness *accessory.Typed[int]
	Hue        *accessory.Typed[float32]
	Saturation *accessory.Typed[float32]

	onChange func(LightState)
}

// LightbulbConfig contains configuration for creating a lightbulb.
type LightbulbConfig struct {
	Info    accessory.Info
	Initial LightState
	Options []accessory.Option
}

// NewLightbulb creates a lightbulb accessory on e. Call Register on the
// returned accessory to publish it.
func NewLightbulb(e engine.Engine, cfg LightbulbConfig) *Lightbulb {
	l := &Lightbulb{state: cfg.Initial}

	l.On = accessory.NewBool(hap.CharOn,
		func() (bool, error) { return l.State().On, nil },
		func(v bool) error { l.update(func(s *LightState) { s.On = v }); return nil })
	l.Brightness = accessory.NewInt(hap.CharBrightness,
		func() (int, error) { return l.State().Brightness, nil },
		func(v int) error { l.update(func(s *LightState) { s.Brightness = v }); return nil },
		accessory.WithMin(0), accessory.WithMax(100))
	l.Hue = accessory.NewFloat(hap.CharHue,
		func() (float32, error) { return l.State().Hue, nil },
		func(v float32) error { l.update(func(s *LightState) { s.Hue = v }); return nil },
		accessory.WithMin(0), accessory.WithMax(360))
	l.Saturation = accessory.NewFloat(hap.CharSaturation,
		func() (float32, error) { return l.State().Saturation, nil },
		func(v float32) error { l.update(func(s *LightState) { s.Saturation = v }); return nil },
		accessory.WithMin(0), accessory.WithMax(100))

	l.accessory = accessory.New(e, withCategory(cfg.Info, hap.CategoryLightbulb), func(a *accessory.Accessory) error {
		return a.AddService(hap.ServiceLightbulb, l.On, l.Brightness, l.Hue, l.Saturation)
	}, cfg.Options...)

	return l
}

// Accessory returns the underlying accessory.
func (l *Lightbulb) Accessory() *accessory.Accessory {
	return l.accessory
}

// State returns the current state.
func (l *Lightbulb) State() LightState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// OnStateChanged sets a callback invoked after every state change.
func (l *Lightbulb) OnStateChanged(fn func(LightState)) {
	l.mu.Lock()
	l.onChange = fn
	l.mu.Unlock()
}

// SimulateToggle flips the light as if its wall switch was pressed.
func (l *Lightbulb) SimulateToggle() {
	l.update(func(s *LightState) { s.On = !s.On })
	l.On.Notify()
}

// SimulateDim sets the brightness at the device.
func (l *Lightbulb) SimulateDim(percent int) {
	l.update(func(s *LightState) { s.Brightness = clamp(percent, 0, 100) })
	l.Brightness.Notify()
}

func (l *Lightbulb) update(fn func(*LightState)) {
	l.mu.Lock()
	fn(&l.state)
	s, cb := l.state, l.onChange
	l.mu.Unlock()

	if cb != nil {
		cb(s)
	}
}

func withCategory(info accessory.Info, c hap.Category) accessory.Info {
	if info.Category == 0 {
		info.Category = c
	}
	return info
}

func clamp[T int | float32](v, lo, hi T) T {
	return min(max(v, lo), hi)
}
