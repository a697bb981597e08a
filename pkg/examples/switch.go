package examples

import (
	"sync"

	"github.com/hap-go/hap-go/pkg/accessory"
	"github.com/hap-go/hap-go/pkg/engine"
	"github.com/hap-go/hap-go/pkg/hap"
)

// Switch represents a plain on/off switch.
type Switch struct {
	mu sync.RWMutex
	on bool

	accessory *accessory.Accessory

	On *accessory.Typed[bool]
}

// SwitchConfig contains configuration for creating a switch.
type SwitchConfig struct {
	Info    accessory.Info
	Initial bool
	Options []accessory.Option
}

// NewSwitch creates a switch accessory on e.
func NewSwitch(e engine.Engine, cfg SwitchConfig) *Switch {
	s := &Switch{on: cfg.Initial}
	s.On = accessory.NewBool(hap.CharOn, s.read, s.write)

	s.accessory = accessory.New(e, withCategory(cfg.Info, hap.CategorySwitch), func(a *accessory.Accessory) error {
		return a.AddService(hap.ServiceSwitch, s.On)
	}, cfg.Options...)

	return s
}

// Accessory returns the underlying accessory.
func (s *Switch) Accessory() *accessory.Accessory {
	return s.accessory
}

// IsOn reports the switch state.
func (s *Switch) IsOn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.on
}

// SimulatePress flips the switch at the device.
func (s *Switch) SimulatePress() {
	s.mu.Lock()
	s.on = !s.on
	s.mu.Unlock()
	s.On.Notify()
}

func (s *Switch) read() (bool, error) {
	return s.IsOn(), nil
}

func (s *Switch) write(on bool) error {
	s.mu.Lock()
	s.on = on
	s.mu.Unlock()
	return nil
}
