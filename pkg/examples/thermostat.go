package examples

import (
	"sync"

	"github.com/hap-go/hap-go/pkg/accessory"
	"github.com/hap-go/hap-go/pkg/engine"
	"github.com/hap-go/hap-go/pkg/hap"
)

// Heating/cooling states as defined by HAP.
const (
	ModeOff  = 0
	ModeHeat = 1
	ModeCool = 2
	ModeAuto = 3 // target only
)

// Temperature display units.
const (
	UnitsCelsius    = 0
	UnitsFahrenheit = 1
)

// ThermostatState is the state of a Thermostat.
type ThermostatState struct {
	CurrentMode        int
	TargetMode         int
	CurrentTemperature float32
	TargetTemperature  float32
	DisplayUnits       int
}

// Thermostat represents a heating and cooling thermostat.
// It demonstrates:
//   - Valid values for enumerated characteristics
//   - Read-only characteristics derived from writable ones
//   - Notifying a characteristic from the write handler of another
type Thermostat struct {
	mu    sync.RWMutex
	state ThermostatState

	accessory *accessory.Accessory

	CurrentMode        *accessory.Typed[int]
	TargetMode         *accessory.Typed[int]
	CurrentTemperature *accessory.Typed[float32]
	TargetTemperature  *accessory.Typed[float32]
	DisplayUnits       *accessory.Typed[int]
}

// ThermostatConfig contains configuration for creating a thermostat.
type ThermostatConfig struct {
	Info    accessory.Info
	Initial ThermostatState
	Options []accessory.Option
}

// NewThermostat creates a thermostat accessory on e.
func NewThermostat(e engine.Engine, cfg ThermostatConfig) *Thermostat {
	t := &Thermostat{state: cfg.Initial}
	if t.state.TargetTemperature == 0 {
		t.state.TargetTemperature = 21
	}
	t.state.TargetTemperature = clamp(t.state.TargetTemperature, 10, 38)
	t.state.CurrentMode = currentMode(t.state)

	t.CurrentMode = accessory.NewInt(hap.CharCurrentHeatingCoolingState,
		func() (int, error) { return t.State().CurrentMode, nil }, nil,
		accessory.WithValidValues(ModeOff, ModeHeat, ModeCool))
	t.TargetMode = accessory.NewInt(hap.CharTargetHeatingCoolingState,
		func() (int, error) { return t.State().TargetMode, nil },
		t.setTargetMode,
		accessory.WithValidValues(ModeOff, ModeHeat, ModeCool, ModeAuto))
	t.CurrentTemperature = accessory.NewFloat(hap.CharCurrentTemperature,
		func() (float32, error) { return t.State().CurrentTemperature, nil }, nil,
		accessory.WithMin(DefaultMinTemperature), accessory.WithMax(DefaultMaxTemperature))
	t.TargetTemperature = accessory.NewFloat(hap.CharTargetTemperature,
		func() (float32, error) { return t.State().TargetTemperature, nil },
		t.setTargetTemperature,
		accessory.WithMin(10), accessory.WithMax(38))
	t.DisplayUnits = accessory.NewInt(hap.CharTemperatureDisplayUnits,
		func() (int, error) { return t.State().DisplayUnits, nil },
		func(v int) error { t.apply(func(s *ThermostatState) { s.DisplayUnits = v }); return nil },
		accessory.WithValidValues(UnitsCelsius, UnitsFahrenheit))

	t.accessory = accessory.New(e, withCategory(cfg.Info, hap.CategoryThermostat), func(a *accessory.Accessory) error {
		return a.AddService(hap.ServiceThermostat,
			t.CurrentMode, t.TargetMode, t.CurrentTemperature, t.TargetTemperature, t.DisplayUnits)
	}, cfg.Options...)

	return t
}

// Accessory returns the underlying accessory.
func (t *Thermostat) Accessory() *accessory.Accessory {
	return t.accessory
}

// State returns the current state.
func (t *Thermostat) State() ThermostatState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// SimulateTemperature stores a new room temperature reading.
func (t *Thermostat) SimulateTemperature(celsius float32) {
	t.apply(func(s *ThermostatState) {
		s.CurrentTemperature = clamp(celsius, DefaultMinTemperature, DefaultMaxTemperature)
	})
	t.CurrentTemperature.Notify()
}

func (t *Thermostat) setTargetMode(mode int) error {
	t.apply(func(s *ThermostatState) { s.TargetMode = mode })
	return nil
}

func (t *Thermostat) setTargetTemperature(celsius float32) error {
	t.apply(func(s *ThermostatState) { s.TargetTemperature = celsius })
	return nil
}

// apply changes the state and notifies CurrentMode when the derived mode
// changed.
func (t *Thermostat) apply(fn func(*ThermostatState)) {
	t.mu.Lock()
	before := t.state.CurrentMode
	fn(&t.state)
	t.state.CurrentMode = currentMode(t.state)
	changed := t.state.CurrentMode != before
	t.mu.Unlock()

	if changed && t.CurrentMode != nil {
		t.CurrentMode.Notify()
	}
}

// currentMode derives what the thermostat is doing from the target mode and
// the temperatures.
func currentMode(s ThermostatState) int {
	heat := s.CurrentTemperature < s.TargetTemperature
	cool := s.CurrentTemperature > s.TargetTemperature

	switch s.TargetMode {
	case ModeHeat:
		if heat {
			return ModeHeat
		}
	case ModeCool:
		if cool {
			return ModeCool
		}
	case ModeAuto:
		if heat {
			return ModeHeat
		}
		if cool {
			return ModeCool
		}
	}
	return ModeOff
}
