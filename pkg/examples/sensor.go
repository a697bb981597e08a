package examples

import (
	"sync"

	"github.com/hap-go/hap-go/pkg/accessory"
	"github.com/hap-go/hap-go/pkg/engine"
	"github.com/hap-go/hap-go/pkg/hap"
)

// Default temperature sensor range in degrees Celsius.
const (
	DefaultMinTemperature float32 = -40
	DefaultMaxTemperature float32 = 100
)

// TemperatureSensor represents a read-only temperature sensor.
// Values are set by the device through SimulateTemperature; controllers can
// only read and subscribe.
type TemperatureSensor struct {
	mu          sync.RWMutex
	temperature float32

	accessory *accessory.Accessory

	CurrentTemperature *accessory.Typed[float32]
}

// TemperatureSensorConfig contains configuration for creating a sensor.
type TemperatureSensorConfig struct {
	Info    accessory.Info
	Initial float32

	// Min and Max bound the reported temperature. Both zero selects the
	// default range.
	Min, Max float32

	Options []accessory.Option
}

// NewTemperatureSensor creates a temperature sensor accessory on e.
func NewTemperatureSensor(e engine.Engine, cfg TemperatureSensorConfig) *TemperatureSensor {
	if cfg.Min == 0 && cfg.Max == 0 {
		cfg.Min, cfg.Max = DefaultMinTemperature, DefaultMaxTemperature
	}

	s := &TemperatureSensor{temperature: clamp(cfg.Initial, cfg.Min, cfg.Max)}
	s.CurrentTemperature = accessory.NewFloat(hap.CharCurrentTemperature,
		s.read, nil,
		accessory.WithMin(cfg.Min), accessory.WithMax(cfg.Max))

	s.accessory = accessory.New(e, withCategory(cfg.Info, hap.CategorySensor), func(a *accessory.Accessory) error {
		return a.AddService(hap.ServiceTemperatureSensor, s.CurrentTemperature)
	}, cfg.Options...)

	return s
}

// Accessory returns the underlying accessory.
func (s *TemperatureSensor) Accessory() *accessory.Accessory {
	return s.accessory
}

// Temperature returns the current reading.
func (s *TemperatureSensor) Temperature() float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.temperature
}

// SimulateTemperature stores a new reading and notifies subscribers.
// Readings outside the configured range are clamped.
func (s *TemperatureSensor) SimulateTemperature(celsius float32) {
	lo, _ := s.CurrentTemperature.Min()
	hi, _ := s.CurrentTemperature.Max()
	minC, _ := lo.Float()
	maxC, _ := hi.Float()

	s.mu.Lock()
	s.temperature = clamp(celsius, minC, maxC)
	s.mu.Unlock()

	s.CurrentTemperature.Notify()
}

func (s *TemperatureSensor) read() (float32, error) {
	return s.Temperature(), nil
}
