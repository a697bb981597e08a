package examples

import (
	"testing"

	"github.com/hap-go/hap-go/pkg/accessory"
	"github.com/hap-go/hap-go/pkg/engine/memory"
	"github.com/hap-go/hap-go/pkg/hap"
)

func testInfo(name string) accessory.Info {
	return accessory.Info{Name: name, ID: "id-" + name, SetupCode: "031-45-154"}
}

// start registers a on a fresh memory engine and runs its init callback.
func start(t *testing.T, a *accessory.Accessory, e *memory.Engine) {
	t.Helper()
	accessory.ResetEngineInit()
	t.Cleanup(accessory.ResetEngineInit)

	if err := a.Register(); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
}

func find(t *testing.T, e *memory.Engine, typ hap.CharacteristicType) uint64 {
	t.Helper()
	iid, ok := e.Find(1, typ)
	if !ok {
		t.Fatalf("characteristic %s not found", typ)
	}
	return iid
}

func TestLightbulbCreation(t *testing.T) {
	e := memory.New()
	l := NewLightbulb(e, LightbulbConfig{Info: testInfo("Lamp")})
	start(t, l.Accessory(), e)

	if l.Accessory().Info().Category != hap.CategoryLightbulb {
		t.Errorf("expected lightbulb category, got %s", l.Accessory().Info().Category)
	}

	snap, ok := e.Accessory(1)
	if !ok {
		t.Fatal("expected accessory 1")
	}
	if len(snap.Services) != 2 {
		t.Fatalf("expected 2 services, got %d", len(snap.Services))
	}
	svc := snap.Services[1]
	if svc.Type != hap.ServiceLightbulb {
		t.Errorf("expected lightbulb service, got %s", svc.Type)
	}
	if len(svc.Characteristics) != 4 {
		t.Errorf("expected 4 characteristics, got %d", len(svc.Characteristics))
	}
}

func TestLightbulbRemoteControl(t *testing.T) {
	e := memory.New()
	l := NewLightbulb(e, LightbulbConfig{Info: testInfo("Lamp")})
	start(t, l.Accessory(), e)

	var changes int
	l.OnStateChanged(func(LightState) { changes++ })

	if err := e.Write(1, find(t, e, hap.CharOn), hap.BoolValue(true)); err != nil {
		t.Fatalf("write On: %v", err)
	}
	if err := e.Write(1, find(t, e, hap.CharHue), hap.FloatValue(240.5)); err != nil {
		t.Fatalf("write Hue: %v", err)
	}

	s := l.State()
	if !s.On {
		t.Error("expected light to be on")
	}
	if s.Hue != 240.5 {
		t.Errorf("expected hue 240.5, got %v", s.Hue)
	}
	if changes != 2 {
		t.Errorf("expected 2 state changes, got %d", changes)
	}

	// Brightness is bounded to 0..100.
	if err := e.Write(1, find(t, e, hap.CharBrightness), hap.IntValue(150)); err == nil {
		t.Error("expected out of range brightness to fail")
	}
}

func TestLightbulbSimulateToggle(t *testing.T) {
	e := memory.New()
	l := NewLightbulb(e, LightbulbConfig{Info: testInfo("Lamp")})
	start(t, l.Accessory(), e)

	if _, err := e.Subscribe(1, find(t, e, hap.CharOn)); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	l.SimulateToggle()
	l.SimulateDim(250)

	if !l.State().On {
		t.Error("expected light to be on after toggle")
	}
	if l.State().Brightness != 100 {
		t.Errorf("expected brightness clamped to 100, got %d", l.State().Brightness)
	}

	events := e.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event (only On is subscribed), got %d", len(events))
	}
	if !events[0].Value.Equal(hap.BoolValue(true)) {
		t.Errorf("expected pushed value true, got %s", events[0].Value)
	}
}

func TestTemperatureSensor(t *testing.T) {
	e := memory.New()
	s := NewTemperatureSensor(e, TemperatureSensorConfig{Info: testInfo("Thermo"), Initial: 19.5})
	start(t, s.Accessory(), e)

	iid := find(t, e, hap.CharCurrentTemperature)
	snap, err := e.Characteristic(1, iid)
	if err != nil {
		t.Fatalf("characteristic: %v", err)
	}
	if snap.Min.Slot() != -4000 || snap.Max.Slot() != 10000 {
		t.Errorf("expected bounds -4000..10000, got %d..%d", snap.Min.Slot(), snap.Max.Slot())
	}
	if len(snap.Permissions) != 2 {
		t.Errorf("expected read-only and evented, got %v", snap.Permissions)
	}

	if err := e.Write(1, iid, hap.FloatValue(20)); err == nil {
		t.Error("expected write to read-only sensor to fail")
	}

	if _, err := e.Subscribe(1, iid); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	s.SimulateTemperature(22.25)
	s.SimulateTemperature(500)

	events := e.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Value.Slot() != 2225 {
		t.Errorf("expected slot 2225, got %d", events[0].Value.Slot())
	}
	if s.Temperature() != DefaultMaxTemperature {
		t.Errorf("expected clamped temperature %v, got %v", DefaultMaxTemperature, s.Temperature())
	}
}

func TestSwitch(t *testing.T) {
	e := memory.New()
	sw := NewSwitch(e, SwitchConfig{Info: testInfo("Switch")})
	start(t, sw.Accessory(), e)

	iid := find(t, e, hap.CharOn)
	if err := e.Write(1, iid, hap.BoolValue(true)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !sw.IsOn() {
		t.Error("expected switch on")
	}

	sw.SimulatePress()
	v, err := e.Read(1, iid)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !v.Equal(hap.BoolValue(false)) {
		t.Errorf("expected false after press, got %s", v)
	}
}

func TestThermostatModes(t *testing.T) {
	tests := []struct {
		name    string
		target  int
		current float32
		setTo   float32
		want    int
	}{
		{"off", ModeOff, 18, 21, ModeOff},
		{"heat below target", ModeHeat, 18, 21, ModeHeat},
		{"heat above target", ModeHeat, 23, 21, ModeOff},
		{"cool above target", ModeCool, 25, 21, ModeCool},
		{"auto heats", ModeAuto, 18, 21, ModeHeat},
		{"auto cools", ModeAuto, 25, 21, ModeCool},
		{"auto idle", ModeAuto, 21, 21, ModeOff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := currentMode(ThermostatState{TargetMode: tt.target, CurrentTemperature: tt.current, TargetTemperature: tt.setTo})
			if got != tt.want {
				t.Errorf("currentMode = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestThermostat(t *testing.T) {
	e := memory.New()
	th := NewThermostat(e, ThermostatConfig{
		Info:    testInfo("Thermostat"),
		Initial: ThermostatState{CurrentTemperature: 18},
	})
	start(t, th.Accessory(), e)

	current := find(t, e, hap.CharCurrentHeatingCoolingState)
	target := find(t, e, hap.CharTargetHeatingCoolingState)
	if _, err := e.Subscribe(1, current); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := e.Write(1, target, hap.IntValue(7)); err == nil {
		t.Error("expected invalid mode to be rejected")
	}
	if err := e.Write(1, current, hap.IntValue(ModeHeat)); err == nil {
		t.Error("expected current mode to be read-only")
	}

	if err := e.Write(1, target, hap.IntValue(ModeHeat)); err != nil {
		t.Fatalf("write target mode: %v", err)
	}
	if th.State().CurrentMode != ModeHeat {
		t.Errorf("expected heating, got %d", th.State().CurrentMode)
	}

	th.SimulateTemperature(22)
	if th.State().CurrentMode != ModeOff {
		t.Errorf("expected idle above target, got %d", th.State().CurrentMode)
	}

	events := e.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 mode events, got %d", len(events))
	}
	if events[0].Value.Slot() != ModeHeat || events[1].Value.Slot() != ModeOff {
		t.Errorf("unexpected mode events %s, %s", events[0].Value, events[1].Value)
	}
}
