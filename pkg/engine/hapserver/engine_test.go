package hapserver

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hapchar "github.com/brutella/hap/characteristic"

	"github.com/hap-go/hap-go/pkg/accessory"
	"github.com/hap-go/hap-go/pkg/engine"
	"github.com/hap-go/hap-go/pkg/hap"
	"github.com/hap-go/hap-go/pkg/log"
)

type fakeHandler struct {
	value  hap.Value
	writes []hap.Value
	err    error
}

func (f *fakeHandler) ReadValue() (hap.Value, error) { return f.value, f.err }

func (f *fakeHandler) WriteValue(v hap.Value) error {
	if f.err != nil {
		return f.err
	}
	f.writes = append(f.writes, v)
	f.value = v
	return nil
}

func (f *fakeHandler) SetEventHandle(engine.EventHandle, bool) error { return nil }

func descriptorFor(h *fakeHandler, typ hap.CharacteristicType, format hap.Format) engine.Descriptor {
	return engine.Descriptor{
		Type:      typ,
		Format:    format,
		Value:     h.value,
		Owner:     h,
		Read:      func(o engine.Handler) (hap.Value, error) { return o.ReadValue() },
		Write:     func(o engine.Handler, v hap.Value) error { return o.WriteValue(v) },
		Subscribe: func(o engine.Handler, ev engine.EventHandle, on bool) error { return o.SetEventHandle(ev, on) },
	}
}

func TestNewCharacteristic(t *testing.T) {
	h := &fakeHandler{value: hap.FloatValue(21.5)}
	d := descriptorFor(h, hap.CharTargetTemperature, hap.FormatFloat)
	d.OverrideMin, d.Min = true, hap.FloatValue(10)
	d.OverrideMax, d.Max = true, hap.FloatValue(38)

	c := newCharacteristic(&d)
	assert.Equal(t, "35", c.Type)
	assert.Equal(t, "float", c.Format)
	assert.Equal(t, []string{"pr", "pw", "ev"}, c.Permissions)
	assert.Equal(t, 21.5, c.Val)
	assert.Equal(t, 10.0, c.MinVal)
	assert.Equal(t, 38.0, c.MaxVal)

	v, code := c.ValueRequestFunc(nil)
	assert.Equal(t, 0, code)
	assert.Equal(t, 21.5, v)

	req := httptest.NewRequest("PUT", "/characteristics", nil)
	_, code = c.SetValueRequestFunc(22.25, req)
	assert.Equal(t, 0, code)
	require.Len(t, h.writes, 1)
	assert.Equal(t, hap.FloatSlotValue(2225), h.writes[0])
}

func TestNewCharacteristicValidValues(t *testing.T) {
	h := &fakeHandler{value: hap.IntValue(1)}
	d := descriptorFor(h, hap.CharTargetHeatingCoolingState, hap.FormatUInt8)
	d.OverrideValidValues, d.ValidValues = true, []int{0, 1, 2}

	c := newCharacteristic(&d)
	d.ValidValues[0] = 9
	assert.Equal(t, []int{0, 1, 2}, c.ValidVals)
	assert.Equal(t, 1, c.Val)
}

func TestRemoteWriteErrors(t *testing.T) {
	req := httptest.NewRequest("PUT", "/characteristics", nil)

	h := &fakeHandler{value: hap.BoolValue(false)}
	d := descriptorFor(h, hap.CharOn, hap.FormatBool)
	d.Write = nil
	c := newCharacteristic(&d)
	_, code := c.SetValueRequestFunc(true, req)
	assert.Equal(t, int(hap.StatusReadOnly), code)

	d = descriptorFor(h, hap.CharOn, hap.FormatBool)
	c = newCharacteristic(&d)
	_, code = c.SetValueRequestFunc("yes", req)
	assert.Equal(t, int(hap.StatusInvalidValue), code)

	h.err = errors.New("device offline")
	_, code = c.SetValueRequestFunc(true, req)
	assert.Equal(t, int(hap.StatusCommunicationFailure), code)

	_, code = c.ValueRequestFunc(req)
	assert.Equal(t, int(hap.StatusCommunicationFailure), code)
}

func TestLocalUpdateDoesNotWrite(t *testing.T) {
	h := &fakeHandler{value: hap.IntValue(3)}
	d := descriptorFor(h, hap.CharBrightness, hap.FormatInt)
	c := newCharacteristic(&d)

	_, code := c.SetValueRequestFunc(4, nil)
	assert.Equal(t, 0, code)
	assert.Empty(t, h.writes)
}

func TestToJSON(t *testing.T) {
	assert.Equal(t, true, toJSON(hap.BoolValue(true)))
	assert.Equal(t, 42, toJSON(hap.IntValue(42)))
	assert.Equal(t, -27.5, toJSON(hap.FloatSlotValue(-2750)))
	assert.Equal(t, "x", toJSON(hap.StringValue("x")))
	assert.Nil(t, toJSON(hap.Value{}))
}

func TestPinFor(t *testing.T) {
	pin, err := pinFor("031-45-154")
	require.NoError(t, err)
	assert.Equal(t, "03145154", pin)

	_, err = pinFor("12345678")
	assert.ErrorIs(t, err, hap.ErrInvalidSetupCode)
}

func TestInitRequiresStoragePath(t *testing.T) {
	e := New(Config{})
	assert.ErrorIs(t, e.Init(), ErrNoStoragePath)

	_, err := e.RegisterAccessory(engine.RegistrationInfo{Name: "x"}, nil)
	assert.ErrorIs(t, err, engine.ErrNotInitialized)
}

func TestServerWithoutAccessories(t *testing.T) {
	e := New(Config{StoragePath: t.TempDir()})
	require.NoError(t, e.Init())
	_, err := e.server()
	assert.ErrorIs(t, err, ErrNoAccessories)
}

func TestAccessoryLifecycle(t *testing.T) {
	accessory.ResetEngineInit()
	t.Cleanup(accessory.ResetEngineInit)

	rec := &log.Recorder{}
	e := New(Config{StoragePath: t.TempDir(), Trace: rec})

	level := 20
	brightness := accessory.NewInt(hap.CharBrightness,
		func() (int, error) { return level, nil },
		func(v int) error { level = v; return nil },
		accessory.WithMin(0), accessory.WithMax(100))
	initRuns := 0

	a := accessory.New(e, accessory.Info{
		Name:         "Desk Lamp",
		ID:           "AA:BB:CC:DD:EE:FF",
		SetupCode:    "031-45-154",
		Manufacturer: "Acme",
		Model:        "L1",
		Category:     hap.CategoryLightbulb,
	}, func(a *accessory.Accessory) error {
		initRuns++
		return a.AddService(hap.ServiceLightbulb, brightness)
	})
	require.NoError(t, a.Register())

	require.NoError(t, e.start())
	require.NoError(t, e.start())
	assert.Equal(t, 1, initRuns)

	entry := e.accessories[0]
	assert.Equal(t, byte(hap.CategoryLightbulb), entry.acc.Type)
	assert.Equal(t, "Acme", entry.acc.Info.Manufacturer.Value())
	assert.Equal(t, "L1", entry.acc.Info.Model.Value())

	var lamp []string
	for _, s := range entry.acc.Ss {
		if s.Type == string(hap.ServiceLightbulb) {
			for _, c := range s.Cs {
				lamp = append(lamp, c.Type)
			}
		}
	}
	assert.Equal(t, []string{string(hap.CharBrightness)}, lamp)

	// Every evented characteristic is subscribed at registration.
	require.NotEmpty(t, brightness.EventHandle())

	target := e.events[brightness.EventHandle()]
	require.NotNil(t, target)
	assert.Equal(t, 20, target.c.Val)
	assert.Equal(t, 100, target.c.MaxVal)

	require.NoError(t, brightness.Write(65))
	assert.Equal(t, 65, target.c.Val)

	var steps []log.RegistrationStep
	notifications := 0
	for _, ev := range rec.Events() {
		if ev.Registration != nil {
			steps = append(steps, ev.Registration.Step)
		}
		if ev.Notification != nil {
			notifications++
		}
	}
	assert.Equal(t, []log.RegistrationStep{
		log.StepInit, log.StepAccessory, log.StepStart, log.StepAccessoryObject, log.StepService, log.StepService,
	}, steps)
	assert.Equal(t, 1, notifications)

	srv, err := e.server()
	require.NoError(t, err)
	assert.Equal(t, "03145154", srv.Pin)
}

func TestRemoteWriteNotifiesOnce(t *testing.T) {
	accessory.ResetEngineInit()
	t.Cleanup(accessory.ResetEngineInit)

	e := New(Config{StoragePath: t.TempDir()})

	level := 20
	brightness := accessory.NewInt(hap.CharBrightness,
		func() (int, error) { return level, nil },
		func(v int) error { level = v; return nil },
		accessory.WithMin(0), accessory.WithMax(100))
	a := accessory.New(e, accessory.Info{Name: "Lamp", ID: "AA:BB:CC:DD:EE:01", SetupCode: "031-45-154"},
		func(a *accessory.Accessory) error { return a.AddService(hap.ServiceLightbulb, brightness) })
	require.NoError(t, a.Register())
	require.NoError(t, e.start())

	target := e.events[brightness.EventHandle()]
	require.NotNil(t, target)

	// The server sends controller notifications from the update functions.
	var updates []*http.Request
	target.c.OnCValueUpdate(func(_ *hapchar.C, _, _ any, req *http.Request) {
		updates = append(updates, req)
	})

	req := httptest.NewRequest("PUT", "/characteristics", nil)
	_, code := target.c.SetValueRequest(70, req)
	assert.Equal(t, 0, code)
	assert.Equal(t, 70, level)
	assert.Equal(t, 70, target.c.Val)
	require.Len(t, updates, 1)
	assert.Same(t, req, updates[0])
	assert.False(t, target.c.inRemoteWrite())

	// Local changes still reach every controller.
	require.NoError(t, brightness.Write(80))
	require.Len(t, updates, 2)
	assert.Nil(t, updates[1])
	assert.Equal(t, 80, target.c.Val)
}

func TestPushEventErrors(t *testing.T) {
	e := New(Config{StoragePath: t.TempDir()})
	err := e.PushEvent(1, "missing", hap.IntValue(1))
	assert.ErrorIs(t, err, engine.ErrUnknownEventHandle)
	assert.True(t, strings.Contains(err.Error(), "missing"))
}

func TestRegisterAfterServe(t *testing.T) {
	e := New(Config{StoragePath: t.TempDir()})
	require.NoError(t, e.Init())
	require.NoError(t, e.start())

	_, err := e.RegisterAccessory(engine.RegistrationInfo{Name: "late"}, nil)
	assert.ErrorIs(t, err, engine.ErrAlreadyStarted)
}
