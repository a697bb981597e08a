package memory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hap-go/hap-go/pkg/engine"
	"github.com/hap-go/hap-go/pkg/hap"
	"github.com/hap-go/hap-go/pkg/log"
)

// fakeHandler is a characteristic stored in a field.
type fakeHandler struct {
	value   hap.Value
	handle  engine.EventHandle
	writes  int
	failErr error
}

func (f *fakeHandler) ReadValue() (hap.Value, error) {
	if f.failErr != nil {
		return hap.Value{}, f.failErr
	}
	return f.value, nil
}

func (f *fakeHandler) WriteValue(v hap.Value) error {
	f.writes++
	f.value = v
	return nil
}

func (f *fakeHandler) SetEventHandle(h engine.EventHandle, enable bool) error {
	if enable {
		f.handle = h
	} else {
		f.handle = ""
	}
	return nil
}

func readFn(o engine.Handler) (hap.Value, error) { return o.ReadValue() }

func writeFn(o engine.Handler, v hap.Value) error { return o.WriteValue(v) }

func subFn(o engine.Handler, h engine.EventHandle, on bool) error { return o.SetEventHandle(h, on) }

func rwDescriptor(typ hap.CharacteristicType, f *fakeHandler) engine.Descriptor {
	return engine.Descriptor{
		Type:      typ,
		Format:    typ.Format(),
		Value:     f.value,
		Owner:     f,
		Read:      readFn,
		Write:     writeFn,
		Subscribe: subFn,
	}
}

// setup registers one accessory with a lightbulb service holding on and
// brightness, and returns the engine and the handlers.
func setup(t *testing.T, opts ...Option) (*Engine, engine.AccessoryHandle, *fakeHandler, *fakeHandler) {
	t.Helper()

	e := New(opts...)
	require.NoError(t, e.Init())

	on := &fakeHandler{value: hap.BoolValue(false)}
	level := &fakeHandler{value: hap.IntValue(50)}

	var h engine.AccessoryHandle
	h, err := e.RegisterAccessory(engine.RegistrationInfo{Name: "Lamp", ID: "AA:BB:CC:DD:EE:FF", Category: hap.CategoryLightbulb},
		func() error {
			obj, err := e.AddAccessory(h)
			if err != nil {
				return err
			}
			if err := e.AddServiceAndCharacteristics(h, obj, hap.ServiceAccessoryInformation, []engine.Descriptor{
				{Type: hap.CharName, Format: hap.FormatString, Value: hap.StringValue("Lamp")},
			}); err != nil {
				return err
			}
			d := rwDescriptor(hap.CharBrightness, level)
			d.OverrideMin, d.Min = true, hap.IntValue(0)
			d.OverrideMax, d.Max = true, hap.IntValue(100)
			return e.AddServiceAndCharacteristics(h, obj, hap.ServiceLightbulb, []engine.Descriptor{
				rwDescriptor(hap.CharOn, on),
				d,
			})
		})
	require.NoError(t, err)
	require.NoError(t, e.Start())

	return e, h, on, level
}

func TestRegisterRequiresInit(t *testing.T) {
	e := New()
	_, err := e.RegisterAccessory(engine.RegistrationInfo{ID: "x"}, nil)
	assert.ErrorIs(t, err, engine.ErrNotInitialized)
}

func TestRegisterDuplicateID(t *testing.T) {
	e := New()
	require.NoError(t, e.Init())

	_, err := e.RegisterAccessory(engine.RegistrationInfo{ID: "x"}, nil)
	require.NoError(t, err)
	_, err = e.RegisterAccessory(engine.RegistrationInfo{ID: "x"}, nil)
	assert.ErrorIs(t, err, ErrDuplicateAccessory)
}

func TestStartRunsEachInitCallbackOnce(t *testing.T) {
	e := New()
	require.NoError(t, e.Init())

	var order []string
	for _, id := range []string{"a", "b"} {
		id := id
		_, err := e.RegisterAccessory(engine.RegistrationInfo{ID: id}, func() error {
			order = append(order, id)
			return nil
		})
		require.NoError(t, err)
	}

	require.NoError(t, e.Start())
	require.NoError(t, e.Start())
	assert.Equal(t, []string{"a", "b"}, order)

	_, err := e.RegisterAccessory(engine.RegistrationInfo{ID: "c"}, func() error {
		order = append(order, "c")
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, e.Start())
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestStartStopsAtFailingCallback(t *testing.T) {
	e := New()
	require.NoError(t, e.Init())

	boom := errors.New("boom")
	ran := false
	_, _ = e.RegisterAccessory(engine.RegistrationInfo{ID: "a"}, func() error { return boom })
	_, _ = e.RegisterAccessory(engine.RegistrationInfo{ID: "b"}, func() error { ran = true; return nil })

	assert.ErrorIs(t, e.Start(), boom)
	assert.False(t, ran)

	require.NoError(t, e.Start())
	assert.True(t, ran)
}

func TestInstanceIDs(t *testing.T) {
	e, _, _, _ := setup(t)

	accs := e.Accessories()
	require.Len(t, accs, 1)
	a := accs[0]
	assert.Equal(t, uint64(1), a.AID)
	assert.True(t, a.Started)
	require.Len(t, a.Services, 2)

	info := a.Services[0]
	assert.Equal(t, uint64(1), info.IID)
	assert.Equal(t, uint64(2), info.Characteristics[0].IID)
	assert.Equal(t, []string{"pr"}, info.Characteristics[0].Permissions)

	bulb := a.Services[1]
	assert.Equal(t, uint64(3), bulb.IID)
	assert.Equal(t, uint64(4), bulb.Characteristics[0].IID)
	assert.Equal(t, uint64(5), bulb.Characteristics[1].IID)
	assert.Equal(t, []string{"pr", "pw", "ev"}, bulb.Characteristics[1].Permissions)
	assert.Equal(t, hap.IntValue(100), bulb.Characteristics[1].Max)

	iid, ok := e.Find(1, hap.CharBrightness)
	assert.True(t, ok)
	assert.Equal(t, uint64(5), iid)
}

func TestAddServiceDoesNotRetainDescriptors(t *testing.T) {
	e := New()
	require.NoError(t, e.Init())

	f := &fakeHandler{value: hap.IntValue(1)}
	descs := []engine.Descriptor{rwDescriptor(hap.CharTargetHeatingCoolingState, f)}
	descs[0].OverrideValidValues = true
	descs[0].ValidValues = []int{0, 1, 3}

	var h engine.AccessoryHandle
	h, err := e.RegisterAccessory(engine.RegistrationInfo{ID: "t"}, func() error {
		obj, err := e.AddAccessory(h)
		if err != nil {
			return err
		}
		return e.AddServiceAndCharacteristics(h, obj, hap.ServiceThermostat, descs)
	})
	require.NoError(t, err)
	require.NoError(t, e.Start())

	descs[0].ValidValues[0] = 42
	descs[0] = engine.Descriptor{}

	c, err := e.Characteristic(1, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 3}, c.ValidValues)
	assert.Equal(t, hap.CharTargetHeatingCoolingState, c.Type)
}

func TestAddServiceRejectsBadDescriptor(t *testing.T) {
	e := New()
	require.NoError(t, e.Init())

	var h engine.AccessoryHandle
	h, _ = e.RegisterAccessory(engine.RegistrationInfo{ID: "t"}, func() error {
		obj, err := e.AddAccessory(h)
		if err != nil {
			return err
		}
		return e.AddServiceAndCharacteristics(h, obj, hap.ServiceSwitch, []engine.Descriptor{
			{Type: hap.CharOn, Format: hap.FormatBool, Value: hap.IntValue(3)},
		})
	})
	assert.ErrorIs(t, e.Start(), ErrInvalidDescriptor)
}

func TestAddServiceUnknownHandle(t *testing.T) {
	e := New()
	err := e.AddServiceAndCharacteristics(7, 1, hap.ServiceSwitch, nil)
	assert.ErrorIs(t, err, engine.ErrUnknownAccessory)

	_, err = e.AddAccessory(7)
	assert.ErrorIs(t, err, engine.ErrUnknownAccessory)
}

func TestReadWrite(t *testing.T) {
	e, _, on, level := setup(t)

	v, err := e.Read(1, 2)
	require.NoError(t, err)
	assert.Equal(t, hap.StringValue("Lamp"), v)

	require.NoError(t, e.Write(1, 4, hap.BoolValue(true)))
	assert.Equal(t, hap.BoolValue(true), on.value)

	v, err = e.Read(1, 4)
	require.NoError(t, err)
	assert.Equal(t, hap.BoolValue(true), v)

	require.NoError(t, e.Write(1, 5, hap.IntValue(80)))
	assert.Equal(t, 1, level.writes)
}

func TestWriteErrors(t *testing.T) {
	e, _, _, level := setup(t)

	tests := []struct {
		name string
		iid  uint64
		v    hap.Value
		want error
	}{
		{"static", 2, hap.StringValue("x"), hap.ErrNotWritable},
		{"kind mismatch", 5, hap.BoolValue(true), hap.ErrKindMismatch},
		{"above max", 5, hap.IntValue(101), hap.ErrOutOfRange},
		{"below min", 5, hap.IntValue(-1), hap.ErrOutOfRange},
		{"unknown", 99, hap.IntValue(1), ErrUnknownCharacteristic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, e.Write(1, tt.iid, tt.v), tt.want)
		})
	}
	assert.Equal(t, 0, level.writes)

	assert.ErrorIs(t, e.Write(9, 1, hap.IntValue(1)), engine.ErrUnknownAccessory)
}

func TestReadFailurePropagates(t *testing.T) {
	e, _, _, level := setup(t)
	boom := errors.New("sensor offline")
	level.failErr = boom

	_, err := e.Read(1, 5)
	assert.ErrorIs(t, err, boom)
}

func TestSubscribeAndPush(t *testing.T) {
	e, h, on, _ := setup(t)

	ev, err := e.Subscribe(1, 4)
	require.NoError(t, err)
	assert.NotEmpty(t, ev)
	assert.Equal(t, ev, on.handle)

	again, err := e.Subscribe(1, 4)
	require.NoError(t, err)
	assert.Equal(t, ev, again)

	require.NoError(t, e.PushEvent(h, ev, hap.BoolValue(true)))
	events := e.Events()
	require.Len(t, events, 1)
	assert.Equal(t, uint64(4), events[0].IID)
	assert.Equal(t, hap.BoolValue(true), events[0].Value)

	require.NoError(t, e.Unsubscribe(1, 4))
	assert.Empty(t, on.handle)
	assert.ErrorIs(t, e.PushEvent(h, ev, hap.BoolValue(false)), engine.ErrUnknownEventHandle)
	require.NoError(t, e.Unsubscribe(1, 4))

	e.ClearEvents()
	assert.Empty(t, e.Events())
}

func TestSubscribeStaticCharacteristic(t *testing.T) {
	e, _, _, _ := setup(t)

	_, err := e.Subscribe(1, 2)
	assert.ErrorIs(t, err, hap.ErrNotNotifiable)
}

func TestPushWrongAccessory(t *testing.T) {
	e, h, _, _ := setup(t)

	ev, err := e.Subscribe(1, 4)
	require.NoError(t, err)
	assert.ErrorIs(t, e.PushEvent(h+1, ev, hap.BoolValue(true)), engine.ErrUnknownEventHandle)
}

func TestTraceEvents(t *testing.T) {
	var rec log.Recorder
	e, _, _, _ := setup(t, WithTrace(&rec))

	_, _ = e.Read(1, 4)
	_ = e.Write(1, 2, hap.StringValue("x"))

	var steps []log.RegistrationStep
	var access []*log.AccessEvent
	for _, ev := range rec.Events() {
		assert.Equal(t, e.SessionID(), ev.SessionID)
		switch {
		case ev.Registration != nil:
			steps = append(steps, ev.Registration.Step)
		case ev.Access != nil:
			access = append(access, ev.Access)
		}
	}

	assert.Equal(t, []log.RegistrationStep{
		log.StepInit, log.StepAccessory, log.StepStart, log.StepAccessoryObject, log.StepService, log.StepService,
	}, steps)
	require.Len(t, access, 2)
	assert.Equal(t, log.OpRead, access[0].Op)
	assert.Equal(t, 0, access[0].Status)
	assert.Equal(t, log.OpWrite, access[1].Op)
	assert.Equal(t, int(hap.StatusReadOnly), access[1].Status)
}
