package mqttbridge_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hap-go/hap-go/pkg/accessory"
	"github.com/hap-go/hap-go/pkg/engine/memory"
	"github.com/hap-go/hap-go/pkg/hap"
	"github.com/hap-go/hap-go/pkg/log"
	"github.com/hap-go/hap-go/pkg/mqttbridge"
	"github.com/hap-go/hap-go/pkg/mqttbridge/mocks"
)

type lamp struct {
	on  bool
	hue float32

	On  *accessory.Typed[bool]
	Hue *accessory.Typed[float32]
}

func startLamp(t *testing.T) (*lamp, *accessory.Accessory) {
	t.Helper()
	accessory.ResetEngineInit()
	t.Cleanup(accessory.ResetEngineInit)

	l := &lamp{}
	l.On = accessory.NewBool(hap.CharOn,
		func() (bool, error) { return l.on, nil },
		func(v bool) error { l.on = v; return nil })
	l.Hue = accessory.NewFloat(hap.CharHue,
		func() (float32, error) { return l.hue, nil },
		func(v float32) error { l.hue = v; return nil })

	e := memory.New()
	a := accessory.New(e, accessory.Info{Name: "Lamp", ID: "AA:BB", SetupCode: "031-45-154"}, func(a *accessory.Accessory) error {
		return a.AddService(hap.ServiceLightbulb, l.On, l.Hue)
	})
	require.NoError(t, a.Register())
	require.NoError(t, e.Start())
	return l, a
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "hap/AA:BB/Lightbulb/On", mqttbridge.Topic("hap", "AA:BB", hap.ServiceLightbulb, 1, hap.CharOn))
	assert.Equal(t, "AA:BB/Switch/On", mqttbridge.Topic("", "AA:BB", hap.ServiceSwitch, 1, hap.CharOn))
	assert.Equal(t, "hap/a_b_c_d/Switch/On", mqttbridge.Topic("hap", "a/b+c#d", hap.ServiceSwitch, 1, hap.CharOn))
	assert.Equal(t, "hap/AA:BB/Switch_2/On", mqttbridge.Topic("hap", "AA:BB", hap.ServiceSwitch, 2, hap.CharOn))
}

func TestAttachSameServiceTypeTwice(t *testing.T) {
	accessory.ResetEngineInit()
	t.Cleanup(accessory.ResetEngineInit)

	var left, right bool
	leftOn := accessory.NewBool(hap.CharOn,
		func() (bool, error) { return left, nil },
		func(v bool) error { left = v; return nil })
	rightOn := accessory.NewBool(hap.CharOn,
		func() (bool, error) { return right, nil },
		func(v bool) error { right = v; return nil })

	e := memory.New()
	a := accessory.New(e, accessory.Info{Name: "Outlet", ID: "CC:DD", SetupCode: "031-45-154"}, func(a *accessory.Accessory) error {
		if err := a.AddService(hap.ServiceSwitch, leftOn); err != nil {
			return err
		}
		return a.AddService(hap.ServiceSwitch, rightOn)
	})
	require.NoError(t, a.Register())
	require.NoError(t, e.Start())

	client := mocks.NewMockClient(t)
	handlers := map[string]mqttbridge.MessageHandler{}
	client.EXPECT().Subscribe(mock.Anything, mock.Anything).
		Run(func(topic string, h mqttbridge.MessageHandler) { handlers[topic] = h }).
		Return(nil).Times(2)
	client.EXPECT().Publish("hap/CC:DD/Switch/On", true, []byte("false")).Return(nil).Once()
	client.EXPECT().Publish("hap/CC:DD/Switch_2/On", true, []byte("false")).Return(nil).Once()

	b := mqttbridge.New(client, mqttbridge.DefaultConfig())
	require.NoError(t, b.Attach(a))
	require.Contains(t, handlers, "hap/CC:DD/Switch/On/set")
	require.Contains(t, handlers, "hap/CC:DD/Switch_2/On/set")

	client.EXPECT().Publish("hap/CC:DD/Switch_2/On", true, []byte("true")).Return(nil).Once()
	handlers["hap/CC:DD/Switch_2/On/set"]("hap/CC:DD/Switch_2/On/set", []byte("true"))
	assert.True(t, right)
	assert.False(t, left)

	client.EXPECT().Publish("hap/CC:DD/Switch/On", true, []byte("true")).Return(nil).Once()
	handlers["hap/CC:DD/Switch/On/set"]("hap/CC:DD/Switch/On/set", []byte("true"))
	assert.True(t, left)
	assert.Zero(t, b.Stats().WriteErrors)
}

func TestAttachRejectsTopicCollision(t *testing.T) {
	accessory.ResetEngineInit()
	t.Cleanup(accessory.ResetEngineInit)

	read := func() (bool, error) { return false, nil }
	write := func(bool) error { return nil }
	first := accessory.NewBool(hap.CharOn, read, write)
	second := accessory.NewBool(hap.CharOn, read, write)

	e := memory.New()
	a := accessory.New(e, accessory.Info{Name: "Odd", ID: "EE:FF", SetupCode: "031-45-154"}, func(a *accessory.Accessory) error {
		return a.AddService(hap.ServiceSwitch, first, second)
	})
	require.NoError(t, a.Register())
	require.NoError(t, e.Start())

	client := mocks.NewMockClient(t)
	client.EXPECT().Subscribe("hap/EE:FF/Switch/On/set", mock.Anything).Return(nil).Once()
	client.EXPECT().Publish("hap/EE:FF/Switch/On", true, []byte("false")).Return(nil).Once()

	b := mqttbridge.New(client, mqttbridge.DefaultConfig())
	assert.ErrorIs(t, b.Attach(a), mqttbridge.ErrTopicTaken)
}

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		name    string
		kind    hap.Kind
		payload string
		want    hap.Value
		wantErr bool
	}{
		{"json bool", hap.KindBool, "true", hap.BoolValue(true), false},
		{"word bool", hap.KindBool, "off", hap.BoolValue(false), false},
		{"numeric bool", hap.KindBool, "1", hap.BoolValue(true), false},
		{"int", hap.KindInt, " 42\n", hap.IntValue(42), false},
		{"fractional int", hap.KindInt, "4.5", hap.Value{}, true},
		{"float", hap.KindFloat, "21.5", hap.FloatSlotValue(2150), false},
		{"json string", hap.KindString, `"Desk"`, hap.StringValue("Desk"), false},
		{"raw string", hap.KindString, "Desk Lamp", hap.StringValue("Desk Lamp"), false},
		{"garbage", hap.KindFloat, "warm", hap.Value{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mqttbridge.DecodePayload(tt.kind, []byte(tt.payload))
			if tt.wantErr {
				assert.ErrorIs(t, err, hap.ErrInvalidValue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAttachPublishesAndApplySet(t *testing.T) {
	l, a := startLamp(t)
	client := mocks.NewMockClient(t)
	rec := &log.Recorder{}

	handlers := map[string]mqttbridge.MessageHandler{}
	client.EXPECT().Subscribe(mock.Anything, mock.Anything).
		Run(func(topic string, h mqttbridge.MessageHandler) { handlers[topic] = h }).
		Return(nil).Times(2)
	client.EXPECT().Publish("hap/AA:BB/Lightbulb/On", true, []byte("false")).Return(nil).Once()
	client.EXPECT().Publish("hap/AA:BB/Lightbulb/Hue", true, []byte("0")).Return(nil).Once()

	b := mqttbridge.New(client, mqttbridge.DefaultConfig(), mqttbridge.WithTrace(rec))
	require.NoError(t, b.Attach(a))
	require.Contains(t, handlers, "hap/AA:BB/Lightbulb/On/set")
	require.Contains(t, handlers, "hap/AA:BB/Lightbulb/Hue/set")

	// Local write.
	client.EXPECT().Publish("hap/AA:BB/Lightbulb/On", true, []byte("true")).Return(nil).Once()
	require.NoError(t, l.On.Write(true))

	// Remote write.
	client.EXPECT().Publish("hap/AA:BB/Lightbulb/Hue", true, []byte("120.5")).Return(nil).Once()
	handlers["hap/AA:BB/Lightbulb/Hue/set"]("hap/AA:BB/Lightbulb/Hue/set", []byte("120.5"))
	assert.InDelta(t, 120.5, float64(l.hue), 0.001)

	stats := b.Stats()
	assert.Equal(t, uint64(4), stats.Published)
	assert.Equal(t, uint64(1), stats.Received)
	assert.Zero(t, stats.WriteErrors)

	var access int
	for _, ev := range rec.Events() {
		assert.Equal(t, log.LayerBridge, ev.Layer)
		if ev.Access != nil {
			access++
			assert.Equal(t, "AA:BB", ev.AccessoryID)
			assert.Equal(t, 0, ev.Access.Status)
		}
	}
	assert.Equal(t, 1, access)

	client.EXPECT().Disconnect().Once()
	b.Close()
}

func TestRejectedSet(t *testing.T) {
	l, a := startLamp(t)
	client := mocks.NewMockClient(t)

	var onSet mqttbridge.MessageHandler
	client.EXPECT().Subscribe("hap/AA:BB/Lightbulb/On/set", mock.Anything).
		Run(func(_ string, h mqttbridge.MessageHandler) { onSet = h }).
		Return(nil).Once()
	client.EXPECT().Subscribe("hap/AA:BB/Lightbulb/Hue/set", mock.Anything).Return(nil).Once()
	client.EXPECT().Publish(mock.Anything, true, mock.Anything).Return(nil).Times(2)

	b := mqttbridge.New(client, mqttbridge.DefaultConfig())
	require.NoError(t, b.Attach(a))

	onSet("hap/AA:BB/Lightbulb/On/set", []byte("maybe"))
	assert.False(t, l.on)
	assert.Equal(t, uint64(1), b.Stats().WriteErrors)

	// Unknown topics are ignored.
	onSet("hap/AA:BB/Lightbulb/Brightness/set", []byte("5"))
	assert.Equal(t, uint64(2), b.Stats().Received)
}

func TestPublishFailure(t *testing.T) {
	_, a := startLamp(t)
	client := mocks.NewMockClient(t)
	client.EXPECT().Subscribe(mock.Anything, mock.Anything).Return(nil).Times(2)
	client.EXPECT().Publish(mock.Anything, false, mock.Anything).Return(errors.New("broker gone")).Times(2)

	cfg := mqttbridge.DefaultConfig()
	cfg.Retained = false
	rec := &log.Recorder{}
	b := mqttbridge.New(client, cfg, mqttbridge.WithTrace(rec))
	require.NoError(t, b.Attach(a))

	assert.Equal(t, uint64(2), b.Stats().PublishErrors)
	events := rec.Events()
	require.Len(t, events, 2)
	assert.Equal(t, log.CategoryError, events[0].Category)
}

func TestAttachTwice(t *testing.T) {
	_, a := startLamp(t)
	client := mocks.NewMockClient(t)
	client.EXPECT().Subscribe(mock.Anything, mock.Anything).Return(nil).Times(2)
	client.EXPECT().Publish(mock.Anything, mock.Anything, mock.Anything).Return(nil).Times(2)

	b := mqttbridge.New(client, mqttbridge.DefaultConfig())
	require.NoError(t, b.Attach(a))
	assert.ErrorIs(t, b.Attach(a), mqttbridge.ErrAlreadyBridged)
}

func TestSubscribeFailure(t *testing.T) {
	_, a := startLamp(t)
	client := mocks.NewMockClient(t)
	client.EXPECT().Subscribe(mock.Anything, mock.Anything).Return(errors.New("not authorized")).Once()

	b := mqttbridge.New(client, mqttbridge.DefaultConfig())
	assert.Error(t, b.Attach(a))
}
