// Package mqttbridge mirrors accessory characteristics to MQTT.
//
// Every characteristic is published to
//
//	<prefix>/<accessory-id>/<service>/<characteristic>
//
// When an accessory has several services of one type, the second one is
// published under <service>_2, the third under <service>_3 and so on.
// as a JSON scalar whenever its value changes. Writable characteristics also
// accept new values on the same topic with a /set suffix.
package mqttbridge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hap-go/hap-go/pkg/accessory"
	"github.com/hap-go/hap-go/pkg/hap"
	"github.com/hap-go/hap-go/pkg/log"
)

// SetSuffix is appended to a characteristic topic for writes.
const SetSuffix = "/set"

// ErrAlreadyBridged is returned when an accessory is attached twice.
var ErrAlreadyBridged = errors.New("accessory already bridged")

// ErrTopicTaken is returned when two characteristics map to the same topic.
var ErrTopicTaken = errors.New("mqtt topic already in use")

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithTrace sets the trace logger.
func WithTrace(l log.Logger) Option {
	return func(b *Bridge) { b.trace = log.OrNoop(l) }
}

// Stats counts bridge traffic.
type Stats struct {
	Published     uint64
	PublishErrors uint64
	Received      uint64
	WriteErrors   uint64
}

// Bridge publishes characteristic changes and applies remote writes.
type Bridge struct {
	client   Client
	prefix   string
	retained bool
	logger   *slog.Logger
	trace    log.Logger

	mu      sync.Mutex
	bridged map[string]bool
	topics  map[string]accessory.Characteristic
	stats   Stats
}

// New creates a bridge publishing through client.
func New(client Client, config Config, opts ...Option) *Bridge {
	b := &Bridge{
		client:   client,
		prefix:   strings.TrimSuffix(config.TopicPrefix, "/"),
		retained: config.Retained,
		logger:   slog.Default(),
		trace:    log.NoopLogger{},
		bridged:  make(map[string]bool),
		topics:   make(map[string]accessory.Characteristic),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Topic returns the state topic of a characteristic. instance counts the
// services of type svc on the accessory starting at 1; the second and later
// services get the instance appended to their topic segment.
func Topic(prefix, accessoryID string, svc hap.ServiceType, instance int, typ hap.CharacteristicType) string {
	name := svc.String()
	if instance > 1 {
		name = fmt.Sprintf("%s_%d", name, instance)
	}
	parts := []string{sanitize(accessoryID), sanitize(name), sanitize(typ.String())}
	if prefix != "" {
		parts = append([]string{prefix}, parts...)
	}
	return strings.Join(parts, "/")
}

// sanitize replaces characters that have a meaning in MQTT topics.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '+', '#', ' ':
			return '_'
		}
		return r
	}, s)
}

// Attach mirrors every characteristic of a's services. It must be called
// after the accessory's services were added. The current values are
// published right away.
func (b *Bridge) Attach(a *accessory.Accessory) error {
	id := a.Info().ID

	b.mu.Lock()
	if b.bridged[id] {
		b.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAlreadyBridged, id)
	}
	b.bridged[id] = true
	b.mu.Unlock()

	instances := make(map[hap.ServiceType]int)
	for _, svc := range a.Services() {
		instances[svc.Type]++
		for _, c := range svc.Characteristics {
			topic := Topic(b.prefix, id, svc.Type, instances[svc.Type], c.Type())

			b.mu.Lock()
			if _, taken := b.topics[topic]; taken {
				b.mu.Unlock()
				return fmt.Errorf("%w: %s", ErrTopicTaken, topic)
			}
			b.topics[topic] = c
			b.mu.Unlock()

			c.OnChange(func(c accessory.Characteristic) { b.publish(id, topic, c) })

			if c.CanWrite() {
				if err := b.client.Subscribe(topic+SetSuffix, b.handleSet); err != nil {
					return fmt.Errorf("subscribe %s: %w", topic+SetSuffix, err)
				}
			}
			if c.CanRead() {
				b.publish(id, topic, c)
			}
		}
	}

	b.logger.Debug("accessory bridged", "accessory", id, "prefix", b.prefix)
	return nil
}

// Stats returns a copy of the traffic counters.
func (b *Bridge) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// Close disconnects the client.
func (b *Bridge) Close() {
	b.client.Disconnect()
}

func (b *Bridge) publish(accessoryID, topic string, c accessory.Characteristic) {
	v, err := c.ReadValue()
	if err != nil {
		b.logger.Warn("mqtt publish: read failed", "topic", topic, "error", err)
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		b.logger.Warn("mqtt publish: encode failed", "topic", topic, "error", err)
		return
	}

	err = b.client.Publish(topic, b.retained, payload)

	b.mu.Lock()
	if err != nil {
		b.stats.PublishErrors++
	} else {
		b.stats.Published++
	}
	b.mu.Unlock()

	if err != nil {
		b.logger.Warn("mqtt publish failed", "topic", topic, "error", err)
		b.traceError(accessoryID, err, "publish "+topic)
		return
	}

	b.emit(log.Event{
		Direction:   log.DirectionOut,
		Category:    log.CategoryNotification,
		AccessoryID: accessoryID,
		Notification: &log.NotificationEvent{
			Type:        string(c.Type()),
			EventHandle: topic,
			Value:       v.Native(),
		},
	})
}

// handleSet applies a payload received on a /set topic.
func (b *Bridge) handleSet(topic string, payload []byte) {
	state := strings.TrimSuffix(topic, SetSuffix)

	b.mu.Lock()
	c, ok := b.topics[state]
	b.stats.Received++
	b.mu.Unlock()
	if !ok {
		b.logger.Debug("mqtt set for unknown topic", "topic", topic)
		return
	}

	start := time.Now()
	v, err := DecodePayload(c.Kind(), payload)
	if err == nil {
		err = c.WriteValue(v)
	}

	access := &log.AccessEvent{
		Op:     log.OpWrite,
		Type:   string(c.Type()),
		Value:  v.Native(),
		Status: int(hap.StatusFor(err)),
	}
	dur := time.Since(start)
	access.Duration = &dur
	b.emit(log.Event{
		Direction:   log.DirectionIn,
		Category:    log.CategoryAccess,
		AccessoryID: accessoryFromTopic(b.prefix, state),
		Access:      access,
	})

	if err != nil {
		b.mu.Lock()
		b.stats.WriteErrors++
		b.mu.Unlock()
		b.logger.Warn("mqtt set rejected", "topic", topic, "payload", string(payload), "error", err)
	}
}

// DecodePayload decodes a /set payload. JSON scalars are accepted, as are
// the plain words ParseValue understands, such as on and off.
func DecodePayload(kind hap.Kind, payload []byte) (hap.Value, error) {
	payload = bytes.TrimSpace(payload)

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var x any
	if err := dec.Decode(&x); err == nil && !dec.More() {
		if v, err := hap.FromNative(kind, x); err == nil {
			return v, nil
		}
	}
	return hap.ParseValue(kind, string(payload))
}

func accessoryFromTopic(prefix, topic string) string {
	topic = strings.TrimPrefix(topic, prefix+"/")
	id, _, _ := strings.Cut(topic, "/")
	return id
}

func (b *Bridge) emit(ev log.Event) {
	ev.Timestamp = time.Now()
	ev.Layer = log.LayerBridge
	b.trace.Log(ev)
}

func (b *Bridge) traceError(accessoryID string, err error, context string) {
	b.emit(log.Event{
		Direction:   log.DirectionOut,
		Category:    log.CategoryError,
		AccessoryID: accessoryID,
		Error: &log.ErrorEventData{
			Layer:   log.LayerBridge,
			Message: err.Error(),
			Context: context,
		},
	})
}
