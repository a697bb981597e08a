package log

import (
	"context"
	"fmt"
	"log/slog"
)

// SlogAdapter writes trace events to an slog.Logger at Debug level, or at
// Warn level for error events.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter returns an adapter writing to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session", event.SessionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}
	if event.AccessoryID != "" {
		attrs = append(attrs, slog.String("accessory_id", event.AccessoryID))
	}
	if event.AID != 0 {
		attrs = append(attrs, slog.Uint64("aid", event.AID))
	}

	level := slog.LevelDebug

	switch {
	case event.Registration != nil:
		r := event.Registration
		attrs = append(attrs, slog.String("step", r.Step.String()))
		if r.Name != "" {
			attrs = append(attrs, slog.String("name", r.Name))
		}
		if r.Service != "" {
			attrs = append(attrs,
				slog.String("service", r.Service),
				slog.Int("characteristics", r.Characteristics),
			)
		}
	case event.Access != nil:
		acc := event.Access
		attrs = append(attrs,
			slog.String("op", acc.Op.String()),
			slog.Uint64("iid", acc.IID),
			slog.String("type", acc.Type),
		)
		if acc.Value != nil {
			attrs = append(attrs, slog.String("value", fmt.Sprint(acc.Value)))
		}
		if acc.Status != 0 {
			attrs = append(attrs, slog.Int("status", acc.Status))
		}
		if acc.Duration != nil {
			attrs = append(attrs, slog.Duration("duration", *acc.Duration))
		}
	case event.Notification != nil:
		n := event.Notification
		attrs = append(attrs,
			slog.Uint64("iid", n.IID),
			slog.String("type", n.Type),
			slog.String("event_handle", n.EventHandle),
			slog.String("value", fmt.Sprint(n.Value)),
		)
	case event.Error != nil:
		level = slog.LevelWarn
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
		if event.Error.Code != nil {
			attrs = append(attrs, slog.Int("error_code", *event.Error.Code))
		}
	}

	a.logger.LogAttrs(context.Background(), level, "hap trace", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
