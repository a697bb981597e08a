// Package commands implements the hap-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/hap-go/hap-go/pkg/hap"
	"github.com/hap-go/hap-go/pkg/log"
)

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [session] DIRECTION LAYER Type accessory
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	session := shortenSessionID(event.SessionID)
	dir := event.Direction.String()

	var typeLabel string
	switch {
	case event.Registration != nil:
		typeLabel = event.Registration.Step.String()
	case event.Access != nil:
		typeLabel = event.Access.Op.String()
	case event.Notification != nil:
		typeLabel = "EVENT"
	case event.Error != nil:
		typeLabel = "Error"
	default:
		typeLabel = "Unknown"
	}

	fmt.Fprintf(w, "%s [%s] %-3s %s %s", ts, session, dir, event.Layer.String(), typeLabel)
	if event.AccessoryID != "" {
		fmt.Fprintf(w, " %s", event.AccessoryID)
	}
	if event.AID != 0 {
		fmt.Fprintf(w, " (aid %d)", event.AID)
	}
	fmt.Fprintln(w)

	switch {
	case event.Registration != nil:
		formatRegistrationDetails(w, event.Registration)
	case event.Access != nil:
		formatAccessDetails(w, event.Access)
	case event.Notification != nil:
		formatNotificationDetails(w, event.Notification)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenSessionID returns the first 8 characters of the session ID.
func shortenSessionID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatRegistrationDetails(w io.Writer, r *log.RegistrationEvent) {
	if r.Name != "" {
		fmt.Fprintf(w, "  Name: %s\n", r.Name)
	}
	if r.Category != 0 {
		fmt.Fprintf(w, "  Category: %s\n", hap.Category(r.Category))
	}
	if r.Service != "" {
		fmt.Fprintf(w, "  Service: %s (%d characteristics)\n", hap.ServiceType(r.Service), r.Characteristics)
	}
}

func formatAccessDetails(w io.Writer, a *log.AccessEvent) {
	fmt.Fprintf(w, "  Characteristic: %s (iid %d)\n", hap.CharacteristicType(a.Type), a.IID)
	if a.Value != nil {
		fmt.Fprintf(w, "  Value: %v\n", a.Value)
	}
	if a.Status != 0 {
		fmt.Fprintf(w, "  Status: %s (%d)\n", hap.Status(a.Status), a.Status)
	}
	if a.Duration != nil {
		fmt.Fprintf(w, "  Duration: %s\n", formatDuration(*a.Duration))
	}
}

func formatNotificationDetails(w io.Writer, n *log.NotificationEvent) {
	fmt.Fprintf(w, "  Characteristic: %s (iid %d)\n", hap.CharacteristicType(n.Type), n.IID)
	if n.Value != nil {
		fmt.Fprintf(w, "  Value: %v\n", n.Value)
	}
	fmt.Fprintf(w, "  Handle: %s\n", n.EventHandle)
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer.String())
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Code != nil {
		fmt.Fprintf(w, "  Code: %d\n", *err.Code)
	}
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseLayerFlag parses a layer string from command-line flag (case-insensitive).
func ParseLayerFlag(s string) (log.Layer, error) {
	l, ok := log.ParseLayer(s)
	if !ok {
		return 0, fmt.Errorf("invalid layer: %s (must be engine, controller, or bridge)", s)
	}
	return l, nil
}

// ParseDirectionFlag parses a direction string from command-line flag (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	d, ok := log.ParseDirection(s)
	if !ok {
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
	return d, nil
}

// ParseCategoryFlag parses a category string from command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	c, ok := log.ParseCategory(s)
	if !ok {
		return 0, fmt.Errorf("invalid category: %s (must be registration, access, notification, or error)", s)
	}
	return c, nil
}

// RunView executes the view command.
func RunView(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}

	return nil
}
