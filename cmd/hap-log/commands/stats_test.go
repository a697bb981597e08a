package commands

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hap-go/hap-go/pkg/log"
)

func TestRunStats(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, Layer: log.LayerEngine, Category: log.CategoryRegistration, AccessoryID: "lamp",
			Registration: &log.RegistrationEvent{Step: log.StepInit}},
		{Timestamp: ts.Add(time.Second), Layer: log.LayerController, Category: log.CategoryAccess, AccessoryID: "lamp",
			Access: &log.AccessEvent{Op: log.OpRead, IID: 9}},
		{Timestamp: ts.Add(2 * time.Second), Layer: log.LayerController, Category: log.CategoryAccess, AccessoryID: "lamp",
			Access: &log.AccessEvent{Op: log.OpWrite, IID: 9, Status: -70404}},
		{Timestamp: ts.Add(3 * time.Second), Layer: log.LayerBridge, Category: log.CategoryError, AccessoryID: "sensor",
			Error: &log.ErrorEventData{Message: "test"}},
	}
	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, log.Filter{}, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"Total Events: 4",
		"Duration:   3s",
		"ENGINE:",
		fmt.Sprintf("%-14s %d", "CONTROLLER:", 2),
		"BRIDGE:",
		"READ:",
		fmt.Sprintf("%-14s %d", "FAILED:", 1),
		"Accessories: 2",
		"[lamp] 3 events",
		"[sensor] 1 events",
		"Errors: 1",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got:\n%s", want, output)
		}
	}
}

func TestRunStatsEmptyFile(t *testing.T) {
	path := createTestLogFile(t, nil)

	var buf bytes.Buffer
	if err := RunStats(path, log.Filter{}, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "Total Events: 0") {
		t.Errorf("expected zero events, got:\n%s", output)
	}
	if strings.Contains(output, "Time Range") {
		t.Errorf("empty trace should not print a time range:\n%s", output)
	}
}

func TestRunStatsFiltered(t *testing.T) {
	events := []log.Event{
		{Category: log.CategoryAccess, AccessoryID: "lamp", Access: &log.AccessEvent{Op: log.OpRead}},
		{Category: log.CategoryAccess, AccessoryID: "sensor", Access: &log.AccessEvent{Op: log.OpRead}},
	}
	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, log.Filter{AccessoryID: "sensor"}, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Total Events: 1") {
		t.Errorf("expected one event, got:\n%s", buf.String())
	}
}
