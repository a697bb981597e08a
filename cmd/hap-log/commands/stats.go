package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/hap-go/hap-go/pkg/log"
)

// RunStats analyzes the trace file and prints statistics.
func RunStats(path string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	stats := log.NewStats()
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.Add(event)
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *log.Stats) {
	fmt.Fprintln(w, "=== Accessory Trace Statistics ===")
	fmt.Fprintln(w)

	// Time range
	if stats.Total > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.First.Format(time.RFC3339),
			stats.Last.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.Duration().Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.Total)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerEngine, log.LayerController, log.LayerBridge} {
		if count := stats.ByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryRegistration, log.CategoryAccess, log.CategoryNotification, log.CategoryError} {
		if count := stats.ByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if len(stats.ByOp) > 0 {
		fmt.Fprintln(w, "Accesses by Operation:")
		for _, op := range []log.AccessOp{log.OpRead, log.OpWrite, log.OpSubscribe, log.OpUnsubscribe} {
			if count := stats.ByOp[op]; count > 0 {
				fmt.Fprintf(w, "  %-14s %d\n", op.String()+":", count)
			}
		}
		if stats.AccessErrors > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", "FAILED:", stats.AccessErrors)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Accessories: %d\n", len(stats.Accessories))
	ids := make([]string, 0, len(stats.Accessories))
	for id := range stats.Accessories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(w, "  [%s] %d events\n", id, stats.Accessories[id])
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
