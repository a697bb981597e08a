package log

import "time"

// Stats summarizes a trace.
type Stats struct {
	Total       int
	ByLayer     map[Layer]int
	ByCategory  map[Category]int
	ByOp        map[AccessOp]int
	Accessories map[string]int
	Errors      int

	// AccessErrors counts access events with a non-zero HAP status.
	AccessErrors int

	First, Last time.Time
}

// NewStats returns empty stats.
func NewStats() *Stats {
	return &Stats{
		ByLayer:     make(map[Layer]int),
		ByCategory:  make(map[Category]int),
		ByOp:        make(map[AccessOp]int),
		Accessories: make(map[string]int),
	}
}

// Add counts one event.
func (s *Stats) Add(event Event) {
	s.Total++
	s.ByLayer[event.Layer]++
	s.ByCategory[event.Category]++
	if event.AccessoryID != "" {
		s.Accessories[event.AccessoryID]++
	}
	if event.Access != nil {
		s.ByOp[event.Access.Op]++
		if event.Access.Status != 0 {
			s.AccessErrors++
		}
	}
	if event.Error != nil {
		s.Errors++
	}

	if s.First.IsZero() || event.Timestamp.Before(s.First) {
		s.First = event.Timestamp
	}
	if event.Timestamp.After(s.Last) {
		s.Last = event.Timestamp
	}
}

// Duration returns the time between the first and last event.
func (s *Stats) Duration() time.Duration {
	if s.Total == 0 {
		return 0
	}
	return s.Last.Sub(s.First)
}
