package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/Mauin/ReactiveAwareness/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents      int
	EventsByLayer    map[log.Layer]int
	EventsByCategory map[log.Category]int
	Handles          map[string]*HandleStats
	Deliveries       map[log.DeliveryTarget]int
	Infos            map[log.InfoCode]int
	Errors           int
	CleanupErrors    int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// HandleStats holds statistics for a single connection handle.
type HandleStats struct {
	FirstSeen  time.Time
	LastSeen   time.Time
	Events     int
	Operation  string
	Name       string
	FinalState string
}

func newStats() *Stats {
	return &Stats{
		EventsByLayer:    make(map[log.Layer]int),
		EventsByCategory: make(map[log.Category]int),
		Handles:          make(map[string]*HandleStats),
		Deliveries:       make(map[log.DeliveryTarget]int),
		Infos:            make(map[log.InfoCode]int),
	}
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByLayer[event.Layer]++
	s.EventsByCategory[event.Category]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	switch {
	case event.Error != nil:
		s.Errors++
		if event.Error.Cleanup {
			s.CleanupErrors++
		}
	case event.Delivery != nil:
		s.Deliveries[event.Delivery.Target]++
	case event.Info != nil:
		s.Infos[event.Info.Code]++
	}

	if event.HandleID == "" {
		return
	}
	h, ok := s.Handles[event.HandleID]
	if !ok {
		h = &HandleStats{FirstSeen: event.Timestamp, LastSeen: event.Timestamp}
		s.Handles[event.HandleID] = h
	}
	h.Events++
	if event.Timestamp.After(h.LastSeen) {
		h.LastSeen = event.Timestamp
	}
	if h.Operation == "" {
		h.Operation = event.Operation
	}
	if h.Name == "" {
		h.Name = event.Name
	}
	if event.StateChange != nil && event.Layer == log.LayerConnection {
		h.FinalState = event.StateChange.NewState
	}
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := newStats()
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Awareness Diagnostic Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerConnection, log.LayerRequest, log.LayerFence, log.LayerDispatch, log.LayerTransport} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryState, log.CategoryError, log.CategoryDelivery, log.CategoryInfo} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if len(stats.Deliveries) > 0 {
		fmt.Fprintln(w, "Deliveries:")
		for _, t := range []log.DeliveryTarget{log.DeliveryInProcess, log.DeliveryPersistent} {
			if count := stats.Deliveries[t]; count > 0 {
				fmt.Fprintf(w, "  %-12s %d\n", t.String()+":", count)
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Handles: %d\n", len(stats.Handles))
	if len(stats.Handles) > 0 {
		type handleInfo struct {
			id    string
			stats *HandleStats
		}
		handles := make([]handleInfo, 0, len(stats.Handles))
		for id, hs := range stats.Handles {
			handles = append(handles, handleInfo{id, hs})
		}
		sort.Slice(handles, func(i, j int) bool {
			return handles[i].stats.FirstSeen.Before(handles[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, h := range handles {
			duration := h.stats.LastSeen.Sub(h.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, duration %s", shortenID(h.id), h.stats.Events, duration)
			if h.stats.Operation != "" {
				fmt.Fprintf(w, ", %s", h.stats.Operation)
				if h.stats.Name != "" {
					fmt.Fprintf(w, " %s", h.stats.Name)
				}
			}
			if h.stats.FinalState != "" {
				fmt.Fprintf(w, ", ended %s", h.stats.FinalState)
			}
			fmt.Fprintln(w)
		}
	}

	if len(stats.Infos) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Notices:")
		for _, code := range []log.InfoCode{log.InfoDuplicateNameReplaced, log.InfoUnregisterSkipped} {
			if count := stats.Infos[code]; count > 0 {
				fmt.Fprintf(w, "  %-24s %d\n", code.String()+":", count)
			}
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d (%d during cleanup)\n", stats.Errors, stats.CleanupErrors)
	}
}
