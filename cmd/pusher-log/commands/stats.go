package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jesusruizlopez/pusher-java-client/pkg/log"
)

// Stats summarizes a capture file.
type Stats struct {
	Total       int
	ByDirection map[string]int
	ByLayer     map[string]int
	ByCategory  map[string]int
	ByChannel   map[string]int
	FrameBytes  int
	Errors      int

	First time.Time
	Last  time.Time
}

// CollectStats reads the capture and aggregates counters.
func CollectStats(path string) (*Stats, error) {
	reader, err := log.NewReader(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture: %w", err)
	}
	events, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read capture: %w", err)
	}

	stats := &Stats{
		ByDirection: make(map[string]int),
		ByLayer:     make(map[string]int),
		ByCategory:  make(map[string]int),
		ByChannel:   make(map[string]int),
	}

	for _, event := range events {
		stats.Total++
		stats.ByDirection[event.Direction.String()]++
		stats.ByLayer[event.Layer.String()]++
		stats.ByCategory[event.Category.String()]++
		if event.Channel != "" {
			stats.ByChannel[event.Channel]++
		}
		if event.Frame != nil {
			stats.FrameBytes += event.Frame.Size
		}
		if event.Error != nil {
			stats.Errors++
		}

		if stats.First.IsZero() || event.Timestamp.Before(stats.First) {
			stats.First = event.Timestamp
		}
		if event.Timestamp.After(stats.Last) {
			stats.Last = event.Timestamp
		}
	}

	return stats, nil
}

// RunStats prints capture statistics.
func RunStats(w io.Writer, path string) error {
	stats, err := CollectStats(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Events:      %d\n", stats.Total)
	if stats.Total == 0 {
		return nil
	}

	fmt.Fprintf(w, "Time span:   %s to %s (%s)\n",
		stats.First.Format(time.RFC3339),
		stats.Last.Format(time.RFC3339),
		stats.Last.Sub(stats.First).Round(time.Millisecond))
	fmt.Fprintf(w, "Frame bytes: %d\n", stats.FrameBytes)
	fmt.Fprintf(w, "Errors:      %d\n", stats.Errors)

	printCounts(w, "By direction:", stats.ByDirection)
	printCounts(w, "By layer:", stats.ByLayer)
	printCounts(w, "By category:", stats.ByCategory)
	if len(stats.ByChannel) > 0 {
		printCounts(w, "By channel:", stats.ByChannel)
	}
	return nil
}

func printCounts(w io.Writer, title string, counts map[string]int) {
	fmt.Fprintf(w, "\n%s\n", title)

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(w, "  %-12s %d\n", k, counts[k])
	}
}
