// Package commands implements the pusher-log subcommands.
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/jesusruizlopez/pusher-java-client/pkg/log"
)

// ParseLayer converts a layer flag value to the log enum.
func ParseLayer(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.LayerTransport, nil
	case "wire":
		return log.LayerWire, nil
	case "channel":
		return log.LayerChannel, nil
	default:
		return 0, fmt.Errorf("unknown layer %q (transport, wire, channel)", s)
	}
}

// ParseDirection converts a direction flag value to the log enum.
func ParseDirection(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("unknown direction %q (in, out)", s)
	}
}

// ParseCategory converts a category flag value to the log enum.
func ParseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "message":
		return log.CategoryMessage, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("unknown category %q (message, state, error)", s)
	}
}

// RunView prints the capture's events matching the filter, one line
// per event.
func RunView(w io.Writer, path string, filter *log.Filter) error {
	reader, err := log.NewReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open capture: %w", err)
	}
	events, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read capture: %w", err)
	}

	for _, event := range events {
		fmt.Fprintln(w, FormatEvent(event))
	}
	fmt.Fprintf(w, "\n%d events\n", len(events))
	return nil
}

// FormatEvent renders one event as a single line.
func FormatEvent(event log.Event) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %-3s %-9s %-7s",
		event.Timestamp.Format("15:04:05.000"),
		event.Direction,
		event.Layer,
		event.Category)

	if event.Channel != "" {
		fmt.Fprintf(&b, " [%s]", event.Channel)
	}

	switch {
	case event.Message != nil:
		fmt.Fprintf(&b, " %s", event.Message.Event)
		if event.Message.ID != "" {
			fmt.Fprintf(&b, " id=%s", event.Message.ID)
		}
		if event.Message.Payload != "" {
			fmt.Fprintf(&b, " %s", clip(event.Message.Payload, 80))
		}
	case event.Frame != nil:
		fmt.Fprintf(&b, " %d bytes %s", event.Frame.Size, clip(event.Frame.Text, 80))
	case event.StateChange != nil:
		fmt.Fprintf(&b, " %s -> %s", event.StateChange.From, event.StateChange.To)
	case event.Error != nil:
		if event.Error.Code != 0 {
			fmt.Fprintf(&b, " error %d: %s", event.Error.Code, event.Error.Message)
		} else {
			fmt.Fprintf(&b, " error: %s", event.Error.Message)
		}
	}

	return b.String()
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
