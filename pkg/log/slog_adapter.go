package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes protocol events to an slog.Logger.
// Useful for development when you want to see protocol events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("conn_id", event.ConnectionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	// Add optional identifiers
	if event.SocketID != "" {
		attrs = append(attrs, slog.String("socket_id", event.SocketID))
	}
	if event.Channel != "" {
		attrs = append(attrs, slog.String("channel", event.Channel))
	}

	// Add type-specific attributes
	switch {
	case event.Frame != nil:
		attrs = append(attrs,
			slog.Int("frame_size", event.Frame.Size),
			slog.Bool("truncated", event.Frame.Truncated),
		)
	case event.Message != nil:
		attrs = append(attrs, slog.String("event", event.Message.Event))
		if event.Message.ID != "" {
			attrs = append(attrs, slog.String("id", event.Message.ID))
		}
		if event.Message.Payload != "" {
			attrs = append(attrs, slog.String("payload", event.Message.Payload))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("from", event.StateChange.From),
			slog.String("to", event.StateChange.To),
		)
	case event.Error != nil:
		attrs = append(attrs, slog.String("error", event.Error.Message))
		if event.Error.Code != 0 {
			attrs = append(attrs, slog.Int("code", event.Error.Code))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol event", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
