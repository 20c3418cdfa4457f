package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes diagnostic events to an slog.Logger.
// Error events are written at Warn level, everything else at Debug.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	if event.HandleID != "" {
		attrs = append(attrs, slog.String("handle_id", event.HandleID))
	}
	if event.Operation != "" {
		attrs = append(attrs, slog.String("operation", event.Operation))
	}
	if event.Name != "" {
		attrs = append(attrs, slog.String("name", event.Name))
	}
	if event.RemoteAddr != "" {
		attrs = append(attrs, slog.String("remote_addr", event.RemoteAddr))
	}

	level := slog.LevelDebug
	switch {
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		level = slog.LevelWarn
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
		if event.Error.Status != nil {
			attrs = append(attrs, slog.Int("status", int(*event.Error.Status)))
		}
		if event.Error.Cleanup {
			attrs = append(attrs, slog.Bool("cleanup", true))
		}
	case event.Delivery != nil:
		attrs = append(attrs,
			slog.String("target", event.Delivery.Target.String()),
			slog.Bool("state", event.Delivery.State),
		)
		if event.Delivery.PayloadSize > 0 {
			attrs = append(attrs, slog.Int("payload_size", event.Delivery.PayloadSize))
		}
	case event.Info != nil:
		attrs = append(attrs, slog.String("info", event.Info.Code.String()))
		if event.Info.Message != "" {
			attrs = append(attrs, slog.String("info_msg", event.Info.Message))
		}
	}

	a.logger.LogAttrs(context.Background(), level, "awareness", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
