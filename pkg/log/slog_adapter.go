package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes protocol events to an slog.Logger at debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter returns an adapter writing to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event as a single "protocol" record.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("conn_id", event.ConnectionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}
	if event.RemoteAddr != "" {
		attrs = append(attrs, slog.String("remote", event.RemoteAddr))
	}

	switch {
	case event.Frame != nil:
		attrs = append(attrs,
			slog.Int("frame_size", event.Frame.Size),
			slog.Bool("truncated", event.Frame.Truncated),
		)
		if event.Frame.Short {
			attrs = append(attrs, slog.Bool("short", true))
		}
	case event.Command != nil:
		attrs = append(attrs,
			slog.String("opcode", event.Command.Opcode.String()),
			slog.Int("payload_size", event.Command.PayloadSize),
		)
		if event.Command.Address != nil {
			attrs = append(attrs, slog.Uint64("address", uint64(*event.Command.Address)))
		}
		if event.Command.Reply != nil {
			attrs = append(attrs, slog.Uint64("reply", uint64(*event.Command.Reply)))
		}
	case event.Transfer != nil:
		t := event.Transfer
		attrs = append(attrs,
			slog.Uint64("address", uint64(t.Address)),
			slog.Uint64("chunk", uint64(t.Chunk)),
			slog.Uint64("chunks", uint64(t.Chunks)),
			slog.Uint64("transferred", uint64(t.Transferred)),
			slog.Uint64("length", uint64(t.Length)),
		)
		if t.Retries > 0 {
			attrs = append(attrs, slog.Int("retries", t.Retries))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
		if event.Error.Kind != "" {
			attrs = append(attrs, slog.String("error_kind", event.Error.Kind))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
