package timing

import (
	"context"
	"log/slog"
	"reflect"
)

// EventLogger is a hook that logs every event an engine runs at debug level
type EventLogger struct {
	logger *slog.Logger
}

// NewEventLogger creates a new EventLogger
func NewEventLogger(logger *slog.Logger) *EventLogger {
	return &EventLogger{logger: logger}
}

// Func logs the event before it is handled
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	h.logger.LogAttrs(context.Background(), slog.LevelDebug, "Engine::Event",
		slog.Duration("Time", evt.Time()),
		slog.String("ID", evt.ID()),
		slog.String("Type", reflect.TypeOf(evt).String()),
	)
}
