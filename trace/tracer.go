package trace

import (
	"github.com/rs/xid"
	"github.com/vkngwrapper/heapsim/heap"
	"github.com/vkngwrapper/heapsim/timing"
)

// Tracer is a hook that turns simulator events into records
type Tracer struct {
	writer Writer
}

var _ timing.Hook = &Tracer{}

// NewTracer creates a Tracer that sends records to writer. The writer must already be initialized.
func NewTracer(writer Writer) *Tracer {
	return &Tracer{writer: writer}
}

// Func records a simulator event. Hook invocations that do not carry a heap.Event are ignored.
func (t *Tracer) Func(ctx timing.HookCtx) {
	evt, ok := ctx.Item.(heap.Event)
	if !ok || ctx.Pos == nil {
		return
	}

	record := Record{
		ID:            xid.New().String(),
		Time:          evt.Time,
		Kind:          ctx.Pos.Name,
		Blocks:        evt.Blocks,
		RequestedSize: evt.RequestedSize,
		Message:       evt.Message,
		UsedBytes:     evt.Stats.UsedBytes,
		FreeBytes:     evt.Stats.FreeBytes(),
	}
	if evt.Strategy.IsValid() {
		record.Strategy = evt.Strategy.String()
	}

	t.writer.Write(record)
}
