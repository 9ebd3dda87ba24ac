package control

import (
	"sync"
	"time"

	"github.com/sarchlab/keithnet/hooking"
)

// WorkStats summarizes how long the ticks took.
type WorkStats struct {
	Ticks    uint64        `json:"ticks"`
	Average  time.Duration `json:"average_ns"`
	Max      time.Duration `json:"max_ns"`
	Overruns uint64        `json:"overruns"`
}

// WorkTimeTracer collects the work time of every tick. A tick whose work
// exceeds the period is an overrun: the next tick starts late.
type WorkTimeTracer struct {
	period time.Duration

	lock  sync.Mutex
	total time.Duration
	stats WorkStats
}

// NewWorkTimeTracer creates a tracer for a loop running at the given
// frequency.
func NewWorkTimeTracer(f Freq) *WorkTimeTracer {
	return &WorkTimeTracer{period: f.Period()}
}

// Func accounts the tick that ended.
func (t *WorkTimeTracer) Func(ctx hooking.HookCtx) {
	if ctx.Pos != HookPosTickEnd {
		return
	}

	rec, ok := ctx.Item.(TickRecord)
	if !ok {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	t.stats.Ticks++
	t.total += rec.Work
	t.stats.Average = t.total / time.Duration(t.stats.Ticks)

	if rec.Work > t.stats.Max {
		t.stats.Max = rec.Work
	}

	if rec.Work > t.period {
		t.stats.Overruns++
	}
}

// Stats returns the summary so far.
func (t *WorkTimeTracer) Stats() WorkStats {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.stats
}
