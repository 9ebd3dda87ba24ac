package datarecording

import (
	"github.com/sarchlab/keithnet/control"
	"github.com/sarchlab/keithnet/hooking"
)

// TickTableName is the table the TickTracer writes into.
const TickTableName = "ticks"

// TickRow is the flattened form of a control.TickRecord.
type TickRow struct {
	Tick     uint64
	Start    int64
	Drained  int
	Rejected int
	Sonar0   float64
	Sonar1   float64
	Sonar2   float64
	Hormone  float64
	OutLeft  float64
	OutRight float64
	CmdLeft  float64
	CmdRight float64
	WorkNS   int64
}

// NewTickRow flattens a tick record.
func NewTickRow(rec control.TickRecord) TickRow {
	return TickRow{
		Tick:     rec.Tick,
		Start:    rec.Start.UnixNano(),
		Drained:  rec.Drained,
		Rejected: rec.Rejected,
		Sonar0:   rec.Inputs[0],
		Sonar1:   rec.Inputs[1],
		Sonar2:   rec.Inputs[2],
		Hormone:  rec.Hormone,
		OutLeft:  rec.Outputs[0],
		OutRight: rec.Outputs[1],
		CmdLeft:  rec.Command.Left,
		CmdRight: rec.Command.Right,
		WorkNS:   rec.Work.Nanoseconds(),
	}
}

// TickTracer is a hook that records every completed tick of a loop.
type TickTracer struct {
	recorder DataRecorder
}

// NewTickTracer creates the ticks table and returns a tracer writing into it.
func NewTickTracer(recorder DataRecorder) *TickTracer {
	recorder.CreateTable(TickTableName, TickRow{})

	return &TickTracer{recorder: recorder}
}

// Func records the tick when it ends.
func (t *TickTracer) Func(ctx hooking.HookCtx) {
	if ctx.Pos != control.HookPosTickEnd {
		return
	}

	rec, ok := ctx.Item.(control.TickRecord)
	if !ok {
		return
	}

	t.recorder.InsertData(TickTableName, NewTickRow(rec))
}
