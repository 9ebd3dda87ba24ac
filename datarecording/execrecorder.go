package datarecording

import (
	"os"
	"strings"
	"time"
)

// ExecInfo is one property of the execution of the process.
type ExecInfo struct {
	Property string
	Value    string
}

const execTimeFormat = "2006-01-02 15:04:05.000000000"

// ExecRecorder records how and when the process ran.
type ExecRecorder struct {
	tableName string
	recorder  DataRecorder
	now       func() time.Time
}

// RecordExecution creates the exec_info table and writes the start time, the
// command line and the working directory.
func RecordExecution(recorder DataRecorder) *ExecRecorder {
	e := &ExecRecorder{
		tableName: "exec_info",
		recorder:  recorder,
		now:       time.Now,
	}

	e.recorder.CreateTable(e.tableName, ExecInfo{})
	e.start()

	return e
}

func (e *ExecRecorder) start() {
	e.insert("Start Time", e.now().Format(execTimeFormat))
	e.insert("Command", strings.Join(os.Args, " "))

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "unknown"
	}

	e.insert("Working Directory", cwd)
}

// End writes the end time and flushes the recorder.
func (e *ExecRecorder) End() {
	e.insert("End Time", e.now().Format(execTimeFormat))
	e.recorder.Flush()
}

func (e *ExecRecorder) insert(property, value string) {
	e.recorder.InsertData(e.tableName, ExecInfo{property, value})
}
