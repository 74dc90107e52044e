package datarecording

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ExecInfoTable is the table that holds information about a run.
const ExecInfoTable = "exec_info"

// ExecInfo is one property of a run.
type ExecInfo struct {
	Property string
	Value    string
}

const execTimeFormat = "2006-01-02 15:04:05.000000000"

// ExecRecorder records when and how the program was run.
type ExecRecorder struct {
	recorder DataRecorder

	lock    sync.Mutex
	entries []ExecInfo
	ended   bool
}

// NewExecRecorder creates an ExecRecorder and the exec_info table.
func NewExecRecorder(recorder DataRecorder) *ExecRecorder {
	recorder.CreateTable(ExecInfoTable, ExecInfo{})

	return &ExecRecorder{recorder: recorder}
}

// Start logs the start time, the command and the working directory.
func (e *ExecRecorder) Start() {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.entries = append(e.entries,
		ExecInfo{"Start Time", time.Now().Format(execTimeFormat)},
		ExecInfo{"Command", strings.Join(os.Args, " ")},
	)

	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}

	e.entries = append(e.entries,
		ExecInfo{"Working Directory", filepath.Dir(ex)})
}

// Add logs an extra property of the run.
func (e *ExecRecorder) Add(property, value string) {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.entries = append(e.entries, ExecInfo{property, value})
}

// End writes the collected properties along with the end time. Calling End
// more than once has no effect.
func (e *ExecRecorder) End() {
	e.lock.Lock()
	defer e.lock.Unlock()

	if e.ended {
		return
	}

	e.ended = true

	for _, entry := range e.entries {
		e.recorder.InsertData(ExecInfoTable, entry)
	}

	e.recorder.InsertData(ExecInfoTable,
		ExecInfo{"End Time", time.Now().Format(execTimeFormat)})

	e.entries = nil

	e.recorder.Flush()
}
