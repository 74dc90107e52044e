package tracing

import (
	"sync"
	"time"

	"github.com/sarchlab/eventreport/datarecording"
	"github.com/tebeka/atexit"
)

// Names of the tables that a DBTracer writes.
const (
	ActivityTable = "activity"
	ErrorTable    = "activity_error"
)

// Activity statuses as stored in the activity table.
const (
	StatusFinished   = "finished"
	StatusUnfinished = "unfinished"
)

// ActivityRow is one row of the activity table. Times are in seconds since
// the Unix epoch.
type ActivityRow struct {
	ID        string  `json:"id"`
	Session   string  `json:"session"`
	Report    string  `json:"report"`
	Name      string  `json:"name"`
	Args      string  `json:"args"`
	Status    string  `json:"status"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

// ErrorRow is one row of the activity_error table.
type ErrorRow struct {
	Session string  `json:"session"`
	Report  string  `json:"report"`
	Message string  `json:"message"`
	Time    float64 `json:"time"`
}

// DBTracer is a tracer that stores activities into a database. Finished
// activities and errors are written as they happen. Activities that never
// finish are written with status unfinished on Terminate.
type DBTracer struct {
	backend    datarecording.DataRecorder
	encodeArgs ArgEncoder
	inflight   *inflight

	lock       sync.Mutex
	terminated bool
}

// A DBTracerOption configures a DBTracer.
type DBTracerOption func(*DBTracer)

// WithArgEncoder sets how arguments are stored. The default is
// FormatArgEncoder.
func WithArgEncoder(encode ArgEncoder) DBTracerOption {
	return func(t *DBTracer) {
		t.encodeArgs = encode
	}
}

// NewDBTracer creates a new DBTracer. The tracer terminates itself when the
// program exits through atexit.
func NewDBTracer(
	dataRecorder datarecording.DataRecorder,
	opts ...DBTracerOption,
) *DBTracer {
	dataRecorder.CreateTable(ActivityTable, ActivityRow{})
	dataRecorder.CreateTable(ErrorTable, ErrorRow{})

	t := &DBTracer{
		backend:    dataRecorder,
		encodeArgs: FormatArgEncoder,
		inflight:   newInflight(),
	}

	for _, o := range opts {
		o(t)
	}

	atexit.Register(func() {
		t.Terminate()
	})

	return t
}

// StartActivity marks the start of an activity.
func (t *DBTracer) StartActivity(a Activity) {
	startingActivityMustBeValid(a)

	t.inflight.start(a)
}

func startingActivityMustBeValid(a Activity) {
	if a.ID == "" {
		panic("activity ID must be set")
	}

	if a.Name == "" {
		panic("activity name must be set")
	}
}

// EndActivity writes a finished activity.
func (t *DBTracer) EndActivity(a Activity) {
	original, ok := t.inflight.finish(a)
	if !ok {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	if t.terminated {
		return
	}

	t.backend.InsertData(ActivityTable, t.row(original, StatusFinished))
}

// RecordError writes an error.
func (t *DBTracer) RecordError(e Error) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.terminated {
		return
	}

	t.backend.InsertData(ErrorTable, ErrorRow{
		Session: e.Session,
		Report:  e.Report,
		Message: e.Err.Error(),
		Time:    seconds(e.Time),
	})
}

// Terminate writes the activities that have not finished and flushes the
// database. Later events are dropped.
func (t *DBTracer) Terminate() {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.terminated {
		return
	}

	t.terminated = true

	for _, a := range t.inflight.drain() {
		t.backend.InsertData(ActivityTable, t.row(a, StatusUnfinished))
	}

	t.backend.Flush()
}

func (t *DBTracer) row(a Activity, status string) ActivityRow {
	args, err := t.encodeArgs(a.Args)
	if err != nil {
		args = FormatArgs(a.Args)
	}

	return ActivityRow{
		ID:        a.ID,
		Session:   a.Session,
		Report:    a.Report,
		Name:      a.Name,
		Args:      args,
		Status:    status,
		StartTime: seconds(a.StartTime),
		EndTime:   seconds(a.EndTime),
	}
}

func seconds(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}

	return float64(t.UnixNano()) / float64(time.Second)
}
