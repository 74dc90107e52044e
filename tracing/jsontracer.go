package tracing

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// JSONTracer writes finished activities into a JSON array.
type JSONTracer struct {
	inflight *inflight

	lock      sync.Mutex
	w         io.Writer
	firstItem bool
	closed    bool
}

// NewJSONTracer creates a JSONTracer that writes to w. The array is only
// complete after Close.
func NewJSONTracer(w io.Writer) *JSONTracer {
	_, err := w.Write([]byte("[\n"))
	if err != nil {
		panic(err)
	}

	return &JSONTracer{
		inflight:  newInflight(),
		w:         w,
		firstItem: true,
	}
}

// NewJSONFileTracer creates a JSONTracer that writes to a new file. If the
// path is empty, a unique name is generated. The array is closed when the
// program exits through atexit.
func NewJSONFileTracer(path string) (*JSONTracer, error) {
	if path == "" {
		path = xid.New().String() + ".json"
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create json trace: %w", err)
	}

	t := NewJSONTracer(f)

	atexit.Register(func() {
		if err := t.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "closing json trace: %v\n", err)
		}

		f.Close()
	})

	return t, nil
}

// StartActivity remembers an activity until it finishes.
func (t *JSONTracer) StartActivity(a Activity) {
	t.inflight.start(a)
}

// EndActivity writes a finished activity.
func (t *JSONTracer) EndActivity(a Activity) {
	original, ok := t.inflight.finish(a)
	if !ok {
		return
	}

	b, err := marshalActivity(original)
	if err != nil {
		panic(err)
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	if t.closed {
		return
	}

	if t.firstItem {
		t.firstItem = false
	} else {
		_, err = t.w.Write([]byte(",\n"))
		if err != nil {
			panic(err)
		}
	}

	_, err = t.w.Write(b)
	if err != nil {
		panic(err)
	}
}

// RecordError does nothing. The JSON trace only holds finished activities.
func (t *JSONTracer) RecordError(_ Error) {
	// Do nothing
}

// Close terminates the JSON array. Activities that finish later are dropped.
func (t *JSONTracer) Close() error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.closed {
		return nil
	}

	t.closed = true

	_, err := t.w.Write([]byte("\n]"))

	return err
}

// marshalActivity falls back to formatted arguments when the arguments
// themselves cannot be marshalled, such as functions or channels.
func marshalActivity(a Activity) ([]byte, error) {
	b, err := json.Marshal(a)
	if err == nil {
		return b, nil
	}

	a.Args = []any{FormatArgs(a.Args)}

	return json.Marshal(a)
}
