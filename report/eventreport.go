package report

import (
	"sync"
	"time"

	"github.com/sarchlab/eventreport/hooking"
)

// EventReport is an in-memory Report. It keeps every activity and every error
// it has been told about, and forwards each event to its hooks. It is safe for
// concurrent use.
type EventReport struct {
	hooking.HookableBase

	name  string
	ids   IDGenerator
	clock Clock

	lock       sync.Mutex
	activities []*Activity
	open       map[Token]*Activity
	errors     []ErrorEntry
}

// Name returns the name of the report.
func (r *EventReport) Name() string {
	return r.name
}

// RecordActivityStarted records the start of an activity and returns a fresh
// token.
func (r *EventReport) RecordActivityStarted(name string, args ...any) Token {
	now := r.clock.Now()
	token := Token(r.ids.Generate())

	r.lock.Lock()
	if _, dup := r.open[token]; dup {
		r.lock.Unlock()
		panic("id generator produced a token that is still open: " + token)
	}

	a := &Activity{
		Token:     token,
		Name:      name,
		Args:      args,
		Status:    Started,
		StartTime: now,
	}
	r.activities = append(r.activities, a)
	r.open[token] = a
	r.lock.Unlock()

	r.InvokeHook(hooking.HookCtx{
		Domain: r,
		Pos:    hooking.HookPosActivityStart,
		Item: hooking.ActivityStart{
			Token: string(token),
			Name:  name,
			Args:  args,
			Time:  now,
		},
	})

	return token
}

// RecordActivityFinished records the end of the activity that the token
// identifies. Unknown and already finished tokens are ignored.
func (r *EventReport) RecordActivityFinished(token Token) {
	now := r.clock.Now()

	r.lock.Lock()
	a, ok := r.open[token]
	if !ok {
		r.lock.Unlock()
		return
	}

	a.Status = Finished
	a.EndTime = now
	delete(r.open, token)
	r.lock.Unlock()

	r.InvokeHook(hooking.HookCtx{
		Domain: r,
		Pos:    hooking.HookPosActivityEnd,
		Item: hooking.ActivityEnd{
			Token: string(token),
			Time:  now,
		},
	})
}

// RecordError records a failure.
func (r *EventReport) RecordError(err error) {
	now := r.clock.Now()

	r.lock.Lock()
	r.errors = append(r.errors, ErrorEntry{Err: err, Time: now})
	r.lock.Unlock()

	r.InvokeHook(hooking.HookCtx{
		Domain: r,
		Pos:    hooking.HookPosActivityError,
		Item: hooking.ActivityError{
			Err:  err,
			Time: now,
		},
	})
}

// Activities returns a snapshot of all the activities in the order that they
// started.
func (r *EventReport) Activities() []Activity {
	r.lock.Lock()
	defer r.lock.Unlock()

	activities := make([]Activity, 0, len(r.activities))
	for _, a := range r.activities {
		activities = append(activities, *a)
	}

	return activities
}

// Errors returns a snapshot of all the recorded errors.
func (r *EventReport) Errors() []ErrorEntry {
	r.lock.Lock()
	defer r.lock.Unlock()

	errors := make([]ErrorEntry, len(r.errors))
	copy(errors, r.errors)

	return errors
}

// NumOpen returns the number of activities that have started but not
// finished.
func (r *EventReport) NumOpen() int {
	r.lock.Lock()
	defer r.lock.Unlock()

	return len(r.open)
}

// Builder can build EventReports.
type Builder struct {
	newIDs func() IDGenerator
	clock  Clock
	hooks  []hooking.Hook
}

// MakeBuilder creates a builder with default parameters: sequential tokens
// per report and the wall clock.
func MakeBuilder() Builder {
	return Builder{
		newIDs: func() IDGenerator { return &SequentialIDGenerator{} },
		clock:  ClockFunc(time.Now),
	}
}

// WithIDGenerator sets the generator that every built report draws tokens
// from.
func (b Builder) WithIDGenerator(ids IDGenerator) Builder {
	b.newIDs = func() IDGenerator { return ids }
	return b
}

// WithClock sets the clock used to timestamp events.
func (b Builder) WithClock(clock Clock) Builder {
	b.clock = clock
	return b
}

// WithHook adds a hook that is registered with every built report.
func (b Builder) WithHook(hook hooking.Hook) Builder {
	hooks := make([]hooking.Hook, len(b.hooks), len(b.hooks)+1)
	copy(hooks, b.hooks)
	b.hooks = append(hooks, hook)

	return b
}

// Build creates a new EventReport.
func (b Builder) Build(name string) *EventReport {
	if b.newIDs == nil || b.clock == nil {
		panic("builder must be created with MakeBuilder")
	}

	r := &EventReport{
		name:  name,
		ids:   b.newIDs(),
		clock: b.clock,
		open:  make(map[Token]*Activity),
	}

	for _, h := range b.hooks {
		r.AcceptHook(h)
	}

	return r
}
