package report

import "time"

// Status tells whether an activity has finished.
type Status int

// Activity states.
const (
	Started Status = iota
	Finished
)

func (s Status) String() string {
	switch s {
	case Started:
		return "started"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// An Activity is one recorded reportable call.
type Activity struct {
	Token     Token
	Name      string
	Args      []any
	Status    Status
	StartTime time.Time
	EndTime   time.Time
}

// Duration returns how long the activity took. It is zero for an activity
// that has not finished.
func (a Activity) Duration() time.Duration {
	if a.Status != Finished {
		return 0
	}

	return a.EndTime.Sub(a.StartTime)
}

// An ErrorEntry is one recorded failure.
type ErrorEntry struct {
	Err  error
	Time time.Time
}

// A Clock tells the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to the Clock interface.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time {
	return f()
}
