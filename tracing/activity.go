package tracing

import "time"

// An Activity is one reported call as seen by a tracer. A started activity
// carries its name and arguments. A finished activity carries only its ID,
// session and end time, so tracers keep their own record of the activities in
// flight.
//
// IDs are unique within one report only and report names may repeat, so the
// Session identifies the report instance that the activity belongs to.
type Activity struct {
	ID        string    `json:"id"`
	Session   string    `json:"session"`
	Report    string    `json:"report"`
	Name      string    `json:"name"`
	Args      []any     `json:"args,omitempty"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// Duration returns how long the activity took, or zero if it has not ended.
func (a Activity) Duration() time.Duration {
	if a.EndTime.IsZero() {
		return 0
	}

	return a.EndTime.Sub(a.StartTime)
}

// An Error is a failure recorded by a report.
type Error struct {
	Session string
	Report  string
	Err     error
	Time    time.Time
}

// ActivityFilter is a function that can filter interesting activities. If
// this function returns true, the activity is considered useful.
type ActivityFilter func(a Activity) bool

// AcceptAll keeps every activity.
func AcceptAll(Activity) bool {
	return true
}
