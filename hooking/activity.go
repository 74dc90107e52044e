package hooking

import "time"

// A list of hook poses for the hooks to apply to.
var (
	HookPosActivityStart = &HookPos{Name: "HookPosActivityStart"}
	HookPosActivityEnd   = &HookPos{Name: "HookPosActivityEnd"}
	HookPosActivityError = &HookPos{Name: "HookPosActivityError"}
)

// ActivityStart is data that is passed to the hook when an activity starts.
type ActivityStart struct {
	Token string
	Name  string
	Args  []any
	Time  time.Time
}

// ActivityEnd is data that is passed to the hook when an activity finishes.
type ActivityEnd struct {
	Token string
	Time  time.Time
}

// ActivityError is data that is passed to the hook when a failure is
// recorded.
type ActivityError struct {
	Err  error
	Time time.Time
}
