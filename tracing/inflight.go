package tracing

import "sync"

type activityKey struct {
	session string
	id      string
}

func keyOf(a Activity) activityKey {
	return activityKey{session: a.Session, id: a.ID}
}

// inflight keeps the started activities that have not finished yet. Tokens
// are unique within one report only, so activities are keyed by the session
// of the report too.
type inflight struct {
	lock       sync.Mutex
	activities map[activityKey]Activity
}

func newInflight() *inflight {
	return &inflight{activities: make(map[activityKey]Activity)}
}

func (f *inflight) start(a Activity) {
	f.lock.Lock()
	f.activities[keyOf(a)] = a
	f.lock.Unlock()
}

// finish removes the started activity and returns it with the end time set.
func (f *inflight) finish(a Activity) (Activity, bool) {
	f.lock.Lock()
	defer f.lock.Unlock()

	original, ok := f.activities[keyOf(a)]
	if !ok {
		return Activity{}, false
	}

	delete(f.activities, keyOf(a))
	original.EndTime = a.EndTime

	return original, true
}

func (f *inflight) drain() []Activity {
	f.lock.Lock()
	defer f.lock.Unlock()

	activities := make([]Activity, 0, len(f.activities))
	for k, a := range f.activities {
		activities = append(activities, a)
		delete(f.activities, k)
	}

	return activities
}

func (f *inflight) len() int {
	f.lock.Lock()
	defer f.lock.Unlock()

	return len(f.activities)
}
