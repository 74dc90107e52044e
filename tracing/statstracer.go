package tracing

import (
	"sort"
	"sync"
	"time"
)

// Stats summarizes the activities of one name. If the execution of two
// activities overlaps, their durations are simply added together.
type Stats struct {
	Name        string        `json:"name"`
	Started     uint64        `json:"started"`
	Finished    uint64        `json:"finished"`
	TotalTime   time.Duration `json:"total_time"`
	AverageTime time.Duration `json:"average_time"`
}

// StatsTracer counts activities and their durations per name.
type StatsTracer struct {
	filter   ActivityFilter
	inflight *inflight

	lock   sync.Mutex
	stats  map[string]*Stats
	errors uint64
}

// NewStatsTracer creates a new StatsTracer. Only activities accepted by the
// filter are counted.
func NewStatsTracer(filter ActivityFilter) *StatsTracer {
	if filter == nil {
		filter = AcceptAll
	}

	return &StatsTracer{
		filter:   filter,
		inflight: newInflight(),
		stats:    make(map[string]*Stats),
	}
}

// StartActivity counts a started activity.
func (t *StatsTracer) StartActivity(a Activity) {
	if !t.filter(a) {
		return
	}

	t.inflight.start(a)

	t.lock.Lock()
	t.statsOf(a.Name).Started++
	t.lock.Unlock()
}

// EndActivity adds the duration of a finished activity.
func (t *StatsTracer) EndActivity(a Activity) {
	original, ok := t.inflight.finish(a)
	if !ok {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	s := t.statsOf(original.Name)
	s.TotalTime += original.Duration()
	s.Finished++
	s.AverageTime = s.TotalTime / time.Duration(s.Finished)
}

// RecordError counts a failure.
func (t *StatsTracer) RecordError(_ Error) {
	t.lock.Lock()
	t.errors++
	t.lock.Unlock()
}

func (t *StatsTracer) statsOf(name string) *Stats {
	s, ok := t.stats[name]
	if !ok {
		s = &Stats{Name: name}
		t.stats[name] = s
	}

	return s
}

// Stats returns a snapshot of the statistics sorted by name.
func (t *StatsTracer) Stats() []Stats {
	t.lock.Lock()
	defer t.lock.Unlock()

	stats := make([]Stats, 0, len(t.stats))
	for _, s := range t.stats {
		stats = append(stats, *s)
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Name < stats[j].Name
	})

	return stats
}

// Lookup returns the statistics of one name.
func (t *StatsTracer) Lookup(name string) (Stats, bool) {
	t.lock.Lock()
	defer t.lock.Unlock()

	s, ok := t.stats[name]
	if !ok {
		return Stats{}, false
	}

	return *s, true
}

// NumErrors returns the number of recorded failures.
func (t *StatsTracer) NumErrors() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.errors
}

// NumInFlight returns the number of counted activities that have not
// finished. Activities that failed stay in flight.
func (t *StatsTracer) NumInFlight() int {
	return t.inflight.len()
}
