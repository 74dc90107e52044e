package report

import "sync"

// TestingT is the part of testing.TB that BeginTest needs.
type TestingT interface {
	Helper()
	Name() string
	Cleanup(func())
}

// A Scope is a Source whose current report is replaced for every run or test.
// It is safe for concurrent use.
type Scope struct {
	builder Builder

	lock    sync.RWMutex
	current Report
}

// NewScope creates a Scope that builds its reports with b. No report is
// current until one is activated.
func NewScope(b Builder) *Scope {
	return &Scope{builder: b}
}

// CurrentReport returns the active report, or nil.
func (s *Scope) CurrentReport() Report {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.current
}

// Activate makes r the current report. The returned function restores the
// report that was current before.
func (s *Scope) Activate(r Report) (restore func()) {
	s.lock.Lock()
	previous := s.current
	s.current = r
	s.lock.Unlock()

	return func() {
		s.lock.Lock()
		s.current = previous
		s.lock.Unlock()
	}
}

// Begin builds a new report, makes it current and returns it.
func (s *Scope) Begin(name string) *EventReport {
	r := s.builder.Build(name)
	s.Activate(r)

	return r
}

// BeginTest builds a report named after the test and makes it current until
// the test finishes.
func (s *Scope) BeginTest(t TestingT) *EventReport {
	t.Helper()

	r := s.builder.Build(t.Name())
	restore := s.Activate(r)
	t.Cleanup(restore)

	return r
}
