// Package report defines the sink that reporting proxies write activities to,
// and the source that tells them which sink is current.
package report

// Token correlates the start of an activity with its end. It is opaque to
// everything except the Report that issued it.
type Token string

// A Report records activities.
type Report interface {
	// RecordActivityStarted begins tracking one activity and returns the
	// token that must be passed to RecordActivityFinished.
	RecordActivityStarted(name string, args ...any) Token

	// RecordActivityFinished closes an activity started on the same report.
	RecordActivityFinished(token Token)

	// RecordError records a failure. It is not tied to an open activity.
	RecordError(err error)
}

// A Source designates the report that is currently active. CurrentReport must
// be free of side effects; it is called once per intercepted call. A nil
// return, including a nil pointer of a Report implementation, means that no
// report is active.
type Source interface {
	CurrentReport() Report
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc func() Report

// CurrentReport calls f.
func (f SourceFunc) CurrentReport() Report {
	return f()
}

type staticSource struct {
	r Report
}

func (s staticSource) CurrentReport() Report {
	return s.r
}

// Static returns a Source that always designates r.
func Static(r Report) Source {
	return staticSource{r: r}
}
