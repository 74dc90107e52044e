// Package proxy wraps values behind proxies that report every call of their
// overridable members as an activity.
package proxy

import (
	"github.com/sarchlab/eventreport/report"
	"go.uber.org/zap"
)

// A Call describes one intercepted invocation. Proceed performs the real work
// on the wrapped value and returns the error that the wrapped member
// returned, if any. Results are carried out of Proceed by the proxy itself.
type Call struct {
	Member  *Member
	Args    []any
	Proceed func() error
}

// An Interceptor decides whether a call is reported and forwards it to the
// wrapped value. It holds no lock and keeps no per-call state, so it can be
// shared by any number of proxies and goroutines.
type Interceptor struct {
	source report.Source
	logger *zap.Logger
}

// NewInterceptor creates an Interceptor that records into whatever report the
// source designates at the time of each call.
func NewInterceptor(source report.Source, logger *zap.Logger) *Interceptor {
	if source == nil {
		panic("report source must not be nil")
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Interceptor{source: source, logger: logger}
}

// Intercept forwards the call and, if the member is reportable, records it.
// The returned error is the one returned by Proceed, unchanged. A panic raised
// by Proceed is recorded and re-raised with the same value.
func (i *Interceptor) Intercept(c Call) error {
	callMustBeClassified(c)

	if !c.Member.Bucket.Reported() {
		return c.Proceed()
	}

	r := i.source.CurrentReport()
	if isNil(r) {
		i.logger.Debug("no current report, call not recorded",
			zap.String("member", c.Member.QualifiedName()))

		return c.Proceed()
	}

	token := r.RecordActivityStarted(c.Member.QualifiedName(), c.Args...)

	err := forward(r, c)
	if err != nil {
		r.RecordError(err)
		return err
	}

	r.RecordActivityFinished(token)

	return nil
}

func forward(r report.Report, c Call) error {
	defer func() {
		if v := recover(); v != nil {
			r.RecordError(panicAsError(v))
			panic(v)
		}
	}()

	return c.Proceed()
}

func callMustBeClassified(c Call) {
	if c.Member == nil {
		panic("call without a member")
	}

	if c.Member.Bucket == Unclassified {
		panic("member " + c.Member.QualifiedName() + " is not classified")
	}

	if c.Proceed == nil {
		panic("call of " + c.Member.QualifiedName() + " cannot proceed")
	}
}
