package tracing

import (
	"fmt"
	"reflect"

	"github.com/rs/xid"
	"github.com/sarchlab/eventreport/hooking"
)

// NamedHookable represent something both have a name and can be hooked.
type NamedHookable interface {
	Name() string
	hooking.Hookable
}

// CollectTrace let the tracer to collect trace from a domain.
func CollectTrace(domain NamedHookable, tracer Tracer) {
	hooks := domain.Hooks()
	for _, hook := range hooks {
		hook, ok := hook.(*traceHook)
		if ok && hook.t == tracer {
			panic(fmt.Sprintf(
				"domain %s already has tracer %s",
				domain.Name(), reflect.TypeOf(tracer)))
		}
	}

	h := traceHook{
		t:       tracer,
		session: xid.New().String(),
		report:  domain.Name(),
	}
	domain.AcceptHook(&h)
}

// A traceHook is a hook that converts report events into tracer calls. Every
// hook stamps its events with its own session, so that two domains with the
// same name never mix up their activities.
type traceHook struct {
	t       Tracer
	session string
	report  string
}

// Func calls the tracer interfaces when the hook is triggered.
func (h *traceHook) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case hooking.HookPosActivityStart:
		item := ctx.Item.(hooking.ActivityStart)
		h.t.StartActivity(Activity{
			ID:        item.Token,
			Session:   h.session,
			Report:    h.report,
			Name:      item.Name,
			Args:      item.Args,
			StartTime: item.Time,
		})
	case hooking.HookPosActivityEnd:
		item := ctx.Item.(hooking.ActivityEnd)
		h.t.EndActivity(Activity{
			ID:      item.Token,
			Session: h.session,
			Report:  h.report,
			EndTime: item.Time,
		})
	case hooking.HookPosActivityError:
		item := ctx.Item.(hooking.ActivityError)
		h.t.RecordError(Error{
			Session: h.session,
			Report:  h.report,
			Err:     item.Err,
			Time:    item.Time,
		})
	}
}
