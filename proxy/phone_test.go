package proxy

import (
	"errors"
	"fmt"
)

// Phone is the capability that the proxies under test wrap.
type Phone interface {
	fmt.Stringer

	Call(number string) error
	Charge()
	SendMessage(text string) error
	Owner() string
	SetOwner(owner string)
	Equal(other Phone) bool
}

var phoneTable = MustDescribe[Phone](Exclude("SendMessage"))

func init() {
	Register[Phone](phoneTable, newReportingPhone)
}

type reportingPhone struct {
	ic      *Interceptor
	wrapped Phone
}

func newReportingPhone(ic *Interceptor, wrapped Phone) Phone {
	return &reportingPhone{ic: ic, wrapped: wrapped}
}

func (p *reportingPhone) String() string {
	var r0 string

	_ = p.ic.Intercept(Call{
		Member: phoneTable.Member("String"),
		Proceed: func() error {
			r0 = p.wrapped.String()
			return nil
		},
	})

	return r0
}

func (p *reportingPhone) Call(number string) error {
	return p.ic.Intercept(Call{
		Member: phoneTable.Member("Call"),
		Args:   []any{number},
		Proceed: func() error {
			return p.wrapped.Call(number)
		},
	})
}

func (p *reportingPhone) Charge() {
	_ = p.ic.Intercept(Call{
		Member: phoneTable.Member("Charge"),
		Proceed: func() error {
			p.wrapped.Charge()
			return nil
		},
	})
}

func (p *reportingPhone) SendMessage(text string) error {
	return p.ic.Intercept(Call{
		Member: phoneTable.Member("SendMessage"),
		Args:   []any{text},
		Proceed: func() error {
			return p.wrapped.SendMessage(text)
		},
	})
}

func (p *reportingPhone) Owner() string {
	var r0 string

	_ = p.ic.Intercept(Call{
		Member: phoneTable.Member("Owner"),
		Proceed: func() error {
			r0 = p.wrapped.Owner()
			return nil
		},
	})

	return r0
}

func (p *reportingPhone) SetOwner(owner string) {
	_ = p.ic.Intercept(Call{
		Member: phoneTable.Member("SetOwner"),
		Args:   []any{owner},
		Proceed: func() error {
			p.wrapped.SetOwner(owner)
			return nil
		},
	})
}

func (p *reportingPhone) Equal(other Phone) bool {
	var r0 bool

	_ = p.ic.Intercept(Call{
		Member: phoneTable.Member("Equal"),
		Args:   []any{other},
		Proceed: func() error {
			r0 = p.wrapped.Equal(other)
			return nil
		},
	})

	return r0
}

var errBusy = errors.New("line busy")

// devicePhone is a concrete phone with state that only the concrete type
// exposes.
type devicePhone struct {
	DeviceID string

	owner   string
	calls   []string
	charged int
}

func (d *devicePhone) String() string { return "phone " + d.DeviceID }

func (d *devicePhone) Call(number string) error {
	if number == "" {
		return errBusy
	}

	d.calls = append(d.calls, number)

	return nil
}

func (d *devicePhone) Charge() { d.charged++ }

func (d *devicePhone) SendMessage(string) error { return nil }

func (d *devicePhone) Owner() string { return d.owner }

func (d *devicePhone) SetOwner(owner string) { d.owner = owner }

func (d *devicePhone) Equal(other Phone) bool {
	o, ok := other.(*devicePhone)
	return ok && o.DeviceID == d.DeviceID
}

// Reset exists only on the concrete type.
func (d *devicePhone) Reset() { d.calls = nil }

// Dial returns a result next to its error.
func (d *devicePhone) Dial(numbers ...string) (int, error) {
	for _, n := range numbers {
		if err := d.Call(n); err != nil {
			return 0, err
		}
	}

	return len(numbers), nil
}
