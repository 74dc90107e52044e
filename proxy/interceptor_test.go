package proxy

import (
	"errors"

	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/eventreport/report"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var _ = ginkgo.Describe("Typed proxy", func() {
	var (
		mockCtrl   *gomock.Controller
		mockReport *MockReport
		mockSource *MockSource
		wrapped    *MockPhone
		logs       *observer.ObservedLogs
		logger     *zap.Logger
		factory    *Factory
		phone      Phone
	)

	ginkgo.BeforeEach(func() {
		mockCtrl = gomock.NewController(ginkgo.GinkgoT())
		mockReport = NewMockReport(mockCtrl)
		mockSource = NewMockSource(mockCtrl)
		wrapped = NewMockPhone(mockCtrl)

		core, observed := observer.New(zap.DebugLevel)
		logs = observed
		logger = zap.New(core)
		factory = NewFactory(mockSource, WithLogger(logger))
		phone = Create[Phone](factory, wrapped)
	})

	ginkgo.AfterEach(func() {
		mockCtrl.Finish()
	})

	ginkgo.It("should not touch the wrapped value or the source on creation", func() {
		p := Create[Phone](factory, wrapped)

		Expect(p).NotTo(BeNil())
		Expect(logs.FilterMessage("proxy created").Len()).To(Equal(2))
	})

	ginkgo.It("should panic when wrapping nil", func() {
		Expect(func() { Create[Phone](factory, nil) }).To(Panic())
		Expect(func() { Create[Phone](factory, (*devicePhone)(nil)) }).To(Panic())
	})

	ginkgo.It("should panic when no proxy is registered", func() {
		Expect(func() { Create[error](factory, errBusy) }).To(Panic())
	})

	ginkgo.It("should track overridable method usage", func() {
		mockSource.EXPECT().CurrentReport().Return(mockReport).AnyTimes()

		wrapped.EXPECT().Call("123456").Return(nil)
		wrapped.EXPECT().Call("098765").Return(nil)
		wrapped.EXPECT().Charge()

		gomock.InOrder(
			mockReport.EXPECT().
				RecordActivityStarted("Phone::Call", "123456").
				Return(report.Token("1")),
			mockReport.EXPECT().RecordActivityFinished(report.Token("1")),
			mockReport.EXPECT().
				RecordActivityStarted("Phone::Call", "098765").
				Return(report.Token("2")),
			mockReport.EXPECT().RecordActivityFinished(report.Token("2")),
			mockReport.EXPECT().
				RecordActivityStarted("Phone::Charge").
				Return(report.Token("3")),
			mockReport.EXPECT().RecordActivityFinished(report.Token("3")),
		)

		Expect(phone.Call("123456")).To(Succeed())
		Expect(phone.Call("098765")).To(Succeed())
		phone.Charge()
	})

	ginkgo.It("should record an error and leave the activity open", func() {
		err := errors.New("Invalid number format")

		mockSource.EXPECT().CurrentReport().Return(mockReport)
		wrapped.EXPECT().Call("Hello").Return(err)
		gomock.InOrder(
			mockReport.EXPECT().
				RecordActivityStarted("Phone::Call", "Hello").
				Return(report.Token("1")),
			mockReport.EXPECT().RecordError(err),
		)

		Expect(phone.Call("Hello")).To(BeIdenticalTo(err))
	})

	ginkgo.It("should record property writes but not reads", func() {
		var owner string

		mockSource.EXPECT().CurrentReport().Return(mockReport)
		wrapped.EXPECT().SetOwner("Bill Gates").
			Do(func(o string) { owner = o })
		wrapped.EXPECT().Owner().
			DoAndReturn(func() string { return owner }).
			Times(2)
		gomock.InOrder(
			mockReport.EXPECT().
				RecordActivityStarted("Phone::SetOwner", "Bill Gates").
				Return(report.Token("1")),
			mockReport.EXPECT().RecordActivityFinished(report.Token("1")),
		)

		phone.SetOwner("Bill Gates")
		Expect(phone.Owner()).To(Equal("Bill Gates"))
		Expect(phone.Owner()).To(Equal("Bill Gates"))
	})

	ginkgo.It("should forward foundational members without recording", func() {
		other := NewMockPhone(mockCtrl)
		wrapped.EXPECT().String().Return("phone 1")
		wrapped.EXPECT().Equal(other).Return(true)

		Expect(phone.String()).To(Equal("phone 1"))
		Expect(phone.Equal(other)).To(BeTrue())
	})

	ginkgo.It("should forward excluded members without recording", func() {
		wrapped.EXPECT().SendMessage("hi").Return(errBusy)

		Expect(phone.SendMessage("hi")).To(BeIdenticalTo(errBusy))
	})

	ginkgo.It("should forward unrecorded when no report is current", func() {
		mockSource.EXPECT().CurrentReport().Return(nil)
		wrapped.EXPECT().Call("123456").Return(nil)

		Expect(phone.Call("123456")).To(Succeed())
		Expect(logs.FilterMessage("no current report, call not recorded").
			Len()).To(Equal(1))
	})

	ginkgo.It("should forward unrecorded when the current report is a nil pointer", func() {
		var current *report.EventReport

		typedNil := NewFactory(
			report.SourceFunc(func() report.Report { return current }),
			WithLogger(logger),
		)
		p := Create[Phone](typedNil, wrapped)
		wrapped.EXPECT().Call("123456").Return(nil)

		Expect(func() { Expect(p.Call("123456")).To(Succeed()) }).NotTo(Panic())
		Expect(logs.FilterMessage("no current report, call not recorded").
			Len()).To(Equal(1))
	})

	ginkgo.It("should ask the source on every call", func() {
		other := NewMockReport(mockCtrl)

		gomock.InOrder(
			mockSource.EXPECT().CurrentReport().Return(mockReport),
			mockSource.EXPECT().CurrentReport().Return(other),
		)
		wrapped.EXPECT().Charge().Times(2)
		mockReport.EXPECT().RecordActivityStarted("Phone::Charge").
			Return(report.Token("a"))
		mockReport.EXPECT().RecordActivityFinished(report.Token("a"))
		other.EXPECT().RecordActivityStarted("Phone::Charge").
			Return(report.Token("b"))
		other.EXPECT().RecordActivityFinished(report.Token("b"))

		phone.Charge()
		phone.Charge()
	})

	ginkgo.It("should record a panic and re-raise it", func() {
		var recorded error

		mockSource.EXPECT().CurrentReport().Return(mockReport)
		wrapped.EXPECT().Charge().Do(func() { panic("battery on fire") })
		mockReport.EXPECT().RecordActivityStarted("Phone::Charge").
			Return(report.Token("1"))
		mockReport.EXPECT().RecordError(gomock.Any()).
			Do(func(err error) { recorded = err })

		Expect(func() { phone.Charge() }).To(PanicWith("battery on fire"))

		var pe *PanicError
		Expect(errors.As(recorded, &pe)).To(BeTrue())
		Expect(pe.Value).To(Equal("battery on fire"))
	})

	ginkgo.It("should record an error panic as is", func() {
		mockSource.EXPECT().CurrentReport().Return(mockReport)
		wrapped.EXPECT().Charge().Do(func() { panic(errBusy) })
		mockReport.EXPECT().RecordActivityStarted("Phone::Charge").
			Return(report.Token("1"))
		mockReport.EXPECT().RecordError(errBusy)

		Expect(func() { phone.Charge() }).To(PanicWith(errBusy))
	})
})

var _ = ginkgo.Describe("Interceptor", func() {
	ginkgo.It("should panic without a source", func() {
		Expect(func() { NewInterceptor(nil, nil) }).To(Panic())
	})

	ginkgo.It("should panic on calls it cannot classify", func() {
		ic := NewInterceptor(report.Static(nil), nil)
		proceed := func() error { return nil }

		Expect(func() { _ = ic.Intercept(Call{Proceed: proceed}) }).To(Panic())
		Expect(func() {
			_ = ic.Intercept(Call{
				Member:  &Member{DeclaringType: "Phone", Name: "Call"},
				Proceed: proceed,
			})
		}).To(Panic())
		Expect(func() {
			_ = ic.Intercept(Call{Member: phoneTable.Member("Call")})
		}).To(Panic())
	})

	ginkgo.It("should record into an EventReport", func() {
		r := report.MakeBuilder().Build("phone")
		ic := NewInterceptor(report.Static(r), nil)
		device := &devicePhone{}
		p := newReportingPhone(ic, device)

		Expect(p.Call("123456")).To(Succeed())
		Expect(p.Call("")).To(MatchError(errBusy))
		p.SetOwner("Bill Gates")

		activities := r.Activities()
		Expect(activities).To(HaveLen(3))
		Expect(activities[0].Status).To(Equal(report.Finished))
		Expect(activities[1].Name).To(Equal("Phone::Call"))
		Expect(activities[1].Status).To(Equal(report.Started))
		Expect(activities[2].Name).To(Equal("Phone::SetOwner"))
		Expect(r.Errors()).To(HaveLen(1))
		Expect(r.NumOpen()).To(Equal(1))
		Expect(device.Owner()).To(Equal("Bill Gates"))
	})
})
