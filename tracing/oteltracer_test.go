package tracing

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

var _ = Describe("OTelTracer", func() {
	var (
		recorder *tracetest.SpanRecorder
		t        *OTelTracer
	)

	BeforeEach(func() {
		recorder = tracetest.NewSpanRecorder()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
		t = NewOTelTracer(tp)
	})

	It("should emit one span per finished activity", func() {
		r := newTestReport("phone")
		CollectTrace(r, t)

		r.RecordActivityFinished(r.RecordActivityStarted("Phone::Call", "123456"))

		spans := recorder.Ended()
		Expect(spans).To(HaveLen(1))
		Expect(spans[0].Name()).To(Equal("Phone::Call"))
		Expect(spans[0].StartTime()).To(BeTemporally("==", time.Unix(1001, 0)))
		Expect(spans[0].EndTime()).To(BeTemporally("==", time.Unix(1002, 0)))
		Expect(spans[0].Status().Code).To(Equal(codes.Ok))
		Expect(spans[0].Attributes()).To(ContainElements(
			attribute.String("eventreport.report", "phone"),
			attribute.String("eventreport.args", "123456"),
		))
	})

	It("should emit errors as error spans", func() {
		r := newTestReport("phone")
		CollectTrace(r, t)

		r.RecordActivityStarted("Phone::Call", "Hello")
		r.RecordError(errors.New("Invalid number format"))

		spans := recorder.Ended()
		Expect(spans).To(HaveLen(1))
		Expect(spans[0].Name()).To(Equal("error"))
		Expect(spans[0].Status().Code).To(Equal(codes.Error))
		Expect(spans[0].Status().Description).To(Equal("Invalid number format"))
		Expect(spans[0].Events()).To(HaveLen(1))
		Expect(recorder.Started()).To(HaveLen(2))
	})

	It("should keep spans of reports with the same name apart", func() {
		first := newTestReport("phone")
		second := newTestReport("phone")
		CollectTrace(first, t)
		CollectTrace(second, t)

		first.RecordActivityStarted("Phone::Call", "123456")
		second.RecordActivityFinished(second.RecordActivityStarted("Phone::Charge"))

		spans := recorder.Ended()
		Expect(spans).To(HaveLen(1))
		Expect(spans[0].Name()).To(Equal("Phone::Charge"))

		t.Terminate()

		spans = recorder.Ended()
		Expect(spans).To(HaveLen(2))
		Expect(spans[1].Name()).To(Equal("Phone::Call"))
		Expect(spans[1].Status().Description).To(Equal("unfinished"))
	})

	It("should end the right span when tokens of two reports overlap", func() {
		phone := newTestReport("phone")
		tablet := newTestReport("tablet")
		CollectTrace(phone, t)
		CollectTrace(tablet, t)

		phone.RecordActivityStarted("Phone::Call", "123456")
		tablet.RecordActivityFinished(tablet.RecordActivityStarted("Phone::Call", "098765"))

		spans := recorder.Ended()
		Expect(spans).To(HaveLen(1))
		Expect(spans[0].Attributes()).To(ContainElements(
			attribute.String("eventreport.report", "tablet"),
			attribute.String("eventreport.args", "098765"),
		))
	})

	It("should end unfinished spans on terminate", func() {
		r := newTestReport("phone")
		CollectTrace(r, t)

		r.RecordActivityStarted("Phone::Charge")
		t.Terminate()
		t.EndActivity(Activity{ID: "1", Report: "phone", EndTime: time.Now()})

		spans := recorder.Ended()
		Expect(spans).To(HaveLen(1))
		Expect(spans[0].Status().Description).To(Equal("unfinished"))
	})
})
