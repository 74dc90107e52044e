package proxy

import (
	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/eventreport/report"
	"go.uber.org/mock/gomock"
)

var _ = ginkgo.Describe("Dynamic proxy", func() {
	var (
		mockCtrl   *gomock.Controller
		mockReport *MockReport
		device     *devicePhone
		dyn        *Dynamic
	)

	ginkgo.BeforeEach(func() {
		mockCtrl = gomock.NewController(ginkgo.GinkgoT())
		mockReport = NewMockReport(mockCtrl)
		device = &devicePhone{}

		factory := NewFactory(report.Static(mockReport))

		var err error
		dyn, err = factory.Dynamic(device, phoneTable)
		Expect(err).NotTo(HaveOccurred())
	})

	ginkgo.AfterEach(func() {
		mockCtrl.Finish()
	})

	ginkgo.It("should record invoked methods", func() {
		gomock.InOrder(
			mockReport.EXPECT().
				RecordActivityStarted("Phone::Call", "123456").
				Return(report.Token("1")),
			mockReport.EXPECT().RecordActivityFinished(report.Token("1")),
		)

		results, err := dyn.Invoke("Call", "123456")

		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(BeEmpty())
		Expect(device.calls).To(Equal([]string{"123456"}))
	})

	ginkgo.It("should record a copy of the arguments", func() {
		r := report.MakeBuilder().Build("phone")
		d, err := NewFactory(report.Static(r)).Dynamic(device, phoneTable)
		Expect(err).NotTo(HaveOccurred())

		args := []any{"123456"}
		_, err = d.Invoke("Call", args...)
		Expect(err).NotTo(HaveOccurred())

		args[0] = "098765"

		Expect(r.Activities()).To(HaveLen(1))
		Expect(r.Activities()[0].Args).To(Equal([]any{"123456"}))
	})

	ginkgo.It("should return the wrapped error unchanged", func() {
		gomock.InOrder(
			mockReport.EXPECT().
				RecordActivityStarted("Phone::Call", "").
				Return(report.Token("1")),
			mockReport.EXPECT().RecordError(errBusy),
		)

		_, err := dyn.Invoke("Call", "")

		Expect(err).To(BeIdenticalTo(errBusy))
	})

	ginkgo.It("should set non-overridable fields without recording", func() {
		Expect(dyn.Set("DeviceID", "12345")).To(Succeed())

		Expect(device.DeviceID).To(Equal("12345"))
		id, err := dyn.Get("DeviceID")
		Expect(err).NotTo(HaveOccurred())
		Expect(id).To(Equal("12345"))

		m, ok := dyn.Member("DeviceID")
		Expect(ok).To(BeTrue())
		Expect(m.Bucket).To(Equal(NonOverridable))
		Expect(m.QualifiedName()).To(Equal("devicePhone::DeviceID"))
	})

	ginkgo.It("should call concrete-only methods without recording", func() {
		device.calls = []string{"1"}

		_, err := dyn.Invoke("Reset")

		Expect(err).NotTo(HaveOccurred())
		Expect(device.calls).To(BeNil())
	})

	ginkgo.It("should split results from a trailing error", func() {
		n, err := dyn.Invoke("Dial", "1", "2")
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal([]any{2}))

		n, err = dyn.Invoke("Dial", "1", "")
		Expect(err).To(BeIdenticalTo(errBusy))
		Expect(n).To(Equal([]any{0}))
	})

	ginkgo.It("should record property writes but not reads", func() {
		gomock.InOrder(
			mockReport.EXPECT().
				RecordActivityStarted("Phone::SetOwner", "Bill Gates").
				Return(report.Token("1")),
			mockReport.EXPECT().RecordActivityFinished(report.Token("1")),
		)

		Expect(dyn.Set("Owner", "Bill Gates")).To(Succeed())

		owner, err := dyn.Get("Owner")
		Expect(err).NotTo(HaveOccurred())
		Expect(owner).To(Equal("Bill Gates"))
	})

	ginkgo.It("should not record foundational or excluded members", func() {
		device.DeviceID = "7"

		s, err := dyn.Invoke("String")
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(Equal([]any{"phone 7"}))

		eq, err := dyn.Invoke("Equal", device)
		Expect(err).NotTo(HaveOccurred())
		Expect(eq).To(Equal([]any{true}))

		_, err = dyn.Invoke("SendMessage", "hi")
		Expect(err).NotTo(HaveOccurred())
	})

	ginkgo.It("should reject unknown members", func() {
		_, err := dyn.Invoke("Fly")
		Expect(err).To(MatchError(ErrUnknownMember))

		_, err = dyn.Get("Altitude")
		Expect(err).To(MatchError(ErrUnknownMember))

		Expect(dyn.Set("Altitude", 3)).To(MatchError(ErrUnknownMember))

		_, ok := dyn.Member("Fly")
		Expect(ok).To(BeFalse())
	})

	ginkgo.It("should reject arguments that do not fit", func() {
		_, err := dyn.Invoke("Call", 42)
		Expect(err).To(MatchError(ErrArgument))

		_, err = dyn.Invoke("Call")
		Expect(err).To(MatchError(ErrArgument))

		Expect(dyn.Set("DeviceID", nil)).To(MatchError(ErrArgument))
		Expect(dyn.Set("Owner", 42)).To(MatchError(ErrArgument))
	})

	ginkgo.It("should accept nil for nilable parameters", func() {
		eq, err := dyn.Invoke("Equal", nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(eq).To(Equal([]any{false}))
	})

	ginkgo.It("should refuse values that do not implement the interface", func() {
		factory := NewFactory(report.Static(mockReport))

		_, err := factory.Dynamic(devicePhone{}, phoneTable)
		Expect(err).To(MatchError(ErrNotImplemented))

		_, err = factory.Dynamic(nil, phoneTable)
		Expect(err).To(MatchError(ErrNotImplemented))
	})

	ginkgo.It("should expose its table", func() {
		Expect(dyn.Table()).To(BeIdenticalTo(phoneTable))
	})
})
