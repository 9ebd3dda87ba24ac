package comm

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/keithnet/hooking"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Port", func() {
	var (
		mockCtrl *gomock.Controller
		port     Port
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		port = NewPort("Robot.SonarPort", 2)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should keep delivered messages in order", func() {
		msg1 := SonarMsgBuilder{}.WithRanges(1, 2, 3).Build()
		msg2 := SonarMsgBuilder{}.WithRanges(4, 5, 6).Build()

		Expect(port.Deliver(msg1)).To(BeNil())
		Expect(port.Deliver(msg2)).To(BeNil())

		Expect(port.NumIncoming()).To(Equal(2))
		Expect(port.PeekIncoming()).To(BeIdenticalTo(msg1))
		Expect(port.RetrieveIncoming()).To(BeIdenticalTo(msg1))
		Expect(port.RetrieveIncoming()).To(BeIdenticalTo(msg2))
		Expect(port.RetrieveIncoming()).To(BeNil())
	})

	It("should reject delivery when the incoming buffer is full", func() {
		port.Deliver(SonarMsgBuilder{}.Build())
		port.Deliver(SonarMsgBuilder{}.Build())

		evicted, err := port.Deliver(SonarMsgBuilder{}.Build())

		Expect(err).NotTo(BeNil())
		Expect(evicted).To(BeNil())
		Expect(port.NumIncoming()).To(Equal(2))
	})

	Context("when dropping the oldest message", func() {
		BeforeEach(func() {
			port = NewPort("Robot.SonarPort", 2, WithDropOldest())
		})

		It("should evict the head to accept a new message", func() {
			msg1 := SonarMsgBuilder{}.WithRanges(1, 1, 1).Build()
			msg2 := SonarMsgBuilder{}.WithRanges(2, 2, 2).Build()
			msg3 := SonarMsgBuilder{}.WithRanges(3, 3, 3).Build()

			Expect(port.Deliver(msg1)).To(BeNil())
			Expect(port.Deliver(msg2)).To(BeNil())

			evicted, err := port.Deliver(msg3)

			Expect(err).To(BeNil())
			Expect(evicted).To(BeIdenticalTo(msg1))
			Expect(port.NumIncoming()).To(Equal(2))
			Expect(port.RetrieveIncoming()).To(BeIdenticalTo(msg2))
			Expect(port.RetrieveIncoming()).To(BeIdenticalTo(msg3))
		})

		It("should invoke the evicted hook before the receive hook", func() {
			msg1 := SonarMsgBuilder{}.Build()
			msg2 := SonarMsgBuilder{}.Build()
			msg3 := SonarMsgBuilder{}.Build()
			port.Deliver(msg1)
			port.Deliver(msg2)

			hook := NewMockHook(mockCtrl)
			port.AcceptHook(hook)

			gomock.InOrder(
				hook.EXPECT().Func(gomock.Any()).Do(func(ctx hooking.HookCtx) {
					Expect(ctx.Pos).To(Equal(HookPosPortMsgEvicted))
					Expect(ctx.Item).To(BeIdenticalTo(msg1))
				}),
				hook.EXPECT().Func(gomock.Any()).Do(func(ctx hooking.HookCtx) {
					Expect(ctx.Pos).To(Equal(HookPosPortMsgRecvd))
					Expect(ctx.Item).To(BeIdenticalTo(msg3))
				}),
			)

			port.Deliver(msg3)
		})
	})

	It("should invoke hooks on receive and retrieve", func() {
		hook := NewMockHook(mockCtrl)
		port.AcceptHook(hook)

		msg := SonarMsgBuilder{}.Build()

		gomock.InOrder(
			hook.EXPECT().Func(gomock.Any()).Do(func(ctx hooking.HookCtx) {
				Expect(ctx.Pos).To(Equal(HookPosPortMsgRecvd))
				Expect(ctx.Item).To(BeIdenticalTo(msg))
			}),
			hook.EXPECT().Func(gomock.Any()).Do(func(ctx hooking.HookCtx) {
				Expect(ctx.Pos).To(Equal(HookPosPortMsgRetrieveIncoming))
			}),
		)

		port.Deliver(msg)
		port.RetrieveIncoming()
	})

	It("should panic when sending a message from another source", func() {
		bus := MakeBuilder().Build("Bus")
		bus.PlugIn(port)

		msg := MotorCmdMsgBuilder{}.
			WithSrc("Somebody.Else").
			WithTopic("leftmotors").
			Build()

		Expect(func() { port.Send(msg) }).To(Panic())
	})

	It("should panic when sending without a topic", func() {
		bus := MakeBuilder().Build("Bus")
		bus.PlugIn(port)

		msg := MotorCmdMsgBuilder{}.WithSrc(port.AsRemote()).Build()

		Expect(func() { port.Send(msg) }).To(Panic())
	})

	It("should panic when sending while unplugged", func() {
		msg := MotorCmdMsgBuilder{}.
			WithSrc(port.AsRemote()).
			WithTopic("leftmotors").
			Build()

		Expect(func() { port.Send(msg) }).To(Panic())
	})
})
