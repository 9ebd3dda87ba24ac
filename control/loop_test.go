package control

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/keithnet/comm"
	"github.com/sarchlab/keithnet/hooking"
	"github.com/sarchlab/keithnet/motor"
	"github.com/sarchlab/keithnet/nn"
	"github.com/sarchlab/keithnet/sonar"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Loop", func() {
	var (
		mockCtrl *gomock.Controller
		network  *MockNetwork
		clock    *fakeClock
		bus      *comm.Bus
		sensor   comm.Port
		left     comm.Port
		right    comm.Port
		loop     *Loop
	)

	zeroGenome := func(n int) ([]float64, error) {
		return make([]float64, n), nil
	}

	publishSonar := func(ranges ...float32) {
		msg := comm.SonarMsgBuilder{}.
			WithSrc(sensor.AsRemote()).
			WithTopic("sonar").
			WithRanges(ranges...).
			Build()
		Expect(sensor.Send(msg)).To(BeNil())
	}

	speedOf := func(p comm.Port) float32 {
		msg := p.RetrieveIncoming()
		Expect(msg).NotTo(BeNil())

		return msg.(*comm.MotorCmdMsg).Speed
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		network = NewMockNetwork(mockCtrl)
		clock = newFakeClock()

		bus = comm.MakeBuilder().WithTimeSource(clock.Now).Build("Bus")
		sensor = comm.NewPort("Sonar.Out", 4)
		left = comm.NewPort("LeftMotors.In", 16)
		right = comm.NewPort("RightMotors.In", 16)
		bus.PlugIn(sensor)
		bus.PlugIn(left)
		bus.PlugIn(right)
		bus.Subscribe("leftmotors", left)
		bus.Subscribe("rightmotors", right)

		loop = MakeBuilder().
			WithBus(bus).
			WithNetwork(network).
			WithClock(clock).
			WithQueueSize(4).
			Build("Robot")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	expectInit := func() {
		network.EXPECT().Configure(nn.DeploymentTopology())
		network.EXPECT().ExpectedParameterCount().Return(60).AnyTimes()
		network.EXPECT().LoadParameters(gomock.Len(60))
	}

	It("should plug its ports into the bus", func() {
		Expect(loop.SonarPort().Name()).To(Equal("Robot.SonarPort"))
		Expect(loop.MotorPort().Name()).To(Equal("Robot.MotorPort"))
		Expect(loop.SonarPort().Connection()).To(BeIdenticalTo(bus))
		Expect(loop.MotorPort().Connection()).To(BeIdenticalTo(bus))
		Expect(loop.State()).To(Equal(Uninitialized))
	})

	It("should panic when built without a network", func() {
		Expect(func() {
			MakeBuilder().WithBus(bus).Build("NoNet")
		}).To(Panic())
	})

	It("should panic when built with a zero frequency", func() {
		Expect(func() {
			MakeBuilder().WithBus(bus).WithNetwork(network).WithFreq(0).Build("Bad")
		}).To(Panic())
	})

	Context("init", func() {
		It("should become ready after loading the genome", func() {
			expectInit()

			var asked int
			err := loop.Init(func(n int) ([]float64, error) {
				asked = n
				return make([]float64, n), nil
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(asked).To(Equal(60))
			Expect(loop.State()).To(Equal(Ready))
		})

		It("should stay uninitialized when the genome cannot be read", func() {
			network.EXPECT().Configure(nn.DeploymentTopology())
			network.EXPECT().ExpectedParameterCount().Return(60)

			readErr := errors.New("disk on fire")
			err := loop.Init(func(int) ([]float64, error) {
				return nil, readErr
			})

			Expect(err).To(MatchError(readErr))
			Expect(loop.State()).To(Equal(Uninitialized))
		})

		It("should reject a genome of the wrong size", func() {
			network.EXPECT().Configure(nn.DeploymentTopology())
			network.EXPECT().ExpectedParameterCount().Return(60).AnyTimes()

			err := loop.Init(func(int) ([]float64, error) {
				return make([]float64, 59), nil
			})

			Expect(err).To(MatchError(ContainSubstring("got 59, want 60")))
			Expect(loop.State()).To(Equal(Uninitialized))
		})

		It("should not init twice", func() {
			expectInit()
			Expect(loop.Init(zeroGenome)).To(Succeed())

			Expect(loop.Init(zeroGenome)).NotTo(Succeed())
		})
	})

	It("should panic when ticked before init", func() {
		Expect(func() { loop.Tick() }).To(Panic())
	})

	Context("when ready", func() {
		BeforeEach(func() {
			expectInit()
			Expect(loop.Init(zeroGenome)).To(Succeed())
			bus.Subscribe("sonar", loop.SonarPort())
		})

		It("should set the hormone before stepping", func() {
			gomock.InOrder(
				network.EXPECT().SetHormone(0.0),
				network.EXPECT().
					Step([]float64{0.5, 0.25, 0.75}).
					Return([]float64{1, 0}),
			)

			publishSonar(0.5, 0.25, 0.75)
			rec := loop.Tick()

			Expect(rec.Tick).To(Equal(uint64(1)))
			Expect(rec.Drained).To(Equal(1))
			Expect(rec.Inputs).To(Equal(sonar.Reading{0.5, 0.25, 0.75}))
			Expect(rec.Outputs).To(Equal([nn.NumOutputs]float64{1, 0}))
			Expect(rec.Command).To(Equal(motor.Command{Left: 7.5, Right: -7.5}))
		})

		It("should publish one command per motor topic", func() {
			network.EXPECT().SetHormone(0.0)
			network.EXPECT().Step(gomock.Any()).Return([]float64{0.75, 0.5})

			loop.Tick()

			Expect(speedOf(left)).To(Equal(float32(3.75)))
			Expect(speedOf(right)).To(Equal(float32(0)))
			Expect(left.NumIncoming()).To(BeZero())
			Expect(right.NumIncoming()).To(BeZero())
		})

		It("should use the latest sonar message", func() {
			network.EXPECT().SetHormone(0.0)
			network.EXPECT().
				Step([]float64{0.75, 0.75, 0.75}).
				Return([]float64{0.5, 0.5})

			publishSonar(0.25, 0.25, 0.25)
			publishSonar(0.5, 0.5, 0.5)
			publishSonar(0.75, 0.75, 0.75)

			rec := loop.Tick()

			Expect(rec.Drained).To(Equal(3))
			Expect(loop.SonarPort().NumIncoming()).To(BeZero())
		})

		It("should leave messages that arrive during the tick for the next one", func() {
			network.EXPECT().SetHormone(0.0).Times(2)
			network.EXPECT().
				Step([]float64{0.25, 0.25, 0.25}).
				DoAndReturn(func([]float64) []float64 {
					publishSonar(0.5, 0.5, 0.5)
					return []float64{0.5, 0.5}
				})
			network.EXPECT().
				Step([]float64{0.5, 0.5, 0.5}).
				Return([]float64{0.5, 0.5})

			publishSonar(0.25, 0.25, 0.25)

			first := loop.Tick()
			Expect(first.Drained).To(Equal(1))
			Expect(loop.SonarPort().NumIncoming()).To(Equal(1))

			second := loop.Tick()
			Expect(second.Drained).To(Equal(1))
			Expect(second.Inputs).To(Equal(sonar.Reading{0.5, 0.5, 0.5}))
		})

		It("should skip short sonar messages", func() {
			network.EXPECT().SetHormone(0.0)
			network.EXPECT().
				Step([]float64{0.5, 0.5, 0.5}).
				Return([]float64{0.5, 0.5})

			publishSonar(0.5, 0.5, 0.5)
			publishSonar(0.25, 0.25)

			rec := loop.Tick()

			Expect(rec.Drained).To(Equal(1))
			Expect(rec.Rejected).To(Equal(1))
		})

		It("should feed zeros until the first sonar message", func() {
			network.EXPECT().SetHormone(0.0).Times(3)
			network.EXPECT().
				Step([]float64{0, 0, 0}).
				Return([]float64{0.5, 0.5}).
				Times(3)

			for i := 0; i < 3; i++ {
				rec := loop.Tick()
				Expect(rec.Command).To(Equal(motor.Command{}))
			}

			Expect(loop.TickCount()).To(Equal(uint64(3)))
		})

		It("should pass outputs outside [0,1] through unclamped", func() {
			network.EXPECT().SetHormone(0.0)
			network.EXPECT().Step(gomock.Any()).Return([]float64{2, -1})

			rec := loop.Tick()

			Expect(rec.Command).To(Equal(motor.Command{Left: 22.5, Right: -22.5}))
		})

		It("should invoke the tick hooks", func() {
			network.EXPECT().SetHormone(0.0)
			network.EXPECT().Step(gomock.Any()).Return([]float64{0.5, 0.5})

			var positions []*hooking.HookPos
			var ended TickRecord
			loop.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
				positions = append(positions, ctx.Pos)
				if ctx.Pos == HookPosTickEnd {
					ended = ctx.Item.(TickRecord)
				}
			}))

			rec := loop.Tick()

			Expect(positions).To(Equal([]*hooking.HookPos{
				HookPosTickStart, HookPosTickEnd,
			}))
			Expect(ended).To(Equal(rec))
			Expect(loop.LastTick()).To(Equal(rec))
		})
	})

	Context("with a short sonar queue", func() {
		It("should keep the most recent reading on overflow", func() {
			loop = MakeBuilder().
				WithBus(bus).
				WithNetwork(network).
				WithClock(clock).
				WithQueueSize(2).
				Build("Bursty")

			expectInit()
			Expect(loop.Init(zeroGenome)).To(Succeed())
			bus.Subscribe("sonar", loop.SonarPort())

			network.EXPECT().SetHormone(0.0)
			network.EXPECT().
				Step([]float64{3, 3, 3}).
				Return([]float64{0.5, 0.5})

			publishSonar(1, 1, 1)
			publishSonar(2, 2, 2)
			publishSonar(3, 3, 3)

			rec := loop.Tick()

			Expect(rec.Drained).To(Equal(2))
			Expect(rec.Inputs).To(Equal(sonar.Reading{3, 3, 3}))
			Expect(bus.Stats("sonar").Dropped).To(Equal(uint64(1)))
		})
	})

	Context("with a hormone level", func() {
		It("should apply the level on every tick", func() {
			loop = MakeBuilder().
				WithBus(bus).
				WithNetwork(network).
				WithClock(clock).
				WithHormone(0.8).
				Build("Modulated")

			expectInit()
			Expect(loop.Init(zeroGenome)).To(Succeed())

			network.EXPECT().SetHormone(0.8).Times(2)
			network.EXPECT().Step(gomock.Any()).Return([]float64{0.5, 0.5}).Times(2)

			loop.Tick()
			rec := loop.Tick()

			Expect(rec.Hormone).To(Equal(0.8))
		})
	})

	Context("run", func() {
		stopAfter := func(n uint64, cancel context.CancelFunc) {
			loop.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
				if ctx.Pos == HookPosTickEnd && ctx.Item.(TickRecord).Tick == n {
					cancel()
				}
			}))
		}

		It("should refuse to run before init", func() {
			Expect(loop.Run(context.Background())).NotTo(Succeed())
			Expect(loop.State()).To(Equal(Uninitialized))
		})

		It("should tick until cancelled and then stop", func() {
			expectInit()
			Expect(loop.Init(zeroGenome)).To(Succeed())

			network.EXPECT().SetHormone(0.0).Times(3)
			network.EXPECT().Step(gomock.Any()).Return([]float64{0.5, 0.5}).Times(3)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			stopAfter(3, cancel)

			Expect(loop.Run(ctx)).To(Succeed())

			Expect(loop.TickCount()).To(Equal(uint64(3)))
			Expect(loop.State()).To(Equal(Stopped))
			Expect(loop.Run(ctx)).NotTo(Succeed())
		})

		It("should subscribe to sonar only while running", func() {
			expectInit()
			Expect(loop.Init(zeroGenome)).To(Succeed())

			network.EXPECT().SetHormone(0.0).AnyTimes()
			network.EXPECT().
				Step([]float64{0.5, 0.25, 0.75}).
				Return([]float64{0.5, 0.5})

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			publishSonar(0.5, 0.25, 0.75)
			Expect(loop.SonarPort().NumIncoming()).To(BeZero())

			loop.AcceptHook(hooking.HookFunc(func(hctx hooking.HookCtx) {
				if hctx.Pos == HookPosTickStart {
					publishSonar(0.5, 0.25, 0.75)
				}
				if hctx.Pos == HookPosTickEnd {
					cancel()
				}
			}))

			Expect(loop.Run(ctx)).To(Succeed())

			publishSonar(0.25, 0.25, 0.25)
			Expect(loop.SonarPort().NumIncoming()).To(BeZero())
		})

		It("should wait for the rest of the period", func() {
			expectInit()
			Expect(loop.Init(zeroGenome)).To(Succeed())

			network.EXPECT().SetHormone(0.0).Times(2)
			network.EXPECT().Step(gomock.Any()).
				DoAndReturn(func([]float64) []float64 {
					clock.Advance(30 * time.Millisecond)
					return []float64{0.5, 0.5}
				}).
				Times(2)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			stopAfter(2, cancel)

			Expect(loop.Run(ctx)).To(Succeed())

			Expect(clock.Waits()).To(HaveLen(2))
			Expect(clock.Waits()).To(HaveEach(70 * time.Millisecond))
			Expect(loop.LastTick().Work).To(Equal(30 * time.Millisecond))
		})

		It("should start the next tick at once after an overrun", func() {
			expectInit()
			Expect(loop.Init(zeroGenome)).To(Succeed())

			network.EXPECT().SetHormone(0.0).Times(2)
			network.EXPECT().Step(gomock.Any()).
				DoAndReturn(func([]float64) []float64 {
					clock.Advance(250 * time.Millisecond)
					return []float64{0.5, 0.5}
				}).
				Times(2)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			stopAfter(2, cancel)

			Expect(loop.Run(ctx)).To(Succeed())

			Expect(clock.Waits()).To(HaveLen(2))
			Expect(clock.Waits()).To(HaveEach(time.Duration(0)))
		})
	})
})
