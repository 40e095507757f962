package sim_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/carsim/internal/sim"
	"github.com/san-kum/carsim/internal/vehicle"
)

type nanTire struct{}

func (nanTire) Forces(sx, sy, fz float64) (float64, float64) { return math.NaN(), 0 }

func newCar(vx float64) *vehicle.Car {
	initial := vehicle.DefaultState()
	initial.Vx = vx
	car, err := vehicle.New(vehicle.DefaultParams(), nil, initial)
	Expect(err).NotTo(HaveOccurred())
	return car
}

func newSim(final, dt float64, steering, slip []float64) *sim.Simulator {
	s, err := sim.New(sim.Config{
		Dt:            dt,
		FinalTime:     final,
		Times:         []float64{0, final},
		Steering:      steering,
		Slip:          slip,
		ValidateState: true,
	})
	Expect(err).NotTo(HaveOccurred())
	return s
}

func run(s *sim.Simulator, car *vehicle.Car) *sim.Trajectory {
	traj, err := s.Simulate(context.Background(), car)
	Expect(err).NotTo(HaveOccurred())
	return traj
}

func terminalX(final, dt float64) float64 {
	steer := 3.0 * math.Pi / 180
	traj := run(newSim(final, dt, []float64{steer, steer}, []float64{0, 0.2}), newCar(25))
	_, st := traj.Final()
	return st.X
}

var _ = Describe("Simulator", func() {
	Describe("construction", func() {
		It("rejects control arrays of different length", func() {
			cfg := sim.DefaultConfig()
			cfg.Slip = cfg.Slip[:10]
			_, err := sim.New(cfg)
			Expect(err).To(MatchError(sim.ErrLengthMismatch))

			cfg = sim.DefaultConfig()
			cfg.Times = cfg.Times[:149]
			_, err = sim.New(cfg)
			Expect(err).To(MatchError(sim.ErrLengthMismatch))
		})

		It("rejects a final time beyond the last sample", func() {
			cfg := sim.DefaultConfig()
			cfg.FinalTime = 15.001
			_, err := sim.New(cfg)
			Expect(err).To(MatchError(sim.ErrFinalTimeBeyondSignal))
		})

		It("accepts a final time equal to the last sample", func() {
			cfg := sim.DefaultConfig()
			cfg.FinalTime = 15.0
			_, err := sim.New(cfg)
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects signals that start after zero", func() {
			_, err := sim.New(sim.Config{
				Dt: 0.01, FinalTime: 1,
				Times: []float64{0.5, 1}, Steering: []float64{0, 0}, Slip: []float64{0, 0},
			})
			Expect(err).To(MatchError(sim.ErrSignalStartsLate))
		})

		DescribeTable("rejects bad step sizes",
			func(dt float64) {
				cfg := sim.DefaultConfig()
				cfg.Dt = dt
				_, err := sim.New(cfg)
				Expect(err).To(MatchError(sim.ErrInvalidStep))
			},
			Entry("zero", 0.0),
			Entry("negative", -0.001),
			Entry("nan", math.NaN()),
			Entry("infinite", math.Inf(1)),
		)

		It("uses the reference defaults", func() {
			s := sim.Default()
			Expect(s.Dt()).To(Equal(1e-3))
			Expect(s.FinalTime()).To(Equal(15.0))
			Expect(s.Steering().Len()).To(Equal(150))
			Expect(s.Steps()).To(Equal(15001))
		})
	})

	Describe("straight line", func() {
		It("keeps constant velocity with zero controls", func() {
			const vx, final = 3.0, 12.0
			cfg := sim.DefaultConfig()
			cfg.FinalTime = final
			s, err := sim.New(cfg)
			Expect(err).NotTo(HaveOccurred())

			traj := run(s, newCar(vx))
			_, st := traj.Final()

			Expect(st.X).To(BeNumerically("~", vx*final, 0.005))
			Expect(st.Y).To(BeNumerically("~", 0, 1e-7))
			Expect(st.Psi).To(BeNumerically("~", 0.5*math.Pi, 1e-7))
			Expect(st.Vx).To(BeNumerically("~", vx, 1e-7))
			Expect(st.Vy).To(BeNumerically("~", 0, 1e-7))
			Expect(st.PsiDot).To(BeNumerically("~", 0, 1e-7))
		})

		DescribeTable("travels vx*T for any final time",
			func(vx, final float64) {
				dt := 0.01
				traj := run(newSim(final, dt, []float64{0, 0}, []float64{0, 0}), newCar(vx))
				_, st := traj.Final()
				Expect(st.X).To(BeNumerically("~", vx*final, 1.5*vx*dt))
				Expect(st.Vx).To(Equal(vx))
				Expect(st.Y).To(Equal(0.0))
			},
			Entry("slow short", 1.0, 1.0),
			Entry("walking pace", 1.5, 7.3),
			Entry("fast long", 40.0, 30.0),
		)
	})

	Describe("longitudinal slip", func() {
		It("accelerates without lateral motion", func() {
			const vx, final = 3.0, 12.0
			traj := run(newSim(final, 0.005, []float64{0, 0}, []float64{0, 0.2}), newCar(vx))
			_, st := traj.Final()

			Expect(st.X).To(BeNumerically(">", 0))
			Expect(st.Vx).To(BeNumerically(">", vx))
			Expect(st.Y).To(BeNumerically("~", 0, 1e-7))
			Expect(st.Psi).To(BeNumerically("~", 0.5*math.Pi, 1e-7))
			Expect(st.Vy).To(BeNumerically("~", 0, 1e-7))
			Expect(st.PsiDot).To(BeNumerically("~", 0, 1e-7))
		})
	})

	Describe("left/right symmetry", func() {
		It("mirrors trajectories for opposite steering", func() {
			const final, dt = 50.0, 0.005
			steer := 3.0 * math.Pi / 180

			ccw := run(newSim(final, dt, []float64{steer, steer}, []float64{0, 0}), newCar(25))
			cw := run(newSim(final, dt, []float64{-steer, -steer}, []float64{0, 0}), newCar(25))

			tCCW, a := ccw.Final()
			tCW, b := cw.Final()
			Expect(tCCW).To(BeNumerically("~", tCW, 1e-12))

			Expect(b.X).To(BeNumerically("~", a.X, 1e-7))
			Expect(b.Y).To(BeNumerically("~", -a.Y, 1e-7))
			Expect(b.Psi).To(BeNumerically("~", math.Pi-a.Psi, 1e-7))
			Expect(b.Vx).To(BeNumerically("~", a.Vx, 1e-7))
			Expect(b.Vy).To(BeNumerically("~", -a.Vy, 1e-7))
			Expect(b.PsiDot).To(BeNumerically("~", -a.PsiDot, 1e-7))
		})
	})

	Describe("step refinement", func() {
		It("stays within a bounded distance of the refined solution", func() {
			coarse := terminalX(25, 0.005)
			fine := terminalX(25, 0.001)
			Expect(math.Abs(coarse - fine)).To(BeNumerically("<", 0.4))
		})

		It("converges at first order", func() {
			steer := 3.0 * math.Pi / 180
			var xs []float64
			for _, dt := range []float64{0.004, 0.002, 0.001} {
				traj := run(newSim(10, dt, []float64{steer, steer}, []float64{0, 0.1}), newCar(10))
				_, st := traj.Final()
				xs = append(xs, st.X)
			}
			d1 := math.Abs(xs[0] - xs[1])
			d2 := math.Abs(xs[1] - xs[2])
			Expect(d2).To(BeNumerically("<", d1))
			Expect(d1 / d2).To(BeNumerically("~", 2, 0.5))
		})
	})

	Describe("output", func() {
		var s *sim.Simulator

		BeforeEach(func() {
			s = newSim(1.0, 0.1, []float64{0.02, 0.02}, []float64{0, 0.1})
		})

		It("starts with the initial state at t=0", func() {
			car := newCar(5)
			initial := car.State()
			traj := run(s, car)

			Expect(traj.Times[0]).To(Equal(0.0))
			Expect(traj.States[0]).To(Equal(initial))
			Expect(traj.Len()).To(Equal(s.Steps() + 1))
			Expect(traj.Times).To(HaveLen(traj.Len()))
		})

		It("pairs states with post-step times by default", func() {
			traj := run(s, newCar(5))
			for i := 1; i < traj.Len(); i++ {
				Expect(traj.Times[i]).To(BeNumerically("~", float64(i)*0.1, 1e-12))
			}
		})

		It("can reproduce pre-step timestamps", func() {
			legacy, err := sim.New(sim.Config{
				Dt: 0.1, FinalTime: 1.0,
				Times: []float64{0, 1}, Steering: []float64{0.02, 0.02}, Slip: []float64{0, 0.1},
				Timestamps: sim.TimestampPreStep,
			})
			Expect(err).NotTo(HaveOccurred())

			traj := run(legacy, newCar(5))
			Expect(traj.Times[0]).To(Equal(0.0))
			Expect(traj.Times[1]).To(Equal(0.0))
			last, _ := traj.Final()
			Expect(last).To(BeNumerically("~", 1.0, 1e-12))

			aligned := run(s, newCar(5))
			Expect(traj.States).To(Equal(aligned.States))
		})

		It("never aliases the live state", func() {
			car := newCar(5)
			traj := run(s, car)
			_, final := traj.Final()
			Expect(car.State()).To(Equal(final))

			car.Advance(0.5, 0.5, 1)
			_, again := traj.Final()
			Expect(again).To(Equal(final))
			Expect(traj.States[1]).NotTo(Equal(traj.States[2]))
		})

		It("echoes the applied controls", func() {
			traj := run(s, newCar(5))
			Expect(traj.States[1].Delta).To(BeNumerically("~", 0.02, 1e-12))
			Expect(traj.States[1].Sx).To(BeNumerically("~", 0.0, 1e-12))
			Expect(traj.States[traj.Len()-1].Sx).To(BeNumerically("~", 0.1, 1e-12))
		})

		It("produces identical runs when reused", func() {
			first := run(s, newCar(5))
			second := run(s, newCar(5))
			Expect(second).To(Equal(first))
		})

		It("notifies observers once per step", func() {
			var calls int
			var lastT float64
			obs := sim.ObserverFunc(func(t float64, st vehicle.State, u sim.Controls) {
				calls++
				lastT = t
			})

			traj, err := s.Simulate(context.Background(), newCar(5), obs)
			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(Equal(s.Steps()))
			last, _ := traj.Final()
			Expect(lastT).To(Equal(last))
		})

		It("extracts columns", func() {
			traj := run(s, newCar(5))
			xs, err := traj.Column("x")
			Expect(err).NotTo(HaveOccurred())
			Expect(xs).To(HaveLen(traj.Len()))
			Expect(xs[0]).To(Equal(0.0))

			for _, name := range sim.Columns() {
				_, err := traj.Column(name)
				Expect(err).NotTo(HaveOccurred())
			}

			_, err = traj.Column("altitude")
			Expect(err).To(MatchError(sim.ErrUnknownColumn))
		})
	})

	Describe("failure", func() {
		It("stops on a canceled context", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			traj, err := sim.Default().Simulate(ctx, newCar(1))
			Expect(err).To(MatchError(context.Canceled))
			Expect(traj.Len()).To(Equal(1))
		})

		It("reports diverged states with the failing step", func() {
			car, err := vehicle.New(vehicle.DefaultParams(), nanTire{}, vehicle.DefaultState())
			Expect(err).NotTo(HaveOccurred())

			traj, err := newSim(1, 0.1, []float64{0, 0}, []float64{0, 0}).Simulate(context.Background(), car)
			Expect(err).To(MatchError(sim.ErrInvalidState))

			var stepErr *sim.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(stepErr.Step).To(Equal(0))
			Expect(stepErr.Error()).To(Equal("step 0 (t=0.0000): sim: invalid state (NaN or Inf detected)"))
			Expect(traj.Len()).To(Equal(1))
		})
	})

	Describe("batch", func() {
		It("matches sequential runs", func() {
			steer := 3.0 * math.Pi / 180
			left := newSim(5, 0.01, []float64{steer, steer}, []float64{0, 0})
			right := newSim(5, 0.01, []float64{-steer, -steer}, []float64{0, 0.1})

			jobs := []sim.Job{
				{Sim: left, NewCar: func() (*vehicle.Car, error) { return newCar(10), nil }},
				{Sim: right, NewCar: func() (*vehicle.Car, error) { return newCar(10), nil }},
			}

			results, err := sim.Batch(context.Background(), jobs)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			Expect(results[0]).To(Equal(run(left, newCar(10))))
			Expect(results[1]).To(Equal(run(right, newCar(10))))
		})

		It("surfaces the first job error", func() {
			boom := errors.New("boom")
			jobs := []sim.Job{
				{Sim: sim.Default(), NewCar: func() (*vehicle.Car, error) { return nil, boom }},
			}
			_, err := sim.Batch(context.Background(), jobs)
			Expect(err).To(MatchError(boom))
		})
	})
})
