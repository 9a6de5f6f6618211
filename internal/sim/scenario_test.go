package sim_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/boilersim/internal/config"
	"github.com/san-kum/boilersim/internal/control"
	"github.com/san-kum/boilersim/internal/dynamo"
	"github.com/san-kum/boilersim/internal/physics"
	"github.com/san-kum/boilersim/internal/sim"
)

func run(cfg *config.Config) *dynamo.Trajectory {
	s, err := sim.FromConfig(cfg)
	Expect(err).NotTo(HaveOccurred())
	traj, err := s.Run(context.Background())
	Expect(err).NotTo(HaveOccurred())
	return traj
}

func maxTemperature(samples []dynamo.Sample) float64 {
	m := samples[0].Temperature
	for _, s := range samples {
		if s.Temperature > m {
			m = s.Temperature
		}
	}
	return m
}

func minTemperature(samples []dynamo.Sample) float64 {
	m := samples[0].Temperature
	for _, s := range samples {
		if s.Temperature < m {
			m = s.Temperature
		}
	}
	return m
}

var _ = Describe("Boiler simulation", func() {
	var cfg *config.Config

	BeforeEach(func() {
		cfg = config.DefaultConfig()
	})

	Describe("without draw", func() {
		BeforeEach(func() {
			cfg.Draw.Profile = "none"
			cfg.Controller.Td = 0
		})

		It("settles within 0.1 °C of the setpoint", func() {
			traj := run(cfg)

			Expect(traj.Len()).To(Equal(18001))
			Expect(traj.Last().Temperature).To(BeNumerically("~", 55, 0.1))
			Expect(maxTemperature(traj.Samples)).To(BeNumerically("<", 55.1))
		})

		It("overshoots less with the dynamic bound than with plain clamping or back-calculation", func() {
			overshoot := map[string]float64{}
			for _, kind := range control.Kinds() {
				c := cfg.Clone()
				c.Controller.AntiWindup = kind.String()
				overshoot[kind.String()] = maxTemperature(run(c).Samples) - c.Controller.TSet
			}

			Expect(overshoot["dynamic_bound"]).To(BeNumerically("<", overshoot["clamping"]))
			Expect(overshoot["dynamic_bound"]).To(BeNumerically("<", overshoot["back_calculation"]))
			Expect(overshoot["clamping"]).To(BeNumerically(">", 1))
		})
	})

	DescribeTable("with the heater disabled",
		func(mutate func(*config.Config)) {
			cfg.Draw.Profile = "none"
			mutate(cfg)
			traj := run(cfg)

			for i, s := range traj.Samples {
				Expect(s.Power).To(BeZero())
				if i > 0 {
					Expect(s.Temperature).To(BeNumerically(">=", traj.Samples[i-1].Temperature))
				}
				Expect(s.Temperature).To(BeNumerically("<=", physics.DefaultTOut))
			}
		},
		Entry("all gains zero", func(c *config.Config) {
			c.Controller.Kp, c.Controller.Ti, c.Controller.Td = 0, 0, 0
		}),
		Entry("zero heater power", func(c *config.Config) {
			c.Controller.PMax = 0
		}),
	)

	It("relaxes monotonically to the draw-weighted equilibrium under constant draw", func() {
		cfg.Controller.Kp, cfg.Controller.Ti, cfg.Controller.Td = 0, 0, 0
		cfg.Draw.Profile = "constant"
		cfg.Draw.FlowLPerMin = 2
		cfg.Run.TotalTime = 100000

		traj := run(cfg)
		d, err := cfg.Derive()
		Expect(err).NotTo(HaveOccurred())
		eq, ok := physics.Equilibrium(0, config.FlowLPS(2), d.Params)
		Expect(ok).To(BeTrue())

		for i := 1; i < traj.Len(); i++ {
			Expect(traj.Samples[i].Temperature).To(BeNumerically(">=", traj.Samples[i-1].Temperature))
			Expect(traj.Samples[i].Temperature).To(BeNumerically("<=", eq))
		}
		Expect(traj.Last().Temperature).To(BeNumerically("~", eq, 1e-3))
	})

	Describe("the shower scenario", func() {
		var traj *dynamo.Trajectory

		BeforeEach(func() {
			cfg.Draw.FlowLPerMin = 8
			traj = run(cfg)
		})

		It("saturates the heater during the cold-start climb", func() {
			for _, s := range traj.Window(1, 3000) {
				Expect(s.Power).To(Equal(2000.0))
			}
			Expect(traj.Samples[3000].Temperature).To(BeNumerically(">", traj.Samples[0].Temperature))
		})

		It("approaches the setpoint and settles toward loss compensation before the shower", func() {
			before := traj.Samples[9999]
			Expect(before.Temperature).To(BeNumerically(">", 50))
			Expect(before.Temperature).To(BeNumerically("<", 55))

			loss := physics.Balance(before.Temperature, before.Power, 0, cfg.Tank.Params()).Loss
			Expect(before.Power).To(BeNumerically("<", traj.Samples[7000].Power))
			Expect(before.Power).To(BeNumerically(">", loss))
			Expect(before.Power).To(BeNumerically("<", 2.5*loss))
		})

		It("dips during the window and recovers afterward", func() {
			before := traj.Samples[9999].Temperature
			low := minTemperature(traj.Window(10000, 12000))
			Expect(before - low).To(BeNumerically(">", 20))

			after := traj.Window(12001, 18000)
			for i := 1; i < len(after); i++ {
				Expect(after[i].Temperature).To(BeNumerically(">=", after[i-1].Temperature))
			}
			Expect(traj.Last().Temperature).To(BeNumerically(">", low+20))
		})

		It("keeps power within [0, P_max]", func() {
			for _, s := range traj.Samples {
				Expect(s.Power).To(And(BeNumerically(">=", 0), BeNumerically("<=", 2000)))
			}
		})
	})

	DescribeTable("rejects a bad time grid before producing samples",
		func(dt, total float64, field string) {
			cfg.Run.Dt = dt
			cfg.Run.TotalTime = total

			_, err := sim.FromConfig(cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))

			var ce *dynamo.ConfigError
			Expect(errors.As(err, &ce)).To(BeTrue())
			Expect(ce.Field).To(Equal(field))
		},
		Entry("zero dt", 0.0, 18000.0, "dt"),
		Entry("negative dt", -1.0, 18000.0, "dt"),
		Entry("zero total time", 1.0, 0.0, "total_time"),
		Entry("negative total time", 1.0, -10.0, "total_time"),
		Entry("more ticks than an int holds", 1e-300, 18000.0, "dt"),
		Entry("more ticks than the step limit", 1e-4, 18000.0, "dt"),
	)

	It("runs strategies in parallel with the same results as sequential runs", func() {
		var sims []*sim.Simulator
		for _, kind := range control.Kinds() {
			c := cfg.Clone()
			c.Controller.AntiWindup = kind.String()
			s, err := sim.FromConfig(c)
			Expect(err).NotTo(HaveOccurred())
			sims = append(sims, s)
		}

		results, err := sim.RunAll(context.Background(), sims, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(len(sims)))

		for i, s := range sims {
			want, err := s.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(results[i].Samples).To(Equal(want.Samples))
		}
	})
})
