package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/boilersim/internal/config"
	"github.com/san-kum/boilersim/internal/control"
	"github.com/san-kum/boilersim/internal/disturbance"
	"github.com/san-kum/boilersim/internal/dynamo"
	"github.com/san-kum/boilersim/internal/physics"
)

// cancelCheckInterval is how many ticks pass between context checks.
const cancelCheckInterval = 1024

var errNoProfile = errors.New("sim: no draw profile")

// Simulator couples a tank, a draw profile and a PID loop. It is not modified by Run, so one
// Simulator may run any number of times, concurrently included.
type Simulator struct {
	params    physics.BoilerParams
	profile   disturbance.Profile
	ctrl      control.Config
	aw        control.AntiWindup
	cfg       Config
	metrics   []dynamo.MetricFactory
	observers []dynamo.Observer
}

// New builds a simulator. A nil anti-windup policy falls back to control.Clamping.
func New(params physics.BoilerParams, profile disturbance.Profile, ctrl control.Config, aw control.AntiWindup, cfg Config, opts ...Option) *Simulator {
	s := &Simulator{
		params:  params,
		profile: profile,
		ctrl:    ctrl,
		aw:      aw,
		cfg:     cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FromConfig derives the physical parameters, draw profile and controller from a run
// configuration.
func FromConfig(c *config.Config, opts ...Option) (*Simulator, error) {
	d, err := c.Derive()
	if err != nil {
		return nil, err
	}
	return New(d.Params, d.Profile, d.Controller, d.AntiWindup, Config{Dt: d.Dt, TotalTime: d.TotalTime}, opts...), nil
}

func (s *Simulator) Params() physics.BoilerParams   { return s.params }
func (s *Simulator) Profile() disturbance.Profile   { return s.profile }
func (s *Simulator) Controller() control.Config     { return s.ctrl }
func (s *Simulator) AntiWindup() control.AntiWindup { return s.aw }
func (s *Simulator) Config() Config                 { return s.cfg }

// Validate checks everything Run needs before the first sample.
func (s *Simulator) Validate() error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	if err := s.params.Validate(); err != nil {
		return err
	}
	if err := s.ctrl.Validate(); err != nil {
		return err
	}
	if s.profile == nil {
		return errNoProfile
	}
	if v, ok := s.profile.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Run integrates the tank from the cold-water temperature over the whole time grid. Sample k
// is at time k·Dt; the power and PID terms of sample k are those applied during the tick that
// ended there. On error no trajectory is returned.
func (s *Simulator) Run(ctx context.Context) (*dynamo.Trajectory, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	dt := s.cfg.Dt
	steps := s.cfg.Steps()
	traj := dynamo.NewTrajectory(dt, steps+1)

	metrics := make([]dynamo.Metric, len(s.metrics))
	for i, f := range s.metrics {
		metrics[i] = f()
		metrics[i].Reset()
	}

	pid := control.NewPID(s.ctrl, s.aw)
	temp := s.params.TCold
	pid.Prime(temp)

	s.emit(traj, dynamo.Sample{Time: 0, Temperature: temp})

	for k := 0; k < steps; k++ {
		if k%cancelCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		t := float64(k+1) * dt
		q := s.profile.Flow(t)
		out := pid.Update(temp, dt)
		temp = physics.Step(temp, out.Power, q, s.params, dt)

		sample := dynamo.Sample{
			Time:        t,
			Temperature: temp,
			Power:       out.Power,
			QOut:        q,
			PTerm:       out.PTerm,
			ITerm:       out.ITerm,
			DTerm:       out.DTerm,
		}
		for _, m := range metrics {
			m.Observe(sample, dt)
		}
		s.emit(traj, sample)
	}

	for _, m := range metrics {
		traj.Metrics[m.Name()] = m.Value()
	}

	return traj, nil
}

func (s *Simulator) emit(traj *dynamo.Trajectory, sample dynamo.Sample) {
	traj.Append(sample)
	for _, o := range s.observers {
		o.OnSample(sample)
	}
}

// String summarizes the run setup for logs.
func (s *Simulator) String() string {
	kind := control.KindClamping
	if s.aw != nil {
		kind = s.aw.Kind()
	}
	return fmt.Sprintf("C=%.0fJ/°C k_loss=%.3fW/°C T_set=%.1f Kp=%g Ti=%g Td=%g P_max=%gW anti_windup=%s dt=%gs steps=%d",
		s.params.C, s.params.KLoss, s.ctrl.TSet, s.ctrl.Kp, s.ctrl.Ti, s.ctrl.Td, s.ctrl.PMax, kind, s.cfg.Dt, s.cfg.Steps())
}
