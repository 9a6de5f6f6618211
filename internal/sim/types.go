package sim

import (
	"math"

	"github.com/san-kum/boilersim/internal/dynamo"
)

// Config is the time grid of a run.
type Config struct {
	Dt        float64 // s
	TotalTime float64 // s
}

func (c Config) Validate() error {
	if err := dynamo.RequirePositive("dt", c.Dt); err != nil {
		return err
	}
	if err := dynamo.RequirePositive("total_time", c.TotalTime); err != nil {
		return err
	}
	return dynamo.RequireSteps(c.Dt, c.TotalTime)
}

// Steps is the number of ticks, floor(TotalTime/Dt). A run produces Steps()+1 samples.
// Only meaningful for a config that passed Validate.
func (c Config) Steps() int {
	return int(math.Floor(c.TotalTime / c.Dt))
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithMetrics registers metrics. Each run builds its own instances.
func WithMetrics(factories ...dynamo.MetricFactory) Option {
	return func(s *Simulator) {
		s.metrics = append(s.metrics, factories...)
	}
}

// WithObserver registers an observer fed every sample, sample 0 included. An observer
// shared by simulators running in parallel must be safe for concurrent use.
func WithObserver(o dynamo.Observer) Option {
	return func(s *Simulator) {
		s.observers = append(s.observers, o)
	}
}

// ObserverFunc adapts a function to dynamo.Observer.
type ObserverFunc func(dynamo.Sample)

func (f ObserverFunc) OnSample(s dynamo.Sample) { f(s) }
