package control

import (
	"fmt"
	"math"
)

// DefaultBand is the error band, in °C, inside which DynamicBound enforces its limit.
const DefaultBand = 5.0

// Kind selects an anti-windup policy.
type Kind int

const (
	KindUnknown Kind = iota
	KindClamping
	KindBackCalculation
	KindDynamicBound
)

func (k Kind) Valid() bool {
	return k == KindClamping || k == KindBackCalculation || k == KindDynamicBound
}

func (k Kind) String() string {
	switch k {
	case KindClamping:
		return "clamping"
	case KindBackCalculation:
		return "back_calculation"
	case KindDynamicBound:
		return "dynamic_bound"
	default:
		return "unknown"
	}
}

func ParseKind(s string) (Kind, error) {
	switch s {
	case "clamping":
		return KindClamping, nil
	case "back_calculation":
		return KindBackCalculation, nil
	case "dynamic_bound":
		return KindDynamicBound, nil
	default:
		return KindUnknown, fmt.Errorf("invalid anti-windup policy: %q", s)
	}
}

// Kinds lists every valid policy.
func Kinds() []Kind {
	return []Kind{KindClamping, KindBackCalculation, KindDynamicBound}
}

// Step is what a policy sees of one controller tick.
type Step struct {
	Error   float64
	Dt      float64
	Ki      float64
	Command float64 // unclamped u
	Output  float64 // clamped command
	PMax    float64
}

// Worsening reports whether integrating the error would push further into saturation.
func (s Step) Worsening() bool {
	return (s.Output >= s.PMax && s.Error > 0) || (s.Output <= 0 && s.Error < 0)
}

// AntiWindup decides the next integral value. It is only consulted when Ki > 0.
type AntiWindup interface {
	Kind() Kind
	Integrate(integral float64, s Step) float64
}

// Clamping is conditional integration with an optional fixed symmetric limit.
type Clamping struct {
	Limit float64 // 0 for no limit
}

func (Clamping) Kind() Kind { return KindClamping }

func (c Clamping) Integrate(integral float64, s Step) float64 {
	if !s.Worsening() {
		integral += s.Error * s.Dt
	}
	if c.Limit > 0 {
		integral = clampSymmetric(integral, c.Limit)
	}
	return integral
}

// BackCalculation bleeds the saturation excess back into the integral with tracking time Tt.
type BackCalculation struct {
	Tt float64 // seconds
}

// DefaultTrackingTime is √(Ti·Td) when derivative action is on, Ti otherwise.
func DefaultTrackingTime(ti, td float64) float64 {
	if td > 0 {
		return math.Sqrt(ti * td)
	}
	return ti
}

func (BackCalculation) Kind() Kind { return KindBackCalculation }

func (b BackCalculation) Integrate(integral float64, s Step) float64 {
	integral += s.Error * s.Dt
	if b.Tt > 0 && s.Ki > 0 {
		integral += (s.Output - s.Command) / (s.Ki * b.Tt) * s.Dt
	}
	return integral
}

// DynamicBound is conditional integration plus a limit derived from the steady-state loss
// at the setpoint. Inside the band the integral is held to ±L with
// L = |LossEstimate/Ki|·(1 + max(0, e/Band)): 1× at the setpoint, 2× at the band edge.
// The limit is not enforced while e >= Band.
type DynamicBound struct {
	LossEstimate float64 // W
	Band         float64 // °C
}

// NewDynamicBound estimates the loss to compensate as kLoss·(tSet − tOut).
func NewDynamicBound(kLoss, tSet, tOut float64) DynamicBound {
	return DynamicBound{LossEstimate: kLoss * (tSet - tOut), Band: DefaultBand}
}

func (DynamicBound) Kind() Kind { return KindDynamicBound }

// Limit returns the integral bound for error e, and whether it is enforced.
func (d DynamicBound) Limit(e, ki float64) (float64, bool) {
	band := d.Band
	if band <= 0 {
		band = DefaultBand
	}
	if ki <= 0 || e >= band {
		return 0, false
	}
	base := math.Abs(d.LossEstimate / ki)
	return base * (1 + math.Max(0, e/band)), true
}

func (d DynamicBound) Integrate(integral float64, s Step) float64 {
	if !s.Worsening() {
		integral += s.Error * s.Dt
	}
	if limit, ok := d.Limit(s.Error, s.Ki); ok {
		integral = clampSymmetric(integral, limit)
	}
	return integral
}

// Options carries the per-policy settings used by New.
type Options struct {
	Limit        float64 // Clamping
	TrackingTime float64 // BackCalculation; 0 selects DefaultTrackingTime
	LossEstimate float64 // DynamicBound
	Band         float64 // DynamicBound; 0 selects DefaultBand
}

// New builds the policy of the given kind for a controller tuned with cfg.
func New(kind Kind, cfg Config, opts Options) (AntiWindup, error) {
	switch kind {
	case KindClamping:
		return Clamping{Limit: opts.Limit}, nil
	case KindBackCalculation:
		tt := opts.TrackingTime
		if tt <= 0 {
			tt = DefaultTrackingTime(cfg.Ti, cfg.Td)
		}
		return BackCalculation{Tt: tt}, nil
	case KindDynamicBound:
		band := opts.Band
		if band <= 0 {
			band = DefaultBand
		}
		return DynamicBound{LossEstimate: opts.LossEstimate, Band: band}, nil
	default:
		return nil, fmt.Errorf("invalid anti-windup policy: %v", kind)
	}
}

func clampSymmetric(v, limit float64) float64 {
	return math.Max(-limit, math.Min(v, limit))
}
