package dynamo

import (
	"errors"
	"fmt"
	"math"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidConfig is wrapped by every ConfigError so callers can test with errors.Is.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrUnknownColumn indicates a column name outside Columns.
	ErrUnknownColumn = errors.New("dynamo: unknown column")
)

// ConfigError reports a configuration value rejected before any simulation work.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// Invalid builds a ConfigError.
func Invalid(field string, value any, reason string) error {
	return &ConfigError{Field: field, Value: value, Reason: reason}
}

// RequireFinite rejects NaN and ±Inf.
func RequireFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Invalid(field, v, "must be finite")
	}
	return nil
}

// RequirePositive rejects non-finite values and values <= 0.
func RequirePositive(field string, v float64) error {
	if err := RequireFinite(field, v); err != nil {
		return err
	}
	if v <= 0 {
		return Invalid(field, v, "must be positive")
	}
	return nil
}

// RequireNonNegative rejects non-finite values and values < 0.
func RequireNonNegative(field string, v float64) error {
	if err := RequireFinite(field, v); err != nil {
		return err
	}
	if v < 0 {
		return Invalid(field, v, "must not be negative")
	}
	return nil
}

// MaxSteps bounds the number of ticks of a single run.
const MaxSteps = 10_000_000

// RequireSteps rejects time grids of more than MaxSteps ticks. dt and total are expected
// to be positive already.
func RequireSteps(dt, total float64) error {
	if n := total / dt; math.IsNaN(n) || n > MaxSteps {
		return Invalid("dt", dt, fmt.Sprintf("too many steps for total_time %g (limit %d)", total, MaxSteps))
	}
	return nil
}
