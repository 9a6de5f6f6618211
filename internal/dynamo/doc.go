// Package dynamo provides the core value types shared by the boiler simulation:
//
//   - [Sample]: one row of output (time, temperature, power, draw, PID terms)
//   - [Trajectory]: the ordered series produced by one run
//   - [Metric] and [Observer]: hooks fed every sample by the driver
//   - [ConfigError]: typed configuration rejection wrapping [ErrInvalidConfig]
//
// # Example
//
//	traj, err := sim.New(params, profile, ctrl, aw, run).Run(ctx)
//	if errors.Is(err, dynamo.ErrInvalidConfig) {
//		// surface to the user
//	}
//	temps := traj.Temperatures()
package dynamo
