// Package disturbance provides hot-water draw profiles.
//
// A profile is an immutable value with a single Flow(t) method returning the draw in L/s:
//
//   - [Boxcar]: one rectangular window, the default "shower" event
//   - [Schedule]: several windows summed
//   - [Constant]: a fixed draw
//   - [None]: no draw
package disturbance
