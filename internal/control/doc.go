// Package control provides the heater PID controller and its anti-windup policies.
//
// The controller works in the ideal (ISA) form: Ki = Kp/Ti and Kd = Kp·Td, with Ti = 0 or
// Td = 0 switching the corresponding action off. The raw command is saturated to [0, PMax].
//
// How the integral reacts to saturation is a pluggable [AntiWindup] policy:
//
//   - [Clamping]: conditional integration, optional fixed limit
//   - [BackCalculation]: feeds the saturation excess back with tracking time Tt
//   - [DynamicBound]: conditional integration plus a limit scaled from the expected
//     steady-state loss, active near the setpoint
//
// # Usage
//
//	aw := control.NewDynamicBound(params.KLoss, cfg.TSet, params.TOut)
//	pid := control.NewPID(cfg, aw)
//	out := pid.Update(temperature, dt)
//
// A PID carries per-run state; build a new one for every run.
package control
