// Package physics provides the lumped thermal model of a hot-water tank.
//
// The tank is a single well-mixed volume of heat capacity C:
//
//	C·dT/dt = P_in − k_loss·(T − T_out) − k_draw·q_out·(T − T_cold)
//
// [Step] advances it by one explicit Euler step. [Balance] exposes the three power flows and
// [Equilibrium] the steady-state temperature for constant inputs.
package physics
