// Package viz renders simulation results in the terminal.
//
//   - [Panels]: the four stacked plots of a run (temperature, heater power, PID terms, draw)
//   - [Summary]: a lipgloss table of derived metrics
//   - [Compare]: one row of metrics per anti-windup policy or parameter set
//
// Colors follow the current [Theme]; see [SetTheme].
package viz
