// Package analysis characterizes how a board evolves.
//
//   - [PowerSpectrum]: spectrum of a population series
//   - [DominantPeriod]: strongest oscillation period in a population series
//   - [FindCycle]: when a board starts repeating, and with what period
//
// # Settling
//
// Every finite board eventually repeats. FindCycle steps a copy until a
// board recurs or the generation limit is reached:
//
//	c, ok := analysis.FindCycle(snap, 1000)
//	if ok && c.Period == 1 {
//	    // settled into still lifes
//	}
package analysis
