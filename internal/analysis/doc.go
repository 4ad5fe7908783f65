// Package analysis extracts time series from a run trace and
// characterises them:
//
//   - [Series]: one named channel (state slot, tyre depth, grounded count)
//   - [PowerSpectrum]: amplitude spectrum of a channel, e.g. gear bounce
//   - [NewPhasePortrait]: one channel against another, e.g. pitch vs pitch rate
//
// # Gear bounce
//
// The dominant frequency of a tyre depth after touchdown is the bounce
// frequency of the landing gear:
//
//	depth, _ := analysis.Series(result.Samples, "depth_front")
//	sp, _ := analysis.PowerSpectrum(depth, dt)
//	hz, _ := sp.Dominant()
package analysis
