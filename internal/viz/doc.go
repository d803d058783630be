// Package viz provides a terminal live view for running opinion models.
//
// The view is built on the Bubble Tea framework: the left panel charts the
// history of one observable with asciigraph, the right panel shows the
// current step, observables, and tunable parameters.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Rebuild and restart the model
//	O     - Cycle the charted observable
//	Tab   - Cycle parameters, Up/Down to tune
//	+/-   - Steps per tick
//	?     - Show help overlay
package viz
