// Package opinion provides core primitives for agent-based opinion models.
//
// The package defines the fundamental types shared by the simulators:
//
//   - [Spins]: fixed-length population of ±1 opinions
//   - [Model]: interface for discrete opinion dynamics
//   - [Runner]: orchestrates simulation runs and records traces
//   - [Metric]: aggregate statistic observed during a run
//   - [Ensemble]: seeded replica runs for trial averaging
//
// # Example
//
//	m, _ := social.New(300, 0.3, 0.52, 12, rng)
//	r := opinion.NewRunner(m)
//	result, _ := r.Run(ctx, cfg)
//
// # Thread Safety
//
// Model and Runner instances are NOT thread-safe. For repeated trials,
// use the [Ensemble] type which safely manages independent replicas.
package opinion
