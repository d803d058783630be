package experiment

import (
	"context"
	"math/rand"

	"github.com/san-kum/opinionlab/internal/opinion"
)

// Config describes one experiment: which model, how long, how seeded,
// and how many independent replicas to average.
type Config struct {
	Model       string
	Steps       int
	Seed        int64
	RecordEvery int
	Replicas    int
	Params      Params
}

// Experiment builds seeded runners from a registry and executes them.
// Each run owns a rand.Rand derived from the configured seed, so results
// are reproducible; replica k uses seed+k.
type Experiment struct {
	cfg      Config
	registry *Registry
}

func New(cfg Config, registry *Registry) *Experiment {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Experiment{cfg: cfg, registry: registry}
}

func (e *Experiment) buildRunner(seed int64) (*opinion.Runner, error) {
	rng := rand.New(rand.NewSource(seed))
	model, err := e.registry.GetModel(e.cfg.Model, e.cfg.Params, rng)
	if err != nil {
		return nil, err
	}

	r := opinion.NewRunner(model)
	for _, m := range e.registry.DefaultMetrics(e.cfg.Model) {
		r.AddMetric(m)
	}
	return r, nil
}

// Run executes the experiment. With Replicas > 1 the replicas run
// concurrently and the returned result is their element-wise mean.
func (e *Experiment) Run(ctx context.Context) (*opinion.Result, error) {
	cfg := opinion.Config{
		Steps:       e.cfg.Steps,
		Seed:        e.cfg.Seed,
		RecordEvery: e.cfg.RecordEvery,
	}

	if e.cfg.Replicas > 1 {
		ens := opinion.NewEnsemble(e.cfg.Replicas, e.cfg.Seed, e.buildRunner)
		results, err := ens.Run(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return opinion.MeanTraces(results), nil
	}

	r, err := e.buildRunner(e.cfg.Seed)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, cfg)
}
