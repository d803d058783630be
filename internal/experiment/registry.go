package experiment

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/san-kum/opinionlab/internal/ising"
	"github.com/san-kum/opinionlab/internal/metrics"
	"github.com/san-kum/opinionlab/internal/opinion"
	"github.com/san-kum/opinionlab/internal/social"
)

// Params is the flat parameter bag models are constructed from.
type Params map[string]float64

func (p Params) get(name string, def float64) float64 {
	if v, ok := p[name]; ok {
		return v
	}
	return def
}

// Registry maps model names to constructors.
type Registry struct {
	models map[string]func(Params, *rand.Rand) (opinion.Model, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		models: make(map[string]func(Params, *rand.Rand) (opinion.Model, error)),
	}

	r.models["social"] = func(p Params, rng *rand.Rand) (opinion.Model, error) {
		return social.New(
			int(p.get("agents", 300)),
			p.get("informed", 0.3),
			p.get("accuracy", 0.52),
			int(p.get("poll", 12)),
			rng,
		)
	}
	r.models["rfim"] = func(p Params, rng *rand.Rand) (opinion.Model, error) {
		m, err := ising.New(
			p.get("coupling", 1.0),
			p.get("field", 0.0),
			int(p.get("agents", 500)),
			p.get("scale", 1.2),
			rng,
		)
		if err != nil {
			return nil, err
		}
		if limit := int(p.get("max_sweeps", 0)); limit > 0 {
			m.MaxSweeps = limit
		}
		return m, nil
	}

	return r
}

func (r *Registry) GetModel(name string, params Params, rng *rand.Rand) (opinion.Model, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(params, rng)
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns the aggregate statistics reported per model.
func (r *Registry) DefaultMetrics(model string) []opinion.Metric {
	switch model {
	case "rfim":
		return []opinion.Metric{
			metrics.NewLastObservable("magnetization", 0),
			metrics.NewTotal("total_flips", 1),
		}
	default:
		return []opinion.Metric{
			metrics.NewMeanObservable("mean_follower_accuracy", 0),
			metrics.NewLastObservable("final_follower_accuracy", 0),
			metrics.NewMeanObservable("mean_overall_accuracy", 1),
		}
	}
}
