package opinion

import (
	"context"
	"fmt"
)

// Runner drives a model through sequential steps, recording observables
// before each step is applied.
type Runner struct {
	model     Model
	metrics   []Metric
	observers []Observer
}

func NewRunner(m Model) *Runner {
	return &Runner{
		model:     m,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

// Model returns the underlying model for parameter adjustment.
func (r *Runner) Model() Model { return r.model }

func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	recordEvery := cfg.RecordEvery
	if recordEvery <= 0 {
		recordEvery = 1
	}

	result := &Result{
		Names:   r.model.ObservableNames(),
		Ticks:   make([]int, 0, cfg.Steps/recordEvery+1),
		Traces:  make([][]float64, 0, cfg.Steps/recordEvery+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	conv, canConverge := r.model.(Converger)

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		obs := r.model.Observe()

		if i%recordEvery == 0 {
			result.Ticks = append(result.Ticks, i)
			result.Traces = append(result.Traces, obs)
		}
		for _, m := range r.metrics {
			m.Observe(obs, i)
		}
		for _, o := range r.observers {
			o.OnStep(obs, i)
		}

		if canConverge && conv.Converged() {
			result.Converged = true
			break
		}

		if err := r.model.Step(); err != nil {
			return result, &RunError{Step: i, Wrapped: err}
		}
		result.StepsTaken++
	}

	if canConverge && !result.Converged {
		result.Converged = conv.Converged()
	}

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func validateConfig(cfg Config) error {
	if cfg.Steps <= 0 {
		return fmt.Errorf("%w: got %d", ErrStepsRange, cfg.Steps)
	}
	return nil
}
