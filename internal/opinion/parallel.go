package opinion

import (
	"context"
	"sync"
)

// Ensemble runs independent replicas of the same experiment with
// consecutive seeds. Each replica gets its own model and runner, so the
// replicas never share mutable state.
type Ensemble struct {
	build     func(seed int64) (*Runner, error)
	replicas  int
	seedStart int64
}

func NewEnsemble(replicas int, seedStart int64, build func(seed int64) (*Runner, error)) *Ensemble {
	return &Ensemble{build: build, replicas: replicas, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.replicas)
	errs := make([]error, e.replicas)

	var wg sync.WaitGroup
	for i := 0; i < e.replicas; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			seed := e.seedStart + int64(idx)
			r, err := e.build(seed)
			if err != nil {
				errs[idx] = err
				return
			}

			cfgCopy := cfg
			cfgCopy.Seed = seed

			results[idx], errs[idx] = r.Run(ctx, cfgCopy)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

// MeanTraces averages traces and metrics element-wise across replica
// results. Traces are truncated to the shortest replica.
func MeanTraces(results []*Result) *Result {
	if len(results) == 0 {
		return nil
	}

	minLen := len(results[0].Traces)
	for _, r := range results[1:] {
		if len(r.Traces) < minLen {
			minLen = len(r.Traces)
		}
	}

	mean := &Result{
		Names:      append([]string(nil), results[0].Names...),
		Ticks:      append([]int(nil), results[0].Ticks[:minLen]...),
		Traces:     make([][]float64, minLen),
		StepsTaken: results[0].StepsTaken,
		Metrics:    make(map[string]float64),
	}

	for i := 0; i < minLen; i++ {
		row := make([]float64, len(results[0].Traces[i]))
		for _, r := range results {
			for j, v := range r.Traces[i] {
				if j < len(row) {
					row[j] += v
				}
			}
		}
		for j := range row {
			row[j] /= float64(len(results))
		}
		mean.Traces[i] = row
	}

	for _, r := range results {
		for name, val := range r.Metrics {
			mean.Metrics[name] += val
		}
	}
	for name := range mean.Metrics {
		mean.Metrics[name] /= float64(len(results))
	}

	return mean
}
