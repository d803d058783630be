package analysis

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/san-kum/opinionlab/internal/meanfield"
	"github.com/san-kum/opinionlab/internal/social"
)

// ZSweepConfig configures an informed-fraction sweep. The analytic
// overlay parameters default to the simulation parameters but are
// independently configurable.
type ZSweepConfig struct {
	Agents   int
	Accuracy float64
	Poll     int
	Steps    int
	Seed     int64

	ZMin, ZMax float64
	ZSteps     int

	// Mean-field overlay; zero values fall back to the simulation's
	// Accuracy and Poll.
	AnalyticAccuracy float64
	AnalyticPoll     int
	Iterations       int

	// Trailing fraction of the trace averaged into the long-run value.
	// Defaults to 0.5.
	TailFraction float64
}

// SweepRow pairs the simulated long-run follower accuracy at one informed
// fraction with the analytic fixed points of the self-consistency map.
type SweepRow struct {
	Informed  float64
	Simulated float64
	Lower     float64
	Middle    float64
	Upper     float64
	HasMiddle bool
}

// ZSweep runs one social-learning simulation per informed fraction and
// computes the mean-field fixed points alongside. A missing interior
// fixed point (no bracket) is reported per row, not as a sweep failure.
func ZSweep(ctx context.Context, cfg ZSweepConfig) ([]SweepRow, error) {
	if cfg.ZSteps < 2 {
		return nil, fmt.Errorf("z steps must be at least 2, got %d", cfg.ZSteps)
	}
	if cfg.Steps <= 0 {
		return nil, fmt.Errorf("steps must be positive, got %d", cfg.Steps)
	}

	ap := cfg.AnalyticAccuracy
	if ap == 0 {
		ap = cfg.Accuracy
	}
	am := cfg.AnalyticPoll
	if am == 0 {
		am = cfg.Poll
	}
	tail := cfg.TailFraction
	if tail <= 0 || tail > 1 {
		tail = 0.5
	}

	rows := make([]SweepRow, 0, cfg.ZSteps)
	delta := (cfg.ZMax - cfg.ZMin) / float64(cfg.ZSteps-1)

	for i := 0; i < cfg.ZSteps; i++ {
		select {
		case <-ctx.Done():
			return rows, ctx.Err()
		default:
		}

		z := cfg.ZMin + float64(i)*delta

		rng := rand.New(rand.NewSource(cfg.Seed + int64(i)))
		m, err := social.New(cfg.Agents, z, cfg.Accuracy, cfg.Poll, rng)
		if err != nil {
			return rows, err
		}

		follower, _, err := m.Run(cfg.Steps)
		if err != nil {
			return rows, err
		}

		row := SweepRow{Informed: z, Simulated: tailMean(follower, tail)}

		fp, err := meanfield.FindFixedPoints(z, ap, am, cfg.Iterations)
		switch {
		case err == nil:
			row.Lower, row.Middle, row.Upper = fp.Lower, fp.Middle, fp.Upper
			row.HasMiddle = true
		case errors.Is(err, meanfield.ErrNoBracket):
			row.Lower, row.Upper = fp.Lower, fp.Upper
		default:
			return rows, err
		}

		rows = append(rows, row)
	}

	return rows, nil
}

func tailMean(data []float64, fraction float64) float64 {
	if len(data) == 0 {
		return 0
	}
	start := int(float64(len(data)) * (1 - fraction))
	if start >= len(data) {
		start = len(data) - 1
	}
	sum := 0.0
	for _, v := range data[start:] {
		sum += v
	}
	return sum / float64(len(data)-start)
}
