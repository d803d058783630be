package analysis

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/san-kum/opinionlab/internal/ising"
)

func TestFieldRamp(t *testing.T) {
	ramp := FieldRamp(-2, 2, 5)

	if len(ramp) != 10 {
		t.Fatalf("expected 10 values, got %d", len(ramp))
	}
	if ramp[0] != -2 || ramp[4] != 2 {
		t.Errorf("unexpected up-ramp endpoints: %f, %f", ramp[0], ramp[4])
	}
	if ramp[5] != 2 || ramp[9] != -2 {
		t.Errorf("unexpected down-ramp endpoints: %f, %f", ramp[5], ramp[9])
	}
}

func TestHysteresisLoopSaturation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	m, err := ising.New(1.0, 0.0, 200, 1.2, rng)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	points, err := HysteresisLoop(m, FieldRamp(-8, 8, 9))
	if err != nil {
		t.Fatalf("loop failed: %v", err)
	}

	if len(points) != 18 {
		t.Fatalf("expected 18 points, got %d", len(points))
	}

	// Strong fields saturate both branches.
	if points[0].MeanOpinion > -0.9 {
		t.Errorf("expected saturation near -1 at F=-8, got %f", points[0].MeanOpinion)
	}
	if points[8].MeanOpinion < 0.9 {
		t.Errorf("expected saturation near +1 at F=+8, got %f", points[8].MeanOpinion)
	}
	if points[17].MeanOpinion > -0.9 {
		t.Errorf("expected saturation near -1 back at F=-8, got %f", points[17].MeanOpinion)
	}

	for _, p := range points {
		if p.Sweeps < 1 {
			t.Errorf("each field value needs at least one sweep, got %d", p.Sweeps)
		}
		if p.MeanOpinion < -1 || p.MeanOpinion > 1 {
			t.Errorf("mean opinion out of bounds: %f", p.MeanOpinion)
		}
	}
}

func TestAvalancheSizes(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	m, err := ising.New(1.0, -3.0, 300, 1.2, rng)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	sizes, err := AvalancheSizes(m, 0.2, 20)
	if err != nil {
		t.Fatalf("avalanche trials failed: %v", err)
	}

	if len(sizes) != 20 {
		t.Fatalf("expected 20 sizes, got %d", len(sizes))
	}
	total := 0
	for _, s := range sizes {
		if s < 0 {
			t.Fatalf("negative avalanche size: %d", s)
		}
		total += s
	}
	// Ramping the field from -3 to +1 across the trials must flip a
	// substantial share of the population at some point.
	if total == 0 {
		t.Error("expected at least one flip across the ramp")
	}
}

func TestSizeHistogram(t *testing.T) {
	bins := SizeHistogram([]int{0, 1, 1, 5, 9, 10}, 5)

	if len(bins) != 3 {
		t.Fatalf("expected 3 bins, got %d", len(bins))
	}
	if bins[0] != 3 || bins[1] != 2 || bins[2] != 1 {
		t.Errorf("unexpected bins: %v", bins)
	}
}

func TestLoopToASCII(t *testing.T) {
	points := []HysteresisPoint{
		{Field: -1, MeanOpinion: -1},
		{Field: 0, MeanOpinion: 0},
		{Field: 1, MeanOpinion: 1},
	}

	out := LoopToASCII(points, 20, 10)
	if out == "" {
		t.Fatal("expected non-empty canvas")
	}
	if strings.Count(out, "•") != 3 {
		t.Errorf("expected 3 plotted dots, got %d", strings.Count(out, "•"))
	}
	if LoopToASCII(nil, 20, 10) != "" {
		t.Error("expected empty output for no points")
	}
}

func TestZSweep(t *testing.T) {
	rows, err := ZSweep(context.Background(), ZSweepConfig{
		Agents:   100,
		Accuracy: 0.6,
		Poll:     5,
		Steps:    3000,
		Seed:     1,
		ZMin:     0.1,
		ZMax:     0.9,
		ZSteps:   5,
	})
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}

	for _, row := range rows {
		if row.Simulated < 0 || row.Simulated > 1 {
			t.Errorf("z=%f: simulated accuracy out of bounds: %f", row.Informed, row.Simulated)
		}
		if row.HasMiddle && !(row.Lower < row.Middle && row.Middle < row.Upper) {
			t.Errorf("z=%f: unordered fixed points %+v", row.Informed, row)
		}
	}

	// With z=0.9 of accuracy-0.6 informed agents, followers end up on
	// the high branch.
	last := rows[len(rows)-1]
	if last.Simulated < 0.5 {
		t.Errorf("expected high-branch accuracy at z=0.9, got %f", last.Simulated)
	}
}

func TestZSweepValidation(t *testing.T) {
	if _, err := ZSweep(context.Background(), ZSweepConfig{ZSteps: 1, Steps: 10}); err == nil {
		t.Error("expected error for too few z steps")
	}
	if _, err := ZSweep(context.Background(), ZSweepConfig{ZSteps: 3, Steps: 0}); err == nil {
		t.Error("expected error for non-positive steps")
	}
}

func TestTailMean(t *testing.T) {
	data := []float64{0, 0, 10, 20}

	if got := tailMean(data, 0.5); math.Abs(got-15) > 1e-12 {
		t.Errorf("expected 15, got %f", got)
	}
	if got := tailMean(data, 1.0); math.Abs(got-7.5) > 1e-12 {
		t.Errorf("expected 7.5, got %f", got)
	}
	if got := tailMean(nil, 0.5); got != 0 {
		t.Errorf("expected 0 for empty data, got %f", got)
	}
}
