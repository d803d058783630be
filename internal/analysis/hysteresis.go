package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/opinionlab/internal/ising"
)

// HysteresisPoint records the relaxed state at one field value.
type HysteresisPoint struct {
	Field       float64
	MeanOpinion float64
	Flips       int
	Sweeps      int
}

// FieldRamp builds an up-then-down ramp: steps values from min to max
// followed by steps values back down, reusing the endpoints.
func FieldRamp(min, max float64, steps int) []float64 {
	if steps < 2 {
		steps = 2
	}
	ramp := make([]float64, 0, 2*steps)
	delta := (max - min) / float64(steps-1)

	for i := 0; i < steps; i++ {
		ramp = append(ramp, min+float64(i)*delta)
	}
	for i := steps - 1; i >= 0; i-- {
		ramp = append(ramp, min+float64(i)*delta)
	}
	return ramp
}

// HysteresisLoop sets each field value in turn on the same model,
// relaxes, and records the equilibrium. Opinion state carries over
// between field values, which is what produces the hysteresis branches.
// The total flips across the relaxation at each field value is the
// cumulative avalanche triggered by that field change.
func HysteresisLoop(m *ising.Model, fields []float64) ([]HysteresisPoint, error) {
	points := make([]HysteresisPoint, 0, len(fields))

	for _, f := range fields {
		m.SetField(f)

		flips := 0
		sweeps := 0
		for {
			n := m.Sweep()
			sweeps++
			flips += n
			if n == 0 {
				break
			}
			if sweeps >= m.MaxSweeps && m.MaxSweeps > 0 {
				return points, fmt.Errorf("relaxation at F=%f did not settle in %d sweeps", f, sweeps)
			}
		}

		points = append(points, HysteresisPoint{
			Field:       f,
			MeanOpinion: m.MeanOpinion(),
			Flips:       flips,
			Sweeps:      sweeps,
		})
	}

	return points, nil
}

// LoopToASCII renders mean opinion against field as a dot canvas.
func LoopToASCII(points []HysteresisPoint, width, height int) string {
	if len(points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	fMin, fMax := points[0].Field, points[0].Field
	for _, p := range points {
		if p.Field < fMin {
			fMin = p.Field
		}
		if p.Field > fMax {
			fMax = p.Field
		}
	}
	if fMax == fMin {
		fMax = fMin + 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for _, p := range points {
		col := int((p.Field - fMin) / (fMax - fMin) * float64(width-1))
		// Mean opinion spans [-1, 1].
		row := height - 1 - int((p.MeanOpinion+1)/2*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	var b strings.Builder
	for _, row := range canvas {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}
