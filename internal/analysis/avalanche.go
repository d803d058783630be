package analysis

import "github.com/san-kum/opinionlab/internal/ising"

// AvalancheSizes relaxes the model, then ramps the field by dF per trial
// and records the flip count of the single sweep that follows each
// perturbation (the avalanche size). The model is re-relaxed between
// trials so every perturbation hits an equilibrium state.
func AvalancheSizes(m *ising.Model, dF float64, trials int) ([]int, error) {
	if _, err := m.Relax(); err != nil {
		return nil, err
	}

	sizes := make([]int, 0, trials)
	for i := 0; i < trials; i++ {
		m.SetField(m.Field() + dF)
		sizes = append(sizes, m.Sweep())
		if _, err := m.Relax(); err != nil {
			return sizes, err
		}
	}
	return sizes, nil
}

// SizeHistogram counts avalanche sizes into bins of the given width.
// Bin k covers sizes [k*binWidth, (k+1)*binWidth).
func SizeHistogram(sizes []int, binWidth int) []int {
	if binWidth < 1 {
		binWidth = 1
	}

	maxSize := 0
	for _, s := range sizes {
		if s > maxSize {
			maxSize = s
		}
	}

	bins := make([]int, maxSize/binWidth+1)
	for _, s := range sizes {
		bins[s/binWidth]++
	}
	return bins
}
