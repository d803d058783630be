// Package metrics provides Metric implementations consumed by the runner.
package metrics

import "github.com/san-kum/opinionlab/internal/opinion"

// MeanObservable tracks the time-average of one observable column.
type MeanObservable struct {
	name    string
	index   int
	sum     float64
	samples int
}

func NewMeanObservable(name string, index int) *MeanObservable {
	return &MeanObservable{name: name, index: index}
}

func (m *MeanObservable) Name() string { return m.name }

func (m *MeanObservable) Observe(obs []float64, step int) {
	if m.index >= len(obs) {
		return
	}
	m.sum += obs[m.index]
	m.samples++
}

func (m *MeanObservable) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanObservable) Reset() {
	m.sum = 0
	m.samples = 0
}

// LastObservable tracks the most recent value of one observable column,
// e.g. the final magnetization of a relaxation run.
type LastObservable struct {
	name  string
	index int
	last  float64
}

func NewLastObservable(name string, index int) *LastObservable {
	return &LastObservable{name: name, index: index}
}

func (l *LastObservable) Name() string { return l.name }

func (l *LastObservable) Observe(obs []float64, step int) {
	if l.index < len(obs) {
		l.last = obs[l.index]
	}
}

func (l *LastObservable) Value() float64 { return l.last }
func (l *LastObservable) Reset()         { l.last = 0 }

// Total accumulates one observable column, e.g. total flips across sweeps.
type Total struct {
	name  string
	index int
	total float64
}

func NewTotal(name string, index int) *Total {
	return &Total{name: name, index: index}
}

func (t *Total) Name() string { return t.name }

func (t *Total) Observe(obs []float64, step int) {
	if t.index < len(obs) {
		t.total += obs[t.index]
	}
}

func (t *Total) Value() float64 { return t.total }
func (t *Total) Reset()         { t.total = 0 }

var _ opinion.Metric = (*MeanObservable)(nil)
var _ opinion.Metric = (*LastObservable)(nil)
var _ opinion.Metric = (*Total)(nil)
