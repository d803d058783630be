// Package ising implements a mean-field random-field Ising opinion model.
//
// Each agent carries a fixed idiosyncratic bias drawn from a Laplace
// distribution and couples to the mean opinion of everyone else. Agents
// flip whenever their opinion opposes their local field; a relaxation pass
// sweeps the population in index order until no flip occurs. The external
// field is mutable between relaxations, which is what hysteresis and
// avalanche experiments exploit.
package ising

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/opinionlab/internal/opinion"
)

// DefaultMaxSweeps caps Relax. The flip rule is expected to converge in
// this parameter regime, but a capped loop turns a pathological coupling
// into an error instead of a hang.
const DefaultMaxSweeps = 10000

// Model is the random-field Ising simulator. Not safe for concurrent use.
type Model struct {
	coupling float64
	field    float64
	scale    float64
	agents   int
	spins    opinion.Spins
	bias     []float64
	rng      *rand.Rand

	// MaxSweeps bounds a single Relax call.
	MaxSweeps int

	lastFlips int
}

// New draws a fair ±1 population and one Laplace(0, scale) bias per agent.
// Biases are immutable afterward. At least two agents are required for the
// self-excluded mean to be defined.
func New(coupling, field float64, agents int, scale float64, rng *rand.Rand) (*Model, error) {
	if agents < 2 {
		return nil, fmt.Errorf("%w: agents=%d (need at least 2)", opinion.ErrPopulationSize, agents)
	}
	if scale <= 0 {
		return nil, fmt.Errorf("%w: scale=%f", opinion.ErrScaleRange, scale)
	}

	m := &Model{
		coupling:  coupling,
		field:     field,
		scale:     scale,
		agents:    agents,
		spins:     make(opinion.Spins, agents),
		bias:      make([]float64, agents),
		rng:       rng,
		MaxSweeps: DefaultMaxSweeps,
		lastFlips: -1,
	}

	for i := 0; i < agents; i++ {
		if rng.Float64() < 0.5 {
			m.spins[i] = opinion.Up
		} else {
			m.spins[i] = opinion.Down
		}
		m.bias[i] = laplace(rng, scale)
	}

	return m, nil
}

// laplace samples Laplace(0, scale) by inverse CDF.
func laplace(rng *rand.Rand, scale float64) float64 {
	v := rng.Float64()
	for v == 0 {
		v = rng.Float64()
	}
	if v < 0.5 {
		return scale * math.Log(2*v)
	}
	return -scale * math.Log(2*(1-v))
}

func (m *Model) Name() string         { return "rfim" }
func (m *Model) Agents() int          { return m.agents }
func (m *Model) Spins() opinion.Spins { return m.spins }
func (m *Model) Biases() []float64    { return m.bias }
func (m *Model) Field() float64       { return m.field }
func (m *Model) Coupling() float64    { return m.coupling }

// SetField changes the external field, preserving accumulated opinion
// state. Invalidates convergence: the next Sweep decides it again.
func (m *Model) SetField(f float64) {
	m.field = f
	m.lastFlips = -1
}

// LocalField returns bias[i] + F + J * mean of all other opinions.
func (m *Model) LocalField(i int) float64 {
	others := float64(m.spins.Sum()-int(m.spins[i])) / float64(m.agents-1)
	return m.bias[i] + m.field + m.coupling*others
}

// MeanOpinion returns the population mean, in [-1, 1].
func (m *Model) MeanOpinion() float64 {
	return m.spins.Mean()
}

// TryFlip flips agent i when its opinion strictly opposes the sign of its
// local field and reports whether it flipped. A local field of exactly
// zero never triggers a flip, so the update rule is deterministic and the
// population stays strictly ±1.
func (m *Model) TryFlip(i int) bool {
	f := m.LocalField(i)
	if (f > 0 && m.spins[i] == opinion.Down) || (f < 0 && m.spins[i] == opinion.Up) {
		m.spins[i] = -m.spins[i]
		return true
	}
	return false
}

// Sweep attempts one flip per agent in index order, each attempt seeing
// the in-progress state of earlier flips, and returns the flip count.
// A Sweep after a perturbation of an equilibrated system is the avalanche
// size for that perturbation.
func (m *Model) Sweep() int {
	flips := 0
	for i := 0; i < m.agents; i++ {
		if m.TryFlip(i) {
			flips++
		}
	}
	m.lastFlips = flips
	return flips
}

// Relax sweeps until a sweep flips nothing and returns the number of
// sweeps executed. Exceeding MaxSweeps yields ErrNoConvergence with the
// state left as-is.
func (m *Model) Relax() (int, error) {
	limit := m.MaxSweeps
	if limit <= 0 {
		limit = DefaultMaxSweeps
	}

	for n := 1; n <= limit; n++ {
		if m.Sweep() == 0 {
			return n, nil
		}
	}
	return limit, fmt.Errorf("%w: %d sweeps at F=%f", opinion.ErrNoConvergence, limit, m.field)
}

// Step runs one relaxation sweep; the runner stops once a sweep flips
// nothing (Converged).
func (m *Model) Step() error {
	m.Sweep()
	return nil
}

func (m *Model) Converged() bool { return m.lastFlips == 0 }

func (m *Model) Observe() []float64 {
	flips := 0.0
	if m.lastFlips > 0 {
		flips = float64(m.lastFlips)
	}
	return []float64{m.MeanOpinion(), flips}
}

func (m *Model) ObservableNames() []string {
	return []string{"mean_opinion", "flips"}
}

func (m *Model) GetParams() map[string]float64 {
	return map[string]float64{"coupling": m.coupling, "field": m.field}
}

func (m *Model) SetParam(name string, value float64) error {
	switch name {
	case "coupling":
		m.coupling = value
		m.lastFlips = -1
	case "field":
		m.SetField(value)
	default:
		return fmt.Errorf("%w: %s", opinion.ErrUnknownParam, name)
	}
	return nil
}
