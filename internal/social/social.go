// Package social implements the informed/follower social-learning model.
//
// A fixed block of informed agents holds opinions drawn once with accuracy
// p; the remaining followers are updated one at a time by polling a random
// group of m agents (with replacement, self-inclusion allowed) and adopting
// the sign of the poll mean.
package social

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/opinionlab/internal/opinion"
)

// Model is the social-learning simulator. It is not safe for concurrent
// use; each instance owns its population and random source exclusively.
type Model struct {
	agents   int
	informed int
	poll     int
	fraction float64
	accuracy float64
	spins    opinion.Spins
	rng      *rand.Rand
}

// New validates parameters and draws the initial population: informed
// agents at indices [0, informed) are +1 with probability accuracy,
// followers are fair ±1 draws.
func New(agents int, fraction, accuracy float64, poll int, rng *rand.Rand) (*Model, error) {
	if agents < 1 {
		return nil, fmt.Errorf("%w: agents=%d", opinion.ErrPopulationSize, agents)
	}
	if fraction < 0 || fraction > 1 {
		return nil, fmt.Errorf("%w: informed fraction=%f", opinion.ErrFractionRange, fraction)
	}
	if accuracy <= 0 || accuracy >= 1 {
		return nil, fmt.Errorf("%w: accuracy=%f", opinion.ErrProbabilityRange, accuracy)
	}
	if poll < 1 {
		return nil, fmt.Errorf("%w: poll=%d", opinion.ErrPollSize, poll)
	}

	informed := int(fraction * float64(agents))
	if informed > agents {
		informed = agents
	}

	m := &Model{
		agents:   agents,
		informed: informed,
		poll:     poll,
		fraction: fraction,
		accuracy: accuracy,
		spins:    make(opinion.Spins, agents),
		rng:      rng,
	}

	for i := 0; i < informed; i++ {
		if rng.Float64() < accuracy {
			m.spins[i] = opinion.Up
		} else {
			m.spins[i] = opinion.Down
		}
	}
	for i := informed; i < agents; i++ {
		if rng.Float64() < 0.5 {
			m.spins[i] = opinion.Up
		} else {
			m.spins[i] = opinion.Down
		}
	}

	return m, nil
}

func (m *Model) Name() string        { return "social" }
func (m *Model) Agents() int         { return m.agents }
func (m *Model) InformedCount() int  { return m.informed }
func (m *Model) FollowerCount() int  { return m.agents - m.informed }
func (m *Model) Spins() opinion.Spins { return m.spins }

// FollowerAccuracy returns the fraction of followers holding +1.
func (m *Model) FollowerAccuracy() float64 {
	return m.spins.PositiveFraction(m.informed, m.agents)
}

// OverallAccuracy returns the fraction of all agents holding +1.
func (m *Model) OverallAccuracy() float64 {
	return m.spins.PositiveFraction(0, m.agents)
}

// InformedAccuracy returns the fraction of informed agents holding +1.
func (m *Model) InformedAccuracy() float64 {
	return m.spins.PositiveFraction(0, m.informed)
}

// Step updates one follower: a uniform follower polls poll indices drawn
// with replacement from the whole population and adopts the sign of the
// poll mean. A poll mean of exactly zero keeps the current opinion, so
// every entry stays strictly ±1. Informed agents are never mutated.
func (m *Model) Step() error {
	followers := m.agents - m.informed
	if followers == 0 {
		return opinion.ErrNoFollowers
	}

	idx := m.informed + m.rng.Intn(followers)

	sum := 0
	for k := 0; k < m.poll; k++ {
		sum += int(m.spins[m.rng.Intn(m.agents)])
	}

	switch {
	case sum > 0:
		m.spins[idx] = opinion.Up
	case sum < 0:
		m.spins[idx] = opinion.Down
	}

	return nil
}

// Run executes steps sequential updates, recording follower and overall
// accuracy before each step. Both traces have length exactly steps.
func (m *Model) Run(steps int) ([]float64, []float64, error) {
	if steps <= 0 {
		return nil, nil, fmt.Errorf("%w: got %d", opinion.ErrStepsRange, steps)
	}

	follower := make([]float64, steps)
	overall := make([]float64, steps)

	for i := 0; i < steps; i++ {
		follower[i] = m.FollowerAccuracy()
		overall[i] = m.OverallAccuracy()
		if err := m.Step(); err != nil {
			return follower[:i+1], overall[:i+1], err
		}
	}

	return follower, overall, nil
}

func (m *Model) Observe() []float64 {
	return []float64{m.FollowerAccuracy(), m.OverallAccuracy()}
}

func (m *Model) ObservableNames() []string {
	return []string{"follower_accuracy", "overall_accuracy"}
}

func (m *Model) GetParams() map[string]float64 {
	return map[string]float64{"poll": float64(m.poll)}
}

func (m *Model) SetParam(name string, value float64) error {
	switch name {
	case "poll":
		if int(value) < 1 {
			return fmt.Errorf("%w: poll=%f", opinion.ErrPollSize, value)
		}
		m.poll = int(value)
	default:
		return fmt.Errorf("%w: %s", opinion.ErrUnknownParam, name)
	}
	return nil
}
