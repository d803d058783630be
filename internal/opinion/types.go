package opinion

// Opinion values. Every entry of a population is exactly one of these.
const (
	Up   int8 = 1
	Down int8 = -1
)

// Spins is a fixed-length population of ±1 opinions.
type Spins []int8

func (s Spins) Clone() Spins {
	c := make(Spins, len(s))
	copy(c, s)
	return c
}

// Mean returns the arithmetic mean opinion, in [-1, 1].
func (s Spins) Mean() float64 {
	if len(s) == 0 {
		return 0
	}
	sum := 0
	for _, v := range s {
		sum += int(v)
	}
	return float64(sum) / float64(len(s))
}

// Sum returns the total signed opinion.
func (s Spins) Sum() int {
	sum := 0
	for _, v := range s {
		sum += int(v)
	}
	return sum
}

// PositiveFraction returns the fraction of +1 entries in the half-open
// index range [lo, hi). An empty range yields 0.
func (s Spins) PositiveFraction(lo, hi int) float64 {
	if lo < 0 {
		lo = 0
	}
	if hi > len(s) {
		hi = len(s)
	}
	if hi <= lo {
		return 0
	}
	count := 0
	for i := lo; i < hi; i++ {
		if s[i] == Up {
			count++
		}
	}
	return float64(count) / float64(hi-lo)
}

// Valid reports whether every entry is exactly +1 or -1.
func (s Spins) Valid() bool {
	for _, v := range s {
		if v != Up && v != Down {
			return false
		}
	}
	return true
}

// Model is a discrete opinion-dynamics system advanced one update unit
// at a time (a single follower poll, or one full relaxation sweep).
type Model interface {
	Name() string
	Agents() int
	Step() error
	Observe() []float64
	ObservableNames() []string
}

// Converger is implemented by models that can reach a local equilibrium;
// the runner stops early once Converged reports true.
type Converger interface {
	Converged() bool
}

// Configurable is implemented by models with runtime-adjustable parameters.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Metric accumulates an aggregate statistic over a run.
type Metric interface {
	Name() string
	Observe(obs []float64, step int)
	Value() float64
	Reset()
}

// Observer receives every recorded observation during a run.
type Observer interface {
	OnStep(obs []float64, step int)
}

type Config struct {
	Steps       int
	Seed        int64
	RecordEvery int
}

func DefaultConfig() Config {
	return Config{
		Steps:       10000,
		RecordEvery: 1,
	}
}

// Result holds the recorded traces and aggregate metrics of one run.
// Traces[k] is the observation recorded before step Ticks[k] was applied.
type Result struct {
	Names      []string
	Ticks      []int
	Traces     [][]float64
	StepsTaken int
	Converged  bool
	Metrics    map[string]float64
}

// Trace extracts the column for a named observable, or nil if unknown.
func (r *Result) Trace(name string) []float64 {
	col := -1
	for i, n := range r.Names {
		if n == name {
			col = i
			break
		}
	}
	if col < 0 {
		return nil
	}
	data := make([]float64, len(r.Traces))
	for i, row := range r.Traces {
		if col < len(row) {
			data[i] = row[col]
		}
	}
	return data
}
