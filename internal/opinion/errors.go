package opinion

import "errors"

// Domain errors for simulation operations.
var (
	// ErrPopulationSize indicates a population too small for the model.
	ErrPopulationSize = errors.New("opinion: population size out of valid range")

	// ErrFractionRange indicates an informed fraction outside [0, 1].
	ErrFractionRange = errors.New("opinion: fraction outside [0, 1]")

	// ErrProbabilityRange indicates a probability outside (0, 1).
	ErrProbabilityRange = errors.New("opinion: probability outside (0, 1)")

	// ErrPollSize indicates a non-positive poll group size.
	ErrPollSize = errors.New("opinion: poll size must be positive")

	// ErrScaleRange indicates a non-positive distribution scale.
	ErrScaleRange = errors.New("opinion: scale must be positive")

	// ErrStepsRange indicates a non-positive step count in a run config.
	ErrStepsRange = errors.New("opinion: steps must be positive")

	// ErrNoFollowers indicates a step was attempted with no follower agents.
	ErrNoFollowers = errors.New("opinion: no follower agents to update")

	// ErrNoConvergence indicates relaxation hit its sweep cap before
	// reaching a local equilibrium.
	ErrNoConvergence = errors.New("opinion: relaxation did not converge within sweep cap")

	// ErrUnknownParam indicates a SetParam name the model does not expose.
	ErrUnknownParam = errors.New("opinion: unknown parameter")
)

// RunError wraps an error with run context.
type RunError struct {
	Step    int
	Wrapped error
}

func (e *RunError) Error() string {
	return e.Wrapped.Error()
}

func (e *RunError) Unwrap() error {
	return e.Wrapped
}
