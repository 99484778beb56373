package operands

import (
	"errors"
)

var (
	// The tactic cannot make progress on the given problem.  The solver moves
	// on to the next tactic.
	ErrNotApplicable = errors.New("tactic not applicable")

	// The problem does not satisfy the tactic's preconditions.  The solver
	// moves on to the next tactic.
	ErrPreconditionFailed = errors.New("tactic precondition failed")

	// The tactic emitted more actions than the fuel budget permits.
	ErrFuelExhausted = errors.New("fuel exhausted")
)

// A strategy for solving one operand placement problem.
type Tactic interface {
	Name() string

	// A cheap estimate used to order tactic attempts.  Lower is tried first.
	Cost(*SolverContext) int

	// Mutates the builder until it is valid.  Returns ErrNotApplicable or
	// ErrPreconditionFailed if the tactic cannot solve the problem, and
	// ErrFuelExhausted if the builder ran out of fuel.
	Apply(*SolutionBuilder) error
}

func isRetryable(err error) bool {
	return errors.Is(err, ErrNotApplicable) ||
		errors.Is(err, ErrPreconditionFailed)
}
