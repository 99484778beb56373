package operands

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/pattyshack/gull/architecture"
)

var (
	ErrNoSolution = errors.New("no tactic produced a solution")

	ErrUnsupportedStackAccess = errors.New(
		"solution requires unsupported stack access")
)

// A terminal scheduling failure.  Internal failures indicate a bug in a
// tactic (e.g., a solution that addresses felts outside of the window) and
// are distinct from ordinary scheduling failures.
type SchedulingError struct {
	Internal bool

	Err error
}

func (err *SchedulingError) Error() string {
	if err.Internal {
		return "internal operand scheduling error: " + err.Err.Error()
	}
	return "operand scheduling failed: " + err.Err.Error()
}

func (err *SchedulingError) Unwrap() error {
	return err.Err
}

// Chooses the actions which place the expected operands on top of the stack.
// A solver is created for each operation and discarded afterward.
type OperandMovementConstraintSolver struct {
	context *SolverContext
	logger  *zap.Logger

	// In registration order.  Solve tries them in ascending cost order.
	tactics []Tactic
}

func New(
	expected []Value,
	constraints []Constraint,
	stack *Stack,
) (
	*OperandMovementConstraintSolver,
	error,
) {
	return NewWithOptions(expected, constraints, stack, DefaultSolverOptions())
}

// Returns ErrAlreadySolved if no actions are required.
func NewWithOptions(
	expected []Value,
	constraints []Constraint,
	stack *Stack,
	options SolverOptions,
) (
	*OperandMovementConstraintSolver,
	error,
) {
	context, err := NewSolverContext(expected, constraints, stack, options)
	if err != nil {
		return nil, err
	}

	return &OperandMovementConstraintSolver{
		context: context,
		logger:  context.logger,
		tactics: registeredTactics(context),
	}, nil
}

func registeredTactics(context *SolverContext) []Tactic {
	tactics := []Tactic{}
	if context.Arity() == 2 {
		tactics = append(tactics, TwoArgs{})
	}

	tactics = append(tactics, Linear{})

	if context.Arity() > 0 && context.copies.Len() == context.Arity() {
		tactics = append(tactics, CopyAll{})
	}

	return append(tactics, LinearStackWindow{}, PlaceAll{})
}

func (solver *OperandMovementConstraintSolver) Context() *SolverContext {
	return solver.context
}

// Tries every registered tactic in ascending cost order, and returns the
// first valid, addressable solution.
//
// Fuel exhaustion is a terminal failure.  If no tactic solves the problem,
// the returned *SchedulingError wraps ErrNoSolution, or
// ErrUnsupportedStackAccess (marked internal) if some tactic produced a
// solution which addresses felts outside of the window.
func (solver *OperandMovementConstraintSolver) Solve() ([]Action, error) {
	type candidate struct {
		tactic Tactic
		cost   int
	}

	candidates := make([]candidate, 0, len(solver.tactics))
	for _, tactic := range solver.tactics {
		candidates = append(
			candidates,
			candidate{
				tactic: tactic,
				cost:   tactic.Cost(solver.context),
			})
	}

	sort.SliceStable(
		candidates,
		func(i int, j int) bool { return candidates[i].cost < candidates[j].cost })

	var unsupported Tactic
	for _, candidate := range candidates {
		tactic := candidate.tactic
		logger := solver.logger.With(
			zap.String("tactic", tactic.Name()),
			zap.Int("cost", candidate.cost))

		actions, ok, err := solver.SolveWithTactic(tactic)
		if err != nil {
			if isRetryable(err) {
				logger.Debug("tactic not applicable", zap.Error(err))
				continue
			}

			if errors.Is(err, ErrFuelExhausted) {
				return nil, &SchedulingError{
					Err: fmt.Errorf("%w (tactic %s)", err, tactic.Name()),
				}
			}

			return nil, err
		}

		if !ok {
			logger.Debug("tactic produced a partial solution")
			continue
		}

		if SolutionRequiresUnsupportedStackAccess(actions, solver.context.stack) {
			if solver.context.options.Strict {
				panic(fmt.Sprintf(
					"tactic %s produced a solution requiring unsupported stack "+
						"access: %v (stack: %s, expected: %v)",
					tactic.Name(),
					actions,
					solver.context.stack,
					solver.context.expected))
			}

			logger.Warn(
				"tactic produced a solution requiring unsupported stack access",
				zap.Stringer("stack", solver.context.stack),
				zap.Stringers("expected", solver.context.expected),
				zap.Stringers("actions", actions))
			if unsupported == nil {
				unsupported = tactic
			}
			continue
		}

		logger.Debug(
			"found solution",
			zap.Stringers("actions", actions))
		return actions, nil
	}

	if unsupported != nil {
		return nil, &SchedulingError{
			Internal: true,
			Err: fmt.Errorf(
				"%w (tactic %s)",
				ErrUnsupportedStackAccess,
				unsupported.Name()),
		}
	}

	return nil, &SchedulingError{
		Err: fmt.Errorf(
			"%w (stack: %s, expected: %v)",
			ErrNoSolution,
			solver.context.stack,
			solver.context.expected),
	}
}

// Runs exactly the given tactic with a fresh builder.  ok is false if the
// tactic finished without reaching a valid state.  The result is not checked
// against the addressable window.
func (solver *OperandMovementConstraintSolver) SolveWithTactic(
	tactic Tactic,
) (
	[]Action,
	bool,
	error,
) {
	builder := NewSolutionBuilder(solver.context)

	err := tactic.Apply(builder)
	if err != nil {
		return nil, false, err
	}

	if builder.Exhausted() {
		return nil, false, ErrFuelExhausted
	}

	if !builder.IsValid() {
		return nil, false, nil
	}

	return builder.Take(), true, nil
}

// Replays actions against stack, and returns true if any action addresses an
// entry whose felts extend beyond the addressable window (or an entry that
// does not exist).
func SolutionRequiresUnsupportedStackAccess(
	actions []Action,
	stack *Stack,
) bool {
	pending := stack.Copy()
	for _, action := range actions {
		switch action.Kind {
		case Drop:
			if pending.IsEmpty() {
				return true
			}
		default:
			pos := int(action.Index)
			if pos >= pending.Len() {
				return true
			}
			if pending.FeltDepth(pos) > architecture.StackWindowFelts {
				return true
			}
		}

		pending.Apply(action)
	}

	return false
}
