package operands

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
)

const (
	DefaultFuel = 64
)

var (
	// Returned by NewSolverContext when the operands are already in place and
	// no copies are required.  This is not a failure; callers should treat it
	// as an empty solution.
	ErrAlreadySolved = errors.New("operands are already in place")

	ErrInvalidProblem = errors.New("invalid operand scheduling problem")
)

type Constraint string

const (
	// The operand is consumed destructively.  The stack entry itself must be
	// moved into place.
	Move = Constraint("move")

	// The operand is used again later.  A copy must be placed and the original
	// left on the stack.
	Copy = Constraint("copy")
)

type SolverOptions struct {
	// Upper bound on the number of actions a single tactic attempt may emit.
	Fuel int

	// Accept solutions which place the expected operands on top of the stack
	// in any order (e.g., for commutative binary operations).
	AllowUnordered bool

	// Panic when a tactic produces a solution which addresses felts outside of
	// the addressable window.
	Strict bool

	// Optional.  Defaults to a no-op logger.
	Logger *zap.Logger
}

func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		Fuel: DefaultFuel,
	}
}

func (options SolverOptions) logger() *zap.Logger {
	if options.Logger == nil {
		return zap.NewNop()
	}
	return options.Logger
}

// Copy analysis results.  Counts are per value (unaliased).
type CopyInfo struct {
	copies    map[ValueID]int
	numCopies int
}

func newCopyInfo() *CopyInfo {
	return &CopyInfo{
		copies: map[ValueID]int{},
	}
}

func (info *CopyInfo) push(value ValueOrAlias) {
	info.copies[value.ID]++
	info.numCopies++
}

// The number of copies which must be materialized.
func (info *CopyInfo) Len() int {
	return info.numCopies
}

func (info *CopyInfo) IsEmpty() bool {
	return info.numCopies == 0
}

// Returns true if at least one copy of the value is required.
func (info *CopyInfo) HasCopies(value ValueOrAlias) bool {
	return info.copies[value.ID] > 0
}

// The immutable description of one operand placement problem.
type SolverContext struct {
	options SolverOptions
	logger  *zap.Logger

	// The input stack with duplicate occurrences renamed to unique aliases.
	// The shallowest occurrence of a value keeps alias zero.
	stack *Stack

	// expected[0] must end up on top of the stack.
	expected    []ValueOrAlias
	constraints []Constraint

	copies *CopyInfo
}

// The expected list is ordered such that expected[0] must be placed on top of
// the stack.  Each expected operand has a corresponding constraint.
//
// Move operands bind to stack occurrences shallowest first, i.e., the k-th
// move of a value binds to the value's k-th occurrence on the stack.  Copy
// operands become fresh aliases of their value.
func NewSolverContext(
	expected []Value,
	constraints []Constraint,
	stack *Stack,
	options SolverOptions,
) (
	*SolverContext,
	error,
) {
	if len(expected) != len(constraints) {
		return nil, fmt.Errorf(
			"%w: %d expected operands, but %d constraints",
			ErrInvalidProblem,
			len(expected),
			len(constraints))
	}

	// Every working stack position, including materialized copies, must fit
	// in a uint8.
	if stack.Len()+len(expected) > math.MaxUint8 {
		return nil, fmt.Errorf(
			"%w: %d stack entries and %d expected operands exceed %d positions",
			ErrInvalidProblem,
			stack.Len(),
			len(expected),
			math.MaxUint8)
	}

	if options.Fuel <= 0 {
		options.Fuel = DefaultFuel
	}

	widths := map[ValueID]uint8{}
	checkWidth := func(value Value) error {
		if value.Width == 0 {
			return fmt.Errorf("%w: %s has zero width", ErrInvalidProblem, value)
		}

		width, ok := widths[value.ID]
		if !ok {
			widths[value.ID] = value.Width
			return nil
		}

		if width != value.Width {
			return fmt.Errorf(
				"%w: %s has conflicting widths (%d != %d)",
				ErrInvalidProblem,
				value,
				width,
				value.Width)
		}
		return nil
	}

	renamed := stack.Copy()
	occurrences := map[ValueID]int{}
	for pos := 0; pos < renamed.Len(); pos++ {
		entry := renamed.Get(pos)
		err := checkWidth(entry.Value)
		if err != nil {
			return nil, err
		}

		count := occurrences[entry.ID]
		if count > math.MaxUint8 {
			return nil, fmt.Errorf(
				"%w: too many occurrences of %s on the stack",
				ErrInvalidProblem,
				entry.Value)
		}
		renamed.Set(pos, entry.Copy(uint8(count)))
		occurrences[entry.ID] = count + 1
	}

	copies := newCopyInfo()
	moves := map[ValueID]int{}
	expectedOutput := make([]ValueOrAlias, 0, len(expected))
	for idx, value := range expected {
		err := checkWidth(value)
		if err != nil {
			return nil, err
		}

		count := occurrences[value.ID]
		if count == 0 {
			return nil, fmt.Errorf(
				"%w: expected operand %d (%s) is not on the stack",
				ErrInvalidProblem,
				idx,
				value)
		}

		var entry ValueOrAlias
		switch constraints[idx] {
		case Move:
			alias := moves[value.ID]
			if alias >= count {
				return nil, fmt.Errorf(
					"%w: %s is moved %d times, but only occurs %d times on the stack",
					ErrInvalidProblem,
					value,
					alias+1,
					count)
			}
			moves[value.ID] = alias + 1
			entry = NewValueOrAlias(value).Copy(uint8(alias))
		case Copy:
			alias := count + copies.copies[value.ID]
			if alias > math.MaxUint8 {
				return nil, fmt.Errorf(
					"%w: too many copies of %s",
					ErrInvalidProblem,
					value)
			}
			copies.push(NewValueOrAlias(value))
			entry = NewValueOrAlias(value).Copy(uint8(alias))
		default:
			return nil, fmt.Errorf(
				"%w: unknown constraint (%s) for operand %d",
				ErrInvalidProblem,
				constraints[idx],
				idx)
		}

		expectedOutput = append(expectedOutput, entry)
	}

	constraintsCopy := make([]Constraint, len(constraints))
	copy(constraintsCopy, constraints)

	context := &SolverContext{
		options:     options,
		logger:      options.logger(),
		stack:       renamed,
		expected:    expectedOutput,
		constraints: constraintsCopy,
		copies:      copies,
	}

	if copies.IsEmpty() && context.isSolvedExactly(renamed) {
		return nil, ErrAlreadySolved
	}

	return context, nil
}

func (context *SolverContext) Options() SolverOptions {
	return context.options
}

func (context *SolverContext) Logger() *zap.Logger {
	return context.logger
}

// The number of operands expected by the current operation.
func (context *SolverContext) Arity() int {
	return len(context.expected)
}

func (context *SolverContext) Copies() *CopyInfo {
	return context.copies
}

// The renamed input stack.  Callers must not modify the returned stack.
func (context *SolverContext) Stack() *Stack {
	return context.stack
}

// The expected operands, top first.  Callers must not modify the result.
func (context *SolverContext) Expected() []ValueOrAlias {
	return context.expected
}

func (context *SolverContext) Constraint(index int) Constraint {
	return context.constraints[index]
}

func (context *SolverContext) UnorderedAllowed() bool {
	return context.options.AllowUnordered
}

// Total number of felts occupied by the expected operands.
func (context *SolverContext) ExpectedFelts() int {
	felts := 0
	for _, value := range context.expected {
		felts += value.StackSize()
	}
	return felts
}

// Returns true if pending's leading entries match the expected operands.
//
// When unordered solutions are allowed (or when the two expected operands of
// a binary operation refer to the same value), the leading entries only need
// to be a permutation of the expected operands.
func (context *SolverContext) IsSolved(pending *Stack) bool {
	if context.isSolvedExactly(pending) {
		return true
	}

	bothSameValue := len(context.expected) == 2 &&
		context.expected[0].SameValue(context.expected[1])

	if !context.options.AllowUnordered && !bothSameValue {
		return false
	}

	return context.isSolvedUnordered(pending)
}

func (context *SolverContext) isSolvedExactly(pending *Stack) bool {
	if pending.Len() < len(context.expected) {
		return false
	}

	for idx, value := range context.expected {
		if !pending.Get(idx).Equals(value) {
			return false
		}
	}
	return true
}

// Multiset comparison between the expected operands and pending's leading
// entries.
func (context *SolverContext) isSolvedUnordered(pending *Stack) bool {
	if pending.Len() < len(context.expected) {
		return false
	}

	counts := map[aliasKey]int{}
	for idx, value := range context.expected {
		counts[value.key()]++
		counts[pending.Get(idx).key()]--
	}

	for _, count := range counts {
		if count != 0 {
			return false
		}
	}
	return true
}
