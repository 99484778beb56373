package operands

import (
	"fmt"

	"go.uber.org/zap"
)

type Placement string

const (
	// The expected operand already occupies its expected position.
	Placed = Placement("placed")

	// The expected operand is a copy which has not been materialized yet.
	CopyRequired = Placement("copy-required")

	// The expected operand is on the stack, but not at its expected position.
	MoveRequired = Placement("move-required")
)

// Records a tactic's candidate solution.  The builder owns a working copy of
// the context's stack; every mutation appends an action and updates the
// working stack, so all queries reflect the hypothetical post-rewrite state.
type SolutionBuilder struct {
	context *SolverContext
	logger  *zap.Logger

	pending *Stack
	actions []Action

	fuel      int
	exhausted bool
}

func NewSolutionBuilder(context *SolverContext) *SolutionBuilder {
	return &SolutionBuilder{
		context: context,
		logger:  context.logger,
		pending: context.stack.Copy(),
		fuel:    context.options.Fuel,
	}
}

func (builder *SolutionBuilder) Context() *SolverContext {
	return builder.context
}

func (builder *SolutionBuilder) Arity() int {
	return builder.context.Arity()
}

func (builder *SolutionBuilder) NumCopies() int {
	return builder.context.copies.Len()
}

func (builder *SolutionBuilder) UnorderedAllowed() bool {
	return builder.context.UnorderedAllowed()
}

// The working stack.  Callers must not modify the returned stack.
func (builder *SolutionBuilder) Stack() *Stack {
	return builder.pending
}

func (builder *SolutionBuilder) Actions() []Action {
	return builder.actions
}

// Returns true once the fuel budget has been exceeded.  Tactics must stop
// emitting actions as soon as this becomes true.
func (builder *SolutionBuilder) Exhausted() bool {
	return builder.exhausted
}

func (builder *SolutionBuilder) IsValid() bool {
	return builder.context.IsSolved(builder.pending)
}

// Returns the recorded actions, and resets the builder to the context's
// initial state.
func (builder *SolutionBuilder) Take() []Action {
	actions := builder.actions
	builder.Discard()
	return actions
}

// Drops all recorded actions, and resets the working stack and fuel.
func (builder *SolutionBuilder) Discard() {
	builder.pending = builder.context.stack.Copy()
	builder.actions = nil
	builder.fuel = builder.context.options.Fuel
	builder.exhausted = false
}

func (builder *SolutionBuilder) CurrentPosition(
	value ValueOrAlias,
) (
	uint8,
	bool,
) {
	pos, ok := builder.pending.Find(value)
	return uint8(pos), ok
}

// Like CurrentPosition, but ignores entries above start.
func (builder *SolutionBuilder) CurrentPositionSkip(
	start uint8,
	value ValueOrAlias,
) (
	uint8,
	bool,
) {
	pos, ok := builder.pending.FindFrom(int(start), value)
	return uint8(pos), ok
}

func (builder *SolutionBuilder) ExpectedPosition(
	value ValueOrAlias,
) (
	uint8,
	bool,
) {
	for idx, expected := range builder.context.expected {
		if expected.Equals(value) {
			return uint8(idx), true
		}
	}
	return 0, false
}

func (builder *SolutionBuilder) MustCurrent(pos uint8) ValueOrAlias {
	if int(pos) >= builder.pending.Len() {
		panic(fmt.Sprintf("should never happen. no stack entry at %d", pos))
	}
	return builder.pending.Get(int(pos))
}

func (builder *SolutionBuilder) MustCurrentPosition(value ValueOrAlias) uint8 {
	pos, ok := builder.CurrentPosition(value)
	if !ok {
		panic(fmt.Sprintf("should never happen. %s is not on the stack", value))
	}
	return pos
}

func (builder *SolutionBuilder) MustExpectedPosition(value ValueOrAlias) uint8 {
	pos, ok := builder.ExpectedPosition(value)
	if !ok {
		panic(fmt.Sprintf("should never happen. %s is not expected", value))
	}
	return pos
}

func (builder *SolutionBuilder) MustExpected(index uint8) ValueOrAlias {
	if int(index) >= len(builder.context.expected) {
		panic(fmt.Sprintf("should never happen. no expected operand at %d", index))
	}
	return builder.context.expected[index]
}

// Returns true if the entry at pos is the operand expected there.  Positions
// beyond the arity are always considered expected.
func (builder *SolutionBuilder) IsExpected(pos uint8) bool {
	if int(pos) >= len(builder.context.expected) {
		return true
	}
	if int(pos) >= builder.pending.Len() {
		return false
	}
	return builder.pending.Get(int(pos)).Equals(builder.context.expected[pos])
}

// Classifies the expected operand at index against the working stack.
func (builder *SolutionBuilder) Classify(index uint8) Placement {
	expected := builder.MustExpected(index)
	pos, ok := builder.CurrentPosition(expected)
	if !ok {
		return CopyRequired
	}
	if pos == index {
		return Placed
	}
	return MoveRequired
}

// Returns true if the entry at pos lies entirely within the addressable
// window of the working stack.
func (builder *SolutionBuilder) Addressable(pos uint8) bool {
	return builder.pending.Addressable(int(pos))
}

func (builder *SolutionBuilder) record(action Action) {
	builder.fuel--
	if builder.fuel < 0 {
		builder.exhausted = true
	}
	builder.actions = append(builder.actions, action)
	builder.logger.Debug(
		"emit action",
		zap.Stringer("action", action),
		zap.Stringer("stack", builder.pending))
}

// Duplicates the entry at pos onto the top of the stack.  The new top entry
// is recorded as alias, which must be an alias of the same value.
func (builder *SolutionBuilder) Dup(pos uint8, alias ValueOrAlias) {
	source := builder.MustCurrent(pos)
	if !source.SameValue(alias) {
		panic(fmt.Sprintf(
			"should never happen. cannot record %s as a copy of %s",
			alias,
			source))
	}
	if builder.pending.Contains(alias) {
		panic(fmt.Sprintf("should never happen. %s is already on the stack", alias))
	}

	builder.pending.Dup(int(pos), alias.Alias)
	builder.record(NewDupAction(pos))
}

func (builder *SolutionBuilder) Swap(pos uint8) {
	builder.MustCurrent(pos)
	builder.pending.Swap(int(pos))
	builder.record(NewSwapAction(pos))
}

func (builder *SolutionBuilder) MoveUp(pos uint8) {
	builder.MustCurrent(pos)
	builder.pending.MoveUp(int(pos))
	builder.record(NewMoveUpAction(pos))
}

func (builder *SolutionBuilder) MoveDown(pos uint8) {
	builder.MustCurrent(pos)
	builder.pending.MoveDown(int(pos))
	builder.record(NewMoveDownAction(pos))
}

func (builder *SolutionBuilder) Drop() {
	builder.MustCurrent(0)
	builder.pending.Drop()
	builder.record(NewDropAction())
}

// Returns ErrNotApplicable if the recorded actions address felts outside of
// the addressable window.
func (builder *SolutionBuilder) checkAddressable() error {
	if SolutionRequiresUnsupportedStackAccess(
		builder.actions,
		builder.context.stack) {

		return fmt.Errorf(
			"%w: solution requires unsupported stack access",
			ErrNotApplicable)
	}
	return nil
}
