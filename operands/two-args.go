package operands

// Specialized solutions for binary operations.  Every instance is solved
// with at most two actions; commutative operations may need none.
//
// Note: expected[0] (rhs) is placed on top of expected[1] (lhs).
type TwoArgs struct{}

var _ Tactic = TwoArgs{}

func (TwoArgs) Name() string {
	return "two-args"
}

func (TwoArgs) Cost(*SolverContext) int {
	return 1
}

func (tactic TwoArgs) Apply(builder *SolutionBuilder) error {
	if builder.Arity() != 2 {
		return ErrPreconditionFailed
	}

	rhs := builder.MustExpected(0)
	rhsIsCopy := builder.context.Constraint(0) == Copy

	lhs := builder.MustExpected(1)
	lhsIsCopy := builder.context.Constraint(1) == Copy

	lhsPos, ok := tactic.sourcePosition(builder, lhs, lhsIsCopy)
	if !ok {
		return ErrNotApplicable
	}

	rhsPos, ok := tactic.sourcePosition(builder, rhs, rhsIsCopy)
	if !ok {
		return ErrNotApplicable
	}

	switch {
	case lhsIsCopy && rhsIsCopy:
		tactic.copyCopy(builder, lhs, lhsPos, rhs, rhsPos)
	case lhsIsCopy:
		tactic.copyMove(builder, lhs, lhsPos, rhsPos)
	case rhsIsCopy:
		tactic.moveCopy(builder, lhsPos, rhs, rhsPos)
	default:
		tactic.moveMove(builder, lhsPos, rhsPos)
	}

	return builder.checkAddressable()
}

// Copies are made from the value's primary occurrence.  Moves use the exact
// occurrence bound to the operand.
func (TwoArgs) sourcePosition(
	builder *SolutionBuilder,
	value ValueOrAlias,
	isCopy bool,
) (
	uint8,
	bool,
) {
	if isCopy {
		return builder.CurrentPosition(value.Unaliased())
	}
	return builder.CurrentPosition(value)
}

func (TwoArgs) copyCopy(
	builder *SolutionBuilder,
	lhs ValueOrAlias,
	lhsPos uint8,
	rhs ValueOrAlias,
	rhsPos uint8,
) {
	if lhsPos == rhsPos {
		// Copy the copy.
		builder.Dup(lhsPos, lhs)
		builder.Dup(0, rhs)
	} else {
		builder.Dup(lhsPos, lhs)
		builder.Dup(rhsPos+1, rhs)
	}
}

func (TwoArgs) copyMove(
	builder *SolutionBuilder,
	lhs ValueOrAlias,
	lhsPos uint8,
	rhsPos uint8,
) {
	builder.Dup(lhsPos, lhs)

	// rhs can stay in place if it was already on top, and either lhs is a copy
	// of the same value, or the operands may be left out of order.
	dupOfTop := lhsPos == rhsPos && lhsPos == 0
	canLeaveRhs := builder.UnorderedAllowed() && rhsPos == 0

	if !canLeaveRhs && !dupOfTop {
		builder.MoveUp(rhsPos + 1)
	}
}

func (TwoArgs) moveCopy(
	builder *SolutionBuilder,
	lhsPos uint8,
	rhs ValueOrAlias,
	rhsPos uint8,
) {
	if lhsPos == 0 {
		builder.Dup(rhsPos, rhs)
		return
	}

	builder.MoveUp(lhsPos)
	if lhsPos < rhsPos {
		builder.Dup(rhsPos, rhs)
	} else if lhsPos == rhsPos {
		builder.Dup(0, rhs)
	} else {
		builder.Dup(rhsPos+1, rhs)
	}
}

func (TwoArgs) moveMove(
	builder *SolutionBuilder,
	lhsPos uint8,
	rhsPos uint8,
) {
	if lhsPos == rhsPos {
		panic("should never happen")
	}

	unordered := builder.UnorderedAllowed()
	switch {
	case lhsPos == 0:
		if !(unordered && rhsPos == 1) {
			builder.MoveUp(rhsPos)
		}
	case rhsPos == 0 && unordered:
		builder.MoveUp(lhsPos)
	case rhsPos >= 2 && lhsPos == 1:
		builder.Swap(rhsPos)
	case (rhsPos == 1 && lhsPos == 2) ||
		(unordered && lhsPos == 1 && rhsPos == 2):
		builder.MoveDown(2)
	default:
		builder.MoveUp(lhsPos)
		if lhsPos < rhsPos {
			builder.MoveUp(rhsPos)
		} else {
			builder.MoveUp(rhsPos + 1)
		}
	}
}
