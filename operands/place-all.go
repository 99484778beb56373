package operands

// Builds a strict solution by placing expected operands top down.  Each
// operand is brought to the top of the stack (materializing copies as
// needed), then moved down into its final position under the already placed
// prefix.
//
// Intended as the last resort for large call sites with many copies.
type PlaceAll struct{}

var _ Tactic = PlaceAll{}

func (PlaceAll) Name() string {
	return "place-all"
}

func (PlaceAll) Cost(context *SolverContext) int {
	return context.Arity() + context.copies.Len()
}

func (PlaceAll) Apply(builder *SolutionBuilder) error {
	arity := builder.Arity()
	if arity == 0 {
		return nil
	}

	if builder.Exhausted() {
		return ErrFuelExhausted
	}

	for index := 0; index < arity; index++ {
		if builder.Exhausted() {
			return ErrFuelExhausted
		}

		expected := builder.MustExpected(uint8(index))

		pos, ok := builder.CurrentPosition(expected)
		if !ok { // a missing copy
			pos = builder.MustCurrentPosition(expected.Unaliased())
			if !builder.Addressable(pos) {
				return ErrNotApplicable
			}
			builder.Dup(pos, expected)
		} else {
			if !builder.Addressable(pos) {
				return ErrNotApplicable
			}
			if pos != 0 {
				builder.MoveUp(pos)
			}
		}

		if index != 0 {
			if !builder.Addressable(uint8(index)) {
				return ErrNotApplicable
			}
			builder.MoveDown(uint8(index))
		}
	}

	if builder.Exhausted() {
		return ErrFuelExhausted
	}
	return builder.checkAddressable()
}
