package operands

import (
	"sort"

	"go.uber.org/zap"
)

// Copies every expected operand, right to left, so that the copies land in
// the expected order.  Only applicable when every expected operand is a copy.
//
// If a source would fall out of the addressable window while copying right
// to left, the copies are instead materialized deepest source first, and then
// reordered on top of the stack.
type CopyAll struct{}

var _ Tactic = CopyAll{}

func (CopyAll) Name() string {
	return "copy-all"
}

func (CopyAll) Cost(context *SolverContext) int {
	return max(context.copies.Len(), 1) + 1
}

func (tactic CopyAll) Apply(builder *SolutionBuilder) error {
	arity := builder.Arity()
	if arity == 0 || builder.NumCopies() != arity {
		builder.logger.Debug(
			"not all operands are copies",
			zap.Int("copies", builder.NumCopies()),
			zap.Int("arity", arity))
		return ErrPreconditionFailed
	}

	usedFallback := false
	for index := arity - 1; index >= 0; index-- {
		expected := builder.MustExpected(uint8(index))
		pos := builder.MustCurrentPosition(expected.Unaliased())
		if !builder.Addressable(pos) {
			usedFallback = true
			break
		}

		builder.Dup(pos, expected)
	}

	if !usedFallback {
		if builder.Exhausted() {
			return ErrFuelExhausted
		}
		return builder.checkAddressable()
	}

	builder.logger.Debug("copying deepest source first")
	builder.Discard()

	return tactic.copyDeepestFirst(builder)
}

func (CopyAll) copyDeepestFirst(builder *SolutionBuilder) error {
	arity := builder.Arity()

	values := make([]ValueOrAlias, 0, arity)
	for index := 0; index < arity; index++ {
		values = append(values, builder.MustExpected(uint8(index)))
	}

	sort.SliceStable(
		values,
		func(i int, j int) bool {
			iPos := builder.MustCurrentPosition(values[i].Unaliased())
			jPos := builder.MustCurrentPosition(values[j].Unaliased())
			return iPos > jPos
		})

	for _, value := range values {
		pos := builder.MustCurrentPosition(value.Unaliased())
		if !builder.Addressable(pos) {
			return ErrNotApplicable
		}
		builder.Dup(pos, value)
	}

	for index := arity - 1; index >= 0; index-- {
		if builder.Exhausted() {
			return ErrFuelExhausted
		}

		expected := builder.MustExpected(uint8(index))
		pos := builder.MustCurrentPosition(expected)
		if pos != 0 {
			builder.MoveUp(pos)
		}
		if index != 0 {
			builder.MoveDown(uint8(index))
		}
	}

	if builder.Exhausted() {
		return ErrFuelExhausted
	}
	return builder.checkAddressable()
}
