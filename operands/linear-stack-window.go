package operands

import (
	"go.uber.org/zap"
)

// A fallback for Linear which always materializes copies in a way that keeps
// the expected operands addressable when they fill the entire stack window.
// Only applicable when copies are missing.
type LinearStackWindow struct{}

var _ Tactic = LinearStackWindow{}

func (LinearStackWindow) Name() string {
	return "linear-stack-window"
}

func (LinearStackWindow) Cost(context *SolverContext) int {
	return max(context.copies.Len(), 1) + 1
}

func (LinearStackWindow) Apply(builder *SolutionBuilder) error {
	if !hasMissingExpectedCopies(builder) {
		return ErrNotApplicable
	}

	preemptivelyMoveEndangeredOperandsToTop(builder)

	for {
		if builder.Exhausted() {
			return ErrFuelExhausted
		}

		sourceAt, expected, ok, err := nextCopyToMaterialize(builder)
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		builder.logger.Debug(
			"materializing copy",
			zap.Stringer("value", expected),
			zap.Uint8("source", sourceAt))

		if !materializeCopyInFullWindow(builder, sourceAt, expected) {
			builder.Dup(sourceAt, expected)
		}
	}

	if !builder.IsValid() {
		err := applyLinear(builder, false)
		if err != nil {
			return err
		}
	}

	return builder.checkAddressable()
}
