package operands

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/pattyshack/gull/architecture"
	"github.com/pattyshack/gull/digraph"
)

// Returns the deepest addressable position holding an occurrence (original or
// alias) of value.
func findDeepestAddressableCopySource(
	stack *Stack,
	value ValueOrAlias,
) (
	uint8,
	bool,
) {
	source := 0
	found := false
	depth := 0
	for pos := 0; pos < stack.Len(); pos++ {
		entry := stack.Get(pos)
		depth += entry.StackSize()
		if depth > architecture.StackWindowFelts {
			break
		}
		if entry.SameValue(value) {
			source = pos
			found = true
		}
	}
	return uint8(source), found
}

// Number of felts occupied by expected copies which are not yet on the
// working stack.
func missingCopyFelts(builder *SolutionBuilder) int {
	felts := 0
	for _, value := range builder.context.expected {
		if !value.IsAlias() {
			continue
		}
		_, ok := builder.CurrentPosition(value)
		if !ok {
			felts += value.StackSize()
		}
	}
	return felts
}

func hasMissingExpectedCopies(builder *SolutionBuilder) bool {
	return missingCopyFelts(builder) > 0
}

// Moves expected move operands to the top of the stack whenever
// materializing the missing copies would push them out of the addressable
// window.  Returns true if the stack was modified.
func preemptivelyMoveEndangeredOperandsToTop(builder *SolutionBuilder) bool {
	missing := missingCopyFelts(builder)
	if missing == 0 {
		return false
	}

	changed := false
	for !builder.Exhausted() {
		worstPos := 0
		worstDepth := -1
		for idx, value := range builder.context.expected {
			if builder.context.constraints[idx] == Copy {
				continue
			}

			pos, ok := builder.CurrentPosition(value)
			if !ok {
				continue
			}

			depth := builder.pending.FeltDepth(int(pos))
			if depth+missing > architecture.StackWindowFelts &&
				depth > worstDepth {

				worstPos = int(pos)
				worstDepth = depth
			}
		}

		if worstDepth < 0 || worstPos == 0 {
			break
		}

		if !builder.Addressable(uint8(worstPos)) {
			break
		}

		builder.logger.Debug(
			"moving endangered operand to top",
			zap.Stringer("value", builder.MustCurrent(uint8(worstPos))),
			zap.Int("index", worstPos),
			zap.Int("felt-depth", worstDepth))
		builder.MoveUp(uint8(worstPos))
		changed = true
	}

	return changed
}

// Returns the next copy to materialize: the missing copy whose deepest
// addressable source is the deepest.
func nextCopyToMaterialize(
	builder *SolutionBuilder,
) (
	uint8,
	ValueOrAlias,
	bool,
	error,
) {
	sourceAt := uint8(0)
	var next ValueOrAlias
	found := false
	for _, expected := range builder.context.expected {
		_, ok := builder.CurrentPosition(expected)
		if ok {
			continue
		}

		if !expected.IsAlias() {
			panic("should never happen. " + expected.String() + " is not a copy")
		}

		source, ok := findDeepestAddressableCopySource(builder.pending, expected)
		if !ok {
			return 0, ValueOrAlias{}, false, ErrNotApplicable
		}

		if !found || source > sourceAt {
			sourceAt = source
			next = expected
			found = true
		}
	}

	return sourceAt, next, found, nil
}

// Materializes a copy when the expected operands exactly fill the
// addressable window, and the window is exactly full.  In that case any
// materialized copy pushes one entry out of the window.  The copy source is
// first rotated into the deepest addressable position so that the source
// itself is the entry pushed out.
//
// Returns false if the stack is not in that configuration.
func materializeCopyInFullWindow(
	builder *SolutionBuilder,
	sourceAt uint8,
	expected ValueOrAlias,
) bool {
	if builder.context.ExpectedFelts() != architecture.StackWindowFelts {
		return false
	}

	deepest, felts, ok := builder.pending.AddressableWindow()
	if !ok || felts != architecture.StackWindowFelts {
		return false
	}

	builder.logger.Debug(
		"materializing copy in a full stack window",
		zap.Stringer("value", expected),
		zap.Uint8("source", sourceAt),
		zap.Int("deepest", deepest))

	if sourceAt > 0 {
		builder.MoveUp(sourceAt)
	}
	if deepest > 0 {
		builder.MoveDown(uint8(deepest))
	}
	builder.Dup(uint8(deepest), expected)
	return true
}

// A permutation graph vertex.
type operand struct {
	pos   uint8
	value ValueOrAlias
}

type operandGraph struct {
	*digraph.Digraph

	indices  map[operand]int
	operands []operand
}

func newOperandGraph() *operandGraph {
	return &operandGraph{
		Digraph: digraph.New(0),
		indices: map[operand]int{},
	}
}

func (graph *operandGraph) node(op operand) int {
	idx, ok := graph.indices[op]
	if ok {
		return idx
	}

	idx = graph.AddNode()
	graph.indices[op] = idx
	graph.operands = append(graph.operands, op)
	return idx
}

// Produces a solution by materializing copies, then resolving the remaining
// out-of-place operands as cyclic permutations via swaps.  Each cycle of N
// operands is resolved with N swaps, plus at most two moves to position the
// cycle's starting operand.
type Linear struct{}

var _ Tactic = Linear{}

func (Linear) Name() string {
	return "linear"
}

func (Linear) Cost(context *SolverContext) int {
	return max(context.copies.Len(), 1)
}

func (Linear) Apply(builder *SolutionBuilder) error {
	err := applyLinear(builder, true)
	if err != nil {
		return err
	}
	return builder.checkAddressable()
}

// Returns ErrNotApplicable if an expected move operand is outside of the
// addressable window.  Entries outside the window can't be brought back
// into it.
func checkMoveOperandsAddressable(builder *SolutionBuilder) error {
	for idx, value := range builder.context.expected {
		if builder.context.constraints[idx] == Copy {
			continue
		}

		pos, ok := builder.CurrentPosition(value)
		if ok && !builder.Addressable(pos) {
			return fmt.Errorf(
				"%w: %s at %d is not addressable",
				ErrNotApplicable,
				value,
				pos)
		}
	}
	return nil
}

// When fullWindowCopies is true, copies are materialized via
// materializeCopyInFullWindow if their source is a spare entry (i.e., not
// itself an expected operand).
func applyLinear(builder *SolutionBuilder, fullWindowCopies bool) error {
	changed := true
	for changed {
		changed = false
		if builder.Exhausted() {
			return ErrFuelExhausted
		}

		if preemptivelyMoveEndangeredOperandsToTop(builder) {
			changed = true
		}

		err := checkMoveOperandsAddressable(builder)
		if err != nil {
			return err
		}

		materialized := []ValueOrAlias{}
		isMaterialized := map[aliasKey]struct{}{}
		markMaterialized := func(value ValueOrAlias) {
			_, ok := isMaterialized[value.key()]
			if ok {
				return
			}
			isMaterialized[value.key()] = struct{}{}
			materialized = append(materialized, value)
		}

		for _, expected := range builder.context.expected {
			_, ok := builder.CurrentPosition(expected)
			if ok {
				markMaterialized(expected)
			}
		}

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

			source := builder.MustCurrent(sourceAt)
			_, sourceIsExpected := builder.ExpectedPosition(source)
			if !fullWindowCopies ||
				sourceIsExpected ||
				!materializeCopyInFullWindow(builder, sourceAt, expected) {

				builder.Dup(sourceAt, expected)
			}

			markMaterialized(expected)
			changed = true
		}

		graph := newOperandGraph()
		for idx := 0; idx < len(materialized); idx++ {
			value := materialized[idx]
			currentAt := builder.MustCurrentPosition(value)

			expectedAt, ok := builder.ExpectedPosition(value)
			if ok {
				if currentAt == expectedAt {
					continue
				}

				occupiedBy := builder.MustCurrent(expectedAt)
				builder.logger.Debug(
					"operand out of place",
					zap.Stringer("value", value),
					zap.Uint8("current", currentAt),
					zap.Uint8("expected", expectedAt),
					zap.Stringer("occupied-by", occupiedBy))

				from := graph.node(operand{pos: currentAt, value: value})
				to := graph.node(operand{pos: expectedAt, value: occupiedBy})
				graph.AddEdge(from, to)
				markMaterialized(occupiedBy)
				continue
			}

			// value is not an expected operand, but occupies a position needed by
			// an expected operand.  Close the path leading to value into a cycle
			// so that value is evicted by the swaps which place the path's
			// operands.
			node := graph.node(operand{pos: currentAt, value: value})
			root, ok := graph.FirstPredecessor(node)
			if !ok {
				panic("should never happen. " + value.String() + " has no parent")
			}

			seen := map[int]struct{}{root: struct{}{}}
			for {
				parent, ok := graph.FirstPredecessor(root)
				if !ok {
					break
				}
				_, ok = seen[parent]
				if ok {
					break
				}
				seen[parent] = struct{}{}
				root = parent
			}

			builder.logger.Debug(
				"evicting non-operand",
				zap.Stringer("value", value),
				zap.Uint8("current", currentAt),
				zap.Stringer("root", graph.operands[root].value))
			graph.AddEdge(node, root)
		}

		components := graph.SCCs()
		if len(components) == 0 {
			break
		}

		for _, component := range components {
			if len(component) < 2 {
				continue
			}
			for _, node := range component {
				op := graph.operands[node]
				if !builder.Addressable(op.pos) {
					return fmt.Errorf(
						"%w: cycle operand %s at %d is not addressable",
						ErrNotApplicable,
						op.value,
						op.pos)
				}
			}
		}

		for _, component := range components {
			if len(component) < 2 {
				continue
			}

			if builder.Exhausted() {
				return ErrFuelExhausted
			}

			start := component[0]
			for _, node := range component[1:] {
				if graph.operands[node].pos < graph.operands[start].pos {
					start = node
				}
			}

			startPos := graph.operands[start].pos
			builder.logger.Debug(
				"resolving cycle",
				zap.Int("size", len(component)),
				zap.Stringer("start", graph.operands[start].value),
				zap.Uint8("index", startPos))

			if startPos > 0 {
				builder.MoveUp(startPos)
				changed = true
			}

			child, ok := graph.FirstSuccessor(start)
			if !ok {
				panic("should never happen")
			}

			for child != start {
				builder.Swap(graph.operands[child].pos)
				changed = true

				next, ok := graph.FirstSuccessor(child)
				if !ok {
					if len(component) != 2 {
						panic("should never happen")
					}
					break
				}
				child = next
			}

			if startPos > 0 {
				builder.MoveDown(startPos)
				changed = true
			}
		}

		if builder.IsValid() {
			break
		}
	}

	if builder.Exhausted() {
		return ErrFuelExhausted
	}
	return nil
}
