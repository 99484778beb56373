package scheduler

import (
	"strings"

	"go.uber.org/zap"

	"github.com/pattyshack/gull/analyzer"
	"github.com/pattyshack/gull/architecture"
	"github.com/pattyshack/gull/ast"
	"github.com/pattyshack/gull/operands"
	"github.com/pattyshack/gull/platform"
)

// The block's execution state at a particular point in time.
type BlockState struct {
	platform.Platform
	*ast.Block

	Options operands.SolverOptions
	Logger  *zap.Logger

	DebugMode bool

	LiveRanges analyzer.LiveRanges

	// Value ids are block local.  Parameters are numbered first (in parameter
	// order), followed by instruction destinations (in definition order).
	values      map[*ast.ValueDefinition]operands.Value
	definitions map[operands.ValueID]*ast.ValueDefinition

	// The operand stack.  Outside of operand set up, every entry is a
	// distinct, unaliased value.
	Stack *operands.Stack

	// Stack contents (top first) immediately prior to executing the block, and
	// immediately prior to executing the terminator.
	StackIn  []*ast.ValueDefinition
	StackOut []*ast.ValueDefinition

	Operations []architecture.Operation

	// Populated in debug mode only.  StackTrace[i] is the stack immediately
	// after Operations[i].
	StackTrace []string
}

func NewBlockState(
	targetPlatform platform.Platform,
	block *ast.Block,
	liveRanges analyzer.LiveRanges,
	options operands.SolverOptions,
	logger *zap.Logger,
) *BlockState {
	if logger == nil {
		logger = zap.NewNop()
	}

	state := &BlockState{
		Platform:    targetPlatform,
		Block:       block,
		Options:     options,
		Logger:      logger,
		LiveRanges:  liveRanges,
		values:      map[*ast.ValueDefinition]operands.Value{},
		definitions: map[operands.ValueID]*ast.ValueDefinition{},
	}

	params := block.EntryParameters()
	for _, param := range params {
		state.register(param)
	}
	for _, inst := range block.Instructions {
		for _, dest := range inst.Destinations() {
			state.register(dest)
		}
	}

	entries := make([]operands.Value, 0, len(params))
	for _, param := range params {
		entries = append(entries, state.values[param])
	}
	state.Stack = operands.NewStackFromValues(entries...)
	state.StackIn = state.StackDefinitions()

	return state
}

func (state *BlockState) register(def *ast.ValueDefinition) {
	value := operands.NewValue(
		operands.ValueID(len(state.values)),
		uint8(architecture.FeltSize(def.Type)))
	state.values[def] = value
	state.definitions[value.ID] = def
}

func (state *BlockState) Value(def *ast.ValueDefinition) operands.Value {
	value, ok := state.values[def]
	if !ok {
		panic("should never happen")
	}
	return value
}

func (state *BlockState) Definition(
	entry operands.ValueOrAlias,
) *ast.ValueDefinition {
	def, ok := state.definitions[entry.ID]
	if !ok {
		panic("should never happen")
	}
	return def
}

// Top first.
func (state *BlockState) StackDefinitions() []*ast.ValueDefinition {
	entries := state.Stack.Entries()
	result := make([]*ast.ValueDefinition, 0, len(entries))
	for _, entry := range entries {
		result = append(result, state.Definition(entry))
	}
	return result
}

func (state *BlockState) StackString() string {
	builder := strings.Builder{}
	builder.WriteString("[")
	for idx, entry := range state.Stack.Entries() {
		if idx > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(state.Definition(entry).Name)
		if entry.IsAlias() {
			builder.WriteString("'")
		}
	}
	builder.WriteString("]")
	return builder.String()
}

// Returns true if the value is used by the instruction at dist, or by any
// instruction after it.
func (state *BlockState) IsLiveAt(def *ast.ValueDefinition, dist int) bool {
	live, ok := state.LiveRanges[def]
	if !ok {
		panic("should never happen")
	}
	return live.End >= dist
}

func (state *BlockState) record(op architecture.Operation) {
	state.Operations = append(state.Operations, op)
	if state.DebugMode {
		state.StackTrace = append(state.StackTrace, state.StackString())
	}
}

// Applies a stack manipulation action to the operand stack, and records the
// corresponding operation.  The operation's felt layout is computed from the
// stack prior to the action.
func (state *BlockState) Apply(action operands.Action) {
	stack := state.Stack
	pos := int(action.Index)

	var op architecture.Operation
	switch action.Kind {
	case operands.Dup:
		op = architecture.NewDupOp(
			pos,
			stack.FeltOffset(pos),
			stack.Get(pos).StackSize())
	case operands.Swap:
		op = architecture.NewSwapOp(
			pos,
			stack.FeltOffset(pos),
			stack.Get(pos).StackSize(),
			stack.Get(0).StackSize())
	case operands.MoveUp:
		op = architecture.NewMoveUpOp(
			pos,
			stack.FeltOffset(pos),
			stack.Get(pos).StackSize())
	case operands.MoveDown:
		top := stack.Get(0).StackSize()
		op = architecture.NewMoveDownOp(pos, stack.FeltDepth(pos)-top, top)
	case operands.Drop:
		op = architecture.NewDropOp(stack.Get(0).StackSize())
	default:
		panic("unexpected action kind: " + string(action.Kind))
	}

	stack.Apply(action)
	state.record(op)
}

func (state *BlockState) ApplyAll(actions []operands.Action) {
	for _, action := range actions {
		state.Apply(action)
	}
}

// Pops the consumed operands, and pushes the instruction's results (the first
// result ends up on top).  The remaining entries are normalized to their
// primary occurrence.
func (state *BlockState) ExecuteInstruction(
	inst ast.Instruction,
	constraints *architecture.InstructionConstraints,
) {
	if ast.IsTerminal(inst) {
		state.StackOut = state.StackDefinitions()
	}

	for i := 0; i < constraints.NumConsumed; i++ {
		state.Stack.Pop()
	}

	for pos := 0; pos < state.Stack.Len(); pos++ {
		state.Stack.Set(pos, state.Stack.Get(pos).Unaliased())
	}

	for idx := len(constraints.Results) - 1; idx >= 0; idx-- {
		state.Stack.Push(
			operands.NewValueOrAlias(state.Value(constraints.Results[idx])))
	}

	state.record(architecture.NewExecuteInstructionOp(inst))
}

func definitionNames(defs []*ast.ValueDefinition) string {
	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name)
	}
	return "[" + strings.Join(names, ", ") + "]"
}
