package scheduler

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pattyshack/gull/architecture"
	"github.com/pattyshack/gull/ast"
	"github.com/pattyshack/gull/operands"
)

// Places a single instruction's operands on top of the stack, then executes
// the instruction.
type operationsScheduler struct {
	*BlockState

	currentDist int
	instruction ast.Instruction
	constraints *architecture.InstructionConstraints

	expected      []operands.Value
	operandRules  []operands.Constraint
	copyFelts     int
	consumedFelts int
}

func newOperationsScheduler(
	state *BlockState,
	currentDist int,
	inst ast.Instruction,
	constraints *architecture.InstructionConstraints,
) *operationsScheduler {
	scheduler := &operationsScheduler{
		BlockState:  state,
		currentDist: currentDist,
		instruction: inst,
		constraints: constraints,
	}

	seen := map[*ast.ValueDefinition]struct{}{}
	for idx, ref := range constraints.Operands {
		def := ref.UseDef
		value := state.Value(def)

		// An operand is copied if the value outlives the instruction, or if
		// the value was already claimed by an earlier operand.
		rule := operands.Move
		_, claimed := seen[def]
		if claimed || state.LiveRanges[def].UsedAfter(currentDist) {
			rule = operands.Copy
			scheduler.copyFelts += int(value.Width)
		}
		seen[def] = struct{}{}

		if idx < constraints.NumConsumed {
			scheduler.consumedFelts += int(value.Width)
		}

		scheduler.expected = append(scheduler.expected, value)
		scheduler.operandRules = append(scheduler.operandRules, rule)
	}

	return scheduler
}

func (scheduler *operationsScheduler) ScheduleOperations() error {
	err := scheduler.dropDeadValues()
	if err != nil {
		return err
	}

	err = scheduler.setUpOperands()
	if err != nil {
		return err
	}

	scheduler.ExecuteInstruction(scheduler.instruction, scheduler.constraints)
	return nil
}

// Terminators require the stack to hold exactly their operands.  Otherwise,
// dead values are only dropped when the instruction would overflow the
// addressable window.
func (scheduler *operationsScheduler) dropDeadValues() error {
	var isDead func(*ast.ValueDefinition) bool
	if scheduler.constraints.ExactStack {
		operandDefs := map[*ast.ValueDefinition]struct{}{}
		for _, ref := range scheduler.constraints.Operands {
			operandDefs[ref.UseDef] = struct{}{}
		}

		isDead = func(def *ast.ValueDefinition) bool {
			_, ok := operandDefs[def]
			return !ok
		}
	} else {
		growth := max(0, scheduler.constraints.ResultFelts()-scheduler.consumedFelts)
		required := scheduler.Stack.FeltSize() + scheduler.copyFelts + growth
		if required <= architecture.StackWindowFelts {
			return nil
		}

		isDead = func(def *ast.ValueDefinition) bool {
			return !scheduler.IsLiveAt(def, scheduler.currentDist)
		}
	}

	unreachable := scheduler.DropDeadValues(isDead)
	if unreachable > 0 && scheduler.constraints.ExactStack {
		return fmt.Errorf(
			"unable to drop %d dead value(s) beyond the addressable stack window",
			unreachable)
	}
	return nil
}

func (scheduler *operationsScheduler) setUpOperands() error {
	if len(scheduler.expected) == 0 {
		return nil
	}

	if scheduler.operandsInPlace() {
		return nil
	}

	options := scheduler.Options
	options.AllowUnordered = scheduler.constraints.Commutative
	options.Logger = scheduler.Logger

	solver, err := operands.NewWithOptions(
		scheduler.expected,
		scheduler.operandRules,
		scheduler.Stack.Copy(),
		options)
	if errors.Is(err, operands.ErrAlreadySolved) {
		return nil
	} else if err != nil {
		return err
	}

	actions, err := solver.Solve()
	if err != nil {
		return err
	}

	scheduler.Logger.Debug(
		"scheduled operands",
		zap.String("block", scheduler.Label),
		zap.String("instruction", fmt.Sprint(scheduler.instruction)),
		zap.Stringer("stack", scheduler.Stack),
		zap.Int("actions", len(actions)))

	scheduler.ApplyAll(actions)
	return nil
}

// Commutative binary operations whose (moved) operands already occupy the
// top two stack slots, in either order, require no stack manipulation.
func (scheduler *operationsScheduler) operandsInPlace() bool {
	if !scheduler.constraints.Commutative ||
		len(scheduler.expected) != 2 ||
		scheduler.Stack.Len() < 2 {

		return false
	}

	for _, rule := range scheduler.operandRules {
		if rule != operands.Move {
			return false
		}
	}

	top := scheduler.Stack.Get(0).ID
	next := scheduler.Stack.Get(1).ID
	lhs := scheduler.expected[0].ID
	rhs := scheduler.expected[1].ID
	return (top == lhs && next == rhs) || (top == rhs && next == lhs)
}
