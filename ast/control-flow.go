package ast

import (
	"fmt"

	"github.com/pattyshack/gt/parseutil"
)

// Only the last instruction in a block can be a control flow instruction, and
// every block must end with one (there is no implicit fallthrough).
type ControlFlowInstruction interface {
	Instruction
	isControlFlow()

	// Labels of the blocks which may execute next.
	Successors() []string
}

type controlFlowInstruction struct {
	instruction
}

func (controlFlowInstruction) isControlFlow() {}

func IsTerminal(inst Instruction) bool {
	_, ok := inst.(ControlFlowInstruction)
	return ok
}

// Unconditional branch of the form: br <label>( [args,]* )
//
// The arguments become the target block's parameters.
type Jump struct {
	controlFlowInstruction

	parseutil.StartEndPos

	Label string
	Args  []*ValueReference
}

var _ ControlFlowInstruction = &Jump{}
var _ Validator = &Jump{}

func (jump *Jump) Sources() []*ValueReference {
	return jump.Args
}

func (jump *Jump) Successors() []string {
	return []string{jump.Label}
}

func (jump *Jump) Walk(visitor Visitor) {
	visitor.Enter(jump)
	for _, arg := range jump.Args {
		arg.Walk(visitor)
	}
	visitor.Exit(jump)
}

func (jump *Jump) Validate(emitter *parseutil.Emitter) {
	if jump.Label == "" {
		emitter.Emit(jump.Loc(), "empty branch label")
	}
}

func (jump *Jump) String() string {
	return fmt.Sprintf("br %s(%s)", jump.Label, joinReferences(jump.Args))
}

// Conditional branch of the form:
//
//	cond_br <cond>, <true label>, <false label>( [args,]* )
//
// Both targets receive the same arguments, and must declare the same
// parameter types.
type ConditionalJump struct {
	controlFlowInstruction

	parseutil.StartEndPos

	Condition  *ValueReference
	TrueLabel  string
	FalseLabel string
	Args       []*ValueReference
}

var _ ControlFlowInstruction = &ConditionalJump{}
var _ Validator = &ConditionalJump{}

func (jump *ConditionalJump) Sources() []*ValueReference {
	return append([]*ValueReference{jump.Condition}, jump.Args...)
}

func (jump *ConditionalJump) Successors() []string {
	return []string{jump.TrueLabel, jump.FalseLabel}
}

func (jump *ConditionalJump) Walk(visitor Visitor) {
	visitor.Enter(jump)
	if jump.Condition != nil {
		jump.Condition.Walk(visitor)
	}
	for _, arg := range jump.Args {
		arg.Walk(visitor)
	}
	visitor.Exit(jump)
}

func (jump *ConditionalJump) Validate(emitter *parseutil.Emitter) {
	if jump.Condition == nil {
		emitter.Emit(jump.Loc(), "conditional branch requires a condition")
	}

	if jump.TrueLabel == "" || jump.FalseLabel == "" {
		emitter.Emit(jump.Loc(), "conditional branch requires two labels")
	}
}

func (jump *ConditionalJump) String() string {
	return fmt.Sprintf(
		"cond_br %s, %s, %s(%s)",
		jump.Condition,
		jump.TrueLabel,
		jump.FalseLabel,
		joinReferences(jump.Args))
}

// Instruction of the form: ret [values,]*
//
// The returned values must match the function's return types.
type Return struct {
	controlFlowInstruction

	parseutil.StartEndPos

	Values []*ValueReference
}

var _ ControlFlowInstruction = &Return{}

func (ret *Return) Sources() []*ValueReference {
	return ret.Values
}

func (Return) Successors() []string {
	return nil
}

func (ret *Return) Walk(visitor Visitor) {
	visitor.Enter(ret)
	for _, value := range ret.Values {
		value.Walk(visitor)
	}
	visitor.Exit(ret)
}

func (ret *Return) String() string {
	if len(ret.Values) == 0 {
		return "ret"
	}
	return fmt.Sprintf("ret %s", joinReferences(ret.Values))
}
