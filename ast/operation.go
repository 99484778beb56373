package ast

import (
	"fmt"
	"math"
	"strings"

	"github.com/pattyshack/gt/parseutil"
)

// Instruction of the form: <dest> = const <value>
//
// dest must be explicitly typed.
type ConstOperation struct {
	instruction

	parseutil.StartEndPos

	Dest  *ValueDefinition
	Value uint64
}

var _ Instruction = &ConstOperation{}
var _ Validator = &ConstOperation{}

func (op *ConstOperation) Destinations() []*ValueDefinition {
	return []*ValueDefinition{op.Dest}
}

func (op *ConstOperation) Walk(visitor Visitor) {
	visitor.Enter(op)
	op.Dest.Walk(visitor)
	visitor.Exit(op)
}

func (op *ConstOperation) Validate(emitter *parseutil.Emitter) {
	if op.Dest.Type == nil {
		emitter.Emit(
			op.Dest.Loc(),
			"const destination (%s) must be explicitly typed",
			op.Dest.Name)
	}
}

func (op *ConstOperation) String() string {
	return fmt.Sprintf("%s = const %d", op.Dest, op.Value)
}

type UnaryOperationKind string

const (
	Neg = UnaryOperationKind("neg")
	Not = UnaryOperationKind("not")
)

// Instructions of the form: <dest> = <op> <src>
type UnaryOperation struct {
	instruction

	parseutil.StartEndPos

	Kind UnaryOperationKind

	Dest *ValueDefinition
	Src  *ValueReference
}

var _ Instruction = &UnaryOperation{}
var _ Validator = &UnaryOperation{}

func (unary *UnaryOperation) Sources() []*ValueReference {
	return []*ValueReference{unary.Src}
}

func (unary *UnaryOperation) Destinations() []*ValueDefinition {
	return []*ValueDefinition{unary.Dest}
}

func (unary *UnaryOperation) Walk(visitor Visitor) {
	visitor.Enter(unary)
	unary.Dest.Walk(visitor)
	unary.Src.Walk(visitor)
	visitor.Exit(unary)
}

func (unary *UnaryOperation) Validate(emitter *parseutil.Emitter) {
	switch unary.Kind {
	case Neg, Not: // ok
	default:
		emitter.Emit(unary.Loc(), "unexpected unary operation (%s)", unary.Kind)
	}
}

func (unary *UnaryOperation) String() string {
	return fmt.Sprintf("%s = %s %s", unary.Dest, unary.Kind, unary.Src)
}

type BinaryOperationKind string

const (
	Add = BinaryOperationKind("add")
	Sub = BinaryOperationKind("sub")
	Mul = BinaryOperationKind("mul")
	Div = BinaryOperationKind("div")

	And = BinaryOperationKind("and")
	Or  = BinaryOperationKind("or")
	Xor = BinaryOperationKind("xor")

	// Comparisons evaluate to i1.
	Eq  = BinaryOperationKind("eq")
	Neq = BinaryOperationKind("neq")
	Lt  = BinaryOperationKind("lt")
	Lte = BinaryOperationKind("lte")
	Gt  = BinaryOperationKind("gt")
	Gte = BinaryOperationKind("gte")
)

// Instructions of the form: <dest> = <op> <src1>, <src2>
//
// src1 is the left hand side operand.
type BinaryOperation struct {
	instruction

	parseutil.StartEndPos

	Kind BinaryOperationKind

	Dest *ValueDefinition
	Src1 *ValueReference
	Src2 *ValueReference
}

var _ Instruction = &BinaryOperation{}
var _ Validator = &BinaryOperation{}

func (binary *BinaryOperation) Sources() []*ValueReference {
	return []*ValueReference{binary.Src1, binary.Src2}
}

func (binary *BinaryOperation) Destinations() []*ValueDefinition {
	return []*ValueDefinition{binary.Dest}
}

func (binary *BinaryOperation) Walk(visitor Visitor) {
	visitor.Enter(binary)
	binary.Dest.Walk(visitor)
	binary.Src1.Walk(visitor)
	binary.Src2.Walk(visitor)
	visitor.Exit(binary)
}

func (binary *BinaryOperation) Validate(emitter *parseutil.Emitter) {
	switch binary.Kind {
	case Add, Sub, Mul, Div, And, Or, Xor, Eq, Neq, Lt, Lte, Gt, Gte: // ok
	default:
		emitter.Emit(binary.Loc(), "unexpected binary operation (%s)", binary.Kind)
	}
}

func (binary *BinaryOperation) IsCommutative() bool {
	switch binary.Kind {
	case Add, Mul, And, Or, Xor, Eq, Neq:
		return true
	}
	return false
}

func (binary *BinaryOperation) IsComparison() bool {
	switch binary.Kind {
	case Eq, Neq, Lt, Lte, Gt, Gte:
		return true
	}
	return false
}

func (binary *BinaryOperation) String() string {
	return fmt.Sprintf(
		"%s = %s %s, %s",
		binary.Dest,
		binary.Kind,
		binary.Src1,
		binary.Src2)
}

// Instruction of the form: assert <src>
//
// src must be an i1.
type AssertOperation struct {
	instruction

	parseutil.StartEndPos

	Src *ValueReference
}

var _ Instruction = &AssertOperation{}

func (op *AssertOperation) Sources() []*ValueReference {
	return []*ValueReference{op.Src}
}

func (op *AssertOperation) Walk(visitor Visitor) {
	visitor.Enter(op)
	op.Src.Walk(visitor)
	visitor.Exit(op)
}

func (op *AssertOperation) String() string {
	return fmt.Sprintf("assert %s", op.Src)
}

// Invocation of an external procedure, of the form:
//
//	[dests]* = exec <callee> ( [args,]* )
//
// The first argument is expected on top of the stack, and the first
// destination is left on top of the stack.  Destinations must be explicitly
// typed.
type ExecOperation struct {
	instruction

	parseutil.StartEndPos

	Callee string
	Dests  []*ValueDefinition
	Args   []*ValueReference
}

var _ Instruction = &ExecOperation{}
var _ Validator = &ExecOperation{}

func (exec *ExecOperation) Sources() []*ValueReference {
	return exec.Args
}

func (exec *ExecOperation) Destinations() []*ValueDefinition {
	return exec.Dests
}

func (exec *ExecOperation) Walk(visitor Visitor) {
	visitor.Enter(exec)
	for _, dest := range exec.Dests {
		dest.Walk(visitor)
	}
	for _, arg := range exec.Args {
		arg.Walk(visitor)
	}
	visitor.Exit(exec)
}

func (exec *ExecOperation) Validate(emitter *parseutil.Emitter) {
	if exec.Callee == "" {
		emitter.Emit(exec.Loc(), "empty exec callee")
	}

	for _, dest := range exec.Dests {
		if dest.Type == nil {
			emitter.Emit(
				dest.Loc(),
				"exec destination (%s) must be explicitly typed",
				dest.Name)
		}
	}

	if len(exec.Args) > math.MaxUint8 {
		emitter.Emit(exec.Loc(), "too many exec arguments")
	}
}

func (exec *ExecOperation) String() string {
	dests := []string{}
	for _, dest := range exec.Dests {
		dests = append(dests, dest.String())
	}

	result := ""
	if len(dests) > 0 {
		result = strings.Join(dests, ", ") + " = "
	}

	return result + fmt.Sprintf(
		"exec %s(%s)",
		exec.Callee,
		joinReferences(exec.Args))
}

func joinReferences(refs []*ValueReference) string {
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, ref.Name)
	}
	return strings.Join(names, ", ")
}
