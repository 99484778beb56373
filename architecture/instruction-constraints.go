package architecture

import (
	"fmt"

	"github.com/pattyshack/gull/ast"
)

// InstructionConstraints specifies an instruction's operand stack layout.
//
// Note: do not manually modify the fields.
type InstructionConstraints struct {
	// The instruction's operands in the order they must appear on the stack,
	// top to bottom.
	Operands []*ast.ValueReference

	// The number of leading operands popped by the instruction.  The remaining
	// operands are left on the stack (e.g., block arguments).
	NumConsumed int

	// The order of the (exactly two) operands does not matter.
	Commutative bool

	// When true, the stack must hold exactly the operands once the operands
	// are in place.  i.e., every other entry must be dropped beforehand.
	ExactStack bool

	// Values pushed by the instruction, top to bottom.
	Results []*ast.ValueDefinition
}

func NewInstructionConstraints(in ast.Instruction) *InstructionConstraints {
	switch inst := in.(type) {
	case *ast.ConstOperation:
		return &InstructionConstraints{
			Results: []*ast.ValueDefinition{inst.Dest},
		}
	case *ast.UnaryOperation:
		return &InstructionConstraints{
			Operands:    []*ast.ValueReference{inst.Src},
			NumConsumed: 1,
			Results:     []*ast.ValueDefinition{inst.Dest},
		}
	case *ast.BinaryOperation:
		// Binary instructions expect the right hand side operand on top of the
		// stack.
		return &InstructionConstraints{
			Operands:    []*ast.ValueReference{inst.Src2, inst.Src1},
			NumConsumed: 2,
			Commutative: inst.IsCommutative(),
			Results:     []*ast.ValueDefinition{inst.Dest},
		}
	case *ast.AssertOperation:
		return &InstructionConstraints{
			Operands:    []*ast.ValueReference{inst.Src},
			NumConsumed: 1,
		}
	case *ast.ExecOperation:
		return &InstructionConstraints{
			Operands:    inst.Args,
			NumConsumed: len(inst.Args),
			Results:     inst.Dests,
		}
	case *ast.Jump:
		return &InstructionConstraints{
			Operands:   inst.Args,
			ExactStack: true,
		}
	case *ast.ConditionalJump:
		return &InstructionConstraints{
			Operands:    inst.Sources(),
			NumConsumed: 1,
			ExactStack:  true,
		}
	case *ast.Return:
		return &InstructionConstraints{
			Operands:   inst.Values,
			ExactStack: true,
		}
	}

	panic(fmt.Sprintf("should never reach here: %s", in.Loc()))
}

func (constraints *InstructionConstraints) OperandFelts() int {
	felts := 0
	for _, operand := range constraints.Operands {
		felts += FeltSize(operand.Type())
	}
	return felts
}

func (constraints *InstructionConstraints) ResultFelts() int {
	felts := 0
	for _, result := range constraints.Results {
		felts += FeltSize(result.Type)
	}
	return felts
}
