package architecture

import (
	"testing"

	"github.com/pattyshack/gt/parseutil"

	"github.com/pattyshack/gull/ast"
)

func typedRef(name string, kind ast.ScalarTypeKind) *ast.ValueReference {
	return &ast.ValueReference{
		Name: name,
		UseDef: &ast.ValueDefinition{
			Name: name,
			Type: ast.NewScalarType(kind, parseutil.StartEndPos{}),
		},
	}
}

func operandNames(constraints *InstructionConstraints) []string {
	result := []string{}
	for _, ref := range constraints.Operands {
		result = append(result, ref.Name)
	}
	return result
}

func TestBinaryOperandOrder(t *testing.T) {
	sub := &ast.BinaryOperation{
		Kind: ast.Sub,
		Dest: &ast.ValueDefinition{Name: "d"},
		Src1: typedRef("lhs", ast.U64),
		Src2: typedRef("rhs", ast.U64),
	}

	constraints := NewInstructionConstraints(sub)
	names := operandNames(constraints)
	if len(names) != 2 || names[0] != "rhs" || names[1] != "lhs" {
		t.Errorf("right hand side must be on top: %v", names)
	}
	if constraints.Commutative || constraints.NumConsumed != 2 {
		t.Errorf("unexpected constraints: %+v", constraints)
	}
	if constraints.OperandFelts() != 4 {
		t.Errorf("unexpected operand felts: %d", constraints.OperandFelts())
	}

	sub.Kind = ast.Mul
	if !NewInstructionConstraints(sub).Commutative {
		t.Errorf("mul is commutative")
	}
}

func TestTerminatorConstraints(t *testing.T) {
	cond := &ast.ConditionalJump{
		Condition:  typedRef("c", ast.I1),
		TrueLabel:  "a",
		FalseLabel: "b",
		Args:       []*ast.ValueReference{typedRef("x", ast.Word)},
	}

	constraints := NewInstructionConstraints(cond)
	names := operandNames(constraints)
	if len(names) != 2 || names[0] != "c" || names[1] != "x" {
		t.Errorf("condition must be on top: %v", names)
	}
	if !constraints.ExactStack || constraints.NumConsumed != 1 {
		t.Errorf("unexpected constraints: %+v", constraints)
	}
	if constraints.OperandFelts() != 5 {
		t.Errorf("unexpected operand felts: %d", constraints.OperandFelts())
	}

	ret := NewInstructionConstraints(&ast.Return{})
	if !ret.ExactStack || ret.NumConsumed != 0 {
		t.Errorf("unexpected return constraints: %+v", ret)
	}
}

func TestExecConstraints(t *testing.T) {
	exec := &ast.ExecOperation{
		Callee: "f",
		Dests: []*ast.ValueDefinition{
			{Name: "r", Type: ast.NewScalarType(ast.U256, parseutil.StartEndPos{})},
		},
		Args: []*ast.ValueReference{typedRef("a", ast.Felt), typedRef("b", ast.I128)},
	}

	constraints := NewInstructionConstraints(exec)
	if constraints.NumConsumed != 2 || constraints.ExactStack {
		t.Errorf("unexpected constraints: %+v", constraints)
	}
	if constraints.OperandFelts() != 5 || constraints.ResultFelts() != 8 {
		t.Errorf(
			"unexpected felts: %d %d",
			constraints.OperandFelts(),
			constraints.ResultFelts())
	}
}
