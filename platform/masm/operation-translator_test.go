package masm

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pattyshack/gt/parseutil"

	"github.com/pattyshack/gull/architecture"
	"github.com/pattyshack/gull/ast"
)

func TestTranslateStackOperations(t *testing.T) {
	tests := []struct {
		name     string
		op       architecture.Operation
		expected []string
	}{
		{
			"dup narrow",
			architecture.NewDupOp(3, 3, 1),
			[]string{"dup.3"},
		},
		{
			"dup wide",
			architecture.NewDupOp(1, 2, 4),
			[]string{"dup.5", "dup.5", "dup.5", "dup.5"},
		},
		{
			"movup narrow",
			architecture.NewMoveUpOp(4, 4, 1),
			[]string{"movup.4"},
		},
		{
			"movup one",
			architecture.NewMoveUpOp(1, 1, 1),
			[]string{"swap.1"},
		},
		{
			"movup wide",
			architecture.NewMoveUpOp(2, 3, 2),
			[]string{"movup.4", "movup.4"},
		},
		{
			"movdn narrow",
			architecture.NewMoveDownOp(5, 5, 1),
			[]string{"movdn.5"},
		},
		{
			"movdn one",
			architecture.NewMoveDownOp(1, 1, 1),
			[]string{"swap.1"},
		},
		{
			"movdn wide",
			architecture.NewMoveDownOp(2, 3, 2),
			[]string{"movdn.4", "movdn.4"},
		},
		{
			"swap narrow",
			architecture.NewSwapOp(3, 3, 1, 1),
			[]string{"swap.3"},
		},
		{
			// [a:2, b:1, c:2] -> [c:2, b:1, a:2]
			"swap wide",
			architecture.NewSwapOp(2, 3, 2, 2),
			[]string{"movdn.4", "movdn.4", "movup.2", "movup.2"},
		},
		{
			"drop wide",
			architecture.NewDropOp(4),
			[]string{"drop", "drop", "drop", "drop"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			instructions, err := NewPlatform().TranslateOperations(
				[]architecture.Operation{test.op})
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}

			if diff := cmp.Diff(test.expected, instructions); diff != "" {
				t.Errorf("unexpected instructions (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTranslateUnaddressableOperation(t *testing.T) {
	ops := []architecture.Operation{
		architecture.NewDupOp(15, 15, 1),
		architecture.NewDupOp(16, 16, 1),
	}

	_, err := NewPlatform().TranslateOperations(ops)
	if !errors.Is(err, ErrUnaddressable) {
		t.Errorf("expected unaddressable error, found %v", err)
	}

	// The deepest felt of a wide entry must be addressable.
	_, err = NewPlatform().TranslateOperations(
		[]architecture.Operation{architecture.NewMoveUpOp(3, 15, 2)})
	if !errors.Is(err, ErrUnaddressable) {
		t.Errorf("expected unaddressable error, found %v", err)
	}
}

func scalar(kind ast.ScalarTypeKind) ast.ScalarType {
	return ast.NewScalarType(kind, parseutil.StartEndPos{})
}

func typedRef(name string, kind ast.ScalarTypeKind) *ast.ValueReference {
	return &ast.ValueReference{
		Name: name,
		UseDef: &ast.ValueDefinition{
			Name: name,
			Type: scalar(kind),
		},
	}
}

func TestTranslateInstructions(t *testing.T) {
	binary := func(
		kind ast.BinaryOperationKind,
		valueType ast.ScalarTypeKind,
	) ast.Instruction {
		return &ast.BinaryOperation{
			Kind: kind,
			Dest: &ast.ValueDefinition{Name: "d"},
			Src1: typedRef("a", valueType),
			Src2: typedRef("b", valueType),
		}
	}

	unary := func(
		kind ast.UnaryOperationKind,
		valueType ast.ScalarTypeKind,
	) ast.Instruction {
		return &ast.UnaryOperation{
			Kind: kind,
			Dest: &ast.ValueDefinition{Name: "d"},
			Src:  typedRef("a", valueType),
		}
	}

	constant := func(kind ast.ScalarTypeKind, value uint64) ast.Instruction {
		return &ast.ConstOperation{
			Dest:  &ast.ValueDefinition{Name: "d", Type: scalar(kind)},
			Value: value,
		}
	}

	tests := []struct {
		name     string
		inst     ast.Instruction
		expected string
	}{
		{"felt const", constant(ast.Felt, 42), "push.42"},
		{"u64 const", constant(ast.U64, 0x0000000500000007), "push.7.5"},
		{"word const", constant(ast.Word, 1), "push.1.0.0.0"},
		{"felt add", binary(ast.Add, ast.Felt), "add"},
		{"i1 and", binary(ast.And, ast.I1), "and"},
		{"u32 add", binary(ast.Add, ast.U32), "u32wrapping_add"},
		{"u8 lt", binary(ast.Lt, ast.U8), "u32lt"},
		{"i32 mul", binary(ast.Mul, ast.I32), "u32wrapping_mul"},
		{"i16 lt", binary(ast.Lt, ast.I16), "exec.::intrinsics::i32::lt"},
		{"i32 div", binary(ast.Div, ast.I32), "exec.::intrinsics::i32::div"},
		{"u64 sub", binary(ast.Sub, ast.U64), "exec.::intrinsics::u64::wrapping_sub"},
		{"felt neg", unary(ast.Neg, ast.Felt), "neg"},
		{"i64 neg", unary(ast.Neg, ast.I64), "exec.::intrinsics::i64::wrapping_neg"},
		{"i1 not", unary(ast.Not, ast.I1), "not"},
		{"u16 not", unary(ast.Not, ast.U16), "u32not"},
		{"u128 not", unary(ast.Not, ast.U128), "exec.::intrinsics::u128::bnot"},
		{"assert", &ast.AssertOperation{Src: typedRef("a", ast.I1)}, "assert"},
		{"exec", &ast.ExecOperation{Callee: "foo::bar"}, "exec.foo::bar"},
		{"br", &ast.Jump{Label: "loop"}, "br.loop"},
		{
			"cond_br",
			&ast.ConditionalJump{
				Condition:  typedRef("c", ast.I1),
				TrueLabel:  "then",
				FalseLabel: "else",
			},
			"cond_br.then.else",
		},
		{"ret", &ast.Return{}, "ret"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			instructions, err := NewPlatform().TranslateOperations(
				[]architecture.Operation{
					architecture.NewExecuteInstructionOp(test.inst),
				})
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}

			if diff := cmp.Diff([]string{test.expected}, instructions); diff != "" {
				t.Errorf("unexpected instructions (-want +got):\n%s", diff)
			}
		})
	}
}
