package architecture

import (
	"github.com/pattyshack/gull/ast"
)

const (
	// Only the top 16 felts of the operand stack are directly addressable by
	// stack manipulation instructions.
	StackWindowFelts = 16

	// Largest felt index encodable by dup / swap / movup / movdn.
	MaxFeltIndex = StackWindowFelts - 1

	FeltsPerWord = 4
)

// The number of felts the value occupies on the operand stack.
func FeltSize(valType ast.Type) int {
	switch valueType := valType.(type) {
	case ast.ErrorType:
		panic("error type has no size")
	case ast.ScalarType:
		switch valueType.Kind {
		case ast.Felt, ast.I1, ast.Ptr,
			ast.I8, ast.I16, ast.I32,
			ast.U8, ast.U16, ast.U32:
			return 1
		case ast.I64, ast.U64:
			return 2
		case ast.I128, ast.U128, ast.Word:
			return FeltsPerWord
		case ast.U256:
			return 2 * FeltsPerWord
		default:
			panic("should never reach here")
		}
	default:
		panic("unhandled type")
	}
}
