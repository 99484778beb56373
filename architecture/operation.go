package architecture

import (
	"fmt"

	"github.com/pattyshack/gull/ast"
)

type OperationKind string

const (
	ExecuteInstruction = OperationKind("ExecuteInstruction")

	// The following are scheduler generated stack manipulation operations.
	// Index is always a logical stack entry index (0 is the top), and the felt
	// fields describe the entries' physical layout at the time the operation
	// executes.

	Dup      = OperationKind("Dup")
	Swap     = OperationKind("Swap")
	MoveUp   = OperationKind("MoveUp")
	MoveDown = OperationKind("MoveDown")
	Drop     = OperationKind("Drop")
)

type Operation struct {
	Kind OperationKind

	// Used by all stack manipulation operations except Drop.
	Index int

	// Dup / MoveUp / Swap: felt offset of entry Index.
	// MoveDown: felt width of entries 1 through Index (inclusive).
	FeltOffset int

	// Dup / MoveUp / Swap: felt width of entry Index.
	// MoveDown / Drop: felt width of the top entry.
	FeltWidth int

	// Swap: felt width of the top entry.
	TopFeltWidth int

	// Used by ExecuteInstruction
	ast.Instruction
}

func NewExecuteInstructionOp(inst ast.Instruction) Operation {
	return Operation{
		Kind:        ExecuteInstruction,
		Instruction: inst,
	}
}

func NewDupOp(index int, feltOffset int, feltWidth int) Operation {
	return Operation{
		Kind:       Dup,
		Index:      index,
		FeltOffset: feltOffset,
		FeltWidth:  feltWidth,
	}
}

func NewSwapOp(
	index int,
	feltOffset int,
	feltWidth int,
	topFeltWidth int,
) Operation {
	return Operation{
		Kind:         Swap,
		Index:        index,
		FeltOffset:   feltOffset,
		FeltWidth:    feltWidth,
		TopFeltWidth: topFeltWidth,
	}
}

func NewMoveUpOp(index int, feltOffset int, feltWidth int) Operation {
	return Operation{
		Kind:       MoveUp,
		Index:      index,
		FeltOffset: feltOffset,
		FeltWidth:  feltWidth,
	}
}

func NewMoveDownOp(index int, feltDepth int, topFeltWidth int) Operation {
	return Operation{
		Kind:       MoveDown,
		Index:      index,
		FeltOffset: feltDepth,
		FeltWidth:  topFeltWidth,
	}
}

func NewDropOp(feltWidth int) Operation {
	return Operation{
		Kind:      Drop,
		FeltWidth: feltWidth,
	}
}

func (op Operation) String() string {
	switch op.Kind {
	case ExecuteInstruction:
		return fmt.Sprint(op.Instruction)
	case Drop:
		return fmt.Sprintf("%s (w=%d)", op.Kind, op.FeltWidth)
	default:
		return fmt.Sprintf(
			"%s %d (felt=%d w=%d)",
			op.Kind,
			op.Index,
			op.FeltOffset,
			op.FeltWidth)
	}
}
