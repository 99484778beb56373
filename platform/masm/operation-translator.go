package masm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pattyshack/gull/architecture"
	"github.com/pattyshack/gull/ast"
)

var (
	ErrUnaddressable = errors.New("felt index outside of the addressable window")
)

// Logical stack operations on multi-felt values expand into one felt level
// instruction per felt.  Multi-felt values are laid out with the most
// significant limb on top.
type operationTranslator struct {
	instructions []string
}

func (translator *operationTranslator) emit(instructions ...string) {
	translator.instructions = append(translator.instructions, instructions...)
}

func (translator *operationTranslator) emitN(count int, instruction string) {
	for i := 0; i < count; i++ {
		translator.emit(instruction)
	}
}

// Returns the felt level instruction, e.g., dup.3.  movup.1 / movdn.1 are
// rendered as swap.1.  An empty string indicates a no-op.
func (translator *operationTranslator) indexed(
	op architecture.Operation,
	mnemonic string,
	feltIndex int,
) (
	string,
	error,
) {
	if feltIndex < 0 || feltIndex > architecture.MaxFeltIndex {
		return "", fmt.Errorf(
			"%w: %s requires %s.%d",
			ErrUnaddressable,
			op,
			mnemonic,
			feltIndex)
	}

	switch mnemonic {
	case "movup", "movdn":
		if feltIndex == 0 {
			return "", nil
		} else if feltIndex == 1 {
			return "swap.1", nil
		}
	}

	return mnemonic + "." + strconv.Itoa(feltIndex), nil
}

func (translator *operationTranslator) emitIndexed(
	op architecture.Operation,
	count int,
	mnemonic string,
	feltIndex int,
) error {
	instruction, err := translator.indexed(op, mnemonic, feltIndex)
	if err != nil {
		return err
	}

	if instruction != "" {
		translator.emitN(count, instruction)
	}
	return nil
}

func (translator *operationTranslator) translate(
	op architecture.Operation,
) error {
	switch op.Kind {
	case architecture.ExecuteInstruction:
		translator.emit(translateInstruction(op.Instruction)...)
		return nil
	case architecture.Dup:
		return translator.emitIndexed(
			op,
			op.FeltWidth,
			"dup",
			op.FeltOffset+op.FeltWidth-1)
	case architecture.MoveUp:
		return translator.emitIndexed(
			op,
			op.FeltWidth,
			"movup",
			op.FeltOffset+op.FeltWidth-1)
	case architecture.MoveDown:
		return translator.emitIndexed(
			op,
			op.FeltWidth,
			"movdn",
			op.FeltOffset+op.FeltWidth-1)
	case architecture.Swap:
		return translator.translateSwap(op)
	case architecture.Drop:
		translator.emitN(op.FeltWidth, "drop")
		return nil
	}

	panic("unhandled operation kind: " + string(op.Kind))
}

// Single felt swaps map directly onto swap.  Otherwise, the top entry is
// moved down to the other entry's position, and the other entry (now one
// position shallower) is moved up.
func (translator *operationTranslator) translateSwap(
	op architecture.Operation,
) error {
	if op.FeltWidth == 1 && op.TopFeltWidth == 1 {
		return translator.emitIndexed(op, 1, "swap", op.FeltOffset)
	}

	depth := op.FeltOffset - op.TopFeltWidth + op.FeltWidth
	err := translator.emitIndexed(
		op,
		op.TopFeltWidth,
		"movdn",
		depth+op.TopFeltWidth-1)
	if err != nil {
		return err
	}

	return translator.emitIndexed(op, op.FeltWidth, "movup", depth-1)
}

func translateInstruction(in ast.Instruction) []string {
	switch inst := in.(type) {
	case *ast.ConstOperation:
		return []string{translateConst(inst)}
	case *ast.UnaryOperation:
		return []string{translateUnary(inst)}
	case *ast.BinaryOperation:
		return []string{translateBinary(inst)}
	case *ast.AssertOperation:
		return []string{"assert"}
	case *ast.ExecOperation:
		return []string{"exec." + inst.Callee}
	case *ast.Jump:
		return []string{"br." + inst.Label}
	case *ast.ConditionalJump:
		return []string{"cond_br." + inst.TrueLabel + "." + inst.FalseLabel}
	case *ast.Return:
		return []string{"ret"}
	}

	panic(fmt.Sprintf("should never reach here: %s", in.Loc()))
}

func scalarKind(valueType ast.Type) ast.ScalarTypeKind {
	scalar, ok := valueType.(ast.ScalarType)
	if !ok {
		panic("should never happen")
	}
	return scalar.Kind
}

// Values wider than a felt are pushed as 32-bit limbs, least significant limb
// first (i.e., the most significant limb ends up on top).
func translateConst(inst *ast.ConstOperation) string {
	width := architecture.FeltSize(inst.Dest.Type)
	if width == 1 {
		return "push." + strconv.FormatUint(inst.Value, 10)
	}

	limbs := make([]string, 0, width)
	value := inst.Value
	for i := 0; i < width; i++ {
		limbs = append(limbs, strconv.FormatUint(value&0xFFFFFFFF, 10))
		value >>= 32
	}
	return "push." + strings.Join(limbs, ".")
}

func isU32Family(kind ast.ScalarTypeKind) bool {
	switch kind {
	case ast.U8, ast.U16, ast.U32, ast.Ptr:
		return true
	}
	return false
}

func isI32Family(kind ast.ScalarTypeKind) bool {
	switch kind {
	case ast.I8, ast.I16, ast.I32:
		return true
	}
	return false
}

func intrinsic(kind ast.ScalarTypeKind, name string) string {
	return fmt.Sprintf("exec.::intrinsics::%s::%s", kind, name)
}

func translateUnary(inst *ast.UnaryOperation) string {
	kind := scalarKind(inst.Src.Type())
	switch inst.Kind {
	case ast.Neg:
		if kind == ast.Felt {
			return "neg"
		}
		return intrinsic(kind, "wrapping_neg")
	case ast.Not:
		if kind == ast.I1 {
			return "not"
		} else if isU32Family(kind) || isI32Family(kind) {
			return "u32not"
		}
		return intrinsic(kind, "bnot")
	}

	panic("unhandled unary operation kind: " + string(inst.Kind))
}

var (
	u32Mnemonics = map[ast.BinaryOperationKind]string{
		ast.Add: "u32wrapping_add",
		ast.Sub: "u32wrapping_sub",
		ast.Mul: "u32wrapping_mul",
		ast.Div: "u32div",
		ast.And: "u32and",
		ast.Or:  "u32or",
		ast.Xor: "u32xor",
		ast.Eq:  "eq",
		ast.Neq: "neq",
		ast.Lt:  "u32lt",
		ast.Lte: "u32lte",
		ast.Gt:  "u32gt",
		ast.Gte: "u32gte",
	}

	// Signed 32-bit (and narrower) operations which share the unsigned
	// encoding.
	i32Mnemonics = map[ast.BinaryOperationKind]string{
		ast.Add: "u32wrapping_add",
		ast.Sub: "u32wrapping_sub",
		ast.Mul: "u32wrapping_mul",
		ast.And: "u32and",
		ast.Or:  "u32or",
		ast.Xor: "u32xor",
		ast.Eq:  "eq",
		ast.Neq: "neq",
	}

	intrinsicNames = map[ast.BinaryOperationKind]string{
		ast.Add: "wrapping_add",
		ast.Sub: "wrapping_sub",
		ast.Mul: "wrapping_mul",
		ast.Div: "div",
		ast.And: "and",
		ast.Or:  "or",
		ast.Xor: "xor",
		ast.Eq:  "eq",
		ast.Neq: "neq",
		ast.Lt:  "lt",
		ast.Lte: "lte",
		ast.Gt:  "gt",
		ast.Gte: "gte",
	}
)

func translateBinary(inst *ast.BinaryOperation) string {
	kind := scalarKind(inst.Src1.Type())
	switch {
	case kind == ast.Felt || kind == ast.I1:
		return string(inst.Kind)
	case isU32Family(kind):
		return u32Mnemonics[inst.Kind]
	case isI32Family(kind):
		mnemonic, ok := i32Mnemonics[inst.Kind]
		if ok {
			return mnemonic
		}
		return intrinsic(ast.I32, intrinsicNames[inst.Kind])
	}

	return intrinsic(kind, intrinsicNames[inst.Kind])
}
