package analyzer

import (
	"math"

	"github.com/pattyshack/gt/parseutil"

	"github.com/pattyshack/gull/analyzer/util"
	"github.com/pattyshack/gull/ast"
)

// The field modulus, 2^64 - 2^32 + 1.
const feltModulus = uint64(0xFFFFFFFF00000001)

type typeChecker struct {
	*parseutil.Emitter

	signatures map[string]*ast.FunctionDefinition
}

func CheckTypes(
	emitter *parseutil.Emitter,
	signatures map[string]*ast.FunctionDefinition,
) util.Pass[*ast.FunctionDefinition] {
	return &typeChecker{
		Emitter:    emitter,
		signatures: signatures,
	}
}

func (checker *typeChecker) Process(funcDef *ast.FunctionDefinition) {
	// Instruction destinations are inferred in instruction order; a block's
	// values never flow into another block except through parameters, which
	// are explicitly typed.  Unreachable blocks are checked last.
	dfsOrder, reachable := util.DFS(funcDef)
	for _, block := range funcDef.Blocks {
		_, ok := reachable[block]
		if !ok {
			dfsOrder = append(dfsOrder, block)
		}
	}

	for _, block := range dfsOrder {
		for _, inst := range block.Instructions {
			checker.checkInstruction(funcDef, inst)
		}
	}
}

// Returns false if any of the references is unbound or untyped (the error
// was previously emitted).
func (checker *typeChecker) isTyped(refs ...*ast.ValueReference) bool {
	for _, ref := range refs {
		if ref.Type() == nil || ast.IsErrorType(ref.Type()) {
			return false
		}
	}
	return true
}

func (checker *typeChecker) bindDestType(
	dest *ast.ValueDefinition,
	inferred ast.Type,
) {
	if dest.Type == nil {
		dest.Type = inferred
		return
	}

	if ast.IsErrorType(inferred) || dest.Type.Equals(inferred) {
		return
	}

	checker.Emit(
		dest.Loc(),
		"value (%s) declared as %s, but instruction produces %s",
		dest.Name,
		dest.Type,
		inferred)
	dest.Type = ast.NewErrorType(dest.StartEndPos)
}

func (checker *typeChecker) checkInstruction(
	funcDef *ast.FunctionDefinition,
	in ast.Instruction,
) {
	switch inst := in.(type) {
	case *ast.ConstOperation:
		checker.checkConst(inst)
	case *ast.UnaryOperation:
		checker.checkUnary(inst)
	case *ast.BinaryOperation:
		checker.checkBinary(inst)
	case *ast.AssertOperation:
		if checker.isTyped(inst.Src) && !ast.IsBoolType(inst.Src.Type()) {
			checker.Emit(
				inst.Src.Loc(),
				"assert requires an i1 operand, found %s (%s)",
				inst.Src.Type(),
				inst.Src.Name)
		}
	case *ast.ExecOperation:
		checker.checkExec(inst)
	case *ast.Jump:
		checker.checkBranchArgs(inst, inst.Label, inst.Args)
	case *ast.ConditionalJump:
		if checker.isTyped(inst.Condition) &&
			!ast.IsBoolType(inst.Condition.Type()) {

			checker.Emit(
				inst.Condition.Loc(),
				"branch condition must be i1, found %s (%s)",
				inst.Condition.Type(),
				inst.Condition.Name)
		}
		checker.checkBranchArgs(inst, inst.TrueLabel, inst.Args)
		checker.checkBranchArgs(inst, inst.FalseLabel, inst.Args)
	case *ast.Return:
		checker.checkValues(
			inst,
			"return",
			inst.Values,
			funcDef.ReturnTypes)
	default:
		panic("should never reach here")
	}
}

func (checker *typeChecker) checkConst(inst *ast.ConstOperation) {
	scalar, ok := inst.Dest.Type.(ast.ScalarType)
	if !ok {
		return
	}

	limit := uint64(math.MaxUint64)
	switch scalar.Kind {
	case ast.Felt:
		limit = feltModulus - 1
	case ast.I1:
		limit = 1
	case ast.I8, ast.U8:
		limit = math.MaxUint8
	case ast.I16, ast.U16:
		limit = math.MaxUint16
	case ast.I32, ast.U32, ast.Ptr:
		limit = math.MaxUint32
	}

	if inst.Value > limit {
		checker.Emit(
			inst.Loc(),
			"constant (%d) out of range for %s",
			inst.Value,
			scalar)
	}
}

func (checker *typeChecker) checkUnary(inst *ast.UnaryOperation) {
	if !checker.isTyped(inst.Src) {
		inst.Dest.Type = ast.NewErrorType(inst.Dest.StartEndPos)
		return
	}

	srcType := inst.Src.Type()
	valid := false
	switch inst.Kind {
	case ast.Neg:
		valid = ast.IsSignedIntType(srcType) ||
			srcType.Equals(ast.ScalarType{Kind: ast.Felt})
	case ast.Not:
		valid = ast.IsBitwiseType(srcType)
	}

	if !valid {
		checker.Emit(
			inst.Loc(),
			"%s does not support %s operand (%s)",
			inst.Kind,
			srcType,
			inst.Src.Name)
		inst.Dest.Type = ast.NewErrorType(inst.Dest.StartEndPos)
		return
	}

	checker.bindDestType(inst.Dest, srcType)
}

func (checker *typeChecker) checkBinary(inst *ast.BinaryOperation) {
	if !checker.isTyped(inst.Src1, inst.Src2) {
		inst.Dest.Type = ast.NewErrorType(inst.Dest.StartEndPos)
		return
	}

	lhs := inst.Src1.Type()
	rhs := inst.Src2.Type()
	if !lhs.Equals(rhs) {
		checker.Emit(
			inst.Loc(),
			"%s operands have mismatched types (%s vs %s)",
			inst.Kind,
			lhs,
			rhs)
		inst.Dest.Type = ast.NewErrorType(inst.Dest.StartEndPos)
		return
	}

	valid := false
	switch inst.Kind {
	case ast.Add, ast.Sub, ast.Mul, ast.Div, ast.Lt, ast.Lte, ast.Gt, ast.Gte:
		valid = ast.IsNumberType(lhs)
	case ast.And, ast.Or, ast.Xor:
		valid = ast.IsBitwiseType(lhs)
	case ast.Eq, ast.Neq:
		valid = true
	}

	if !valid {
		checker.Emit(
			inst.Loc(),
			"%s does not support %s operands",
			inst.Kind,
			lhs)
		inst.Dest.Type = ast.NewErrorType(inst.Dest.StartEndPos)
		return
	}

	if inst.IsComparison() {
		checker.bindDestType(
			inst.Dest,
			ast.NewScalarType(ast.I1, inst.Dest.StartEndPos))
	} else {
		checker.bindDestType(inst.Dest, lhs)
	}
}

func (checker *typeChecker) checkExec(inst *ast.ExecOperation) {
	callee, ok := checker.signatures[inst.Callee]
	if !ok { // external procedure
		return
	}

	paramTypes := make([]ast.Type, 0, len(callee.Parameters))
	for _, param := range callee.Parameters {
		paramTypes = append(paramTypes, param.Type)
	}
	checker.checkValues(inst, "exec."+inst.Callee+" argument", inst.Args, paramTypes)

	if len(inst.Dests) != len(callee.ReturnTypes) {
		checker.Emit(
			inst.Loc(),
			"exec.%s returns %d value(s), but %d destination(s) given",
			inst.Callee,
			len(callee.ReturnTypes),
			len(inst.Dests))
		return
	}

	for idx, dest := range inst.Dests {
		expected := callee.ReturnTypes[idx]
		if dest.Type != nil && expected != nil && !dest.Type.Equals(expected) {
			checker.Emit(
				dest.Loc(),
				"exec.%s destination (%s) declared as %s, but callee returns %s",
				inst.Callee,
				dest.Name,
				dest.Type,
				expected)
		}
	}
}

func (checker *typeChecker) checkBranchArgs(
	inst ast.Instruction,
	label string,
	args []*ast.ValueReference,
) {
	block := inst.ParentBlock()
	var target *ast.Block
	for _, child := range block.Children {
		if child.Label == label {
			target = child
			break
		}
	}

	if target == nil { // undefined label.  error previously emitted
		return
	}

	paramTypes := make([]ast.Type, 0, len(target.Parameters))
	for _, param := range target.Parameters {
		paramTypes = append(paramTypes, param.Type)
	}
	checker.checkValues(inst, "block ("+label+") argument", args, paramTypes)
}

func (checker *typeChecker) checkValues(
	inst ast.Instruction,
	kind string,
	values []*ast.ValueReference,
	expected []ast.Type,
) {
	if len(values) != len(expected) {
		checker.Emit(
			inst.Loc(),
			"expected %d %s value(s), found %d",
			len(expected),
			kind,
			len(values))
		return
	}

	for idx, value := range values {
		if !checker.isTyped(value) || expected[idx] == nil {
			continue
		}

		if !value.Type().Equals(expected[idx]) {
			checker.Emit(
				value.Loc(),
				"%s value (%s) has type %s, expected %s",
				kind,
				value.Name,
				value.Type(),
				expected[idx])
		}
	}
}
