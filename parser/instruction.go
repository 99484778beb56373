package parser

import (
	"gopkg.in/yaml.v3"

	"github.com/pattyshack/gull/ast"
)

// Instructions are mappings keyed by op:
//
//	{op: const, dest: {<name>: <type>}, value: <uint>}
//	{op: neg|not, dest: <name>, args: [<src>]}
//	{op: add|sub|mul|div|and|or|xor|eq|neq|lt|lte|gt|gte,
//	 dest: <name>, args: [<lhs>, <rhs>]}
//	{op: assert, args: [<src>]}
//	{op: exec, callee: <name>, dests: [{<name>: <type>}, ...], args: [...]}
//	{op: br, target: <label>, args: [...]}
//	{op: cond_br, targets: [<true label>, <false label>], args: [<cond>, ...]}
//	{op: ret, args: [...]}
func (parser *parser) parseInstruction(node *yaml.Node) ast.Instruction {
	fields, ok := parser.fields(
		node,
		"instruction",
		"op",
		"dest",
		"dests",
		"args",
		"value",
		"callee",
		"target",
		"targets")
	if !ok {
		return nil
	}

	opNode := fields["op"]
	if opNode == nil {
		parser.emit(node, "instruction is missing op")
		return nil
	}

	op, ok := parser.scalar(opNode, "op")
	if !ok {
		return nil
	}

	pos := parser.pos(node)
	args := parser.parseReferences(fields["args"])

	switch op {
	case "const":
		dest := parser.parseDest(node, fields)
		value, ok := parser.parseUint(fields["value"])
		if dest == nil || !ok {
			if fields["value"] == nil {
				parser.emit(node, "const requires a value")
			}
			return nil
		}

		return &ast.ConstOperation{
			StartEndPos: pos,
			Dest:        dest,
			Value:       value,
		}

	case string(ast.Neg), string(ast.Not):
		dest := parser.parseDest(node, fields)
		if dest == nil || !parser.checkArity(node, op, args, 1) {
			return nil
		}

		return &ast.UnaryOperation{
			StartEndPos: pos,
			Kind:        ast.UnaryOperationKind(op),
			Dest:        dest,
			Src:         args[0],
		}

	case string(ast.Add), string(ast.Sub), string(ast.Mul), string(ast.Div),
		string(ast.And), string(ast.Or), string(ast.Xor),
		string(ast.Eq), string(ast.Neq),
		string(ast.Lt), string(ast.Lte), string(ast.Gt), string(ast.Gte):

		dest := parser.parseDest(node, fields)
		if dest == nil || !parser.checkArity(node, op, args, 2) {
			return nil
		}

		return &ast.BinaryOperation{
			StartEndPos: pos,
			Kind:        ast.BinaryOperationKind(op),
			Dest:        dest,
			Src1:        args[0],
			Src2:        args[1],
		}

	case "assert":
		if !parser.checkArity(node, op, args, 1) {
			return nil
		}

		return &ast.AssertOperation{
			StartEndPos: pos,
			Src:         args[0],
		}

	case "exec":
		callee, _ := parser.scalar(fields["callee"], "callee")
		return &ast.ExecOperation{
			StartEndPos: pos,
			Callee:      callee,
			Dests:       parser.parseParameters(fields["dests"]),
			Args:        args,
		}

	case "br":
		label, ok := parser.scalar(fields["target"], "target")
		if !ok {
			parser.emit(node, "br requires a target")
			return nil
		}

		return &ast.Jump{
			StartEndPos: pos,
			Label:       label,
			Args:        args,
		}

	case "cond_br":
		targets := parser.sequence(fields["targets"], "target")
		if len(targets) != 2 {
			parser.emit(node, "cond_br requires exactly two targets")
			return nil
		}

		trueLabel, ok1 := parser.scalar(targets[0], "target")
		falseLabel, ok2 := parser.scalar(targets[1], "target")
		if !ok1 || !ok2 {
			return nil
		}

		if len(args) == 0 {
			parser.emit(node, "cond_br requires a condition")
			return nil
		}

		return &ast.ConditionalJump{
			StartEndPos: pos,
			Condition:   args[0],
			TrueLabel:   trueLabel,
			FalseLabel:  falseLabel,
			Args:        args[1:],
		}

	case "ret":
		return &ast.Return{
			StartEndPos: pos,
			Values:      args,
		}
	}

	parser.emit(opNode, "unknown op (%s)", op)
	return nil
}

func (parser *parser) parseDest(
	node *yaml.Node,
	fields map[string]*yaml.Node,
) *ast.ValueDefinition {
	destNode := fields["dest"]
	if destNode == nil {
		parser.emit(node, "instruction requires a dest")
		return nil
	}
	return parser.parseDefinition(destNode)
}

func (parser *parser) checkArity(
	node *yaml.Node,
	op string,
	args []*ast.ValueReference,
	arity int,
) bool {
	if len(args) != arity {
		parser.emit(
			node,
			"%s expects %d operand(s), found %d",
			op,
			arity,
			len(args))
		return false
	}
	return true
}
