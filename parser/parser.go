package parser

import (
	"strconv"

	"github.com/pattyshack/gt/parseutil"
	"gopkg.in/yaml.v3"

	"github.com/pattyshack/gull/ast"
)

// Programs are yaml documents of the form:
//
//	functions:
//	  - name: <name>
//	    params: [{<name>: <type>}, ...]
//	    returns: [<type>, ...]
//	    blocks:
//	      - label: <label>
//	        params: [{<name>: <type>}, ...]
//	        body:
//	          - {op: <kind>, ...}
//
// See instruction.go for the instruction forms.
type parser struct {
	fileName string
	emitter  *parseutil.Emitter
}

func (parser *parser) location(node *yaml.Node) parseutil.Location {
	return parseutil.Location{
		FileName: parser.fileName,
		Line:     node.Line,
		Column:   node.Column,
	}
}

func (parser *parser) pos(node *yaml.Node) parseutil.StartEndPos {
	loc := parser.location(node)
	return parseutil.NewStartEndPos(loc, loc)
}

func (parser *parser) emit(node *yaml.Node, format string, args ...interface{}) {
	parser.emitter.Emit(parser.location(node), format, args...)
}

// Returns the mapping's key -> value nodes.  Unknown keys are reported.
func (parser *parser) fields(
	node *yaml.Node,
	kind string,
	allowed ...string,
) (
	map[string]*yaml.Node,
	bool,
) {
	if node.Kind != yaml.MappingNode {
		parser.emit(node, "expected %s mapping", kind)
		return nil, false
	}

	known := map[string]struct{}{}
	for _, key := range allowed {
		known[key] = struct{}{}
	}

	result := map[string]*yaml.Node{}
	for idx := 0; idx+1 < len(node.Content); idx += 2 {
		key := node.Content[idx]
		value := node.Content[idx+1]

		_, ok := known[key.Value]
		if !ok {
			parser.emit(key, "unexpected %s field (%s)", kind, key.Value)
			continue
		}

		_, ok = result[key.Value]
		if ok {
			parser.emit(key, "duplicate %s field (%s)", kind, key.Value)
			continue
		}

		result[key.Value] = value
	}

	return result, true
}

func (parser *parser) sequence(node *yaml.Node, kind string) []*yaml.Node {
	if node == nil {
		return nil
	}

	if node.Kind != yaml.SequenceNode {
		parser.emit(node, "expected %s list", kind)
		return nil
	}
	return node.Content
}

func (parser *parser) scalar(node *yaml.Node, kind string) (string, bool) {
	if node == nil || node.Kind != yaml.ScalarNode {
		if node != nil {
			parser.emit(node, "expected %s string", kind)
		}
		return "", false
	}
	return node.Value, true
}

func (parser *parser) parseDocument(root *yaml.Node) []*ast.FunctionDefinition {
	if root.Kind == 0 { // empty document
		return nil
	}

	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil
		}
		root = root.Content[0]
	}

	fields, ok := parser.fields(root, "program", "functions")
	if !ok {
		return nil
	}

	result := []*ast.FunctionDefinition{}
	for _, node := range parser.sequence(fields["functions"], "function") {
		funcDef := parser.parseFunction(node)
		if funcDef != nil {
			result = append(result, funcDef)
		}
	}
	return result
}

func (parser *parser) parseFunction(node *yaml.Node) *ast.FunctionDefinition {
	fields, ok := parser.fields(
		node,
		"function",
		"name",
		"params",
		"returns",
		"blocks")
	if !ok {
		return nil
	}

	funcDef := &ast.FunctionDefinition{
		StartEndPos: parser.pos(node),
	}

	funcDef.Name, _ = parser.scalar(fields["name"], "function name")
	funcDef.Parameters = parser.parseParameters(fields["params"])

	for _, retNode := range parser.sequence(fields["returns"], "return type") {
		retType := parser.parseType(retNode)
		if retType != nil {
			funcDef.ReturnTypes = append(funcDef.ReturnTypes, retType)
		}
	}

	for _, blockNode := range parser.sequence(fields["blocks"], "block") {
		block := parser.parseBlock(blockNode)
		if block != nil {
			funcDef.Blocks = append(funcDef.Blocks, block)
			funcDef.EndPos = block.End()
		}
	}

	return funcDef
}

func (parser *parser) parseBlock(node *yaml.Node) *ast.Block {
	fields, ok := parser.fields(node, "block", "label", "params", "body")
	if !ok {
		return nil
	}

	block := &ast.Block{
		StartEndPos: parser.pos(node),
	}

	block.Label, _ = parser.scalar(fields["label"], "block label")
	block.Parameters = parser.parseParameters(fields["params"])

	for _, instNode := range parser.sequence(fields["body"], "instruction") {
		inst := parser.parseInstruction(instNode)
		if inst != nil {
			block.Instructions = append(block.Instructions, inst)
			block.EndPos = inst.End()
		}
	}

	return block
}

func (parser *parser) parseParameters(node *yaml.Node) []*ast.ValueDefinition {
	result := []*ast.ValueDefinition{}
	for _, paramNode := range parser.sequence(node, "parameter") {
		def := parser.parseDefinition(paramNode)
		if def != nil {
			result = append(result, def)
		}
	}
	return result
}

// A definition is either a bare name (untyped), or a single entry mapping
// from name to type.
func (parser *parser) parseDefinition(node *yaml.Node) *ast.ValueDefinition {
	switch node.Kind {
	case yaml.ScalarNode:
		return &ast.ValueDefinition{
			StartEndPos: parser.pos(node),
			Name:        node.Value,
		}
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			parser.emit(node, "expected a single {name: type} entry")
			return nil
		}

		name := node.Content[0]
		return &ast.ValueDefinition{
			StartEndPos: parser.pos(name),
			Name:        name.Value,
			Type:        parser.parseType(node.Content[1]),
		}
	default:
		parser.emit(node, "expected value definition")
		return nil
	}
}

func (parser *parser) parseReferences(node *yaml.Node) []*ast.ValueReference {
	result := []*ast.ValueReference{}
	for _, refNode := range parser.sequence(node, "operand") {
		name, ok := parser.scalar(refNode, "operand")
		if !ok {
			continue
		}

		result = append(
			result,
			&ast.ValueReference{
				StartEndPos: parser.pos(refNode),
				Name:        name,
			})
	}
	return result
}

func (parser *parser) parseType(node *yaml.Node) ast.Type {
	name, ok := parser.scalar(node, "type")
	if !ok {
		return nil
	}

	kind := ast.ScalarTypeKind(name)
	if !ast.IsScalarTypeKind(kind) {
		parser.emit(node, "unknown type (%s)", name)
		return nil
	}

	return ast.NewScalarType(kind, parser.pos(node))
}

func (parser *parser) parseUint(node *yaml.Node) (uint64, bool) {
	text, ok := parser.scalar(node, "integer")
	if !ok {
		return 0, false
	}

	value, err := strconv.ParseUint(text, 0, 64)
	if err != nil {
		parser.emit(node, "invalid integer (%s): %s", text, err)
		return 0, false
	}
	return value, true
}

func Parse(
	fileName string,
	content []byte,
	emitter *parseutil.Emitter,
) []*ast.FunctionDefinition {
	root := &yaml.Node{}
	err := yaml.Unmarshal(content, root)
	if err != nil {
		emitter.EmitErrors(
			parseutil.NewLocationError(
				parseutil.Location{FileName: fileName},
				"yaml error: %s",
				err))
		return nil
	}

	parser := &parser{
		fileName: fileName,
		emitter:  emitter,
	}
	return parser.parseDocument(root)
}
