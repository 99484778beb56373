package analyzer

import (
	"github.com/pattyshack/gt/parseutil"

	"github.com/pattyshack/gull/ast"
)

type astSyntaxValidator struct {
	*parseutil.Emitter
}

func ValidateAstSyntax(node ast.Node, emitter *parseutil.Emitter) {
	node.Walk(astSyntaxValidator{Emitter: emitter})
}

func (validator astSyntaxValidator) Enter(n ast.Node) {
	node, ok := n.(ast.Validator)
	if ok {
		node.Validate(validator.Emitter)
	}
}

func (astSyntaxValidator) Exit(ast.Node) {
}
