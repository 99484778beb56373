package analyzer

import (
	"github.com/pattyshack/gt/parseutil"

	"github.com/pattyshack/gull/analyzer/util"
	"github.com/pattyshack/gull/ast"
)

// Binds value references to their definitions.  Values are block local: a
// reference may only bind to the block's (entry) parameters or to a value
// defined by an earlier instruction in the same block.  Names are unique
// within a block.
type valueBinder struct {
	*parseutil.Emitter
}

func BindValues(emitter *parseutil.Emitter) util.Pass[*ast.FunctionDefinition] {
	return &valueBinder{
		Emitter: emitter,
	}
}

func (binder *valueBinder) Process(funcDef *ast.FunctionDefinition) {
	for _, block := range funcDef.Blocks {
		binder.processBlock(block)
	}
}

func (binder *valueBinder) processBlock(block *ast.Block) {
	defs := map[string]*ast.ValueDefinition{}
	for _, param := range block.EntryParameters() {
		// duplicate parameters are reported by the syntax validator.
		_, ok := defs[param.Name]
		if !ok {
			defs[param.Name] = param
		}
	}

	for _, inst := range block.Instructions {
		for _, ref := range inst.Sources() {
			def, ok := defs[ref.Name]
			if !ok {
				binder.Emit(
					ref.Loc(),
					"value (%s) is not defined in block (%s)",
					ref.Name,
					block.Label)
				continue
			}

			def.AddRef(ref)
		}

		for _, dest := range inst.Destinations() {
			prev, ok := defs[dest.Name]
			if ok {
				binder.Emit(
					dest.Loc(),
					"value (%s) previously defined at (%s)",
					dest.Name,
					prev.Loc().ShortString())
				continue
			}

			defs[dest.Name] = dest
		}
	}
}
