package analyzer

import (
	"github.com/pattyshack/gt/parseutil"

	"github.com/pattyshack/gull/analyzer/util"
	"github.com/pattyshack/gull/ast"
)

type controlFlowGraphInitializer struct {
	*parseutil.Emitter
}

func InitializeControlFlowGraph(
	emitter *parseutil.Emitter,
) util.Pass[*ast.FunctionDefinition] {
	return &controlFlowGraphInitializer{
		Emitter: emitter,
	}
}

func (initializer *controlFlowGraphInitializer) Process(
	funcDef *ast.FunctionDefinition,
) {
	labelled := map[string]*ast.Block{}
	for _, block := range funcDef.Blocks {
		block.ParentFuncDef = funcDef
		block.Parents = nil
		block.Children = nil

		for _, inst := range block.Instructions {
			inst.SetParentBlock(block)
			for _, src := range inst.Sources() {
				src.Parent = inst
			}
			for _, dest := range inst.Destinations() {
				dest.Parent = inst
			}
		}

		if block.Label != "" {
			labelled[block.Label] = block
		}
	}

	entry := funcDef.Blocks[0]
	for _, block := range funcDef.Blocks {
		term := block.Terminal()
		if term == nil {
			panic("should never happen") // error previously emitted
		}

		for _, label := range term.Successors() {
			child, ok := labelled[label]
			if !ok {
				initializer.Emit(term.Loc(), "undefined block label (%s)", label)
				continue
			}

			if child == entry {
				initializer.Emit(
					term.Loc(),
					"cannot branch to entry block (%s)",
					label)
				continue
			}

			block.Children = append(block.Children, child)
			child.Parents = append(child.Parents, block)
		}
	}
}
