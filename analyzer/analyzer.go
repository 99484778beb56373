package analyzer

import (
	"github.com/pattyshack/gt/parseutil"

	"github.com/pattyshack/gull/analyzer/util"
	"github.com/pattyshack/gull/ast"
	"github.com/pattyshack/gull/platform"
)

// Validates, binds and type checks the function definitions.  Functions are
// analyzed concurrently; each function's diagnostics are reported in input
// order.  Functions with errors must not be scheduled.
func Analyze(
	funcDefs []*ast.FunctionDefinition,
	targetPlatform platform.Platform,
	emitter *parseutil.Emitter,
) {
	entryEmitters := make(map[*ast.FunctionDefinition]*parseutil.Emitter, len(funcDefs))
	for _, funcDef := range funcDefs {
		entryEmitters[funcDef] = &parseutil.Emitter{}
	}

	util.ParallelProcess(
		funcDefs,
		func(funcDef *ast.FunctionDefinition) {
			ValidateAstSyntax(funcDef, entryEmitters[funcDef])
		})

	signatureCollector := NewSignatureCollector(emitter)
	signatureCollector.Process(funcDefs)
	signatures := signatureCollector.Signatures()

	util.ParallelProcess(
		funcDefs,
		func(funcDef *ast.FunctionDefinition) {
			entryEmitter := entryEmitters[funcDef]
			if entryEmitter.HasErrors() { // syntax error
				return
			}

			passes := [][]util.Pass[*ast.FunctionDefinition]{
				{InitializeControlFlowGraph(entryEmitter)},
				{BindValues(entryEmitter)},
				{CheckTypes(entryEmitter, signatures)},
				{ValidateInstructionConstraints(entryEmitter, targetPlatform)},
			}

			util.Process(funcDef, passes, entryEmitter.HasErrors)
		})

	for _, funcDef := range funcDefs {
		emitter.EmitErrors(entryEmitters[funcDef].Errors()...)
	}
}
