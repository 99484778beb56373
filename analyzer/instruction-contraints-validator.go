package analyzer

import (
	"github.com/pattyshack/gt/parseutil"

	"github.com/pattyshack/gull/analyzer/util"
	"github.com/pattyshack/gull/architecture"
	"github.com/pattyshack/gull/ast"
	"github.com/pattyshack/gull/platform"
)

// Every instruction's operands (and results) must fit within the addressable
// stack window, otherwise no stack schedule exists.
type instructionConstraintsValidator struct {
	*parseutil.Emitter
	platform platform.Platform
}

func ValidateInstructionConstraints(
	emitter *parseutil.Emitter,
	targetPlatform platform.Platform,
) util.Pass[*ast.FunctionDefinition] {
	return &instructionConstraintsValidator{
		Emitter:  emitter,
		platform: targetPlatform,
	}
}

func (validator *instructionConstraintsValidator) Process(
	funcDef *ast.FunctionDefinition,
) {
	for _, block := range funcDef.Blocks {
		for _, inst := range block.Instructions {
			constraints := validator.platform.InstructionConstraints(inst)

			operandFelts := constraints.OperandFelts()
			if operandFelts > architecture.StackWindowFelts {
				validator.Emit(
					inst.Loc(),
					"instruction operands occupy %d felts, exceeding the %d felt "+
						"addressable stack window",
					operandFelts,
					architecture.StackWindowFelts)
			}

			resultFelts := constraints.ResultFelts()
			if resultFelts > architecture.StackWindowFelts {
				validator.Emit(
					inst.Loc(),
					"instruction results occupy %d felts, exceeding the %d felt "+
						"addressable stack window",
					resultFelts,
					architecture.StackWindowFelts)
			}
		}
	}
}
