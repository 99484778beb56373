package masm

import (
	"github.com/pattyshack/gull/architecture"
	"github.com/pattyshack/gull/ast"
	"github.com/pattyshack/gull/platform"
)

// A Miden assembly style stack machine.  Only the top 16 felts of the operand
// stack are addressable by dup / swap / movup / movdn.
type Platform struct{}

var _ platform.Platform = Platform{}

func NewPlatform() platform.Platform {
	return Platform{}
}

func (Platform) ArchitectureName() platform.ArchitectureName {
	return platform.Masm
}

func (Platform) InstructionConstraints(
	inst ast.Instruction,
) *architecture.InstructionConstraints {
	return architecture.NewInstructionConstraints(inst)
}

func (Platform) TranslateOperations(
	ops []architecture.Operation,
) (
	[]string,
	error,
) {
	translator := &operationTranslator{}
	for _, op := range ops {
		err := translator.translate(op)
		if err != nil {
			return nil, err
		}
	}
	return translator.instructions, nil
}
