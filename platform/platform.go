package platform

import (
	"github.com/pattyshack/gull/architecture"
	"github.com/pattyshack/gull/ast"
)

type ArchitectureName string

const (
	Masm = ArchitectureName("masm")
)

type Platform interface {
	ArchitectureName() ArchitectureName

	InstructionConstraints(ast.Instruction) *architecture.InstructionConstraints

	// Renders a block's scheduled operations as assembly instructions.
	TranslateOperations([]architecture.Operation) ([]string, error)
}
