package ast

import (
	"github.com/pattyshack/gt/parseutil"
)

type FunctionDefinition struct {
	parseutil.StartEndPos

	Name string

	// The entry block's parameters.  The first parameter is on top of the
	// stack when the function is entered.
	Parameters []*ValueDefinition

	// The first return value is left on top of the stack.
	ReturnTypes []Type

	// The first block is the entry block.
	Blocks []*Block
}

var _ Node = &FunctionDefinition{}
var _ Validator = &FunctionDefinition{}

func (def *FunctionDefinition) Walk(visitor Visitor) {
	visitor.Enter(def)
	for _, param := range def.Parameters {
		param.Walk(visitor)
	}
	for _, retType := range def.ReturnTypes {
		retType.Walk(visitor)
	}
	for _, block := range def.Blocks {
		block.Walk(visitor)
	}
	visitor.Exit(def)
}

func (def *FunctionDefinition) Validate(emitter *parseutil.Emitter) {
	if def.Name == "" {
		emitter.Emit(def.Loc(), "empty function definition name")
	}

	if len(def.Blocks) == 0 {
		emitter.Emit(def.Loc(), "function definition must have at least one block")
	} else if len(def.Blocks[0].Parameters) > 0 {
		emitter.Emit(
			def.Blocks[0].Loc(),
			"entry block cannot declare parameters; use function parameters instead")
	}

	validateParameters(def.Parameters, "function", emitter)

	labels := map[string]*Block{}
	for _, block := range def.Blocks {
		if block.Label == "" {
			continue
		}

		prev, ok := labels[block.Label]
		if ok {
			emitter.Emit(
				block.Loc(),
				"block (%s) previously defined at (%s)",
				block.Label,
				prev.Loc().ShortString())
		} else {
			labels[block.Label] = block
		}
	}
}

func validateParameters(
	params []*ValueDefinition,
	kind string,
	emitter *parseutil.Emitter,
) {
	names := map[string]*ValueDefinition{}
	for _, param := range params {
		prev, ok := names[param.Name]
		if ok {
			emitter.Emit(
				param.Loc(),
				"parameter (%s) previously defined at (%s)",
				param.Name,
				prev.Loc().ShortString())
		} else {
			names[param.Name] = param
		}

		if param.Type == nil {
			emitter.Emit(
				param.Loc(),
				"%s parameter (%s) must be explicitly typed",
				kind,
				param.Name)
		}
	}
}

// A straight-line / basic block.  Values are block local: a block can only
// reference its own parameters and values defined earlier in the block.
type Block struct {
	parseutil.StartEndPos

	Label string

	// The first parameter is on top of the stack when the block is entered.
	Parameters []*ValueDefinition

	// NOTE: only the last instruction can be (and must be) a control flow
	// instruction.
	Instructions []Instruction

	// internal

	// Populated by ControlFlowGraphInitializer.
	ParentFuncDef *FunctionDefinition
	Parents       []*Block
	Children      []*Block
}

var _ Node = &Block{}
var _ Validator = &Block{}

func (block *Block) Walk(visitor Visitor) {
	visitor.Enter(block)
	for _, param := range block.Parameters {
		param.Walk(visitor)
	}
	for _, instruction := range block.Instructions {
		instruction.Walk(visitor)
	}
	visitor.Exit(block)
}

func (block *Block) Validate(emitter *parseutil.Emitter) {
	validateParameters(block.Parameters, "block", emitter)

	if len(block.Instructions) == 0 {
		emitter.Emit(block.Loc(), "block must have at least one instruction")
		return
	}

	for idx, inst := range block.Instructions {
		if IsTerminal(inst) && idx != len(block.Instructions)-1 {
			emitter.Emit(
				inst.Loc(),
				"control flow instruction must be the last instruction in the block")
		}
	}

	last := block.Instructions[len(block.Instructions)-1]
	if !IsTerminal(last) {
		emitter.Emit(
			last.Loc(),
			"block must end with a control flow instruction")
	}
}

// The control flow instruction which ends the block.
func (block *Block) Terminal() ControlFlowInstruction {
	if len(block.Instructions) == 0 {
		return nil
	}

	term, ok := block.Instructions[len(block.Instructions)-1].(
		ControlFlowInstruction)
	if !ok {
		return nil
	}
	return term
}

// Block parameters, or the function's parameters for the entry block.
func (block *Block) EntryParameters() []*ValueDefinition {
	if block.ParentFuncDef != nil &&
		len(block.ParentFuncDef.Blocks) > 0 &&
		block.ParentFuncDef.Blocks[0] == block {

		return block.ParentFuncDef.Parameters
	}
	return block.Parameters
}
