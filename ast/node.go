package ast

import (
	"fmt"

	"github.com/pattyshack/gt/parseutil"
)

type Node interface {
	parseutil.Locatable
	Walk(Visitor)
}

type Visitor interface {
	Enter(Node)
	Exit(Node)
}

type Validator interface {
	Validate(*parseutil.Emitter)
}

type Instruction interface {
	Node

	ParentBlock() *Block
	SetParentBlock(*Block)

	// In source order.  Empty if there are no src dependencies.
	Sources() []*ValueReference

	// In source order.  Empty if the instruction does not define any value.
	Destinations() []*ValueDefinition
}

type instruction struct {
	// Internal (set during control flow graph initialization)
	Parent *Block
}

func (ins *instruction) ParentBlock() *Block {
	return ins.Parent
}

func (ins *instruction) SetParentBlock(block *Block) {
	ins.Parent = block
}

func (instruction) Sources() []*ValueReference {
	return nil
}

func (instruction) Destinations() []*ValueDefinition {
	return nil
}

// A named, typed value.  Values are defined by block parameters and by
// instruction destinations.
type ValueDefinition struct {
	parseutil.StartEndPos

	Name string // required

	// Required for parameters, exec and const destinations.  Otherwise,
	// inferred during type checking.
	Type Type

	// Internal (set during ssa binding)
	Parent  Instruction // nil for block parameters
	DefUses map[*ValueReference]struct{}
}

var _ Node = &ValueDefinition{}
var _ Validator = &ValueDefinition{}

func (def *ValueDefinition) Walk(visitor Visitor) {
	visitor.Enter(def)
	if def.Type != nil {
		def.Type.Walk(visitor)
	}
	visitor.Exit(def)
}

func (def *ValueDefinition) Validate(emitter *parseutil.Emitter) {
	if def.Name == "" {
		emitter.Emit(def.Loc(), "empty value definition name")
	}
}

func (def *ValueDefinition) AddRef(ref *ValueReference) {
	if def.DefUses == nil {
		def.DefUses = map[*ValueReference]struct{}{}
	}
	def.DefUses[ref] = struct{}{}
	ref.UseDef = def
}

func (def *ValueDefinition) String() string {
	if def.Type == nil {
		return def.Name
	}
	return fmt.Sprintf("%s: %s", def.Name, def.Type)
}

type ValueReference struct {
	parseutil.StartEndPos

	Name string // required

	// Internal (set during ssa binding)
	Parent Instruction
	UseDef *ValueDefinition
}

var _ Node = &ValueReference{}
var _ Validator = &ValueReference{}

func (ref *ValueReference) Walk(visitor Visitor) {
	visitor.Enter(ref)
	visitor.Exit(ref)
}

func (ref *ValueReference) Validate(emitter *parseutil.Emitter) {
	if ref.Name == "" {
		emitter.Emit(ref.Loc(), "empty value reference name")
	}
}

// Returns nil if the reference is unbound, or the definition's type is not
// yet known.
func (ref *ValueReference) Type() Type {
	if ref.UseDef == nil {
		return nil
	}
	return ref.UseDef.Type
}

func (ref *ValueReference) String() string {
	return ref.Name
}
