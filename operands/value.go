package operands

import (
	"fmt"
)

type ValueID uint32

// An ssa value as seen by the operand scheduler.  Width is the number of
// felts the value occupies on the operand stack.
type Value struct {
	ID    ValueID
	Width uint8
}

func NewValue(id ValueID, width uint8) Value {
	return Value{
		ID:    id,
		Width: width,
	}
}

func (value Value) String() string {
	return fmt.Sprintf("v%d", value.ID)
}

// A stack entry.  Alias zero is the value's original (primary) occurrence.
// Non-zero aliases identify additional occurrences of the same value, e.g.,
// copies materialized for an operation that does not consume the original.
//
// Note: aliases are compared by (ID, Alias) only.  Width is carried along so
// that entries know their physical size.
type ValueOrAlias struct {
	Value

	Alias uint8
}

func NewValueOrAlias(value Value) ValueOrAlias {
	return ValueOrAlias{
		Value: value,
	}
}

func (value ValueOrAlias) IsAlias() bool {
	return value.Alias != 0
}

func (value ValueOrAlias) Unaliased() ValueOrAlias {
	value.Alias = 0
	return value
}

func (value ValueOrAlias) Copy(alias uint8) ValueOrAlias {
	value.Alias = alias
	return value
}

func (value ValueOrAlias) Equals(other ValueOrAlias) bool {
	return value.ID == other.ID && value.Alias == other.Alias
}

func (value ValueOrAlias) SameValue(other ValueOrAlias) bool {
	return value.ID == other.ID
}

// The number of physical felts occupied by the entry.  Always at least one.
func (value ValueOrAlias) StackSize() int {
	if value.Width == 0 {
		return 1
	}
	return int(value.Width)
}

func (value ValueOrAlias) key() aliasKey {
	return aliasKey{
		id:    value.ID,
		alias: value.Alias,
	}
}

func (value ValueOrAlias) String() string {
	if value.Alias == 0 {
		return value.Value.String()
	}
	return fmt.Sprintf("v%d.%d", value.ID, value.Alias)
}

type aliasKey struct {
	id    ValueID
	alias uint8
}
