package operands

import (
	"fmt"
	"strings"

	"github.com/pattyshack/gull/architecture"
)

// Abstract operand stack.  Positions are logical entry indices with zero
// being the top of the stack.
//
// Note: entries are stored bottom to top so that push / pop operate on the
// end of the slice.
type Stack struct {
	entries []ValueOrAlias
}

// The first value is the top of the stack.
func NewStack(values ...ValueOrAlias) *Stack {
	stack := &Stack{
		entries: make([]ValueOrAlias, 0, len(values)),
	}
	for idx := len(values) - 1; idx >= 0; idx-- {
		stack.entries = append(stack.entries, values[idx])
	}
	return stack
}

// The first value is the top of the stack.
func NewStackFromValues(values ...Value) *Stack {
	entries := make([]ValueOrAlias, 0, len(values))
	for _, value := range values {
		entries = append(entries, NewValueOrAlias(value))
	}
	return NewStack(entries...)
}

func (stack *Stack) Len() int {
	return len(stack.entries)
}

func (stack *Stack) IsEmpty() bool {
	return len(stack.entries) == 0
}

func (stack *Stack) Copy() *Stack {
	entries := make([]ValueOrAlias, len(stack.entries))
	copy(entries, stack.entries)
	return &Stack{
		entries: entries,
	}
}

func (stack *Stack) index(pos int) int {
	if pos < 0 || pos >= len(stack.entries) {
		panic(fmt.Sprintf(
			"stack position %d out of range (stack length %d)",
			pos,
			len(stack.entries)))
	}
	return len(stack.entries) - 1 - pos
}

func (stack *Stack) Get(pos int) ValueOrAlias {
	return stack.entries[stack.index(pos)]
}

func (stack *Stack) Set(pos int, value ValueOrAlias) {
	stack.entries[stack.index(pos)] = value
}

func (stack *Stack) Push(value ValueOrAlias) {
	stack.entries = append(stack.entries, value)
}

func (stack *Stack) Peek() ValueOrAlias {
	return stack.Get(0)
}

func (stack *Stack) Pop() ValueOrAlias {
	top := stack.Get(0)
	stack.entries = stack.entries[:len(stack.entries)-1]
	return top
}

// Top to bottom.
func (stack *Stack) Entries() []ValueOrAlias {
	result := make([]ValueOrAlias, 0, len(stack.entries))
	for idx := len(stack.entries) - 1; idx >= 0; idx-- {
		result = append(result, stack.entries[idx])
	}
	return result
}

// Copies the entry at pos to the top of the stack, tagging the new entry
// with the given alias.
func (stack *Stack) Dup(pos int, alias uint8) {
	stack.Push(stack.Get(pos).Copy(alias))
}

// Swaps the top entry with the entry at pos.
func (stack *Stack) Swap(pos int) {
	top := stack.index(0)
	other := stack.index(pos)
	stack.entries[top], stack.entries[other] = stack.entries[other], stack.entries[top]
}

// Moves the entry at pos to the top of the stack.  Entries above pos are
// shifted down by one position.
func (stack *Stack) MoveUp(pos int) {
	idx := stack.index(pos)
	value := stack.entries[idx]
	copy(stack.entries[idx:], stack.entries[idx+1:])
	stack.entries[len(stack.entries)-1] = value
}

// Moves the top entry to pos.  Entries above pos are shifted up by one
// position.
func (stack *Stack) MoveDown(pos int) {
	idx := stack.index(pos)
	value := stack.entries[len(stack.entries)-1]
	copy(stack.entries[idx+1:], stack.entries[idx:len(stack.entries)-1])
	stack.entries[idx] = value
}

func (stack *Stack) Drop() ValueOrAlias {
	return stack.Pop()
}

// Total number of felts occupied by entries 0..=pos.
func (stack *Stack) FeltDepth(pos int) int {
	depth := 0
	for idx := 0; idx <= pos; idx++ {
		depth += stack.Get(idx).StackSize()
	}
	return depth
}

// Number of felts occupied by the entries above pos (exclusive).
func (stack *Stack) FeltOffset(pos int) int {
	if pos == 0 {
		return 0
	}
	return stack.FeltDepth(pos - 1)
}

// Total number of felts occupied by the entire stack.
func (stack *Stack) FeltSize() int {
	size := 0
	for _, entry := range stack.entries {
		size += entry.StackSize()
	}
	return size
}

// Returns true if every felt of the entry at pos lies within the addressable
// window.
func (stack *Stack) Addressable(pos int) bool {
	if pos < 0 || pos >= len(stack.entries) {
		return false
	}
	return stack.FeltDepth(pos) <= architecture.StackWindowFelts
}

// The deepest addressable position, and the number of felts occupied by
// entries 0..=deepest.  ok is false if the top entry alone exceeds the window
// (or the stack is empty).
func (stack *Stack) AddressableWindow() (deepest int, felts int, ok bool) {
	deepest = -1
	depth := 0
	for pos := 0; pos < len(stack.entries); pos++ {
		depth += stack.Get(pos).StackSize()
		if depth > architecture.StackWindowFelts {
			break
		}
		deepest = pos
		felts = depth
	}

	return deepest, felts, deepest >= 0
}

func (stack *Stack) Find(value ValueOrAlias) (int, bool) {
	return stack.FindFrom(0, value)
}

// Like Find, but ignores entries above start.
func (stack *Stack) FindFrom(start int, value ValueOrAlias) (int, bool) {
	for pos := start; pos < len(stack.entries); pos++ {
		if stack.Get(pos).Equals(value) {
			return pos, true
		}
	}
	return 0, false
}

func (stack *Stack) Contains(value ValueOrAlias) bool {
	_, ok := stack.Find(value)
	return ok
}

// Applies a rewrite action.  Copies are tagged with the next unused alias of
// the copied value.
func (stack *Stack) Apply(action Action) {
	pos := int(action.Index)
	switch action.Kind {
	case Dup:
		source := stack.Get(pos)
		alias := uint8(0)
		for _, entry := range stack.entries {
			if entry.SameValue(source) && entry.Alias >= alias {
				alias = entry.Alias + 1
			}
		}
		stack.Dup(pos, alias)
	case Swap:
		stack.Swap(pos)
	case MoveUp:
		stack.MoveUp(pos)
	case MoveDown:
		stack.MoveDown(pos)
	case Drop:
		stack.Drop()
	default:
		panic("unexpected action kind: " + string(action.Kind))
	}
}

func (stack *Stack) String() string {
	builder := strings.Builder{}
	builder.WriteString("[")
	for idx := len(stack.entries) - 1; idx >= 0; idx-- {
		if idx != len(stack.entries)-1 {
			builder.WriteString(", ")
		}
		builder.WriteString(stack.entries[idx].String())
	}
	builder.WriteString("]")
	return builder.String()
}
