package operands

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func entryNames(stack *Stack) []string {
	names := []string{}
	for _, entry := range stack.Entries() {
		names = append(names, entry.String())
	}
	return names
}

func TestStackOrdering(t *testing.T) {
	stack := NewStackFromValues(NewValue(0, 1), NewValue(1, 1), NewValue(2, 1))

	if stack.Peek().ID != 0 {
		t.Fatalf("unexpected top: %s", stack.Peek())
	}

	stack.Push(NewValueOrAlias(NewValue(3, 1)))
	if diff := cmp.Diff([]string{"v3", "v0", "v1", "v2"}, entryNames(stack)); diff != "" {
		t.Errorf("unexpected entries (-want +got):\n%s", diff)
	}

	top := stack.Pop()
	if top.ID != 3 || stack.Len() != 3 {
		t.Errorf("unexpected pop: %s (len %d)", top, stack.Len())
	}

	if stack.String() != "[v0, v1, v2]" {
		t.Errorf("unexpected string: %s", stack)
	}
}

func TestStackRewrites(t *testing.T) {
	newStack := func() *Stack {
		return NewStackFromValues(
			NewValue(0, 1),
			NewValue(1, 1),
			NewValue(2, 1),
			NewValue(3, 1))
	}

	tests := []struct {
		name     string
		action   Action
		expected []string
	}{
		{"dup", NewDupAction(2), []string{"v2.1", "v0", "v1", "v2", "v3"}},
		{"swap", NewSwapAction(2), []string{"v2", "v1", "v0", "v3"}},
		{"movup", NewMoveUpAction(2), []string{"v2", "v0", "v1", "v3"}},
		{"movdn", NewMoveDownAction(2), []string{"v1", "v2", "v0", "v3"}},
		{"drop", NewDropAction(), []string{"v1", "v2", "v3"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			stack := newStack()
			stack.Apply(test.action)
			if diff := cmp.Diff(test.expected, entryNames(stack)); diff != "" {
				t.Errorf("unexpected entries (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStackDupAliases(t *testing.T) {
	stack := NewStackFromValues(NewValue(0, 1))
	stack.Apply(NewDupAction(0))
	stack.Apply(NewDupAction(1))

	if diff := cmp.Diff([]string{"v0.2", "v0.1", "v0"}, entryNames(stack)); diff != "" {
		t.Errorf("unexpected entries (-want +got):\n%s", diff)
	}
}

func TestStackFeltAccounting(t *testing.T) {
	stack := NewStackFromValues(
		NewValue(0, 1),
		NewValue(1, 4),
		NewValue(2, 2),
		NewValue(3, 8),
		NewValue(4, 1),
		NewValue(5, 1))

	if stack.FeltSize() != 17 {
		t.Errorf("unexpected felt size: %d", stack.FeltSize())
	}

	depths := []int{}
	offsets := []int{}
	addressable := []bool{}
	for pos := 0; pos < stack.Len(); pos++ {
		depths = append(depths, stack.FeltDepth(pos))
		offsets = append(offsets, stack.FeltOffset(pos))
		addressable = append(addressable, stack.Addressable(pos))
	}

	if diff := cmp.Diff([]int{1, 5, 7, 15, 16, 17}, depths); diff != "" {
		t.Errorf("unexpected depths (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1, 5, 7, 15, 16}, offsets); diff != "" {
		t.Errorf("unexpected offsets (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(
		[]bool{true, true, true, true, true, false},
		addressable); diff != "" {
		t.Errorf("unexpected addressability (-want +got):\n%s", diff)
	}

	if stack.Addressable(-1) || stack.Addressable(stack.Len()) {
		t.Errorf("out of range positions must not be addressable")
	}

	deepest, felts, ok := stack.AddressableWindow()
	if !ok || deepest != 4 || felts != 16 {
		t.Errorf("unexpected window: %d %d %v", deepest, felts, ok)
	}

	_, _, ok = NewStack().AddressableWindow()
	if ok {
		t.Errorf("empty stack has no addressable window")
	}
}

func TestStackCopyIsIndependent(t *testing.T) {
	stack := NewStackFromValues(NewValue(0, 1), NewValue(1, 1))
	copied := stack.Copy()
	copied.Apply(NewSwapAction(1))

	if diff := cmp.Diff([]string{"v0", "v1"}, entryNames(stack)); diff != "" {
		t.Errorf("original modified (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"v1", "v0"}, entryNames(copied)); diff != "" {
		t.Errorf("unexpected copy (-want +got):\n%s", diff)
	}
}
