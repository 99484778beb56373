package operands

import (
	"fmt"
)

type ActionKind string

const (
	// Copy the entry at Index to the top of the stack
	Dup = ActionKind("dup")
	// Swap the entry at Index with the top of the stack
	Swap = ActionKind("swap")
	// Move the entry at Index to the top of the stack
	MoveUp = ActionKind("movup")
	// Move the top of the stack to Index
	MoveDown = ActionKind("movdn")
	// Discard the top of the stack (Index is unused)
	Drop = ActionKind("drop")
)

// A primitive operand stack rewrite.  Index is a logical entry position,
// not a felt offset.
type Action struct {
	Kind  ActionKind
	Index uint8
}

func NewDupAction(index uint8) Action {
	return Action{Kind: Dup, Index: index}
}

func NewSwapAction(index uint8) Action {
	return Action{Kind: Swap, Index: index}
}

func NewMoveUpAction(index uint8) Action {
	return Action{Kind: MoveUp, Index: index}
}

func NewMoveDownAction(index uint8) Action {
	return Action{Kind: MoveDown, Index: index}
}

func NewDropAction() Action {
	return Action{Kind: Drop}
}

func (action Action) String() string {
	if action.Kind == Drop {
		return string(Drop)
	}
	return fmt.Sprintf("%s.%d", action.Kind, action.Index)
}
