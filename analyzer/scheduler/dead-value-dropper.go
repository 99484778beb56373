package scheduler

import (
	"errors"

	"go.uber.org/zap"

	"github.com/pattyshack/gull/ast"
	"github.com/pattyshack/gull/operands"
)

// Drops every stack entry for which isDead returns true, bringing deeper
// entries into the addressable window as the stack shrinks.  Returns the
// number of dead entries which remain out of reach.
//
// When dead entries outnumber live ones, the stack is cleaned up in batches
// from the top.  Otherwise, the solver moves all addressable dead entries to
// the top of the stack before dropping them.
func (state *BlockState) DropDeadValues(
	isDead func(*ast.ValueDefinition) bool,
) int {
	for {
		numDead := 0
		addressable := []operands.Value{}
		for pos, entry := range state.Stack.Entries() {
			if !isDead(state.Definition(entry)) {
				continue
			}

			numDead++
			if state.Stack.Addressable(pos) {
				addressable = append(addressable, entry.Value)
			}
		}

		if numDead == 0 {
			return 0
		}

		if len(addressable) == 0 {
			return numDead
		}

		numLive := state.Stack.Len() - numDead
		if numDead > numLive || !state.dropViaSolver(addressable) {
			state.dropBatch(isDead)
		}
	}
}

// Drops at least one dead entry from the top portion of the stack:
//
//  1. a run of dead entries on top of the stack is dropped as a whole.
//  2. a run of dead entries directly under a single live entry is dropped by
//     moving the live entry below the run (or swapping for a run of one).
//  3. otherwise, the shallowest addressable dead entry is moved to the top
//     and dropped.
func (state *BlockState) dropBatch(isDead func(*ast.ValueDefinition) bool) {
	stack := state.Stack
	dead := func(pos int) bool {
		return pos < stack.Len() && isDead(state.Definition(stack.Get(pos)))
	}

	if dead(0) {
		count := 0
		for dead(count) {
			count++
		}
		state.dropN(count)
		return
	}

	if dead(1) {
		chunk := 0
		for dead(chunk+1) && stack.Addressable(chunk+1) {
			chunk++
		}

		if chunk > 1 {
			state.Apply(operands.NewMoveDownAction(uint8(chunk)))
			state.dropN(chunk)
		} else {
			state.Apply(operands.NewSwapAction(1))
			state.dropN(1)
		}
		return
	}

	for pos := 2; pos < stack.Len() && stack.Addressable(pos); pos++ {
		if dead(pos) {
			state.Apply(operands.NewMoveUpAction(uint8(pos)))
			state.dropN(1)
			return
		}
	}

	panic("should never happen")
}

func (state *BlockState) dropViaSolver(dead []operands.Value) bool {
	constraints := make([]operands.Constraint, len(dead))
	for idx := range constraints {
		constraints[idx] = operands.Move
	}

	options := state.Options
	options.AllowUnordered = true
	options.Logger = state.Logger

	solver, err := operands.NewWithOptions(
		dead,
		constraints,
		state.Stack.Copy(),
		options)
	if errors.Is(err, operands.ErrAlreadySolved) {
		state.dropN(len(dead))
		return true
	} else if err != nil {
		state.Logger.Debug("unable to schedule dead values", zap.Error(err))
		return false
	}

	actions, err := solver.Solve()
	if err != nil {
		state.Logger.Debug("unable to schedule dead values", zap.Error(err))
		return false
	}

	state.ApplyAll(actions)
	state.dropN(len(dead))
	return true
}

func (state *BlockState) dropN(count int) {
	for i := 0; i < count; i++ {
		state.Apply(operands.NewDropAction())
	}
}
