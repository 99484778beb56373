package util

import (
	"sync"

	"github.com/pattyshack/gull/ast"
)

type Pass[T any] interface {
	Process(T)
}

// Runs each group of passes in sequence.  Passes within a group run
// concurrently and must not modify shared state.
func Process[T any](
	node T,
	passes [][]Pass[T],
	shouldEarlyExit func() bool, // optional
) {
	for _, group := range passes {
		wg := sync.WaitGroup{}
		wg.Add(len(group))
		for _, pass := range group {
			go func(pass Pass[T]) {
				defer wg.Done()
				pass.Process(node)
			}(pass)
		}
		wg.Wait()

		if shouldEarlyExit != nil && shouldEarlyExit() {
			return
		}
	}
}

// Calls process on every item concurrently, and waits for all of them to
// complete.
func ParallelProcess[Node ast.Node](
	list []Node,
	process func(Node),
) {
	wg := sync.WaitGroup{}
	wg.Add(len(list))
	for _, item := range list {
		go func(item Node) {
			defer wg.Done()
			process(item)
		}(item)
	}
	wg.Wait()
}

// Returns the blocks reachable from the entry block in depth first pre-order,
// along with the reachable set.
func DFS(
	funcDef *ast.FunctionDefinition,
) (
	[]*ast.Block,
	map[*ast.Block]struct{},
) {
	visited := make(map[*ast.Block]struct{}, len(funcDef.Blocks))
	order := make([]*ast.Block, 0, len(funcDef.Blocks))
	if len(funcDef.Blocks) == 0 {
		return order, visited
	}

	stack := make([]*ast.Block, 0, len(funcDef.Blocks))
	stack = append(stack, funcDef.Blocks[0])
	for len(stack) > 0 {
		idx := len(stack) - 1
		top := stack[idx]
		stack = stack[:idx]

		_, ok := visited[top]
		if ok {
			continue
		}

		visited[top] = struct{}{}
		order = append(order, top)

		// Push in reverse so that the first successor (e.g., cond_br's true
		// branch) is visited first.
		for i := len(top.Children) - 1; i >= 0; i-- {
			stack = append(stack, top.Children[i])
		}
	}

	return order, visited
}
