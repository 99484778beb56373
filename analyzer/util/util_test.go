package util

import (
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pattyshack/gull/ast"
)

func TestDFS(t *testing.T) {
	entry := &ast.Block{Label: "entry"}
	left := &ast.Block{Label: "left"}
	right := &ast.Block{Label: "right"}
	join := &ast.Block{Label: "join"}
	orphan := &ast.Block{Label: "orphan"}

	entry.Children = []*ast.Block{left, right}
	left.Children = []*ast.Block{join}
	right.Children = []*ast.Block{join}
	orphan.Children = []*ast.Block{join}

	funcDef := &ast.FunctionDefinition{
		Blocks: []*ast.Block{entry, left, right, join, orphan},
	}

	order, visited := DFS(funcDef)

	labels := []string{}
	for _, block := range order {
		labels = append(labels, block.Label)
	}
	if diff := cmp.Diff([]string{"entry", "left", "join", "right"}, labels); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}

	_, ok := visited[orphan]
	if ok || len(visited) != 4 {
		t.Errorf("unexpected visited set: %v", visited)
	}
}

type countingPass struct {
	count *int32
}

func (pass countingPass) Process(*ast.FunctionDefinition) {
	atomic.AddInt32(pass.count, 1)
}

func TestProcessEarlyExit(t *testing.T) {
	count := int32(0)
	pass := countingPass{count: &count}

	passes := [][]Pass[*ast.FunctionDefinition]{
		{pass, pass},
		{pass},
	}

	Process(&ast.FunctionDefinition{}, passes, nil)
	if count != 3 {
		t.Errorf("expected 3 calls, found %d", count)
	}

	count = 0
	Process(&ast.FunctionDefinition{}, passes, func() bool { return true })
	if count != 2 {
		t.Errorf("expected 2 calls, found %d", count)
	}
}
