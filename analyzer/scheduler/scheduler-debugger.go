package scheduler

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/pattyshack/gull/architecture"
	"github.com/pattyshack/gull/ast"
)

// Prints the function's live ranges and, for every block, each scheduled
// operation along with the stack it leaves behind.  Stack traces are only
// available when the scheduler ran in debug mode.
func Debug(scheduler *FunctionScheduler, out io.Writer) {
	buffer := &bytes.Buffer{}
	printf := func(template string, args ...interface{}) {
		fmt.Fprintf(buffer, template, args...)
	}

	printf("Definition: %s\n", scheduler.FuncDef.Name)
	printf("------------------------------------------\n")
	printf("Live Ranges:\n")
	for idx, state := range scheduler.Blocks {
		printf("  Block %d (%s):\n", idx, state.Label)

		defs := append([]*ast.ValueDefinition{}, state.StackIn...)
		for _, inst := range state.Instructions {
			defs = append(defs, inst.Destinations()...)
		}

		sort.SliceStable(
			defs,
			func(i int, j int) bool {
				return state.LiveRanges[defs[i]].Start < state.LiveRanges[defs[j]].Start
			})

		for _, def := range defs {
			liveRange := state.LiveRanges[def]
			printf(
				"    %s: [%d %d] (%s)\n",
				def.Name,
				liveRange.Start,
				liveRange.End,
				def.Loc().ShortString())
		}
	}

	printf("------------------------------------------\n")
	printf("Operations:\n")
	for idx, state := range scheduler.Blocks {
		printf("  Block %d (%s):\n", idx, state.Label)
		printf("    StackIn: %s\n", definitionNames(state.StackIn))

		for opIdx, op := range state.Operations {
			prefix := "  "
			if op.Kind == architecture.ExecuteInstruction {
				prefix = "> "
			}

			if opIdx < len(state.StackTrace) {
				printf("    %s%-40s %s\n", prefix, op, state.StackTrace[opIdx])
			} else {
				printf("    %s%s\n", prefix, op)
			}
		}

		printf("    StackOut: %s\n", definitionNames(state.StackOut))
	}
	printf("==========================================\n")

	fmt.Fprint(out, buffer.String())
}
