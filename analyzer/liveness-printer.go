package analyzer

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pattyshack/gull/analyzer/util"
	"github.com/pattyshack/gull/ast"
)

type livenessPrinter struct {
	*LivenessAnalyzer
	out io.Writer
}

// This is only for debugging purpose.
func PrintLiveness(out io.Writer) util.Pass[*ast.FunctionDefinition] {
	return &livenessPrinter{
		LivenessAnalyzer: NewLivenessAnalyzer(),
		out:              out,
	}
}

func (printer *livenessPrinter) Process(funcDef *ast.FunctionDefinition) {
	printer.LivenessAnalyzer.Process(funcDef)

	builder := &strings.Builder{}
	fmt.Fprintf(builder, "Definition: %s\n", funcDef.Name)
	for idx, block := range funcDef.Blocks {
		fmt.Fprintf(builder, "  Block %d (%s):\n", idx, block.Label)

		ranges := printer.LiveRanges[block]
		defs := make([]*ast.ValueDefinition, 0, len(ranges))
		for def := range ranges {
			defs = append(defs, def)
		}

		sort.Slice(
			defs,
			func(i int, j int) bool {
				if ranges[defs[i]].Start != ranges[defs[j]].Start {
					return ranges[defs[i]].Start < ranges[defs[j]].Start
				}
				return defs[i].Name < defs[j].Name
			})

		for _, def := range defs {
			live := ranges[def]
			if live.End == live.Start {
				fmt.Fprintf(builder, "    %s [%d, unused]\n", def.Name, live.Start)
				continue
			}
			fmt.Fprintf(
				builder,
				"    %s [%d, %d] uses=%v\n",
				def.Name,
				live.Start,
				live.End,
				live.NextUses)
		}
	}

	fmt.Fprint(printer.out, builder.String())
}
