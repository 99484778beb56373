package analyzer

import (
	"github.com/pattyshack/gull/analyzer/util"
	"github.com/pattyshack/gull/ast"
)

// Note: values are block local, hence liveness never crosses block
// boundaries and there is no need for data flow propagation.
//
// All distances are in number of instructions relative to the beginning of
// the block.  Parameters are defined at distance zero; the first instruction
// is at distance one.
type LiveRange struct {
	Start int // definition distance

	// Last use distance, inclusive.  Equals Start when the value is never
	// used.
	End int

	// Distinct use distances in ascending order.
	NextUses []int
}

// Returns true if the value is used by an instruction after dist.
func (live *LiveRange) UsedAfter(dist int) bool {
	return live.End > dist
}

// Returns the first use distance after dist, or -1 if there is none.
func (live *LiveRange) NextUseAfter(dist int) int {
	for _, use := range live.NextUses {
		if use > dist {
			return use
		}
	}
	return -1
}

type LiveRanges map[*ast.ValueDefinition]*LiveRange

type LivenessAnalyzer struct {
	LiveRanges map[*ast.Block]LiveRanges
}

var _ util.Pass[*ast.FunctionDefinition] = &LivenessAnalyzer{}

func NewLivenessAnalyzer() *LivenessAnalyzer {
	return &LivenessAnalyzer{
		LiveRanges: map[*ast.Block]LiveRanges{},
	}
}

func (analyzer *LivenessAnalyzer) Process(funcDef *ast.FunctionDefinition) {
	for _, block := range funcDef.Blocks {
		analyzer.LiveRanges[block] = ComputeLiveRanges(block)
	}
}

func ComputeLiveRanges(block *ast.Block) LiveRanges {
	ranges := LiveRanges{}
	for _, param := range block.EntryParameters() {
		ranges[param] = &LiveRange{}
	}

	for idx, inst := range block.Instructions {
		dist := idx + 1
		for _, src := range inst.Sources() {
			live, ok := ranges[src.UseDef]
			if !ok {
				panic("should never happen")
			}

			if live.End == dist {
				continue // same value used multiple times by the instruction
			}

			live.End = dist
			live.NextUses = append(live.NextUses, dist)
		}

		for _, dest := range inst.Destinations() {
			ranges[dest] = &LiveRange{
				Start: dist,
				End:   dist,
			}
		}
	}

	return ranges
}
