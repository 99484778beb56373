package analyzer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pattyshack/gt/parseutil"

	"github.com/pattyshack/gull/ast"
	"github.com/pattyshack/gull/parser"
	"github.com/pattyshack/gull/platform/masm"
)

func analyze(t *testing.T, content string) (
	[]*ast.FunctionDefinition,
	[]error,
) {
	emitter := &parseutil.Emitter{}
	funcDefs := parser.Parse("test.yaml", []byte(content), emitter)
	if emitter.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", emitter.Errors())
	}

	Analyze(funcDefs, masm.NewPlatform(), emitter)
	return funcDefs, emitter.Errors()
}

const loopProgram = `
functions:
  - name: sum
    params: [{a: u32}, {b: u32}]
    returns: [u32]
    blocks:
      - label: entry
        body:
          - {op: const, dest: {zero: u32}, value: 0}
          - {op: eq, dest: is_zero, args: [a, zero]}
          - {op: cond_br, targets: [done, loop], args: [is_zero, b, a]}
      - label: loop
        params: [{acc: u32}, {n: u32}]
        body:
          - {op: add, dest: next, args: [acc, n]}
          - {op: br, target: done, args: [next, n]}
      - label: done
        params: [{result: u32}, {unused: u32}]
        body:
          - {op: ret, args: [result]}
`

func TestAnalyzeValidProgram(t *testing.T) {
	funcDefs, errs := analyze(t, loopProgram)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	funcDef := funcDefs[0]
	entry := funcDef.Blocks[0]
	loop := funcDef.Blocks[1]
	done := funcDef.Blocks[2]

	labels := func(blocks []*ast.Block) []string {
		result := []string{}
		for _, block := range blocks {
			result = append(result, block.Label)
		}
		return result
	}

	if diff := cmp.Diff([]string{"done", "loop"}, labels(entry.Children)); diff != "" {
		t.Errorf("unexpected entry children (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"entry", "loop"}, labels(done.Parents)); diff != "" {
		t.Errorf("unexpected done parents (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"done"}, labels(loop.Children)); diff != "" {
		t.Errorf("unexpected loop children (-want +got):\n%s", diff)
	}

	isZero := entry.Instructions[1].(*ast.BinaryOperation).Dest
	if !ast.IsBoolType(isZero.Type) {
		t.Errorf("comparison should produce i1, found %s", isZero.Type)
	}

	next := loop.Instructions[0].(*ast.BinaryOperation)
	if !next.Dest.Type.Equals(ast.ScalarType{Kind: ast.U32}) {
		t.Errorf("unexpected inferred type: %s", next.Dest.Type)
	}
	if next.Src1.UseDef != loop.Parameters[0] || next.Src2.UseDef != loop.Parameters[1] {
		t.Errorf("add operands bound to the wrong definitions")
	}
	if next.ParentBlock() != loop || next.Src1.Parent != next {
		t.Errorf("instruction parents not initialized")
	}

	if entry.EntryParameters()[0].Name != "a" {
		t.Errorf("entry block should expose the function parameters")
	}
}

func singleBlock(params string, returns string, body ...string) string {
	return `
functions:
  - name: f
    params: ` + params + `
    returns: ` + returns + `
    blocks:
      - label: entry
        body:
          - ` + strings.Join(body, "\n          - ") + `
`
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		message string
	}{
		{
			"undefined value",
			singleBlock("[]", "[]", "{op: ret, args: [zz]}"),
			"value (zz) is not defined in block (entry)",
		},
		{
			"redefined value",
			singleBlock(
				"[]",
				"[]",
				"{op: const, dest: {x: felt}, value: 1}",
				"{op: const, dest: {x: felt}, value: 2}",
				"{op: ret}"),
			"value (x) previously defined at",
		},
		{
			"mismatched operands",
			singleBlock(
				"[{a: u32}, {b: felt}]",
				"[]",
				"{op: add, dest: c, args: [a, b]}",
				"{op: ret}"),
			"add operands have mismatched types (u32 vs felt)",
		},
		{
			"non boolean assert",
			singleBlock("[{a: felt}]", "[]", "{op: assert, args: [a]}", "{op: ret}"),
			"assert requires an i1 operand, found felt (a)",
		},
		{
			"unsigned negation",
			singleBlock(
				"[{a: u32}]",
				"[]",
				"{op: neg, dest: b, args: [a]}",
				"{op: ret}"),
			"neg does not support u32 operand (a)",
		},
		{
			"felt bitwise",
			singleBlock(
				"[{a: felt}]",
				"[]",
				"{op: and, dest: b, args: [a, a]}",
				"{op: ret}"),
			"and does not support felt operands",
		},
		{
			"constant out of range",
			singleBlock(
				"[]",
				"[]",
				"{op: const, dest: {x: u8}, value: 256}",
				"{op: ret}"),
			"constant (256) out of range for u8",
		},
		{
			"missing return value",
			singleBlock("[]", "[felt]", "{op: ret}"),
			"expected 1 return value(s), found 0",
		},
		{
			"wrong return type",
			singleBlock("[{a: u64}]", "[felt]", "{op: ret, args: [a]}"),
			"return value (a) has type u64, expected felt",
		},
		{
			"too many operands",
			singleBlock(
				"[{a: word}, {b: word}, {c: word}, {d: word}, {e: word}]",
				"[]",
				"{op: exec, callee: ext, args: [a, b, c, d, e]}",
				"{op: ret}"),
			"instruction operands occupy 20 felts, exceeding the 16 felt",
		},
		{
			"too many results",
			singleBlock(
				"[]",
				"[]",
				"{op: exec, callee: ext, dests: [{a: u256}, {b: u256}, {c: felt}]}",
				"{op: ret}"),
			"instruction results occupy 17 felts",
		},
		{
			"missing terminal",
			singleBlock("[]", "[]", "{op: const, dest: {x: felt}, value: 1}"),
			"block must end with a control flow instruction",
		},
		{
			"untyped parameter",
			singleBlock("[a]", "[]", "{op: ret}"),
			"function parameter (a) must be explicitly typed",
		},
		{
			"undefined label",
			singleBlock("[]", "[]", "{op: br, target: nowhere}"),
			"undefined block label (nowhere)",
		},
		{
			"branch to entry",
			singleBlock("[]", "[]", "{op: br, target: entry}"),
			"cannot branch to entry block (entry)",
		},
		{
			"non boolean condition",
			`
functions:
  - name: f
    params: [{a: felt}]
    blocks:
      - label: entry
        body:
          - {op: cond_br, targets: [x, y], args: [a]}
      - label: x
        body:
          - {op: ret}
      - label: y
        body:
          - {op: ret}
`,
			"branch condition must be i1, found felt (a)",
		},
		{
			"block argument mismatch",
			`
functions:
  - name: f
    params: [{a: felt}]
    blocks:
      - label: entry
        body:
          - {op: br, target: next, args: [a]}
      - label: next
        params: [{b: u32}]
        body:
          - {op: ret}
`,
			"block (next) argument value (a) has type felt, expected u32",
		},
		{
			"values are block local",
			`
functions:
  - name: f
    params: [{a: felt}]
    blocks:
      - label: entry
        body:
          - {op: br, target: next}
      - label: next
        body:
          - {op: ret, args: [a]}
`,
			"value (a) is not defined in block (next)",
		},
		{
			"duplicate function",
			`
functions:
  - name: f
    blocks:
      - label: entry
        body:
          - {op: ret}
  - name: f
    blocks:
      - label: entry
        body:
          - {op: ret}
`,
			"function (f) previously defined at",
		},
		{
			"exec signature mismatch",
			`
functions:
  - name: callee
    params: [{x: u32}]
    returns: [u32]
    blocks:
      - label: entry
        body:
          - {op: ret, args: [x]}
  - name: caller
    params: [{a: felt}]
    blocks:
      - label: entry
        body:
          - {op: exec, callee: callee, dests: [{r: u32}], args: [a]}
          - {op: ret}
`,
			"exec.callee argument value (a) has type felt, expected u32",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, errs := analyze(t, test.content)
			if len(errs) == 0 {
				t.Fatalf("expected error")
			}

			found := false
			for _, err := range errs {
				if strings.Contains(err.Error(), test.message) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected %q, found %v", test.message, errs)
			}
		})
	}
}

func TestAnalyzeReportsErrorsInInputOrder(t *testing.T) {
	content := `
functions:
  - name: first
    blocks:
      - label: entry
        body:
          - {op: ret, args: [x]}
  - name: second
    blocks:
      - label: entry
        body:
          - {op: ret, args: [y]}
`
	_, errs := analyze(t, content)
	if len(errs) != 2 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if !strings.Contains(errs[0].Error(), "value (x)") ||
		!strings.Contains(errs[1].Error(), "value (y)") {
		t.Errorf("errors out of order: %v", errs)
	}
}

const livenessProgram = `
functions:
  - name: f
    params: [{a: felt}, {b: felt}]
    returns: [felt]
    blocks:
      - label: entry
        body:
          - {op: add, dest: c, args: [a, b]}
          - {op: mul, dest: d, args: [c, c]}
          - {op: const, dest: {e: felt}, value: 3}
          - {op: sub, dest: g, args: [d, a]}
          - {op: ret, args: [g]}
`

func TestComputeLiveRanges(t *testing.T) {
	funcDefs, errs := analyze(t, livenessProgram)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	block := funcDefs[0].Blocks[0]
	ranges := ComputeLiveRanges(block)

	got := map[string]LiveRange{}
	for def, live := range ranges {
		got[def.Name] = *live
	}

	expected := map[string]LiveRange{
		"a": {Start: 0, End: 4, NextUses: []int{1, 4}},
		"b": {Start: 0, End: 1, NextUses: []int{1}},
		"c": {Start: 1, End: 2, NextUses: []int{2}},
		"d": {Start: 2, End: 4, NextUses: []int{4}},
		"e": {Start: 3, End: 3},
		"g": {Start: 4, End: 5, NextUses: []int{5}},
	}

	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("unexpected live ranges (-want +got):\n%s", diff)
	}

	a := ranges[block.EntryParameters()[0]]
	if !a.UsedAfter(1) || a.UsedAfter(4) {
		t.Errorf("unexpected UsedAfter for a: %+v", a)
	}
	if a.NextUseAfter(1) != 4 || a.NextUseAfter(4) != -1 {
		t.Errorf("unexpected NextUseAfter for a: %+v", a)
	}
}

func TestPrintLiveness(t *testing.T) {
	funcDefs, errs := analyze(t, livenessProgram)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	out := &bytes.Buffer{}
	PrintLiveness(out).Process(funcDefs[0])

	expected := `Definition: f
  Block 0 (entry):
    a [0, 4] uses=[1 4]
    b [0, 1] uses=[1]
    c [1, 2] uses=[2]
    d [2, 4] uses=[4]
    e [3, unused]
    g [4, 5] uses=[5]
`
	if diff := cmp.Diff(expected, out.String()); diff != "" {
		t.Errorf("unexpected output (-want +got):\n%s", diff)
	}
}
