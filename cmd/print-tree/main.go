package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pattyshack/gt/parseutil"

	"github.com/pattyshack/gull/analyzer"
	"github.com/pattyshack/gull/ast"
	"github.com/pattyshack/gull/parser"
	"github.com/pattyshack/gull/platform/masm"
)

func main() {
	liveness := flag.Bool("liveness", false, "print each block's live ranges")
	flag.Parse()

	targetPlatform := masm.NewPlatform()

	for _, fileName := range flag.Args() {
		fmt.Println("=====================")
		fmt.Println("File name:", fileName)
		fmt.Println("---------------------")
		content, err := os.ReadFile(fileName)
		if err != nil {
			fmt.Println("ReadFile error:", err)
			continue
		}

		emitter := &parseutil.Emitter{}
		funcDefs := parser.Parse(fileName, content, emitter)
		if !emitter.HasErrors() {
			analyzer.Analyze(funcDefs, targetPlatform, emitter)
		}

		for idx, funcDef := range funcDefs {
			fmt.Printf("Function %d:\n", idx)
			fmt.Println(ast.TreeString(funcDef, "  "))
		}

		errs := emitter.Errors()
		if len(errs) > 0 {
			fmt.Println("---------------------------")
			fmt.Println("Found", len(errs), "errors:")
			fmt.Println("---------------------------")
			for idx, err := range errs {
				fmt.Printf("error %d: %s\n", idx, err)
			}
			continue
		}

		if *liveness {
			fmt.Println("---------------------------")
			printer := analyzer.PrintLiveness(os.Stdout)
			for _, funcDef := range funcDefs {
				printer.Process(funcDef)
			}
		}
	}
}
