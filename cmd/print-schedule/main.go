package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pattyshack/gt/parseutil"
	"go.uber.org/zap"

	"github.com/pattyshack/gull/analyzer"
	"github.com/pattyshack/gull/analyzer/scheduler"
	"github.com/pattyshack/gull/config"
	"github.com/pattyshack/gull/parser"
	"github.com/pattyshack/gull/platform"
	"github.com/pattyshack/gull/platform/masm"
)

const (
	colorRed   = "\033[31m"
	colorReset = "\033[0m"
)

func main() {
	configPath := flag.String("config", "", "solver / logging config file (.yaml or .toml)")
	debug := flag.Bool("debug", false, "print live ranges and per operation stack traces")
	flag.Usage = func() {
		fmt.Fprintf(
			flag.CommandLine.Output(),
			"usage: %s [-config file] [-debug] <program.yaml>...\n",
			os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}

	logger, err := cfg.Log.NewLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	colorize := isatty.IsTerminal(os.Stdout.Fd()) ||
		isatty.IsCygwinTerminal(os.Stdout.Fd())

	targetPlatform := masm.NewPlatform()
	numErrors := 0
	for _, fileName := range flag.Args() {
		numErrors += processFile(
			fileName,
			targetPlatform,
			cfg,
			logger,
			*debug,
			colorize)
	}

	_ = logger.Sync()
	if numErrors > 0 {
		os.Exit(1)
	}
}

func processFile(
	fileName string,
	targetPlatform platform.Platform,
	cfg *config.Config,
	logger *zap.Logger,
	debug bool,
	colorize bool,
) int {
	logger = logger.With(zap.String("file", fileName))

	content, err := os.ReadFile(fileName)
	if err != nil {
		logger.Error("failed to read program", zap.Error(err))
		return 1
	}

	emitter := &parseutil.Emitter{}
	funcDefs := parser.Parse(fileName, content, emitter)
	if !emitter.HasErrors() {
		analyzer.Analyze(funcDefs, targetPlatform, emitter)
	}

	if !emitter.HasErrors() {
		schedulers := scheduler.Schedule(
			funcDefs,
			targetPlatform,
			cfg.Solver.Options(logger),
			logger,
			debug,
			emitter)

		for _, funcScheduler := range schedulers {
			printSchedule(funcScheduler, targetPlatform, emitter)
			if debug {
				scheduler.Debug(funcScheduler, os.Stdout)
			}
		}
	}

	errs := emitter.Errors()
	for _, err := range errs {
		if colorize {
			fmt.Printf("%serror%s: %s\n", colorRed, colorReset, err)
		} else {
			fmt.Printf("error: %s\n", err)
		}
	}

	logger.Debug(
		"processed program",
		zap.Int("functions", len(funcDefs)),
		zap.Int("errors", len(errs)))
	return len(errs)
}

func printSchedule(
	funcScheduler *scheduler.FunctionScheduler,
	targetPlatform platform.Platform,
	emitter *parseutil.Emitter,
) {
	fmt.Printf("proc.%s\n", funcScheduler.FuncDef.Name)
	for _, state := range funcScheduler.Blocks {
		instructions, err := targetPlatform.TranslateOperations(state.Operations)
		if err != nil {
			emitter.EmitErrors(
				parseutil.NewLocationError(state.Loc(), "%s", err))
			continue
		}

		fmt.Printf("  %s:\n", state.Label)
		for _, instruction := range instructions {
			fmt.Printf("    %s\n", instruction)
		}
	}
	fmt.Println("end")
}
