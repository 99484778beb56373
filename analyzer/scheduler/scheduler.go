package scheduler

import (
	"fmt"

	"github.com/pattyshack/gt/parseutil"
	"go.uber.org/zap"

	"github.com/pattyshack/gull/analyzer"
	"github.com/pattyshack/gull/analyzer/util"
	"github.com/pattyshack/gull/ast"
	"github.com/pattyshack/gull/operands"
	"github.com/pattyshack/gull/platform"
)

// Emits the operand stack manipulation operations for every block of a
// function.  Values are block local, so each block is scheduled
// independently, starting from its parameters.
//
// A scheduling failure aborts code generation for the function only.
type FunctionScheduler struct {
	platform.Platform
	*parseutil.Emitter

	Options operands.SolverOptions
	Logger  *zap.Logger

	DebugMode bool

	FuncDef *ast.FunctionDefinition

	// In block definition order.
	Blocks      []*BlockState
	BlockStates map[*ast.Block]*BlockState
}

var _ util.Pass[*ast.FunctionDefinition] = &FunctionScheduler{}

func NewFunctionScheduler(
	targetPlatform platform.Platform,
	options operands.SolverOptions,
	logger *zap.Logger,
	emitter *parseutil.Emitter,
) *FunctionScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FunctionScheduler{
		Platform:    targetPlatform,
		Emitter:     emitter,
		Options:     options,
		Logger:      logger,
		BlockStates: map[*ast.Block]*BlockState{},
	}
}

func (scheduler *FunctionScheduler) Process(funcDef *ast.FunctionDefinition) {
	scheduler.FuncDef = funcDef
	logger := scheduler.Logger.With(zap.String("function", funcDef.Name))

	liveness := analyzer.NewLivenessAnalyzer()
	liveness.Process(funcDef)

	for _, block := range funcDef.Blocks {
		state := NewBlockState(
			scheduler.Platform,
			block,
			liveness.LiveRanges[block],
			scheduler.Options,
			logger.With(zap.String("block", block.Label)))
		state.DebugMode = scheduler.DebugMode

		scheduler.Blocks = append(scheduler.Blocks, state)
		scheduler.BlockStates[block] = state

		err := scheduler.scheduleBlock(state)
		if err != nil {
			logger.Warn("failed to schedule function", zap.Error(err))
			return
		}
	}
}

func (scheduler *FunctionScheduler) scheduleBlock(state *BlockState) error {
	for idx, inst := range state.Instructions {
		constraints := scheduler.InstructionConstraints(inst)
		opScheduler := newOperationsScheduler(state, idx+1, inst, constraints)

		err := opScheduler.ScheduleOperations()
		if err != nil {
			scheduler.EmitErrors(
				parseutil.NewLocationError(
					inst.Loc(),
					"failed to schedule operands for (%s): %s",
					fmt.Sprint(inst),
					err))
			return err
		}
	}
	return nil
}

// Schedules each function concurrently.  Returns the successfully scheduled
// functions in input order.  Diagnostics are reported in input order.
func Schedule(
	funcDefs []*ast.FunctionDefinition,
	targetPlatform platform.Platform,
	options operands.SolverOptions,
	logger *zap.Logger,
	debugMode bool,
	emitter *parseutil.Emitter,
) []*FunctionScheduler {
	schedulers := make(map[*ast.FunctionDefinition]*FunctionScheduler, len(funcDefs))
	for _, funcDef := range funcDefs {
		scheduler := NewFunctionScheduler(
			targetPlatform,
			options,
			logger,
			&parseutil.Emitter{})
		scheduler.DebugMode = debugMode
		schedulers[funcDef] = scheduler
	}

	util.ParallelProcess(
		funcDefs,
		func(funcDef *ast.FunctionDefinition) {
			schedulers[funcDef].Process(funcDef)
		})

	result := []*FunctionScheduler{}
	for _, funcDef := range funcDefs {
		scheduler := schedulers[funcDef]
		if scheduler.HasErrors() {
			emitter.EmitErrors(scheduler.Errors()...)
			continue
		}
		result = append(result, scheduler)
	}
	return result
}
