package orchestrators

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ochairo/stagerunner/internal/domain/entities"
	"github.com/ochairo/stagerunner/internal/domain/interfaces"
	"github.com/ochairo/stagerunner/internal/domain/interfaces/gateways"
)

// StageOrchestratorConfig holds driver settings
type StageOrchestratorConfig struct {
	// WorkDir is the working directory for shell stages
	WorkDir string
	// StageTimeout bounds each stage; zero means no timeout
	StageTimeout time.Duration
}

// StageOrchestrator runs stages from a registry in the requested order
type StageOrchestrator struct {
	registry *Registry
	runner   gateways.CommandRunner
	reporter interfaces.Reporter
	logger   interfaces.Logger
	config   StageOrchestratorConfig
}

// NewStageOrchestrator creates a new stage driver
func NewStageOrchestrator(
	registry *Registry,
	runner gateways.CommandRunner,
	reporter interfaces.Reporter,
	logger interfaces.Logger,
	config StageOrchestratorConfig,
) *StageOrchestrator {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &StageOrchestrator{
		registry: registry,
		runner:   runner,
		reporter: reporter,
		logger:   logger,
		config:   config,
	}
}

// Run executes the named stages in order; no names means the whole catalogue.
// Every stage runs even after a failure. An invalid name returns
// *InvalidStageError before anything runs. A check that returns an error stops
// the run and the error is returned with the outcomes so far.
func (o *StageOrchestrator) Run(ctx context.Context, names []string) (*entities.RunResult, error) {
	if len(names) == 0 {
		names = o.registry.Names()
	}
	if err := o.registry.Validate(names); err != nil {
		return nil, err
	}

	startTime := time.Now()
	result := &entities.RunResult{
		RunID:    uuid.NewString(),
		Outcomes: make([]entities.StageOutcome, 0, len(names)),
	}
	logger := runLogger{base: o.logger, runID: result.RunID}
	logger.Info("starting run", interfaces.F("stages", names))

	for _, name := range names {
		stage, _ := o.registry.Lookup(name)

		o.reporter.StageStarted(name)
		stageStart := time.Now()
		passed, err := o.execute(ctx, stage)
		outcome := entities.StageOutcome{
			Name:     name,
			Passed:   passed && err == nil,
			Duration: time.Since(stageStart),
		}
		result.Outcomes = append(result.Outcomes, outcome)

		if err != nil {
			logger.Error("stage aborted the run",
				interfaces.F("stage", name),
				interfaces.F("error", err))
			result.Duration = time.Since(startTime)
			return result, fmt.Errorf("stage %s: %w", name, err)
		}

		o.reporter.StageFinished(name)
		if !outcome.Passed {
			o.reporter.StageFailed(name)
		}
		logger.Debug("stage finished",
			interfaces.F("stage", name),
			interfaces.F("passed", outcome.Passed),
			interfaces.F("duration", outcome.Duration))
	}

	result.Duration = time.Since(startTime)
	if !result.AllPassed() {
		o.reporter.RunFailed()
	}

	logger.Info("run finished",
		interfaces.F("stage_count", len(result.Outcomes)),
		interfaces.F("failed", result.FailedStages()),
		interfaces.F("duration", result.Duration))

	return result, nil
}

// execute dispatches on the action kind
func (o *StageOrchestrator) execute(ctx context.Context, stage entities.Stage) (bool, error) {
	if o.config.StageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.config.StageTimeout)
		defer cancel()
	}

	switch stage.Action.Kind {
	case entities.ActionShell:
		result := o.runner.RunCommand(ctx, entities.CommandSpec{
			Name:        stage.Action.Command,
			Args:        stage.Action.Args,
			Dir:         o.config.WorkDir,
			Description: stage.Name,
		})
		if !result.Success {
			o.logger.Warn("stage command failed",
				interfaces.F("stage", stage.Name),
				interfaces.F("command", stage.Action.String()),
				interfaces.F("exit_code", result.ExitCode),
				interfaces.F("error", result.Error))
		}
		return result.Success, nil
	case entities.ActionCheck:
		return stage.Action.Check(ctx)
	default:
		return false, fmt.Errorf("unknown action kind %v", stage.Action.Kind)
	}
}

// runLogger tags every entry with the run id
type runLogger struct {
	base  interfaces.Logger
	runID string
}

func (l runLogger) with(fields []interfaces.Field) []interfaces.Field {
	return append([]interfaces.Field{interfaces.F("run_id", l.runID)}, fields...)
}

func (l runLogger) Debug(msg string, fields ...interfaces.Field) { l.base.Debug(msg, l.with(fields)...) }
func (l runLogger) Info(msg string, fields ...interfaces.Field)  { l.base.Info(msg, l.with(fields)...) }
func (l runLogger) Error(msg string, fields ...interfaces.Field) { l.base.Error(msg, l.with(fields)...) }
