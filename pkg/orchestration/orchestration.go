// Package orchestration runs the phase pipeline: strictly in order, one
// phase at a time, stopping at the first failure.
package orchestration

import (
	"context"
	"time"

	"github.com/arthur-debert/bootstrap/pkg/errors"
	"github.com/arthur-debert/bootstrap/pkg/logging"
	"github.com/arthur-debert/bootstrap/pkg/phases"
	"github.com/arthur-debert/bootstrap/pkg/types"
)

// Observer is told about each phase before it runs.
type Observer interface {
	PhaseHeader(index, total int, name string)
	Skipped(name, reason string)
}

// Execute runs pipeline against rc. Workstation phases are skipped when
// rc.BaseOnly is set. The returned error carries the failing phase's exit
// code unless the cause already has its own. The execution context is
// returned in both cases.
func Execute(ctx context.Context, rc *types.RunContext, pipeline []phases.Phase, observer Observer) (*types.ExecutionContext, error) {
	logger := logging.GetLogger("orchestration")
	ec := types.NewExecutionContext()
	defer ec.Complete()

	logger.Debug().
		Int("phases", len(pipeline)).
		Bool("baseOnly", rc.BaseOnly).
		Msg("Starting pipeline")

	for i, phase := range pipeline {
		if rc.BaseOnly && phase.Workstation {
			observer.Skipped(phase.Name, "base only")
			ec.AddPhaseResult(&types.PhaseResult{Name: phase.Name, Status: types.PhaseStatusSkipped})
			continue
		}

		observer.PhaseHeader(i+1, len(pipeline), phase.Name)
		result := &types.PhaseResult{Name: phase.Name, StartTime: time.Now()}

		err := ctx.Err()
		if err == nil {
			err = phase.Run(ctx, rc)
		}
		result.EndTime = time.Now()

		if err != nil {
			result.Status = types.PhaseStatusFailed
			result.Error = err
			ec.AddPhaseResult(result)
			logger.Error().
				Err(err).
				Fields(errors.GetErrorDetails(err)).
				Str("phase", phase.Name).
				Int("exitCode", phase.ExitCode).
				Strs("completed", ec.PhaseNames(types.PhaseStatusCompleted)).
				Msg("Phase failed")
			return ec, errors.Wrapf(err, errors.GetErrorCode(err), "phase %s failed", phase.Name).
				WithDetail("phase", phase.Name).
				WithExitCode(phase.ExitCode)
		}

		result.Status = types.PhaseStatusCompleted
		ec.AddPhaseResult(result)
		logger.Debug().
			Str("phase", phase.Name).
			Dur("duration", result.EndTime.Sub(result.StartTime)).
			Msg("Phase completed")
	}

	ec.Complete()
	logger.Info().
		Int("completed", ec.CompletedPhases).
		Int("skipped", ec.SkippedPhases).
		Strs("skippedPhases", ec.PhaseNames(types.PhaseStatusSkipped)).
		Dur("duration", ec.Duration()).
		Msg("Pipeline completed")
	return ec, nil
}
