// Package executor runs already-validated plan steps as subprocesses. It
// never interprets or re-checks a command; that is the validator's job. The
// executor's only contract is to run commands in order, stop at the first
// failure, and report exactly what happened.
package executor

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/nightwatch-sre/nightwatch/internal/models"
)

// Runner is the contract capabilities depend on, so tests can substitute a
// fake instead of spawning real subprocesses.
type Runner interface {
	Run(ctx context.Context, steps []models.PlanStep) models.ExecutionResult
}

// Subprocess is the default Runner, backed by os/exec.
type Subprocess struct{}

func (Subprocess) Run(ctx context.Context, steps []models.PlanStep) models.ExecutionResult {
	return Run(ctx, steps)
}

// Run executes steps in order, stopping at the first failure. A step fails
// if its process exits with a non-zero code or is terminated by a signal.
func Run(ctx context.Context, steps []models.PlanStep) models.ExecutionResult {
	results := make([]models.StepResult, 0, len(steps))
	failedAt := -1

	for i, step := range steps {
		result := runStep(ctx, step)
		results = append(results, result)
		if result.Status == models.StepFailure {
			failedAt = i
			break
		}
	}

	return models.ExecutionResult{Results: results, FailedAtStep: failedAt}
}

func runStep(ctx context.Context, step models.PlanStep) models.StepResult {
	fields := strings.Fields(step.Action)
	timestamp := time.Now()

	if len(fields) == 0 {
		return models.StepResult{
			Step:      step,
			Status:    models.StepFailure,
			ExitCode:  -1,
			Stderr:    "empty command",
			Timestamp: timestamp,
		}
	}

	cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	status := models.StepSuccess

	if err != nil {
		status = models.StepFailure
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
	}

	return models.StepResult{
		Step:      step,
		Status:    status,
		ExitCode:  exitCode,
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Timestamp: timestamp,
	}
}
