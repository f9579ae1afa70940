// Package runner executes one mirroring job as a supervised rsync child
// process and turns the outcome into a RunResult.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"backsync/internal/config"
	"backsync/internal/model"
	"backsync/internal/stats"
	"backsync/internal/syncerr"

	"go.uber.org/zap"
)

// DefaultTimeout bounds one job's wall-clock time, measured from
// invocation start.
const DefaultTimeout = 3600 * time.Second

const timeoutMessage = "Timeout after 1 hour"

// commandResult is an internal process execution response.
type commandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (commandResult, error)
}

// execRunner executes commands via os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := commandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		result.ExitCode = -1
		if exitErr, ok := errors.AsType[*exec.ExitError](err); ok {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}

	return result, nil
}

// Runner builds and supervises the rsync invocation for one job.
type Runner struct {
	settings config.Settings
	runner   commandRunner
	timeout  time.Duration
	log      *zap.Logger
}

func New(settings config.Settings, log *zap.Logger) *Runner {
	return &Runner{
		settings: settings,
		runner:   execRunner{},
		timeout:  DefaultTimeout,
		log:      log,
	}
}

// buildArgs assembles the rsync argument list: remote shell, configured
// option tokens, one exclude flag per pattern, then the positionals.
func (r *Runner) buildArgs(job config.JobSpec) []string {
	args := []string{"-e", remoteShell(r.settings.SSHKey)}
	args = append(args, r.settings.RsyncOptions...)

	for _, pattern := range job.Exclude {
		args = append(args, "--exclude", pattern)
	}

	return append(args, job.Source, job.Destination)
}

func remoteShell(sshKey string) string {
	if sshKey != "" {
		return fmt.Sprintf("ssh -i %s -o StrictHostKeyChecking=no", sshKey)
	}
	return "ssh -o StrictHostKeyChecking=no"
}

// Run attempts the job exactly once and always produces a RunResult; every
// failure mode is recorded rather than returned.
func (r *Runner) Run(ctx context.Context, job config.JobSpec) model.RunResult {
	args := r.buildArgs(job)

	result := model.RunResult{
		Name:        job.Name,
		Source:      job.Source,
		Destination: job.Destination,
		StartedAt:   time.Now(),
		Stats:       map[string]string{},
	}

	r.log.Info("starting sync",
		zap.String("job", job.Name),
		zap.String("src", job.Source),
		zap.String("dst", job.Destination))

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	out, err := r.runner.Run(runCtx, "rsync", args...)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		result.Success = true
		result.State = model.StateSucceeded
		result.Duration = elapsed.Seconds()
		result.Stats = stats.Parse(out.Stdout)
		result.Stdout = out.Stdout
		result.Stderr = out.Stderr

		r.log.Info("sync completed",
			zap.String("job", job.Name),
			zap.Float64("duration_s", result.Duration))

	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		result.State = model.StateTimedOut
		result.ReturnCode = -1
		result.Duration = r.timeout.Seconds()
		result.Error = timeoutMessage
		result.Stderr = "Process timed out"

		r.log.Error("sync timed out",
			zap.String("job", job.Name),
			zap.Error(syncerr.ErrJobTimeout))

	case out.ExitCode >= 0:
		// The tool ran and exited nonzero; keep what it reported.
		result.State = model.StateFailed
		result.ReturnCode = out.ExitCode
		result.Duration = elapsed.Seconds()
		result.Stats = stats.Parse(out.Stdout)
		result.Stdout = out.Stdout
		result.Stderr = out.Stderr

		r.log.Error("sync failed",
			zap.String("job", job.Name),
			zap.Int("return_code", out.ExitCode),
			zap.String("stderr", out.Stderr))

	default:
		// Invocation never produced a process exit, e.g. rsync missing.
		// Duration stays 0: it reflects time to the known failure point.
		result.State = model.StateErrored
		result.ReturnCode = -1
		result.Error = err.Error()
		result.Stderr = err.Error()

		r.log.Error("sync errored",
			zap.String("job", job.Name),
			zap.Error(fmt.Errorf("%w: %w", syncerr.ErrJobExecution, err)))
	}

	return result
}
