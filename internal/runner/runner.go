// Package runner invokes external collaborator executables and reports a
// structured result instead of discarding their exit status.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Result describes one collaborator invocation.
type Result struct {
	// ExitCode is the process exit status; 0 on success, -1 when the
	// process never started or was killed by a signal.
	ExitCode int

	// Err is non-nil when the invocation did not complete with status 0.
	Err error
}

// Failed reports whether the collaborator did anything other than exit 0.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Run executes name with args, blocking until it returns. There is no
// timeout; cancellation comes from ctx only. When output is non-nil both
// stdout and stderr are redirected into it; otherwise the collaborator
// inherits the parent's streams and does its own logging.
func Run(ctx context.Context, name string, args []string, output io.Writer) Result {
	cmd := exec.CommandContext(ctx, name, args...)
	if output != nil {
		cmd.Stdout = output
		cmd.Stderr = output
	} else {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	err := cmd.Run()
	if err == nil {
		return Result{ExitCode: 0}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Result{
			ExitCode: exitErr.ExitCode(),
			Err:      fmt.Errorf("runner: %s exited %d", name, exitErr.ExitCode()),
		}
	}
	return Result{ExitCode: -1, Err: fmt.Errorf("runner: %s: %w", name, err)}
}
