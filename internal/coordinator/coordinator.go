// Package coordinator guards the single-flight update run: disable sentinel,
// PID lock with stale recovery, sequential collaborator invocation, and
// journalled progress.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/starford/srcupdate/internal/apperr"
	"github.com/starford/srcupdate/internal/history"
	"github.com/starford/srcupdate/internal/journal"
	"github.com/starford/srcupdate/internal/lock"
	"github.com/starford/srcupdate/internal/runner"
	"github.com/starford/srcupdate/internal/sentinel"
)

// Params carries the resolved configuration a Coordinator needs.
type Params struct {
	// RootDir hosts the lock file and disable sentinel.
	RootDir string

	// CacheDir is created before the run if absent; the update
	// collaborator writes its caches there.
	CacheDir string

	// LogFile receives the timestamped journal and mirror-sync output.
	LogFile string

	// ConfPath is handed to the mirror-sync collaborator as its sole
	// argument.
	ConfPath string

	// MirrorCmd and UpdateCmd are the collaborator executables.
	MirrorCmd string
	UpdateCmd string

	// History is optional; when nil no run records are kept.
	History *history.DB

	Logger *slog.Logger
}

// Coordinator serializes update runs through the filesystem lock.
type Coordinator struct {
	p        Params
	journal  *journal.Journal
	sentinel *sentinel.Sentinel
	lock     *lock.Lock

	// invoke is swapped out in tests.
	invoke func(ctx context.Context, name string, args []string, output io.Writer) runner.Result
}

// New builds a Coordinator from resolved configuration.
func New(p Params) *Coordinator {
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	return &Coordinator{
		p:        p,
		journal:  journal.New(p.LogFile),
		sentinel: sentinel.New(p.RootDir),
		lock:     lock.New(p.RootDir),
		invoke:   runner.Run,
	}
}

// Run executes one guarded update attempt.
//
// A present disable sentinel yields apperr.ErrSuspended without touching the
// lock; a lock held by a live process yields apperr.ErrLockHeld with the lock
// content untouched. Collaborator failures are journalled and recorded but do
// not fail the run: the lock is always released and the next scheduled
// attempt proceeds.
//
// Every attempt leaves a history row when a store is configured: refused
// attempts finish as aborted, executed runs as ok or degraded.
func (c *Coordinator) Run(ctx context.Context) error {
	runID := c.beginHistory()

	if suspended, msg := c.sentinel.Suspended(); suspended {
		_ = c.journal.Notice("update disabled, skipping run: %s", msg)
		c.finishHistory(runID, history.StatusAborted, 0, 0)
		return fmt.Errorf("coordinator: %s present: %w", c.sentinel.Path(), apperr.ErrSuspended)
	}

	if err := c.lock.Acquire(func(pid int) {
		_ = c.journal.Log("removing stale lock file left by pid %d", pid)
		c.p.Logger.Warn("removed stale lock", slog.Int("pid", pid))
	}); err != nil {
		if errors.Is(err, apperr.ErrLockHeld) {
			_ = c.journal.Log("update already running, aborting: %v", err)
		}
		c.finishHistory(runID, history.StatusAborted, 0, 0)
		return fmt.Errorf("coordinator: %w", err)
	}
	defer func() {
		if err := c.lock.Release(); err != nil {
			c.p.Logger.Error("lock release failed", slog.String("error", err.Error()))
		}
	}()

	if err := os.MkdirAll(c.p.CacheDir, 0o755); err != nil {
		c.finishHistory(runID, history.StatusAborted, 0, 0)
		return fmt.Errorf("coordinator: create cache dir: %w", err)
	}

	_ = c.journal.Log("starting update run, pid %d", os.Getpid())

	mirror := c.runMirror(ctx)
	update := c.runUpdate(ctx)

	status := history.StatusOK
	if mirror.Failed() || update.Failed() {
		status = history.StatusDegraded
	}
	c.finishHistory(runID, status, mirror.ExitCode, update.ExitCode)

	_ = c.journal.Log("update run finished, status %s", status)
	c.p.Logger.Info("update run finished",
		slog.String("status", status),
		slog.Int("mirror_exit", mirror.ExitCode),
		slog.Int("update_exit", update.ExitCode))
	return nil
}

// beginHistory records the attempt start, returning 0 when no store is
// configured or the insert fails.
func (c *Coordinator) beginHistory() int64 {
	if c.p.History == nil {
		return 0
	}
	id, err := c.p.History.Begin(os.Getpid())
	if err != nil {
		c.p.Logger.Warn("history record failed", slog.String("error", err.Error()))
		return 0
	}
	return id
}

func (c *Coordinator) finishHistory(id int64, status string, mirrorExit, updateExit int) {
	if id == 0 {
		return
	}
	if err := c.p.History.Finish(id, status, mirrorExit, updateExit); err != nil {
		c.p.Logger.Warn("history record failed", slog.String("error", err.Error()))
	}
}

// runMirror invokes the mirror-sync collaborator with the configuration file
// path as its sole argument, combined output appended to the log file.
func (c *Coordinator) runMirror(ctx context.Context) runner.Result {
	_ = c.journal.Log("syncing mirror via %s", c.p.MirrorCmd)

	w, err := c.journal.Writer()
	if err != nil {
		c.p.Logger.Error("cannot redirect mirror output", slog.String("error", err.Error()))
		return c.invoke(ctx, c.p.MirrorCmd, []string{c.p.ConfPath}, nil)
	}
	defer w.Close()

	res := c.invoke(ctx, c.p.MirrorCmd, []string{c.p.ConfPath}, w)
	if res.Failed() {
		_ = c.journal.Log("mirror sync failed: %v", res.Err)
	} else {
		_ = c.journal.Log("mirror sync done")
	}
	return res
}

// runUpdate invokes the update collaborator, which takes no arguments and
// does its own logging.
func (c *Coordinator) runUpdate(ctx context.Context) runner.Result {
	_ = c.journal.Log("updating sources via %s", c.p.UpdateCmd)

	res := c.invoke(ctx, c.p.UpdateCmd, nil, nil)
	if res.Failed() {
		_ = c.journal.Log("source update failed: %v", res.Err)
	} else {
		_ = c.journal.Log("source update done")
	}
	return res
}
