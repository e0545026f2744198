// Package internal wires configuration resolution, the run coordinator, and
// the extraction helpers behind the CLI commands.
package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/user"
	"time"

	"github.com/starford/srcupdate/internal/checksum"
	"github.com/starford/srcupdate/internal/conf"
	"github.com/starford/srcupdate/internal/coordinator"
	"github.com/starford/srcupdate/internal/extract"
	"github.com/starford/srcupdate/internal/history"
	"github.com/starford/srcupdate/internal/sentinel"
)

// App holds the wired application.
type App struct {
	cfg    *Config
	logger *slog.Logger
}

// New builds an App from options.
func New(opts ...Option) (*App, error) {
	app := &App{}
	for _, opt := range opts {
		opt(app)
	}
	if app.cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logger == nil {
		app.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: app.cfg.App.LogLevel,
		}))
		slog.SetDefault(app.logger)
	}
	return app, nil
}

// resolve opens the legacy configuration file and requires every key the
// coordinator depends on. This happens before any lock or sentinel access.
func (a *App) resolve() (map[string]string, error) {
	r, err := conf.Open(a.cfg.Conf.Path)
	if err != nil {
		return nil, err
	}
	return r.Require(conf.KeyRootDir, conf.KeyBinDir, conf.KeyCacheDir, conf.KeyLogFile)
}

// rootDir resolves just the installation root, for the sentinel-only
// commands.
func (a *App) rootDir() (string, error) {
	r, err := conf.Open(a.cfg.Conf.Path)
	if err != nil {
		return "", err
	}
	return r.Get(conf.KeyRootDir)
}

// Update executes one guarded update run.
func (a *App) Update(ctx context.Context) error {
	vals, err := a.resolve()
	if err != nil {
		return err
	}

	params := coordinator.Params{
		RootDir:   vals[conf.KeyRootDir],
		CacheDir:  vals[conf.KeyCacheDir],
		LogFile:   vals[conf.KeyLogFile],
		ConfPath:  a.cfg.Conf.Path,
		MirrorCmd: a.cfg.Commands.Resolve(vals[conf.KeyBinDir], a.cfg.Commands.Mirror),
		UpdateCmd: a.cfg.Commands.Resolve(vals[conf.KeyBinDir], a.cfg.Commands.Update),
		Logger:    a.logger,
	}

	if a.cfg.History.Enabled() {
		db, err := history.Open(a.cfg.History.Path)
		if err != nil {
			a.logger.Warn("run history unavailable", slog.String("error", err.Error()))
		} else {
			defer db.Close()
			params.History = db
		}
	}

	return coordinator.New(params).Run(ctx)
}

// Enable removes the disable sentinel. Removing an absent sentinel succeeds.
func (a *App) Enable() error {
	root, err := a.rootDir()
	if err != nil {
		return err
	}
	return sentinel.New(root).Resume()
}

// Disable creates the disable sentinel. An empty message is replaced with a
// who/when line for the operator that finds it later.
func (a *App) Disable(message string) error {
	root, err := a.rootDir()
	if err != nil {
		return err
	}
	if message == "" {
		who := "unknown"
		if u, err := user.Current(); err == nil {
			who = u.Username
		}
		message = fmt.Sprintf("updates disabled by %s on %s", who, time.Now().Format(time.RFC1123))
	}
	return sentinel.New(root).Suspend(message)
}

// Status prints the suspension state and recent run history to w.
func (a *App) Status(w io.Writer) error {
	root, err := a.rootDir()
	if err != nil {
		return err
	}

	if suspended, msg := sentinel.New(root).Suspended(); suspended {
		fmt.Fprintf(w, "updates: disabled (%s)\n", msg)
	} else {
		fmt.Fprintln(w, "updates: enabled")
	}

	if !a.cfg.History.Enabled() {
		return nil
	}
	db, err := history.Open(a.cfg.History.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.Recent(10)
	if err != nil {
		return err
	}
	for _, r := range runs {
		finished := "running"
		if !r.FinishedAt.IsZero() {
			finished = r.FinishedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "run %d: pid %d started %s finished %s status %s (mirror %d, update %d)\n",
			r.ID, r.PID, r.StartedAt.Format(time.RFC3339), finished, r.Status, r.MirrorExit, r.UpdateExit)
	}
	return nil
}

// Extract scans control files and writes sorted unique name/version lines.
func (a *App) Extract(ctx context.Context, paths []string, w io.Writer) error {
	ids, err := extract.Files(ctx, paths)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := fmt.Fprintln(w, id); err != nil {
			return err
		}
	}
	return nil
}

// Checksums writes SHA256SUM(1) lines for every regular file under dir.
func (a *App) Checksums(dir string, w io.Writer) error {
	entries, err := checksum.Tree(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := fmt.Fprintln(w, e.String()); err != nil {
			return err
		}
	}
	return nil
}
