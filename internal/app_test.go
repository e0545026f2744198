package internal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/srcupdate/internal/apperr"
	"github.com/starford/srcupdate/internal/lock"
	"github.com/starford/srcupdate/internal/sentinel"
	"github.com/starford/srcupdate/internal/testutil"
)

func testApp(t *testing.T, confContent string) (*App, string) {
	t.Helper()
	confPath := testutil.WriteConf(t, confContent)

	cfg := NewDefaultConfig()
	cfg.Conf.Path = confPath
	cfg.History.Path = ""

	app, err := New(
		WithConfig(cfg),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return app, confPath
}

func fullConf(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	content := fmt.Sprintf(
		"root_dir: %s\nbin_dir: %s\ncache_dir: %%(root_dir)s/cache\nlog_file: %%(root_dir)s/update.log\n",
		root, filepath.Join(root, "bin"),
	)
	return root, content
}

func TestEnableDisableCycle(t *testing.T) {
	root, content := fullConf(t)
	app, _ := testApp(t, content)

	if err := app.Enable(); err != nil {
		t.Fatalf("Enable on fresh root: %v", err)
	}
	if err := app.Disable("release freeze"); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	if suspended, msg := sentinel.New(root).Suspended(); !suspended || msg != "release freeze" {
		t.Fatalf("suspended = %v msg = %q", suspended, msg)
	}
	if err := app.Enable(); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	if suspended, _ := sentinel.New(root).Suspended(); suspended {
		t.Fatal("still suspended after Enable")
	}
}

func TestDisableDefaultMessage(t *testing.T) {
	root, content := fullConf(t)
	app, _ := testApp(t, content)

	if err := app.Disable(""); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	_, msg := sentinel.New(root).Suspended()
	if !strings.Contains(msg, "updates disabled by") {
		t.Errorf("default message = %q", msg)
	}
}

func TestUpdateSkipsWhenSuspended(t *testing.T) {
	_, content := fullConf(t)
	app, _ := testApp(t, content)

	if err := app.Disable("stop"); err != nil {
		t.Fatal(err)
	}
	err := app.Update(context.Background())
	if !errors.Is(err, apperr.ErrSuspended) {
		t.Fatalf("want ErrSuspended, got %v", err)
	}
}

func TestUpdateFailsOnMissingConfigKey(t *testing.T) {
	root := t.TempDir()
	// No log_file entry.
	content := fmt.Sprintf("root_dir: %s\nbin_dir: %s/bin\ncache_dir: %s/cache\n", root, root, root)
	app, _ := testApp(t, content)

	err := app.Update(context.Background())
	if !errors.Is(err, apperr.ErrMissingKey) {
		t.Fatalf("want ErrMissingKey, got %v", err)
	}
	// The guard aborts before any lock is touched.
	if _, err := os.Stat(lock.New(root).Path()); !os.IsNotExist(err) {
		t.Error("lock file created despite configuration error")
	}
}

func TestUpdateRunsAndReleasesLock(t *testing.T) {
	root, content := fullConf(t)
	app, _ := testApp(t, content)

	// The collaborator executables do not exist; the run is best-effort
	// and must still complete and release the lock.
	if err := app.Update(context.Background()); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := os.Stat(lock.New(root).Path()); !os.IsNotExist(err) {
		t.Error("lock file left behind")
	}
	data, err := os.ReadFile(filepath.Join(root, "update.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "starting update run") {
		t.Errorf("run not journalled: %q", data)
	}
}

func TestStatusReportsSuspension(t *testing.T) {
	_, content := fullConf(t)
	app, _ := testApp(t, content)

	var out bytes.Buffer
	if err := app.Status(&out); err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !strings.Contains(out.String(), "updates: enabled") {
		t.Errorf("status = %q", out.String())
	}

	if err := app.Disable("frozen"); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := app.Status(&out); err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !strings.Contains(out.String(), "disabled (frozen)") {
		t.Errorf("status = %q", out.String())
	}
}

func TestExtractWritesSortedLines(t *testing.T) {
	_, content := fullConf(t)
	app, _ := testApp(t, content)

	src := filepath.Join(t.TempDir(), "Sources")
	input := "Package: foo\nVersion: 1.0\nPackage: bar\nVersion: 2.0\n"
	if err := os.WriteFile(src, []byte(input), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := app.Extract(context.Background(), []string{src}, &out); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if out.String() != "bar/2.0\nfoo/1.0\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestNewRequiresConfig(t *testing.T) {
	if _, err := New(); err == nil {
		t.Fatal("New without config should fail")
	}
}
