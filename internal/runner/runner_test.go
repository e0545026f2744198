package runner

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestRunSuccess(t *testing.T) {
	var out bytes.Buffer
	res := Run(context.Background(), "sh", []string{"-c", "echo synced"}, &out)
	if res.Failed() {
		t.Fatalf("unexpected failure: %v", res.Err)
	}
	if res.ExitCode != 0 {
		t.Errorf("exit code = %d", res.ExitCode)
	}
	if got := out.String(); got != "synced\n" {
		t.Errorf("output = %q", got)
	}
}

func TestRunCombinesStderr(t *testing.T) {
	var out bytes.Buffer
	res := Run(context.Background(), "sh", []string{"-c", "echo out; echo err >&2"}, &out)
	if res.Failed() {
		t.Fatalf("unexpected failure: %v", res.Err)
	}
	s := out.String()
	if !strings.Contains(s, "out") || !strings.Contains(s, "err") {
		t.Errorf("combined output = %q", s)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	res := Run(context.Background(), "sh", []string{"-c", "exit 3"}, &bytes.Buffer{})
	if !res.Failed() {
		t.Fatal("expected failure")
	}
	if res.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", res.ExitCode)
	}
}

func TestRunMissingExecutable(t *testing.T) {
	res := Run(context.Background(), "/nonexistent/mirror-sync", nil, &bytes.Buffer{})
	if !res.Failed() {
		t.Fatal("expected failure")
	}
	if res.ExitCode != -1 {
		t.Errorf("exit code = %d, want -1", res.ExitCode)
	}
}
