package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestBareInvocationShowsUsage(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCommand()
	cmd.Writer = &out

	if err := cmd.Run(context.Background(), []string{"srcupdate"}); err != nil {
		t.Fatalf("bare invocation should succeed: %v", err)
	}
	if !strings.Contains(out.String(), "USAGE") {
		t.Errorf("no usage printed: %q", out.String())
	}
}

func TestUnknownCommandShowsUsage(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCommand()
	cmd.Writer = &out

	if err := cmd.Run(context.Background(), []string{"srcupdate", "frobnicate"}); err != nil {
		t.Fatalf("unknown command should not error: %v", err)
	}
	s := out.String()
	if !strings.Contains(s, `unknown command "frobnicate"`) {
		t.Errorf("unknown command not reported: %q", s)
	}
	if !strings.Contains(s, "USAGE") {
		t.Errorf("no usage printed: %q", s)
	}
}
