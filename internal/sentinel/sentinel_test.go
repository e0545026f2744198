package sentinel

import (
	"os"
	"testing"
)

func TestSuspendAndResume(t *testing.T) {
	s := New(t.TempDir())

	if suspended, _ := s.Suspended(); suspended {
		t.Fatal("fresh root should not be suspended")
	}

	if err := s.Suspend("maintenance window"); err != nil {
		t.Fatalf("Suspend: %v", err)
	}
	suspended, msg := s.Suspended()
	if !suspended {
		t.Fatal("should be suspended after Suspend")
	}
	if msg != "maintenance window" {
		t.Errorf("message = %q", msg)
	}

	if err := s.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if suspended, _ := s.Suspended(); suspended {
		t.Fatal("should not be suspended after Resume")
	}
}

func TestResumeIdempotent(t *testing.T) {
	s := New(t.TempDir())

	// enable, disable, enable: sentinel ends up absent and no call errors.
	if err := s.Resume(); err != nil {
		t.Fatalf("Resume on absent sentinel: %v", err)
	}
	if err := s.Suspend("x"); err != nil {
		t.Fatalf("Suspend: %v", err)
	}
	if err := s.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if err := s.Resume(); err != nil {
		t.Fatalf("second Resume: %v", err)
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Fatal("sentinel file should be absent")
	}
}

func TestSuspendedIgnoresContent(t *testing.T) {
	root := t.TempDir()
	s := New(root)
	if err := os.WriteFile(s.Path(), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	suspended, msg := s.Suspended()
	if !suspended {
		t.Fatal("empty sentinel file still suspends")
	}
	if msg != "" {
		t.Errorf("message = %q", msg)
	}
}
