// Package sentinel wraps the UPDATE-DISABLED marker file behind a typed
// suspension query, so callers never test file existence directly.
package sentinel

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the marker created under the installation root directory.
const FileName = "UPDATE-DISABLED"

// Sentinel controls administrative suspension of update runs.
type Sentinel struct {
	path string
}

// New returns a Sentinel rooted at the installation root directory.
func New(rootDir string) *Sentinel {
	return &Sentinel{path: filepath.Join(rootDir, FileName)}
}

// Path returns the marker file location.
func (s *Sentinel) Path() string {
	return s.path
}

// Suspend creates the marker with a human-readable explanation. Suspending an
// already-suspended installation rewrites the message.
func (s *Sentinel) Suspend(message string) error {
	if !strings.HasSuffix(message, "\n") {
		message += "\n"
	}
	if err := os.WriteFile(s.path, []byte(message), 0o644); err != nil {
		return fmt.Errorf("sentinel: suspend: %w", err)
	}
	return nil
}

// Resume removes the marker. Resuming when not suspended is a no-op.
func (s *Sentinel) Resume() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("sentinel: resume: %w", err)
	}
	return nil
}

// Suspended reports whether runs are suspended, and the stored message when
// they are. The marker's presence alone decides; an unreadable message still
// counts as suspended.
func (s *Sentinel) Suspended() (bool, string) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, ""
		}
		return true, ""
	}
	return true, strings.TrimSpace(string(data))
}
