// Package lock implements the ONGOING-UPDATE.pid advisory lock: an
// exclusively-created file holding the owning process id, with a liveness
// probe as the staleness fallback.
package lock

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/starford/srcupdate/internal/apperr"
)

// FileName is the lock file created under the installation root directory.
const FileName = "ONGOING-UPDATE.pid"

// Lock guards a single in-progress update run.
type Lock struct {
	path string
	held bool
}

// New returns a Lock rooted at the installation root directory.
func New(rootDir string) *Lock {
	return &Lock{path: filepath.Join(rootDir, FileName)}
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// Owner reads the process id stored in the lock file. fs.ErrNotExist is
// returned when no lock is present.
func (l *Lock) Owner() (int, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("lock: malformed pid in %s: %w", l.path, err)
	}
	return pid, nil
}

// Acquire takes the lock for the current process. The create is exclusive, so
// two racing invocations cannot both succeed. When the file already exists
// the stored pid is probed: a dead owner means the lock is stale and it is
// removed before one retry; a live owner yields ErrLockHeld and the file is
// left untouched.
//
// onStale, when non-nil, is called with the dead pid before removal so the
// caller can journal the cleanup.
func (l *Lock) Acquire(onStale func(pid int)) error {
	for attempt := 0; attempt < 2; attempt++ {
		err := l.create()
		if err == nil {
			l.held = true
			return nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("lock: acquire: %w", err)
		}

		pid, ownerErr := l.Owner()
		if ownerErr != nil {
			if errors.Is(ownerErr, fs.ErrNotExist) {
				// Lost a race with the previous owner's release;
				// retry the exclusive create.
				continue
			}
			// Unreadable or garbage content: treat as stale.
			pid = 0
		}
		if pid > 0 && alive(pid) {
			return fmt.Errorf("lock: pid %d still running: %w", pid, apperr.ErrLockHeld)
		}
		if onStale != nil {
			onStale(pid)
		}
		if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("lock: remove stale: %w", err)
		}
	}
	return fmt.Errorf("lock: %s: %w", l.path, apperr.ErrLockHeld)
}

func (l *Lock) create() error {
	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	_, werr := fmt.Fprintf(f, "%d\n", os.Getpid())
	cerr := f.Close()
	if werr != nil {
		_ = os.Remove(l.path)
		return werr
	}
	if cerr != nil {
		_ = os.Remove(l.path)
		return cerr
	}
	return nil
}

// Release removes the lock file. Releasing an unheld lock is an error only
// when the file belongs to someone else.
func (l *Lock) Release() error {
	if !l.held {
		return nil
	}
	l.held = false
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("lock: release: %w", err)
	}
	return nil
}

// alive reports whether a process with the given pid exists. Signal 0
// performs the existence check without delivering anything; EPERM still
// means the process is there.
func alive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	return errors.Is(err, syscall.EPERM)
}
