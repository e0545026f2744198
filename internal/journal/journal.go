// Package journal appends timestamped progress lines to the configured log
// file, the format the rest of the installation's tooling already writes.
package journal

import (
	"fmt"
	"io"
	"os"
	"time"
)

const stampLayout = "2006-01-02 15:04:05"

// Journal writes append-only, timestamped lines to a log file.
type Journal struct {
	path string
	now  func() time.Time
}

// New returns a Journal appending to the file at path. The file is created
// on first write.
func New(path string) *Journal {
	return &Journal{path: path, now: time.Now}
}

func (j *Journal) open() (*os.File, error) {
	f, err := os.OpenFile(j.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", j.path, err)
	}
	return f, nil
}

// Log appends one timestamped line.
func (j *Journal) Log(format string, args ...any) error {
	f, err := j.open()
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "%s: %s\n", j.now().Format(stampLayout), fmt.Sprintf(format, args...))
	if err != nil {
		return fmt.Errorf("journal: write: %w", err)
	}
	return nil
}

// Notice appends one timestamped line and mirrors the bare message to stderr,
// for conditions an interactive operator should see immediately.
func (j *Journal) Notice(format string, args ...any) error {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return j.Log(format, args...)
}

// Writer opens the log file for raw appending, used to redirect collaborator
// output into the journal. The caller closes it.
func (j *Journal) Writer() (io.WriteCloser, error) {
	return j.open()
}
