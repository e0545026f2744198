// Package checksum computes and parses SHA256SUM(1)-format checksum lists
// for extracted package trees.
package checksum

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Entry is one checksummed file, path relative to the tree root.
type Entry struct {
	SHA256 string
	Path   string
}

// String renders the entry in SHA256SUM(1) format: digest, two spaces, path.
func (e Entry) String() string {
	return e.SHA256 + "  " + e.Path
}

// Tree checksums every regular file under dir, returning entries sorted by
// path. Symlinks and other non-regular files are skipped.
func Tree(dir string) ([]Entry, error) {
	var out []Entry
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		sum, err := fileSum(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		out = append(out, Entry{SHA256: sum, Path: rel})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("checksum: tree %s: %w", dir, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func fileSum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ParseSums reads SHA256SUM(1) lines: 64 hex digits, two spaces, path. Lines
// too short to hold both columns are skipped.
func ParseSums(r io.Reader) ([]Entry, error) {
	var out []Entry
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if len(line) < 67 {
			continue
		}
		out = append(out, Entry{SHA256: line[0:64], Path: line[66:]})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("checksum: parse: %w", err)
	}
	return out, nil
}
