// Package conf resolves values from the legacy line-oriented configuration
// file shared with the mirror and indexing tooling. The format is one
// "key: value" entry per line; values may embed the %(root_dir)s placeholder,
// which is replaced with the resolved root_dir entry.
package conf

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/starford/srcupdate/internal/apperr"
)

// RootPlaceholder is the interpolation token accepted inside values.
const RootPlaceholder = "%(root_dir)s"

// Keys the coordinator requires to be present and non-empty.
const (
	KeyRootDir  = "root_dir"
	KeyBinDir   = "bin_dir"
	KeyCacheDir = "cache_dir"
	KeyLogFile  = "log_file"
)

// Resolver answers key lookups against a parsed configuration file.
type Resolver struct {
	lines   []string
	rootDir string
}

// Open reads the configuration file at path and resolves root_dir up front so
// later lookups can interpolate it.
func Open(path string) (*Resolver, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("conf: open %s: %w", path, err)
	}
	defer f.Close()

	r := &Resolver{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		r.lines = append(r.lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("conf: read %s: %w", path, err)
	}

	// root_dir is allowed to be absent; Get reports that when a value
	// actually needs it.
	r.rootDir = r.lookup(KeyRootDir)
	return r, nil
}

// lookup returns the raw first-token value for key, or "" when no line
// matches. The first line starting with "key:" wins; the value is the first
// whitespace-delimited token after the colon.
func (r *Resolver) lookup(key string) string {
	prefix := key + ":"
	for _, line := range r.lines {
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		fields := strings.Fields(line[len(prefix):])
		if len(fields) == 0 {
			return ""
		}
		return fields[0]
	}
	return ""
}

// Get resolves key, interpolating %(root_dir)s. An empty result is an error:
// the caller always needs a concrete value.
func (r *Resolver) Get(key string) (string, error) {
	val := r.lookup(key)
	if strings.Contains(val, RootPlaceholder) {
		if r.rootDir == "" {
			return "", fmt.Errorf("conf: %q references %s: %w", key, RootPlaceholder, apperr.ErrMissingKey)
		}
		val = strings.ReplaceAll(val, RootPlaceholder, r.rootDir)
	}
	if val == "" {
		return "", fmt.Errorf("conf: %q: %w", key, apperr.ErrMissingKey)
	}
	return val, nil
}

// Require resolves every key and fails on the first empty one. Used by the
// coordinator before any lock or sentinel is touched.
func (r *Resolver) Require(keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		v, err := r.Get(k)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}
