// Package extract derives package/version identifiers from Debian control
// file streams such as Sources indices.
package extract

import (
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/ulikunitz/xz"
	"golang.org/x/sync/errgroup"
)

// fieldRe matches the two control fields the extractor cares about. Field
// names are case-insensitive per Debian policy.
var fieldRe = regexp.MustCompile(`(?i)^(Package|Version):\s*(\S+)`)

// Scan reads control-file lines from r, calling emit for every completed
// package/version pair. A Package line loads the pending register,
// overwriting any value a previous Package line left unconsumed; a Version
// line with a loaded register emits and clears it. Unpaired Version lines and
// all other fields are ignored.
func Scan(r io.Reader, emit func(pkg, version string)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	pending := ""
	for sc.Scan() {
		m := fieldRe.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		switch strings.ToLower(m[1]) {
		case "package":
			pending = m[2]
		case "version":
			if pending != "" {
				emit(pending, m[2])
				pending = ""
			}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("extract: scan: %w", err)
	}
	return nil
}

// Files scans every path, decompressing by file suffix, and returns the union
// of identifiers as sorted unique "name/version" strings. Files are scanned
// concurrently; the merged set makes ordering irrelevant.
func Files(ctx context.Context, paths []string) ([]string, error) {
	var mu sync.Mutex
	seen := make(map[string]struct{})

	g, ctx := errgroup.WithContext(ctx)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return scanFile(path, func(pkg, version string) {
				mu.Lock()
				seen[pkg+"/"+version] = struct{}{}
				mu.Unlock()
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func scanFile(path string, emit func(pkg, version string)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("extract: open %s: %w", path, err)
	}
	defer f.Close()

	r, err := decompress(f, path)
	if err != nil {
		return fmt.Errorf("extract: decompress %s: %w", path, err)
	}
	return Scan(r, emit)
}

// decompress wraps r according to the file name suffix. Unknown suffixes pass
// through as plain text.
func decompress(r io.Reader, name string) (io.Reader, error) {
	switch {
	case strings.HasSuffix(name, ".gz"):
		return gzip.NewReader(r)
	case strings.HasSuffix(name, ".bz2"):
		return bzip2.NewReader(r), nil
	case strings.HasSuffix(name, ".xz"):
		return xz.NewReader(r)
	}
	return r, nil
}
