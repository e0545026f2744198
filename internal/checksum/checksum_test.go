package checksum

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSum(t *testing.T) {
	// sha256 of the empty input is a well-known constant.
	if got := Sum(nil); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("Sum(nil) = %q", got)
	}
}

func TestTreeSortedRelativePaths(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "debian"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "debian", "control"), []byte("Source: foo\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README"), []byte("hi\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := Tree(dir)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries", len(entries))
	}
	if entries[0].Path != "README" || entries[1].Path != filepath.Join("debian", "control") {
		t.Errorf("paths = %q, %q", entries[0].Path, entries[1].Path)
	}
	if got := Sum([]byte("hi\n")); entries[0].SHA256 != got {
		t.Errorf("README sum = %q, want %q", entries[0].SHA256, got)
	}
}

func TestEntryString(t *testing.T) {
	e := Entry{SHA256: strings.Repeat("a", 64), Path: "debian/control"}
	want := strings.Repeat("a", 64) + "  debian/control"
	if e.String() != want {
		t.Errorf("String = %q", e.String())
	}
}

func TestParseSumsRoundTrip(t *testing.T) {
	line1 := strings.Repeat("0", 64) + "  a/b"
	line2 := strings.Repeat("f", 64) + "  c"
	entries, err := ParseSums(strings.NewReader(line1 + "\n" + line2 + "\nshort\n"))
	if err != nil {
		t.Fatalf("ParseSums: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries", len(entries))
	}
	if entries[0].Path != "a/b" || entries[1].SHA256 != strings.Repeat("f", 64) {
		t.Errorf("entries = %+v", entries)
	}
}
