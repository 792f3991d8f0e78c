package walker

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"media-dedup/internal/mediatypes"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestPrescanCounts(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.jpg"), 100)
	writeFile(t, filepath.Join(root, "sub", "b.png"), 250)
	writeFile(t, filepath.Join(root, "sub", "deeper", "c.txt"), 7)

	totals, err := Prescan(root, nil, nil)
	if err != nil {
		t.Fatalf("Prescan: %v", err)
	}

	if totals.Files != 3 {
		t.Errorf("Files = %d, want 3", totals.Files)
	}
	// root, sub, deeper
	if totals.Dirs != 3 {
		t.Errorf("Dirs = %d, want 3", totals.Dirs)
	}
	if totals.Bytes != 357 {
		t.Errorf("Bytes = %d, want 357", totals.Bytes)
	}
}

func TestPrescanEmptyDir(t *testing.T) {
	t.Parallel()

	var calls []PrescanProgress
	totals, err := Prescan(t.TempDir(), nil, func(p PrescanProgress) {
		calls = append(calls, p)
	})
	if err != nil {
		t.Fatalf("Prescan: %v", err)
	}

	if totals.Files != 0 || totals.Bytes != 0 {
		t.Errorf("totals = %+v, want zero files and bytes", totals)
	}
	for _, p := range calls {
		if p.FilesSeen != 0 || p.BytesSeen != 0 {
			t.Errorf("progress reported nonzero file/byte counts for empty dir: %+v", p)
		}
	}
}

func TestPrescanMissingRoot(t *testing.T) {
	t.Parallel()

	if _, err := Prescan(filepath.Join(t.TempDir(), "nope"), nil, nil); err == nil {
		t.Error("Prescan on missing root returned nil error")
	}
}

func TestPrescanRootIsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "file.txt")
	writeFile(t, path, 1)

	if _, err := Prescan(path, nil, nil); err == nil {
		t.Error("Prescan on a file root returned nil error")
	}
}

func TestPrescanCancel(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		writeFile(t, filepath.Join(root, name), 10)
	}

	var seen int64
	totals, err := Prescan(root, func() bool { return seen >= 2 }, func(p PrescanProgress) {
		seen = p.FilesSeen
	})
	if err != nil {
		t.Fatalf("Prescan: %v", err)
	}
	if totals.Files >= 5 {
		t.Errorf("cancelled pre-scan counted all %d files", totals.Files)
	}
}

func TestWalkOrderAndClassification(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "zz.mp4"), 10)
	writeFile(t, filepath.Join(root, "aa.jpg"), 10)
	writeFile(t, filepath.Join(root, "mid", "mm.dat"), 10)

	var entries []Entry
	err := Walk(root, nil, nil, func(e Entry) error {
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	rels := make([]string, len(entries))
	for i, e := range entries {
		rels[i] = e.RelPath
	}
	want := []string{"aa.jpg", filepath.Join("mid", "mm.dat"), "zz.mp4"}
	if len(rels) != len(want) {
		t.Fatalf("walked %v, want %v", rels, want)
	}
	for i := range want {
		if rels[i] != want[i] {
			t.Fatalf("walked %v, want %v", rels, want)
		}
	}
	if !sort.StringsAreSorted(rels) {
		t.Errorf("entries not in lexicographic order: %v", rels)
	}

	types := map[string]mediatypes.FileType{
		"aa.jpg": mediatypes.FileTypeImage,
		"zz.mp4": mediatypes.FileTypeVideo,
	}
	for _, e := range entries {
		if want, ok := types[e.RelPath]; ok && e.Type != want {
			t.Errorf("%s classified as %s, want %s", e.RelPath, e.Type, want)
		}
	}
}

func TestWalkDeterministic(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, name := range []string{"q.png", "a/b.png", "a/a.png", "z.png"} {
		writeFile(t, filepath.Join(root, name), 5)
	}

	walk := func() []string {
		var rels []string
		if err := Walk(root, nil, nil, func(e Entry) error {
			rels = append(rels, e.RelPath)
			return nil
		}); err != nil {
			t.Fatalf("Walk: %v", err)
		}
		return rels
	}

	first := walk()
	second := walk()
	if len(first) != len(second) {
		t.Fatalf("passes differ: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("passes differ at %d: %v vs %v", i, first, second)
		}
	}
}

func TestWalkSkipsSymlinks(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	target := filepath.Join(root, "real.jpg")
	writeFile(t, target, 10)
	if err := os.Symlink(target, filepath.Join(root, "link.jpg")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	var skipped []string
	var walked []string
	err := Walk(root, nil, func(path string, _ error) {
		skipped = append(skipped, filepath.Base(path))
	}, func(e Entry) error {
		walked = append(walked, e.RelPath)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	if len(walked) != 1 || walked[0] != "real.jpg" {
		t.Errorf("walked %v, want just real.jpg", walked)
	}
	if len(skipped) != 1 || skipped[0] != "link.jpg" {
		t.Errorf("skipped %v, want just link.jpg", skipped)
	}
}

func TestWalkCancelStops(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, name := range []string{"a", "b", "c", "d"} {
		writeFile(t, filepath.Join(root, name), 1)
	}

	var walked int
	err := Walk(root, func() bool { return walked >= 2 }, nil, func(e Entry) error {
		walked++
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if walked != 2 {
		t.Errorf("walked %d files after cancel, want 2", walked)
	}
}

func TestWalkCallbackErrorAborts(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a"), 1)
	writeFile(t, filepath.Join(root, "b"), 1)

	boom := errors.New("boom")
	err := Walk(root, nil, nil, func(Entry) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("Walk error = %v, want %v", err, boom)
	}
}
