package engine

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"media-dedup/internal/store"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return New(st)
}

func writePNG(t *testing.T, path string, seed uint8) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}

	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x) * seed, G: uint8(y), B: seed, A: 255})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func copyFile(t *testing.T, src, dst string) {
	t.Helper()

	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

// fixtureTree builds: two byte-identical images, one distinct image, one
// text file. Returns the root.
func fixtureTree(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	writePNG(t, filepath.Join(root, "a", "original.png"), 3)
	copyFile(t, filepath.Join(root, "a", "original.png"), filepath.Join(root, "copy.png"))
	writePNG(t, filepath.Join(root, "unrelated.png"), 7)
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("not media"), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestScanCatalogsTree(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	root := fixtureTree(t)
	ctx := context.Background()

	summary, err := e.Scan(ctx, root, DefaultOptions(), NewCancelToken(), nil, nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if summary.FilesSeen != 4 {
		t.Errorf("FilesSeen = %d, want 4", summary.FilesSeen)
	}
	if summary.FilesHashed != 4 {
		t.Errorf("FilesHashed = %d, want 4", summary.FilesHashed)
	}

	files, err := e.Store().ListFiles(ctx, false, 0, 0)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 4 {
		t.Fatalf("cataloged %d files, want 4", len(files))
	}

	byPath := make(map[string]store.FileRecord)
	for _, f := range files {
		byPath[f.Path] = f
	}

	orig := byPath[filepath.Join("a", "original.png")]
	dup := byPath["copy.png"]
	other := byPath["unrelated.png"]

	if orig.Blake3 == "" || orig.Blake3 != dup.Blake3 {
		t.Errorf("identical files have blake3 %q and %q", orig.Blake3, dup.Blake3)
	}
	if orig.Blake3 == other.Blake3 {
		t.Error("distinct files share a blake3")
	}
	if !orig.HasFingerprints() {
		t.Error("image record has no perceptual fingerprints")
	}
	notes := byPath["notes.txt"]
	if notes.HasFingerprints() {
		t.Error("text file got perceptual fingerprints")
	}
	if byPath["notes.txt"].Blake3 == "" {
		t.Error("text file was not strong-hashed")
	}

	meta, err := e.Store().GetFilesetMetadata(ctx)
	if err != nil {
		t.Fatalf("GetFilesetMetadata: %v", err)
	}
	if meta.Status != store.StatusCompleted {
		t.Errorf("status = %q, want %q", meta.Status, store.StatusCompleted)
	}
	if meta.RootPath == "" {
		t.Error("root path not recorded")
	}
}

func TestScanDuplicatesListing(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	root := fixtureTree(t)
	ctx := context.Background()

	if _, err := e.Scan(ctx, root, DefaultOptions(), NewCancelToken(), nil, nil); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	dupes, err := e.Store().ListFiles(ctx, true, 0, 0)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(dupes) != 2 {
		t.Fatalf("duplicates listing has %d rows, want 2", len(dupes))
	}
}

func TestRescanKeepsRowIDs(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	root := fixtureTree(t)
	ctx := context.Background()

	if _, err := e.Scan(ctx, root, DefaultOptions(), NewCancelToken(), nil, nil); err != nil {
		t.Fatalf("first Scan: %v", err)
	}
	first, err := e.Store().ListFiles(ctx, false, 0, 0)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}

	if _, err := e.Scan(ctx, root, DefaultOptions(), NewCancelToken(), nil, nil); err != nil {
		t.Fatalf("second Scan: %v", err)
	}
	second, err := e.Store().ListFiles(ctx, false, 0, 0)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("re-scan changed row count: %d then %d", len(first), len(second))
	}
	ids := make(map[string]int64, len(first))
	for _, f := range first {
		ids[f.Path] = f.ID
	}
	for _, f := range second {
		if ids[f.Path] != f.ID {
			t.Errorf("row id for %s changed: %d then %d", f.Path, ids[f.Path], f.ID)
		}
	}
}

func TestScanCancelledBeforeStart(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	root := fixtureTree(t)
	ctx := context.Background()

	token := NewCancelToken()
	token.Cancel()

	summary, err := e.Scan(ctx, root, DefaultOptions(), token, nil, nil)
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}
	if summary.FilesSeen != 0 {
		t.Errorf("pre-cancelled scan saw %d files, want 0", summary.FilesSeen)
	}

	meta, err := e.Store().GetFilesetMetadata(ctx)
	if err != nil {
		t.Fatalf("GetFilesetMetadata: %v", err)
	}
	if meta.Status != store.StatusIncomplete {
		t.Errorf("status = %q, want %q", meta.Status, store.StatusIncomplete)
	}
}

func TestScanCancelledMidway(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	root := fixtureTree(t)
	ctx := context.Background()

	token := NewCancelToken()
	var fired bool
	_, err := e.Scan(ctx, root, DefaultOptions(), token, nil, func(p Progress) {
		if !fired && p.FilesSeen >= 1 {
			fired = true
			token.Cancel()
		}
	})
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}

	// Whatever was persisted is a valid prefix: every stored record is
	// complete, with hashes present.
	files, listErr := e.Store().ListFiles(ctx, false, 0, 0)
	if listErr != nil {
		t.Fatalf("ListFiles: %v", listErr)
	}
	for _, f := range files {
		if f.Blake3 == "" {
			t.Errorf("cancelled scan persisted unhashed record %s", f.Path)
		}
	}
}

func TestScanInvalidRoot(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.Scan(ctx, filepath.Join(t.TempDir(), "missing"), DefaultOptions(), NewCancelToken(), nil, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("missing root err = %v, want ErrInvalidArgument", err)
	}
	if _, err := e.Scan(ctx, "", DefaultOptions(), NewCancelToken(), nil, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty root err = %v, want ErrInvalidArgument", err)
	}

	file := filepath.Join(t.TempDir(), "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Scan(ctx, file, DefaultOptions(), NewCancelToken(), nil, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("file root err = %v, want ErrInvalidArgument", err)
	}
}

func TestPrescanMatchesScan(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	root := fixtureTree(t)

	totals, err := e.Prescan(root, NewCancelToken(), nil)
	if err != nil {
		t.Fatalf("Prescan: %v", err)
	}

	summary, err := e.Scan(context.Background(), root, DefaultOptions(), NewCancelToken(), &totals, nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if totals.Files != summary.FilesSeen {
		t.Errorf("prescan counted %d files, scan saw %d", totals.Files, summary.FilesSeen)
	}
	if totals.Bytes != summary.BytesSeen {
		t.Errorf("prescan counted %d bytes, scan saw %d", totals.Bytes, summary.BytesSeen)
	}
}

func TestProgressMonotonic(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	root := fixtureTree(t)

	var last Progress
	_, err := e.Scan(context.Background(), root, DefaultOptions(), NewCancelToken(), nil, func(p Progress) {
		if p.FilesSeen < last.FilesSeen || p.FilesHashed < last.FilesHashed ||
			p.FilesSkipped < last.FilesSkipped || p.BytesSeen < last.BytesSeen {
			t.Errorf("progress went backwards: %+v after %+v", p, last)
		}
		last = p
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if last.FilesSeen == 0 {
		t.Error("no progress callbacks fired")
	}
}

func TestCancelToken(t *testing.T) {
	t.Parallel()

	token := NewCancelToken()
	if token.Cancelled() {
		t.Error("fresh token reports cancelled")
	}
	token.Cancel()
	token.Cancel()
	if !token.Cancelled() {
		t.Error("cancelled token reports not cancelled")
	}

	var nilToken *CancelToken
	if nilToken.Cancelled() {
		t.Error("nil token reports cancelled")
	}
}

func TestOptionsNormalized(t *testing.T) {
	t.Parallel()

	got := Options{SnapshotsPerVideo: 0, SnapshotMaxDim: 16}.normalized()
	if got.SnapshotsPerVideo != MinSnapshotsPerVideo {
		t.Errorf("SnapshotsPerVideo = %d, want %d", got.SnapshotsPerVideo, MinSnapshotsPerVideo)
	}
	if got.SnapshotMaxDim != MinSnapshotDim {
		t.Errorf("SnapshotMaxDim = %d, want %d", got.SnapshotMaxDim, MinSnapshotDim)
	}

	got = Options{SnapshotsPerVideo: 99, SnapshotMaxDim: 99_999}.normalized()
	if got.SnapshotsPerVideo != MaxSnapshotsPerVideo {
		t.Errorf("SnapshotsPerVideo = %d, want %d", got.SnapshotsPerVideo, MaxSnapshotsPerVideo)
	}
	if got.SnapshotMaxDim != MaxSnapshotDim {
		t.Errorf("SnapshotMaxDim = %d, want %d", got.SnapshotMaxDim, MaxSnapshotDim)
	}
}
