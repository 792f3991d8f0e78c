package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"media-dedup/internal/mediatypes"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return s
}

func hashPtr(v uint64) *uint64 { return &v }

func testRecord(path string) *FileRecord {
	return &FileRecord{
		Path:       path,
		SizeBytes:  1234,
		ModifiedAt: 1_700_000_000,
		FileType:   mediatypes.FileTypeImage,
		Blake3:     "aabbccddeeff00112233445566778899aabbccddeeff00112233445566778899",
		Sha256:     "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff",
		AHash:      hashPtr(0xDEADBEEF),
		DHash:      hashPtr(0xCAFEBABE),
		PHash:      hashPtr(0xFFFFFFFFFFFFFFFF),
	}
}

func TestUpsertKeepsRowID(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	rec := testRecord("photos/a.jpg")
	id1, err := s.UpsertFile(ctx, rec)
	if err != nil {
		t.Fatalf("UpsertFile: %v", err)
	}

	rec.SizeBytes = 9999
	rec.AHash = hashPtr(42)
	id2, err := s.UpsertFile(ctx, rec)
	if err != nil {
		t.Fatalf("UpsertFile (again): %v", err)
	}

	if id1 != id2 {
		t.Errorf("row id changed on upsert: %d then %d", id1, id2)
	}

	got, err := s.GetFileByPath(ctx, "photos/a.jpg")
	if err != nil {
		t.Fatalf("GetFileByPath: %v", err)
	}
	if got.SizeBytes != 9999 {
		t.Errorf("SizeBytes = %d, want 9999", got.SizeBytes)
	}
	if got.AHash == nil || *got.AHash != 42 {
		t.Errorf("AHash = %v, want 42", got.AHash)
	}
}

func TestHashRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	// High-bit-set values must survive the signed INTEGER column.
	rec := testRecord("x.png")
	rec.PHash = hashPtr(0x8000000000000001)
	if _, err := s.UpsertFile(ctx, rec); err != nil {
		t.Fatalf("UpsertFile: %v", err)
	}

	got, err := s.GetFileByPath(ctx, "x.png")
	if err != nil {
		t.Fatalf("GetFileByPath: %v", err)
	}
	if got.PHash == nil || *got.PHash != 0x8000000000000001 {
		t.Errorf("PHash = %v, want 0x8000000000000001", got.PHash)
	}
}

func TestNullableFields(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	rec := &FileRecord{
		Path:       "linked/file.jpg",
		SizeBytes:  10,
		ModifiedAt: 1,
		FileType:   mediatypes.FileTypeImage,
	}
	if _, err := s.UpsertFile(ctx, rec); err != nil {
		t.Fatalf("UpsertFile: %v", err)
	}

	got, err := s.GetFileByPath(ctx, "linked/file.jpg")
	if err != nil {
		t.Fatalf("GetFileByPath: %v", err)
	}
	if got.Blake3 != "" || got.Sha256 != "" {
		t.Errorf("strong hashes = %q/%q, want empty", got.Blake3, got.Sha256)
	}
	if got.HasFingerprints() {
		t.Errorf("fingerprints = %v/%v/%v, want all nil", got.AHash, got.DHash, got.PHash)
	}
}

func TestGetFileNotFound(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	_, err := s.GetFileByPath(context.Background(), "nope.jpg")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestPutFileWithSnapshotsReplaces(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	rec := testRecord("clips/v.mp4")
	rec.FileType = mediatypes.FileTypeVideo

	snaps := []SnapshotRecord{
		{SnapshotIndex: 0, SnapshotCount: 3, AtMs: 1000, DurationMs: 4000, PHash: hashPtr(1)},
		{SnapshotIndex: 1, SnapshotCount: 3, AtMs: 2000, DurationMs: 4000, PHash: hashPtr(2)},
		{SnapshotIndex: 2, SnapshotCount: 3, AtMs: 3000, DurationMs: 4000, PHash: hashPtr(3)},
	}
	if err := s.PutFileWithSnapshots(ctx, rec, snaps); err != nil {
		t.Fatalf("PutFileWithSnapshots: %v", err)
	}

	got, err := s.ListSnapshotsByPath(ctx, "clips/v.mp4")
	if err != nil {
		t.Fatalf("ListSnapshotsByPath: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d snapshots, want 3", len(got))
	}
	for i, snap := range got {
		if snap.SnapshotIndex != i {
			t.Errorf("snapshot %d has index %d", i, snap.SnapshotIndex)
		}
	}

	// Re-scan with a different snapshot count replaces, never appends.
	if err := s.PutFileWithSnapshots(ctx, rec, snaps[:1]); err != nil {
		t.Fatalf("PutFileWithSnapshots (replace): %v", err)
	}
	got, err = s.ListSnapshotsByPath(ctx, "clips/v.mp4")
	if err != nil {
		t.Fatalf("ListSnapshotsByPath: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d snapshots after replace, want 1", len(got))
	}
}

func TestListSnapshotsUnknownPath(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	_, err := s.ListSnapshotsByPath(context.Background(), "missing.mp4")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListFilesPagination(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	const total = 25
	for i := 0; i < total; i++ {
		rec := testRecord(fmt.Sprintf("f/%03d.jpg", i))
		rec.Blake3 = fmt.Sprintf("%064d", i)
		if _, err := s.UpsertFile(ctx, rec); err != nil {
			t.Fatalf("UpsertFile: %v", err)
		}
	}

	// Pages reassemble into the full id-ordered sequence.
	var paged []FileRecord
	for offset := 0; ; offset += 10 {
		page, err := s.ListFiles(ctx, false, 10, offset)
		if err != nil {
			t.Fatalf("ListFiles: %v", err)
		}
		if len(page) == 0 {
			break
		}
		paged = append(paged, page...)
	}

	all, err := s.ListFiles(ctx, false, total, 0)
	if err != nil {
		t.Fatalf("ListFiles (all): %v", err)
	}
	if len(paged) != total || len(all) != total {
		t.Fatalf("paged %d, all %d, want %d", len(paged), len(all), total)
	}
	for i := range all {
		if paged[i].ID != all[i].ID || paged[i].Path != all[i].Path {
			t.Errorf("page reassembly diverges at %d: %+v vs %+v", i, paged[i], all[i])
		}
	}
}

func TestListFilesDuplicatesOnly(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	same := "1111111111111111111111111111111111111111111111111111111111111111"
	for i, blake3 := range []string{same, same, "2222222222222222222222222222222222222222222222222222222222222222"} {
		rec := testRecord(fmt.Sprintf("d/%d.jpg", i))
		rec.Blake3 = blake3
		if _, err := s.UpsertFile(ctx, rec); err != nil {
			t.Fatalf("UpsertFile: %v", err)
		}
	}

	dupes, err := s.ListFiles(ctx, true, 0, 0)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(dupes) != 2 {
		t.Fatalf("got %d duplicate rows, want 2", len(dupes))
	}
	for _, f := range dupes {
		if f.Blake3 != same {
			t.Errorf("unexpected row %s in duplicates listing", f.Path)
		}
	}
}

func TestDeleteFileByPath(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	rec := testRecord("del/me.mp4")
	rec.FileType = mediatypes.FileTypeVideo
	snaps := []SnapshotRecord{{SnapshotIndex: 0, SnapshotCount: 1, AtMs: 500, DurationMs: 1000}}
	if err := s.PutFileWithSnapshots(ctx, rec, snaps); err != nil {
		t.Fatalf("PutFileWithSnapshots: %v", err)
	}

	n, err := s.DeleteFileByPath(ctx, "del/me.mp4")
	if err != nil {
		t.Fatalf("DeleteFileByPath: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d rows, want 1", n)
	}

	// Snapshots cascade with the file row.
	if _, err := s.ListSnapshotsByPath(ctx, "del/me.mp4"); !errors.Is(err, ErrNotFound) {
		t.Errorf("snapshots err = %v, want ErrNotFound", err)
	}

	// Deleting again is a no-op, not an error.
	n, err = s.DeleteFileByPath(ctx, "del/me.mp4")
	if err != nil {
		t.Fatalf("DeleteFileByPath (again): %v", err)
	}
	if n != 0 {
		t.Errorf("second delete removed %d rows, want 0", n)
	}
}

func TestVacuumAfterDelete(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := s.UpsertFile(ctx, testRecord(fmt.Sprintf("vac/%d.jpg", i))); err != nil {
			t.Fatalf("UpsertFile: %v", err)
		}
	}
	if _, err := s.DeleteFileByPath(ctx, "vac/1.jpg"); err != nil {
		t.Fatalf("DeleteFileByPath: %v", err)
	}

	if err := s.Vacuum(ctx); err != nil {
		t.Fatalf("Vacuum: %v", err)
	}

	// The catalog stays usable after the rebuild.
	files, err := s.ListFiles(ctx, false, 0, 0)
	if err != nil {
		t.Fatalf("ListFiles after vacuum: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("got %d rows after vacuum, want 2", len(files))
	}

	s.UpdateDBMetrics()
}

func TestFilesetMetadata(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	meta, err := s.GetFilesetMetadata(ctx)
	if err != nil {
		t.Fatalf("GetFilesetMetadata: %v", err)
	}
	if meta.Status != "" {
		t.Errorf("fresh catalog status = %q, want empty", meta.Status)
	}
	if meta.CreatedAt == 0 {
		t.Error("fresh catalog has zero created_at")
	}

	if err := s.SetFilesetMetadata(ctx, &FilesetMetadata{
		Name:        "vacation 2024",
		Description: "photos from the trip",
		Notes:       "second pass",
		Status:      StatusCompleted,
	}); err != nil {
		t.Fatalf("SetFilesetMetadata: %v", err)
	}

	meta, err = s.GetFilesetMetadata(ctx)
	if err != nil {
		t.Fatalf("GetFilesetMetadata (after set): %v", err)
	}
	if meta.Name != "vacation 2024" || meta.Status != StatusCompleted {
		t.Errorf("meta = %+v", meta)
	}

	// Overwrite is wholesale: every field including status takes the
	// supplied value, and unset fields clear.
	if err := s.SetFilesetMetadata(ctx, &FilesetMetadata{
		Name:   "renamed",
		Status: StatusIncomplete,
	}); err != nil {
		t.Fatalf("SetFilesetMetadata (overwrite): %v", err)
	}
	meta, err = s.GetFilesetMetadata(ctx)
	if err != nil {
		t.Fatalf("GetFilesetMetadata (after overwrite): %v", err)
	}
	if meta.Description != "" || meta.Notes != "" {
		t.Errorf("overwrite did not clear fields: %+v", meta)
	}
	if meta.Status != StatusIncomplete {
		t.Errorf("overwrite did not write status: %q", meta.Status)
	}

	// SetFilesetStatus changes only the lifecycle state.
	if err := s.SetFilesetStatus(ctx, StatusCompleted); err != nil {
		t.Fatalf("SetFilesetStatus: %v", err)
	}
	meta, err = s.GetFilesetMetadata(ctx)
	if err != nil {
		t.Fatalf("GetFilesetMetadata (after status): %v", err)
	}
	if meta.Status != StatusCompleted || meta.Name != "renamed" {
		t.Errorf("status update disturbed other fields: %+v", meta)
	}
}

func TestClampBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		limit, offset    int
		wantLim, wantOff int
	}{
		{0, 0, DefaultListLimit, 0},
		{-5, -5, DefaultListLimit, 0},
		{50, 100, 50, 100},
		{MaxListLimit + 1, MaxListOffset + 1, MaxListLimit, MaxListOffset},
	}
	for _, tt := range tests {
		if got := ClampLimit(tt.limit); got != tt.wantLim {
			t.Errorf("ClampLimit(%d) = %d, want %d", tt.limit, got, tt.wantLim)
		}
		if got := ClampOffset(tt.offset); got != tt.wantOff {
			t.Errorf("ClampOffset(%d) = %d, want %d", tt.offset, got, tt.wantOff)
		}
	}
}
