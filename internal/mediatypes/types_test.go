package mediatypes

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
)

func TestGetFileType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ext  string
		want FileType
	}{
		{"jpeg image", ".jpg", FileTypeImage},
		{"png image", ".png", FileTypeImage},
		{"webp image", ".webp", FileTypeImage},
		{"mp4 video", ".mp4", FileTypeVideo},
		{"matroska video", ".mkv", FileTypeVideo},
		{"transport stream", ".ts", FileTypeVideo},
		{"text file", ".txt", FileTypeOther},
		{"no extension", "", FileTypeOther},
		{"uppercase not matched", ".JPG", FileTypeOther},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := GetFileType(tt.ext); got != tt.want {
				t.Errorf("GetFileType(%q) = %q, want %q", tt.ext, got, tt.want)
			}
		})
	}
}

func TestGetMimeType(t *testing.T) {
	t.Parallel()

	if got := GetMimeType(".jpg"); got != "image/jpeg" {
		t.Errorf("GetMimeType(.jpg) = %q, want image/jpeg", got)
	}
	if got := GetMimeType(".xyz"); got != "application/octet-stream" {
		t.Errorf("GetMimeType(.xyz) = %q, want octet-stream fallback", got)
	}
}

func TestIsMediaFile(t *testing.T) {
	t.Parallel()

	if !IsMediaFile(".png") {
		t.Error("IsMediaFile(.png) = false, want true")
	}
	if IsMediaFile(".pdf") {
		t.Error("IsMediaFile(.pdf) = true, want false")
	}
}

// 1x1 transparent PNG.
const tinyPNGBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func writeTinyPNG(t *testing.T, path string) {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(tinyPNGBase64)
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	// Recognized extension wins without touching the file contents.
	byExt := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(byExt, []byte("not really a video"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := Classify(byExt); got != FileTypeVideo {
		t.Errorf("Classify(%s) = %q, want video", byExt, got)
	}

	// Unknown extension falls back to content sniffing.
	sniffed := filepath.Join(dir, "picture.dat")
	writeTinyPNG(t, sniffed)
	if got := Classify(sniffed); got != FileTypeImage {
		t.Errorf("Classify(%s) = %q, want image via sniff", sniffed, got)
	}

	// Unreadable or unknown content classifies as other, never errors.
	missing := filepath.Join(dir, "does-not-exist.bin")
	if got := Classify(missing); got != FileTypeOther {
		t.Errorf("Classify(missing) = %q, want other", got)
	}
}

func TestSniffFormat(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	png := filepath.Join(dir, "a.png")
	writeTinyPNG(t, png)
	format, err := SniffFormat(png)
	if err != nil {
		t.Fatalf("SniffFormat: %v", err)
	}
	if format != "png" {
		t.Errorf("SniffFormat = %q, want png", format)
	}

	junk := filepath.Join(dir, "b.bin")
	if err := os.WriteFile(junk, []byte("plain text content here"), 0o644); err != nil {
		t.Fatal(err)
	}
	format, err = SniffFormat(junk)
	if err != nil {
		t.Fatalf("SniffFormat: %v", err)
	}
	if format != "unknown" {
		t.Errorf("SniffFormat = %q, want unknown", format)
	}
}
