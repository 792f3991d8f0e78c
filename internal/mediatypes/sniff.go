package mediatypes

import (
	"os"
	"path/filepath"
	"strings"
)

// Classify determines the FileType for a path. Extension lookup is tried
// first; when the extension is unknown the first bytes of the file are
// sniffed for a recognizable magic number. Sniff failures fall back to
// FileTypeOther rather than erroring: classification must never abort a
// scan.
func Classify(path string) FileType {
	ext := strings.ToLower(filepath.Ext(path))
	if t := GetFileType(ext); t != FileTypeOther {
		return t
	}

	format, err := SniffFormat(path)
	if err != nil {
		return FileTypeOther
	}
	switch format {
	case "jpeg", "png", "gif", "webp", "bmp", "tiff", "heif", "avif":
		return FileTypeImage
	case "mp4-container":
		return FileTypeVideo
	}
	return FileTypeOther
}

// SniffFormat reads the file header and identifies the container format by
// magic bytes. Returns "unknown" for unrecognized headers.
func SniffFormat(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	header := make([]byte, 32)
	n, err := file.Read(header)
	if err != nil {
		return "", err
	}
	header = header[:n]

	switch {
	case len(header) >= 3 && header[0] == 0xFF && header[1] == 0xD8 && header[2] == 0xFF:
		return "jpeg", nil

	case len(header) >= 8 && header[0] == 0x89 && header[1] == 0x50 && header[2] == 0x4E && header[3] == 0x47:
		return "png", nil

	case len(header) >= 4 && header[0] == 0x47 && header[1] == 0x49 && header[2] == 0x46 && header[3] == 0x38:
		return "gif", nil

	case len(header) >= 12 && header[0] == 0x52 && header[1] == 0x49 && header[2] == 0x46 && header[3] == 0x46 &&
		header[8] == 0x57 && header[9] == 0x45 && header[10] == 0x42 && header[11] == 0x50:
		return "webp", nil

	case len(header) >= 2 && header[0] == 0x42 && header[1] == 0x4D:
		return "bmp", nil

	case len(header) >= 4 && ((header[0] == 0x49 && header[1] == 0x49 && header[2] == 0x2A && header[3] == 0x00) ||
		(header[0] == 0x4D && header[1] == 0x4D && header[2] == 0x00 && header[3] == 0x2A)):
		return "tiff", nil

	case len(header) >= 12 && header[4] == 0x66 && header[5] == 0x74 && header[6] == 0x79 && header[7] == 0x70:
		brand := string(header[8:12])
		if brand == "heic" || brand == "heix" || brand == "hevc" || brand == "hevx" || brand == "mif1" || brand == "msf1" {
			return "heif", nil
		}
		if brand == "avif" || brand == "avis" {
			return "avif", nil
		}
		return "mp4-container", nil
	}

	return "unknown", nil
}
