package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"media-dedup/internal/logging"
	"media-dedup/internal/mediatypes"
)

// CancelCheck reports whether the caller has requested cancellation.
// A nil CancelCheck never cancels.
type CancelCheck func() bool

// Entry is one regular file produced by a full pass.
type Entry struct {
	// Path is the absolute path of the file.
	Path string
	// RelPath is the path relative to the walk root, used as the stable
	// record key across re-scans.
	RelPath string
	Size    int64
	ModTime time.Time
	Type    mediatypes.FileType
}

// Totals holds the aggregate counts from a pre-scan.
type Totals struct {
	Files int64
	Dirs  int64
	Bytes int64
}

// PrescanProgress is the lightweight progress shape reported while a
// pre-scan runs.
type PrescanProgress struct {
	FilesSeen   int64
	DirsSeen    int64
	BytesSeen   int64
	CurrentPath string
}

// Prescan enumerates the tree under root and returns file/byte totals for
// progress calibration. Unreadable entries are counted as best as possible
// and never abort the walk. Symbolic links are not followed, so each
// directory is visited at most once and cycles cannot occur.
//
// If cancelled, the walk stops early and the totals accumulated so far are
// returned with a nil error; the caller decides what cancellation means.
func Prescan(root string, cancelled CancelCheck, onProgress func(PrescanProgress)) (Totals, error) {
	if err := checkRoot(root); err != nil {
		return Totals{}, err
	}

	var totals Totals
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if cancelled != nil && cancelled() {
			return fs.SkipAll
		}

		if err != nil {
			logging.Warn("pre-scan: cannot access %s: %v", path, err)
			return nil
		}

		if d.IsDir() {
			totals.Dirs++
			report(onProgress, totals, path)
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		totals.Files++
		if info, err := d.Info(); err == nil {
			totals.Bytes += info.Size()
		}
		report(onProgress, totals, path)
		return nil
	})
	if err != nil {
		return totals, fmt.Errorf("pre-scan of %s: %w", root, err)
	}
	return totals, nil
}

func report(onProgress func(PrescanProgress), totals Totals, path string) {
	if onProgress == nil {
		return
	}
	onProgress(PrescanProgress{
		FilesSeen:   totals.Files,
		DirsSeen:    totals.Dirs,
		BytesSeen:   totals.Bytes,
		CurrentPath: path,
	})
}

// WalkFunc receives each regular file during a full pass.
type WalkFunc func(Entry) error

// Walk performs the full pass: every regular file under root is classified
// and handed to fn, in the deterministic lexicographic order guaranteed by
// filepath.WalkDir, so repeated scans of an unchanged tree enumerate files
// identically. Entries that cannot be read or stat'd (permission errors,
// broken symlinks) go to onSkip and the walk continues.
//
// Cancellation stops the walk early without error, same as Prescan.
// An error returned by fn aborts the walk and is returned as-is.
func Walk(root string, cancelled CancelCheck, onSkip func(path string, reason error), fn WalkFunc) error {
	if err := checkRoot(root); err != nil {
		return err
	}

	skip := func(path string, reason error) {
		logging.Debug("walk: skipping %s: %v", path, reason)
		if onSkip != nil {
			onSkip(path, reason)
		}
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if cancelled != nil && cancelled() {
			return fs.SkipAll
		}

		if err != nil {
			skip(path, err)
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if !d.Type().IsRegular() {
			skip(path, fmt.Errorf("not a regular file (mode %v)", d.Type()))
			return nil
		}

		info, err := d.Info()
		if err != nil {
			skip(path, err)
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			skip(path, err)
			return nil
		}

		return fn(Entry{
			Path:    path,
			RelPath: relPath,
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Type:    mediatypes.Classify(path),
		})
	})
}

func checkRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root %s is not a directory", root)
	}
	return nil
}
