//go:build unix

package engine

import (
	"os"
	"syscall"
)

// isHardLinked reports whether path has more than one directory entry.
// Such files are inventoried without hashes so a link farm does not
// read as a pile of duplicates.
func isHardLinked(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return false
	}
	return stat.Nlink > 1
}
