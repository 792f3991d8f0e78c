package workers

import (
	"os"
	"runtime"
	"strconv"
)

// Count returns the worker pool size for a given task type. It sizes off
// GOMAXPROCS rather than runtime.NumCPU so container CPU limits are
// respected (Go 1.19+ sets GOMAXPROCS from cgroup limits).
//
// The multiplier adjusts for task characteristics:
//   - 1.0 for CPU-bound tasks
//   - 2.0 for I/O-bound tasks
//   - 1.5 for mixed tasks
//
// The limit parameter caps the worker count; use 0 for no limit. The
// DEDUP_WORKERS environment variable overrides the calculation entirely
// (still subject to limit).
func Count(multiplier float64, limit int) int {
	if override := os.Getenv("DEDUP_WORKERS"); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	available := runtime.GOMAXPROCS(0)
	workers := int(float64(available) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// ForCPU returns the worker count for CPU-bound tasks (1 per CPU), such
// as strong hashing and perceptual fingerprinting.
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// ForIO returns the worker count for I/O-bound tasks (2 per CPU).
func ForIO(limit int) int {
	return Count(2.0, limit)
}

// ForMixed returns the worker count for mixed tasks (1.5 per CPU), such
// as the scan pipeline's read-then-hash file workers.
func ForMixed(limit int) int {
	return Count(1.5, limit)
}
