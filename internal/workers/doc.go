// Package workers sizes worker pools for the scan pipeline.
//
// Counts derive from GOMAXPROCS rather than runtime.NumCPU, so container
// CPU limits (which Go 1.19+ reflects into GOMAXPROCS) are respected: a
// pod limited to 2 cores on a 64-core node gets 2 hash workers, not 64.
//
// Use ForCPU for compute-heavy stages (hashing, fingerprinting), ForIO
// for wait-heavy ones, and ForMixed for the common read-then-process
// shape. The DEDUP_WORKERS environment variable overrides all of them
// for operator tuning.
package workers
