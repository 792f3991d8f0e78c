// Package engine drives the scan pipeline: walk a media tree, strong-hash
// and fingerprint each file, sample video frames, and persist everything
// through the store.
//
// Work fans out to a worker pool sized from available CPUs while a single
// writer goroutine serializes database transactions, one per file.
// Cancellation is cooperative at file boundaries, so a cancelled scan
// leaves the catalog holding a valid prefix of the tree and marks the
// fileset "incomplete".
package engine
