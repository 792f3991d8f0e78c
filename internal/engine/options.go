package engine

import "errors"

// Sentinel errors for the scan surface. Callers distinguish a cancelled
// run (the catalog holds a valid prefix) from a failed one.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrCancelled       = errors.New("scan cancelled")
)

// Snapshot option bounds.
const (
	MinSnapshotsPerVideo = 1
	MaxSnapshotsPerVideo = 10
	MinSnapshotDim       = 128
	MaxSnapshotDim       = 4096
)

// Options control what a scan computes per file. The zero value disables
// everything; use DefaultOptions as the starting point.
type Options struct {
	// HashFiles computes blake3 and sha256 content hashes.
	HashFiles bool `json:"hashFiles" yaml:"hash_files"`
	// PerceptualHashes computes ahash/dhash/phash fingerprints for
	// decodable images and sampled video frames.
	PerceptualHashes bool `json:"perceptualHashes" yaml:"perceptual_hashes"`
	// CaptureSnapshots samples video frames and stores their
	// fingerprints as snapshot records.
	CaptureSnapshots bool `json:"captureSnapshots" yaml:"capture_snapshots"`

	// SnapshotsPerVideo is clamped into [1, 10].
	SnapshotsPerVideo int `json:"snapshotsPerVideo" yaml:"snapshots_per_video"`
	// SnapshotMaxDim bounds the longest side of sampled frames before
	// fingerprinting, clamped into [128, 4096].
	SnapshotMaxDim int `json:"snapshotMaxDim" yaml:"snapshot_max_dim"`

	// Workers is the file-processing pool size; 0 sizes it from
	// available CPUs.
	Workers int `json:"workers" yaml:"workers"`
}

// DefaultOptions returns the full pipeline: strong hashes, perceptual
// fingerprints, and three bounded snapshots per video.
func DefaultOptions() Options {
	return Options{
		HashFiles:         true,
		PerceptualHashes:  true,
		CaptureSnapshots:  true,
		SnapshotsPerVideo: 3,
		SnapshotMaxDim:    1024,
	}
}

// normalized clamps the numeric knobs into their supported ranges.
// Out-of-range values are pulled to the nearest bound rather than
// rejected, so a sloppy caller still gets a working scan.
func (o Options) normalized() Options {
	if o.SnapshotsPerVideo < MinSnapshotsPerVideo {
		o.SnapshotsPerVideo = MinSnapshotsPerVideo
	}
	if o.SnapshotsPerVideo > MaxSnapshotsPerVideo {
		o.SnapshotsPerVideo = MaxSnapshotsPerVideo
	}
	if o.SnapshotMaxDim < MinSnapshotDim {
		o.SnapshotMaxDim = MinSnapshotDim
	}
	if o.SnapshotMaxDim > MaxSnapshotDim {
		o.SnapshotMaxDim = MaxSnapshotDim
	}
	return o
}
