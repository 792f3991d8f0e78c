// Package sampler extracts decoded, size-bounded frames from media files
// for perceptual hashing.
//
// Videos are probed with ffprobe for their duration and sampled with
// ffmpeg at deterministic offsets spread uniformly across the runtime
// (see Timestamps for the exact policy). Still images are decoded once
// as a single implicit frame.
//
// Frame-level failures are non-fatal: an undecodable frame is dropped
// and sampling continues. Only an unprobeable file surfaces an error,
// which callers translate into a skip, never a scan abort.
package sampler
