package sampler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os/exec"
	"strconv"
	"time"

	"media-dedup/internal/logging"
)

// External tool invocations are bounded so one stuck demuxer cannot
// stall a whole scan.
const (
	probeTimeout = 30 * time.Second
	frameTimeout = 10 * time.Second
)

// probeFormat mirrors the subset of ffprobe's -show_format JSON we need.
type probeFormat struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe runs ffprobe on path and returns the raw -show_format JSON plus
// the parsed duration in milliseconds. The JSON is kept verbatim for the
// catalog's ffmpeg_metadata column.
func Probe(ctx context.Context, path string) (string, int64, error) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return "", 0, fmt.Errorf("ffprobe not found: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"--", path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", 0, fmt.Errorf("ffprobe %s: %v: %s", path, err, stderr.String())
	}

	raw := stdout.String()

	var probed probeFormat
	if err := json.Unmarshal(stdout.Bytes(), &probed); err != nil {
		return "", 0, fmt.Errorf("ffprobe output for %s: %w", path, err)
	}

	seconds, err := strconv.ParseFloat(probed.Format.Duration, 64)
	if err != nil || seconds <= 0 {
		return raw, 0, fmt.Errorf("no usable duration for %s", path)
	}

	return raw, int64(seconds * 1000), nil
}

// ProbeDuration returns the media duration in milliseconds. Returns 0
// and an error if the file cannot be probed or reports no usable
// duration.
func ProbeDuration(ctx context.Context, path string) (int64, error) {
	_, durationMs, err := Probe(ctx, path)
	return durationMs, err
}

// extractFrame decodes a single video frame at the given offset. The frame
// is piped out of ffmpeg as PNG so no temp files are needed.
func extractFrame(ctx context.Context, path string, atMs int64) (image.Image, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, frameTimeout)
	defer cancel()

	ts := fmt.Sprintf("%.3f", float64(atMs)/1000.0)
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner",
		"-loglevel", "error",
		"-nostdin",
		"-ss", ts,
		"-i", path,
		"-map", "0:v:0",
		"-frames:v", "1",
		"-an", "-sn", "-dn",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg frame at %sms from %s: %v: %s", ts, path, err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no output for %s at %sms", path, ts)
	}

	img, _, err := image.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("decoding ffmpeg output for %s: %w", path, err)
	}

	logging.Debug("extracted frame from %s at %sms", path, ts)
	return img, nil
}
