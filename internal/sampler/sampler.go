package sampler

import (
	"context"
	"fmt"
	"image"
	"os"

	"media-dedup/internal/logging"

	// Frame and still-image format decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Frame is one decoded, size-bounded sample of a media file.
type Frame struct {
	Index      int
	Count      int
	AtMs       int64
	DurationMs int64
	Image      image.Image
}

// Timestamps returns the deterministic sample offsets for a video:
// count points at (i+1)/(count+1) of the duration, pulled 500ms in
// from either end when the video is longer than two seconds so the
// extremes never land on lead-in or tail black frames.
func Timestamps(durationMs int64, count int) []int64 {
	if count <= 0 || durationMs <= 0 {
		return nil
	}

	out := make([]int64, 0, count)
	prev := int64(-1)
	for i := 0; i < count; i++ {
		at := durationMs * int64(i+1) / int64(count+1)
		if durationMs > 2000 {
			if at < 500 {
				at = 500
			}
			if at > durationMs-500 {
				at = durationMs - 500
			}
		} else {
			if at < 0 {
				at = 0
			}
			if at > durationMs {
				at = durationMs
			}
		}
		// Clamping can land neighbors on the same offset; the sequence
		// must stay strictly increasing.
		if at <= prev {
			at = prev + 1
		}
		out = append(out, at)
		prev = at
	}
	return out
}

// VideoFrames samples count frames from the video at path, each resized so
// its longest dimension does not exceed maxDim. A frame that fails to
// extract or decode is skipped; the remaining frames are still returned.
// If the video cannot be probed at all, the error is returned and the
// caller should treat the file as skipped.
func VideoFrames(ctx context.Context, path string, count, maxDim int) ([]Frame, error) {
	durationMs, err := ProbeDuration(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("probing %s: %w", path, err)
	}
	return FramesForDuration(ctx, path, durationMs, count, maxDim)
}

// FramesForDuration is VideoFrames for callers that already probed the
// duration, so the file is not probed twice.
func FramesForDuration(ctx context.Context, path string, durationMs int64, count, maxDim int) ([]Frame, error) {
	offsets := Timestamps(durationMs, count)
	frames := make([]Frame, 0, len(offsets))
	for i, atMs := range offsets {
		if err := ctx.Err(); err != nil {
			return frames, err
		}

		img, err := extractFrame(ctx, path, atMs)
		if err != nil {
			logging.Debug("skipping frame %d of %s: %v", i, path, err)
			continue
		}

		frames = append(frames, Frame{
			Index:      i,
			Count:      count,
			AtMs:       atMs,
			DurationMs: durationMs,
			Image:      bound(img, maxDim),
		})
	}

	return frames, nil
}

// StillFrame decodes a still image as its single implicit sample, resized
// to the same dimension bound as video frames.
func StillFrame(path string, maxDim int) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		// imaging only registers a few formats; retry with everything
		// linked into the binary (webp, bmp, tiff).
		img, err = decodeFile(path)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
	}
	return bound(img, maxDim), nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	logging.Debug("decoded %s as %s", path, format)
	return img, nil
}

// bound resizes img so its longest side does not exceed maxDim, keeping
// aspect ratio. Images already inside the bound are returned as-is.
func bound(img image.Image, maxDim int) image.Image {
	if maxDim <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= maxDim && b.Dy() <= maxDim {
		return img
	}
	return imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
}
