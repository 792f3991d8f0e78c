package hashing

import (
	"fmt"
	"image"
	"math/bits"

	"github.com/corona10/goimagehash"
)

// FingerprintBits is the width of every perceptual fingerprint. Hamming
// distances therefore fall in [0, FingerprintBits].
const FingerprintBits = 64

// Fingerprints carries the three perceptual hash families computed for a
// decoded frame. Each family is independent: a caller may compare any
// subset.
type Fingerprints struct {
	// AHash is the average hash: mean-luminance threshold per cell.
	AHash uint64
	// DHash is the difference hash: horizontal gradient signs.
	DHash uint64
	// PHash is the perception hash: DCT low-frequency signs.
	PHash uint64
}

// Perceptual computes all three fingerprint families for img.
// The input is never mutated. Returns an error only for degenerate
// input (nil or empty image); it never panics.
func Perceptual(img image.Image) (Fingerprints, error) {
	if img == nil {
		return Fingerprints{}, fmt.Errorf("perceptual hash: nil image")
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return Fingerprints{}, fmt.Errorf("perceptual hash: empty image %v", bounds)
	}

	ahash, err := goimagehash.AverageHash(img)
	if err != nil {
		return Fingerprints{}, fmt.Errorf("average hash: %w", err)
	}
	dhash, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return Fingerprints{}, fmt.Errorf("difference hash: %w", err)
	}
	phash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return Fingerprints{}, fmt.Errorf("perception hash: %w", err)
	}

	return Fingerprints{
		AHash: ahash.GetHash(),
		DHash: dhash.GetHash(),
		PHash: phash.GetHash(),
	}, nil
}

// Hamming returns the number of differing bits between two fingerprints
// of the same family.
func Hamming(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}
