package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"lukechampine.com/blake3"
)

// Read files in 128 KiB chunks; large media files dominate scan time and
// bigger buffers stop helping around this size.
const hashBufferSize = 128 * 1024

// StrongDigest holds the content-identity hashes of a file. BLAKE3 is the
// primary identity key; SHA-256 is kept alongside for interoperability
// with external tooling.
type StrongDigest struct {
	Blake3Hex string
	Sha256Hex string
}

// HashReader computes both strong digests from r in a single pass.
func HashReader(r io.Reader) (StrongDigest, error) {
	b3 := blake3.New(32, nil)
	s2 := sha256.New()

	buf := make([]byte, hashBufferSize)
	if _, err := io.CopyBuffer(io.MultiWriter(b3, s2), r, buf); err != nil {
		return StrongDigest{}, fmt.Errorf("hashing content: %w", err)
	}

	return StrongDigest{
		Blake3Hex: hex.EncodeToString(b3.Sum(nil)),
		Sha256Hex: hex.EncodeToString(s2.Sum(nil)),
	}, nil
}

// HashFile computes both strong digests of the file at path. Equal digests
// mean identical bytes regardless of name, location, or timestamps.
func HashFile(path string) (StrongDigest, error) {
	f, err := os.Open(path)
	if err != nil {
		return StrongDigest{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	digest, err := HashReader(f)
	if err != nil {
		return StrongDigest{}, fmt.Errorf("hashing %s: %w", path, err)
	}
	return digest, nil
}
