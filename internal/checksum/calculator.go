package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

// Calculator computes file fingerprints for the load report.
type Calculator interface {
	// CalculateRaw computes a checksum of the raw, unmodified content.
	CalculateRaw(content []byte) string

	// Reader wraps r so that every byte read through it is hashed.
	Reader(r io.Reader) *Reader
}

// SHA256 implements Calculator using SHA-256.
//
// SHA256 is a zero-size type and is safe for concurrent use by multiple goroutines.
type SHA256 struct{}

// New creates a new SHA-256 based calculator.
func New() SHA256 {
	return SHA256{}
}

// CalculateRaw computes SHA-256 of raw content.
func (c SHA256) CalculateRaw(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// Reader returns a hashing reader over r.
func (c SHA256) Reader(r io.Reader) *Reader {
	h := sha256.New()
	return &Reader{r: io.TeeReader(r, h), h: h}
}

// Reader hashes what passes through it.
type Reader struct {
	r io.Reader
	h hash.Hash
}

func (r *Reader) Read(p []byte) (int, error) {
	return r.r.Read(p)
}

// Sum returns the hex digest of everything read so far.
func (r *Reader) Sum() string {
	return hex.EncodeToString(r.h.Sum(nil))
}

// Short returns the first 12 hex characters of a digest, for display.
func Short(sum string) string {
	if len(sum) <= 12 {
		return sum
	}
	return sum[:12]
}

var _ Calculator = SHA256{}
