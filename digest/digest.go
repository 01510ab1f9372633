/*
Package digest implements the content digest used to decide whether a native
surface buffer needs rewriting.

The digest is a SHA-1 over the exact byte sequence, rendered as lower-case
hex. It is used for content addressing only.
*/
package digest

import (
	"crypto/sha1"
	"encoding/hex"
	"hash"
	"sync"
)

// Size is the length in characters of every digest string.
const Size = sha1.Size << 1

// Detector computes digests with a single reusable hash. It is safe for
// concurrent use.
type Detector struct {
	mu sync.Mutex
	h  hash.Hash
}

// New returns a new Detector.
func New() *Detector {
	return &Detector{h: sha1.New()}
}

// Sum returns the digest of b.
func (d *Detector) Sum(b []byte) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.h.Reset()
	d.h.Write(b)

	return hex.EncodeToString(d.h.Sum(nil))
}

// Equal reports whether a and b have the same digest.
func (d *Detector) Equal(a, b []byte) bool {
	return d.Sum(a) == d.Sum(b)
}

// Sum returns the digest of b.
func Sum(b []byte) string {
	s := sha1.Sum(b)
	return hex.EncodeToString(s[:])
}
