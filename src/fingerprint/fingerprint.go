// Package fingerprint computes stable keys for grouping equivalent failures.
//
// Two records with identical throwable text always produce the same key;
// distinct texts may collide, which is accepted grouping imprecision rather
// than a correctness failure.
package fingerprint

import (
	"crypto/md5"
	"math/big"
)

// Key is the digest of a throwable's rendered text, in decimal string form
// so it can serve directly as a map key.
type Key string

// Hasher computes fingerprints. The zero value uses the MD5 digest; a Hasher
// with digest disabled falls back to an order-sensitive string hash, which
// mirrors the behavior when no digest algorithm is available.
type Hasher struct {
	noDigest bool
}

// New returns a digest-backed Hasher.
func New() *Hasher {
	return &Hasher{}
}

// NewFallback returns a Hasher that uses the plain string hash. Grouping
// remains deterministic, only more collision-prone.
func NewFallback() *Hasher {
	return &Hasher{noDigest: true}
}

// Compute returns the fingerprint of the given throwable text.
func (h *Hasher) Compute(throwableText string) Key {
	if h.noDigest {
		return Key(big.NewInt(int64(stringHash(throwableText))).String())
	}
	sum := md5.Sum([]byte(throwableText))
	// Digest bytes interpreted as one large unsigned integer.
	n := new(big.Int).SetBytes(sum[:])
	return Key(n.String())
}

// stringHash is a 31-multiplier rolling hash over the text's bytes. Order
// sensitive: "ab" and "ba" hash differently.
func stringHash(s string) int32 {
	var h int32
	for i := 0; i < len(s); i++ {
		h = 31*h + int32(s[i])
	}
	return h
}
