package hasher

import (
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/sha3"
)

type Algorithm string

const (
	SHA3256   Algorithm = "sha3-256"
	Keccak256 Algorithm = "keccak-256"
)

func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(s))) {
	case "", SHA3256:
		return SHA3256, nil
	case Keccak256:
		return Keccak256, nil
	default:
		return "", fmt.Errorf("unknown hash algorithm %q", s)
	}
}

// Hasher digests sensitive fields so only the 0x-prefixed 32-byte digest leaves the process.
type Hasher struct {
	algorithm Algorithm
}

func New(opts ...func(*Hasher)) *Hasher {
	h := &Hasher{algorithm: SHA3256}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func WithAlgorithm(a Algorithm) func(*Hasher) {
	return func(h *Hasher) {
		if a != "" {
			h.algorithm = a
		}
	}
}

func (h *Hasher) Algorithm() Algorithm { return h.algorithm }

// Hash digests the exact UTF-8 bytes of s.
func (h *Hasher) Hash(s string) string {
	d := h.newDigest()
	d.Write([]byte(s))
	return "0x" + hex.EncodeToString(d.Sum(nil))
}

func (h *Hasher) newDigest() hash.Hash {
	if h.algorithm == Keccak256 {
		return sha3.NewLegacyKeccak256()
	}
	return sha3.New256()
}
