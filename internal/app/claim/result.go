package claim

import (
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

var ErrIncompleteProof = errors.New("verified proof requires receipt, journal, image id and nullifier")

// ProofResult is either verified with all four artifacts or unverified with none of them.
// Build it with NewVerifiedResult or NewUnverifiedResult.
type ProofResult struct {
	ProofID   string    `json:"proof_id"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
	Receipt   string    `json:"receipt,omitempty"`
	Journal   string    `json:"journal,omitempty"`
	ImageID   string    `json:"image_id,omitempty"`
	Nullifier string    `json:"nullifier,omitempty"`
}

type Artifacts struct {
	Receipt   string
	Journal   string
	ImageID   string
	Nullifier string
}

func (a Artifacts) complete() bool {
	for _, v := range []string{a.Receipt, a.Journal, a.ImageID, a.Nullifier} {
		if stripHexPrefix(v) == "" {
			return false
		}
	}
	return true
}

func NewVerifiedResult(proofID string, createdAt time.Time, a Artifacts) (ProofResult, error) {
	if !a.complete() {
		return ProofResult{}, ErrIncompleteProof
	}
	return ProofResult{
		ProofID:   proofID,
		Verified:  true,
		CreatedAt: createdAt,
		Receipt:   NormalizeHex(a.Receipt),
		Journal:   NormalizeHex(a.Journal),
		ImageID:   NormalizeHex(a.ImageID),
		Nullifier: NormalizeHex(a.Nullifier),
	}, nil
}

func NewUnverifiedResult(proofID string, createdAt time.Time) ProofResult {
	return ProofResult{
		ProofID:   proofID,
		Verified:  false,
		CreatedAt: createdAt,
	}
}

// NormalizeHex prefixes s with 0x unless it already carries 0x or 0X.
func NormalizeHex(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s
	}
	return "0x" + s
}

// IsHex reports whether s, with or without prefix, is a non-empty run of hex digits.
func IsHex(s string) bool {
	digits := stripHexPrefix(s)
	if digits == "" {
		return false
	}
	if len(digits)%2 == 1 {
		digits = "0" + digits
	}
	_, err := hex.DecodeString(digits)
	return err == nil
}

func stripHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}
