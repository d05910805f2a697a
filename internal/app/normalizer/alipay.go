package normalizer

import (
	"fmt"

	"github.com/kyp2022/ghostlink/internal/app/claim"
	"github.com/kyp2022/ghostlink/internal/app/extract"
)

const DefaultThreshold = "10000"

// Payload keys of an Alipay asset proof, as produced by AlipayPayload.
const (
	KeyBalance             = "balance"
	KeyIDNumberHash        = "id_number_hash"
	KeyIdentityNumberFound = "identity_number_found"
	KeyThreshold           = "threshold"
)

type Alipay struct {
	DefaultThreshold string
	// AllowMissingIdentityNumber accepts documents without an identity number and submits
	// the hash of the not-found sentinel. Every such document then shares one hash.
	AllowMissingIdentityNumber bool
}

// AlipayPayload turns an extraction into a normalizer payload. The raw identity number is left out.
func AlipayPayload(r extract.Result, threshold string) map[string]any {
	payload := map[string]any{
		KeyBalance:             r.Balance,
		KeyIDNumberHash:        r.IdentityNumberHash,
		KeyIdentityNumberFound: r.IdentityNumberFound(),
	}
	if threshold != "" {
		payload[KeyThreshold] = threshold
	}
	return payload
}

func (Alipay) CredentialType() claim.CredentialType { return claim.Alipay }

func (a Alipay) Normalize(in Input) (claim.CredentialClaim, error) {
	balance, err := requireDecimal(in.Payload, KeyBalance)
	if err != nil {
		return claim.CredentialClaim{}, err
	}

	if found, ok := in.Payload[KeyIdentityNumberFound].(bool); ok && !found && !a.AllowMissingIdentityNumber {
		return claim.CredentialClaim{}, fmt.Errorf("%w: id_number", claim.ErrMissingField)
	}

	hash, err := requireString(in.Payload, KeyIDNumberHash)
	if err != nil {
		return claim.CredentialClaim{}, err
	}
	if !claim.IsHex(hash) {
		return claim.CredentialClaim{}, fmt.Errorf("%w: %s is not hex", claim.ErrInvalidField, KeyIDNumberHash)
	}

	threshold := a.DefaultThreshold
	if threshold == "" {
		threshold = DefaultThreshold
	}
	if _, ok := lookup(in.Payload, KeyThreshold); ok {
		if threshold, err = requireDecimal(in.Payload, KeyThreshold); err != nil {
			return claim.CredentialClaim{}, err
		}
	}

	return claim.New(claim.Alipay, claim.Fields{
		{Name: "balance", Value: balance},
		{Name: "id_number_hash", Value: claim.NormalizeHex(hash)},
		{Name: "threshold", Value: threshold},
	}, in.Recipient)
}
