package normalizer

import "github.com/kyp2022/ghostlink/internal/app/claim"

// Twitter maps the "data" object of GET /2/users/me.
type Twitter struct{}

func (Twitter) CredentialType() claim.CredentialType { return claim.Twitter }

func (Twitter) Normalize(in Input) (claim.CredentialClaim, error) {
	id, err := requireString(in.Payload, "id")
	if err != nil {
		return claim.CredentialClaim{}, err
	}
	handle, err := requireString(in.Payload, "username")
	if err != nil {
		return claim.CredentialClaim{}, err
	}
	createdAt, err := requireTimestamp(in.Payload, "created_at")
	if err != nil {
		return claim.CredentialClaim{}, err
	}
	followers, err := optionalInteger(in.Payload, 0, "public_metrics", "followers_count")
	if err != nil {
		return claim.CredentialClaim{}, err
	}

	return claim.New(claim.Twitter, claim.Fields{
		{Name: "user_id", Value: id},
		{Name: "handle", Value: handle},
		{Name: "created_at", Value: createdAt},
		{Name: "followers_count", Value: followers},
	}, in.Recipient)
}
