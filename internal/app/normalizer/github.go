package normalizer

import "github.com/kyp2022/ghostlink/internal/app/claim"

// GitHub maps a GET /user profile.
type GitHub struct{}

func (GitHub) CredentialType() claim.CredentialType { return claim.GitHub }

func (GitHub) Normalize(in Input) (claim.CredentialClaim, error) {
	id, err := requireInteger(in.Payload, "id")
	if err != nil {
		return claim.CredentialClaim{}, err
	}
	login, err := requireString(in.Payload, "login")
	if err != nil {
		return claim.CredentialClaim{}, err
	}
	createdAt, err := requireTimestamp(in.Payload, "created_at")
	if err != nil {
		return claim.CredentialClaim{}, err
	}
	repos, err := optionalInteger(in.Payload, 0, "public_repos")
	if err != nil {
		return claim.CredentialClaim{}, err
	}

	return claim.New(claim.GitHub, claim.Fields{
		{Name: "user_id", Value: id},
		{Name: "username", Value: login},
		{Name: "created_at", Value: createdAt},
		{Name: "public_repos", Value: repos},
	}, in.Recipient)
}
