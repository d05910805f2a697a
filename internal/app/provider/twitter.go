package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kyp2022/ghostlink/internal/app/claim"

	"golang.org/x/oauth2"
)

const (
	twitterAuthURL  = "https://twitter.com/i/oauth2/authorize"
	twitterTokenURL = "https://api.twitter.com/2/oauth2/token"
	twitterAPI      = "https://api.twitter.com"
)

// Twitter uses the OAuth 2.0 authorization-code flow with PKCE.
type Twitter struct {
	oauthConfig *oauth2.Config
	apiBaseURL  string
	cfg         Config
}

func NewTwitter(cfg Config) (*Twitter, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("twitter oauth config missing client id or secret")
	}

	return &Twitter{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:   orDefault(cfg.AuthURL, twitterAuthURL),
				TokenURL:  orDefault(cfg.TokenURL, twitterTokenURL),
				AuthStyle: oauth2.AuthStyleInHeader,
			},
			Scopes: []string{"users.read", "tweet.read"},
		},
		apiBaseURL: strings.TrimRight(orDefault(cfg.APIBaseURL, twitterAPI), "/"),
		cfg:        cfg,
	}, nil
}

func (p *Twitter) CredentialType() claim.CredentialType { return claim.Twitter }

func (p *Twitter) AuthCodeURL(state, codeChallenge string) string {
	return p.oauthConfig.AuthCodeURL(
		state,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

// FetchProfile returns the "data" object of GET /2/users/me.
func (p *Twitter) FetchProfile(ctx context.Context, ex Exchange) (map[string]any, error) {
	if ex.CodeVerifier == "" {
		return nil, fmt.Errorf("%w: code verifier is required", claim.ErrMissingField)
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient(p.cfg.Timeout))

	token, err := exchangeToken(ctx, p.oauthConfig, ex,
		oauth2.VerifierOption(ex.CodeVerifier),
		oauth2.SetAuthURLParam("client_id", p.oauthConfig.ClientID),
	)
	if err != nil {
		return nil, err
	}

	body, err := fetchJSON(ctx, p.oauthConfig.Client(ctx, token),
		p.apiBaseURL+"/2/users/me?user.fields=created_at,public_metrics")
	if err != nil {
		return nil, err
	}

	data, ok := body["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: users/me response has no data object", ErrExchangeFailed)
	}
	return data, nil
}
