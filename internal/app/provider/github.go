package provider

import (
	"context"
	"errors"
	"strings"

	"github.com/kyp2022/ghostlink/internal/app/claim"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const githubAPI = "https://api.github.com"

type GitHub struct {
	oauthConfig *oauth2.Config
	apiBaseURL  string
	cfg         Config
}

func NewGitHub(cfg Config) (*GitHub, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("github oauth config missing client id or secret")
	}

	endpoint := github.Endpoint
	endpoint.AuthURL = orDefault(cfg.AuthURL, endpoint.AuthURL)
	endpoint.TokenURL = orDefault(cfg.TokenURL, endpoint.TokenURL)

	return &GitHub{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoint,
			Scopes:       []string{"read:user"},
		},
		apiBaseURL: strings.TrimRight(orDefault(cfg.APIBaseURL, githubAPI), "/"),
		cfg:        cfg,
	}, nil
}

func (p *GitHub) CredentialType() claim.CredentialType { return claim.GitHub }

func (p *GitHub) AuthCodeURL(state, _ string) string {
	return p.oauthConfig.AuthCodeURL(state)
}

// FetchProfile returns the GET /user document of the authorizing account.
func (p *GitHub) FetchProfile(ctx context.Context, ex Exchange) (map[string]any, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient(p.cfg.Timeout))

	token, err := exchangeToken(ctx, p.oauthConfig, ex)
	if err != nil {
		return nil, err
	}

	return fetchJSON(ctx, p.oauthConfig.Client(ctx, token), p.apiBaseURL+"/user")
}
