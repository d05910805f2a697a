package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kyp2022/ghostlink/internal/app/claim"

	"golang.org/x/oauth2"
)

var ErrExchangeFailed = errors.New("provider exchange failed")

const defaultTimeout = 15 * time.Second

// Exchange carries what the browser brought back from the provider's authorize page.
type Exchange struct {
	Code         string
	RedirectURI  string
	CodeVerifier string
}

// ProfileProvider trades an authorization code for the provider-native user profile.
// It makes no decisions about the profile; normalization happens downstream.
type ProfileProvider interface {
	CredentialType() claim.CredentialType
	AuthCodeURL(state, codeChallenge string) string
	FetchProfile(ctx context.Context, ex Exchange) (map[string]any, error)
}

type Config struct {
	ClientID     string
	ClientSecret string
	// AuthURL, TokenURL and APIBaseURL override the public endpoints.
	AuthURL    string
	TokenURL   string
	APIBaseURL string
	Timeout    time.Duration
}

type Registry struct {
	providers map[claim.CredentialType]ProfileProvider
}

func NewRegistry(list ...ProfileProvider) *Registry {
	m := make(map[claim.CredentialType]ProfileProvider, len(list))
	for _, p := range list {
		m[p.CredentialType()] = p
	}
	return &Registry{providers: m}
}

func (r *Registry) Get(t claim.CredentialType) (ProfileProvider, error) {
	p, ok := r.providers[t]
	if !ok {
		return nil, fmt.Errorf("%w: no oauth provider for %q", claim.ErrUnsupportedCredential, t)
	}
	return p, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func httpClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// fetchJSON performs an authenticated GET and decodes the body keeping numbers as json.Number.
func fetchJSON(ctx context.Context, client *http.Client, url string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: GET %s returned %d: %s", ErrExchangeFailed, url, resp.StatusCode, snippet)
	}

	dec := json.NewDecoder(io.LimitReader(resp.Body, 1<<20))
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode profile: %v", ErrExchangeFailed, err)
	}
	return body, nil
}

func exchangeToken(ctx context.Context, cfg *oauth2.Config, ex Exchange, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	if ex.Code == "" {
		return nil, fmt.Errorf("%w: authorization code is required", claim.ErrMissingField)
	}
	if ex.RedirectURI != "" {
		opts = append(opts, oauth2.SetAuthURLParam("redirect_uri", ex.RedirectURI))
	}
	token, err := cfg.Exchange(ctx, ex.Code, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange: %v", ErrExchangeFailed, err)
	}
	return token, nil
}
