package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/kyp2022/ghostlink/internal/app/claim"
	"github.com/kyp2022/ghostlink/internal/app/pipeline"
	"github.com/kyp2022/ghostlink/internal/app/provider"
	reasoncodes "github.com/kyp2022/ghostlink/pkg/reason_codes"

	"github.com/gin-gonic/gin"
)

type GithubCallbackRequest struct {
	Code        string `json:"code"`
	Recipient   string `json:"recipient"`
	RedirectURI string `json:"redirectUri"`
}

type TwitterCallbackRequest struct {
	Code         string `json:"code"`
	RedirectURI  string `json:"redirectUri"`
	CodeVerifier string `json:"codeVerifier"`
	Recipient    string `json:"recipient"`
}

func (h *Handler) GithubCallback(c *gin.Context) {
	var req GithubCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(string(claim.GitHub), reasoncodes.ErrInvalidField, "Invalid JSON"))
		return
	}
	h.callback(c, claim.GitHub, provider.Exchange{
		Code:        strings.TrimSpace(req.Code),
		RedirectURI: req.RedirectURI,
	}, req.Recipient)
}

func (h *Handler) TwitterCallback(c *gin.Context) {
	var req TwitterCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(string(claim.Twitter), reasoncodes.ErrInvalidField, "Invalid JSON"))
		return
	}
	h.callback(c, claim.Twitter, provider.Exchange{
		Code:         strings.TrimSpace(req.Code),
		RedirectURI:  req.RedirectURI,
		CodeVerifier: req.CodeVerifier,
	}, req.Recipient)
}

// callback trades the authorization code for a profile and runs it through the pipeline.
func (h *Handler) callback(c *gin.Context, t claim.CredentialType, ex provider.Exchange, recipient string) {
	ctx := c.Request.Context()

	profile, reason, err := h.fetchProfile(ctx, t, ex)
	if err != nil {
		h.logger.WithContext(ctx).
			WithStr("reason_code", string(reason)).
			Warnf("%s exchange failed: %v", t, err)
		c.JSON(HTTPStatus(reason), errorResponse(string(t), reason, err.Error()))
		return
	}

	out := h.pipeline.ProveProfile(ctx, pipeline.ProfileRequest{
		Type:      t,
		Profile:   profile,
		Recipient: recipient,
	})
	code, resp := proofResponse(string(t), out)
	if out.Succeeded() || out.Reason == reasoncodes.ErrProofRejected {
		resp.User = profile
	}
	c.JSON(code, resp)
}

func (h *Handler) fetchProfile(ctx context.Context, t claim.CredentialType, ex provider.Exchange) (map[string]any, reasoncodes.ReasonCode, error) {
	p, err := h.providers.Get(t)
	if err != nil {
		return nil, reasoncodes.ErrUnsupportedCredential, err
	}
	profile, err := p.FetchProfile(ctx, ex)
	switch {
	case err == nil:
		return profile, "", nil
	case errors.Is(err, claim.ErrMissingField):
		return nil, reasoncodes.ErrMissingField, err
	case errors.Is(err, context.Canceled):
		return nil, reasoncodes.ErrProofCanceled, err
	default:
		return nil, reasoncodes.ErrProviderExchange, err
	}
}

// AuthURL returns the provider authorize URL for the given state and PKCE challenge.
func (h *Handler) AuthURL(c *gin.Context) {
	t, err := claim.ParseCredentialType(c.Param("provider"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(c.Param("provider"), reasoncodes.ErrUnsupportedCredential, err.Error()))
		return
	}
	p, err := h.providers.Get(t)
	if err != nil {
		c.JSON(http.StatusNotFound, errorResponse(string(t), reasoncodes.ErrUnsupportedCredential, err.Error()))
		return
	}
	state := c.Query("state")
	if state == "" {
		c.JSON(http.StatusBadRequest, errorResponse(string(t), reasoncodes.ErrMissingField, "state is required"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"provider": string(t),
		"url":      p.AuthCodeURL(state, c.Query("code_challenge")),
	})
}
