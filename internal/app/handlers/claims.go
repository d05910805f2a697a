package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/kyp2022/ghostlink/internal/app/claim"
	"github.com/kyp2022/ghostlink/internal/app/pipeline"
	reasoncodes "github.com/kyp2022/ghostlink/pkg/reason_codes"

	"github.com/gin-gonic/gin"
)

type ProveClaimRequest struct {
	Profile   map[string]any `json:"profile"`
	Recipient string         `json:"recipient"`
}

// ProveClaim issues a proof for a provider profile that was fetched outside this service.
// Numbers in the profile are kept as json.Number so large ids survive intact.
func (h *Handler) ProveClaim(c *gin.Context) {
	t, err := claim.ParseCredentialType(c.Param("credential_type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(c.Param("credential_type"), reasoncodes.ErrUnsupportedCredential, err.Error()))
		return
	}
	if t == claim.Alipay {
		c.JSON(http.StatusBadRequest, errorResponse(string(t), reasoncodes.ErrUnsupportedCredential,
			"alipay claims require a signed document, use /api/assets/upload/alipay"))
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(string(t), reasoncodes.ErrInvalidField, "Invalid JSON"))
		return
	}
	var req ProveClaimRequest
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(string(t), reasoncodes.ErrInvalidField, "Invalid JSON"))
		return
	}
	if req.Profile == nil {
		c.JSON(http.StatusBadRequest, errorResponse(string(t), reasoncodes.ErrMissingField, "profile is required"))
		return
	}

	out := h.pipeline.ProveProfile(c.Request.Context(), pipeline.ProfileRequest{
		Type:      t,
		Profile:   req.Profile,
		Recipient: req.Recipient,
	})
	c.JSON(proofResponse(string(t), out))
}
