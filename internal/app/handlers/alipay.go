package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/kyp2022/ghostlink/internal/app/claim"
	"github.com/kyp2022/ghostlink/internal/app/pipeline"
	reasoncodes "github.com/kyp2022/ghostlink/pkg/reason_codes"

	"github.com/gin-gonic/gin"
)

// UploadAlipay accepts a signed asset-proof PDF in the multipart field "file".
// Without a recipient the document is only verified and its extracted fields are returned.
func (h *Handler) UploadAlipay(c *gin.Context) {
	provider := string(claim.Alipay)
	log := h.logger.WithContext(c.Request.Context())

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, errorResponse(provider, reasoncodes.ErrInvalidField, "File exceeds the upload limit"))
			return
		}
		c.JSON(http.StatusBadRequest, errorResponse(provider, reasoncodes.ErrMissingField, "Please select a file to upload"))
		return
	}
	if fileHeader.Size == 0 {
		c.JSON(http.StatusBadRequest, errorResponse(provider, reasoncodes.ErrMissingField, "Please select a file to upload"))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		log.Error(err, "Failed to open uploaded file")
		c.JSON(http.StatusBadRequest, errorResponse(provider, reasoncodes.ErrUnreadableDocument, "Failed to read uploaded file"))
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		log.Error(err, "Failed to read uploaded file")
		c.JSON(http.StatusBadRequest, errorResponse(provider, reasoncodes.ErrUnreadableDocument, "Failed to read uploaded file"))
		return
	}

	recipient := strings.TrimSpace(c.PostForm("recipient"))
	if recipient == "" {
		h.verifyOnly(c, raw)
		return
	}

	out := h.pipeline.ProveDocument(c.Request.Context(), pipeline.DocumentRequest{
		Raw:       raw,
		Recipient: recipient,
		Threshold: strings.TrimSpace(c.PostForm("threshold")),
	})
	c.JSON(proofResponse(provider, out))
}

func (h *Handler) verifyOnly(c *gin.Context, raw []byte) {
	provider := string(claim.Alipay)

	out := h.pipeline.VerifyDocument(c.Request.Context(), raw)
	if !out.Succeeded() {
		c.JSON(HTTPStatus(out.Reason), errorResponse(provider, out.Reason, errorMessage(out)))
		return
	}

	resp := VerifyResponse{
		Status:   StatusSuccess,
		Verified: true,
		Provider: provider,
		Message:  "Asset proof verified. Ready for proof generation.",
	}
	if ex := out.Extraction; ex != nil {
		resp.AssetAmount = ex.Balance
		resp.IdentityNumberFound = ex.IdentityNumberFound()
		if resp.IdentityNumberFound {
			resp.IDNumberHash = ex.IdentityNumberHash
		}
	}
	c.JSON(http.StatusOK, resp)
}
