package handlers

import (
	"context"
	"net/http"

	"github.com/kyp2022/ghostlink/internal/app/claim"
	"github.com/kyp2022/ghostlink/internal/app/pipeline"
	"github.com/kyp2022/ghostlink/internal/app/provider"
	"github.com/kyp2022/ghostlink/pkg/logger"
	reasoncodes "github.com/kyp2022/ghostlink/pkg/reason_codes"
	"github.com/kyp2022/ghostlink/pkg/rest"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	// StatusClientClosedRequest is written when the caller went away before the proof finished.
	StatusClientClosedRequest = 499

	defaultMaxUploadBytes = 10 << 20
)

type ProofPipeline interface {
	ProveDocument(ctx context.Context, req pipeline.DocumentRequest) pipeline.Outcome
	ProveProfile(ctx context.Context, req pipeline.ProfileRequest) pipeline.Outcome
	VerifyDocument(ctx context.Context, raw []byte) pipeline.Outcome
}

type ProfileProviders interface {
	Get(t claim.CredentialType) (provider.ProfileProvider, error)
}

type Handler struct {
	pipeline       ProofPipeline
	providers      ProfileProviders
	maxUploadBytes int64
	logger         *logger.Logger
}

func NewHandler(p ProofPipeline, opts ...func(*Handler)) *Handler {
	h := &Handler{
		pipeline:       p,
		providers:      provider.NewRegistry(),
		maxUploadBytes: defaultMaxUploadBytes,
		logger:         logger.New(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func WithProviders(providers ProfileProviders) func(*Handler) {
	return func(h *Handler) {
		h.providers = providers
	}
}

func WithMaxUploadBytes(n int64) func(*Handler) {
	return func(h *Handler) {
		if n > 0 {
			h.maxUploadBytes = n
		}
	}
}

func WithLogger(l *logger.Logger) func(*Handler) {
	return func(h *Handler) {
		h.logger = l
	}
}

func (h *Handler) Routes() []rest.Route {
	return []rest.Route{
		rest.NewRoute(rest.GET, "", "health", h.Health),
		rest.NewRoute(rest.POST, "api/assets", "upload/alipay", h.UploadAlipay),
		rest.NewRoute(rest.GET, "api/v1/auth", ":provider/url", h.AuthURL),
		rest.NewRoute(rest.POST, "api/v1/auth", "github/callback", h.GithubCallback),
		rest.NewRoute(rest.POST, "api/v1/auth", "twitter/callback", h.TwitterCallback),
		rest.NewRoute(rest.POST, "api/v1/claims", ":credential_type/prove", h.ProveClaim),
	}
}

type ZkProofDto struct {
	ProofID   string `json:"proofId"`
	Receipt   string `json:"receipt"`
	Journal   string `json:"journal"`
	ImageID   string `json:"imageId"`
	Nullifier string `json:"nullifier"`
	Timestamp int64  `json:"timestamp"`
}

type ProofResponse struct {
	Status     string         `json:"status"`
	Verified   bool           `json:"verified"`
	Provider   string         `json:"provider"`
	ProofID    string         `json:"proof_id,omitempty"`
	ZkProof    *ZkProofDto    `json:"zkProof,omitempty"`
	User       map[string]any `json:"user,omitempty"`
	ReasonCode string         `json:"reason_code,omitempty"`
	Message    string         `json:"message,omitempty"`
}

type VerifyResponse struct {
	Status              string `json:"status"`
	Verified            bool   `json:"verified"`
	Provider            string `json:"provider"`
	AssetAmount         string `json:"asset_amount"`
	IDNumberHash        string `json:"id_number_hash,omitempty"`
	IdentityNumberFound bool   `json:"identity_number_found"`
	Message             string `json:"message"`
}

func errorResponse(provider string, reason reasoncodes.ReasonCode, msg string) ProofResponse {
	return ProofResponse{
		Status:     StatusError,
		Provider:   provider,
		ReasonCode: string(reason),
		Message:    msg,
	}
}

// proofResponse renders an outcome. Failed outcomes that reached the engine still carry the proof id.
func proofResponse(provider string, out pipeline.Outcome) (int, ProofResponse) {
	code := HTTPStatus(out.Reason)
	if out.Reason != "" && out.Reason != reasoncodes.ErrProofRejected {
		resp := errorResponse(provider, out.Reason, errorMessage(out))
		if out.Result != nil {
			resp.ProofID = out.Result.ProofID
		}
		return code, resp
	}
	if out.Result == nil {
		return http.StatusInternalServerError, errorResponse(provider, reasoncodes.ErrInternal, "Proof result missing")
	}

	resp := ProofResponse{
		Status:   StatusSuccess,
		Provider: provider,
		ProofID:  out.Result.ProofID,
		Verified: out.Verified(),
	}
	if out.Verified() {
		r := out.Result
		resp.ZkProof = &ZkProofDto{
			ProofID:   r.ProofID,
			Receipt:   r.Receipt,
			Journal:   r.Journal,
			ImageID:   r.ImageID,
			Nullifier: r.Nullifier,
			Timestamp: r.CreatedAt.UnixMilli(),
		}
		resp.Message = "Proof generated successfully"
		return code, resp
	}

	resp.ReasonCode = string(out.Reason)
	resp.Message = "Proof engine did not produce a proof"
	if out.EngineMessage != "" {
		resp.Message += ": " + out.EngineMessage
	}
	return code, resp
}

func errorMessage(out pipeline.Outcome) string {
	if out.Err == nil {
		return string(out.Reason)
	}
	// Infrastructure details stay in the logs.
	if out.Reason.IsOperational() {
		return "Proof engine unavailable, please retry later"
	}
	return out.Err.Error()
}

// HTTPStatus maps a reason code to the response status. Rejected proofs are a regular answer.
func HTTPStatus(reason reasoncodes.ReasonCode) int {
	switch reason {
	case "", reasoncodes.ErrProofRejected:
		return http.StatusOK
	case reasoncodes.ErrUnsigned:
		return http.StatusForbidden
	case reasoncodes.ErrProviderExchange:
		return http.StatusUnauthorized
	case reasoncodes.ErrProofTimeout:
		return http.StatusGatewayTimeout
	case reasoncodes.ErrEngineUnreachable, reasoncodes.ErrMalformedResponse:
		return http.StatusBadGateway
	case reasoncodes.ErrProofCanceled:
		return StatusClientClosedRequest
	}
	if reason.Category() == reasoncodes.CategoryInput {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
