package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/kyp2022/ghostlink/internal/app/claim"
	"github.com/kyp2022/ghostlink/internal/app/document"
	"github.com/kyp2022/ghostlink/internal/app/extract"
	"github.com/kyp2022/ghostlink/internal/app/handlers"
	"github.com/kyp2022/ghostlink/internal/app/hasher"
	"github.com/kyp2022/ghostlink/internal/app/normalizer"
	"github.com/kyp2022/ghostlink/internal/app/pipeline"
	"github.com/kyp2022/ghostlink/internal/app/prover"
	"github.com/kyp2022/ghostlink/internal/app/provider"
	"github.com/kyp2022/ghostlink/pkg/logger"
	reasoncodes "github.com/kyp2022/ghostlink/pkg/reason_codes"
	"github.com/kyp2022/ghostlink/pkg/rest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubPipeline struct {
	mu          sync.Mutex
	outcome     pipeline.Outcome
	docReqs     []pipeline.DocumentRequest
	profileReqs []pipeline.ProfileRequest
	verified    [][]byte
}

func (s *stubPipeline) ProveDocument(_ context.Context, req pipeline.DocumentRequest) pipeline.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docReqs = append(s.docReqs, req)
	return s.outcome
}

func (s *stubPipeline) ProveProfile(_ context.Context, req pipeline.ProfileRequest) pipeline.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profileReqs = append(s.profileReqs, req)
	return s.outcome
}

func (s *stubPipeline) VerifyDocument(_ context.Context, raw []byte) pipeline.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verified = append(s.verified, raw)
	return s.outcome
}

type fakeProvider struct {
	ctype   claim.CredentialType
	profile map[string]any
	err     error
	got     provider.Exchange
}

func (f *fakeProvider) CredentialType() claim.CredentialType { return f.ctype }

func (f *fakeProvider) AuthCodeURL(state, challenge string) string {
	return fmt.Sprintf("https://auth.example/%s?state=%s&code_challenge=%s", f.ctype, state, challenge)
}

func (f *fakeProvider) FetchProfile(_ context.Context, ex provider.Exchange) (map[string]any, error) {
	f.got = ex
	return f.profile, f.err
}

func verifiedOutcome(t *testing.T) pipeline.Outcome {
	t.Helper()
	r, err := claim.NewVerifiedResult("zk-alipay-1700000000000000000", time.UnixMilli(1700000000123), claim.Artifacts{
		Receipt:   "aa",
		Journal:   "bb",
		ImageID:   "cc",
		Nullifier: "dd",
	})
	require.NoError(t, err)
	return pipeline.Outcome{State: pipeline.Completed, Result: &r}
}

func failedOutcome(reason reasoncodes.ReasonCode, err error, reachedEngine bool) pipeline.Outcome {
	out := pipeline.Outcome{State: pipeline.Completed, Reason: reason, Err: err}
	if reachedEngine {
		r := claim.NewUnverifiedResult("zk-github-1", time.Now())
		out.Result = &r
	}
	return out
}

func quietLogger() *logger.Logger {
	return logger.New().WithOutput(io.Discard)
}

func newRouter(h *handlers.Handler) *gin.Engine {
	router := gin.New()
	rest.Register(router, h.Routes(), func(rest.Route) {})
	return router
}

func multipartUpload(t *testing.T, file []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if file != nil {
		part, err := w.CreateFormFile("file", "statement.pdf")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func do(router http.Handler, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	router := newRouter(handlers.NewHandler(&stubPipeline{}, handlers.WithLogger(quietLogger())))

	rec := do(router, http.MethodGet, "/health", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "running", body["status"])
}

func TestUploadAlipay_WithRecipientIssuesProof(t *testing.T) {
	stub := &stubPipeline{outcome: verifiedOutcome(t)}
	router := newRouter(handlers.NewHandler(stub, handlers.WithLogger(quietLogger())))

	body, ct := multipartUpload(t, []byte("%PDF-1.7 signed"), map[string]string{
		"recipient": " 0x1234567890123456789012345678901234567890 ",
		"threshold": "5000",
	})
	rec := do(router, http.MethodPost, "/api/assets/upload/alipay", body, ct)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, stub.docReqs, 1)
	assert.Equal(t, []byte("%PDF-1.7 signed"), stub.docReqs[0].Raw)
	assert.Equal(t, "0x1234567890123456789012345678901234567890", stub.docReqs[0].Recipient)
	assert.Equal(t, "5000", stub.docReqs[0].Threshold)
	assert.Empty(t, stub.verified)

	resp := decode[handlers.ProofResponse](t, rec)
	assert.Equal(t, handlers.StatusSuccess, resp.Status)
	assert.True(t, resp.Verified)
	assert.Equal(t, "alipay", resp.Provider)
	require.NotNil(t, resp.ZkProof)
	assert.Equal(t, handlers.ZkProofDto{
		ProofID:   "zk-alipay-1700000000000000000",
		Receipt:   "0xaa",
		Journal:   "0xbb",
		ImageID:   "0xcc",
		Nullifier: "0xdd",
		Timestamp: 1700000000123,
	}, *resp.ZkProof)
}

func TestUploadAlipay_VerifyOnlyWithoutRecipient(t *testing.T) {
	stub := &stubPipeline{outcome: pipeline.Outcome{
		State: pipeline.Completed,
		Extraction: &extract.Result{
			Balance:            "100000.00",
			IdentityNumber:     "110101199003077777",
			IdentityNumberHash: "0xfeed",
		},
	}}
	router := newRouter(handlers.NewHandler(stub, handlers.WithLogger(quietLogger())))

	body, ct := multipartUpload(t, []byte("%PDF"), nil)
	rec := do(router, http.MethodPost, "/api/assets/upload/alipay", body, ct)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, stub.verified, 1)
	assert.Empty(t, stub.docReqs)

	resp := decode[handlers.VerifyResponse](t, rec)
	assert.True(t, resp.Verified)
	assert.Equal(t, "100000.00", resp.AssetAmount)
	assert.Equal(t, "0xfeed", resp.IDNumberHash)
	assert.True(t, resp.IdentityNumberFound)
	assert.NotContains(t, rec.Body.String(), "110101199003077777")
}

func TestUploadAlipay_VerifyOnlyWithoutIdentityNumber(t *testing.T) {
	stub := &stubPipeline{outcome: pipeline.Outcome{
		State: pipeline.Completed,
		Extraction: &extract.Result{
			Balance:            "12.50",
			IdentityNumber:     extract.IdentityNumberNotFound,
			IdentityNumberHash: "0xabc",
		},
	}}
	router := newRouter(handlers.NewHandler(stub, handlers.WithLogger(quietLogger())))

	body, ct := multipartUpload(t, []byte("%PDF"), map[string]string{"recipient": ""})
	rec := do(router, http.MethodPost, "/api/assets/upload/alipay", body, ct)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[handlers.VerifyResponse](t, rec)
	assert.False(t, resp.IdentityNumberFound)
	assert.Empty(t, resp.IDNumberHash)
}

func TestUploadAlipay_MissingFile(t *testing.T) {
	stub := &stubPipeline{}
	router := newRouter(handlers.NewHandler(stub, handlers.WithLogger(quietLogger())))

	body, ct := multipartUpload(t, nil, map[string]string{"recipient": "0x1234567890123456789012345678901234567890"})
	rec := do(router, http.MethodPost, "/api/assets/upload/alipay", body, ct)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[handlers.ProofResponse](t, rec)
	assert.Equal(t, handlers.StatusError, resp.Status)
	assert.Equal(t, string(reasoncodes.ErrMissingField), resp.ReasonCode)
	assert.Empty(t, stub.docReqs)
	assert.Empty(t, stub.verified)
}

func TestUploadAlipay_EmptyFile(t *testing.T) {
	stub := &stubPipeline{}
	router := newRouter(handlers.NewHandler(stub, handlers.WithLogger(quietLogger())))

	body, ct := multipartUpload(t, []byte{}, nil)
	rec := do(router, http.MethodPost, "/api/assets/upload/alipay", body, ct)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, stub.verified)
}

func TestUploadAlipay_FailureStatuses(t *testing.T) {
	tests := []struct {
		name      string
		recipient string
		outcome   pipeline.Outcome
		status    int
		message   string
	}{
		{
			name:    "unsigned on verify",
			outcome: failedOutcome(reasoncodes.ErrUnsigned, document.ErrUnsigned, false),
			status:  http.StatusForbidden,
			message: document.ErrUnsigned.Error(),
		},
		{
			name:      "unsigned on prove",
			recipient: "0x1234567890123456789012345678901234567890",
			outcome:   failedOutcome(reasoncodes.ErrUnsigned, document.ErrUnsigned, false),
			status:    http.StatusForbidden,
			message:   document.ErrUnsigned.Error(),
		},
		{
			name:      "balance not found",
			recipient: "0x1234567890123456789012345678901234567890",
			outcome:   failedOutcome(reasoncodes.ErrBalanceNotFound, extract.ErrBalanceNotFound, false),
			status:    http.StatusBadRequest,
			message:   extract.ErrBalanceNotFound.Error(),
		},
		{
			name:      "engine timeout",
			recipient: "0x1234567890123456789012345678901234567890",
			outcome:   failedOutcome(reasoncodes.ErrProofTimeout, prover.ErrProofTimeout, true),
			status:    http.StatusGatewayTimeout,
			message:   "Proof engine unavailable, please retry later",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(handlers.NewHandler(&stubPipeline{outcome: tt.outcome}, handlers.WithLogger(quietLogger())))

			body, ct := multipartUpload(t, []byte("%PDF"), map[string]string{"recipient": tt.recipient})
			rec := do(router, http.MethodPost, "/api/assets/upload/alipay", body, ct)

			assert.Equal(t, tt.status, rec.Code)
			resp := decode[handlers.ProofResponse](t, rec)
			assert.Equal(t, handlers.StatusError, resp.Status)
			assert.False(t, resp.Verified)
			assert.Equal(t, string(tt.outcome.Reason), resp.ReasonCode)
			assert.Equal(t, tt.message, resp.Message)
			assert.Nil(t, resp.ZkProof)
		})
	}
}

func TestUploadAlipay_TooLarge(t *testing.T) {
	stub := &stubPipeline{}
	router := newRouter(handlers.NewHandler(stub, handlers.WithLogger(quietLogger()), handlers.WithMaxUploadBytes(64)))

	body, ct := multipartUpload(t, bytes.Repeat([]byte("x"), 4096), nil)
	rec := do(router, http.MethodPost, "/api/assets/upload/alipay", body, ct)

	assert.GreaterOrEqual(t, rec.Code, http.StatusBadRequest)
	assert.Empty(t, stub.verified)
}

func TestProofRejectedIsOK(t *testing.T) {
	out := failedOutcome(reasoncodes.ErrProofRejected, nil, true)
	out.EngineMessage = "guest panicked"
	router := newRouter(handlers.NewHandler(&stubPipeline{outcome: out}, handlers.WithLogger(quietLogger())))

	rec := do(router, http.MethodPost, "/api/v1/claims/github/prove",
		bytes.NewBufferString(`{"profile":{"id":1},"recipient":""}`), "application/json")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[handlers.ProofResponse](t, rec)
	assert.Equal(t, handlers.StatusSuccess, resp.Status)
	assert.False(t, resp.Verified)
	assert.Equal(t, "zk-github-1", resp.ProofID)
	assert.Equal(t, string(reasoncodes.ErrProofRejected), resp.ReasonCode)
	assert.Contains(t, resp.Message, "guest panicked")
	assert.Nil(t, resp.ZkProof)
}

func TestGithubCallback(t *testing.T) {
	gh := &fakeProvider{ctype: claim.GitHub, profile: map[string]any{
		"id":           json.Number("12345"),
		"login":        "octocat",
		"created_at":   "2011-01-25T18:44:36Z",
		"public_repos": json.Number("8"),
	}}
	stub := &stubPipeline{outcome: verifiedOutcome(t)}
	router := newRouter(handlers.NewHandler(stub,
		handlers.WithLogger(quietLogger()),
		handlers.WithProviders(provider.NewRegistry(gh)),
	))

	rec := do(router, http.MethodPost, "/api/v1/auth/github/callback",
		bytes.NewBufferString(`{"code":" abc ","recipient":"0x1234567890123456789012345678901234567890","redirectUri":"http://localhost:5174/cb"}`),
		"application/json")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, provider.Exchange{Code: "abc", RedirectURI: "http://localhost:5174/cb"}, gh.got)
	require.Len(t, stub.profileReqs, 1)
	assert.Equal(t, claim.GitHub, stub.profileReqs[0].Type)
	assert.Equal(t, gh.profile, stub.profileReqs[0].Profile)
	assert.Equal(t, "0x1234567890123456789012345678901234567890", stub.profileReqs[0].Recipient)

	resp := decode[handlers.ProofResponse](t, rec)
	assert.True(t, resp.Verified)
	assert.Equal(t, "github", resp.Provider)
	assert.Equal(t, "octocat", resp.User["login"])
	require.NotNil(t, resp.ZkProof)
}

func TestTwitterCallback(t *testing.T) {
	tw := &fakeProvider{ctype: claim.Twitter, profile: map[string]any{"id": "42", "username": "jack"}}
	stub := &stubPipeline{outcome: verifiedOutcome(t)}
	router := newRouter(handlers.NewHandler(stub,
		handlers.WithLogger(quietLogger()),
		handlers.WithProviders(provider.NewRegistry(tw)),
	))

	rec := do(router, http.MethodPost, "/api/v1/auth/twitter/callback",
		bytes.NewBufferString(`{"code":"c","redirectUri":"http://x/cb","codeVerifier":"v","recipient":""}`),
		"application/json")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, provider.Exchange{Code: "c", RedirectURI: "http://x/cb", CodeVerifier: "v"}, tw.got)
	require.Len(t, stub.profileReqs, 1)
	assert.Equal(t, claim.Twitter, stub.profileReqs[0].Type)
}

func TestCallbackFailures(t *testing.T) {
	tests := []struct {
		name      string
		providers *provider.Registry
		path      string
		body      string
		status    int
		reason    reasoncodes.ReasonCode
	}{
		{
			name:      "exchange failed",
			providers: provider.NewRegistry(&fakeProvider{ctype: claim.GitHub, err: fmt.Errorf("%w: bad code", provider.ErrExchangeFailed)}),
			path:      "/api/v1/auth/github/callback",
			body:      `{"code":"abc"}`,
			status:    http.StatusUnauthorized,
			reason:    reasoncodes.ErrProviderExchange,
		},
		{
			name:      "missing code",
			providers: provider.NewRegistry(&fakeProvider{ctype: claim.GitHub, err: fmt.Errorf("%w: authorization code is required", claim.ErrMissingField)}),
			path:      "/api/v1/auth/github/callback",
			body:      `{}`,
			status:    http.StatusBadRequest,
			reason:    reasoncodes.ErrMissingField,
		},
		{
			name:      "provider not configured",
			providers: provider.NewRegistry(),
			path:      "/api/v1/auth/twitter/callback",
			body:      `{"code":"abc","codeVerifier":"v"}`,
			status:    http.StatusBadRequest,
			reason:    reasoncodes.ErrUnsupportedCredential,
		},
		{
			name:      "invalid json",
			providers: provider.NewRegistry(),
			path:      "/api/v1/auth/github/callback",
			body:      `{"code":`,
			status:    http.StatusBadRequest,
			reason:    reasoncodes.ErrInvalidField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubPipeline{}
			router := newRouter(handlers.NewHandler(stub,
				handlers.WithLogger(quietLogger()),
				handlers.WithProviders(tt.providers),
			))

			rec := do(router, http.MethodPost, tt.path, bytes.NewBufferString(tt.body), "application/json")

			assert.Equal(t, tt.status, rec.Code)
			resp := decode[handlers.ProofResponse](t, rec)
			assert.Equal(t, handlers.StatusError, resp.Status)
			assert.Equal(t, string(tt.reason), resp.ReasonCode)
			assert.Empty(t, stub.profileReqs)
		})
	}
}

func TestAuthURL(t *testing.T) {
	tw := &fakeProvider{ctype: claim.Twitter}
	router := newRouter(handlers.NewHandler(&stubPipeline{},
		handlers.WithLogger(quietLogger()),
		handlers.WithProviders(provider.NewRegistry(tw)),
	))

	rec := do(router, http.MethodGet, "/api/v1/auth/twitter/url?state=s1&code_challenge=ch", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "https://auth.example/twitter?state=s1&code_challenge=ch", body["url"])

	rec = do(router, http.MethodGet, "/api/v1/auth/twitter/url", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodGet, "/api/v1/auth/github/url?state=s1", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(router, http.MethodGet, "/api/v1/auth/linkedin/url?state=s1", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProveClaim_Validation(t *testing.T) {
	stub := &stubPipeline{}
	router := newRouter(handlers.NewHandler(stub, handlers.WithLogger(quietLogger())))

	rec := do(router, http.MethodPost, "/api/v1/claims/linkedin/prove", bytes.NewBufferString(`{"profile":{}}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodPost, "/api/v1/claims/alipay/prove", bytes.NewBufferString(`{"profile":{}}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodPost, "/api/v1/claims/github/prove", bytes.NewBufferString(`{"recipient":""}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodPost, "/api/v1/claims/github/prove", bytes.NewBufferString(`not json`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, stub.profileReqs)
}

func TestProveClaim_KeepsLargeIntegers(t *testing.T) {
	stub := &stubPipeline{outcome: verifiedOutcome(t)}
	router := newRouter(handlers.NewHandler(stub, handlers.WithLogger(quietLogger())))

	rec := do(router, http.MethodPost, "/api/v1/claims/github/prove",
		bytes.NewBufferString(`{"profile":{"id":9007199254740993,"login":"octocat"}}`), "application/json")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, stub.profileReqs, 1)
	assert.Equal(t, json.Number("9007199254740993"), stub.profileReqs[0].Profile["id"])
}

// End to end through the real pipeline and the in-process fake engine.
func TestProveClaim_WithFakeEngine(t *testing.T) {
	log := quietLogger()
	p := pipeline.New(
		document.PDFLoader{},
		document.NewAuthenticator(document.Policy{}),
		extract.New(hasher.New()),
		normalizer.NewRegistry(normalizer.GitHub{}, normalizer.Twitter{}, normalizer.Alipay{}),
		prover.NewClient(prover.NewFakeEngine(), prover.WithLogger(log)),
		pipeline.WithLogger(log),
	)
	router := newRouter(handlers.NewHandler(p, handlers.WithLogger(log)))

	rec := do(router, http.MethodPost, "/api/v1/claims/github/prove", bytes.NewBufferString(`{
		"profile": {"id": 12345, "login": "octocat", "created_at": "2011-01-25T18:44:36Z", "public_repos": 8},
		"recipient": "0x1234567890123456789012345678901234567890"
	}`), "application/json")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[handlers.ProofResponse](t, rec)
	assert.True(t, resp.Verified)
	require.NotNil(t, resp.ZkProof)
	assert.Regexp(t, `^zk-github-\d+$`, resp.ZkProof.ProofID)
	for _, v := range []string{resp.ZkProof.Receipt, resp.ZkProof.Journal, resp.ZkProof.ImageID, resp.ZkProof.Nullifier} {
		assert.True(t, claim.IsHex(v), v)
		assert.Regexp(t, `^0x`, v)
	}

	rec = do(router, http.MethodPost, "/api/v1/claims/github/prove",
		bytes.NewBufferString(`{
			"profile": {"id": 1, "login": "x", "created_at": "2011-01-25T18:44:36Z"},
			"recipient": "not-an-address"
		}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp = decode[handlers.ProofResponse](t, rec)
	assert.Equal(t, string(reasoncodes.ErrInvalidRecipient), resp.ReasonCode)
}

func TestHTTPStatus(t *testing.T) {
	tests := map[reasoncodes.ReasonCode]int{
		"":                                   http.StatusOK,
		reasoncodes.ErrProofRejected:         http.StatusOK,
		reasoncodes.ErrUnsigned:              http.StatusForbidden,
		reasoncodes.ErrUnreadableDocument:    http.StatusBadRequest,
		reasoncodes.ErrMissingField:          http.StatusBadRequest,
		reasoncodes.ErrInvalidRecipient:      http.StatusBadRequest,
		reasoncodes.ErrUnsupportedCredential: http.StatusBadRequest,
		reasoncodes.ErrProviderExchange:      http.StatusUnauthorized,
		reasoncodes.ErrProofTimeout:          http.StatusGatewayTimeout,
		reasoncodes.ErrEngineUnreachable:     http.StatusBadGateway,
		reasoncodes.ErrMalformedResponse:     http.StatusBadGateway,
		reasoncodes.ErrProofCanceled:         handlers.StatusClientClosedRequest,
		reasoncodes.ErrInternal:              http.StatusInternalServerError,
	}
	for reason, want := range tests {
		assert.Equal(t, want, handlers.HTTPStatus(reason), string(reason))
	}
}

func TestCanceledCallbackExchange(t *testing.T) {
	gh := &fakeProvider{ctype: claim.GitHub, err: fmt.Errorf("%w: %w", provider.ErrExchangeFailed, context.Canceled)}
	router := newRouter(handlers.NewHandler(&stubPipeline{},
		handlers.WithLogger(quietLogger()),
		handlers.WithProviders(provider.NewRegistry(gh)),
	))

	rec := do(router, http.MethodPost, "/api/v1/auth/github/callback", bytes.NewBufferString(`{"code":"abc"}`), "application/json")

	assert.Equal(t, handlers.StatusClientClosedRequest, rec.Code)
	resp := decode[handlers.ProofResponse](t, rec)
	assert.Equal(t, string(reasoncodes.ErrProofCanceled), resp.ReasonCode)
}
