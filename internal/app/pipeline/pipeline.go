package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/kyp2022/ghostlink/internal/app/claim"
	"github.com/kyp2022/ghostlink/internal/app/document"
	"github.com/kyp2022/ghostlink/internal/app/extract"
	"github.com/kyp2022/ghostlink/internal/app/normalizer"
	"github.com/kyp2022/ghostlink/internal/app/prover"
	dtocommon "github.com/kyp2022/ghostlink/pkg/dto_common"
	"github.com/kyp2022/ghostlink/pkg/logger"
	reasoncodes "github.com/kyp2022/ghostlink/pkg/reason_codes"
	"github.com/kyp2022/ghostlink/pkg/utilities"
)

type Extractor interface {
	Extract(text string) (extract.Result, error)
}

type Issuer interface {
	Issue(ctx context.Context, c claim.CredentialClaim) (prover.Issuance, error)
}

// AlertPublisher receives operational failures. rabbitmq.IRabbitmqPublisher satisfies it.
type AlertPublisher interface {
	Publish(body utilities.Serializable) error
}

type DocumentRequest struct {
	Raw       []byte
	Recipient string
	Threshold string
}

type ProfileRequest struct {
	Type      claim.CredentialType
	Profile   map[string]any
	Recipient string
}

// Pipeline sequences authentication, extraction, normalization and proof issuance.
// It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	loader        document.Loader
	authenticator *document.Authenticator
	extractor     Extractor
	normalizers   *normalizer.Registry
	issuer        Issuer
	alerts        AlertPublisher
	logger        *logger.Logger
}

func New(
	loader document.Loader,
	authenticator *document.Authenticator,
	extractor Extractor,
	normalizers *normalizer.Registry,
	issuer Issuer,
	opts ...func(*Pipeline),
) *Pipeline {
	p := &Pipeline{
		loader:        loader,
		authenticator: authenticator,
		extractor:     extractor,
		normalizers:   normalizers,
		issuer:        issuer,
		logger:        logger.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func WithLogger(l *logger.Logger) func(*Pipeline) {
	return func(p *Pipeline) {
		p.logger = l
	}
}

func WithAlertPublisher(alerts AlertPublisher) func(*Pipeline) {
	return func(p *Pipeline) {
		p.alerts = alerts
	}
}

// ProveDocument runs an asset-proof document through every stage.
func (p *Pipeline) ProveDocument(ctx context.Context, req DocumentRequest) Outcome {
	run := p.newRun(ctx, claim.Alipay)

	extraction, ok := run.authenticateAndExtract(req.Raw)
	if !ok {
		return run.outcome
	}

	c, err := p.normalizers.Normalize(claim.Alipay, normalizer.Input{
		Payload:   normalizer.AlipayPayload(extraction, req.Threshold),
		Recipient: req.Recipient,
	})
	if err != nil {
		return run.fail(err)
	}
	run.advance(Normalized)

	return run.issue(c)
}

// ProveProfile normalizes an already fetched provider profile and issues a proof for it.
// The provider exchange that produced the profile is its trust signal, so there is no
// authentication or extraction stage.
func (p *Pipeline) ProveProfile(ctx context.Context, req ProfileRequest) Outcome {
	run := p.newRun(ctx, req.Type)

	c, err := p.normalizers.Normalize(req.Type, normalizer.Input{Payload: req.Profile, Recipient: req.Recipient})
	if err != nil {
		return run.fail(err)
	}
	run.advance(Normalized)

	return run.issue(c)
}

// VerifyDocument authenticates a document and extracts its fields without contacting the engine.
func (p *Pipeline) VerifyDocument(ctx context.Context, raw []byte) Outcome {
	run := p.newRun(ctx, claim.Alipay)

	if _, ok := run.authenticateAndExtract(raw); !ok {
		return run.outcome
	}
	run.outcome.State = Completed
	return run.outcome
}

type run struct {
	p       *Pipeline
	ctx     context.Context
	ctype   claim.CredentialType
	log     *logger.Logger
	outcome Outcome
}

func (p *Pipeline) newRun(ctx context.Context, ctype claim.CredentialType) *run {
	return &run{
		p:       p,
		ctx:     ctx,
		ctype:   ctype,
		log:     p.logger.WithContext(ctx).WithStr("credential_type", string(ctype)),
		outcome: Outcome{State: Received},
	}
}

func (r *run) advance(s State) {
	r.log.Debugf("Stage %s -> %s", r.outcome.State, s)
	r.outcome.State = s
}

func (r *run) authenticateAndExtract(raw []byte) (extract.Result, bool) {
	doc, err := r.p.loader.Load(raw)
	if err != nil {
		r.fail(err)
		return extract.Result{}, false
	}
	if err := r.p.authenticator.Authenticate(doc); err != nil {
		r.fail(err)
		return extract.Result{}, false
	}
	r.advance(Authenticated)

	text, err := doc.Text()
	if err != nil {
		r.fail(err)
		return extract.Result{}, false
	}
	extraction, err := r.p.extractor.Extract(text)
	if err != nil {
		r.fail(err)
		return extract.Result{}, false
	}
	r.outcome.Extraction = &extraction
	r.advance(Extracted)
	return extraction, true
}

func (r *run) issue(c claim.CredentialClaim) Outcome {
	if err := r.ctx.Err(); err != nil {
		return r.fail(fmt.Errorf("%w: %v", prover.ErrProofCanceled, err))
	}
	r.advance(ProofRequested)

	iss, err := r.p.issuer.Issue(r.ctx, c)
	result := iss.Result
	r.outcome.Result = &result
	r.outcome.EngineStatus = iss.Status
	r.outcome.EngineErrorCode = iss.ErrorCode
	r.outcome.EngineMessage = iss.Message

	if err != nil {
		return r.fail(err)
	}
	if !result.Verified {
		r.outcome.State = Completed
		r.outcome.FailedAt = ProofRequested
		r.outcome.Reason = reasoncodes.ErrProofRejected
		r.log.WithStr("reason_code", string(reasoncodes.ErrProofRejected)).
			Warnf("Proof %s not produced: engine status %q", result.ProofID, iss.Status)
		return r.outcome
	}

	r.outcome.State = Completed
	r.log.Infof("Proof %s completed", result.ProofID)
	return r.outcome
}

func (r *run) fail(err error) Outcome {
	reason := Classify(err)
	r.outcome.FailedAt = r.outcome.State
	r.outcome.State = Completed
	r.outcome.Reason = reason
	r.outcome.Err = err

	log := r.log.WithFields(map[string]any{
		"reason_code": string(reason),
		"failed_at":   string(r.outcome.FailedAt),
	})
	if reason.IsOperational() {
		log.Error(err, "Claim failed on infrastructure")
		r.alert(err, reason)
	} else {
		log.Warnf("Claim rejected: %v", err)
	}
	return r.outcome
}

func (r *run) alert(err error, reason reasoncodes.ReasonCode) {
	if r.p.alerts == nil {
		return
	}
	proofID := ""
	if r.outcome.Result != nil {
		proofID = r.outcome.Result.ProofID
	}
	dto := dtocommon.NewProofAlertFactory(proofID, string(r.ctype), string(r.outcome.FailedAt)).CreateErrorDto(err, reason)
	if pubErr := r.p.alerts.Publish(dto); pubErr != nil {
		r.log.Error(pubErr, "Failed to publish proof alert")
	}
}

// Classify maps any stage error to its reason code.
func Classify(err error) reasoncodes.ReasonCode {
	if r := prover.Reason(err); r != "" {
		return r
	}
	switch {
	case err == nil:
		return ""
	case errors.Is(err, document.ErrUnsigned):
		return reasoncodes.ErrUnsigned
	case errors.Is(err, document.ErrUnreadableDocument):
		return reasoncodes.ErrUnreadableDocument
	case errors.Is(err, extract.ErrBalanceNotFound):
		return reasoncodes.ErrBalanceNotFound
	case errors.Is(err, claim.ErrMissingField):
		return reasoncodes.ErrMissingField
	case errors.Is(err, claim.ErrInvalidField):
		return reasoncodes.ErrInvalidField
	case errors.Is(err, claim.ErrInvalidRecipient):
		return reasoncodes.ErrInvalidRecipient
	case errors.Is(err, claim.ErrUnsupportedCredential):
		return reasoncodes.ErrUnsupportedCredential
	case errors.Is(err, context.Canceled):
		return reasoncodes.ErrProofCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return reasoncodes.ErrProofTimeout
	default:
		return reasoncodes.ErrInternal
	}
}
