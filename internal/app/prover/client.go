package prover

import (
	"context"
	"fmt"

	"github.com/kyp2022/ghostlink/internal/app/claim"
	"github.com/kyp2022/ghostlink/pkg/logger"
	reasoncodes "github.com/kyp2022/ghostlink/pkg/reason_codes"
)

// Issuance is the outcome of one engine call. Status, ErrorCode and Message echo
// the engine answer for diagnostics when it declined to produce a proof.
type Issuance struct {
	Result    claim.ProofResult
	Status    string
	ErrorCode string
	Message   string
}

func (i Issuance) Rejected() bool {
	return i.Status != "" && i.Status != StatusSuccess
}

type Client struct {
	engine Engine
	ids    *claim.IDSource
	logger *logger.Logger
}

func NewClient(engine Engine, opts ...func(*Client)) *Client {
	c := &Client{
		engine: engine,
		ids:    claim.NewIDSource(nil),
		logger: logger.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithLogger(l *logger.Logger) func(*Client) {
	return func(c *Client) {
		c.logger = l
	}
}

func WithIDSource(ids *claim.IDSource) func(*Client) {
	return func(c *Client) {
		c.ids = ids
	}
}

// Issue submits a validated claim. An engine that answers with a non-success status yields
// an unverified result and a nil error. Transport failures and unusable success answers
// yield an unverified result together with a typed error.
func (c *Client) Issue(ctx context.Context, cl claim.CredentialClaim) (Issuance, error) {
	proofID, createdAt := c.ids.Next(cl.Type)
	unverified := Issuance{Result: claim.NewUnverifiedResult(proofID, createdAt)}

	if err := cl.Validate(); err != nil {
		return unverified, err
	}

	log := c.logger.WithContext(ctx).WithFields(map[string]any{
		"proof_id":        proofID,
		"credential_type": string(cl.Type),
	})
	log.Debugf("Submitting claim with %d fields to proof engine", len(cl.Fields))

	resp, err := c.engine.Prove(ctx, NewRequest(cl))
	if err != nil {
		if Reason(err) == "" {
			err = classify(ctx, err)
		}
		log.WithStr("reason_code", string(Reason(err))).Error(err, "Proof engine call failed")
		return unverified, err
	}

	if resp.Status != StatusSuccess {
		log.WithStr("reason_code", string(reasoncodes.ErrProofRejected)).
			Warnf("Proof engine declined: status=%q error_code=%q message=%q", resp.Status, resp.ErrorCode, resp.Message)
		unverified.Status = resp.Status
		unverified.ErrorCode = resp.ErrorCode
		unverified.Message = resp.Message
		return unverified, nil
	}

	artifacts := claim.Artifacts{
		Receipt:   resp.ReceiptHex,
		Journal:   resp.JournalHex,
		ImageID:   resp.ImageIDHex,
		Nullifier: resp.NullifierHex,
	}
	if err := checkArtifacts(resp); err != nil {
		log.WithStr("reason_code", string(reasoncodes.ErrMalformedResponse)).Error(err, "Proof engine reported success without usable artifacts")
		unverified.Status = resp.Status
		return unverified, err
	}

	result, err := claim.NewVerifiedResult(proofID, createdAt, artifacts)
	if err != nil {
		unverified.Status = resp.Status
		return unverified, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	log.Infof("Proof issued, nullifier %s", result.Nullifier)
	return Issuance{Result: result, Status: resp.Status}, nil
}

func checkArtifacts(resp Response) error {
	for _, f := range []struct{ name, value string }{
		{"receipt_hex", resp.ReceiptHex},
		{"journal_hex", resp.JournalHex},
		{"image_id_hex", resp.ImageIDHex},
		{"nullifier_hex", resp.NullifierHex},
	} {
		if f.value == "" {
			return fmt.Errorf("%w: %s missing", ErrMalformedResponse, f.name)
		}
		if !claim.IsHex(f.value) {
			return fmt.Errorf("%w: %s is not hex", ErrMalformedResponse, f.name)
		}
	}
	return nil
}
