package prover

import (
	"context"
	"errors"

	"github.com/kyp2022/ghostlink/internal/app/claim"
	reasoncodes "github.com/kyp2022/ghostlink/pkg/reason_codes"
)

const StatusSuccess = "success"

var (
	ErrProofTimeout      = errors.New("proof engine did not answer in time")
	ErrEngineUnreachable = errors.New("proof engine unreachable")
	ErrMalformedResponse = errors.New("malformed proof engine response")
	ErrProofCanceled     = errors.New("proof request canceled by caller")
)

// Request is the wire body sent to the proof engine.
type Request struct {
	CredentialType claim.CredentialType `json:"credential_type"`
	Data           claim.Fields         `json:"data"`
	Recipient      string               `json:"recipient"`
}

func NewRequest(c claim.CredentialClaim) Request {
	return Request{
		CredentialType: c.Type,
		Data:           c.Fields,
		Recipient:      c.Recipient,
	}
}

// Response is the engine answer. The hex fields are only meaningful when Status is "success";
// ErrorCode and Message are diagnostics for any other status.
type Response struct {
	Status       string `json:"status"`
	ReceiptHex   string `json:"receipt_hex,omitempty"`
	JournalHex   string `json:"journal_hex,omitempty"`
	ImageIDHex   string `json:"image_id_hex,omitempty"`
	NullifierHex string `json:"nullifier_hex,omitempty"`
	ErrorCode    string `json:"error_code,omitempty"`
	Message      string `json:"message,omitempty"`
}

type Engine interface {
	Prove(ctx context.Context, req Request) (Response, error)
}

// Reason maps a prover error to its reason code, or "" when err did not come from this package.
func Reason(err error) reasoncodes.ReasonCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrProofTimeout):
		return reasoncodes.ErrProofTimeout
	case errors.Is(err, ErrEngineUnreachable):
		return reasoncodes.ErrEngineUnreachable
	case errors.Is(err, ErrMalformedResponse):
		return reasoncodes.ErrMalformedResponse
	case errors.Is(err, ErrProofCanceled):
		return reasoncodes.ErrProofCanceled
	default:
		return ""
	}
}
