package pipeline

import (
	"github.com/kyp2022/ghostlink/internal/app/claim"
	"github.com/kyp2022/ghostlink/internal/app/extract"
	reasoncodes "github.com/kyp2022/ghostlink/pkg/reason_codes"
)

type State string

const (
	Received       State = "Received"
	Authenticated  State = "Authenticated"
	Extracted      State = "Extracted"
	Normalized     State = "Normalized"
	ProofRequested State = "ProofRequested"
	Completed      State = "Completed"
)

// Outcome is the terminal record of one request. State is always Completed once a method
// returns; FailedAt names the last state reached before the failure.
type Outcome struct {
	State      State
	FailedAt   State
	Reason     reasoncodes.ReasonCode
	Err        error
	Result     *claim.ProofResult
	Extraction *extract.Result

	// Engine diagnostics for rejected proofs.
	EngineStatus    string
	EngineErrorCode string
	EngineMessage   string
}

func (o Outcome) Succeeded() bool {
	return o.Reason == "" && o.Err == nil
}

func (o Outcome) Verified() bool {
	return o.Result != nil && o.Result.Verified
}
