package dtocommon

import (
	reasoncodes "github.com/kyp2022/ghostlink/pkg/reason_codes"
	"github.com/kyp2022/ghostlink/pkg/utilities"
	"github.com/kyp2022/ghostlink/pkg/utilities/timeutil"
)

// ProofAlertDto is published when a claim fails for an operational reason.
// It never carries claim field values.
type ProofAlertDto struct {
	ProofId        string                 `json:"proof_id,omitempty"`
	CredentialType string                 `json:"credential_type"`
	Stage          string                 `json:"stage"`
	ReasonCode     reasoncodes.ReasonCode `json:"reason_code"`
	Error          string                 `json:"error"`
	OccurredAt     timeutil.TimeUTC       `json:"occurred_at"`
}

func (pa ProofAlertDto) Serialize() ([]byte, error) {
	return utilities.Serialize[ProofAlertDto](pa)
}

type ProofAlertDtoFactory interface {
	CreateErrorDto(error, reasoncodes.ReasonCode) utilities.Serializable
}

type proofAlertDtoFactory struct {
	ProofId        string
	CredentialType string
	Stage          string
}

func NewProofAlertFactory(proofId, credentialType, stage string) ProofAlertDtoFactory {
	return proofAlertDtoFactory{
		ProofId:        proofId,
		CredentialType: credentialType,
		Stage:          stage,
	}
}

func (paf proofAlertDtoFactory) CreateErrorDto(
	err error,
	reasonCode reasoncodes.ReasonCode) utilities.Serializable {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return ProofAlertDto{
		ProofId:        paf.ProofId,
		CredentialType: paf.CredentialType,
		Stage:          paf.Stage,
		ReasonCode:     reasonCode,
		Error:          msg,
		OccurredAt:     timeutil.NowUTC(),
	}
}
