package reasoncodes

type ReasonCode string

const (
	ErrUnsigned              ReasonCode = "Unsigned"
	ErrUnreadableDocument    ReasonCode = "UnreadableDocument"
	ErrBalanceNotFound       ReasonCode = "BalanceNotFound"
	ErrMissingField          ReasonCode = "MissingField"
	ErrInvalidField          ReasonCode = "InvalidField"
	ErrInvalidRecipient      ReasonCode = "InvalidRecipient"
	ErrUnsupportedCredential ReasonCode = "UnsupportedCredential"
	ErrProviderExchange      ReasonCode = "ProviderExchangeFailed"
	ErrProofTimeout          ReasonCode = "ProofTimeout"
	ErrEngineUnreachable     ReasonCode = "ProofEngineUnreachable"
	ErrMalformedResponse     ReasonCode = "MalformedResponse"
	ErrProofCanceled         ReasonCode = "ProofCanceled"
	ErrProofRejected         ReasonCode = "ProofRejected"
	ErrInternal              ReasonCode = "InternalError"
)

// Category groups reason codes by who has to act on them.
type Category string

const (
	CategoryNone           Category = ""
	CategoryInput          Category = "input"
	CategoryInfrastructure Category = "infrastructure"
	CategoryRejected       Category = "rejected"
	CategoryCanceled       Category = "canceled"
)

func (rc ReasonCode) Category() Category {
	switch rc {
	case "":
		return CategoryNone
	case ErrUnsigned, ErrUnreadableDocument, ErrBalanceNotFound, ErrMissingField,
		ErrInvalidField, ErrInvalidRecipient, ErrUnsupportedCredential:
		return CategoryInput
	case ErrProofRejected:
		return CategoryRejected
	case ErrProofCanceled:
		return CategoryCanceled
	default:
		return CategoryInfrastructure
	}
}

// IsOperational reports whether the failure should page someone rather than be shown to the user.
func (rc ReasonCode) IsOperational() bool {
	return rc.Category() == CategoryInfrastructure
}
