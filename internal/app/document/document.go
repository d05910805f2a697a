package document

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsigned           = errors.New("document carries no acceptable signature")
	ErrUnreadableDocument = errors.New("document could not be read")
)

// Signature describes an embedded signature object. Only its presence and declared
// metadata are inspected; the certificate chain is not validated.
type Signature struct {
	Name      string
	Filter    string
	SubFilter string
}

type Document interface {
	Signatures() []Signature
	// Text returns the plain text of the document. Implementations extract lazily.
	Text() (string, error)
}

type Loader interface {
	Load(raw []byte) (Document, error)
}

type Policy struct {
	// MinSignatures below 1 is treated as 1.
	MinSignatures int
	// RequiredSigner, when set, must appear (case-insensitively) in the Name of at least one signature.
	RequiredSigner string
}

type Authenticator struct {
	policy Policy
}

func NewAuthenticator(policy Policy) *Authenticator {
	if policy.MinSignatures < 1 {
		policy.MinSignatures = 1
	}
	return &Authenticator{policy: policy}
}

func (a *Authenticator) Policy() Policy { return a.policy }

// Authenticate gates a document on its signatures. It never touches the document text.
func (a *Authenticator) Authenticate(doc Document) error {
	sigs := doc.Signatures()
	if len(sigs) < a.policy.MinSignatures {
		return fmt.Errorf("%w: found %d signature(s), need %d", ErrUnsigned, len(sigs), a.policy.MinSignatures)
	}

	if a.policy.RequiredSigner == "" {
		return nil
	}
	want := strings.ToLower(a.policy.RequiredSigner)
	for _, s := range sigs {
		if strings.Contains(strings.ToLower(s.Name), want) {
			return nil
		}
	}
	return fmt.Errorf("%w: no signature from %q", ErrUnsigned, a.policy.RequiredSigner)
}
