package document_test

import (
	"testing"

	"github.com/kyp2022/ghostlink/internal/app/document"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDocument struct {
	sigs      []document.Signature
	textCalls int
}

func (f *fakeDocument) Signatures() []document.Signature { return f.sigs }

func (f *fakeDocument) Text() (string, error) {
	f.textCalls++
	return "总资产 1.00", nil
}

func TestAuthenticateRejectsUnsigned(t *testing.T) {
	doc := &fakeDocument{}
	err := document.NewAuthenticator(document.Policy{}).Authenticate(doc)

	assert.ErrorIs(t, err, document.ErrUnsigned)
	assert.Zero(t, doc.textCalls, "authentication must not read the text")
}

func TestAuthenticateAcceptsAnySignatureByDefault(t *testing.T) {
	doc := &fakeDocument{sigs: []document.Signature{{Name: "anyone"}}}

	require.NoError(t, document.NewAuthenticator(document.Policy{}).Authenticate(doc))
	assert.Zero(t, doc.textCalls)
}

func TestAuthenticatePolicy(t *testing.T) {
	twoSigs := []document.Signature{{Name: "Alipay (China) Network Technology"}, {Name: "Notary"}}

	tests := []struct {
		name    string
		policy  document.Policy
		sigs    []document.Signature
		wantErr bool
	}{
		{name: "min not met", policy: document.Policy{MinSignatures: 3}, sigs: twoSigs, wantErr: true},
		{name: "min met", policy: document.Policy{MinSignatures: 2}, sigs: twoSigs},
		{name: "required signer present", policy: document.Policy{RequiredSigner: "alipay"}, sigs: twoSigs},
		{name: "required signer absent", policy: document.Policy{RequiredSigner: "bank"}, sigs: twoSigs, wantErr: true},
		{name: "negative min treated as one", policy: document.Policy{MinSignatures: -1}, sigs: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := document.NewAuthenticator(tt.policy).Authenticate(&fakeDocument{sigs: tt.sigs})
			if tt.wantErr {
				assert.ErrorIs(t, err, document.ErrUnsigned)
				return
			}
			assert.NoError(t, err)
		})
	}
}
