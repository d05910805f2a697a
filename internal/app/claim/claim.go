package claim

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

type CredentialType string

const (
	GitHub  CredentialType = "github"
	Twitter CredentialType = "twitter"
	Alipay  CredentialType = "alipay"
)

// ZeroAddress is the recipient used when the caller supplies none.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

var (
	ErrUnsupportedCredential = errors.New("unsupported credential type")
	ErrMissingField          = errors.New("missing required field")
	ErrInvalidField          = errors.New("invalid field")
	ErrInvalidRecipient      = errors.New("invalid recipient address")
)

var schemas = map[CredentialType][]string{
	GitHub:  {"user_id", "username", "created_at", "public_repos"},
	Twitter: {"user_id", "handle", "created_at", "followers_count"},
	Alipay:  {"balance", "id_number_hash", "threshold"},
}

func ParseCredentialType(s string) (CredentialType, error) {
	t := CredentialType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := schemas[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCredential, s)
	}
	return t, nil
}

// Schema lists the canonical field names of t in wire order.
func (t CredentialType) Schema() []string {
	return append([]string(nil), schemas[t]...)
}

func (t CredentialType) String() string { return string(t) }

type Field struct {
	Name  string
	Value any
}

// Fields keeps insertion order, which is also the order of the JSON object sent to the engine.
type Fields []Field

func (f Fields) Get(name string) (any, bool) {
	for _, field := range f {
		if field.Name == name {
			return field.Value, true
		}
	}
	return nil, false
}

func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(field.Value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping key order. Numbers stay json.Number.
func (f *Fields) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("%w: data must be a JSON object", ErrInvalidField)
	}

	out := Fields{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		out = append(out, Field{Name: name, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*f = out
	return nil
}

type CredentialClaim struct {
	Type      CredentialType `json:"credential_type"`
	Fields    Fields         `json:"data"`
	Recipient string         `json:"recipient"`
}

// New builds a claim and checks it against the schema of t. An empty recipient becomes ZeroAddress.
func New(t CredentialType, fields Fields, recipient string) (CredentialClaim, error) {
	addr, err := NormalizeRecipient(recipient)
	if err != nil {
		return CredentialClaim{}, err
	}

	c := CredentialClaim{Type: t, Fields: fields, Recipient: addr}
	if err := c.Validate(); err != nil {
		return CredentialClaim{}, err
	}
	return c, nil
}

func NormalizeRecipient(recipient string) (string, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return ZeroAddress, nil
	}
	if !common.IsHexAddress(recipient) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRecipient, recipient)
	}
	if !strings.HasPrefix(recipient, "0x") && !strings.HasPrefix(recipient, "0X") {
		recipient = "0x" + recipient
	}
	return recipient, nil
}

// Validate reports whether Fields holds exactly the schema keys of Type with string or number values.
func (c CredentialClaim) Validate() error {
	schema, ok := schemas[c.Type]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedCredential, c.Type)
	}

	seen := make(map[string]struct{}, len(c.Fields))
	for _, field := range c.Fields {
		if _, dup := seen[field.Name]; dup {
			return fmt.Errorf("%w: duplicate field %s", ErrInvalidField, field.Name)
		}
		seen[field.Name] = struct{}{}
		if !isScalar(field.Value) {
			return fmt.Errorf("%w: %s has unsupported value type %T", ErrInvalidField, field.Name, field.Value)
		}
	}

	for _, name := range schema {
		if _, ok := seen[name]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingField, name)
		}
	}
	if len(seen) != len(schema) {
		return fmt.Errorf("%w: %s claim carries fields outside its schema", ErrInvalidField, c.Type)
	}
	return nil
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, json.Number, int, int32, int64, uint, uint32, uint64, float32, float64:
		return true
	default:
		return false
	}
}
