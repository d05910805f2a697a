package normalizer

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kyp2022/ghostlink/internal/app/claim"
)

// Input is the provider-native payload handed to a normalizer.
type Input struct {
	Payload   map[string]any
	Recipient string
}

type Normalizer interface {
	CredentialType() claim.CredentialType
	Normalize(in Input) (claim.CredentialClaim, error)
}

type Registry struct {
	normalizers map[claim.CredentialType]Normalizer
}

func NewRegistry(normalizers ...Normalizer) *Registry {
	r := &Registry{normalizers: make(map[claim.CredentialType]Normalizer, len(normalizers))}
	for _, n := range normalizers {
		r.normalizers[n.CredentialType()] = n
	}
	return r
}

func (r *Registry) Get(t claim.CredentialType) (Normalizer, bool) {
	n, ok := r.normalizers[t]
	return n, ok
}

func (r *Registry) Normalize(t claim.CredentialType, in Input) (claim.CredentialClaim, error) {
	n, ok := r.normalizers[t]
	if !ok {
		return claim.CredentialClaim{}, fmt.Errorf("%w: %q", claim.ErrUnsupportedCredential, t)
	}
	return n.Normalize(in)
}

var decimalPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// IsDecimal reports whether s is a non-negative plain decimal such as "10000" or "12.50".
func IsDecimal(s string) bool { return decimalPattern.MatchString(s) }

func lookup(payload map[string]any, path ...string) (any, bool) {
	var cur any = payload
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

func fieldName(path []string) string {
	return strings.Join(path, ".")
}

func requireString(payload map[string]any, path ...string) (string, error) {
	v, ok := lookup(payload, path...)
	if !ok {
		return "", fmt.Errorf("%w: %s", claim.ErrMissingField, fieldName(path))
	}
	switch s := v.(type) {
	case string:
		if strings.TrimSpace(s) == "" {
			return "", fmt.Errorf("%w: %s", claim.ErrMissingField, fieldName(path))
		}
		return s, nil
	case json.Number:
		return s.String(), nil
	default:
		return "", fmt.Errorf("%w: %s must be a string, got %T", claim.ErrInvalidField, fieldName(path), v)
	}
}

// requireInteger accepts the numeric shapes produced by encoding/json (with or without UseNumber)
// and by Go callers, and returns them as a json.Number so large ids survive unchanged.
func requireInteger(payload map[string]any, path ...string) (json.Number, error) {
	v, ok := lookup(payload, path...)
	if !ok {
		return "", fmt.Errorf("%w: %s", claim.ErrMissingField, fieldName(path))
	}
	return toInteger(v, fieldName(path))
}

func optionalInteger(payload map[string]any, def int64, path ...string) (json.Number, error) {
	v, ok := lookup(payload, path...)
	if !ok {
		return json.Number(strconv.FormatInt(def, 10)), nil
	}
	return toInteger(v, fieldName(path))
}

func toInteger(v any, name string) (json.Number, error) {
	switch n := v.(type) {
	case json.Number:
		if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
			return "", fmt.Errorf("%w: %s must be an integer, got %s", claim.ErrInvalidField, name, n)
		}
		return n, nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return "", fmt.Errorf("%w: %s must be an integer, got %v", claim.ErrInvalidField, name, n)
		}
		return json.Number(strconv.FormatFloat(n, 'f', 0, 64)), nil
	case int:
		return json.Number(strconv.Itoa(n)), nil
	case int64:
		return json.Number(strconv.FormatInt(n, 10)), nil
	default:
		return "", fmt.Errorf("%w: %s must be a number, got %T", claim.ErrInvalidField, name, v)
	}
}

func requireTimestamp(payload map[string]any, path ...string) (string, error) {
	s, err := requireString(payload, path...)
	if err != nil {
		return "", err
	}
	if _, err := time.Parse(time.RFC3339, s); err != nil {
		return "", fmt.Errorf("%w: %s is not an ISO-8601 timestamp: %q", claim.ErrInvalidField, fieldName(path), s)
	}
	return s, nil
}

func requireDecimal(payload map[string]any, path ...string) (string, error) {
	s, err := requireString(payload, path...)
	if err != nil {
		return "", err
	}
	if !decimalPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %s is not a decimal: %q", claim.ErrInvalidField, fieldName(path), s)
	}
	return s, nil
}
