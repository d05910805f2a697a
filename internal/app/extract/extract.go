package extract

import (
	"errors"
	"regexp"
	"strings"
)

// IdentityNumberNotFound stands in for the identity number when the document has none.
const IdentityNumberNotFound = "Not Found"

var ErrBalanceNotFound = errors.New("no balance marker followed by an amount")

var (
	balancePattern  = regexp.MustCompile(`(?:约为|总资产|Total Assets)[^0-9]*([0-9]+(?:,[0-9]+)*\.[0-9]{2})`)
	identityPattern = regexp.MustCompile(`身份证号码[\s:：]*([0-9Xx]{15,18})`)
)

type Hasher interface {
	Hash(s string) string
}

type Result struct {
	Balance            string `json:"balance"`
	IdentityNumber     string `json:"-"`
	IdentityNumberHash string `json:"id_number_hash"`
}

func (r Result) IdentityNumberFound() bool {
	return r.IdentityNumber != IdentityNumberNotFound
}

type Extractor struct {
	hasher Hasher
}

func New(h Hasher) *Extractor {
	return &Extractor{hasher: h}
}

// Extract reads the first balance and identity number from authenticated document text.
// A missing balance is an error; a missing identity number yields IdentityNumberNotFound.
func (e *Extractor) Extract(text string) (Result, error) {
	balance, ok := findBalance(text)
	if !ok {
		return Result{}, ErrBalanceNotFound
	}

	id := findIdentityNumber(text)
	return Result{
		Balance:            balance,
		IdentityNumber:     id,
		IdentityNumberHash: e.hasher.Hash(id),
	}, nil
}

func findBalance(text string) (string, bool) {
	m := balancePattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.ReplaceAll(m[1], ",", ""), true
}

func findIdentityNumber(text string) string {
	m := identityPattern.FindStringSubmatch(text)
	if m == nil {
		return IdentityNumberNotFound
	}
	return m[1]
}
