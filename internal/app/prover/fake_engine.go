package prover

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/kyp2022/ghostlink/internal/app/claim"
	"github.com/kyp2022/ghostlink/internal/app/hasher"
)

const (
	fakeReceiptBytes       = 112
	fakeJournalPrefixBytes = 17
	fakeImageID            = "ghostlink-fake-guest"
)

// FakeEngine answers like a proof engine without proving anything. Receipt and journal are
// random; the nullifier is a digest of the claim data so one claim always maps to one nullifier,
// and the journal ends with it. It exists for tests and local development only.
type FakeEngine struct {
	// Delay simulates proving time. A canceled context interrupts it.
	Delay time.Duration
	// RejectStatus, when set, is returned instead of "success".
	RejectStatus string
	RejectCode   string

	hasher *hasher.Hasher
}

func NewFakeEngine() *FakeEngine {
	return &FakeEngine{hasher: hasher.New()}
}

func (f *FakeEngine) Prove(ctx context.Context, req Request) (Response, error) {
	if f.Delay > 0 {
		timer := time.NewTimer(f.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Response{}, ctx.Err()
		case <-timer.C:
		}
	}

	if f.RejectStatus != "" {
		return Response{
			Status:    f.RejectStatus,
			ErrorCode: f.RejectCode,
			Message:   "claim does not satisfy the guest program",
		}, nil
	}

	h := f.hasher
	if h == nil {
		h = hasher.New()
	}
	data, err := json.Marshal(struct {
		Type string       `json:"credential_type"`
		Data claim.Fields `json:"data"`
	}{string(req.CredentialType), req.Data})
	if err != nil {
		return Response{}, err
	}
	nullifier := h.Hash(string(data))[2:]

	return Response{
		Status:       StatusSuccess,
		ReceiptHex:   randomHex(fakeReceiptBytes),
		JournalHex:   randomHex(fakeJournalPrefixBytes) + nullifier,
		ImageIDHex:   h.Hash(fakeImageID)[2:],
		NullifierHex: nullifier,
	}, nil
}

func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
