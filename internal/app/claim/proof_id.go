package claim

import (
	"fmt"
	"sync/atomic"
	"time"
)

// IDSource hands out strictly increasing nanosecond stamps, even when the wall clock
// repeats or several goroutines ask at once.
type IDSource struct {
	last atomic.Int64
	now  func() time.Time
}

func NewIDSource(now func() time.Time) *IDSource {
	if now == nil {
		now = time.Now
	}
	return &IDSource{now: now}
}

var defaultIDSource = NewIDSource(nil)

// NewProofID returns zk-<type>-<nanos> and the creation time encoded in it.
func NewProofID(t CredentialType) (string, time.Time) {
	return defaultIDSource.Next(t)
}

func (s *IDSource) Next(t CredentialType) (string, time.Time) {
	for {
		last := s.last.Load()
		next := s.now().UnixNano()
		if next <= last {
			next = last + 1
		}
		if s.last.CompareAndSwap(last, next) {
			return fmt.Sprintf("zk-%s-%d", t, next), time.Unix(0, next).UTC()
		}
	}
}
