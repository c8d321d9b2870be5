package bootstrap

import (
	"sync/atomic"
	"time"
)

// SeekResult is what happened to a pending seek when content loaded.
type SeekResult int

const (
	SeekExecuted SeekResult = iota + 1
	SeekRejected            // guard failed, discarded
	SeekFailed              // engine refused the seek
	SeekSpent               // already consumed
)

// String returns the result name.
func (r SeekResult) String() string {
	switch r {
	case SeekExecuted:
		return "executed"
	case SeekRejected:
		return "rejected"
	case SeekFailed:
		return "failed"
	case SeekSpent:
		return "spent"
	default:
		return "unknown"
	}
}

// Seeker is the part of the engine a pending seek needs.
type Seeker interface {
	Seek(offset time.Duration) error
}

// PendingSeek is a one-shot deferred jump to a start offset. The first
// Release consumes it whatever the outcome; later calls are no-ops.
type PendingSeek struct {
	target time.Duration
	spent  atomic.Bool
}

// NewPendingSeek creates an armed pending seek.
func NewPendingSeek(target time.Duration) *PendingSeek {
	return &PendingSeek{target: target}
}

// Target returns the start offset.
func (p *PendingSeek) Target() time.Duration {
	return p.target
}

// Spent reports whether the seek was already released.
func (p *PendingSeek) Spent() bool {
	return p.spent.Load()
}

// Release executes the seek if 0 < target <= duration.
func (p *PendingSeek) Release(s Seeker, duration time.Duration) (SeekResult, error) {
	if !p.spent.CompareAndSwap(false, true) {
		return SeekSpent, nil
	}
	if p.target <= 0 || p.target > duration {
		return SeekRejected, nil
	}
	if err := s.Seek(p.target); err != nil {
		return SeekFailed, err
	}
	return SeekExecuted, nil
}
