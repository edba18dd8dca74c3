package backdrop

import (
	"sync"
	"time"
)

// FrameFunc is a frame callback. now is the host's monotonic frame
// timestamp.
type FrameFunc func(now time.Duration)

// FrameToken identifies a requested frame callback. The zero token is
// never issued.
type FrameToken uint64

// FrameScheduler is the host's frame-scheduling primitive: a callback
// requested now runs once, before the next display refresh.
type FrameScheduler interface {
	RequestFrame(fn FrameFunc) FrameToken
	CancelFrame(token FrameToken)
}

type pendingFrame struct {
	token FrameToken
	fn    FrameFunc
}

// ManualScheduler queues frame callbacks until Flush runs them. The ebiten
// host flushes once per Draw; tests flush by hand. Callbacks requested
// while a Flush is running are deferred to the next Flush, so a callback
// that reschedules itself runs once per Flush.
type ManualScheduler struct {
	mu      sync.Mutex
	next    FrameToken
	pending []pendingFrame
	running []pendingFrame
}

// NewManualScheduler creates an empty scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// RequestFrame queues fn for the next Flush.
func (s *ManualScheduler) RequestFrame(fn FrameFunc) FrameToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.pending = append(s.pending, pendingFrame{token: s.next, fn: fn})
	return s.next
}

// CancelFrame removes a queued callback. Unknown or already-run tokens are
// ignored.
func (s *ManualScheduler) CancelFrame(token FrameToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.pending {
		if p.token == token {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}

// Flush runs every callback queued before the call, in request order, and
// returns how many ran.
func (s *ManualScheduler) Flush(now time.Duration) int {
	s.mu.Lock()
	s.running, s.pending = s.pending, s.running[:0]
	batch := s.running
	s.mu.Unlock()

	for _, p := range batch {
		p.fn(now)
	}

	s.mu.Lock()
	clear(s.running)
	s.mu.Unlock()
	return len(batch)
}

// Pending returns the number of queued callbacks.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
