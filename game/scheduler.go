package game

// CancelToken identifies a requested frame callback.
type CancelToken uint64

// FrameScheduler runs callbacks once on the next display frame.
type FrameScheduler interface {
	RequestFrame(cb func()) CancelToken
	CancelFrame(token CancelToken)
}

type scheduledFrame struct {
	token CancelToken
	cb    func()
}

// LoopScheduler is a FrameScheduler driven by a host loop calling RunFrame
// once per display frame. Not safe for concurrent use.
type LoopScheduler struct {
	next    CancelToken
	pending []scheduledFrame
	running []scheduledFrame
}

// NewLoopScheduler creates an empty scheduler.
func NewLoopScheduler() *LoopScheduler {
	return &LoopScheduler{}
}

// RequestFrame queues cb for the next RunFrame. Callbacks requested while a
// frame is running are deferred to the following frame.
func (s *LoopScheduler) RequestFrame(cb func()) CancelToken {
	s.next++
	s.pending = append(s.pending, scheduledFrame{token: s.next, cb: cb})
	return s.next
}

// CancelFrame drops a queued callback. Cancelling a callback that is part of
// the frame currently running prevents it from being called if it has not
// run yet. Unknown tokens are ignored.
func (s *LoopScheduler) CancelFrame(token CancelToken) {
	for i := range s.pending {
		if s.pending[i].token == token {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
	for i := range s.running {
		if s.running[i].token == token {
			s.running[i].cb = nil
			return
		}
	}
}

// RunFrame calls the callbacks queued before it started, in request order,
// and returns how many ran.
func (s *LoopScheduler) RunFrame() int {
	s.running, s.pending = s.pending, nil
	ran := 0
	for i := 0; i < len(s.running); i++ {
		cb := s.running[i].cb
		if cb == nil {
			continue
		}
		s.running[i].cb = nil
		cb()
		ran++
	}
	s.running = nil
	return ran
}

// Pending returns the number of callbacks waiting for the next frame.
func (s *LoopScheduler) Pending() int {
	return len(s.pending)
}
