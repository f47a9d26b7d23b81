package pageview

import "sync"

// FrameScheduler coalesces bursts of triggers into a single run per
// animation frame. The host supplies requestFrame (its requestAnimationFrame
// equivalent); repeated triggers while a frame is pending are dropped, not
// queued. Once the frame callback is executing it runs to completion;
// triggering during execution schedules exactly one follow-up frame.
type FrameScheduler struct {
	requestFrame func(func())
	run          func()

	mu        sync.Mutex
	scheduled bool
	stopped   bool
}

// NewFrameScheduler creates a scheduler invoking run on each granted
// frame. A nil requestFrame degrades to synchronous execution, for hosts
// without a frame loop.
func NewFrameScheduler(requestFrame func(func()), run func()) *FrameScheduler {
	return &FrameScheduler{requestFrame: requestFrame, run: run}
}

// Trigger requests a run on the next frame. Single-flight: while a frame
// is already pending this is a no-op.
func (s *FrameScheduler) Trigger() {
	s.mu.Lock()
	if s.stopped || s.scheduled {
		s.mu.Unlock()
		return
	}
	s.scheduled = true
	s.mu.Unlock()

	if s.requestFrame == nil {
		s.fire()
		return
	}
	s.requestFrame(s.fire)
}

// fire clears the pending flag before running, so triggers arriving during
// execution schedule a fresh frame instead of being lost.
func (s *FrameScheduler) fire() {
	s.mu.Lock()
	s.scheduled = false
	stopped := s.stopped
	s.mu.Unlock()
	if stopped {
		return
	}
	s.run()
}

// Stop permanently disables the scheduler. A frame already granted by the
// host is skipped when it arrives.
func (s *FrameScheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}
