package driver

import "sync"

// Token identifies one scheduled frame callback. The zero Token is never
// issued and cancelling it is a no-op.
type Token uint64

// Scheduler is the animation-frame abstraction the loop runs on.
type Scheduler interface {
	// ScheduleNext arranges for fn to run on the next frame.
	ScheduleNext(fn func()) Token
	// Cancel removes a callback that has not run yet.
	Cancel(t Token)
}

// Poster queues work onto the goroutine that drives the scheduler.
type Poster interface {
	Post(fn func())
}

// FrameScheduler is a Scheduler backed by an explicit pump. Whoever owns the
// display refresh (the ebiten Update loop or a headless ticker) calls Pump
// once per frame; everything else reaches the loop goroutine via Post.
type FrameScheduler struct {
	mu     sync.Mutex
	next   Token
	frames map[Token]func()
	order  []Token
	tasks  []func()
}

// NewFrameScheduler returns an empty scheduler.
func NewFrameScheduler() *FrameScheduler {
	return &FrameScheduler{frames: make(map[Token]func())}
}

// ScheduleNext implements Scheduler.
func (s *FrameScheduler) ScheduleNext(fn func()) Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.frames[s.next] = fn
	s.order = append(s.order, s.next)
	return s.next
}

// Cancel implements Scheduler.
func (s *FrameScheduler) Cancel(t Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.frames, t)
}

// Post queues fn to run at the start of the next Pump. It is safe to call
// from any goroutine.
func (s *FrameScheduler) Post(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, fn)
}

// Pending returns the number of frame callbacks waiting to run.
func (s *FrameScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

// Pump runs one frame: first every queued task in FIFO order, then every
// frame callback that was scheduled before the pump began. Callbacks
// scheduled while pumping, by a task or by a frame callback, run on the next
// Pump. Callbacks cancelled earlier in the same pump are skipped.
func (s *FrameScheduler) Pump() {
	// Callbacks scheduled by the tasks below belong to the next pump.
	s.mu.Lock()
	due := s.order
	s.order = nil
	s.mu.Unlock()

	for {
		task, ok := s.popTask()
		if !ok {
			break
		}
		task()
	}

	for _, t := range due {
		s.mu.Lock()
		fn, ok := s.frames[t]
		delete(s.frames, t)
		s.mu.Unlock()
		if ok {
			fn()
		}
	}
}

func (s *FrameScheduler) popTask() (func(), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tasks) == 0 {
		return nil, false
	}
	task := s.tasks[0]
	s.tasks[0] = nil
	s.tasks = s.tasks[1:]
	return task, true
}
