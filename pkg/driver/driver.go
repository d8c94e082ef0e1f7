// Package driver is the frame loop that advances the interpreter.
//
// Each iteration runs CyclesPerFrame cycles, then one frame-timer tick, then
// a full repaint, then the audio check, and finally schedules itself again.
// All of it runs on the goroutine that pumps the Scheduler.
package driver

import (
	"log/slog"

	"github.com/zurustar/oito/pkg/graphics"
	"github.com/zurustar/oito/pkg/logger"
	"github.com/zurustar/oito/pkg/vm"
)

// CyclesPerFrame is the number of instructions executed per displayed frame.
const CyclesPerFrame = 10

// Cue is the audio feedback fired on frames where the sound flag is set.
type Cue interface {
	Notify()
}

// Settings supplies the render configuration read on every frame.
// *graphics.Config implements it.
type Settings interface {
	Snapshot() graphics.Settings
}

// Driver owns the frame loop for one vm.Handle.
type Driver struct {
	handle    *vm.Handle
	scheduler Scheduler
	surface   graphics.Surface
	settings  Settings
	cue       Cue
	session   *Session
	frames    uint64
	log       *slog.Logger
}

// Option is a functional option for configuring the Driver.
type Option func(*Driver)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(d *Driver) {
		d.log = log
	}
}

// WithSession shares an existing session with the driver.
func WithSession(s *Session) Option {
	return func(d *Driver) {
		d.session = s
	}
}

// New creates a stopped driver. A nil cue disables audio feedback.
func New(h *vm.Handle, sched Scheduler, surface graphics.Surface, settings Settings, cue Cue, opts ...Option) *Driver {
	d := &Driver{
		handle:    h,
		scheduler: sched,
		surface:   surface,
		settings:  settings,
		cue:       cue,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.session == nil {
		d.session = &Session{}
	}
	if d.log == nil {
		d.log = logger.GetLogger()
	}
	return d
}

// Start begins the loop. Any outstanding iteration is cancelled first, so
// restarting never leaves two loops advancing the same handle.
func (d *Driver) Start() {
	d.cancelPending()
	d.session.running = true
	d.session.record(d.scheduler.ScheduleNext(d.iterate))
	d.log.Debug("Frame loop started")
}

// Stop cancels the outstanding iteration. Calling it from inside an
// iteration (for example from the fault handler) prevents the reschedule.
func (d *Driver) Stop() {
	wasRunning := d.session.running
	d.cancelPending()
	d.session.running = false
	if wasRunning {
		d.log.Debug("Frame loop stopped", "frames", d.frames)
	}
}

// Running reports whether the loop is active.
func (d *Driver) Running() bool {
	return d.session.running
}

// Frames returns the number of iterations run since construction.
func (d *Driver) Frames() uint64 {
	return d.frames
}

// Session returns the session state shared with the loop.
func (d *Driver) Session() *Session {
	return d.session
}

func (d *Driver) cancelPending() {
	if t, ok := d.session.take(); ok {
		d.scheduler.Cancel(t)
	}
}

// iterate is one frame. The scheduler has already consumed the token that
// brought us here.
func (d *Driver) iterate() {
	d.session.take()
	if !d.session.running {
		return
	}

	for i := 0; i < CyclesPerFrame; i++ {
		d.handle.Cycle()
		// A fault handler may stop the loop; the rest of the frame is dropped.
		if !d.session.running {
			return
		}
	}
	d.handle.FrameTick()

	s := d.settings.Snapshot()
	if r, ok := d.surface.(graphics.Resizer); ok {
		r.Resize(s.Scale)
	}
	d.surface.Clear(s.Background)
	d.surface.Present(d.handle, s.Scale, s.Foreground)

	if d.handle.Sound() && d.cue != nil {
		d.cue.Notify()
	}
	d.frames++

	if !d.session.running {
		return
	}
	d.session.record(d.scheduler.ScheduleNext(d.iterate))
}
