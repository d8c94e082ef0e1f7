package vm

import (
	"image/color"
	"log/slog"

	"github.com/zurustar/oito/pkg/logger"
)

// FaultHandler receives interpreter faults. It is the interpreter's error
// channel; the frame driver never sees these errors.
type FaultHandler func(err error)

// Stats are the handle's lifetime counters.
type Stats struct {
	Cycles uint64 // cycles since the last reset
	Frames uint64 // frame-timer advances since the last reset
	Loads  uint64 // successful program loads
	Faults uint64 // faults reported since creation
}

// Handle is the exclusive owner of one interpreter instance.
// It lives for the whole session and survives program loads. A Handle is not
// safe for concurrent use: every call must come from the goroutine that pumps
// the frame scheduler.
type Handle struct {
	interp  Interpreter
	onFault FaultHandler
	loaded  bool
	stats   Stats
	log     *slog.Logger
}

// Option is a functional option for configuring the Handle.
type Option func(*Handle)

// WithLogger sets a custom logger.
func WithLogger(log *slog.Logger) Option {
	return func(h *Handle) {
		h.log = log
	}
}

// WithFaultHandler sets the function that receives interpreter faults.
// The default handler logs them.
func WithFaultHandler(fn FaultHandler) Option {
	return func(h *Handle) {
		h.onFault = fn
	}
}

// NewHandle takes ownership of interp, which must be in its power-on state.
func NewHandle(interp Interpreter, opts ...Option) *Handle {
	h := &Handle{
		interp: interp,
		log:    logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.onFault == nil {
		h.onFault = func(err error) {
			h.log.Error("Interpreter fault", "error", err)
		}
	}
	return h
}

// Cycle advances the interpreter by one instruction.
// A fault is wrapped in a *HandleError and passed to the fault handler.
func (h *Handle) Cycle() {
	if err := h.interp.Tick(); err != nil {
		h.stats.Faults++
		h.onFault(&HandleError{Type: ErrorFault, Cycle: h.stats.Cycles, Err: err})
		return
	}
	h.stats.Cycles++
}

// FrameTick advances the interpreter's frame-rate timers once.
func (h *Handle) FrameTick() {
	h.interp.FrameTick()
	h.stats.Frames++
}

// Load installs program. The caller must not use program afterwards.
func (h *Handle) Load(program []byte) error {
	if len(program) == 0 {
		return &HandleError{Type: ErrorLoad, Err: ErrNoProgram}
	}
	if err := h.interp.Load(program); err != nil {
		h.loaded = false
		return &HandleError{Type: ErrorLoad, Err: err}
	}
	h.loaded = true
	h.stats.Loads++
	h.log.Debug("Program loaded", "size", len(program))
	return nil
}

// SetKey forwards a key event to the interpreter unchanged.
func (h *Handle) SetKey(ev KeyEvent) {
	h.interp.SetKey(ev)
}

// Draw paints the interpreter's display buffer onto c.
func (h *Handle) Draw(c Canvas, scale int, paint color.Color) {
	h.interp.Draw(c, scale, paint)
}

// Sound reports the interpreter's audio flag.
func (h *Handle) Sound() bool {
	return h.interp.Sound()
}

// Reset restores the interpreter's power-on state. The program is dropped.
func (h *Handle) Reset() {
	h.interp.Reset()
	h.loaded = false
	h.stats.Cycles = 0
	h.stats.Frames = 0
}

// Loaded reports whether a program is installed.
func (h *Handle) Loaded() bool {
	return h.loaded
}

// Stats returns a snapshot of the handle's counters.
func (h *Handle) Stats() Stats {
	return h.stats
}
