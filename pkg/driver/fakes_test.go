package driver

import (
	"image/color"

	"github.com/zurustar/oito/pkg/graphics"
	"github.com/zurustar/oito/pkg/vm"
)

// traceInterpreter records every contract call in order.
type traceInterpreter struct {
	trace   *[]string
	program []byte
	sound   func(frame int) bool
	fault   func(cycle int) error
	frames  int
	cycles  int
	keys    map[string]bool
}

func newTraceInterpreter(trace *[]string) *traceInterpreter {
	return &traceInterpreter{trace: trace, keys: map[string]bool{}}
}

func (f *traceInterpreter) Tick() error {
	*f.trace = append(*f.trace, "tick")
	f.cycles++
	if f.fault != nil {
		return f.fault(f.cycles)
	}
	return nil
}

func (f *traceInterpreter) FrameTick() {
	*f.trace = append(*f.trace, "frame")
	f.frames++
}

func (f *traceInterpreter) Load(p []byte) error {
	*f.trace = append(*f.trace, "load")
	f.program = p
	return nil
}

func (f *traceInterpreter) SetKey(ev vm.KeyEvent) {
	f.keys[ev.Code] = ev.Phase == vm.Pressed
}

func (f *traceInterpreter) Draw(c vm.Canvas, scale int, paint color.Color) {
	*f.trace = append(*f.trace, "draw")
	c.FillRect(0, 0, scale, scale, paint)
}

func (f *traceInterpreter) Sound() bool {
	*f.trace = append(*f.trace, "sound?")
	if f.sound == nil {
		return false
	}
	// frames was already incremented for the frame being painted
	return f.sound(f.frames - 1)
}

func (f *traceInterpreter) Reset() {
	*f.trace = append(*f.trace, "reset")
	f.program = nil
	f.keys = map[string]bool{}
}

// paint is one Present call as seen by the surface.
type paint struct {
	background color.Color
	scale      int
	foreground color.Color
}

// traceSurface records Clear/Present pairs.
type traceSurface struct {
	trace   *[]string
	frames  []paint
	resizes []int
	cur     paint
}

func (s *traceSurface) Clear(c color.Color) {
	*s.trace = append(*s.trace, "clear")
	s.cur = paint{background: c}
}

func (s *traceSurface) Present(p graphics.Presenter, scale int, fg color.Color) {
	s.cur.scale = scale
	s.cur.foreground = fg
	p.Draw(s, scale, fg)
	s.frames = append(s.frames, s.cur)
}

func (s *traceSurface) FillRect(x, y, w, h int, c color.Color) {}

func (s *traceSurface) Resize(scale int) {
	s.resizes = append(s.resizes, scale)
}

type countingCue struct {
	trace *[]string
	count int
}

func (c *countingCue) Notify() {
	*c.trace = append(*c.trace, "notify")
	c.count++
}

// rig is a driver wired to fakes.
type rig struct {
	trace   []string
	interp  *traceInterpreter
	handle  *vm.Handle
	sched   *FrameScheduler
	surface *traceSurface
	config  *graphics.Config
	cue     *countingCue
	driver  *Driver
}

func newRig(opts ...vm.Option) *rig {
	r := &rig{}
	r.interp = newTraceInterpreter(&r.trace)
	r.handle = vm.NewHandle(r.interp, opts...)
	r.sched = NewFrameScheduler()
	r.surface = &traceSurface{trace: &r.trace}
	r.config = graphics.DefaultConfig()
	r.cue = &countingCue{trace: &r.trace}
	r.driver = New(r.handle, r.sched, r.surface, r.config, r.cue)
	return r
}

func (r *rig) pump(n int) {
	for i := 0; i < n; i++ {
		r.sched.Pump()
	}
}

// count returns how many times ev appears in the trace.
func (r *rig) count(ev string) int {
	n := 0
	for _, e := range r.trace {
		if e == ev {
			n++
		}
	}
	return n
}
