// Package input forwards physical key transitions to the interpreter.
//
// The mapper does no filtering, debouncing or repeat suppression. Events are
// posted onto the frame scheduler's task queue and applied in arrival order,
// so they never interleave with a running frame.
package input

import (
	"log/slog"

	"github.com/zurustar/oito/pkg/driver"
	"github.com/zurustar/oito/pkg/logger"
	"github.com/zurustar/oito/pkg/vm"
)

// KeySink receives key events. *vm.Handle implements it.
type KeySink interface {
	SetKey(ev vm.KeyEvent)
}

// Mapper passes key events through to a KeySink.
type Mapper struct {
	sink   KeySink
	poster driver.Poster
	log    *slog.Logger
}

// Option is a functional option for configuring the Mapper.
type Option func(*Mapper)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Mapper) {
		m.log = log
	}
}

// NewMapper returns a mapper that posts onto poster.
func NewMapper(sink KeySink, poster driver.Poster, opts ...Option) *Mapper {
	m := &Mapper{sink: sink, poster: poster}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = logger.GetLogger()
	}
	return m
}

// OnKeyDown forwards a key-down event, including auto-repeat events.
func (m *Mapper) OnKeyDown(code string) {
	m.forward(vm.KeyEvent{Code: code, Phase: vm.Pressed})
}

// OnKeyUp forwards a key-up event.
func (m *Mapper) OnKeyUp(code string) {
	m.forward(vm.KeyEvent{Code: code, Phase: vm.Released})
}

func (m *Mapper) forward(ev vm.KeyEvent) {
	m.log.Debug("Key event", "code", ev.Code, "phase", ev.Phase)
	m.poster.Post(func() {
		m.sink.SetKey(ev)
	})
}
