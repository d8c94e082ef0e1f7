// Package loader reads user-selected program files and installs them.
//
// The read is the only suspension point. Its completion is posted onto the
// frame scheduler's task queue, where the driver is stopped, the handle is
// reset, the program is loaded and the driver is started again as one step.
package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/zurustar/oito/pkg/driver"
	"github.com/zurustar/oito/pkg/fileutil"
	"github.com/zurustar/oito/pkg/logger"
	"github.com/zurustar/oito/pkg/vm"
)

// DefaultMaxProgramSize is the read cap when none is configured. It matches
// the CHIP-8 program area (0x200 to the end of a 4 KiB memory).
const DefaultMaxProgramSize = 3584

var (
	// ErrNoFile is reported when a selection contains no file.
	ErrNoFile = errors.New("no file selected")

	// ErrReadFailed is reported when the selected file cannot be read.
	ErrReadFailed = errors.New("failed to read program")

	// ErrProgramRejected is reported when the interpreter refuses a program.
	ErrProgramRejected = errors.New("program rejected")
)

// Runner is the frame loop a load restarts. *driver.Driver implements it.
type Runner interface {
	Start()
	Stop()
}

// Alerter surfaces a failure to the user.
type Alerter interface {
	Alert(err error)
}

// AlertFunc adapts a function to Alerter.
type AlertFunc func(err error)

// Alert implements Alerter.
func (f AlertFunc) Alert(err error) {
	f(err)
}

// Loader installs programs into one handle.
type Loader struct {
	handle   *vm.Handle
	runner   Runner
	poster   driver.Poster
	alerter  Alerter
	maxSize  int
	onLoaded func(name string)
	seq      atomic.Uint64
	log      *slog.Logger
}

// Option is a functional option for configuring the Loader.
type Option func(*Loader)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *Loader) {
		l.log = log
	}
}

// WithMaxProgramSize caps how many bytes are read from a file. A file larger
// than n is still handed to the interpreter, truncated to n+1 bytes, so the
// interpreter's own size check rejects it.
func WithMaxProgramSize(n int) Option {
	return func(l *Loader) {
		l.maxSize = n
	}
}

// WithOnLoaded registers a callback run after a program starts.
func WithOnLoaded(fn func(name string)) Option {
	return func(l *Loader) {
		l.onLoaded = fn
	}
}

// New returns a loader. Completions are posted onto poster.
func New(h *vm.Handle, runner Runner, poster driver.Poster, alerter Alerter, opts ...Option) *Loader {
	l := &Loader{
		handle:  h,
		runner:  runner,
		poster:  poster,
		alerter: alerter,
		maxSize: DefaultMaxProgramSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.log == nil {
		l.log = logger.GetLogger()
	}
	return l
}

// OnFileSelected starts loading f. A nil f alerts ErrNoFile and changes
// nothing. The loader closes f.
//
// When several selections overlap, only the newest one is installed; an
// older read that completes later is discarded.
func (l *Loader) OnFileSelected(f fs.File) {
	if f == nil {
		l.log.Warn("Empty file selection")
		l.alerter.Alert(ErrNoFile)
		return
	}

	seq := l.seq.Add(1)
	go l.read(seq, f)
}

// OpenPath opens a file from the host file system and loads it. The base
// name is matched case-insensitively.
func (l *Loader) OpenPath(p string) error {
	resolved, err := fileutil.ResolvePath(p)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	f, err := os.Open(resolved)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	l.OnFileSelected(f)
	return nil
}

// OpenFS opens name from fsys and loads it.
func (l *Loader) OpenFS(fsys fs.FS, name string) error {
	f, err := fsys.Open(name)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	l.OnFileSelected(f)
	return nil
}

func (l *Loader) read(seq uint64, f fs.File) {
	defer f.Close()

	name := "program"
	if info, err := f.Stat(); err == nil {
		name = info.Name()
	}

	program, err := io.ReadAll(io.LimitReader(f, int64(l.maxSize)+1))
	l.poster.Post(func() {
		if seq != l.seq.Load() {
			l.log.Debug("Discarding superseded load", "name", name, "seq", seq)
			return
		}
		if err != nil {
			l.log.Error("Program read failed", "name", name, "error", err)
			l.alerter.Alert(fmt.Errorf("%w: %s: %w", ErrReadFailed, name, err))
			return
		}
		l.install(name, program)
	})
}

// install runs on the scheduler goroutine.
func (l *Loader) install(name string, program []byte) {
	l.runner.Stop()
	l.handle.Reset()
	if err := l.handle.Load(program); err != nil {
		l.log.Error("Program rejected", "name", name, "size", len(program), "error", err)
		l.alerter.Alert(fmt.Errorf("%w: %s: %w", ErrProgramRejected, name, err))
		return
	}
	l.runner.Start()
	l.log.Info("Program loaded", "name", name, "size", len(program))
	if l.onLoaded != nil {
		l.onLoaded(name)
	}
}
