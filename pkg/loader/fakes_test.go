package loader

import (
	"bytes"
	"errors"
	"image/color"
	"io/fs"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zurustar/oito/pkg/driver"
	"github.com/zurustar/oito/pkg/graphics"
	"github.com/zurustar/oito/pkg/vm"
)

// programInterpreter tags every tick with the first byte of the program it
// ran against.
type programInterpreter struct {
	program []byte
	ticks   []byte
	loads   [][]byte
	resets  int
	limit   int
}

func (p *programInterpreter) Tick() error {
	if len(p.program) > 0 {
		p.ticks = append(p.ticks, p.program[0])
	}
	return nil
}

func (p *programInterpreter) FrameTick() {}

func (p *programInterpreter) Load(b []byte) error {
	if p.limit > 0 && len(b) > p.limit {
		return errors.New("too large")
	}
	p.program = b
	p.loads = append(p.loads, b)
	return nil
}

func (p *programInterpreter) SetKey(vm.KeyEvent)               {}
func (p *programInterpreter) Draw(vm.Canvas, int, color.Color) {}
func (p *programInterpreter) Sound() bool                      { return false }
func (p *programInterpreter) Reset() {
	p.program = nil
	p.resets++
}

// countingPoster counts posts so tests can wait for read completions.
type countingPoster struct {
	*driver.FrameScheduler
	posts atomic.Int32
}

func (c *countingPoster) Post(fn func()) {
	c.posts.Add(1)
	c.FrameScheduler.Post(fn)
}

type alerts struct {
	mu   sync.Mutex
	errs []error
}

func (a *alerts) Alert(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.errs = append(a.errs, err)
}

func (a *alerts) all() []error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]error(nil), a.errs...)
}

type env struct {
	interp *programInterpreter
	handle *vm.Handle
	poster *countingPoster
	driver *driver.Driver
	alerts *alerts
	loader *Loader
}

func newEnv(opts ...Option) *env {
	e := &env{interp: &programInterpreter{}, alerts: &alerts{}}
	e.handle = vm.NewHandle(e.interp)
	e.poster = &countingPoster{FrameScheduler: driver.NewFrameScheduler()}
	raster := graphics.NewRaster(64, 32, 1)
	e.driver = driver.New(e.handle, e.poster, raster, graphics.DefaultConfig(), nil)
	e.loader = New(e.handle, e.driver, e.poster, e.alerts, opts...)
	return e
}

// awaitPosts blocks until n completions have been posted, then pumps once so
// they run.
func (e *env) awaitPosts(t *testing.T, n int32) {
	t.Helper()
	e.waitPosts(t, n)
	e.poster.Pump()
}

// waitPosts blocks until n completions have been posted.
func (e *env) waitPosts(t *testing.T, n int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for e.poster.posts.Load() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d posts, got %d", n, e.poster.posts.Load())
		}
		time.Sleep(time.Millisecond)
	}
}

// memFile is an fs.File whose Read blocks until gate is closed.
type memFile struct {
	name string
	r    *bytes.Reader
	gate chan struct{}
	err  error
}

func newMemFile(name string, data []byte) *memFile {
	gate := make(chan struct{})
	close(gate)
	return &memFile{name: name, r: bytes.NewReader(data), gate: gate}
}

func newGatedFile(name string, data []byte) *memFile {
	return &memFile{name: name, r: bytes.NewReader(data), gate: make(chan struct{})}
}

func (f *memFile) Read(p []byte) (int, error) {
	<-f.gate
	if f.err != nil {
		return 0, f.err
	}
	return f.r.Read(p)
}

func (f *memFile) Stat() (fs.FileInfo, error) { return memInfo{f}, nil }
func (f *memFile) Close() error               { return nil }

type memInfo struct{ f *memFile }

func (i memInfo) Name() string       { return i.f.name }
func (i memInfo) Size() int64        { return i.f.r.Size() }
func (i memInfo) Mode() fs.FileMode  { return 0o444 }
func (i memInfo) ModTime() time.Time { return time.Time{} }
func (i memInfo) IsDir() bool        { return false }
func (i memInfo) Sys() any           { return nil }
