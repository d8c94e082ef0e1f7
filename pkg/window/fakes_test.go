package window

import (
	"io/fs"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/zurustar/oito/pkg/graphics"
	"github.com/zurustar/oito/pkg/input"
	"github.com/zurustar/oito/pkg/rom"
)

// fakeKeyboard はテスト用のキーボード
type fakeKeyboard struct {
	pressed  map[ebiten.Key]bool
	held     map[ebiten.Key]int
	released map[ebiten.Key]bool
}

func newFakeKeyboard() *fakeKeyboard {
	return &fakeKeyboard{
		pressed:  map[ebiten.Key]bool{},
		held:     map[ebiten.Key]int{},
		released: map[ebiten.Key]bool{},
	}
}

func (k *fakeKeyboard) press(keys ...ebiten.Key) {
	k.pressed = map[ebiten.Key]bool{}
	for _, key := range keys {
		k.pressed[key] = true
	}
}

func (k *fakeKeyboard) JustPressed(key ebiten.Key) bool  { return k.pressed[key] }
func (k *fakeKeyboard) PressDuration(key ebiten.Key) int { return k.held[key] }
func (k *fakeKeyboard) JustReleased(key ebiten.Key) bool { return k.released[key] }

type countingPumper struct{ n int }

func (p *countingPumper) Pump() { p.n++ }

type countingPoller struct{ n int }

func (p *countingPoller) Poll(input.KeyState) { p.n++ }

type recordingSelector struct {
	mu    sync.Mutex
	files []fs.File
}

func (s *recordingSelector) OnFileSelected(f fs.File) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = append(s.files, f)
}

type fakeRunner struct {
	running bool
	stops   int
}

func (r *fakeRunner) Stop() {
	r.running = false
	r.stops++
}

func (r *fakeRunner) Running() bool { return r.running }

// testGame はフェイクを接続したGameを作る
type testGame struct {
	game     *Game
	keyboard *fakeKeyboard
	pumper   *countingPumper
	poller   *countingPoller
	selector *recordingSelector
	runner   *fakeRunner
	config   *graphics.Config
	drop     fs.FS
}

func newTestGame(mode Mode, roms []rom.ROM) *testGame {
	tg := &testGame{
		keyboard: newFakeKeyboard(),
		pumper:   &countingPumper{},
		poller:   &countingPoller{},
		selector: &recordingSelector{},
		runner:   &fakeRunner{running: true},
		config:   graphics.DefaultConfig(),
	}
	g := NewGame(mode, roms, 0)
	g.keyboard = tg.keyboard
	g.dropped = func() fs.FS {
		d := tg.drop
		tg.drop = nil
		return d
	}
	g.SetEmulator(&Emulator{
		Scheduler: tg.pumper,
		Keys:      tg.poller,
		Files:     tg.selector,
		Runner:    tg.runner,
		Config:    tg.config,
		Raster:    graphics.NewRaster(64, 32, 1),
	})
	tg.game = g
	return tg
}

func testROMs(names ...string) []rom.ROM {
	roms := make([]rom.ROM, len(names))
	for i, n := range names {
		roms[i] = rom.ROM{Name: n, Path: n}
	}
	return roms
}
