package window

import (
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/zurustar/oito/pkg/rom"
)

// TestNewGame はGameの初期状態をテストする
func TestNewGame(t *testing.T) {
	roms := testROMs("a.ch8", "b.ch8")
	game := NewGame(ModeSelection, roms, 5*time.Second)

	if game.Mode() != ModeSelection {
		t.Errorf("Expected mode %v, got %v", ModeSelection, game.Mode())
	}
	if len(game.roms) != 2 {
		t.Errorf("Expected 2 ROMs, got %d", len(game.roms))
	}
	if game.selectedIndex != 0 {
		t.Errorf("Expected selectedIndex 0, got %d", game.selectedIndex)
	}
	if game.GetSelectedROM() != nil {
		t.Error("Expected no ROM selected")
	}
}

func TestModeString(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeSelection, "Selection"},
		{ModeEmulator, "Emulator"},
		{Mode(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("Mode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

// TestSelectionNavigation は上下キーでの選択移動をテストする
func TestSelectionNavigation(t *testing.T) {
	tg := newTestGame(ModeSelection, testROMs("a.ch8", "b.ch8", "c.ch8"))
	g := tg.game

	steps := []struct {
		key  ebiten.Key
		want int
	}{
		{ebiten.KeyUp, 0}, // 先頭より上には行かない
		{ebiten.KeyDown, 1},
		{ebiten.KeyDown, 2},
		{ebiten.KeyDown, 2}, // 末尾より下には行かない
		{ebiten.KeyUp, 1},
	}
	for i, s := range steps {
		tg.keyboard.press(s.key)
		if err := g.Update(); err != nil {
			t.Fatalf("step %d: unexpected error %v", i, err)
		}
		if g.selectedIndex != s.want {
			t.Errorf("step %d: selectedIndex = %d, want %d", i, g.selectedIndex, s.want)
		}
	}
}

// TestSelectionEnterWithoutCallback はコールバックなしで選択すると終了することをテストする
func TestSelectionEnterWithoutCallback(t *testing.T) {
	tg := newTestGame(ModeSelection, testROMs("a.ch8", "b.ch8"))
	g := tg.game

	tg.keyboard.press(ebiten.KeyDown)
	g.Update()
	tg.keyboard.press(ebiten.KeyEnter)
	if err := g.Update(); !errors.Is(err, ebiten.Termination) {
		t.Fatalf("Expected ebiten.Termination, got %v", err)
	}
	if r := g.GetSelectedROM(); r == nil || r.Name != "b.ch8" {
		t.Errorf("Expected b.ch8 selected, got %+v", r)
	}
}

// TestSelectionEnterSwitchesToEmulator はコールバック成功でエミュレータ画面に遷移することをテストする
func TestSelectionEnterSwitchesToEmulator(t *testing.T) {
	tg := newTestGame(ModeSelection, testROMs("a.ch8"))
	g := tg.game

	var got *rom.ROM
	g.SetOnROMSelected(func(r *rom.ROM) error {
		got = r
		return nil
	})

	tg.keyboard.press(ebiten.KeyEnter)
	if err := g.Update(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got == nil || got.Name != "a.ch8" {
		t.Errorf("Callback received %+v", got)
	}
	if g.Mode() != ModeEmulator {
		t.Errorf("Expected ModeEmulator, got %v", g.Mode())
	}
}

// TestSelectionCallbackError はコールバック失敗時にエラーが保存されることをテストする
func TestSelectionCallbackError(t *testing.T) {
	tg := newTestGame(ModeSelection, testROMs("a.ch8"))
	g := tg.game

	wantErr := errors.New("load failed")
	g.SetOnROMSelected(func(*rom.ROM) error { return wantErr })

	tg.keyboard.press(ebiten.KeyEnter)
	if err := g.Update(); !errors.Is(err, ebiten.Termination) {
		t.Fatalf("Expected ebiten.Termination, got %v", err)
	}
	if !errors.Is(g.GetTransitionError(), wantErr) {
		t.Errorf("GetTransitionError() = %v, want %v", g.GetTransitionError(), wantErr)
	}
	if g.Mode() != ModeSelection {
		t.Errorf("Expected to stay in ModeSelection, got %v", g.Mode())
	}
}

func TestSelectionEscape(t *testing.T) {
	tg := newTestGame(ModeSelection, testROMs("a.ch8"))
	tg.keyboard.press(ebiten.KeyEscape)
	if err := tg.game.Update(); !errors.Is(err, ebiten.Termination) {
		t.Fatalf("Expected ebiten.Termination, got %v", err)
	}
}

func TestSelectionEmptyList(t *testing.T) {
	tg := newTestGame(ModeSelection, nil)
	tg.keyboard.press(ebiten.KeyEnter, ebiten.KeyDown)
	if err := tg.game.Update(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if tg.game.GetSelectedROM() != nil {
		t.Error("Expected no ROM selected from an empty list")
	}
}

// TestEmulatorFrame は1回のUpdateでキー処理と1フレームの実行が行われることをテストする
func TestEmulatorFrame(t *testing.T) {
	tg := newTestGame(ModeEmulator, nil)
	for i := 0; i < 3; i++ {
		if err := tg.game.Update(); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	if tg.poller.n != 3 {
		t.Errorf("Poll called %d times, want 3", tg.poller.n)
	}
	if tg.pumper.n != 3 {
		t.Errorf("Pump called %d times, want 3", tg.pumper.n)
	}
}

func TestEmulatorNotConfigured(t *testing.T) {
	g := NewGame(ModeEmulator, nil, 0)
	if err := g.Update(); err == nil {
		t.Error("Expected error without an emulator")
	}
}

// TestEmulatorColorControls はF1/F2で色が切り替わることをテストする
func TestEmulatorColorControls(t *testing.T) {
	tg := newTestGame(ModeEmulator, nil)
	before := tg.config.Snapshot()

	tg.keyboard.press(ebiten.KeyF1)
	tg.game.Update()
	after := tg.config.Snapshot()
	if after.Background == before.Background {
		t.Error("F1 did not change the background")
	}
	if after.Foreground != before.Foreground {
		t.Error("F1 changed the foreground")
	}

	tg.keyboard.press(ebiten.KeyF2)
	tg.game.Update()
	if tg.config.Snapshot().Foreground == before.Foreground {
		t.Error("F2 did not change the foreground")
	}
	if tg.runner.stops != 0 {
		t.Errorf("Colour change stopped the loop %d times", tg.runner.stops)
	}
}

// TestEmulatorScaleControls は-/=キーで倍率が変わることをテストする
func TestEmulatorScaleControls(t *testing.T) {
	tg := newTestGame(ModeEmulator, nil)
	var scales []int
	tg.game.SetOnScaleChanged(func(s int) { scales = append(scales, s) })
	start := tg.config.Snapshot().Scale

	tg.keyboard.press(ebiten.KeyEqual)
	tg.game.Update()
	tg.keyboard.press(ebiten.KeyMinus)
	tg.game.Update()
	tg.keyboard.press(ebiten.KeyMinus)
	tg.game.Update()

	want := []int{start + 1, start, start - 1}
	if len(scales) != len(want) {
		t.Fatalf("scale callbacks = %v, want %v", scales, want)
	}
	for i := range want {
		if scales[i] != want[i] {
			t.Errorf("scale[%d] = %d, want %d", i, scales[i], want[i])
		}
	}
}

// TestEmulatorDroppedFile はドロップされたファイルがローダーに渡されることをテストする
func TestEmulatorDroppedFile(t *testing.T) {
	tg := newTestGame(ModeEmulator, nil)
	tg.drop = fstest.MapFS{
		"sub/ignored.ch8": {Data: []byte{0x00}},
		"pong.ch8":        {Data: []byte{0x12, 0x00}},
	}
	tg.game.Update()

	if len(tg.selector.files) != 1 {
		t.Fatalf("OnFileSelected called %d times, want 1", len(tg.selector.files))
	}
	f := tg.selector.files[0]
	if f == nil {
		t.Fatal("Expected a file, got nil")
	}
	info, err := f.Stat()
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Name() != "pong.ch8" {
		t.Errorf("Dropped file name = %q, want pong.ch8", info.Name())
	}

	// 次のフレームではドロップなし
	tg.game.Update()
	if len(tg.selector.files) != 1 {
		t.Errorf("OnFileSelected called again without a drop")
	}
}

// TestEmulatorDropWithoutFile はファイルを含まないドロップがnilとして渡されることをテストする
func TestEmulatorDropWithoutFile(t *testing.T) {
	tg := newTestGame(ModeEmulator, nil)
	tg.drop = fstest.MapFS{"folder/inner.ch8": {Data: []byte{0x00}}}
	tg.game.Update()

	if len(tg.selector.files) != 1 || tg.selector.files[0] != nil {
		t.Errorf("Expected one nil selection, got %v", tg.selector.files)
	}
}

// TestEmulatorEscapeReturnsToSelection はEscで選択画面に戻り選択位置が保持されることをテストする
func TestEmulatorEscapeReturnsToSelection(t *testing.T) {
	tg := newTestGame(ModeSelection, testROMs("a.ch8", "b.ch8", "c.ch8"))
	g := tg.game
	g.SetHasROMSelection(true)
	g.SetOnROMSelected(func(*rom.ROM) error { return nil })
	exits := 0
	g.SetOnROMExit(func() error {
		exits++
		return nil
	})

	tg.keyboard.press(ebiten.KeyDown)
	g.Update()
	tg.keyboard.press(ebiten.KeyEnter)
	g.Update()
	if g.Mode() != ModeEmulator {
		t.Fatalf("Expected ModeEmulator, got %v", g.Mode())
	}

	tg.keyboard.press(ebiten.KeyEscape)
	if err := g.Update(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if g.Mode() != ModeSelection {
		t.Errorf("Expected ModeSelection, got %v", g.Mode())
	}
	if g.selectedIndex != 1 {
		t.Errorf("selectedIndex = %d, want 1", g.selectedIndex)
	}
	if tg.runner.stops != 1 || exits != 1 {
		t.Errorf("stops = %d, exits = %d, want 1 and 1", tg.runner.stops, exits)
	}
	if tg.pumper.n != 0 {
		t.Errorf("Pump ran %d times after Escape", tg.pumper.n)
	}
}

// TestEmulatorEscapeTerminates はROM選択画面がない場合Escで終了することをテストする
func TestEmulatorEscapeTerminates(t *testing.T) {
	tg := newTestGame(ModeEmulator, nil)
	tg.keyboard.press(ebiten.KeyEscape)
	if err := tg.game.Update(); !errors.Is(err, ebiten.Termination) {
		t.Fatalf("Expected ebiten.Termination, got %v", err)
	}
	if tg.runner.stops != 1 {
		t.Errorf("stops = %d, want 1", tg.runner.stops)
	}
}

func TestTimeout(t *testing.T) {
	g := NewGame(ModeSelection, nil, time.Nanosecond)
	g.keyboard = newFakeKeyboard()
	time.Sleep(time.Millisecond)
	if err := g.Update(); !errors.Is(err, ebiten.Termination) {
		t.Fatalf("Expected ebiten.Termination, got %v", err)
	}
}

func TestAlert(t *testing.T) {
	g := NewGame(ModeEmulator, nil, 0)
	if g.currentAlert() != "" {
		t.Error("Expected no alert initially")
	}
	g.Alert(errors.New("no file selected"))
	if got := g.currentAlert(); got != "no file selected" {
		t.Errorf("currentAlert() = %q", got)
	}

	g.mu.Lock()
	g.alertUntil = time.Now().Add(-time.Second)
	g.mu.Unlock()
	if g.currentAlert() != "" {
		t.Error("Expected expired alert to be hidden")
	}
}

func TestLayout(t *testing.T) {
	g := NewGame(ModeSelection, nil, 0)
	if w, h := g.Layout(1280, 640); w != 1280 || h != 640 {
		t.Errorf("Layout = %dx%d, want 1280x640", w, h)
	}
	if w, h := g.Layout(0, 0); w != 1 || h != 1 {
		t.Errorf("Layout(0, 0) = %dx%d, want 1x1", w, h)
	}
}

func TestWindowSize(t *testing.T) {
	if w, h := WindowSize(64, 32, 20); w != 1280 || h != 640 {
		t.Errorf("WindowSize = %dx%d, want 1280x640", w, h)
	}
}

// TestEmulatorScaleResizesStoppedRaster は停止中でも倍率の変更がラスタに反映されることをテストする
func TestEmulatorScaleResizesStoppedRaster(t *testing.T) {
	tg := newTestGame(ModeEmulator, nil)
	tg.runner.running = false
	start := tg.config.Snapshot().Scale

	tg.keyboard.press(ebiten.KeyEqual)
	tg.game.Update()

	w, h := tg.game.emu.Raster.Size()
	if w != 64*(start+1) || h != 32*(start+1) {
		t.Errorf("raster = %dx%d, want %dx%d", w, h, 64*(start+1), 32*(start+1))
	}
}

// TestSelectionDroppedFile は選択画面へのドロップでエミュレータ画面に移ることをテストする
func TestSelectionDroppedFile(t *testing.T) {
	tg := newTestGame(ModeSelection, testROMs("a.ch8", "b.ch8"))
	tg.drop = fstest.MapFS{"pong.ch8": {Data: []byte{0x12, 0x00}}}

	if err := tg.game.Update(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(tg.selector.files) != 1 || tg.selector.files[0] == nil {
		t.Fatalf("Expected one dropped file, got %v", tg.selector.files)
	}
	if tg.game.Mode() != ModeEmulator {
		t.Errorf("Expected ModeEmulator, got %v", tg.game.Mode())
	}
	if tg.pumper.n != 0 {
		t.Errorf("Pump ran %d times on the selection frame", tg.pumper.n)
	}

	// 次のフレームで読み込みの完了が処理される
	tg.game.Update()
	if tg.pumper.n != 1 {
		t.Errorf("Pump ran %d times, want 1", tg.pumper.n)
	}
}

// TestSelectionDropWithoutFile はファイルを含まないドロップで選択画面に留まることをテストする
func TestSelectionDropWithoutFile(t *testing.T) {
	tg := newTestGame(ModeSelection, testROMs("a.ch8", "b.ch8"))
	tg.drop = fstest.MapFS{"folder/inner.ch8": {Data: []byte{0x00}}}

	tg.game.Update()
	if len(tg.selector.files) != 1 || tg.selector.files[0] != nil {
		t.Errorf("Expected one nil selection, got %v", tg.selector.files)
	}
	if tg.game.Mode() != ModeSelection {
		t.Errorf("Expected ModeSelection, got %v", tg.game.Mode())
	}
}

func TestROMDetail(t *testing.T) {
	tests := []struct {
		name string
		info *rom.Info
		want string
	}{
		{"no metadata", nil, ""},
		{"title only", &rom.Info{Title: "Pong"}, ""},
		{"description", &rom.Info{Description: "two paddles"}, "two paddles"},
		{"author", &rom.Info{Author: "someone"}, "by someone"},
		{"both", &rom.Info{Author: "someone", Description: "two paddles"}, "two paddles (someone)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &rom.ROM{Name: "pong.ch8", Info: tt.info}
			if got := romDetail(r); got != tt.want {
				t.Errorf("romDetail() = %q, want %q", got, tt.want)
			}
		})
	}
}
