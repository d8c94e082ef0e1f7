package window

import (
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"github.com/zurustar/oito/pkg/graphics"
	"github.com/zurustar/oito/pkg/input"
	"github.com/zurustar/oito/pkg/logger"
	"github.com/zurustar/oito/pkg/rom"
)

var (
	// 選択画面の背景色
	selectionBackground = color.RGBA{0x10, 0x10, 0x18, 0xFF}
	// テキスト色（白）
	textColor = color.White
	// 選択中のテキスト色（黄色）
	selectedTextColor = color.RGBA{0xFF, 0xFF, 0x00, 0xFF}
	// 通知の色（赤）
	alertColor = color.RGBA{0xFF, 0x55, 0x55, 0xFF}
	// デフォルトフォント
	defaultFace = text.NewGoXFace(basicfont.Face7x13)
)

// alertDuration は通知を表示し続ける時間
const alertDuration = 3 * time.Second

// Mode はウィンドウの表示モードを表す
type Mode int

const (
	ModeSelection Mode = iota // ROM選択画面
	ModeEmulator              // エミュレータ画面
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeSelection:
		return "Selection"
	case ModeEmulator:
		return "Emulator"
	default:
		return "Unknown"
	}
}

// Pumper runs one frame of the scheduler. *driver.FrameScheduler implements it.
type Pumper interface {
	Pump()
}

// KeyPoller turns keyboard state into key events. *input.Mapper implements it.
type KeyPoller interface {
	Poll(ks input.KeyState)
}

// FileSelector receives dropped files. *loader.Loader implements it.
type FileSelector interface {
	OnFileSelected(f fs.File)
}

// Runner is the frame loop. *driver.Driver implements it.
type Runner interface {
	Stop()
	Running() bool
}

// Emulator はエミュレータ画面が使う部品をまとめたもの
type Emulator struct {
	Scheduler Pumper
	Keys      KeyPoller
	Files     FileSelector
	Runner    Runner
	Config    *graphics.Config
	Raster    *graphics.Raster
}

// Keyboard is the per-frame keyboard seen by the game.
type Keyboard interface {
	input.KeyState
	JustPressed(k ebiten.Key) bool
}

// ebitenKeyboard reads the live ebiten keyboard.
type ebitenKeyboard struct {
	input.EbitenKeys
}

func (ebitenKeyboard) JustPressed(k ebiten.Key) bool {
	return inpututil.IsKeyJustPressed(k)
}

// Game はEbitengineのゲームインターフェースを実装する
type Game struct {
	mode          Mode          // 現在のモード
	roms          []rom.ROM     // 利用可能なROM一覧
	selectedIndex int           // 選択中のROMのインデックス
	selectedROM   *rom.ROM      // 選択されたROM
	timeout       time.Duration // タイムアウト時間
	startTime     time.Time     // 開始時刻

	emu      *Emulator
	keyboard Keyboard
	dropped  func() fs.FS // ドロップされたファイル（なければnil）
	frame    *ebiten.Image

	// モード遷移のコールバック
	onROMSelected   func(r *rom.ROM) error
	onROMExit       func() error
	onScaleChanged  func(scale int)
	transitionError error

	// ROM選択画面があるかどうか（ROMが複数ある場合true）
	hasROMSelection bool

	// 画面に重ねて表示する通知
	alert      string
	alertUntil time.Time

	mu sync.RWMutex
}

// NewGame Gameを作成
func NewGame(mode Mode, roms []rom.ROM, timeout time.Duration) *Game {
	return &Game{
		mode:      mode,
		roms:      roms,
		timeout:   timeout,
		startTime: time.Now(),
		keyboard:  ebitenKeyboard{},
		dropped:   ebiten.DroppedFiles,
	}
}

// SetEmulator sets the emulator components used in ModeEmulator.
func (g *Game) SetEmulator(emu *Emulator) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.emu = emu
}

// SetOnROMSelected sets the callback invoked when a ROM is chosen on the
// selection screen. On success the game switches to ModeEmulator.
func (g *Game) SetOnROMSelected(callback func(r *rom.ROM) error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onROMSelected = callback
}

// SetOnROMExit sets the callback invoked when returning to the selection
// screen.
func (g *Game) SetOnROMExit(callback func() error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onROMExit = callback
}

// SetOnScaleChanged sets the callback invoked after the -/= controls change
// the pixel scale.
func (g *Game) SetOnScaleChanged(callback func(scale int)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onScaleChanged = callback
}

// SetHasROMSelection sets whether Esc in ModeEmulator returns to the
// selection screen (true) or quits (false).
func (g *Game) SetHasROMSelection(has bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hasROMSelection = has
}

// GetTransitionError returns any error that occurred during mode transition
func (g *Game) GetTransitionError() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.transitionError
}

// GetSelectedROM 選択されたROMを取得
func (g *Game) GetSelectedROM() *rom.ROM {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.selectedROM
}

// Mode returns the current mode.
func (g *Game) Mode() Mode {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.mode
}

// Alert shows err over the screen for a few seconds. It implements
// loader.Alerter and is safe to call from any goroutine.
func (g *Game) Alert(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.alert = err.Error()
	g.alertUntil = time.Now().Add(alertDuration)
}

// currentAlert は表示中の通知を返す（期限切れなら空）
func (g *Game) currentAlert() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if time.Now().After(g.alertUntil) {
		return ""
	}
	return g.alert
}

// Update ゲームロジックの更新（Ebitengineが毎フレーム呼び出す）
func (g *Game) Update() error {
	// タイムアウトチェック
	if g.timeout > 0 && time.Since(g.startTime) >= g.timeout {
		return ebiten.Termination
	}

	switch g.Mode() {
	case ModeSelection:
		return g.updateSelection()
	case ModeEmulator:
		return g.updateEmulator()
	}

	return nil
}

// updateSelection ROM選択画面の更新
func (g *Game) updateSelection() error {
	kb := g.keyboard

	if kb.JustPressed(ebiten.KeyUp) && g.selectedIndex > 0 {
		g.selectedIndex--
	}
	if kb.JustPressed(ebiten.KeyDown) && g.selectedIndex < len(g.roms)-1 {
		g.selectedIndex++
	}

	if kb.JustPressed(ebiten.KeyEnter) && len(g.roms) > 0 {
		g.mu.Lock()
		g.selectedROM = &g.roms[g.selectedIndex]
		selected := g.selectedROM
		callback := g.onROMSelected
		g.mu.Unlock()

		// コールバックがない場合は終了（選択結果だけを返す）
		if callback == nil {
			return ebiten.Termination
		}
		if err := callback(selected); err != nil {
			g.mu.Lock()
			g.transitionError = err
			g.mu.Unlock()
			return ebiten.Termination
		}
		g.mu.Lock()
		g.mode = ModeEmulator
		g.startTime = time.Now() // タイムアウトをリセット
		g.mu.Unlock()
		return nil
	}

	if kb.JustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	// ドロップされたファイルは選択画面からでも読み込む
	g.mu.RLock()
	emu := g.emu
	g.mu.RUnlock()
	if emu != nil && g.processDroppedFiles(emu) {
		g.mu.Lock()
		g.mode = ModeEmulator
		g.startTime = time.Now()
		g.mu.Unlock()
	}

	return nil
}

// updateEmulator エミュレータ画面の更新
// キー入力、ドロップされたファイル、UI操作の順に処理してから1フレーム進める
func (g *Game) updateEmulator() error {
	g.mu.RLock()
	emu := g.emu
	hasROMSelection := g.hasROMSelection
	g.mu.RUnlock()

	if emu == nil {
		return errors.New("emulator is not configured")
	}

	emu.Keys.Poll(g.keyboard)
	g.processDroppedFiles(emu)
	g.processControls(emu)

	// Escキーで終了または選択画面に戻る
	if g.keyboard.JustPressed(ebiten.KeyEscape) {
		if hasROMSelection {
			return g.returnToSelection()
		}
		emu.Runner.Stop()
		return ebiten.Termination
	}

	emu.Scheduler.Pump()
	return nil
}

// processDroppedFiles はドロップされた最初のファイルをローダーに渡す
// ファイルを含まないドロップはファイル未選択として扱う
// ファイルを渡した場合にtrueを返す
func (g *Game) processDroppedFiles(emu *Emulator) bool {
	fsys := g.dropped()
	if fsys == nil {
		return false
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		logger.GetLogger().Warn("Failed to read dropped files", "error", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		f, err := fsys.Open(entry.Name())
		if err != nil {
			logger.GetLogger().Warn("Failed to open dropped file", "name", entry.Name(), "error", err)
			continue
		}
		emu.Files.OnFileSelected(f)
		return true
	}
	emu.Files.OnFileSelected(nil)
	return false
}

// processControls は色と倍率の操作を処理する（ループの再起動は不要）
func (g *Game) processControls(emu *Emulator) {
	kb := g.keyboard
	if kb.JustPressed(ebiten.KeyF1) {
		bg := emu.Config.NextBackground()
		logger.GetLogger().Debug("Background changed", "color", graphics.FormatHexColor(bg))
	}
	if kb.JustPressed(ebiten.KeyF2) {
		fg := emu.Config.NextForeground()
		logger.GetLogger().Debug("Foreground changed", "color", graphics.FormatHexColor(fg))
	}

	delta := 0
	if kb.JustPressed(ebiten.KeyMinus) {
		delta--
	}
	if kb.JustPressed(ebiten.KeyEqual) {
		delta++
	}
	if delta == 0 {
		return
	}
	scale := emu.Config.StepScale(delta)
	// 停止中でもラスタの大きさを合わせる
	emu.Raster.Resize(scale)
	g.mu.RLock()
	callback := g.onScaleChanged
	g.mu.RUnlock()
	if callback != nil {
		callback(scale)
	}
}

// returnToSelection はエミュレータ画面からROM選択画面に戻る
func (g *Game) returnToSelection() error {
	g.mu.RLock()
	emu := g.emu
	onROMExit := g.onROMExit
	g.mu.RUnlock()

	if emu != nil {
		emu.Runner.Stop()
	}

	if onROMExit != nil {
		if err := onROMExit(); err != nil {
			logger.GetLogger().Error("onROMExit callback failed", "error", err)
		}
	}

	g.mu.Lock()
	g.mode = ModeSelection
	g.mu.Unlock()

	return nil
}

// Draw 画面描画（Ebitengineが毎フレーム呼び出す）
func (g *Game) Draw(screen *ebiten.Image) {
	switch g.Mode() {
	case ModeSelection:
		screen.Fill(selectionBackground)
		g.drawSelection(screen)
	case ModeEmulator:
		g.drawEmulator(screen)
	}

	if msg := g.currentAlert(); msg != "" {
		op := &text.DrawOptions{}
		op.GeoM.Translate(8, float64(screen.Bounds().Dy())-20)
		op.ColorScale.ScaleWithColor(alertColor)
		text.Draw(screen, msg, defaultFace, op)
	}
}

// drawSelection ROM選択画面の描画
func (g *Game) drawSelection(screen *ebiten.Image) {
	titleOp := &text.DrawOptions{}
	titleOp.GeoM.Translate(40, 30)
	titleOp.ColorScale.ScaleWithColor(textColor)
	text.Draw(screen, "Select a ROM", defaultFace, titleOp)

	for i, r := range g.roms {
		y := 70 + float64(i*24)

		prefix := "  "
		clr := color.Color(textColor)
		if i == g.selectedIndex {
			prefix = "> "
			clr = selectedTextColor
		}

		op := &text.DrawOptions{}
		op.GeoM.Translate(60, y)
		op.ColorScale.ScaleWithColor(clr)
		text.Draw(screen, prefix+r.DisplayName(), defaultFace, op)
	}

	if g.selectedIndex < len(g.roms) {
		if detail := romDetail(&g.roms[g.selectedIndex]); detail != "" {
			detailOp := &text.DrawOptions{}
			detailOp.GeoM.Translate(40, float64(screen.Bounds().Dy())-80)
			detailOp.ColorScale.ScaleWithColor(textColor)
			text.Draw(screen, detail, defaultFace, detailOp)
		}
	}

	helpOp := &text.DrawOptions{}
	helpOp.GeoM.Translate(40, float64(screen.Bounds().Dy())-50)
	helpOp.ColorScale.ScaleWithColor(textColor)
	text.Draw(screen, "UP/DOWN to select, ENTER to start, ESC to exit", defaultFace, helpOp)
}

// romDetail はメタデータの作者と説明を1行にまとめる（なければ空）
func romDetail(r *rom.ROM) string {
	if r.Info == nil {
		return ""
	}
	switch {
	case r.Info.Author != "" && r.Info.Description != "":
		return r.Info.Description + " (" + r.Info.Author + ")"
	case r.Info.Author != "":
		return "by " + r.Info.Author
	default:
		return r.Info.Description
	}
}

// drawEmulator はラスタを画面中央に転送する
func (g *Game) drawEmulator(screen *ebiten.Image) {
	g.mu.RLock()
	emu := g.emu
	g.mu.RUnlock()
	if emu == nil {
		return
	}

	screen.Fill(emu.Config.Snapshot().Background)

	w, h := emu.Raster.Size()
	pix := emu.Raster.Pixels()
	if len(pix) != 4*w*h || w == 0 || h == 0 {
		return
	}
	if g.frame == nil || g.frame.Bounds().Dx() != w || g.frame.Bounds().Dy() != h {
		if g.frame != nil {
			g.frame.Deallocate()
		}
		g.frame = ebiten.NewImage(w, h)
	}
	g.frame.WritePixels(pix)

	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(sw-w)/2, float64(sh-h)/2)
	screen.DrawImage(g.frame, op)
}

// Layout 画面サイズを返す（ウィンドウサイズをそのまま使う）
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return max(outsideWidth, 1), max(outsideHeight, 1)
}

// WindowSize は倍率に合わせたウィンドウサイズを返す
func WindowSize(cols, rows, scale int) (int, int) {
	return cols * scale, rows * scale
}

// Run GUIモードでウィンドウを実行
func Run(game *Game, width, height int, title string) error {
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle(title)
	// ウィンドウのリサイズを許可（ラスタは中央に描画される）
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		return fmt.Errorf("failed to run game: %w", err)
	}
	return game.GetTransitionError()
}
