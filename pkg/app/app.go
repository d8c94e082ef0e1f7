// Package app はコマンドライン引数からエミュレータを組み立てて実行する
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"

	"github.com/hajimehoshi/ebiten/v2"
	ebaudio "github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/zurustar/oito/pkg/audio"
	"github.com/zurustar/oito/pkg/chip8"
	"github.com/zurustar/oito/pkg/cli"
	"github.com/zurustar/oito/pkg/driver"
	"github.com/zurustar/oito/pkg/graphics"
	"github.com/zurustar/oito/pkg/input"
	"github.com/zurustar/oito/pkg/loader"
	"github.com/zurustar/oito/pkg/logger"
	"github.com/zurustar/oito/pkg/rom"
	"github.com/zurustar/oito/pkg/vm"
	"github.com/zurustar/oito/pkg/window"
)

// windowTitle はウィンドウタイトルの接頭辞
const windowTitle = "oito"

// Application はアプリケーションのメインロジックを管理する
type Application struct {
	config  *cli.Config
	log     *slog.Logger
	romReg  *rom.Registry
	embedFS fs.FS

	// 標準入出力（テストで差し替える）
	stdin  io.Reader
	stdout io.Writer

	// 組み立てた部品
	settings  *graphics.Config
	raster    *graphics.Raster
	scheduler *driver.FrameScheduler
	handle    *vm.Handle
	driver    *driver.Driver
	mapper    *input.Mapper
	loader    *loader.Loader
	cue       driver.Cue
	game      *window.Game
}

// New Applicationを作成
// embedFSはroms/とsounds/を含む埋め込みFS（nilなら埋め込みなし）
func New(embedFS fs.FS) *Application {
	return &Application{
		embedFS: embedFS,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
	}
}

// Run アプリケーションを実行
func (app *Application) Run(args []string) error {
	// 1. コマンドライン引数の解析
	config, err := cli.ParseArgs(args)
	if err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}
	app.config = config

	if app.config.ShowHelp {
		cli.PrintHelp(app.stdout)
		return nil
	}

	// 2. ロガーの初期化
	if err := logger.InitLogger(app.config.LogLevel); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.log = logger.GetLogger()
	app.log.Info("Application started", "headless", app.config.Headless, "scale", app.config.Scale)

	// 3. ROMの検出
	if err := app.loadROMs(); err != nil {
		return fmt.Errorf("failed to load ROMs: %w", err)
	}

	// 4. 実行
	if app.config.Headless {
		err = app.runHeadless()
	} else {
		err = app.runWindow()
	}
	if err != nil {
		return err
	}

	app.log.Info("Application terminated normally", "stats", app.handle.Stats())
	return nil
}

// loadROMs は埋め込みROMと、指定されていれば外部ROMを登録する
func (app *Application) loadROMs() error {
	app.romReg = rom.NewRegistry(app.embedFS)
	if app.config.ROMPath != "" {
		if err := app.romReg.LoadExternal(app.config.ROMPath); err != nil {
			return err
		}
	}
	app.log.Info("ROMs found", "count", len(app.romReg.Available()))
	return nil
}

// build はエミュレータの部品を組み立てる
func (app *Application) build(cue driver.Cue, onLoaded func(name string)) {
	app.settings = graphics.NewConfig(app.config.Background, app.config.Foreground, app.config.Scale)
	app.raster = graphics.NewRaster(chip8.DisplayWidth, chip8.DisplayHeight, app.config.Scale)
	app.scheduler = driver.NewFrameScheduler()
	app.cue = cue

	app.handle = vm.NewHandle(chip8.New(),
		vm.WithLogger(app.log),
		vm.WithFaultHandler(app.onFault),
	)
	app.driver = driver.New(app.handle, app.scheduler, app.raster, app.settings, cue,
		driver.WithLogger(app.log),
	)
	app.mapper = input.NewMapper(app.handle, app.scheduler, input.WithLogger(app.log))
	app.loader = loader.New(app.handle, app.driver, app.scheduler, loader.AlertFunc(app.alert),
		loader.WithLogger(app.log),
		loader.WithMaxProgramSize(chip8.MaxProgramSize),
		loader.WithOnLoaded(onLoaded),
	)
}

// onFault はインタプリタのエラーで実行を止めて通知する
func (app *Application) onFault(err error) {
	app.log.Error("Interpreter fault, stopping", "error", err)
	app.driver.Stop()
	app.alert(err)
}

// alert は利用者への通知（GUIでは画面に表示、ヘッドレスではログのみ）
func (app *Application) alert(err error) {
	if app.game != nil {
		app.game.Alert(err)
		return
	}
	app.log.Warn("Alert", "message", err.Error())
}

// runHeadless はウィンドウを開かずに実行する
func (app *Application) runHeadless() error {
	selected, err := window.SelectHeadless(app.romReg.Available(), app.config.Timeout, app.stdin, app.stdout)
	if err != nil {
		return fmt.Errorf("failed to select ROM: %w", err)
	}
	app.logSelected(selected)

	counter := &audio.Counter{}
	app.build(counter, nil)
	if err := app.loader.OpenFS(selected.FS, selected.Path); err != nil {
		return fmt.Errorf("failed to open ROM: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := window.HeadlessOptions{
		Scheduler: app.scheduler,
		Runner:    app.driver,
		Config:    app.settings,
		Raster:    app.raster,
		Frames:    app.config.Frames,
		Timeout:   app.config.Timeout,
		Snapshot:  app.config.Snapshot,
	}
	if app.config.Dump {
		opts.Dump = app.stdout
	}

	result, err := window.RunHeadless(ctx, opts)
	if err != nil {
		return err
	}
	app.log.Info("Headless summary",
		"frames", result.Frames,
		"painted", app.driver.Frames(),
		"beeps", counter.Count(),
		"reason", result.Reason,
	)
	return nil
}

// runWindow はウィンドウを開いて実行する
func (app *Application) runWindow() error {
	roms := app.romReg.Available()
	selected, needsSelection, err := app.romReg.Select()
	if err != nil && !errors.Is(err, rom.ErrNoROMs) {
		return fmt.Errorf("failed to select ROM: %w", err)
	}

	beeper, err := app.newBeeper(selected)
	if err != nil {
		return err
	}
	defer beeper.Close()

	app.build(beeper, func(name string) {
		ebiten.SetWindowTitle(windowTitle + " - " + name)
	})

	mode := window.ModeEmulator
	if needsSelection {
		mode = window.ModeSelection
	}
	app.game = window.NewGame(mode, roms, app.config.Timeout)
	app.game.SetEmulator(&window.Emulator{
		Scheduler: app.scheduler,
		Keys:      app.mapper,
		Files:     app.loader,
		Runner:    app.driver,
		Config:    app.settings,
		Raster:    app.raster,
	})
	app.game.SetHasROMSelection(needsSelection)
	app.game.SetOnROMSelected(func(r *rom.ROM) error {
		app.logSelected(r)
		return app.loader.OpenFS(r.FS, r.Path)
	})
	app.game.SetOnROMExit(func() error {
		app.handle.Reset()
		ebiten.SetWindowTitle(windowTitle)
		return nil
	})
	app.game.SetOnScaleChanged(func(scale int) {
		ebiten.SetWindowSize(window.WindowSize(chip8.DisplayWidth, chip8.DisplayHeight, scale))
	})

	switch {
	case selected != nil:
		app.logSelected(selected)
		if err := app.loader.OpenFS(selected.FS, selected.Path); err != nil {
			return fmt.Errorf("failed to open ROM: %w", err)
		}
	case !needsSelection:
		// ROMがない場合はドロップを待つ
		app.log.Info("No ROM available, drop a file onto the window")
	}

	w, h := window.WindowSize(chip8.DisplayWidth, chip8.DisplayHeight, app.config.Scale)
	if err := window.Run(app.game, w, h, windowTitle); err != nil {
		return fmt.Errorf("failed to run window: %w", err)
	}
	app.driver.Stop()
	return nil
}

// logSelected は選択されたROMとメタデータをログに出す
func (app *Application) logSelected(r *rom.ROM) {
	args := []any{"name", r.Name, "path", r.Path, "embedded", r.IsEmbedded}
	if r.Info != nil {
		args = append(args, "title", r.Info.Title, "author", r.Info.Author, "description", r.Info.Description)
	}
	app.log.Info("ROM selected", args...)
}

// newBeeper はビープ音を読み込んでBeeperを作る
func (app *Application) newBeeper(selected *rom.ROM) (*audio.Beeper, error) {
	loc := findCue(app.embedFS, selected)
	if loc != nil && app.config.BeepPath == "" {
		app.log.Debug("Beep cue found", "path", loc.Path, "embedded", loc.IsEmbedded)
	}
	pcm, err := loadCue(app.config.BeepPath, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to load beep: %w", err)
	}

	beeper := audio.NewBeeper(ebaudio.NewContext(audio.SampleRate), pcm)
	beeper.SetMuted(app.config.Mute)
	return beeper, nil
}
