package cli

import (
	"flag"
	"fmt"
	"image/color"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/zurustar/oito/pkg/graphics"
	"github.com/zurustar/oito/pkg/logger"
)

// Config はコマンドライン引数から解析された設定を保持する
type Config struct {
	ROMPath    string        // ROMファイルまたはROMディレクトリのパス
	Background color.RGBA    // 背景色
	Foreground color.RGBA    // 前景色
	Scale      int           // ピクセル倍率
	BeepPath   string        // ビープ音のWAV/MP3ファイル（空なら生成音）
	Mute       bool          // 音を鳴らさない
	Timeout    time.Duration // タイムアウト時間（0は無制限）
	Frames     int           // ヘッドレスモードで実行するフレーム数（0は無制限）
	Dump       bool          // ヘッドレス終了時に画面をテキストで出力する
	Snapshot   string        // ヘッドレス終了時に画面をBMPで保存するパス
	LogLevel   string        // ログレベル（debug, info, warn, error）
	Headless   bool          // ヘッドレスモード
	ShowHelp   bool          // ヘルプ表示フラグ
}

// boolFlags は値を取らないフラグ（reorderArgsで次の引数を消費しない）
var boolFlags = map[string]bool{
	"-h": true, "--help": true, "-help": true,
	"--headless": true, "-headless": true,
	"--mute": true, "-mute": true,
	"--dump": true, "-dump": true,
}

// ParseArgs コマンドライン引数を解析してConfigを返す
func ParseArgs(args []string) (*Config, error) {
	// 引数を並べ替え：フラグを前に、位置引数を後ろに
	reorderedArgs := reorderArgs(args)

	fs := flag.NewFlagSet("oito", flag.ContinueOnError)

	config := &Config{}

	var bg, fg string
	var timeoutSec int
	fs.StringVar(&bg, "bg", "#000000", "背景色")
	fs.StringVar(&bg, "b", "#000000", "背景色（短縮形）")
	fs.StringVar(&fg, "fg", "#FFFFFF", "前景色")
	fs.StringVar(&fg, "f", "#FFFFFF", "前景色（短縮形）")
	fs.IntVar(&config.Scale, "scale", 0, "ピクセル倍率")
	fs.IntVar(&config.Scale, "s", 0, "ピクセル倍率（短縮形）")
	fs.StringVar(&config.BeepPath, "beep", "", "ビープ音ファイル（.wav, .mp3）")
	fs.BoolVar(&config.Mute, "mute", false, "消音")
	fs.IntVar(&timeoutSec, "timeout", 0, "タイムアウト時間（秒）")
	fs.IntVar(&timeoutSec, "t", 0, "タイムアウト時間（秒）（短縮形）")
	fs.IntVar(&config.Frames, "frames", 0, "ヘッドレスモードのフレーム数")
	fs.BoolVar(&config.Dump, "dump", false, "終了時に画面をテキストで出力")
	fs.StringVar(&config.Snapshot, "snapshot", "", "終了時に画面をBMPで保存")
	fs.StringVar(&config.LogLevel, "log-level", "info", "ログレベル（debug, info, warn, error）")
	fs.StringVar(&config.LogLevel, "l", "info", "ログレベル（短縮形）")
	fs.BoolVar(&config.Headless, "headless", false, "ヘッドレスモード")
	fs.BoolVar(&config.ShowHelp, "help", false, "ヘルプを表示")
	fs.BoolVar(&config.ShowHelp, "h", false, "ヘルプを表示（短縮形）")

	if err := fs.Parse(reorderedArgs); err != nil {
		return nil, err
	}

	// 環境変数からの設定（コマンドラインフラグが優先）
	if !config.Headless {
		if headlessEnv := os.Getenv("HEADLESS"); headlessEnv != "" {
			config.Headless = headlessEnv == "1" || strings.ToLower(headlessEnv) == "true"
		}
	}

	if timeoutSec == 0 {
		if timeoutEnv := os.Getenv("TIMEOUT"); timeoutEnv != "" {
			if t, err := strconv.Atoi(timeoutEnv); err == nil && t > 0 {
				timeoutSec = t
			}
		}
	}

	if config.Scale == 0 {
		config.Scale = graphics.DefaultScale
		if scaleEnv := os.Getenv("SCALE"); scaleEnv != "" {
			if s, err := strconv.Atoi(scaleEnv); err == nil {
				config.Scale = s
			}
		}
	}

	if config.LogLevel == "info" {
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			config.LogLevel = strings.ToLower(logLevelEnv)
		}
	}

	if timeoutSec < 0 {
		return nil, fmt.Errorf("timeout must be non-negative, got %d", timeoutSec)
	}
	config.Timeout = time.Duration(timeoutSec) * time.Second

	if config.Frames < 0 {
		return nil, fmt.Errorf("frames must be non-negative, got %d", config.Frames)
	}

	if config.Scale < graphics.MinScale || config.Scale > graphics.MaxScale {
		return nil, fmt.Errorf("scale must be between %d and %d, got %d",
			graphics.MinScale, graphics.MaxScale, config.Scale)
	}

	if _, err := logger.ParseLevel(config.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.LogLevel)
	}

	// 色の不正なチャンネルは0として扱う
	config.Background = graphics.ParseHexColor(bg)
	config.Foreground = graphics.ParseHexColor(fg)

	// 位置引数（ROMのパス）
	if fs.NArg() > 0 {
		config.ROMPath = fs.Arg(0)
	}

	return config, nil
}

// reorderArgs 引数を並べ替えて、フラグを前に、位置引数を後ろに配置する
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// フラグかどうかを判定（-または--で始まる）
		if len(arg) > 0 && arg[0] == '-' {
			flags = append(flags, arg)

			// -t 5 のように次の引数が値の場合は一緒に移動する
			// --bg=#000000 のような形式は1引数で完結
			if strings.Contains(arg, "=") || boolFlags[arg] {
				continue
			}
			if i+1 < len(args) && len(args[i+1]) > 0 && args[i+1][0] != '-' {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, arg)
		}
	}

	return append(flags, positional...)
}

// PrintHelp ヘルプメッセージを表示
func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `oito - CHIP-8 emulator

Usage:
  oito [options] [rom]

Arguments:
  rom    ROMファイル、またはROMを含むディレクトリ（省略可）
         省略した場合は埋め込みROMから選択する
         ウィンドウにファイルをドロップしても読み込める

Options:
  -b, --bg <#RRGGBB>          背景色（デフォルト: #000000）
  -f, --fg <#RRGGBB>          前景色（デフォルト: #FFFFFF）
  -s, --scale <n>             ピクセル倍率 1-40（デフォルト: 20）
  --beep <file>               ビープ音のWAV/MP3ファイル（デフォルト: 440Hzの矩形波）
  --mute                      消音
  -t, --timeout <seconds>     指定秒数後にプログラムを終了（デフォルト: 無制限）
  --frames <n>                ヘッドレスモードでnフレーム実行して終了
  --dump                      ヘッドレス終了時に画面をテキストで出力
  --snapshot <file.bmp>       ヘッドレス終了時に画面をBMPで保存
  -l, --log-level <level>     ログレベル: debug, info, warn, error（デフォルト: info）
  --headless                  ヘッドレスモード（GUIなし）
  -h, --help                  このヘルプを表示

Keys:
  1 2 3 4 / Q W E R / A S D F / Z X C V   CHIP-8キーパッド
  F1 / F2                     背景色 / 前景色を切り替え
  - / =                       倍率を下げる / 上げる
  Esc                         ROM選択に戻る、または終了

Environment Variables:
  HEADLESS=1                  ヘッドレスモードを有効化
  TIMEOUT=<seconds>           タイムアウト時間（秒）
  SCALE=<n>                   ピクセル倍率
  LOG_LEVEL=<level>           ログレベル

Examples:
  oito pong.ch8                       ROMを指定して起動
  oito --bg 0F380F --fg 9BBC0F roms/  ディレクトリからROMを選択
  oito --headless --frames 600 --dump maze.ch8
  HEADLESS=1 oito maze.ch8            環境変数でヘッドレスモード
`)
}
