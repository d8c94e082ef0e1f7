package window

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/zurustar/oito/pkg/graphics"
	"github.com/zurustar/oito/pkg/logger"
	"github.com/zurustar/oito/pkg/rom"
)

// FrameInterval は1フレームの長さ（60Hz）
const FrameInterval = time.Second / 60

var (
	// ErrCancelled はユーザーが選択をキャンセルしたときに返される
	ErrCancelled = errors.New("user cancelled")
	// ErrTimeout は選択がタイムアウトしたときに返される
	ErrTimeout = errors.New("timeout")
	// ErrInputClosed は入力が閉じられたときに返される
	ErrInputClosed = errors.New("input closed")
)

// HeadlessOptions はヘッドレス実行の設定
type HeadlessOptions struct {
	Scheduler Pumper
	Runner    Runner
	Config    *graphics.Config
	Raster    *graphics.Raster

	Frames   int           // 実行するフレーム数（0なら無制限）
	Timeout  time.Duration // 実行時間の上限（0なら無制限）
	Interval time.Duration // フレーム間隔（0ならFrameInterval）

	Dump     io.Writer // 終了時に画面をテキストで書き出す先（nilなら出力しない）
	Snapshot string    // 終了時に画面を保存するBMPファイル（空なら保存しない）
}

// HeadlessResult はヘッドレス実行の結果
type HeadlessResult struct {
	Frames   int    // 実行したフレーム数
	Reason   string // 終了理由
	Duration time.Duration
}

// RunHeadless はウィンドウを開かずにフレームを進める
// フレーム数の上限、タイムアウト、ctxのキャンセルのいずれかで終了する
func RunHeadless(ctx context.Context, opts HeadlessOptions) (HeadlessResult, error) {
	log := logger.GetLogger()

	interval := opts.Interval
	if interval <= 0 {
		interval = FrameInterval
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	log.Info("Running in headless mode", "frames", opts.Frames, "timeout", opts.Timeout)

	start := time.Now()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	result := HeadlessResult{}
loop:
	for {
		if opts.Frames > 0 && result.Frames >= opts.Frames {
			result.Reason = "frame limit"
			break
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				result.Reason = "timeout"
			} else {
				result.Reason = "cancelled"
			}
			break loop
		case <-ticker.C:
			opts.Scheduler.Pump()
			result.Frames++
		}
	}
	result.Duration = time.Since(start)

	if opts.Runner != nil {
		opts.Runner.Stop()
	}

	log.Info("Headless run finished", "frames", result.Frames, "reason", result.Reason, "duration", result.Duration)

	if opts.Dump != nil {
		if err := Dump(opts.Dump, opts.Raster, opts.Config.Snapshot(), isTerminal(opts.Dump)); err != nil {
			return result, fmt.Errorf("failed to dump screen: %w", err)
		}
	}
	if opts.Snapshot != "" {
		if err := writeSnapshot(opts.Snapshot, opts.Raster); err != nil {
			return result, err
		}
		log.Info("Snapshot written", "path", opts.Snapshot)
	}

	return result, nil
}

// Dump はラスタを1文字1ピクセルのテキストとして書き出す
// 背景色と異なるセルを点灯とみなす
func Dump(w io.Writer, r *graphics.Raster, s graphics.Settings, blocks bool) error {
	on, off := "#", "."
	if blocks {
		on, off = "█", " "
	}

	scale := max(s.Scale, 1)
	width, height := r.Size()
	cols, rows := width/scale, height/scale

	bw := bufio.NewWriter(w)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			c := r.At(x*scale+scale/2, y*scale+scale/2)
			if c == s.Background {
				bw.WriteString(off)
			} else {
				bw.WriteString(on)
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// isTerminal は出力先が端末ならtrueを返す
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func writeSnapshot(path string, r *graphics.Raster) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot %s: %w", path, err)
	}
	if err := r.WriteBMP(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	return f.Close()
}

// SelectHeadless はヘッドレスモードで標準入力からROMを選択する
// ROMが1つだけの場合は自動選択する
func SelectHeadless(roms []rom.ROM, timeout time.Duration, input io.Reader, output io.Writer) (*rom.ROM, error) {
	if len(roms) == 0 {
		return nil, rom.ErrNoROMs
	}

	if len(roms) == 1 {
		logger.GetLogger().Info("Auto-selecting ROM", "rom", roms[0].Name)
		return &roms[0], nil
	}

	fmt.Fprintln(output, "Available ROMs:")
	for i, r := range roms {
		fmt.Fprintf(output, "  %d. %s\n", i+1, r.DisplayName())
	}
	fmt.Fprintf(output, "Select a ROM (1-%d) or 'q' to quit: ", len(roms))

	// バッファ付きなのでタイムアウト後も読み取りゴルーチンは終了できる
	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(input)
		if scanner.Scan() {
			inputChan <- scanner.Text()
			return
		}
		if err := scanner.Err(); err != nil {
			errChan <- err
			return
		}
		errChan <- ErrInputClosed
	}()

	var timeoutChan <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutChan = timer.C
	}

	select {
	case line := <-inputChan:
		return parseSelection(line, roms)
	case err := <-errChan:
		return nil, fmt.Errorf("failed to read input: %w", err)
	case <-timeoutChan:
		return nil, ErrTimeout
	}
}

// parseSelection は入力された番号をROMに変換する
func parseSelection(line string, roms []rom.ROM) (*rom.ROM, error) {
	line = strings.TrimSpace(line)
	if strings.EqualFold(line, "q") {
		return nil, ErrCancelled
	}

	n, err := strconv.Atoi(line)
	if err != nil {
		return nil, fmt.Errorf("invalid input: %s", line)
	}
	if n < 1 || n > len(roms) {
		return nil, fmt.Errorf("invalid selection: %d (must be 1-%d)", n, len(roms))
	}
	return &roms[n-1], nil
}
