package app

import (
	"io/fs"
	"path"

	"github.com/zurustar/oito/pkg/audio"
	"github.com/zurustar/oito/pkg/fileutil"
	"github.com/zurustar/oito/pkg/rom"
)

// CueLocation はビープ音ファイルの場所を表す
type CueLocation struct {
	// Path はファイルのパス（FSがnilの場合はホストのパス）
	Path string
	// FS はファイルを読むFS（外部ファイルの場合はnil）
	FS fs.FS
	// IsEmbedded は埋め込みファイルかどうか
	IsEmbedded bool
}

// EmbeddedSoundsDir は埋め込みFS内のビープ音ディレクトリ
const EmbeddedSoundsDir = "sounds"

// cueNames は探すビープ音のファイル名（優先順）
var cueNames = []string{"beep.wav", "beep.mp3"}

// findCue はビープ音ファイルを以下の優先順位で探す
// 1. 埋め込みsounds/ディレクトリ
// 2. ROMと同じディレクトリ
// 3. カレントディレクトリ（外部）
// 見つからない場合はnilを返す（生成音を使う）
func findCue(embedFS fs.FS, selected *rom.ROM) *CueLocation {
	if embedFS != nil {
		if p, ok := findIn(embedFS, EmbeddedSoundsDir); ok {
			return &CueLocation{Path: p, FS: embedFS, IsEmbedded: true}
		}
	}

	if selected != nil && selected.FS != nil {
		if p, ok := findIn(selected.FS, path.Dir(selected.Path)); ok {
			return &CueLocation{Path: p, FS: selected.FS, IsEmbedded: selected.IsEmbedded}
		}
	}

	for _, name := range cueNames {
		if p, err := fileutil.FindFileCaseInsensitive(".", name); err == nil {
			return &CueLocation{Path: p}
		}
	}
	return nil
}

func findIn(fsys fs.FS, dir string) (string, bool) {
	for _, name := range cueNames {
		if p, err := fileutil.FindFileCaseInsensitiveFS(fsys, dir, name); err == nil {
			return p, true
		}
	}
	return "", false
}

// loadCue はビープ音のPCMを返す
// 明示的なパス、見つかったファイル、生成音の順に使う
func loadCue(explicit string, loc *CueLocation) ([]byte, error) {
	if explicit != "" {
		return audio.LoadCue(explicit)
	}
	if loc == nil {
		return audio.Tone(audio.DefaultToneFrequency, audio.DefaultToneDuration), nil
	}
	if loc.FS != nil {
		return audio.LoadCueFS(loc.FS, loc.Path)
	}
	return audio.LoadCue(loc.Path)
}
