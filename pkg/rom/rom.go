// Package rom はROMの検出と選択を行う
//
// ROMはバイナリに埋め込まれたroms/ディレクトリ、またはコマンドラインで
// 指定された外部のファイル・ディレクトリから読み込む。
package rom

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/zurustar/oito/pkg/fileutil"
)

// EmbeddedDir は埋め込みFS内のROMディレクトリ
const EmbeddedDir = "roms"

// Extensions はROMとして扱う拡張子
var Extensions = []string{".ch8", ".c8"}

// ErrNoROMs is returned by Select when nothing can be played.
var ErrNoROMs = errors.New("no ROMs available")

// Info はROMと同名の.jsonファイルに書かれた任意のメタデータ
type Info struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
}

// ROM は再生可能なプログラム1本を表す
type ROM struct {
	Name       string // ファイル名
	Path       string // FS内のパス
	FS         fs.FS  // ROMを開くためのFS
	IsEmbedded bool   // 埋め込みROMかどうか
	Size       int64
	Info       *Info // メタデータ（なければnil）
}

// DisplayName はメタデータのタイトル、なければファイル名から作った名前を返す
// "space_invaders.ch8" は "Space Invaders" になる
func (r *ROM) DisplayName() string {
	if r.Info != nil && r.Info.Title != "" {
		return r.Info.Title
	}
	return displayName(r.Name)
}

var titleCaser = cases.Title(language.English)

func displayName(file string) string {
	stem := strings.TrimSuffix(file, path.Ext(file))
	stem = strings.NewReplacer("_", " ", "-", " ").Replace(stem)
	return titleCaser.String(strings.Join(strings.Fields(stem), " "))
}

// Registry はROMの一覧を管理する
type Registry struct {
	embedded []ROM
	external []ROM
}

// NewRegistry は埋め込みFSのroms/からROMを検出する
// fsysがnil、またはroms/がない場合は埋め込みROMなしになる
func NewRegistry(fsys fs.FS) *Registry {
	r := &Registry{}
	if fsys != nil {
		r.embedded = scan(fsys, EmbeddedDir, true)
	}
	return r
}

// LoadExternal は外部のROMファイル、またはROMを含むディレクトリを登録する
// ファイル名の大文字小文字は区別しない
func (r *Registry) LoadExternal(p string) error {
	resolved, err := fileutil.ResolvePath(p)
	if err != nil {
		return fmt.Errorf("ROM does not exist: %s: %w", p, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return fmt.Errorf("failed to access ROM: %w", err)
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	if info.IsDir() {
		roms := scan(os.DirFS(abs), ".", false)
		if len(roms) == 0 {
			return fmt.Errorf("%w in %s", ErrNoROMs, abs)
		}
		r.external = roms
		return nil
	}

	dirFS := os.DirFS(filepath.Dir(abs))
	name := filepath.Base(abs)
	r.external = []ROM{{
		Name: name,
		Path: name,
		FS:   dirFS,
		Size: info.Size(),
		Info: readInfo(dirFS, name),
	}}
	return nil
}

// Available は利用可能なROM一覧を返す
// 外部ROMが指定されている場合はそれのみを返す
func (r *Registry) Available() []ROM {
	if len(r.external) > 0 {
		return append([]ROM(nil), r.external...)
	}
	return append([]ROM(nil), r.embedded...)
}

// Select はROMを選択する（単一の場合は自動選択）
// 戻り値: (選択されたROM, 選択画面が必要か, エラー)
func (r *Registry) Select() (*ROM, bool, error) {
	roms := r.Available()
	switch len(roms) {
	case 0:
		return nil, false, ErrNoROMs
	case 1:
		return &roms[0], false, nil
	default:
		return nil, true, nil
	}
}

// scan はdir直下のROMファイルを名前順に列挙する
func scan(fsys fs.FS, dir string, embedded bool) []ROM {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil
	}

	var roms []ROM
	for _, entry := range entries {
		if entry.IsDir() || !fileutil.HasExtension(entry.Name(), Extensions...) {
			continue
		}
		p := path.Join(dir, entry.Name())
		var size int64
		if info, err := entry.Info(); err == nil {
			size = info.Size()
		}
		roms = append(roms, ROM{
			Name:       entry.Name(),
			Path:       p,
			FS:         fsys,
			IsEmbedded: embedded,
			Size:       size,
			Info:       readInfo(fsys, p),
		})
	}
	sort.Slice(roms, func(i, j int) bool {
		return strings.ToLower(roms[i].Name) < strings.ToLower(roms[j].Name)
	})
	return roms
}

// readInfo はROMと同名の.jsonを読む（存在しない、壊れている場合はnil）
func readInfo(fsys fs.FS, romPath string) *Info {
	infoPath := strings.TrimSuffix(romPath, path.Ext(romPath)) + ".json"
	data, err := fs.ReadFile(fsys, infoPath)
	if err != nil {
		return nil
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil
	}
	return &info
}
