package graphics

import (
	"image/color"
	"sync"
)

const (
	// DefaultScale is the pixel scale used when none is configured.
	DefaultScale = 20
	// MinScale and MaxScale bound every scale change.
	MinScale = 1
	MaxScale = 40
)

// Palette pairs cycled by the F1/F2 controls.
var (
	backgroundPalette = []color.RGBA{
		{0x00, 0x00, 0x00, 0xFF},
		{0x0F, 0x38, 0x0F, 0xFF},
		{0x1D, 0x1F, 0x21, 0xFF},
		{0x99, 0x66, 0x00, 0xFF},
		{0xFF, 0xFF, 0xFF, 0xFF},
	}
	foregroundPalette = []color.RGBA{
		{0xFF, 0xFF, 0xFF, 0xFF},
		{0x9B, 0xBC, 0x0F, 0xFF},
		{0xFF, 0xB0, 0x00, 0xFF},
		{0xFF, 0xCC, 0x00, 0xFF},
		{0x00, 0x00, 0x00, 0xFF},
	}
)

// Settings is a point-in-time copy of the render configuration.
type Settings struct {
	Background color.RGBA
	Foreground color.RGBA
	Scale      int
}

// Config is the live render configuration. UI controls mutate it at any time
// and the frame driver takes a Snapshot on every painted frame.
type Config struct {
	mu       sync.RWMutex
	settings Settings
}

// NewConfig returns a configuration with the given colours and scale.
// The scale is clamped into [MinScale, MaxScale].
func NewConfig(bg, fg color.RGBA, scale int) *Config {
	return &Config{settings: Settings{
		Background: bg,
		Foreground: fg,
		Scale:      clampScale(scale),
	}}
}

// DefaultConfig は黒地に白、スケール20の設定を返す
func DefaultConfig() *Config {
	return NewConfig(backgroundPalette[0], foregroundPalette[0], DefaultScale)
}

// Snapshot returns the current settings.
func (c *Config) Snapshot() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// SetBackground sets the background colour.
func (c *Config) SetBackground(bg color.RGBA) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.Background = bg
}

// SetForeground sets the foreground colour.
func (c *Config) SetForeground(fg color.RGBA) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.Foreground = fg
}

// SetScale sets the pixel scale, clamped into [MinScale, MaxScale].
func (c *Config) SetScale(scale int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.Scale = clampScale(scale)
}

// StepScale adds delta to the scale and returns the clamped result.
func (c *Config) StepScale(delta int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.Scale = clampScale(c.settings.Scale + delta)
	return c.settings.Scale
}

// NextBackground advances the background to the next palette entry.
func (c *Config) NextBackground() color.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.Background = next(backgroundPalette, c.settings.Background)
	return c.settings.Background
}

// NextForeground advances the foreground to the next palette entry.
func (c *Config) NextForeground() color.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.Foreground = next(foregroundPalette, c.settings.Foreground)
	return c.settings.Foreground
}

// next returns the entry after cur, or the first entry when cur is a custom
// colour outside the palette.
func next(palette []color.RGBA, cur color.RGBA) color.RGBA {
	for i, c := range palette {
		if c == cur {
			return palette[(i+1)%len(palette)]
		}
	}
	return palette[0]
}

func clampScale(scale int) int {
	return max(MinScale, min(MaxScale, scale))
}
