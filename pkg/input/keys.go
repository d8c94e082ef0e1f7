package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Key repeat cadence in frames, approximating a desktop keyboard's
// auto-repeat at 60 Hz.
const (
	RepeatDelay    = 30
	RepeatInterval = 6
)

// physicalKeys maps ebiten keys onto the physical identifiers the
// interpreter understands, in polling order.
var physicalKeys = []struct {
	key  ebiten.Key
	code string
}{
	{ebiten.KeyDigit0, "Digit0"}, {ebiten.KeyDigit1, "Digit1"}, {ebiten.KeyDigit2, "Digit2"},
	{ebiten.KeyDigit3, "Digit3"}, {ebiten.KeyDigit4, "Digit4"}, {ebiten.KeyDigit5, "Digit5"},
	{ebiten.KeyDigit6, "Digit6"}, {ebiten.KeyDigit7, "Digit7"}, {ebiten.KeyDigit8, "Digit8"},
	{ebiten.KeyDigit9, "Digit9"},
	{ebiten.KeyA, "KeyA"}, {ebiten.KeyB, "KeyB"}, {ebiten.KeyC, "KeyC"}, {ebiten.KeyD, "KeyD"},
	{ebiten.KeyE, "KeyE"}, {ebiten.KeyF, "KeyF"}, {ebiten.KeyG, "KeyG"}, {ebiten.KeyH, "KeyH"},
	{ebiten.KeyI, "KeyI"}, {ebiten.KeyJ, "KeyJ"}, {ebiten.KeyK, "KeyK"}, {ebiten.KeyL, "KeyL"},
	{ebiten.KeyM, "KeyM"}, {ebiten.KeyN, "KeyN"}, {ebiten.KeyO, "KeyO"}, {ebiten.KeyP, "KeyP"},
	{ebiten.KeyQ, "KeyQ"}, {ebiten.KeyR, "KeyR"}, {ebiten.KeyS, "KeyS"}, {ebiten.KeyT, "KeyT"},
	{ebiten.KeyU, "KeyU"}, {ebiten.KeyV, "KeyV"}, {ebiten.KeyW, "KeyW"}, {ebiten.KeyX, "KeyX"},
	{ebiten.KeyY, "KeyY"}, {ebiten.KeyZ, "KeyZ"},
	{ebiten.KeySpace, "Space"},
}

// PhysicalCode returns the physical identifier of an ebiten key.
func PhysicalCode(k ebiten.Key) (string, bool) {
	for _, pk := range physicalKeys {
		if pk.key == k {
			return pk.code, true
		}
	}
	return "", false
}

// IsRepeat reports whether a key held for duration frames should produce a
// Pressed event on this frame: the first frame, then every RepeatInterval
// frames once RepeatDelay has passed.
func IsRepeat(duration int) bool {
	if duration == 1 {
		return true
	}
	return duration >= RepeatDelay && (duration-RepeatDelay)%RepeatInterval == 0
}

// KeyState is the per-frame keyboard state. EbitenKeys reads it from ebiten.
type KeyState interface {
	PressDuration(k ebiten.Key) int
	JustReleased(k ebiten.Key) bool
}

// EbitenKeys is the live ebiten keyboard.
type EbitenKeys struct{}

// PressDuration implements KeyState.
func (EbitenKeys) PressDuration(k ebiten.Key) int {
	return inpututil.KeyPressDuration(k)
}

// JustReleased implements KeyState.
func (EbitenKeys) JustReleased(k ebiten.Key) bool {
	return inpututil.IsKeyJustReleased(k)
}

// Poll translates one frame of keyboard state into mapper events.
func (m *Mapper) Poll(ks KeyState) {
	for _, pk := range physicalKeys {
		if IsRepeat(ks.PressDuration(pk.key)) {
			m.OnKeyDown(pk.code)
		}
		if ks.JustReleased(pk.key) {
			m.OnKeyUp(pk.code)
		}
	}
}
