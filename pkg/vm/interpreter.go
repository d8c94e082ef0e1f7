// Package vm owns the interpreter instance behind the driver.
//
// The interpreter is a black box reached only through the Interpreter
// contract. Handle is the single owner of one instance and is the only
// mutable resource shared by the frame driver, the input mapper and the
// program loader.
package vm

import "image/color"

// Phase is the direction of a key transition.
type Phase int

const (
	// Pressed marks a key-down event. Repeated Pressed events for a held key
	// are forwarded as-is.
	Pressed Phase = iota
	// Released marks a key-up event.
	Released
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case Pressed:
		return "Pressed"
	case Released:
		return "Released"
	default:
		return "Unknown"
	}
}

// KeyEvent is a physical key transition.
// Code is a physical key identifier such as "Digit1" or "KeyQ"; translating
// it to a logical keypad key is the interpreter's job.
type KeyEvent struct {
	Code  string
	Phase Phase
}

// Canvas is the raster an interpreter paints onto.
type Canvas interface {
	FillRect(x, y, w, h int, c color.Color)
}

// Interpreter is the calling contract of the emulated machine.
// Construction is left to the caller (any factory returning an Interpreter).
type Interpreter interface {
	// Tick executes one instruction.
	Tick() error
	// FrameTick decrements the delay and sound timers once.
	FrameTick()
	// Load installs program at the interpreter's program-start address.
	Load(program []byte) error
	// SetKey updates one logical key. Unknown codes and presses without a
	// loaded program must be no-ops.
	SetKey(ev KeyEvent)
	// Draw paints the display buffer onto c at the given pixel scale.
	Draw(c Canvas, scale int, paint color.Color)
	// Sound reports whether the sound timer is non-zero.
	Sound() bool
	// Reset restores the power-on state without reloading a program.
	Reset()
}
