// Package chip8 is a CHIP-8 interpreter implementing vm.Interpreter.
//
// Shift instructions operate on Vx and Fx55/Fx65 leave I unchanged
// (CHIP-48 behaviour); this is what most ROMs in circulation expect.
package chip8

import (
	"image/color"
	"math/rand/v2"

	"github.com/zurustar/oito/pkg/opcode"
	"github.com/zurustar/oito/pkg/vm"
)

const (
	// MemorySize is the size of the address space in bytes.
	MemorySize = 4096
	// ProgramStart is where programs are loaded and execution begins.
	ProgramStart = 0x200
	// MaxProgramSize is the largest program Load accepts.
	MaxProgramSize = MemorySize - ProgramStart
	// FontStart is the address of the built-in digit sprites.
	FontStart = 0x050
	// FontHeight is the height of one digit sprite in bytes.
	FontHeight = 5
	// StackDepth is the number of nested subroutine calls supported.
	StackDepth = 16
	// DisplayWidth is the display width in pixels.
	DisplayWidth = 64
	// DisplayHeight is the display height in pixels.
	DisplayHeight = 32
)

// Compile-time check that Machine satisfies the interpreter contract.
var _ vm.Interpreter = (*Machine)(nil)

// Machine is one CHIP-8 instance.
type Machine struct {
	memory [MemorySize]byte
	v      [16]byte
	i      uint16
	pc     uint16
	stack  [StackDepth]uint16
	sp     int
	dt     byte
	st     byte

	display [DisplayWidth * DisplayHeight]bool
	keys    keypad

	// waitReg is the register Fx0A stores into; waiting halts the pc.
	waiting bool
	waitReg uint8

	loaded bool
	rng    *rand.Rand
}

// Option is a functional option for configuring the Machine.
type Option func(*Machine)

// WithRand sets the random source used by Cxkk.
func WithRand(rng *rand.Rand) Option {
	return func(m *Machine) {
		m.rng = rng
	}
}

// New returns a machine in its power-on state.
func New(opts ...Option) *Machine {
	m := &Machine{}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	m.Reset()
	return m
}

// Reset restores the power-on state. The loaded program is discarded.
func (m *Machine) Reset() {
	m.memory = [MemorySize]byte{}
	copy(m.memory[FontStart:], fontSet[:])
	m.v = [16]byte{}
	m.i = 0
	m.pc = ProgramStart
	m.stack = [StackDepth]uint16{}
	m.sp = 0
	m.dt = 0
	m.st = 0
	m.display = [DisplayWidth * DisplayHeight]bool{}
	m.keys = keypad{}
	m.waiting = false
	m.waitReg = 0
	m.loaded = false
}

// Load copies program to ProgramStart.
func (m *Machine) Load(program []byte) error {
	if len(program) > MaxProgramSize {
		return ErrProgramTooLarge
	}
	copy(m.memory[ProgramStart:], program)
	m.loaded = true
	return nil
}

// Tick fetches, decodes and executes one instruction. Without a program, or
// while blocked on Fx0A, it does nothing.
func (m *Machine) Tick() error {
	if !m.loaded || m.waiting {
		return nil
	}
	pc := m.pc
	if int(pc)+1 >= MemorySize {
		return &Fault{PC: pc, Err: ErrAddressOutOfRange}
	}
	word := uint16(m.memory[pc])<<8 | uint16(m.memory[pc+1])
	m.pc += 2

	in := opcode.Decode(word)
	if err := m.execute(in); err != nil {
		return &Fault{PC: pc, Instruction: in, Err: err}
	}
	return nil
}

// FrameTick decrements both timers once.
func (m *Machine) FrameTick() {
	if m.dt > 0 {
		m.dt--
	}
	if m.st > 0 {
		m.st--
	}
}

// SetKey updates the keypad. Codes outside the keypad layout, and any event
// before a program is loaded, are ignored.
func (m *Machine) SetKey(ev vm.KeyEvent) {
	key, ok := KeyForCode(ev.Code)
	if !ok || !m.loaded {
		return
	}
	switch ev.Phase {
	case vm.Pressed:
		m.keys[key] = true
		if m.waiting {
			m.v[m.waitReg] = key
			m.waiting = false
		}
	case vm.Released:
		m.keys[key] = false
	}
}

// Pressed reports the state of one logical key.
func (m *Machine) Pressed(key uint8) bool {
	return int(key) < KeyCount && m.keys[key]
}

// Draw fills a scale x scale rectangle on c for every lit pixel.
func (m *Machine) Draw(c vm.Canvas, scale int, paint color.Color) {
	if scale < 1 {
		scale = 1
	}
	for idx, lit := range m.display {
		if !lit {
			continue
		}
		x := (idx % DisplayWidth) * scale
		y := (idx / DisplayWidth) * scale
		c.FillRect(x, y, scale, scale, paint)
	}
}

// Sound reports whether the sound timer is running.
func (m *Machine) Sound() bool {
	return m.st > 0
}

// Pixel reports whether the display pixel at (x, y) is lit.
func (m *Machine) Pixel(x, y int) bool {
	if x < 0 || x >= DisplayWidth || y < 0 || y >= DisplayHeight {
		return false
	}
	return m.display[y*DisplayWidth+x]
}

// PC returns the program counter.
func (m *Machine) PC() uint16 {
	return m.pc
}
