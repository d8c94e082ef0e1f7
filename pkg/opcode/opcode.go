// Package opcode defines the CHIP-8 instruction set.
// The interpreter decodes every fetched word with Decode, and fault reports
// use Instruction.String to name the failing instruction.
package opcode

import "fmt"

// Cmd represents a decoded instruction type.
type Cmd string

// Instruction types. Operand notation: nnn is a 12-bit address, kk an 8-bit
// immediate, n a 4-bit nibble, x and y register indices.
const (
	// SYS jumps to a machine routine. Ignored by modern interpreters.
	// Word: 0nnn
	SYS Cmd = "SYS"
	// CLS clears the display.
	// Word: 00E0
	CLS Cmd = "CLS"
	// RET returns from a subroutine.
	// Word: 00EE
	RET Cmd = "RET"
	// JP jumps to nnn.
	// Word: 1nnn
	JP Cmd = "JP"
	// CALL calls the subroutine at nnn.
	// Word: 2nnn
	CALL Cmd = "CALL"
	// SEByte skips the next instruction if Vx == kk.
	// Word: 3xkk
	SEByte Cmd = "SE_BYTE"
	// SNEByte skips the next instruction if Vx != kk.
	// Word: 4xkk
	SNEByte Cmd = "SNE_BYTE"
	// SEReg skips the next instruction if Vx == Vy.
	// Word: 5xy0
	SEReg Cmd = "SE_REG"
	// LDByte sets Vx = kk.
	// Word: 6xkk
	LDByte Cmd = "LD_BYTE"
	// ADDByte sets Vx = Vx + kk without carry.
	// Word: 7xkk
	ADDByte Cmd = "ADD_BYTE"
	// LDReg sets Vx = Vy.
	// Word: 8xy0
	LDReg Cmd = "LD_REG"
	// OR sets Vx = Vx | Vy.
	// Word: 8xy1
	OR Cmd = "OR"
	// AND sets Vx = Vx & Vy.
	// Word: 8xy2
	AND Cmd = "AND"
	// XOR sets Vx = Vx ^ Vy.
	// Word: 8xy3
	XOR Cmd = "XOR"
	// ADDReg sets Vx = Vx + Vy, VF = carry.
	// Word: 8xy4
	ADDReg Cmd = "ADD_REG"
	// SUB sets Vx = Vx - Vy, VF = NOT borrow.
	// Word: 8xy5
	SUB Cmd = "SUB"
	// SHR sets Vx = Vx >> 1, VF = shifted-out bit.
	// Word: 8xy6
	SHR Cmd = "SHR"
	// SUBN sets Vx = Vy - Vx, VF = NOT borrow.
	// Word: 8xy7
	SUBN Cmd = "SUBN"
	// SHL sets Vx = Vx << 1, VF = shifted-out bit.
	// Word: 8xyE
	SHL Cmd = "SHL"
	// SNEReg skips the next instruction if Vx != Vy.
	// Word: 9xy0
	SNEReg Cmd = "SNE_REG"
	// LDI sets I = nnn.
	// Word: Annn
	LDI Cmd = "LD_I"
	// JPV0 jumps to nnn + V0.
	// Word: Bnnn
	JPV0 Cmd = "JP_V0"
	// RND sets Vx = random byte & kk.
	// Word: Cxkk
	RND Cmd = "RND"
	// DRW draws an n-byte sprite from memory[I] at (Vx, Vy), VF = collision.
	// Word: Dxyn
	DRW Cmd = "DRW"
	// SKP skips the next instruction if key Vx is pressed.
	// Word: Ex9E
	SKP Cmd = "SKP"
	// SKNP skips the next instruction if key Vx is not pressed.
	// Word: ExA1
	SKNP Cmd = "SKNP"
	// LDVxDT sets Vx = delay timer.
	// Word: Fx07
	LDVxDT Cmd = "LD_VX_DT"
	// LDKey waits for a key press and stores it in Vx.
	// Word: Fx0A
	LDKey Cmd = "LD_KEY"
	// LDDTVx sets delay timer = Vx.
	// Word: Fx15
	LDDTVx Cmd = "LD_DT_VX"
	// LDSTVx sets sound timer = Vx.
	// Word: Fx18
	LDSTVx Cmd = "LD_ST_VX"
	// ADDI sets I = I + Vx.
	// Word: Fx1E
	ADDI Cmd = "ADD_I"
	// LDF sets I to the font sprite for digit Vx.
	// Word: Fx29
	LDF Cmd = "LD_F"
	// LDB stores the BCD of Vx at memory[I..I+2].
	// Word: Fx33
	LDB Cmd = "LD_B"
	// STORE writes V0..Vx to memory starting at I.
	// Word: Fx55
	STORE Cmd = "STORE"
	// LOAD reads V0..Vx from memory starting at I.
	// Word: Fx65
	LOAD Cmd = "LOAD"
	// Unknown is any word outside the instruction set.
	Unknown Cmd = "UNKNOWN"
)

// Instruction is a decoded 16-bit word.
type Instruction struct {
	Cmd  Cmd
	Word uint16
	X    uint8  // second nibble
	Y    uint8  // third nibble
	N    uint8  // fourth nibble
	KK   uint8  // low byte
	NNN  uint16 // low 12 bits
}

// Decode splits word into its operands and identifies the instruction.
func Decode(word uint16) Instruction {
	in := Instruction{
		Word: word,
		X:    uint8(word>>8) & 0xF,
		Y:    uint8(word>>4) & 0xF,
		N:    uint8(word) & 0xF,
		KK:   uint8(word),
		NNN:  word & 0x0FFF,
	}
	in.Cmd = identify(word, in)
	return in
}

func identify(word uint16, in Instruction) Cmd {
	switch word >> 12 {
	case 0x0:
		switch word {
		case 0x00E0:
			return CLS
		case 0x00EE:
			return RET
		}
		return SYS
	case 0x1:
		return JP
	case 0x2:
		return CALL
	case 0x3:
		return SEByte
	case 0x4:
		return SNEByte
	case 0x5:
		if in.N == 0 {
			return SEReg
		}
	case 0x6:
		return LDByte
	case 0x7:
		return ADDByte
	case 0x8:
		switch in.N {
		case 0x0:
			return LDReg
		case 0x1:
			return OR
		case 0x2:
			return AND
		case 0x3:
			return XOR
		case 0x4:
			return ADDReg
		case 0x5:
			return SUB
		case 0x6:
			return SHR
		case 0x7:
			return SUBN
		case 0xE:
			return SHL
		}
	case 0x9:
		if in.N == 0 {
			return SNEReg
		}
	case 0xA:
		return LDI
	case 0xB:
		return JPV0
	case 0xC:
		return RND
	case 0xD:
		return DRW
	case 0xE:
		switch in.KK {
		case 0x9E:
			return SKP
		case 0xA1:
			return SKNP
		}
	case 0xF:
		switch in.KK {
		case 0x07:
			return LDVxDT
		case 0x0A:
			return LDKey
		case 0x15:
			return LDDTVx
		case 0x18:
			return LDSTVx
		case 0x1E:
			return ADDI
		case 0x29:
			return LDF
		case 0x33:
			return LDB
		case 0x55:
			return STORE
		case 0x65:
			return LOAD
		}
	}
	return Unknown
}

// String returns a disassembly-style rendering, e.g. "DRW V1, V2, 5".
func (in Instruction) String() string {
	switch in.Cmd {
	case CLS, RET:
		return string(in.Cmd)
	case SYS, JP, CALL:
		return fmt.Sprintf("%s 0x%03X", in.Cmd, in.NNN)
	case LDI:
		return fmt.Sprintf("LD I, 0x%03X", in.NNN)
	case JPV0:
		return fmt.Sprintf("JP V0, 0x%03X", in.NNN)
	case SEByte, SNEByte, LDByte, ADDByte, RND:
		return fmt.Sprintf("%s V%X, 0x%02X", in.Cmd, in.X, in.KK)
	case SEReg, SNEReg, LDReg, OR, AND, XOR, ADDReg, SUB, SHR, SUBN, SHL:
		return fmt.Sprintf("%s V%X, V%X", in.Cmd, in.X, in.Y)
	case DRW:
		return fmt.Sprintf("DRW V%X, V%X, %d", in.X, in.Y, in.N)
	case Unknown:
		return fmt.Sprintf("UNKNOWN 0x%04X", in.Word)
	default:
		return fmt.Sprintf("%s V%X", in.Cmd, in.X)
	}
}
