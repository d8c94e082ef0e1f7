package chip8

import (
	"errors"
	"fmt"

	"github.com/zurustar/oito/pkg/opcode"
)

var (
	// ErrProgramTooLarge is returned by Load when the program does not fit
	// between ProgramStart and the end of memory.
	ErrProgramTooLarge = errors.New("program too large")

	// ErrStackOverflow is raised by CALL with a full stack.
	ErrStackOverflow = errors.New("stack overflow")

	// ErrStackUnderflow is raised by RET with an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")

	// ErrUnknownInstruction is raised by a word outside the instruction set.
	ErrUnknownInstruction = errors.New("unknown instruction")

	// ErrAddressOutOfRange is raised by a fetch or memory access past the end
	// of memory.
	ErrAddressOutOfRange = errors.New("address out of range")
)

// Fault is an error raised while executing one instruction.
type Fault struct {
	PC          uint16
	Instruction opcode.Instruction
	Err         error
}

// Error implements the error interface.
func (f *Fault) Error() string {
	return fmt.Sprintf("pc=0x%03X %s: %v", f.PC, f.Instruction, f.Err)
}

// Unwrap returns the underlying sentinel error.
func (f *Fault) Unwrap() error {
	return f.Err
}
