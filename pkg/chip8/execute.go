package chip8

import "github.com/zurustar/oito/pkg/opcode"

// execute runs one decoded instruction. The pc already points past it.
func (m *Machine) execute(in opcode.Instruction) error {
	x, y := in.X, in.Y

	switch in.Cmd {
	case opcode.CLS:
		m.display = [DisplayWidth * DisplayHeight]bool{}
	case opcode.RET:
		if m.sp == 0 {
			return ErrStackUnderflow
		}
		m.sp--
		m.pc = m.stack[m.sp]
	case opcode.SYS:
		// machine routines are not emulated
	case opcode.JP:
		m.pc = in.NNN
	case opcode.CALL:
		if m.sp == StackDepth {
			return ErrStackOverflow
		}
		m.stack[m.sp] = m.pc
		m.sp++
		m.pc = in.NNN
	case opcode.SEByte:
		m.skipIf(m.v[x] == in.KK)
	case opcode.SNEByte:
		m.skipIf(m.v[x] != in.KK)
	case opcode.SEReg:
		m.skipIf(m.v[x] == m.v[y])
	case opcode.LDByte:
		m.v[x] = in.KK
	case opcode.ADDByte:
		m.v[x] += in.KK
	case opcode.LDReg:
		m.v[x] = m.v[y]
	case opcode.OR:
		m.v[x] |= m.v[y]
	case opcode.AND:
		m.v[x] &= m.v[y]
	case opcode.XOR:
		m.v[x] ^= m.v[y]
	case opcode.ADDReg:
		sum := uint16(m.v[x]) + uint16(m.v[y])
		m.v[x] = byte(sum)
		m.v[0xF] = flag(sum > 0xFF)
	case opcode.SUB:
		noBorrow := m.v[x] >= m.v[y]
		m.v[x] -= m.v[y]
		m.v[0xF] = flag(noBorrow)
	case opcode.SHR:
		bit := m.v[x] & 0x1
		m.v[x] >>= 1
		m.v[0xF] = bit
	case opcode.SUBN:
		noBorrow := m.v[y] >= m.v[x]
		m.v[x] = m.v[y] - m.v[x]
		m.v[0xF] = flag(noBorrow)
	case opcode.SHL:
		bit := m.v[x] >> 7
		m.v[x] <<= 1
		m.v[0xF] = bit
	case opcode.SNEReg:
		m.skipIf(m.v[x] != m.v[y])
	case opcode.LDI:
		m.i = in.NNN
	case opcode.JPV0:
		m.pc = (in.NNN + uint16(m.v[0])) & 0xFFF
	case opcode.RND:
		m.v[x] = byte(m.rng.UintN(256)) & in.KK
	case opcode.DRW:
		return m.draw(m.v[x], m.v[y], in.N)
	case opcode.SKP:
		m.skipIf(m.Pressed(m.v[x] & 0xF))
	case opcode.SKNP:
		m.skipIf(!m.Pressed(m.v[x] & 0xF))
	case opcode.LDVxDT:
		m.v[x] = m.dt
	case opcode.LDKey:
		m.waiting = true
		m.waitReg = x
	case opcode.LDDTVx:
		m.dt = m.v[x]
	case opcode.LDSTVx:
		m.st = m.v[x]
	case opcode.ADDI:
		m.i = (m.i + uint16(m.v[x])) & 0xFFF
	case opcode.LDF:
		m.i = FontStart + uint16(m.v[x]&0xF)*FontHeight
	case opcode.LDB:
		if int(m.i)+2 >= MemorySize {
			return ErrAddressOutOfRange
		}
		m.memory[m.i] = m.v[x] / 100
		m.memory[m.i+1] = m.v[x] / 10 % 10
		m.memory[m.i+2] = m.v[x] % 10
	case opcode.STORE:
		if int(m.i)+int(x) >= MemorySize {
			return ErrAddressOutOfRange
		}
		copy(m.memory[m.i:], m.v[:x+1])
	case opcode.LOAD:
		if int(m.i)+int(x) >= MemorySize {
			return ErrAddressOutOfRange
		}
		copy(m.v[:x+1], m.memory[m.i:])
	default:
		return ErrUnknownInstruction
	}
	return nil
}

// draw XORs an n-row sprite from memory[I] onto the display. The start
// position wraps; the sprite itself is clipped at the edges.
func (m *Machine) draw(vx, vy byte, n uint8) error {
	if int(m.i)+int(n) > MemorySize {
		return ErrAddressOutOfRange
	}
	x0 := int(vx) % DisplayWidth
	y0 := int(vy) % DisplayHeight
	m.v[0xF] = 0

	for row := 0; row < int(n); row++ {
		y := y0 + row
		if y >= DisplayHeight {
			break
		}
		bits := m.memory[int(m.i)+row]
		for col := 0; col < 8; col++ {
			x := x0 + col
			if x >= DisplayWidth {
				break
			}
			if bits&(0x80>>col) == 0 {
				continue
			}
			idx := y*DisplayWidth + x
			if m.display[idx] {
				m.v[0xF] = 1
			}
			m.display[idx] = !m.display[idx]
		}
	}
	return nil
}

func (m *Machine) skipIf(cond bool) {
	if cond {
		m.pc += 2
	}
}

func flag(b bool) byte {
	if b {
		return 1
	}
	return 0
}
