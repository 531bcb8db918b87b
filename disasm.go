package chip8

import (
	"fmt"
)

// Line is a disassembled instruction
type Line struct {
	Addr   uint16
	Opcode uint16
	// Inst is only meaningful when Known is true
	Inst  Instruction
	Known bool
}

func (l Line) String() string {
	if !l.Known {
		return fmt.Sprintf("%03X  %04X  DW 0x%04X", l.Addr, l.Opcode, l.Opcode)
	}

	return fmt.Sprintf("%03X  %04X  %s", l.Addr, l.Opcode, l.Inst)
}

// Disassemble decodes every word of the program as if it was loaded at base.
// A trailing odd byte is decoded as the high byte of a word with a zero low byte.
func Disassemble(program []byte, base uint16) []Line {
	lines := make([]Line, 0, (len(program)+1)/WordSize)

	for i := 0; i < len(program); i += WordSize {
		word := uint16(program[i]) << 8
		if i+1 < len(program) {
			word |= uint16(program[i+1])
		}

		inst, err := Decode(Opcode(word))
		lines = append(lines, Line{
			Addr:   base + uint16(i),
			Opcode: word,
			Inst:   inst,
			Known:  err == nil,
		})
	}

	return lines
}
