package chip8

import (
	"fmt"
)

// Opcode is a raw 16-bit instruction word
type Opcode uint16

// Nibble returns the i-th 4-bit field, most significant first
func (op Opcode) Nibble(i int) byte {
	return byte(op>>(12-4*uint(i&0x3))) & 0x0F
}

func (op Opcode) Nibbles() [4]byte {
	return [4]byte{op.Nibble(0), op.Nibble(1), op.Nibble(2), op.Nibble(3)}
}

// Reg1 is the x register operand
func (op Opcode) Reg1() byte {
	return op.Nibble(1)
}

// Reg2 is the y register operand
func (op Opcode) Reg2() byte {
	return op.Nibble(2)
}

func (op Opcode) Byte() byte {
	return byte(op & 0x00FF)
}

// Address is the low 12 bits of the opcode
func (op Opcode) Address() uint16 {
	return uint16(op & 0x0FFF)
}

func (op Opcode) SizeNibble() byte {
	return op.Nibble(3)
}

// Op is an operation of the instruction set
type Op byte

const (
	OpInvalid Op = iota
	OpCls
	OpRet
	OpJmp
	OpJmpV0
	OpCall
	OpSkeByte
	OpSkneByte
	OpSkeReg
	OpSkneReg
	OpMovByte
	OpAddByte
	OpMovReg
	OpOr
	OpAnd
	OpXor
	OpAddReg
	OpSub
	OpShr
	OpRsub
	OpShl
	OpMovIndex
	OpRnd
	OpDrw
	OpMovRegDt
	OpMovDtReg
	OpAddIndex
	OpFont
	OpBcd
	OpStr
	OpLd
)

var opNames = [...]string{
	OpInvalid:  "???",
	OpCls:      "CLS",
	OpRet:      "RET",
	OpJmp:      "JMP",
	OpJmpV0:    "JMP",
	OpCall:     "CALL",
	OpSkeByte:  "SKE",
	OpSkneByte: "SKNE",
	OpSkeReg:   "SKE",
	OpSkneReg:  "SKNE",
	OpMovByte:  "MOV",
	OpAddByte:  "ADD",
	OpMovReg:   "MOV",
	OpOr:       "OR",
	OpAnd:      "AND",
	OpXor:      "XOR",
	OpAddReg:   "ADD",
	OpSub:      "SUB",
	OpShr:      "SHR",
	OpRsub:     "RSUB",
	OpShl:      "SHL",
	OpMovIndex: "MOV",
	OpRnd:      "RND",
	OpDrw:      "DRW",
	OpMovRegDt: "MOV",
	OpMovDtReg: "MOV",
	OpAddIndex: "ADD",
	OpFont:     "FONT",
	OpBcd:      "BCD",
	OpStr:      "STR",
	OpLd:       "LD",
}

func (op Op) String() string {
	if int(op) >= len(opNames) {
		return opNames[OpInvalid]
	}

	return opNames[op]
}

// pattern matches the nibbles of an opcode, '_' is a wildcard nibble
type pattern struct {
	mask, value Opcode
	op          Op
}

func compilePattern(p string, op Op) pattern {
	if len(p) != 4 {
		panic(fmt.Sprintf("pattern %q must have 4 nibbles", p))
	}

	var mask, value Opcode
	for _, c := range []byte(p) {
		mask <<= 4
		value <<= 4

		switch {
		case c == '_':
		case c >= '0' && c <= '9':
			mask |= 0xF
			value |= Opcode(c - '0')
		case c >= 'A' && c <= 'F':
			mask |= 0xF
			value |= Opcode(c - 'A' + 10)
		default:
			panic(fmt.Sprintf("pattern %q has an invalid nibble %q", p, c))
		}
	}

	return pattern{mask: mask, value: value, op: op}
}

// instructionSet is the authoritative definition of the decodable instructions
var instructionSet = []pattern{
	compilePattern("00E0", OpCls),
	compilePattern("00EE", OpRet),
	compilePattern("1___", OpJmp),
	compilePattern("2___", OpCall),
	compilePattern("3___", OpSkeByte),
	compilePattern("4___", OpSkneByte),
	compilePattern("5__0", OpSkeReg),
	compilePattern("6___", OpMovByte),
	compilePattern("7___", OpAddByte),
	compilePattern("8__0", OpMovReg),
	compilePattern("8__1", OpOr),
	compilePattern("8__2", OpAnd),
	compilePattern("8__3", OpXor),
	compilePattern("8__4", OpAddReg),
	compilePattern("8__5", OpSub),
	compilePattern("8__6", OpShr),
	compilePattern("8__7", OpRsub),
	compilePattern("8__E", OpShl),
	compilePattern("9__0", OpSkneReg),
	compilePattern("A___", OpMovIndex),
	compilePattern("B___", OpJmpV0),
	compilePattern("C___", OpRnd),
	compilePattern("D___", OpDrw),
	compilePattern("F_07", OpMovRegDt),
	compilePattern("F_15", OpMovDtReg),
	compilePattern("F_1E", OpAddIndex),
	compilePattern("F_29", OpFont),
	compilePattern("F_33", OpBcd),
	compilePattern("F_55", OpStr),
	compilePattern("F_65", OpLd),
}

// Instruction is a decoded opcode
type Instruction struct {
	Op     Op
	Opcode Opcode

	X, Y byte
	KK   byte
	Addr uint16
	N    byte
}

// Decode matches the opcode against the instruction set.
// The returned ErrOpCodeUnknown has no Pc, the caller knows where the word came from.
func Decode(opCode Opcode) (Instruction, error) {
	for _, p := range instructionSet {
		if opCode&p.mask == p.value {
			return Instruction{
				Op:     p.op,
				Opcode: opCode,
				X:      opCode.Reg1(),
				Y:      opCode.Reg2(),
				KK:     opCode.Byte(),
				Addr:   opCode.Address(),
				N:      opCode.SizeNibble(),
			}, nil
		}
	}

	return Instruction{Op: OpInvalid, Opcode: opCode}, ErrOpCodeUnknown{OpCode: uint16(opCode)}
}

// String renders the instruction as assembly
func (inst Instruction) String() string {
	name := inst.Op.String()

	switch inst.Op {
	case OpCls, OpRet:
		return name
	case OpJmp, OpCall:
		return fmt.Sprintf("%s 0x%03X", name, inst.Addr)
	case OpJmpV0:
		return fmt.Sprintf("%s V0, 0x%03X", name, inst.Addr)
	case OpSkeByte, OpSkneByte, OpMovByte, OpAddByte, OpRnd:
		return fmt.Sprintf("%s V%X, 0x%02X", name, inst.X, inst.KK)
	case OpSkeReg, OpSkneReg, OpMovReg, OpOr, OpAnd, OpXor, OpAddReg, OpSub, OpRsub:
		return fmt.Sprintf("%s V%X, V%X", name, inst.X, inst.Y)
	case OpShr, OpShl, OpFont, OpBcd:
		return fmt.Sprintf("%s V%X", name, inst.X)
	case OpMovIndex:
		return fmt.Sprintf("%s I, 0x%03X", name, inst.Addr)
	case OpDrw:
		return fmt.Sprintf("%s V%X, V%X, %d", name, inst.X, inst.Y, inst.N)
	case OpMovRegDt:
		return fmt.Sprintf("%s V%X, DT", name, inst.X)
	case OpMovDtReg:
		return fmt.Sprintf("%s DT, V%X", name, inst.X)
	case OpAddIndex:
		return fmt.Sprintf("%s I, V%X", name, inst.X)
	case OpStr:
		return fmt.Sprintf("%s [I], V%X", name, inst.X)
	case OpLd:
		return fmt.Sprintf("%s V%X, [I]", name, inst.X)
	}

	return fmt.Sprintf("DW 0x%04X", uint16(inst.Opcode))
}
