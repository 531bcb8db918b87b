package chip8_test

import (
	"errors"
	"testing"

	"github.com/guslan/chip8"
	"github.com/retroenv/retrogolib/assert"
)

func TestOpcodeFields(t *testing.T) {
	op := chip8.Opcode(0xD3A7)

	assert.Equal(t, [4]byte{0xD, 0x3, 0xA, 0x7}, op.Nibbles())
	assert.Equal(t, byte(0xD), op.Nibble(0))
	assert.Equal(t, byte(0x3), op.Reg1())
	assert.Equal(t, byte(0xA), op.Reg2())
	assert.Equal(t, byte(0xA7), op.Byte())
	assert.Equal(t, uint16(0x3A7), op.Address())
	assert.Equal(t, byte(0x7), op.SizeNibble())
}

func TestDecode(t *testing.T) {
	tests := []struct {
		opcode chip8.Opcode
		op     chip8.Op
		asm    string
	}{
		{0x00E0, chip8.OpCls, "CLS"},
		{0x00EE, chip8.OpRet, "RET"},
		{0x1234, chip8.OpJmp, "JMP 0x234"},
		{0xB234, chip8.OpJmpV0, "JMP V0, 0x234"},
		{0x2ABC, chip8.OpCall, "CALL 0xABC"},
		{0x3A12, chip8.OpSkeByte, "SKE VA, 0x12"},
		{0x4A12, chip8.OpSkneByte, "SKNE VA, 0x12"},
		{0x5AB0, chip8.OpSkeReg, "SKE VA, VB"},
		{0x9AB0, chip8.OpSkneReg, "SKNE VA, VB"},
		{0x6105, chip8.OpMovByte, "MOV V1, 0x05"},
		{0x71FF, chip8.OpAddByte, "ADD V1, 0xFF"},
		{0x8120, chip8.OpMovReg, "MOV V1, V2"},
		{0x8121, chip8.OpOr, "OR V1, V2"},
		{0x8122, chip8.OpAnd, "AND V1, V2"},
		{0x8123, chip8.OpXor, "XOR V1, V2"},
		{0x8124, chip8.OpAddReg, "ADD V1, V2"},
		{0x8125, chip8.OpSub, "SUB V1, V2"},
		{0x8126, chip8.OpShr, "SHR V1"},
		{0x8127, chip8.OpRsub, "RSUB V1, V2"},
		{0x812E, chip8.OpShl, "SHL V1"},
		{0xA123, chip8.OpMovIndex, "MOV I, 0x123"},
		{0xC30F, chip8.OpRnd, "RND V3, 0x0F"},
		{0xD125, chip8.OpDrw, "DRW V1, V2, 5"},
		{0xF407, chip8.OpMovRegDt, "MOV V4, DT"},
		{0xF415, chip8.OpMovDtReg, "MOV DT, V4"},
		{0xF41E, chip8.OpAddIndex, "ADD I, V4"},
		{0xF429, chip8.OpFont, "FONT V4"},
		{0xF433, chip8.OpBcd, "BCD V4"},
		{0xF455, chip8.OpStr, "STR [I], V4"},
		{0xF465, chip8.OpLd, "LD V4, [I]"},
	}

	for _, tt := range tests {
		t.Run(tt.asm, func(t *testing.T) {
			inst, err := chip8.Decode(tt.opcode)
			assert.NoError(t, err)
			assert.Equal(t, tt.op, inst.Op)
			assert.Equal(t, tt.asm, inst.String())
			assert.Equal(t, tt.opcode, inst.Opcode)
		})
	}
}

func TestDecodeOperands(t *testing.T) {
	inst, err := chip8.Decode(0xD12F)
	assert.NoError(t, err)

	assert.Equal(t, byte(1), inst.X)
	assert.Equal(t, byte(2), inst.Y)
	assert.Equal(t, byte(0xF), inst.N)
	assert.Equal(t, byte(0x2F), inst.KK)
	assert.Equal(t, uint16(0x12F), inst.Addr)
}

func TestDecodeUnknown(t *testing.T) {
	for _, opcode := range []chip8.Opcode{0x0000, 0x0123, 0x5AB1, 0x8128, 0x812F, 0x9AB3, 0xE19E, 0xE1A1, 0xF10A, 0xF118, 0xFFFF} {
		inst, err := chip8.Decode(opcode)

		var unknown chip8.ErrOpCodeUnknown
		if !errors.As(err, &unknown) {
			t.Fatalf(`Decode(0x%04X) = %s, expected an unknown opcode`, uint16(opcode), inst)
		}
		assert.Equal(t, uint16(opcode), unknown.OpCode)
		assert.Equal(t, chip8.OpInvalid, inst.Op)
	}
}
