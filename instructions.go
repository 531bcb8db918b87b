package chip8

func (cpu *Cpu) executeInstruction(inst Instruction) error {
	x, y, kk := inst.X, inst.Y, inst.KK

	switch inst.Op {
	case OpCls:
		// CLS :: Clear the display.
		cpu.display.Clear()

	case OpRet:
		// RET :: Return from a subroutine.
		addr, err := cpu.pop()
		if err != nil {
			return err
		}
		cpu.Pc = addr

	case OpJmp:
		// JMP addr :: Jump to location nnn.
		cpu.Pc = inst.Addr

	case OpJmpV0:
		// JMP V0, addr :: Jump to location nnn + V0.
		cpu.Pc = inst.Addr + uint16(cpu.V[0])

	case OpCall:
		// CALL addr :: Call subroutine at nnn.
		if err := cpu.push(cpu.Pc); err != nil {
			return err
		}
		cpu.Pc = inst.Addr

	case OpSkeByte:
		// SKE Vx, byte :: Skip next instruction if Vx = kk.
		cpu.skipIf(cpu.V[x] == kk)

	case OpSkneByte:
		// SKNE Vx, byte :: Skip next instruction if Vx != kk.
		cpu.skipIf(cpu.V[x] != kk)

	case OpSkeReg:
		// SKE Vx, Vy :: Skip next instruction if Vx = Vy.
		cpu.skipIf(cpu.V[x] == cpu.V[y])

	case OpSkneReg:
		// SKNE Vx, Vy :: Skip next instruction if Vx != Vy.
		cpu.skipIf(cpu.V[x] != cpu.V[y])

	case OpMovByte:
		// MOV Vx, byte :: Set Vx = kk.
		cpu.V[x] = kk

	case OpAddByte:
		// ADD Vx, byte :: Set Vx = Vx + kk. VF is untouched.
		cpu.V[x] += kk

	case OpMovReg:
		// MOV Vx, Vy :: Set Vx = Vy.
		cpu.V[x] = cpu.V[y]

	case OpOr:
		// OR Vx, Vy :: Set Vx = Vx OR Vy.
		cpu.V[x] |= cpu.V[y]

	case OpAnd:
		// AND Vx, Vy :: Set Vx = Vx AND Vy.
		cpu.V[x] &= cpu.V[y]

	case OpXor:
		// XOR Vx, Vy :: Set Vx = Vx XOR Vy.
		cpu.V[x] ^= cpu.V[y]

	case OpAddReg:
		// ADD Vx, Vy :: Set Vx = Vx + Vy, set VF = carry.
		r := uint16(cpu.V[x]) + uint16(cpu.V[y])
		cpu.V[x] = byte(r & 0x00FF)
		cpu.V[0xF] = byte(r >> 8)

	case OpSub:
		// SUB Vx, Vy :: Set Vx = Vx - Vy, set VF = NOT borrow.
		carry := cpu.V[x] >= cpu.V[y]
		cpu.V[x] = cpu.V[x] - cpu.V[y]
		cpu.V[0xF] = bool2byte(carry)

	case OpRsub:
		// RSUB Vx, Vy :: Set Vx = Vy - Vx, set VF = NOT borrow.
		carry := cpu.V[y] >= cpu.V[x]
		cpu.V[x] = cpu.V[y] - cpu.V[x]
		cpu.V[0xF] = bool2byte(carry)

	case OpShr:
		// SHR Vx :: Set Vx = Vx SHR 1, VF = the bit shifted out.
		carry := cpu.V[x] & 0b00000001
		cpu.V[x] = cpu.V[x] >> 1
		cpu.V[0xF] = carry

	case OpShl:
		// SHL Vx :: Set Vx = Vx SHL 1, VF = the bit shifted out.
		carry := (cpu.V[x] & 0b10000000) >> 7
		cpu.V[x] = cpu.V[x] << 1
		cpu.V[0xF] = carry

	case OpMovIndex:
		// MOV I, addr :: Set I = nnn.
		cpu.I = inst.Addr

	case OpRnd:
		// RND Vx, byte :: Set Vx = random byte in [0, kk].
		cpu.V[x] = byte(cpu.rng.IntN(int(kk) + 1))

	case OpDrw:
		// DRW Vx, Vy, nibble :: Display n-byte sprite starting at memory location I at (Vx, Vy), set VF = collision.
		sprite := make([]byte, inst.N)
		if err := cpu.memory.ReadBytesAt(sprite, cpu.I); err != nil {
			return err
		}
		cpu.V[0xF] = bool2byte(cpu.display.Draw(sprite, cpu.V[x], cpu.V[y]))

	case OpMovRegDt:
		// MOV Vx, DT :: Set Vx = delay timer value.
		cpu.V[x] = cpu.timer.Get()

	case OpMovDtReg:
		// MOV DT, Vx :: Set delay timer = Vx.
		cpu.timer.Set(cpu.V[x])

	case OpAddIndex:
		// ADD I, Vx :: Set I = I + Vx.
		cpu.I += uint16(cpu.V[x])

	case OpFont:
		// FONT Vx :: Set I = location of sprite for digit Vx.
		cpu.I = FontAddress(cpu.V[x])

	case OpBcd:
		// BCD Vx :: Store BCD representation of Vx in memory locations I, I+1, and I+2.
		v := cpu.V[x]
		return cpu.store([]byte{v / 100, (v / 10) % 10, v % 10}, cpu.I)

	case OpStr:
		// STR [I], Vx :: Store registers V0 through Vx in memory starting at location I.
		return cpu.store(cpu.V[:x+1], cpu.I)

	case OpLd:
		// LD Vx, [I] :: Read registers V0 through Vx from memory starting at location I.
		return cpu.memory.ReadBytesAt(cpu.V[:x+1], cpu.I)

	default:
		return ErrOpCodeUnknown{OpCode: uint16(inst.Opcode)}
	}

	return nil
}
