package chip8

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrCpuHalted is returned by Step once a previous step failed. It wraps the original failure.
var ErrCpuHalted = errors.New("the CPU is halted")

type ErrOpCodeUnknown struct {
	OpCode uint16
	Pc     uint16
}

func (err ErrOpCodeUnknown) Error() string {
	return fmt.Sprintf("unknown opcode=0x%04X at PC=0x%03X", err.OpCode, err.Pc)
}

var ErrStackUnderflow = errors.New("stack underflow: try to pop an empty stack")
var ErrStackOverflow = errors.New("stack overflow: try to push to a full stack")

// RandomSource produces the values of the RND instruction.
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	// IntN returns a value in [0, n)
	IntN(n int) int
}

// Chip-8 CPU
type Cpu struct {
	// V 8-bit registers, VF doubles as the flags register
	V [16]byte
	// I 16-bit register (12-bit usable)
	I uint16
	// Program counter
	Pc uint16
	// Stack pointer, a memory address inside [StackBase, StackTop]
	Sp uint16

	memory  *Memory
	image   *Memory
	display *Display
	timer   *Timer
	rng     RandomSource

	cycles    uint
	lastError error
}

type CpuOption func(cpu *Cpu)

// WithRand replaces the random source of the RND instruction
func WithRand(rng RandomSource) CpuOption {
	return func(cpu *Cpu) {
		cpu.rng = rng
	}
}

// NewCpu creates a CPU with the program loaded and ready to run its first instruction
func NewCpu(program []byte, opts ...CpuOption) (*Cpu, error) {
	cpu := &Cpu{
		display: NewDisplay(),
		timer:   NewTimer(),
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}

	for _, opt := range opts {
		opt(cpu)
	}

	if err := cpu.LoadProgram(program); err != nil {
		return nil, err
	}

	return cpu, nil
}

// LoadProgram replaces the program and resets the CPU
func (cpu *Cpu) LoadProgram(program []byte) error {
	image, err := NewMemory(program)
	if err != nil {
		return err
	}

	cpu.image = image
	cpu.Reset()

	return nil
}

// Reset puts the CPU back in the state it had right after the program was loaded
func (cpu *Cpu) Reset() {
	cpu.V = [16]byte{}
	cpu.I = 0
	cpu.Pc = ProgramBase
	cpu.Sp = StackTop

	cpu.memory = cpu.image.Clone()
	cpu.display.Clear()
	cpu.timer.Set(0)

	cpu.cycles = 0
	cpu.lastError = nil
}

func (cpu Cpu) Cycles() uint {
	return cpu.cycles
}

// Err returns the failure that halted the CPU, if any
func (cpu Cpu) Err() error {
	return cpu.lastError
}

func (cpu Cpu) IsHalted() bool {
	return cpu.lastError != nil
}

// Memory returns a copy of the memory
func (cpu Cpu) Memory() Memory {
	return *cpu.memory
}

// Display returns a copy of the display
func (cpu Cpu) Display() Display {
	return *cpu.display
}

// Timer returns the delay timer. Decrementing it is up to the host.
func (cpu *Cpu) Timer() *Timer {
	return cpu.timer
}

// Step runs a single fetch-decode-execute cycle
func (cpu *Cpu) Step() error {
	if cpu.lastError != nil {
		return fmt.Errorf("%w: %w", ErrCpuHalted, cpu.lastError)
	}

	if err := cpu.executeNextInstruction(); err != nil {
		cpu.lastError = err
		return err
	}
	cpu.cycles++

	return nil
}

func (cpu *Cpu) executeNextInstruction() error {
	pc := cpu.Pc
	opCode, err := cpu.memory.ReadWordAt(pc)
	if err != nil {
		return fmt.Errorf("fetching instruction at PC=0x%03X: %w", pc, err)
	}
	cpu.Pc += WordSize

	inst, err := Decode(Opcode(opCode))
	if err != nil {
		return ErrOpCodeUnknown{
			OpCode: opCode,
			Pc:     pc,
		}
	}

	if err := cpu.executeInstruction(inst); err != nil {
		return fmt.Errorf("executing %s at PC=0x%03X: %w", inst, pc, err)
	}

	return nil
}

// PeekInstruction decodes the instruction the next Step will run
func (cpu Cpu) PeekInstruction() (Instruction, error) {
	opCode, err := cpu.memory.ReadWordAt(cpu.Pc)
	if err != nil {
		return Instruction{}, err
	}

	inst, err := Decode(Opcode(opCode))
	if err != nil {
		return inst, ErrOpCodeUnknown{OpCode: opCode, Pc: cpu.Pc}
	}

	return inst, nil
}

func (cpu *Cpu) push(value uint16) error {
	if cpu.Sp < StackBase+WordSize || cpu.Sp > StackTop {
		return ErrStackOverflow
	}

	cpu.Sp -= WordSize
	return cpu.memory.WriteWordAt(value, cpu.Sp)
}

func (cpu *Cpu) pop() (uint16, error) {
	if cpu.Sp < StackBase || cpu.Sp+WordSize > StackTop {
		return 0, ErrStackUnderflow
	}

	value, err := cpu.memory.ReadWordAt(cpu.Sp)
	if err != nil {
		return 0, err
	}
	cpu.Sp += WordSize

	return value, nil
}

// store writes program data. The font and the call stack are off limits.
func (cpu *Cpu) store(src []byte, addr uint16) error {
	if err := cpu.memory.check(addr, len(src)); err != nil {
		return err
	}
	if len(src) > 0 && int(addr)+len(src) > StackBase {
		return ErrReadOnlyAddress{Addr: addr, Len: len(src), Region: "stack"}
	}

	return cpu.memory.WriteBytesAt(src, addr)
}

func (cpu *Cpu) skipIf(predicate bool) {
	if predicate {
		cpu.Pc += WordSize
	}
}

// Stack returns the return addresses on the stack, innermost first
func (cpu Cpu) Stack() []uint16 {
	stack := make([]uint16, 0, StackSize/WordSize)
	for addr := cpu.Sp; addr >= StackBase && addr+WordSize <= StackTop; addr += WordSize {
		v, _ := cpu.memory.ReadWordAt(addr)
		stack = append(stack, v)
	}

	return stack
}

// State is a snapshot of the registers of the CPU
type State struct {
	Opcode uint16   `json:"opcode"`
	Pc     uint16   `json:"pc"`
	I      uint16   `json:"i"`
	Sp     uint16   `json:"sp"`
	V      [16]byte `json:"v"`
	Dt     byte     `json:"dt"`
	Stack  []uint16 `json:"stack"`
	Cycles uint     `json:"cycles"`
	Halted bool     `json:"halted"`
}

func (cpu Cpu) Snapshot() State {
	opCode, _ := cpu.memory.ReadWordAt(cpu.Pc)

	return State{
		Opcode: opCode,
		Pc:     cpu.Pc,
		I:      cpu.I,
		Sp:     cpu.Sp,
		V:      cpu.V,
		Dt:     cpu.timer.Get(),
		Stack:  cpu.Stack(),
		Cycles: cpu.cycles,
		Halted: cpu.IsHalted(),
	}
}

func bool2byte(b bool) byte {
	if b {
		return 1
	}

	return 0
}
