package chip8

import (
	"errors"
	"fmt"
)

var ErrProgramDoesNotFitIntoMemory = errors.New("the program does not fit into memory")

// ErrAddressOutOfBounds is returned by any access that falls outside the memory
type ErrAddressOutOfBounds struct {
	Addr uint16
	Len  int
}

func (err ErrAddressOutOfBounds) Error() string {
	return fmt.Sprintf("address out of bounds: %d byte(s) at 0x%03X", err.Len, err.Addr)
}

// ErrReadOnlyAddress is returned by writes that overlap a region programs cannot write to
type ErrReadOnlyAddress struct {
	Addr   uint16
	Len    int
	Region string
}

func (err ErrReadOnlyAddress) Error() string {
	return fmt.Sprintf("write to read-only %s: %d byte(s) at 0x%03X", err.Region, err.Len, err.Addr)
}

const (
	MemorySize = 4096

	// ProgramBase is where programs are loaded and where execution starts
	ProgramBase = 0x200

	// The call stack lives at the top of the memory and grows downward
	StackSize = 32
	StackBase = MemorySize - StackSize
	StackTop  = MemorySize

	WordSize = 2

	GlyphSize = 5
	FontSize  = 16 * GlyphSize
)

var font = [FontSize]byte{
	// 0
	0xF0, 0x90, 0x90, 0x90, 0xF0,
	// 1
	0x20, 0x60, 0x20, 0x20, 0x70,
	// 2
	0xF0, 0x10, 0xF0, 0x80, 0xF0,
	// 3
	0xF0, 0x10, 0xF0, 0x10, 0xF0,
	// 4
	0x90, 0x90, 0xF0, 0x10, 0x10,
	// 5
	0xF0, 0x80, 0xF0, 0x10, 0xF0,
	// 6
	0xF0, 0x80, 0xF0, 0x90, 0xF0,
	// 7
	0xF0, 0x10, 0x20, 0x40, 0x40,
	// 8
	0xF0, 0x90, 0xF0, 0x90, 0xF0,
	// 9
	0xF0, 0x90, 0xF0, 0x10, 0xF0,
	// A
	0xF0, 0x90, 0xF0, 0x90, 0x90,
	// B
	0xE0, 0x90, 0xE0, 0x90, 0xE0,
	// C
	0xF0, 0x80, 0x80, 0x80, 0xF0,
	// D
	0xE0, 0x90, 0x90, 0x90, 0xE0,
	// E
	0xF0, 0x80, 0xF0, 0x80, 0xF0,
	// F
	0xF0, 0x80, 0xF0, 0x80, 0x80,
}

// FontAddress returns the address of the glyph for the hex digit d
func FontAddress(d byte) uint16 {
	return uint16(d&0x0F) * GlyphSize
}

type Memory [MemorySize]byte

// NewMemory creates a memory with the font and the program loaded at the appropriate location
func NewMemory(program []byte) (*Memory, error) {
	if len(program) > MemorySize-ProgramBase {
		return nil, ErrProgramDoesNotFitIntoMemory
	}

	m := Memory{}
	copy(m[:], font[:])
	copy(m[ProgramBase:], program)

	return &m, nil
}

func (mem Memory) Clone() *Memory {
	m := mem

	return &m
}

func (mem Memory) IsEqual(other Memory) bool {
	return mem == other
}

func (mem *Memory) check(addr uint16, n int) error {
	if int(addr)+n > MemorySize {
		return ErrAddressOutOfBounds{Addr: addr, Len: n}
	}

	return nil
}

// checkWrite rejects writes out of bounds or overlapping the font
func (mem *Memory) checkWrite(addr uint16, n int) error {
	if err := mem.check(addr, n); err != nil {
		return err
	}
	if n > 0 && int(addr) < FontSize {
		return ErrReadOnlyAddress{Addr: addr, Len: n, Region: "font"}
	}

	return nil
}

// ReadWordAt reads the big-endian word at addr, addr+1
func (mem *Memory) ReadWordAt(addr uint16) (uint16, error) {
	if err := mem.check(addr, WordSize); err != nil {
		return 0, err
	}

	return uint16(mem[addr])<<8 | uint16(mem[addr+1]), nil
}

// WriteWordAt writes value big-endian at addr, addr+1
func (mem *Memory) WriteWordAt(value uint16, addr uint16) error {
	if err := mem.checkWrite(addr, WordSize); err != nil {
		return err
	}

	mem[addr+0] = byte(value >> 8)
	mem[addr+1] = byte(value)

	return nil
}

// ReadBytesAt fills dst with the bytes starting at addr
func (mem *Memory) ReadBytesAt(dst []byte, addr uint16) error {
	if err := mem.check(addr, len(dst)); err != nil {
		return err
	}

	copy(dst, mem[addr:])

	return nil
}

// WriteBytesAt copies src into the memory starting at addr
func (mem *Memory) WriteBytesAt(src []byte, addr uint16) error {
	if err := mem.checkWrite(addr, len(src)); err != nil {
		return err
	}

	copy(mem[addr:], src)

	return nil
}
