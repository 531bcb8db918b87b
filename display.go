package chip8

import (
	"encoding/binary"
	"math/bits"
)

const (
	DisplayWidth  = 64
	DisplayHeight = 32

	// FrameSize is the size in bytes of a packed Frame
	FrameSize = DisplayWidth * DisplayHeight / 8
)

// Display is a 64x32 monochrome framebuffer.
// Each row is packed in a uint64, the most significant bit being the leftmost pixel,
// so horizontal wraparound is a rotation of the row.
type Display struct {
	rows [DisplayHeight]uint64
	// version changes every time the display is drawn to or cleared
	version uint64
}

func NewDisplay() *Display {
	return &Display{}
}

// Draw XORs the sprite onto the display with its top-left corner at x, y.
// Sprites that go past an edge wrap around to the opposite side.
// Returns whether any lit pixel was turned off.
func (d *Display) Draw(sprite []byte, x, y byte) bool {
	d.version++
	shift := int(x) % DisplayWidth
	collision := false

	for i, b := range sprite {
		row := (int(y) + i) % DisplayHeight
		line := bits.RotateLeft64(uint64(b)<<(DisplayWidth-8), -shift)

		// previous & ~current
		collision = collision || d.rows[row]&line != 0
		d.rows[row] ^= line
	}

	return collision
}

// Clear turns every pixel off
func (d *Display) Clear() {
	d.rows = [DisplayHeight]uint64{}
	d.version++
}

// Version changes every time the display is modified
func (d Display) Version() uint64 {
	return d.version
}

// Pixel reports whether the pixel at x, y is lit. Out-of-range coordinates are never lit.
func (d Display) Pixel(x, y int) bool {
	if x < 0 || x >= DisplayWidth || y < 0 || y >= DisplayHeight {
		return false
	}

	return d.rows[y]&(1<<(DisplayWidth-1-x)) != 0
}

// Frame returns a packed copy of the display
func (d Display) Frame() Frame {
	f := make(Frame, FrameSize)
	for y, row := range d.rows {
		binary.BigEndian.PutUint64(f[y*DisplayWidth/8:], row)
	}

	return f
}

// Frame is a read-only snapshot of a Display: one bit per pixel, row-major,
// most significant bit first.
type Frame []byte

func (f Frame) Pixel(x, y int) bool {
	if x < 0 || x >= DisplayWidth || y < 0 || y >= DisplayHeight {
		return false
	}

	t := y*DisplayWidth + x

	return f[t/8]&(0b10000000>>(t%8)) != 0
}
