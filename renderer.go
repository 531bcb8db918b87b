package chip8

import (
	"io"
	"os"
)

// Renderer presents frames of the display to the user
type Renderer interface {
	// Boot initializes the component
	Boot() error
	// Render
	Render(Frame) error
}

// DummyRenderer is a renderer that does nothing
type DummyRenderer struct {
}

func NewDummyRenderer() *DummyRenderer {
	return &DummyRenderer{}
}

func (d DummyRenderer) Boot() error {
	return nil
}

func (d DummyRenderer) Render(frame Frame) error {
	return nil
}

const ESC = 0x1B

// TerminalRenderer draws frames with ANSI escape sequences
type TerminalRenderer struct {
	terminal        io.Writer
	OnChar, OffChar string
}

func NewTerminalRenderer() *TerminalRenderer {
	return NewTerminalRendererWithOutput(os.Stdout)
}

func NewTerminalRendererWithOutput(out io.Writer) *TerminalRenderer {
	return &TerminalRenderer{
		terminal: out,
		OnChar:   "##",
		OffChar:  "  ",
	}
}

// Boot implements Renderer.
func (r *TerminalRenderer) Boot() error {
	_, err := r.terminal.Write([]byte{
		// Move cursor do start
		ESC, '[', '1', 'H',
		// clear the terminal
		ESC, '[', '0', 'J',
	})

	return err
}

// Render implements Renderer.
func (r *TerminalRenderer) Render(frame Frame) error {
	buff := make([]byte, 0, DisplayWidth*DisplayHeight*len(r.OnChar)+DisplayHeight*3+64)
	buff = append(buff, ESC, '[', '1', 'H')
	for y := 0; y < DisplayHeight; y++ {
		for x := 0; x < DisplayWidth; x++ {
			if frame.Pixel(x, y) {
				buff = append(buff, r.OnChar...)
			} else {
				buff = append(buff, r.OffChar...)
			}
		}
		buff = append(buff, '|', '\r', '\n')
	}

	_, err := r.terminal.Write(buff)
	return err
}
