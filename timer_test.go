package chip8_test

import (
	"testing"

	"github.com/guslan/chip8"
	"github.com/retroenv/retrogolib/assert"
)

func TestTimer(t *testing.T) {
	timer := chip8.NewTimer()
	assert.False(t, timer.IsActive())

	timer.Set(2)
	assert.True(t, timer.IsActive())
	assert.Equal(t, byte(2), timer.Get())

	timer.Decrement()
	assert.Equal(t, byte(1), timer.Get())
	timer.Decrement()
	timer.Decrement()
	assert.Equal(t, byte(0), timer.Get())
	assert.False(t, timer.IsActive())

	timer.Set(200)
	assert.Equal(t, byte(200), timer.Get())
}
