package chip8

// TimerFrequency is the rate at which hosts are expected to decrement timers
const TimerFrequency = 60

// Timer is a counter that a host decrements at TimerFrequency until it reaches zero
type Timer struct {
	value byte
}

func NewTimer() *Timer {
	return &Timer{}
}

func (t *Timer) Set(value byte) {
	t.value = value
}

func (t Timer) Get() byte {
	return t.value
}

func (t Timer) IsActive() bool {
	return t.value > 0
}

// Decrement counts one tick down, never going below zero
func (t *Timer) Decrement() {
	if t.value > 0 {
		t.value--
	}
}
