package chip8

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var ErrRunnerIsNotBooted = errors.New("the runner has not been booted properly")

const (
	DefaultSpeed uint = 500
	MaxSpeed     uint = 700
	MinSpeed     uint = 5
)

type RunnerConfig struct {
	// Speed in instructions per second
	Speed    uint
	Renderer Renderer
	Logger   *slog.Logger
	// StopOnError makes Run return the first failure of the CPU.
	// Otherwise the runner pauses and waits for a Reset or a Load.
	StopOnError bool
	// Paused starts the runner on pause
	Paused bool
}

type RunnerConfigCb func(config *RunnerConfig)

// Runner is the host loop around a Cpu.
// It steps the CPU at its own speed and decrements the delay timer at TimerFrequency;
// both cadences are served from the goroutine running Run so the Cpu has a single owner.
type Runner struct {
	mu sync.Mutex

	cpu      *Cpu
	renderer Renderer
	logger   *slog.Logger

	speedInHz   uint
	step        time.Duration
	stopOnError bool

	isBooted bool
	isPaused bool

	// Hooks that run before every step
	beforeStepHooks []Hook
	// Hooks that run after every step
	afterStepHooks []Hook
	// Hooks that run after an error
	errorHooks []Hook
}

func NewRunner(cpu *Cpu, configs ...RunnerConfigCb) *Runner {
	config := &RunnerConfig{
		Speed:       DefaultSpeed,
		Renderer:    NewDummyRenderer(),
		Logger:      slog.Default(),
		StopOnError: true,
		Paused:      false,
	}
	for _, cb := range configs {
		cb(config)
	}

	r := &Runner{
		cpu:         cpu,
		renderer:    config.Renderer,
		logger:      config.Logger,
		stopOnError: config.StopOnError,
		isPaused:    config.Paused,

		beforeStepHooks: make([]Hook, 0),
		afterStepHooks:  make([]Hook, 0),
		errorHooks:      make([]Hook, 0),
	}
	r.setSpeedInHz(config.Speed)

	return r
}

func clampSpeed(inHz uint) uint {
	return min(max(inHz, MinSpeed), MaxSpeed)
}

func (r *Runner) SpeedInHz() uint {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.speedInHz
}

// SetSpeedInHz changes the instruction rate, clamped to [MinSpeed, MaxSpeed]
func (r *Runner) SetSpeedInHz(inHz uint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.setSpeedInHz(inHz)
}

func (r *Runner) setSpeedInHz(inHz uint) {
	r.speedInHz = clampSpeed(inHz)
	r.step = time.Second / time.Duration(r.speedInHz)
}

func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return !r.isPaused
}

// Start resumes the execution
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.isPaused = false
}

// Stop pauses the execution
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.isPaused = true
}

// Boot initializes the renderer.
// If the runner was already booted, this method is a noop
func (r *Runner) Boot() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isBooted {
		return nil
	}

	if err := r.renderer.Boot(); err != nil {
		return err
	}

	r.isBooted = true

	return r.render()
}

// Load replaces the program of the CPU
func (r *Runner) Load(program []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.cpu.LoadProgram(program); err != nil {
		return err
	}
	r.logger.Info("Program loaded", slog.Int("size", len(program)))

	return r.render()
}

// Reset restarts the loaded program
func (r *Runner) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cpu.Reset()

	return r.render()
}

// StepOnce runs a single step bypassing the pause state
func (r *Runner) StepOnce() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isBooted {
		return ErrRunnerIsNotBooted
	}

	return r.stepCpu()
}

// DecrementTimer decrements the delay timer once, as the 60Hz clock of Run does
func (r *Runner) DecrementTimer() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cpu.Timer().Decrement()
}

// Snapshot returns the state of the CPU registers
func (r *Runner) Snapshot() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.cpu.Snapshot()
}

// Frame returns the current content of the display
func (r *Runner) Frame() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.cpu.Display().Frame()
}

// Run steps the CPU until the context is done.
// With StopOnError it also returns the first failure of the CPU.
func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	booted, step := r.isBooted, r.step
	r.mu.Unlock()

	if !booted {
		return ErrRunnerIsNotBooted
	}

	stepTicker := time.NewTicker(step)
	defer stepTicker.Stop()

	timerTicker := time.NewTicker(time.Second / TimerFrequency)
	defer timerTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-stepTicker.C:
			current, err := r.tick()
			if err != nil && r.stopOnError {
				return err
			}
			if current != step {
				step = current
				stepTicker.Reset(step)
			}

		case <-timerTicker.C:
			r.mu.Lock()
			if !r.isPaused {
				r.cpu.Timer().Decrement()
			}
			r.mu.Unlock()
		}
	}
}

// tick runs a step unless paused and returns the current step period
func (r *Runner) tick() (time.Duration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isPaused {
		return r.step, nil
	}

	return r.step, r.stepCpu()
}

func (r *Runner) stepCpu() error {
	r.runHooks(r.beforeStepHooks)

	if r.logger.Enabled(context.Background(), slog.LevelDebug) {
		inst, _ := r.cpu.PeekInstruction()
		r.logger.Debug(
			"exec",
			"pc", fmt.Sprintf("0x%03X", r.cpu.Pc),
			"opcode", fmt.Sprintf("0x%04X", uint16(inst.Opcode)),
			"instr", inst.String(),
		)
	}

	version := r.cpu.display.Version()
	if err := r.cpu.Step(); err != nil {
		r.isPaused = true
		r.runHooks(r.errorHooks)
		r.logger.Error("CPU halted", slog.Any("error", err))
		return err
	}

	r.runHooks(r.afterStepHooks)

	if r.cpu.display.Version() != version {
		return r.render()
	}

	return nil
}

func (r *Runner) render() error {
	if !r.isBooted {
		return nil
	}

	if err := r.renderer.Render(r.cpu.display.Frame()); err != nil {
		return fmt.Errorf("rendering frame: %w", err)
	}

	return nil
}
