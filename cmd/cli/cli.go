/*
 *   Copyright (c) 2024 Gustavo Lopez <git.gustavolopez.xyz@gmail.com>
 *   All rights reserved.
 */
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/guslan/chip8"
	"github.com/pkg/term"
)

func main() {
	speed := flag.Uint("speed", chip8.DefaultSpeed, fmt.Sprintf("Speed in instructions per second, in the range [%d, %d].", chip8.MinSpeed, chip8.MaxSpeed))
	noTerm := flag.Bool("noterm", false, "turn off the terminal display of the emulator")
	trace := flag.Bool("trace", false, "print every executed instruction to stderr")
	disasm := flag.Bool("disasm", false, "print the disassembly of the rom and exit")
	verbose := flag.Bool("v", false, "log at debug level")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if flag.NArg() < 1 {
		slog.Error("must provide the path to a rom as an argument")
		os.Exit(2)
	}

	program, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		slog.Error("Error loading program", slog.String("path", flag.Arg(0)), slog.Any("error", err))
		os.Exit(1)
	}

	if *disasm {
		for _, line := range chip8.Disassemble(program, chip8.ProgramBase) {
			fmt.Println(line)
		}
		return
	}

	if err := run(program, *speed, *noTerm, *trace); err != nil {
		var unknown chip8.ErrOpCodeUnknown
		if errors.As(err, &unknown) {
			slog.Error("Unsupported opcode", slog.String("opcode", fmt.Sprintf("0x%04X", unknown.OpCode)), slog.String("pc", fmt.Sprintf("0x%03X", unknown.Pc)))
		} else {
			slog.Error("CPU halted", slog.Any("error", err))
		}
		os.Exit(1)
	}
}

func run(program []byte, speed uint, noTerm, trace bool) error {
	cpu, err := chip8.NewCpu(program)
	if err != nil {
		return err
	}

	var renderer chip8.Renderer = chip8.NewDummyRenderer()
	if !noTerm {
		renderer = chip8.NewTerminalRenderer()
	}

	runner := chip8.NewRunner(cpu, func(config *chip8.RunnerConfig) {
		config.Speed = speed
		config.Renderer = renderer
	})
	if trace {
		chip8.NewTracer(runner, os.Stderr)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if !noTerm {
		tty, err := term.Open("/dev/tty", term.RawMode)
		if err != nil {
			return fmt.Errorf("opening terminal: %w", err)
		}
		defer func() {
			tty.Restore()
			tty.Close()
		}()

		go readControls(tty, runner, cancel)
	}

	if err := runner.Boot(); err != nil {
		return err
	}

	slog.Debug("Running", slog.Uint64("speed", uint64(runner.SpeedInHz())))
	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// readControls maps keys of the terminal to runner actions:
// p pauses or resumes, s steps once, r resets, q or ctrl-c quits
func readControls(tty *term.Term, runner *chip8.Runner, quit context.CancelFunc) {
	buf := make([]byte, 1)
	for {
		if _, err := tty.Read(buf); err != nil {
			return
		}

		switch buf[0] {
		case 'p':
			if runner.IsRunning() {
				runner.Stop()
			} else {
				runner.Start()
			}
		case 's':
			runner.Stop()
			if err := runner.StepOnce(); err != nil {
				slog.Error("Step failed", slog.Any("error", err))
			}
		case 'r':
			if err := runner.Reset(); err != nil {
				slog.Error("Reset failed", slog.Any("error", err))
			}
		case 'q', 0x03:
			quit()
			return
		}
	}
}
