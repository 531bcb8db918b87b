package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/guslan/chip8"
	"github.com/guslan/chip8/gui"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})))
}

func main() {
	autostart := flag.Bool("start", false, "Starts the console automatically if there is a program loaded (defaults = false).")
	initialSpeed := flag.Uint("speed", chip8.DefaultSpeed, fmt.Sprintf("The starting speed of the CPU in Hz. It has to be in the range [%d, %d] (defaults = %d).", chip8.MinSpeed, chip8.MaxSpeed, chip8.DefaultSpeed))

	flag.Parse()

	app, err := gui.NewApp(func(config *gui.AppConfig) {
		config.Speed = *initialSpeed
		config.Autostart = *autostart
	})
	if err != nil {
		slog.Error("Error creating the app", slog.Any("error", err))
		os.Exit(1)
	}

	if flag.NArg() > 0 {
		app.Load(flag.Arg(0))
	}

	app.Run()
}
