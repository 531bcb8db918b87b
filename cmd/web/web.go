/*
 *   Copyright (c) 2024 Gustavo Lopez <git.gustavolopez.xyz@gmail.com>
 *   All rights reserved.
 */
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/guslan/chip8"
	"github.com/guslan/chip8/web"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})))
}

func main() {
	port := flag.Int("port", 9999, "The port of the server")
	speed := flag.Uint("speed", chip8.DefaultSpeed, "Speed in instructions per second")
	static := flag.String("static", "./static", "Directory served at /")
	debug := flag.Bool("debug", false, "Expose the debugger websocket at /debugger")
	flag.Parse()

	if flag.NArg() < 1 {
		slog.Error("must provide the path to a rom as an argument")
		os.Exit(2)
	}

	program, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		slog.Error("Error loading program", slog.String("path", flag.Arg(0)), slog.Any("error", err))
		os.Exit(1)
	}

	server, err := web.NewServer(program, func(config *web.ServerConfig) {
		config.Speed = *speed
		config.UseDebugger = *debug
		config.StaticDir = *static
	})
	if err != nil {
		slog.Error("Error creating server", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := server.Listen(ctx, *port); err != nil {
		slog.Error("Server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
