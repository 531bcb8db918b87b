package gui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/guslan/chip8"
)

const (
	ToolbarGap       = 5
	ToolbarBtnWidth  = 80
	ToolbarBtnHeight = 40
	ToolbarHeight    = 50
	ToolbarBtnOffset = ToolbarBtnWidth + ToolbarGap

	ScreenPixelSize = 15
	ScreenPositionX = 0
	ScreenPositionY = ToolbarHeight + 1

	MessageBarGap   = 5
	MessageBarHeigh = 30
)

var MessageBarBgColor = rl.DarkGray
var MessageBarInfoColor = rl.SkyBlue
var MessageBarSuccessColor = rl.Lime
var MessageBarWarningColor = rl.Gold
var MessageBarErrorColor = rl.Red

type MessageType byte

const (
	MessageInfo MessageType = iota
	MessageSuccess
	MessageWarning
	MessageError
)

type AppConfig struct {
	Speed     uint
	Autostart bool
	Logger    *slog.Logger
	CpuOpts   []chip8.CpuOption
}

type AppConfigCb func(config *AppConfig)

type App struct {
	Runner *chip8.Runner
	logger *slog.Logger

	// Last frame rendered by the runner, written from the CPU goroutine
	frameMu sync.Mutex
	frame   chip8.Frame

	speed     float32
	autostart bool

	// Window width and height
	winW, winH int

	// Toolbar
	startBtn, stopBtn, stepBtn, restBtn bool

	loadedProgramPath string

	lastMessage      string
	lastMessageColor rl.Color
}

// NewApp creates the window application with an empty program
func NewApp(configs ...AppConfigCb) (*App, error) {
	config := &AppConfig{
		Speed:     chip8.DefaultSpeed,
		Autostart: false,
		Logger:    slog.Default(),
	}
	for _, cb := range configs {
		cb(config)
	}

	cpu, err := chip8.NewCpu(nil, config.CpuOpts...)
	if err != nil {
		return nil, err
	}

	app := &App{
		logger:    config.Logger,
		frame:     make(chip8.Frame, chip8.FrameSize),
		speed:     float32(config.Speed),
		autostart: config.Autostart,
	}
	app.Runner = chip8.NewRunner(cpu, func(rc *chip8.RunnerConfig) {
		rc.Speed = config.Speed
		rc.Renderer = app
		rc.Logger = config.Logger
		rc.StopOnError = false
		rc.Paused = true
	})

	app.updateWindowSize()

	return app, nil
}

// Run starts the CPU loop and the UI loop, it returns when the window is closed
func (app *App) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		app.logger.Info("starting CPU loop on pause")
		if err := app.Runner.Boot(); err != nil {
			app.showMessage(err.Error(), MessageError)
			app.logger.Error("Error booting CPU", slog.Any("error", err))
			return
		}
		if err := app.Runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			app.showMessage(err.Error(), MessageError)
			app.logger.Error("CPU loop stopped", slog.Any("error", err))
		}
	}()

	app.Runner.AddErrorHook(func(cpu *chip8.Cpu) {
		app.showMessage(cpu.Err().Error(), MessageError)
	})

	rl.InitWindow(int32(app.winW), int32(app.winH), "chip8")
	defer rl.CloseWindow()

	rl.SetTargetFPS(60)
	for !rl.WindowShouldClose() {
		rl.BeginDrawing()

		rl.ClearBackground(rl.Black)

		app.handleFileLoad()
		app.handleActions()
		app.updateCpuSpeed()

		app.drawMessageBar()
		app.drawScreen()
		app.drawToolbar()

		rl.EndDrawing()
	}
}

// Load reads the program at path and loads it
func (app *App) Load(path string) {
	program, err := os.ReadFile(path)
	if err != nil {
		app.logger.Error("Error loading program", slog.String("path", path), slog.Any("error", err))
		app.showMessage(err.Error(), MessageError)
		return
	}

	if err = app.Runner.Load(program); err != nil {
		app.logger.Error("Error loading program", slog.String("path", path), slog.Any("error", err))
		app.showMessage(err.Error(), MessageError)
		return
	}

	app.loadedProgramPath = path
	app.logger.Info("Program loaded", slog.String("path", path))
	app.showMessage(fmt.Sprintf("Program '%s' loaded", app.loadedProgramPath), MessageSuccess)

	if app.autostart {
		app.Runner.Start()
	}
}

func (app *App) updateWindowSize() {
	app.winW = chip8.DisplayWidth * ScreenPixelSize
	app.winH = chip8.DisplayHeight*ScreenPixelSize + ToolbarHeight + MessageBarHeigh
	app.logger.Info("Updating window size", slog.Int("width", app.winW), slog.Int("height", app.winH))
}

func (app *App) handleFileLoad() {
	if rl.IsFileDropped() {
		files := rl.LoadDroppedFiles()
		defer rl.UnloadDroppedFiles()

		app.logger.Info("Files were dropped", "files", strings.Join(files, ","))

		app.Load(files[0])
	}
}

func (app *App) hasProgramLoaded() bool {
	return len(app.loadedProgramPath) > 0
}

func (app *App) handleActions() {
	if app.startBtn {
		if app.hasProgramLoaded() {
			app.Runner.Start()
			app.logger.Info("Starting the console")
		} else {
			app.showMessage("There is no program loaded", MessageWarning)
		}
	}
	if app.stopBtn {
		app.Runner.Stop()
		app.logger.Info("Stopping the console")
	}
	if app.restBtn {
		if err := app.Runner.Reset(); err != nil {
			app.showMessage(err.Error(), MessageError)
		} else {
			app.showMessage("Program reset", MessageInfo)
		}
		app.logger.Info("Resetting the program to the beginning")
	}
	if app.stepBtn {
		if err := app.Runner.StepOnce(); err != nil {
			app.showMessage(err.Error(), MessageError)
		}
		app.logger.Info("Running a single step")
	}
}

func (app *App) updateCpuSpeed() {
	app.Runner.SetSpeedInHz(uint(app.speed))
}
