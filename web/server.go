package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/guslan/chip8"
)

type Server struct {
	runner   *chip8.Runner
	debugger *HttpDebugger
	logger   *slog.Logger
	mux      *http.ServeMux

	socket  *websocket.Conn
	wsMutex sync.Mutex
}

type ServerConfig struct {
	Speed       uint
	UseDebugger bool
	// StaticDir is served at / when set
	StaticDir string
	Logger    *slog.Logger
	CpuOpts   []chip8.CpuOption
}

type ServerConfigCb func(config *ServerConfig)

// NewServer creates a server for the program. The CPU starts on pause.
func NewServer(program []byte, configs ...ServerConfigCb) (*Server, error) {
	config := &ServerConfig{
		Speed:       chip8.DefaultSpeed,
		UseDebugger: false,
		StaticDir:   "",
		Logger:      slog.Default(),
	}
	for _, cb := range configs {
		cb(config)
	}

	cpu, err := chip8.NewCpu(program, config.CpuOpts...)
	if err != nil {
		return nil, err
	}

	s := &Server{
		logger: config.Logger,
		mux:    http.NewServeMux(),
	}

	s.runner = chip8.NewRunner(cpu, func(rc *chip8.RunnerConfig) {
		rc.Speed = config.Speed
		rc.Renderer = s
		rc.Logger = config.Logger
		rc.StopOnError = false
		rc.Paused = true
	})
	if err := s.runner.Boot(); err != nil {
		return nil, err
	}

	if config.UseDebugger {
		s.debugger = NewHttpDebugger(s.runner, config.Logger)
		s.mux.HandleFunc("/debugger", s.debugger.serveWs)
	}

	if config.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(config.StaticDir)))
	}
	s.mux.HandleFunc("/start", s.control("Starting", func() error {
		s.runner.Start()
		return nil
	}))
	s.mux.HandleFunc("/stop", s.control("Stopping", func() error {
		s.runner.Stop()
		return nil
	}))
	s.mux.HandleFunc("/reset", s.control("Stopping and resetting", func() error {
		s.runner.Stop()
		return s.runner.Reset()
	}))
	s.mux.HandleFunc("/step", s.control("Single step", s.runner.StepOnce))
	s.mux.HandleFunc("/load", s.serveLoad)
	s.mux.HandleFunc("/state", s.serveState)
	s.mux.HandleFunc("/display", s.serveDisplay)

	return s, nil
}

func (server *Server) Runner() *chip8.Runner {
	return server.runner
}

func (server *Server) Handler() http.Handler {
	return server.mux
}

func setHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Expose-Headers", "Content-Type")

	w.Header().Set("Cache-Control", "no-cache")
}

func (server *Server) control(msg string, action func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setHeaders(w)

		server.logger.Info(msg)
		if err := action(); err != nil {
			server.logger.Error(msg+" failed", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// serveLoad replaces the program with the request body and leaves the CPU on pause
func (server *Server) serveLoad(w http.ResponseWriter, r *http.Request) {
	setHeaders(w)

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	program, err := io.ReadAll(io.LimitReader(r.Body, chip8.MemorySize))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	server.runner.Stop()
	if err := server.LoadProgram(program); err != nil {
		server.logger.Error("Loading program failed", slog.Any("error", err))
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (server *Server) serveState(w http.ResponseWriter, r *http.Request) {
	setHeaders(w)
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(server.runner.Snapshot()); err != nil {
		server.logger.Error("Error writing state", slog.Any("error", err))
	}
}

// Listen runs the CPU loop and serves HTTP until the context is done
func (server *Server) Listen(ctx context.Context, port int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := server.runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			server.logger.Error("CPU loop stopped", slog.Any("error", err))
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           server.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		srv.Shutdown(shutdownCtx)
	}()

	server.logger.Info("Listening on port", slog.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// LoadProgram replaces the running program
func (server *Server) LoadProgram(program []byte) error {
	return server.runner.Load(program)
}
