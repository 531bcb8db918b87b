package web

import (
	"encoding/binary"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/guslan/chip8"
)

// HttpDebugger streams the registers of the CPU after every step
type HttpDebugger struct {
	runner *chip8.Runner
	logger *slog.Logger

	mu          sync.Mutex
	subscribers map[chan chip8.State]struct{}
}

// NewHttpDebugger creates a new debugger
// This method will pause the runner and register the hooks
func NewHttpDebugger(runner *chip8.Runner, logger *slog.Logger) *HttpDebugger {
	deb := &HttpDebugger{
		runner:      runner,
		logger:      logger,
		subscribers: map[chan chip8.State]struct{}{},
	}

	runner.AddAfterStepHook(deb.afterStep)
	runner.AddErrorHook(deb.afterStep)
	runner.Stop()

	return deb
}

func (d *HttpDebugger) subscribe() chan chip8.State {
	ch := make(chan chip8.State, 16)

	d.mu.Lock()
	d.subscribers[ch] = struct{}{}
	d.mu.Unlock()

	return ch
}

func (d *HttpDebugger) unsubscribe(ch chan chip8.State) {
	d.mu.Lock()
	delete(d.subscribers, ch)
	d.mu.Unlock()
}

// afterStep runs with the runner locked, slow subscribers miss states instead of blocking it
func (d *HttpDebugger) afterStep(cpu *chip8.Cpu) {
	state := cpu.Snapshot()

	d.mu.Lock()
	defer d.mu.Unlock()

	for ch := range d.subscribers {
		select {
		case ch <- state:
		default:
		}
	}
}

func (d *HttpDebugger) serveWs(w http.ResponseWriter, r *http.Request) {
	d.logger.Info("Connecting to debugger")
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.logger.Error("upgrade", slog.Any("error", err))
		return
	}
	defer conn.Close()

	ch := d.subscribe()
	defer d.unsubscribe(ch)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteMessage(websocket.BinaryMessage, formatAsEvent(d.runner.Snapshot())); err != nil {
		d.logger.Error("Error writing debugger message", slog.Any("error", err))
		return
	}

	d.logger.Info("Listening for events")
	for {
		select {
		case state := <-ch:
			if err := conn.WriteMessage(websocket.BinaryMessage, formatAsEvent(state)); err != nil {
				d.logger.Error("Error writing debugger message", slog.Any("error", err))
				return
			}

		case <-closed:
			d.logger.Info("Disconnecting from debugger")
			return

		case <-r.Context().Done():
			return
		}
	}
}

// formatAsEvent encodes the state as
// opcode(2) pc(2) V0..VF(16) I(2) SP(2) DT(1) depth(1) stack(2*depth), big-endian
func formatAsEvent(state chip8.State) []byte {
	buf := make([]byte, 0, 26+2*len(state.Stack))

	buf = binary.BigEndian.AppendUint16(buf, state.Opcode)
	buf = binary.BigEndian.AppendUint16(buf, state.Pc)
	buf = append(buf, state.V[:]...)
	buf = binary.BigEndian.AppendUint16(buf, state.I)
	buf = binary.BigEndian.AppendUint16(buf, state.Sp)
	buf = append(buf, state.Dt)
	buf = append(buf, byte(len(state.Stack)))
	for _, addr := range state.Stack {
		buf = binary.BigEndian.AppendUint16(buf, addr)
	}

	return buf
}
