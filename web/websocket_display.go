package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/guslan/chip8"
)

var upgrader = websocket.Upgrader{} // use default options

// Boot implements chip8.Renderer.
func (server *Server) Boot() error {
	return nil
}

func (server *Server) setWs(conn *websocket.Conn) {
	server.wsMutex.Lock()
	defer server.wsMutex.Unlock()

	server.socket = conn
}

func (server *Server) unsetWs(conn *websocket.Conn) {
	server.wsMutex.Lock()
	defer server.wsMutex.Unlock()

	if server.socket == conn {
		server.socket = nil
	}
}

// Render implements chip8.Renderer.
func (server *Server) Render(frame chip8.Frame) error {
	server.wsMutex.Lock()
	defer server.wsMutex.Unlock()

	if server.socket == nil {
		return nil
	}

	if err := server.socket.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		// the viewer went away, the CPU keeps running
		server.logger.Warn("Error writing frame", slog.Any("error", err))
		server.socket = nil
	}

	return nil
}

func (server *Server) serveDisplay(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		server.logger.Error("upgrade", slog.Any("error", err))
		return
	}
	defer conn.Close()

	server.logger.Info("Connecting to display")
	server.setWs(conn)
	defer server.unsetWs(conn)

	if err := server.Render(server.runner.Frame()); err != nil {
		return
	}

	// Nothing is expected from the viewer, reading only detects the disconnection
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			server.logger.Info("Disconnecting from display")
			return
		}
	}
}
