package web

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/guslan/chip8"
	"github.com/retroenv/retrogolib/assert"
)

var testProgram = []byte{
	// MOV I, 0x000
	0xA0, 0x00,
	// DRW v0, v0, 5
	0xD0, 0x05,
	0x61, 0x07,
	0xFF, 0xFF,
}

func newTestServer(t *testing.T, debugger bool) (*Server, *httptest.Server) {
	t.Helper()

	server, err := NewServer(testProgram, func(config *ServerConfig) {
		config.UseDebugger = debugger
	})
	assert.NoError(t, err)

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	return server, ts
}

func post(t *testing.T, url string) int {
	t.Helper()

	resp, err := http.Post(url, "text/plain", nil)
	assert.NoError(t, err)
	resp.Body.Close()

	return resp.StatusCode
}

func getState(t *testing.T, url string) chip8.State {
	t.Helper()

	resp, err := http.Get(url + "/state")
	assert.NoError(t, err)
	defer resp.Body.Close()

	var state chip8.State
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&state))

	return state
}

func dial(t *testing.T, url, path string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http")+path, nil)
	assert.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	return conn
}

func TestServerStartsPaused(t *testing.T) {
	server, ts := newTestServer(t, false)

	assert.False(t, server.Runner().IsRunning())
	assert.Equal(t, uint16(chip8.ProgramBase), getState(t, ts.URL).Pc)

	assert.Equal(t, http.StatusNoContent, post(t, ts.URL+"/start"))
	assert.True(t, server.Runner().IsRunning())

	assert.Equal(t, http.StatusNoContent, post(t, ts.URL+"/stop"))
	assert.False(t, server.Runner().IsRunning())
}

func TestServerStepAndReset(t *testing.T) {
	_, ts := newTestServer(t, false)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNoContent, post(t, ts.URL+"/step"))
	}

	state := getState(t, ts.URL)
	assert.Equal(t, uint16(0x206), state.Pc)
	assert.Equal(t, byte(7), state.V[1])
	assert.Equal(t, uint16(0xFFFF), state.Opcode)

	// the unknown opcode is reported
	assert.Equal(t, http.StatusConflict, post(t, ts.URL+"/step"))
	assert.True(t, getState(t, ts.URL).Halted)

	assert.Equal(t, http.StatusNoContent, post(t, ts.URL+"/reset"))
	state = getState(t, ts.URL)
	assert.False(t, state.Halted)
	assert.Equal(t, uint16(chip8.ProgramBase), state.Pc)
	assert.Equal(t, byte(0), state.V[1])
}

func postBody(t *testing.T, url string, body []byte) int {
	t.Helper()

	resp, err := http.Post(url, "application/octet-stream", bytes.NewReader(body))
	assert.NoError(t, err)
	resp.Body.Close()

	return resp.StatusCode
}

func TestServerLoadsProgram(t *testing.T) {
	server, ts := newTestServer(t, false)

	assert.Equal(t, http.StatusNoContent, post(t, ts.URL+"/step"))
	assert.Equal(t, http.StatusNoContent, postBody(t, ts.URL+"/load", []byte{0x12, 0x00}))

	state := getState(t, ts.URL)
	assert.Equal(t, uint16(chip8.ProgramBase), state.Pc)
	assert.Equal(t, uint16(0x1200), state.Opcode)
	assert.Equal(t, uint(0), state.Cycles)
	assert.False(t, server.Runner().IsRunning())

	tooBig := make([]byte, chip8.MemorySize-chip8.ProgramBase+1)
	assert.Equal(t, http.StatusUnprocessableEntity, postBody(t, ts.URL+"/load", tooBig))
	// the previous program stays loaded
	assert.Equal(t, uint16(0x1200), getState(t, ts.URL).Opcode)

	resp, err := http.Get(ts.URL + "/load")
	assert.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServerStreamsDisplay(t *testing.T) {
	_, ts := newTestServer(t, false)
	conn := dial(t, ts.URL, "/display")

	// the current frame is sent on connection
	kind, msg, err := conn.ReadMessage()
	assert.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, kind)
	assert.Equal(t, make([]byte, chip8.FrameSize), msg)

	assert.Equal(t, http.StatusNoContent, post(t, ts.URL+"/step"))
	assert.Equal(t, http.StatusNoContent, post(t, ts.URL+"/step"))

	_, msg, err = conn.ReadMessage()
	assert.NoError(t, err)
	frame := chip8.Frame(msg)
	assert.True(t, frame.Pixel(0, 0))
	assert.True(t, frame.Pixel(3, 0))
	assert.False(t, frame.Pixel(4, 0))
}

func TestServerDebugger(t *testing.T) {
	_, ts := newTestServer(t, true)
	conn := dial(t, ts.URL, "/debugger")

	_, msg, err := conn.ReadMessage()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0xA000), binary.BigEndian.Uint16(msg[0:]))
	assert.Equal(t, uint16(chip8.ProgramBase), binary.BigEndian.Uint16(msg[2:]))

	assert.Equal(t, http.StatusNoContent, post(t, ts.URL+"/step"))

	_, msg, err = conn.ReadMessage()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0xD005), binary.BigEndian.Uint16(msg[0:]))
	assert.Equal(t, uint16(0x202), binary.BigEndian.Uint16(msg[2:]))
	assert.Equal(t, 26, len(msg))
}

func TestFormatAsEvent(t *testing.T) {
	state := chip8.State{
		Opcode: 0x00EE,
		Pc:     0x20A,
		I:      0x123,
		Sp:     0xFFC,
		Dt:     9,
		Stack:  []uint16{0x204, 0x208},
	}
	state.V[0xF] = 1

	buf := formatAsEvent(state)

	assert.Equal(t, 30, len(buf))
	assert.Equal(t, byte(1), buf[4+0xF])
	assert.Equal(t, uint16(0x123), binary.BigEndian.Uint16(buf[20:]))
	assert.Equal(t, uint16(0xFFC), binary.BigEndian.Uint16(buf[22:]))
	assert.Equal(t, byte(9), buf[24])
	assert.Equal(t, byte(2), buf[25])
	assert.Equal(t, uint16(0x204), binary.BigEndian.Uint16(buf[26:]))
	assert.Equal(t, uint16(0x208), binary.BigEndian.Uint16(buf[28:]))
}
