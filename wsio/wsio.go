// Package wsio carries the winch command stream over a websocket, so a
// show-control console can drive the controller without a serial cable.
// The byte protocol is identical to the serial transport.
package wsio

import (
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Conn adapts a websocket to the plain byte stream the controller
// expects. Frames are binary; partial frame reads are buffered. Reads are
// single-goroutine, writes are serialized internally.
type Conn struct {
	ws *websocket.Conn

	mx  sync.Mutex // guards writes
	buf []byte
}

var _ io.ReadWriter = &Conn{}

// NewConn wraps an established websocket.
func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

func (c *Conn) Read(p []byte) (int, error) {
	for len(c.buf) == 0 {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return 0, err
		}
		c.buf = data
	}
	n := copy(p, c.buf)
	c.buf = c.buf[n:]
	return n, nil
}

func (c *Conn) Write(p []byte) (int, error) {
	c.mx.Lock()
	defer c.mx.Unlock()
	if err := c.ws.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close closes the underlying websocket.
func (c *Conn) Close() error { return c.ws.Close() }

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// Handler upgrades incoming requests and hands the resulting byte stream
// to serve. The controller has exactly one command stream, so only one
// connection may be active at a time; others are refused until it ends.
func Handler(serve func(io.ReadWriter) error) http.Handler {
	var mx sync.Mutex
	var busy bool
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		mx.Lock()
		if busy {
			mx.Unlock()
			http.Error(w, "command stream busy", http.StatusConflict)
			return
		}
		busy = true
		mx.Unlock()
		defer func() {
			mx.Lock()
			busy = false
			mx.Unlock()
		}()

		ws, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			log.Println("ERROR: websocket upgrade:", err)
			return
		}
		conn := NewConn(ws)
		defer conn.Close()
		if err := serve(conn); err != nil {
			log.Println("ERROR: command stream:", err)
		}
	})
}
