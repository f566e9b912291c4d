// network/connection.go
package network

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = (pongWait * 9) / 10
	sendBuffer   = 256
)

var ErrConnectionClosed = errors.New("connection closed")

// Connection 一条全双工的文本帧连接
type Connection interface {
	Send(frame string) error
	ReadFrame() (string, error)
	Close() error
	RemoteAddr() net.Addr
}

// WSConnection wraps a websocket connection. Outbound frames go through a
// buffered channel drained by a write pump, so a slow socket never blocks
// the caller; when the buffer is full the frame is dropped for this
// connection only.
type WSConnection struct {
	conn    *websocket.Conn
	send    chan string
	done    chan struct{}
	once    sync.Once
	dropped int
	mu      sync.Mutex
}

func NewWSConnection(conn *websocket.Conn) *WSConnection {
	c := &WSConnection{
		conn: conn,
		send: make(chan string, sendBuffer),
		done: make(chan struct{}),
	}
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go c.writePump()
	return c
}

// Send queues a frame for delivery. Fire-and-forget: a full buffer drops
// the frame, a closed connection returns ErrConnectionClosed.
func (c *WSConnection) Send(frame string) error {
	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}
	select {
	case c.send <- frame:
		return nil
	default:
		c.mu.Lock()
		c.dropped++
		c.mu.Unlock()
		return nil
	}
}

// ReadFrame blocks for the next inbound text frame.
func (c *WSConnection) ReadFrame() (string, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *WSConnection) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// Dropped returns how many frames were discarded due to backpressure.
func (c *WSConnection) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

func (c *WSConnection) Close() error {
	c.once.Do(func() {
		close(c.done)
	})
	return c.conn.Close()
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
