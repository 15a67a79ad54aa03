// network/connection.go
package network

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendQueueFull    = errors.New("send queue full")
)

type Connection interface {
	Send(data []byte) error
	ReadEnvelope() ([]byte, error)
	Close() error
	RemoteAddr() net.Addr
}

// WSConnection wraps a websocket connection with a buffered outbound queue.
// Send enqueues and never blocks on the peer; a dedicated writer goroutine
// drains the queue under a per-write deadline, so one slow client cannot
// stall a broadcast to the rest of its room.
type WSConnection struct {
	conn        *websocket.Conn
	out         chan []byte
	done        chan struct{}
	closeOnce   sync.Once
	sendTimeout time.Duration
}

func NewWSConnection(conn *websocket.Conn, sendTimeout time.Duration, sendBuffer int) *WSConnection {
	c := &WSConnection{
		conn:        conn,
		out:         make(chan []byte, sendBuffer),
		done:        make(chan struct{}),
		sendTimeout: sendTimeout,
	}
	go c.writeLoop()
	return c
}

func (c *WSConnection) Send(data []byte) error {
	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}

	select {
	case c.out <- data:
		return nil
	default:
		return ErrSendQueueFull
	}
}

func (c *WSConnection) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.out:
			c.conn.SetWriteDeadline(time.Now().Add(c.sendTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.Close()
				return
			}
		}
	}
}

func (c *WSConnection) ReadEnvelope() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *WSConnection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
