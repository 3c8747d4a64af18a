package transport

import (
	"net"
	"sync"
	"syscall"
	"time"
)

const tcpDialTimeout = 10 * time.Second

// TCP connects to a receiver (or simulator) exposed as a network stream.
type TCP struct {
	address string

	mu   sync.Mutex
	conn net.Conn
}

func NewTCP(address string) *TCP {
	return &TCP{address: address}
}

func (t *TCP) Open() error {
	conn, err := net.DialTimeout("tcp", t.address, tcpDialTimeout)
	if err != nil {
		return NewStreamError(OpOpen, err)
	}
	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()
	return nil
}

// handle snapshots the connection. Close runs concurrently with the reader
// goroutine, so Read/Write never touch the field directly.
func (t *TCP) handle() net.Conn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn
}

func (t *TCP) Close() error {
	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()
	if conn == nil {
		return nil
	}
	return NewStreamError(OpClose, conn.Close())
}

// Flush is a no-op for TCP; the kernel owns the receive buffer.
func (t *TCP) Flush() error { return nil }

func (t *TCP) Read(p []byte) (int, error) {
	conn := t.handle()
	if conn == nil {
		return 0, NewStreamError(OpRead, syscall.EBADF)
	}
	n, err := conn.Read(p)
	return n, NewStreamError(OpRead, err)
}

func (t *TCP) Write(p []byte) (int, error) {
	conn := t.handle()
	if conn == nil {
		return 0, NewStreamError(OpWrite, syscall.EBADF)
	}
	n, err := conn.Write(p)
	return n, NewStreamError(OpWrite, err)
}
