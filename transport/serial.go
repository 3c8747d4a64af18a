package transport

import (
	"sync"
	"syscall"

	"github.com/tarm/serial"
)

// Serial talks to a receiver over a serial device node.
type Serial struct {
	config *serial.Config

	mu   sync.Mutex
	port *serial.Port
}

func NewSerial(device string, baud int) *Serial {
	return &Serial{
		config: &serial.Config{Name: device, Baud: baud},
	}
}

func (s *Serial) Open() error {
	port, err := serial.OpenPort(s.config)
	if err != nil {
		return NewStreamError(OpOpen, err)
	}
	s.mu.Lock()
	s.port = port
	s.mu.Unlock()
	return nil
}

// handle snapshots the port. Close runs concurrently with the reader
// goroutine, so Read/Write never touch the field directly.
func (s *Serial) handle() *serial.Port {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

func (s *Serial) Close() error {
	s.mu.Lock()
	port := s.port
	s.port = nil
	s.mu.Unlock()
	if port == nil {
		return nil
	}
	return NewStreamError(OpClose, port.Close())
}

func (s *Serial) Flush() error {
	port := s.handle()
	if port == nil {
		return NewStreamError(OpFlush, syscall.EBADF)
	}
	return NewStreamError(OpFlush, port.Flush())
}

func (s *Serial) Read(p []byte) (int, error) {
	port := s.handle()
	if port == nil {
		return 0, NewStreamError(OpRead, syscall.EBADF)
	}
	n, err := port.Read(p)
	return n, NewStreamError(OpRead, err)
}

func (s *Serial) Write(p []byte) (int, error) {
	port := s.handle()
	if port == nil {
		return 0, NewStreamError(OpWrite, syscall.EBADF)
	}
	n, err := port.Write(p)
	return n, NewStreamError(OpWrite, err)
}
