// Package transport abstracts the byte stream to the receiver. The session
// layer only sees Open/Read/Write/Flush/Close; serial and TCP variants live
// behind the same interface.
package transport

import (
	"errors"
	"fmt"
	"io"
	"syscall"
)

// Transport is a blocking byte stream to a GNSS receiver.
type Transport interface {
	Open() error
	Close() error
	// Flush discards pending unread input.
	Flush() error
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

// Operation names the stream call a StreamError came from.
type Operation int

const (
	OpOpen Operation = iota
	OpClose
	OpFlush
	OpRead
	OpWrite
	OpPipe
)

func (op Operation) String() string {
	switch op {
	case OpOpen:
		return "open"
	case OpClose:
		return "close"
	case OpFlush:
		return "flush"
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	}
	return "pipe"
}

// StreamError wraps a transport failure with the operation it came from and
// a stable diagnostic description.
type StreamError struct {
	Op  Operation
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("transport %s: %s (%v)", e.Op, Describe(e.Err), e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// NewStreamError tags err with the failing operation. A nil err returns nil.
func NewStreamError(op Operation, err error) error {
	if err == nil {
		return nil
	}
	return &StreamError{Op: op, Err: err}
}

// errnoText is the fixed errno classification used in diagnostics.
var errnoText = map[syscall.Errno]string{
	syscall.EACCES: "permission denied on device",
	syscall.ENOENT: "device node does not exist",
	syscall.ENODEV: "no such device",
	syscall.ENXIO:  "device not configured",
	syscall.EBUSY:  "device busy",
	syscall.EIO:    "low-level i/o failure",
	syscall.EBADF:  "descriptor closed or invalid",
	syscall.EPIPE:  "peer closed the stream",
	syscall.EAGAIN: "stream temporarily unavailable",
	syscall.EINTR:  "call interrupted",
	syscall.EINVAL: "invalid stream parameters",
}

// Describe maps an error to its fixed diagnostic text.
func Describe(err error) string {
	if err == nil {
		return "ok"
	}
	if errors.Is(err, io.EOF) {
		return "end of stream"
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		if text, ok := errnoText[errno]; ok {
			return text
		}
		return fmt.Sprintf("errno %d", int(errno))
	}
	return "unclassified stream error"
}
