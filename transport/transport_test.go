package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "ok"},
		{"eof", io.EOF, "end of stream"},
		{"wrapped eof", fmt.Errorf("reading: %w", io.EOF), "end of stream"},
		{"enoent", syscall.ENOENT, "device node does not exist"},
		{"epipe", &StreamError{Op: OpWrite, Err: syscall.EPIPE}, "peer closed the stream"},
		{"unknown errno", syscall.Errno(250), "errno 250"},
		{"plain", errors.New("boom"), "unclassified stream error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Describe(tc.err))
		})
	}
}

func TestStreamError(t *testing.T) {
	assert.NoError(t, NewStreamError(OpRead, nil))

	err := NewStreamError(OpOpen, syscall.EACCES)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transport open")
	assert.Contains(t, err.Error(), "permission denied")
	assert.True(t, errors.Is(err, syscall.EACCES))

	var streamErr *StreamError
	require.True(t, errors.As(err, &streamErr))
	assert.Equal(t, OpOpen, streamErr.Op)
}

func TestTCPRoundTrip(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, aerr := ln.Accept()
		if aerr != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 64)
		n, rerr := conn.Read(buf)
		if rerr != nil {
			return
		}
		conn.Write(buf[:n])
	}()

	tr := NewTCP(ln.Addr().String())
	require.NoError(t, tr.Open())
	defer tr.Close()
	require.NoError(t, tr.Flush())

	payload := []byte("$PSTMGETSWVER,255*17\r\n")
	n, err := tr.Write(payload)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)

	buf := make([]byte, 64)
	n, err = tr.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, payload, buf[:n])
}

func TestTCPReadAfterClose(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		conn, aerr := ln.Accept()
		if aerr == nil {
			defer conn.Close()
			buf := make([]byte, 1)
			conn.Read(buf)
		}
	}()

	tr := NewTCP(ln.Addr().String())
	require.NoError(t, tr.Open())
	require.NoError(t, tr.Close())

	buf := make([]byte, 16)
	_, err = tr.Read(buf)
	require.Error(t, err)
	var streamErr *StreamError
	require.True(t, errors.As(err, &streamErr))
	assert.Equal(t, OpRead, streamErr.Op)
	assert.True(t, errors.Is(err, syscall.EBADF))

	_, err = tr.Write([]byte("x"))
	require.Error(t, err)

	// Closing again is a no-op.
	require.NoError(t, tr.Close())
}

func TestTCPConcurrentCloseDuringReads(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		conn, aerr := ln.Accept()
		if aerr == nil {
			defer conn.Close()
			buf := make([]byte, 1)
			conn.Read(buf)
		}
	}()

	tr := NewTCP(ln.Addr().String())
	require.NoError(t, tr.Open())

	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, 16)
		for {
			if _, rerr := tr.Read(buf); rerr != nil {
				return
			}
		}
	}()

	require.NoError(t, tr.Close())
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reader did not unblock after close")
	}
}

func TestTCPOpenFailureClassified(t *testing.T) {
	tr := NewTCP("127.0.0.1:1")
	err := tr.Open()
	require.Error(t, err)
	var streamErr *StreamError
	require.True(t, errors.As(err, &streamErr))
	assert.Equal(t, OpOpen, streamErr.Op)
}
