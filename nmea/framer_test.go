package nmea

import (
	"testing"

	"gotest.tools/v3/assert"
)

func collectFramer() (*Framer, *[][]byte) {
	frames := make([][]byte, 0)
	f := NewFramer(func(frame []byte) {
		frames = append(frames, frame)
	})
	return f, &frames
}

func TestFramerSplitsOnDollar(t *testing.T) {
	f, frames := collectFramer()
	f.Push([]byte("$GPGGA,1*2A\r\n$GPVTG,2*17\r\n$"))

	// First emission is the empty pre-'$' accumulator, filtered downstream.
	assert.Equal(t, len(*frames), 3)
	assert.Equal(t, string((*frames)[0]), "")
	assert.Equal(t, string((*frames)[1]), "$GPGGA,1*2A")
	assert.Equal(t, string((*frames)[2]), "$GPVTG,2*17")
}

func TestFramerAcrossReads(t *testing.T) {
	f, frames := collectFramer()
	chunks := []string{"$GPG", "GA,133742.00,4807.038,N*", "7D\r", "\n$next"}
	for _, c := range chunks {
		f.Push([]byte(c))
	}
	assert.Equal(t, len(*frames), 2)
	assert.Equal(t, string((*frames)[1]), "$GPGGA,133742.00,4807.038,N*7D")
}

func TestFramerLeavesPartialBuffered(t *testing.T) {
	f, frames := collectFramer()
	f.Push([]byte("$GPGSA,A,3"))
	assert.Equal(t, len(*frames), 1) // only the initial empty emission
	f.Push([]byte(",04,05*0F\r\n$"))
	assert.Equal(t, len(*frames), 2)
	assert.Equal(t, string((*frames)[1]), "$GPGSA,A,3,04,05*0F")
}

func TestFramerTrimsAtMostTwoCRLF(t *testing.T) {
	f, frames := collectFramer()
	f.Push([]byte("$A*41\r\n\r\n$"))
	assert.Equal(t, len(*frames), 2)
	// Only two trailing CR/LF bytes are stripped.
	assert.Equal(t, string((*frames)[1]), "$A*41\r\n")
}
