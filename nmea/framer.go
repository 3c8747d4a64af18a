package nmea

// Framer reassembles '$'-delimited sentences out of an arbitrary chunked
// byte stream. A sentence is emitted when the next '$' arrives; trailing CR
// and LF bytes are stripped before emission. Emissions can be empty or
// garbage, the downstream minimum-length check filters those.
type Framer struct {
	buf  []byte
	emit func(frame []byte)
}

func NewFramer(emit func(frame []byte)) *Framer {
	return &Framer{
		buf:  make([]byte, 0, 256),
		emit: emit,
	}
}

// Push feeds one chunk of raw transport bytes into the framer. The emitted
// frame is a fresh copy owned by the consumer.
func (f *Framer) Push(data []byte) {
	for _, b := range data {
		if b == '$' {
			frame := trimCRLF(f.buf)
			out := make([]byte, len(frame))
			copy(out, frame)
			f.emit(out)
			f.buf = f.buf[:0]
		}
		f.buf = append(f.buf, b)
	}
}

// trimCRLF removes up to two trailing CR/LF bytes.
func trimCRLF(buf []byte) []byte {
	for i := 0; i < 2 && len(buf) > 0; i++ {
		last := buf[len(buf)-1]
		if last != '\r' && last != '\n' {
			break
		}
		buf = buf[:len(buf)-1]
	}
	return buf
}
