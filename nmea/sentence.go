package nmea

import (
	"errors"
)

// TalkerID identifies the subsystem or constellation a sentence originates
// from. Beidou receivers emit both the GB and BD prefixes; they map to the
// same talker.
type TalkerID int

const (
	TalkerInvalid TalkerID = iota
	TalkerGPS                // GP
	TalkerGalileo            // GA
	TalkerGLONASS            // GL
	TalkerGNSS               // GN, combined fix
	TalkerBeidou             // GB and BD
	TalkerQZSS               // QZ
	TalkerProprietary        // PSTM
)

func (t TalkerID) String() string {
	switch t {
	case TalkerGPS:
		return "GP"
	case TalkerGalileo:
		return "GA"
	case TalkerGLONASS:
		return "GL"
	case TalkerGNSS:
		return "GN"
	case TalkerBeidou:
		return "GB"
	case TalkerQZSS:
		return "QZ"
	case TalkerProprietary:
		return "PSTM"
	}
	return "??"
}

var (
	ErrSentenceTooShort = errors.New("sentence shorter than minimum frame")
	ErrMissingStart     = errors.New("sentence missing '$' start marker")
	ErrBadChecksum      = errors.New("sentence failed checksum validation")
	ErrNoFields         = errors.New("sentence has no id token")
)

// Sentence is one validated, split NMEA sentence. Fields hold the raw data
// fields only, the talker+id token is already consumed. Raw keeps the full
// frame text for pass-through reporting.
type Sentence struct {
	Talker TalkerID
	ID     string
	Fields [][]byte
	CRC    byte
	Raw    string
}

// talkerFromToken resolves the talker from the id token using the second
// character, and reports the byte length of the talker prefix.
func talkerFromToken(token []byte) (TalkerID, int) {
	if len(token) < 2 {
		return TalkerInvalid, 0
	}
	switch token[1] {
	case 'P':
		return TalkerGPS, 2
	case 'S':
		return TalkerProprietary, 4
	case 'L':
		return TalkerGLONASS, 2
	case 'B':
		return TalkerBeidou, 2
	case 'A':
		return TalkerGalileo, 2
	case 'N':
		return TalkerGNSS, 2
	case 'D':
		return TalkerBeidou, 2
	case 'Z':
		return TalkerQZSS, 2
	}
	return TalkerInvalid, 0
}

// ParseSentence validates and splits one framed sentence. The frame starts
// at '$' and carries a '*HH' trailer; CR/LF is already stripped by the
// framer.
func ParseSentence(frame []byte) (*Sentence, error) {
	if len(frame) < MinSentenceLen {
		return nil, ErrSentenceTooShort
	}
	// A noisy line can hand the framer buffered bytes that never saw a
	// '$'; without the start marker there is no payload to trim.
	if frame[0] != '$' {
		return nil, ErrMissingStart
	}
	info := ValidateChecksum(frame)
	if !info.Valid {
		return nil, ErrBadChecksum
	}

	body := frame[1:]
	if info.Multiple {
		// With stray '*' bytes in the payload the fixed-width trim is
		// unsafe, cut right before the first marker instead. StarIdx is
		// frame-relative, shift for the stripped '$'.
		cut := info.StarIdx - 1
		if cut <= 0 {
			return nil, ErrBadChecksum
		}
		body = body[:cut]
	} else {
		body = body[:len(body)-3]
	}

	pieces := SplitFields(body, ',')
	if len(pieces) == 0 {
		return nil, ErrNoFields
	}
	token := pieces[0]
	talker, prefixLen := talkerFromToken(token)
	id := ""
	if prefixLen > 0 && len(token) >= prefixLen {
		id = string(token[prefixLen:])
	}
	return &Sentence{
		Talker: talker,
		ID:     id,
		Fields: pieces[1:],
		CRC:    info.CRC,
		Raw:    string(frame),
	}, nil
}
