package nmea

import "strconv"

// Field helpers for the comma separated payload of a sentence. An empty
// field is "absent" and never an error; callers decide between substituting
// a default and leaving state untouched.

func IsEmpty(field []byte) bool {
	return len(field) == 0
}

// ParseInt parses a decimal integer field. Returns false for an empty or
// malformed field.
func ParseInt(field []byte) (int64, bool) {
	if len(field) == 0 {
		return 0, false
	}
	v, err := strconv.ParseInt(string(field), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseFloat parses a decimal floating point field. Returns false for an
// empty or malformed field.
func ParseFloat(field []byte) (float64, bool) {
	if len(field) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(string(field), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// HexDigit decodes one ascii hex character.
func HexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	}
	return 0, false
}

// HexByte decodes two ascii hex characters into one byte.
func HexByte(hi, lo byte) (byte, bool) {
	h, ok := HexDigit(hi)
	if !ok {
		return 0, false
	}
	l, ok := HexDigit(lo)
	if !ok {
		return 0, false
	}
	return h<<4 | l, true
}

// SplitFields splits a byte range on the separator without trimming. Empty
// pieces are preserved so field positions stay fixed.
func SplitFields(data []byte, sep byte) [][]byte {
	fields := make([][]byte, 0, 16)
	start := 0
	for i := 0; i < len(data); i++ {
		if data[i] == sep {
			fields = append(fields, data[start:i])
			start = i + 1
		}
	}
	fields = append(fields, data[start:])
	return fields
}
