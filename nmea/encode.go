package nmea

import "fmt"

// EncodeSentence wraps a payload into a complete wire frame:
// '$' + payload + '*' + two uppercase hex checksum digits + CRLF.
// The payload must not contain '$' or '*'.
func EncodeSentence(payload []byte) []byte {
	crc := ChecksumOf(payload)
	out := make([]byte, 0, len(payload)+6)
	out = append(out, '$')
	out = append(out, payload...)
	out = append(out, []byte(fmt.Sprintf("*%02X\r\n", crc))...)
	return out
}
