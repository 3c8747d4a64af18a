package nmea

// MinSentenceLen is the shortest frame worth validating: "$PSTM..*XX".
const MinSentenceLen = 9

// ChecksumInfo is the outcome of checksum extraction and verification on one
// framed sentence.
type ChecksumInfo struct {
	Valid    bool
	CRC      byte // checksum found on the wire
	Computed byte
	Multiple bool // more than one '*' marker seen
	StarIdx  int  // index of the first '*', -1 when absent
}

// ChecksumOf computes the XOR of every byte of payload. The payload is the
// sentence body between '$' and '*'.
func ChecksumOf(payload []byte) byte {
	var crc byte
	for _, b := range payload {
		crc ^= b
	}
	return crc
}

// ValidateChecksum scans a framed sentence for its '*HH' trailer and checks
// it against the XOR of the bytes between the first '$' and the first '*'.
// A second '*' marks the sentence as Multiple, which changes how callers
// trim the trailer but does not by itself invalidate the sentence.
func ValidateChecksum(frame []byte) ChecksumInfo {
	info := ChecksumInfo{StarIdx: -1}
	var (
		found       bool
		invalidChar bool
		accumulate  bool
		computed    byte
	)
	for i := 0; i < len(frame); i++ {
		switch frame[i] {
		case '$':
			accumulate = true
			continue
		case '*':
			if accumulate {
				accumulate = false
			}
			if !found {
				info.StarIdx = i
				if i+2 >= len(frame) {
					invalidChar = true
				} else {
					crc, ok := HexByte(frame[i+1], frame[i+2])
					if !ok {
						invalidChar = true
					} else {
						info.CRC = crc
					}
				}
				found = true
			} else {
				info.Multiple = true
			}
			continue
		}
		if accumulate {
			computed ^= frame[i]
		}
	}
	info.Computed = computed
	info.Valid = found && !invalidChar && info.CRC == computed
	return info
}
