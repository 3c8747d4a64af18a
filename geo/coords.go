// Package geo holds the coordinate conversions and the short-range distance
// approximation used by the geofence engine.
package geo

import (
	"github.com/openfms/teseo-device/nmea"
)

// ParseDegMin converts an NMEA ddmm.mmmm (latitude) or dddmm.mmmm
// (longitude) field plus hemisphere letter into signed decimal degrees.
// Returns false for absent or malformed input.
func ParseDegMin(value []byte, hemisphere byte) (float64, bool) {
	if len(value) == 0 {
		return 0, false
	}
	dot := -1
	for i, b := range value {
		if b == '.' {
			dot = i
			break
		}
	}
	intLen := len(value)
	if dot >= 0 {
		intLen = dot
	}
	if intLen < 3 {
		return 0, false
	}

	deg, ok := nmea.ParseInt(value[:intLen-2])
	if !ok {
		return 0, false
	}
	minutes, ok := nmea.ParseFloat(value[intLen-2:])
	if !ok {
		return 0, false
	}

	dec := float64(deg) + minutes/60.0
	switch hemisphere {
	case 'N', 'E':
	case 'S', 'W':
		dec = -dec
	default:
		return 0, false
	}
	return dec, true
}
