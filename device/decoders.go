package device

import (
	"strings"

	"go.uber.org/zap"

	"github.com/openfms/teseo-device/geo"
	"github.com/openfms/teseo-device/nmea"
	"github.com/openfms/teseo-device/observability"
)

// fieldAt returns a data field by index, nil when the sentence is shorter.
func fieldAt(fields [][]byte, i int) []byte {
	if i < 0 || i >= len(fields) {
		return nil
	}
	return fields[i]
}

// floatOr parses a float field falling back to def for absent input.
// Malformed non-empty input counts as absent and is logged by the caller
// through the returned flag.
func floatOr(field []byte, def float64) (float64, bool) {
	if len(field) == 0 {
		return def, true
	}
	v, ok := nmea.ParseFloat(field)
	if !ok {
		observability.FieldParseErrors.Inc()
		return def, false
	}
	return v, true
}

// decodeGGA handles the fix data sentence:
// time, lat, N/S, lon, E/W, quality, sats, HDOP, altitude, ...
func (d *Decoder) decodeGGA(sent *nmea.Sentence) {
	f := sent.Fields

	// The clock moves regardless of fix validity.
	if ts, ok := d.state.TimeContext().ParseTimestamp(fieldAt(f, 0)); ok {
		d.state.SetTimestamp(ts)
	} else {
		d.state.SetTimestampUnavailable()
	}

	qualityField := fieldAt(f, 5)
	qualityVal, ok := nmea.ParseInt(qualityField)
	if !ok {
		observability.FieldParseErrors.Inc()
		d.log.Warn("gga without fix quality", zap.ByteString("field", qualityField))
		return
	}
	quality := FixQuality(qualityVal)
	if !d.state.SetFixQuality(quality) {
		return
	}

	if quality == FixQualityInvalid {
		// Stale position values stay in place, flagged invalid. Speed and
		// bearing belong to VTG and keep their validity.
		d.state.InvalidatePosition()
		return
	}

	hdop, ok := floatOr(fieldAt(f, 7), 0)
	if !ok {
		d.log.Warn("gga with malformed hdop", zap.ByteString("field", fieldAt(f, 7)))
	}
	altitude, ok := floatOr(fieldAt(f, 8), 0)
	if !ok {
		d.log.Warn("gga with malformed altitude", zap.ByteString("field", fieldAt(f, 8)))
	}

	lat, latOK := geo.ParseDegMin(fieldAt(f, 1), hemisphere(fieldAt(f, 2)))
	lon, lonOK := geo.ParseDegMin(fieldAt(f, 3), hemisphere(fieldAt(f, 4)))
	if latOK && lonOK {
		d.state.SetPosition(lat, lon)
	} else {
		d.log.Warn("gga with unparseable coordinates",
			zap.ByteString("lat", fieldAt(f, 1)),
			zap.ByteString("lon", fieldAt(f, 3)),
		)
	}
	d.state.SetAltitude(altitude)
	d.state.SetAccuracy(hdop)
}

func hemisphere(field []byte) byte {
	if len(field) == 0 {
		return 0
	}
	return field[0]
}

// decodeVTG handles course over ground and speed:
// track(T), T, track(M), M, knots, N, km/h, K, [mode].
func (d *Decoder) decodeVTG(sent *nmea.Sentence) {
	f := sent.Fields

	bearing, ok := floatOr(fieldAt(f, 0), 0)
	if !ok {
		d.log.Warn("vtg with malformed track", zap.ByteString("field", fieldAt(f, 0)))
	}
	speedKmh, ok := floatOr(fieldAt(f, 6), 0)
	if !ok {
		d.log.Warn("vtg with malformed speed", zap.ByteString("field", fieldAt(f, 6)))
	}

	faaMode := byte('A')
	if modeField := fieldAt(f, 9); len(modeField) > 0 {
		faaMode = modeField[0]
	}

	if faaMode == 'N' {
		d.state.InvalidateMotion()
		return
	}
	d.state.SetSpeed(speedKmh / 3.6)
	d.state.SetBearing(bearing)
}

// decodeGSV handles satellites in view. After the three header fields the
// payload carries groups of {PRN, elevation, azimuth, SNR}. An absent SNR
// means "seen but not tracked", any other absent group member skips that
// satellite only.
func (d *Decoder) decodeGSV(sent *nmea.Sentence) {
	f := sent.Fields
	for i := 3; i < len(f); i += 4 {
		prnVal, prnOK := nmea.ParseInt(fieldAt(f, i))
		elevation, elevOK := nmea.ParseFloat(fieldAt(f, i+1))
		azimuth, azOK := nmea.ParseFloat(fieldAt(f, i+2))
		if !prnOK || !elevOK || !azOK {
			observability.FieldParseErrors.Inc()
			d.log.Warn("gsv satellite group incomplete",
				zap.ByteString("prn", fieldAt(f, i)),
				zap.ByteString("elevation", fieldAt(f, i+1)),
				zap.ByteString("azimuth", fieldAt(f, i+2)),
			)
			continue
		}

		snrField := fieldAt(f, i+3)
		snr, snrOK := nmea.ParseFloat(snrField)
		tracked := snrOK
		if len(snrField) > 0 && !snrOK {
			observability.FieldParseErrors.Inc()
			d.log.Warn("gsv with malformed snr", zap.ByteString("field", snrField))
		}

		prn := int16(prnVal)
		d.state.UpdateSatellite(prn, func(sat *SatelliteInfo) {
			if !sat.SetElevation(elevation) {
				d.log.Error("satellite elevation out of range",
					zap.Int16("prn", prn), zap.Float64("elevation", elevation))
			}
			if !sat.SetAzimuth(azimuth) {
				d.log.Error("satellite azimuth out of range",
					zap.Int16("prn", prn), zap.Float64("azimuth", azimuth))
			}
			if tracked {
				if !sat.SetSNR(snr) {
					d.log.Error("satellite snr out of range",
						zap.Int16("prn", prn), zap.Float64("snr", snr))
				}
			}
			sat.SetTracked(tracked)
		})
	}
}

// decodeGSA handles the active satellite list: after the two mode fields,
// twelve PRN slots mark satellites participating in the solution.
func (d *Decoder) decodeGSA(sent *nmea.Sentence) {
	f := sent.Fields
	for i := 2; i < 14; i++ {
		field := fieldAt(f, i)
		if len(field) == 0 {
			continue
		}
		prnVal, ok := nmea.ParseInt(field)
		if !ok {
			observability.FieldParseErrors.Inc()
			d.log.Warn("gsa with malformed prn", zap.ByteString("field", field))
			continue
		}
		d.state.UpdateSatellite(int16(prnVal), func(sat *SatelliteInfo) {
			sat.UsedInFix = true
			sat.Almanac = true
			sat.Ephemeris = true
		})
	}
}

// decodeSBAS handles the proprietary SBAS tracking report:
// used, tracked, PRN, elevation, azimuth, SNR. An unparseable PRN aborts
// the sentence with no partial state change.
func (d *Decoder) decodeSBAS(sent *nmea.Sentence) {
	f := sent.Fields
	prnVal, ok := nmea.ParseInt(fieldAt(f, 2))
	if !ok {
		observability.FieldParseErrors.Inc()
		d.log.Warn("sbas report without prn", zap.ByteString("field", fieldAt(f, 2)))
		return
	}

	usedVal, _ := nmea.ParseInt(fieldAt(f, 0))
	trackedVal, _ := nmea.ParseInt(fieldAt(f, 1))
	elevation, _ := floatOr(fieldAt(f, 3), 0)
	azimuth, _ := floatOr(fieldAt(f, 4), 0)
	snr, _ := floatOr(fieldAt(f, 5), 0)

	prn := int16(prnVal)
	d.state.UpdateSatellite(prn, func(sat *SatelliteInfo) {
		sat.UsedInFix = usedVal != 0
		sat.Almanac = true
		sat.Ephemeris = true
		if !sat.SetElevation(elevation) {
			d.log.Error("sbas elevation out of range",
				zap.Int16("prn", prn), zap.Float64("elevation", elevation))
		}
		if !sat.SetAzimuth(azimuth) {
			d.log.Error("sbas azimuth out of range",
				zap.Int16("prn", prn), zap.Float64("azimuth", azimuth))
		}
		if !sat.SetSNR(snr) {
			d.log.Error("sbas snr out of range",
				zap.Int16("prn", prn), zap.Float64("snr", snr))
		}
		sat.SetTracked(trackedVal != 0)
	})
}

// decodeVersion handles the PSTMVER response, e.g.
// "$PSTMVER,GNSSLIB_7.2.15.23_ARM". The product name is the first '_'
// separated token, the rest is the version string.
func (d *Decoder) decodeVersion(sent *nmea.Sentence) {
	field := fieldAt(sent.Fields, 0)
	if len(field) == 0 {
		d.log.Warn("empty version report")
		return
	}
	token := string(field)
	product := token
	version := ""
	if idx := strings.IndexByte(token, '_'); idx > 0 {
		product = token[:idx]
		version = token[idx+1:]
	}
	d.state.NewVersionNumber(product, version)
	d.log.Info("receiver version", zap.String("product", product), zap.String("version", version))
}

// decodePasswordReturn forwards a generated assistance password to the
// subsystem waiting for it.
func (d *Decoder) decodePasswordReturn(sent *nmea.Sentence) {
	field := fieldAt(sent.Fields, 0)
	if len(field) == 0 {
		d.log.Warn("password response without payload")
		return
	}
	if d.assistance == nil {
		d.log.Warn("password response with no pending request")
		return
	}
	d.assistance.OnSTAGPSPassword(string(field))
}
