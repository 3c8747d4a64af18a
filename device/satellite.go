package device

// Constellation is the satellite system a PRN belongs to.
type Constellation int

const (
	ConstellationUnknown Constellation = iota
	ConstellationGPS
	ConstellationSBAS
	ConstellationGLONASS
	ConstellationBeidou
	ConstellationQZSS
	ConstellationGalileo
)

func (c Constellation) String() string {
	switch c {
	case ConstellationGPS:
		return "gps"
	case ConstellationSBAS:
		return "sbas"
	case ConstellationGLONASS:
		return "glonass"
	case ConstellationBeidou:
		return "beidou"
	case ConstellationQZSS:
		return "qzss"
	case ConstellationGalileo:
		return "galileo"
	}
	return "unknown"
}

// PRN ranges reported by the receiver, per constellation.
const (
	prnGPSFirst     = 1
	prnGPSLast      = 32
	prnSBASFirst    = 33
	prnSBASLast     = 64
	prnGLONASSFirst = 65
	prnGLONASSLast  = 98
	prnBeidouFirst  = 141
	prnBeidouLast   = 170
	prnQZSSFirst    = 193
	prnQZSSLast     = 200
	prnGalileoFirst = 301
	prnGalileoLast  = 330

	// Legacy SBAS numbering used by some firmware revisions.
	prnSBASLegacyFirst = 120
	prnSBASLegacyLast  = 140
)

// SatelliteID identifies one satellite. Identity is defined by PRN alone:
// two IDs with equal PRN are the same satellite even if svid or
// constellation differ. Callers must key maps by PRN, not by the whole
// struct.
type SatelliteID struct {
	PRN           int16
	Svid          int16
	Constellation Constellation
}

// Equal reports PRN-only identity.
func (id SatelliteID) Equal(other SatelliteID) bool {
	return id.PRN == other.PRN
}

// Less orders IDs by PRN only.
func (id SatelliteID) Less(other SatelliteID) bool {
	return id.PRN < other.PRN
}

// SatelliteIDFromPRN builds an ID from a receiver-reported PRN using the
// fixed numbering table.
func SatelliteIDFromPRN(prn int16) SatelliteID {
	id := SatelliteID{PRN: prn, Svid: prn, Constellation: ConstellationUnknown}
	switch {
	case prn >= prnGPSFirst && prn <= prnGPSLast:
		id.Constellation = ConstellationGPS
	case prn >= prnSBASFirst && prn <= prnSBASLast:
		id.Constellation = ConstellationSBAS
		id.Svid = prn + 87
	case prn >= prnGLONASSFirst && prn <= prnGLONASSLast:
		id.Constellation = ConstellationGLONASS
		id.Svid = prn - 64
	case prn >= prnSBASLegacyFirst && prn <= prnSBASLegacyLast:
		id.Constellation = ConstellationSBAS
	case prn >= prnBeidouFirst && prn <= prnBeidouLast:
		id.Constellation = ConstellationBeidou
		id.Svid = prn - 140
	case prn >= prnQZSSFirst && prn <= prnQZSSLast:
		id.Constellation = ConstellationQZSS
	case prn >= prnGalileoFirst && prn <= prnGalileoLast:
		id.Constellation = ConstellationGalileo
		id.Svid = prn - 300
	}
	return id
}

// SatelliteIDFromSvid builds an ID from a platform-facing (constellation,
// svid) pair, inverting the PRN table.
func SatelliteIDFromSvid(constellation Constellation, svid int16) SatelliteID {
	id := SatelliteID{PRN: svid, Svid: svid, Constellation: constellation}
	switch constellation {
	case ConstellationSBAS:
		if svid >= prnSBASFirst+87 && svid <= prnSBASLast+87 {
			id.PRN = svid - 87
		}
	case ConstellationGLONASS:
		id.PRN = svid + 64
	case ConstellationBeidou:
		id.PRN = svid + 140
	case ConstellationGalileo:
		id.PRN = svid + 300
	}
	return id
}

// SatelliteInfo is the per-satellite tracking state. Setter methods bound
// check their input and keep the previous value on rejection.
type SatelliteInfo struct {
	ID        SatelliteID
	Elevation float64
	Azimuth   float64
	SNR       float64
	Tracked   bool
	Ephemeris bool
	Almanac   bool
	UsedInFix bool
}

func NewSatelliteInfo(id SatelliteID) *SatelliteInfo {
	return &SatelliteInfo{ID: id}
}

// SetElevation accepts elevations up to 90 degrees.
func (s *SatelliteInfo) SetElevation(deg float64) bool {
	if deg > 90 {
		return false
	}
	s.Elevation = deg
	return true
}

// SetAzimuth accepts azimuths in [0,359].
func (s *SatelliteInfo) SetAzimuth(deg float64) bool {
	if deg < 0 || deg > 359 {
		return false
	}
	s.Azimuth = deg
	return true
}

// SetSNR accepts ratios in [0,99] dB-Hz.
func (s *SatelliteInfo) SetSNR(snr float64) bool {
	if snr < 0 || snr > 99 {
		return false
	}
	s.SNR = snr
	return true
}

// SetTracked flips the tracking flag. An untracked satellite cannot carry a
// signal ratio or participate in the fix.
func (s *SatelliteInfo) SetTracked(tracked bool) {
	s.Tracked = tracked
	if !tracked {
		s.SNR = 0
		s.UsedInFix = false
	}
}
