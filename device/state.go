package device

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/openfms/teseo-device/nmea"
)

// FixQuality is the GGA quality indicator.
type FixQuality int

const (
	FixQualityInvalid       FixQuality = 0
	FixQualityGPS           FixQuality = 1
	FixQualityDGPS          FixQuality = 2
	FixQualityPPS           FixQuality = 3
	FixQualityRTK           FixQuality = 4
	FixQualityFloatRTK      FixQuality = 5
	FixQualityDeadReckoning FixQuality = 6
	FixQualityManual        FixQuality = 7
	FixQualitySimulation    FixQuality = 8
)

// FixMode is the dimensionality of the position solution.
type FixMode int

const (
	FixModeUnknown FixMode = 0
	FixModeNoFix   FixMode = 1
	FixMode2D      FixMode = 2
	FixMode3D      FixMode = 3
)

// TimestampStatus reports whether the device timestamp can be used.
type TimestampStatus int

const (
	TimestampWaitingForData TimestampStatus = iota
	TimestampNotAvailable
	TimestampAvailable
)

// Location is a snapshot of the receiver position solution. Every value
// carries its own validity flag; consumers must not read a value whose flag
// is false.
type Location struct {
	Quality     FixQuality
	Mode        FixMode
	Latitude    float64
	Longitude   float64
	Altitude    float64
	Speed       float64
	Bearing     float64
	Accuracy    float64
	TimestampMs int64

	PositionValid bool
	AltitudeValid bool
	SpeedValid    bool
	BearingValid  bool
	AccuracyValid bool
	TimeValid     bool
}

// Version describes one firmware or library product reported by the
// receiver.
type Version struct {
	Product string
	Version string
}

// ConstellationMask selects the enabled satellite systems.
type ConstellationMask uint32

const (
	MaskGPS     ConstellationMask = 1 << 0
	MaskGLONASS ConstellationMask = 1 << 1
	MaskGalileo ConstellationMask = 1 << 2
	MaskBeidou  ConstellationMask = 1 << 3
	MaskQZSS    ConstellationMask = 1 << 4
)

// State is the authoritative in-memory receiver state. It is mutated only
// by the decode goroutine; all other goroutines read it through the getter
// methods, which copy under the lock.
type State struct {
	mu  sync.RWMutex
	log *zap.Logger

	timeCtx *nmea.TimeContext

	timestampMs     int64
	timestampStatus TimestampStatus

	loc        Location
	calibrated bool
	drStatus   DRStatus

	satellites map[int16]*SatelliteInfo

	versions map[string]Version

	constellationMask ConstellationMask
}

func NewState(timeCtx *nmea.TimeContext, logger *zap.Logger) *State {
	return &State{
		log:             logger,
		timeCtx:         timeCtx,
		timestampStatus: TimestampWaitingForData,
		satellites:      make(map[int16]*SatelliteInfo),
		versions:        make(map[string]Version),
	}
}

func (st *State) TimeContext() *nmea.TimeContext {
	return st.timeCtx
}

// Timestamp returns the last receiver timestamp with its status.
func (st *State) Timestamp() (int64, TimestampStatus) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.timestampMs, st.timestampStatus
}

func (st *State) SetTimestamp(epochMs int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.timestampMs = epochMs
	st.timestampStatus = TimestampAvailable
	st.loc.TimestampMs = epochMs
	st.loc.TimeValid = true
}

func (st *State) SetTimestampUnavailable() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.timestampStatus = TimestampNotAvailable
}

// Location returns a copy of the position solution. The second return is
// the position validity flag; the copy still carries the per-field flags
// for the remaining values.
func (st *State) Location() (Location, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.loc, st.loc.PositionValid
}

// SetFixQuality validates and applies the GGA quality indicator, then
// rederives the dead-reckoning status.
func (st *State) SetFixQuality(q FixQuality) bool {
	if q < FixQualityInvalid || q > FixQualitySimulation {
		st.log.Error("fix quality out of range", zap.Int("quality", int(q)))
		return false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.loc.Quality = q
	st.recomputeDRStatus()
	return true
}

// SetFixMode validates and applies the solution dimensionality, then
// rederives the dead-reckoning status.
func (st *State) SetFixMode(m FixMode) bool {
	if m < FixModeNoFix || m > FixMode3D {
		st.log.Error("fix mode out of range", zap.Int("mode", int(m)))
		return false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.loc.Mode = m
	st.recomputeDRStatus()
	return true
}

// SetCalibrated applies the dead-reckoning calibration flag, then rederives
// the dead-reckoning status.
func (st *State) SetCalibrated(calibrated bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.calibrated = calibrated
	st.recomputeDRStatus()
}

func (st *State) DRStatus() DRStatus {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.drStatus
}

func (st *State) SetPosition(latitude, longitude float64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.loc.Latitude = latitude
	st.loc.Longitude = longitude
	st.loc.PositionValid = true
}

func (st *State) SetAltitude(altitude float64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.loc.Altitude = altitude
	st.loc.AltitudeValid = true
}

func (st *State) SetAccuracy(accuracy float64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.loc.Accuracy = accuracy
	st.loc.AccuracyValid = true
}

func (st *State) SetSpeed(speed float64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.loc.Speed = speed
	st.loc.SpeedValid = true
}

func (st *State) SetBearing(bearing float64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.loc.Bearing = bearing
	st.loc.BearingValid = true
}

// InvalidatePosition marks position, altitude and accuracy stale. Speed and
// bearing validity is deliberately untouched, those values come from VTG.
func (st *State) InvalidatePosition() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.loc.PositionValid = false
	st.loc.AltitudeValid = false
	st.loc.AccuracyValid = false
}

// InvalidateMotion marks speed and bearing stale.
func (st *State) InvalidateMotion() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.loc.SpeedValid = false
	st.loc.BearingValid = false
}

// UpdateSatellite runs update against the entry for a PRN under the state
// lock, creating the entry when absent.
func (st *State) UpdateSatellite(prn int16, update func(*SatelliteInfo)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	sat, ok := st.satellites[prn]
	if !ok {
		sat = NewSatelliteInfo(SatelliteIDFromPRN(prn))
		st.satellites[prn] = sat
	}
	update(sat)
}

// Satellites returns a copy of the satellite map sorted by PRN.
func (st *State) Satellites() []SatelliteInfo {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]SatelliteInfo, 0, len(st.satellites))
	for _, sat := range st.satellites {
		out = append(out, *sat)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID.Less(out[j].ID)
	})
	return out
}

// ClearSatellites resets the satellite map at the start of a new reporting
// cycle.
func (st *State) ClearSatellites() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.satellites = make(map[int16]*SatelliteInfo)
}

// NewVersionNumber records a product version reported by the receiver.
func (st *State) NewVersionNumber(product, version string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.versions[product] = Version{Product: product, Version: version}
}

// ProductVersion looks up a previously reported product version.
func (st *State) ProductVersion(product string) (Version, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	v, ok := st.versions[product]
	return v, ok
}

// Versions returns a copy of all reported product versions.
func (st *State) Versions() []Version {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]Version, 0, len(st.versions))
	for _, v := range st.versions {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Product < out[j].Product })
	return out
}

func (st *State) SetConstellationMask(mask ConstellationMask) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.constellationMask = mask
}

func (st *State) GetConstellationMask() ConstellationMask {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.constellationMask
}
