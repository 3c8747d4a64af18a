package device

import "go.uber.org/zap"

// DRStatus is the dead-reckoning fusion status derived from fix quality,
// fix mode and the calibration flag.
type DRStatus int

const (
	DRNoFix DRStatus = iota
	DROnlyFix
	DRGNSS2DFix
	DRGNSS3DFix
	DRGNSSAndDRFix
	DRTimeOnlyFix
)

func (d DRStatus) String() string {
	switch d {
	case DRNoFix:
		return "no-fix"
	case DROnlyFix:
		return "dr-only"
	case DRGNSS2DFix:
		return "gnss-2d"
	case DRGNSS3DFix:
		return "gnss-3d"
	case DRGNSSAndDRFix:
		return "gnss+dr"
	case DRTimeOnlyFix:
		return "time-only"
	}
	return "unknown"
}

// recomputeDRStatus rederives drStatus from quality, mode and calibration.
// Unresolvable combinations leave the previous status in place. Callers
// hold the state lock.
func (st *State) recomputeDRStatus() {
	switch st.loc.Quality {
	case FixQualityInvalid:
		st.drStatus = DRNoFix
	case FixQualityDeadReckoning:
		st.drStatus = DROnlyFix
	case FixQualityGPS, FixQualityDGPS:
		switch {
		case st.calibrated && (st.loc.Mode == FixMode2D || st.loc.Mode == FixMode3D):
			st.drStatus = DRGNSSAndDRFix
		case st.loc.Mode == FixMode3D:
			st.drStatus = DRGNSS3DFix
		case st.loc.Mode == FixMode2D:
			st.drStatus = DRGNSS2DFix
		default:
			st.log.Warn("gnss fix without solution mode, keeping dr status",
				zap.Int("quality", int(st.loc.Quality)),
				zap.Int("mode", int(st.loc.Mode)),
			)
		}
	case FixQualityPPS:
		st.drStatus = DRTimeOnlyFix
	default:
		st.log.Warn("fix quality without dr mapping, keeping dr status",
			zap.Int("quality", int(st.loc.Quality)),
		)
	}
}
