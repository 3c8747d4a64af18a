package nmea

import (
	"sync"

	"go.uber.org/zap"
)

const msPerDay = int64(24 * 60 * 60 * 1000)

// TimeContext holds the UTC day-start offset that turns the time-of-day in
// NMEA sentences into an absolute epoch timestamp. The offset comes from the
// host's time-injection interface; before the first injection parsed
// timestamps only encode time-of-day and land on day zero.
type TimeContext struct {
	mu         sync.Mutex
	dayStartMs int64
	injected   bool
	warned     bool
	log        *zap.Logger
}

func NewTimeContext(logger *zap.Logger) *TimeContext {
	return &TimeContext{log: logger}
}

// InjectUTCTime records a UTC reference and derives the start of the
// current UTC day from it.
func (tc *TimeContext) InjectUTCTime(epochMs, referenceMs int64, uncertaintyMs int64) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.dayStartMs = epochMs - epochMs%msPerDay
	tc.injected = true
	tc.log.Info("utc time injected",
		zap.Int64("epochMs", epochMs),
		zap.Int64("referenceMs", referenceMs),
		zap.Int64("uncertaintyMs", uncertaintyMs),
		zap.Int64("dayStartMs", tc.dayStartMs),
	)
}

// DayStartMs returns the current day-start offset, warning once if no time
// was injected yet.
func (tc *TimeContext) DayStartMs() int64 {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if !tc.injected && !tc.warned {
		tc.warned = true
		tc.log.Warn("timestamp parsed before utc time injection, day is ambiguous")
	}
	return tc.dayStartMs
}

// ParseTimestamp parses an hhmmss.sss field and anchors it to the injected
// day start. Returns false when any sub-field is absent or malformed.
func (tc *TimeContext) ParseTimestamp(field []byte) (int64, bool) {
	tod, ok := ParseTimeOfDay(field)
	if !ok {
		return 0, false
	}
	return tod + tc.DayStartMs(), true
}

// ParseTimeOfDay parses the fixed-width hhmmss.sss layout into milliseconds
// since midnight. The fractional part may carry fewer than three digits.
func ParseTimeOfDay(field []byte) (int64, bool) {
	if len(field) < 8 || field[6] != '.' {
		return 0, false
	}
	hour, ok := ParseInt(field[0:2])
	if !ok {
		return 0, false
	}
	minute, ok := ParseInt(field[2:4])
	if !ok {
		return 0, false
	}
	second, ok := ParseInt(field[4:6])
	if !ok {
		return 0, false
	}
	msEnd := 10
	if len(field) < msEnd {
		msEnd = len(field)
	}
	frac := field[7:msEnd]
	msec, ok := ParseInt(frac)
	if !ok {
		return 0, false
	}
	// ".5" means 500ms: short fractions scale by their digit count.
	for digits := len(frac); digits < 3; digits++ {
		msec *= 10
	}
	return msec + second*1000 + minute*60000 + hour*3600000, true
}
