package clickhouse

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/openfms/teseo-device/device"
)

// Recorder archives the decode stream for one receiver. It hangs off the
// session's listener fan-out, so ordering follows the decode cycle: the
// satellite snapshot for a cycle arrives with the same broadcast as its
// location.
type Recorder struct {
	archive  GNSSArchive
	deviceID string
	log      *zap.Logger

	mu        sync.Mutex
	usedInFix uint8
}

func NewRecorder(archive GNSSArchive, deviceID string, logger *zap.Logger) *Recorder {
	return &Recorder{
		archive:  archive,
		deviceID: deviceID,
		log:      logger,
	}
}

func (r *Recorder) OnNMEA(_ int64, sentence string) {
	go func() {
		if err := r.archive.SaveRawSentence(context.Background(), r.deviceID, sentence); err != nil {
			r.log.Error("save raw sentence failed", zap.Error(err))
		}
	}()
}

func (r *Recorder) OnSatellites(sats []device.SatelliteInfo) {
	used := uint8(0)
	for _, sat := range sats {
		if sat.UsedInFix {
			used++
		}
	}
	r.mu.Lock()
	r.usedInFix = used
	r.mu.Unlock()
}

func (r *Recorder) OnLocation(loc device.Location) {
	if !loc.PositionValid {
		return
	}
	r.mu.Lock()
	used := r.usedInFix
	r.mu.Unlock()

	row := FixRowFromLocation(r.deviceID, loc, used)
	if err := r.archive.SaveFixes(context.Background(), []*FixRow{row}); err != nil {
		r.log.Error("save fix failed", zap.Error(err))
	}
}
