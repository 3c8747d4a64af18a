package clickhouse

import (
	"context"
	"time"

	"github.com/openfms/teseo-device/device"
)

type FixRow struct {
	DeviceID   string
	Timestamp  time.Time
	Latitude   float64
	Longitude  float64
	Altitude   float64
	Speed      float64
	Bearing    float64
	Accuracy   float64
	FixQuality uint8
	FixMode    uint8
	Satellites uint8
}

const insertFixQuery = `
	INSERT INTO
	    fixes(device_id, timestamp, latitude, longitude, altitude, speed, bearing, accuracy, fix_quality, fix_mode, satellites)
	VALUES (?,?,?,?,?,?,?,?,?,?,?);
`

// FixRowFromLocation flattens a validity-flagged location into archive
// columns; invalid fields store as zero.
func FixRowFromLocation(deviceID string, loc device.Location, satellites uint8) *FixRow {
	row := &FixRow{
		DeviceID:   deviceID,
		Timestamp:  time.UnixMilli(loc.TimestampMs),
		Latitude:   loc.Latitude,
		Longitude:  loc.Longitude,
		FixQuality: uint8(loc.Quality),
		FixMode:    uint8(loc.Mode),
		Satellites: satellites,
	}
	if loc.AltitudeValid {
		row.Altitude = loc.Altitude
	}
	if loc.SpeedValid {
		row.Speed = loc.Speed
	}
	if loc.BearingValid {
		row.Bearing = loc.Bearing
	}
	if loc.AccuracyValid {
		row.Accuracy = loc.Accuracy
	}
	return row
}

// SaveFixes saves position fixes to clickhouse
func (gdb *GNSSDataBase) SaveFixes(ctx context.Context, fixes []*FixRow) error {
	batch, err := gdb.ClickhouseConn.PrepareBatch(ctx, insertFixQuery)
	if err != nil {
		return err
	}
	for _, fix := range fixes {
		if e := batch.AppendStruct(fix); e != nil {
			return e
		}
	}
	return batch.Send()
}
