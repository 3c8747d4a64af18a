package clickhouse

import (
	"context"
)

const insertRawSentenceQuery = `
	INSERT INTO rawsentences (timestamp, device_id, sentence)
VALUES (now(), ?,?);

`

// SaveRawSentence saves one raw NMEA sentence to clickhouse
func (gdb *GNSSDataBase) SaveRawSentence(ctx context.Context, deviceID, sentence string) error {
	batch, err := gdb.GetConn().PrepareBatch(ctx, insertRawSentenceQuery)
	if err != nil {
		return err
	}
	if e := batch.Append(deviceID, sentence); e != nil {
		return e
	}
	return batch.Send()
}
