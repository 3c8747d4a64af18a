package device

import (
	"go.uber.org/zap"

	"github.com/openfms/teseo-device/nmea"
	"github.com/openfms/teseo-device/observability"
)

// cycleStartSentence marks the beginning of a new fix reporting cycle. The
// correlated sentence family (GGA, VTG, GSV, GSA, SBAS) is broadcast at
// cycle start, so a broadcast always reflects the previous, completed
// cycle. This is intentional, not an off-by-one.
const cycleStartSentence = "GGA"

// Decoder turns validated sentence frames into device state mutations and
// listener callbacks. Decode must only be called from a single goroutine.
type Decoder struct {
	state      *State
	listener   Listener
	assistance AssistanceSink
	log        *zap.Logger
}

func NewDecoder(state *State, listener Listener, logger *zap.Logger) *Decoder {
	return &Decoder{
		state:    state,
		listener: listener,
		log:      logger,
	}
}

// SetAssistanceSink wires the receiver of proprietary password responses.
func (d *Decoder) SetAssistanceSink(sink AssistanceSink) {
	d.assistance = sink
}

// Decode processes one framed sentence. Malformed input is logged and
// dropped; nothing propagates out of the decode path.
func (d *Decoder) Decode(frame []byte) {
	if len(frame) < nmea.MinSentenceLen {
		observability.FrameErrors.Inc()
		d.log.Debug("frame below minimum length", zap.Int("len", len(frame)))
		return
	}
	sent, err := nmea.ParseSentence(frame)
	if err != nil {
		observability.ChecksumErrors.Inc()
		d.log.Warn("dropping sentence", zap.Error(err), zap.ByteString("frame", frame))
		return
	}

	// Broadcast the previous cycle before the new cycle's data lands.
	if sent.ID == cycleStartSentence {
		d.broadcast()
		d.state.ClearSatellites()
	}

	d.dispatch(sent)
	observability.SentencesDecoded.WithLabelValues(sent.ID).Inc()

	// The sentence may have just moved the device clock, so the timestamp
	// is read after decoding.
	if d.listener != nil {
		ts, _ := d.state.Timestamp()
		d.listener.OnNMEA(ts, sent.Raw)
	}
}

func (d *Decoder) broadcast() {
	if d.listener == nil {
		return
	}
	if loc, ok := d.state.Location(); ok {
		d.listener.OnLocation(loc)
	}
	d.listener.OnSatellites(d.state.Satellites())
}

func (d *Decoder) dispatch(sent *nmea.Sentence) {
	switch sent.Talker {
	case nmea.TalkerInvalid:
		return
	case nmea.TalkerProprietary:
		switch sent.ID {
		case "SBAS":
			d.decodeSBAS(sent)
		case "VER":
			d.decodeVersion(sent)
		case "STAGPSPASSRTN", "STAGPS8PASSRTN":
			d.decodePasswordReturn(sent)
		}
	default:
		switch sent.ID {
		case "GGA":
			d.decodeGGA(sent)
		case "VTG":
			d.decodeVTG(sent)
		case "GSV":
			d.decodeGSV(sent)
		case "GSA":
			d.decodeGSA(sent)
		}
	}
}
