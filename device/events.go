package device

// Listener receives the platform-facing callbacks emitted by the decode
// path: raw sentence pass-through, location updates at cycle boundaries and
// satellite visibility snapshots.
type Listener interface {
	OnNMEA(timestampMs int64, sentence string)
	OnLocation(loc Location)
	OnSatellites(sats []SatelliteInfo)
}

// Listeners fans one callback out to several sinks.
type Listeners []Listener

func (l Listeners) OnNMEA(timestampMs int64, sentence string) {
	for _, sink := range l {
		sink.OnNMEA(timestampMs, sentence)
	}
}

func (l Listeners) OnLocation(loc Location) {
	for _, sink := range l {
		sink.OnLocation(loc)
	}
}

func (l Listeners) OnSatellites(sats []SatelliteInfo) {
	for _, sink := range l {
		sink.OnSatellites(sats)
	}
}

// AssistanceSink completes pending assisted-GNSS password requests answered
// by the receiver.
type AssistanceSink interface {
	OnSTAGPSPassword(password string)
}
