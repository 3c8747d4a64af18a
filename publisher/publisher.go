// Package publisher forwards decoded receiver events onto NATS as JSON so
// downstream fleet services can consume them without linking this driver.
package publisher

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/openfms/teseo-device/device"
	"github.com/openfms/teseo-device/geofence"
	"github.com/openfms/teseo-device/session"
)

// Publisher relays location, satellite, NMEA, geofence and session events
// for one receiver, keyed by its device id in the subject.
type Publisher struct {
	natsConn *nats.Conn
	deviceID string
	log      *zap.Logger
}

func New(natsConn *nats.Conn, deviceID string, logger *zap.Logger) *Publisher {
	return &Publisher{
		natsConn: natsConn,
		deviceID: deviceID,
		log:      logger,
	}
}

type locationMessage struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Altitude    float64 `json:"altitude,omitempty"`
	Speed       float64 `json:"speed,omitempty"`
	Bearing     float64 `json:"bearing,omitempty"`
	Accuracy    float64 `json:"accuracy,omitempty"`
	TimestampMs int64   `json:"timestamp_ms,omitempty"`

	AltitudeValid bool `json:"altitude_valid"`
	SpeedValid    bool `json:"speed_valid"`
	BearingValid  bool `json:"bearing_valid"`
	AccuracyValid bool `json:"accuracy_valid"`
}

type satelliteMessage struct {
	PRN       int16   `json:"prn"`
	Elevation float64 `json:"elevation"`
	Azimuth   float64 `json:"azimuth"`
	SNR       float64 `json:"snr"`
	Tracked   bool    `json:"tracked"`
	UsedInFix bool    `json:"used_in_fix"`
}

type nmeaMessage struct {
	TimestampMs int64  `json:"timestamp_ms"`
	Sentence    string `json:"sentence"`
}

type geofenceTransitionMessage struct {
	GeofenceID  int32           `json:"geofence_id"`
	Transition  string          `json:"transition"`
	TimestampMs int64           `json:"timestamp_ms"`
	Location    locationMessage `json:"location"`
}

type geofenceStatusMessage struct {
	Available bool `json:"available"`
}

type statusMessage struct {
	Status string `json:"status"`
}

func (p *Publisher) subject(kind string) string {
	return fmt.Sprintf("gnss.%s.%s", p.deviceID, kind)
}

func (p *Publisher) publish(kind string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		p.log.Error("marshal event failed", zap.String("kind", kind), zap.Error(err))
		return
	}
	if err := p.natsConn.Publish(p.subject(kind), data); err != nil {
		p.log.Error("publish event failed", zap.String("kind", kind), zap.Error(err))
	}
}

func locationToMessage(loc device.Location) locationMessage {
	return locationMessage{
		Latitude:      loc.Latitude,
		Longitude:     loc.Longitude,
		Altitude:      loc.Altitude,
		Speed:         loc.Speed,
		Bearing:       loc.Bearing,
		Accuracy:      loc.Accuracy,
		TimestampMs:   loc.TimestampMs,
		AltitudeValid: loc.AltitudeValid,
		SpeedValid:    loc.SpeedValid,
		BearingValid:  loc.BearingValid,
		AccuracyValid: loc.AccuracyValid,
	}
}

func (p *Publisher) OnLocation(loc device.Location) {
	p.publish("location", locationToMessage(loc))
}

func (p *Publisher) OnSatellites(sats []device.SatelliteInfo) {
	messages := make([]satelliteMessage, 0, len(sats))
	for _, sat := range sats {
		messages = append(messages, satelliteMessage{
			PRN:       sat.ID.PRN,
			Elevation: sat.Elevation,
			Azimuth:   sat.Azimuth,
			SNR:       sat.SNR,
			Tracked:   sat.Tracked,
			UsedInFix: sat.UsedInFix,
		})
	}
	p.publish("satellites", messages)
}

func (p *Publisher) OnNMEA(timestampMs int64, sentence string) {
	p.publish("nmea", nmeaMessage{TimestampMs: timestampMs, Sentence: sentence})
}

func (p *Publisher) OnGeofenceTransition(ev geofence.TransitionEvent) {
	p.publish("geofence.transition", geofenceTransitionMessage{
		GeofenceID:  ev.GeofenceID,
		Transition:  ev.Transition.String(),
		TimestampMs: ev.TimestampMs,
		Location:    locationToMessage(ev.Location),
	})
}

func (p *Publisher) OnGeofenceAvailability(available bool, _ device.Location) {
	p.publish("geofence.status", geofenceStatusMessage{Available: available})
}

func (p *Publisher) OnStatus(status session.Status) {
	p.publish("status", statusMessage{Status: status.String()})
}

func (p *Publisher) OnCapabilities(caps session.Capability) {
	p.log.Info("session capabilities", zap.Uint32("caps", uint32(caps)))
}
