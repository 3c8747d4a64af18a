package publisher

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	natstest "github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
	"gotest.tools/v3/assert"

	"github.com/openfms/teseo-device/device"
	"github.com/openfms/teseo-device/geofence"
	"github.com/openfms/teseo-device/session"
)

func runNatsServer(t *testing.T) (*server.Server, *nats.Conn) {
	t.Helper()
	opts := natstest.DefaultTestOptions
	opts.Port = rand.Intn(65535-1024) + 1024
	srv := natstest.RunServer(&opts)

	url := fmt.Sprintf("nats://%s", net.JoinHostPort("127.0.0.1", fmt.Sprintf("%d", opts.Port)))
	nc, err := nats.Connect(url)
	if err != nil {
		srv.Shutdown()
		t.Fatalf("connect to test nats server: %v", err)
	}
	t.Cleanup(func() {
		nc.Close()
		srv.Shutdown()
	})
	return srv, nc
}

func subscribe(t *testing.T, nc *nats.Conn, subject string) chan *nats.Msg {
	t.Helper()
	msgs := make(chan *nats.Msg, 8)
	sub, err := nc.ChanSubscribe(subject, msgs)
	assert.NilError(t, err)
	t.Cleanup(func() { sub.Unsubscribe() })
	return msgs
}

func nextMsg(t *testing.T, msgs chan *nats.Msg) *nats.Msg {
	t.Helper()
	select {
	case msg := <-msgs:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published message")
		return nil
	}
}

func TestPublishLocation(t *testing.T) {
	_, nc := runNatsServer(t)
	msgs := subscribe(t, nc, "gnss.dev42.location")

	pub := New(nc, "dev42", zap.NewNop())
	pub.OnLocation(device.Location{
		Latitude:      45.3833,
		Longitude:     9.5,
		Speed:         10,
		PositionValid: true,
		SpeedValid:    true,
	})

	msg := nextMsg(t, msgs)
	var got locationMessage
	assert.NilError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, 45.3833, got.Latitude)
	assert.Equal(t, 9.5, got.Longitude)
	assert.Equal(t, true, got.SpeedValid)
	assert.Equal(t, false, got.BearingValid)
}

func TestPublishSatellites(t *testing.T) {
	_, nc := runNatsServer(t)
	msgs := subscribe(t, nc, "gnss.dev42.satellites")

	pub := New(nc, "dev42", zap.NewNop())
	pub.OnSatellites([]device.SatelliteInfo{
		{ID: device.SatelliteIDFromPRN(12), Elevation: 45, Azimuth: 120, SNR: 33, Tracked: true, UsedInFix: true},
		{ID: device.SatelliteIDFromPRN(78)},
	})

	msg := nextMsg(t, msgs)
	var got []satelliteMessage
	assert.NilError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, 2, len(got))
	assert.Equal(t, int16(12), got[0].PRN)
	assert.Equal(t, true, got[0].Tracked)
	assert.Equal(t, int16(78), got[1].PRN)
	assert.Equal(t, false, got[1].Tracked)
}

func TestPublishGeofenceTransition(t *testing.T) {
	_, nc := runNatsServer(t)
	msgs := subscribe(t, nc, "gnss.dev42.geofence.transition")

	pub := New(nc, "dev42", zap.NewNop())
	pub.OnGeofenceTransition(geofence.TransitionEvent{
		GeofenceID:  7,
		Transition:  geofence.TransitionEntered,
		TimestampMs: 1609588800000,
		Location:    device.Location{Latitude: 45, Longitude: 9, PositionValid: true},
	})

	msg := nextMsg(t, msgs)
	var got geofenceTransitionMessage
	assert.NilError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, int32(7), got.GeofenceID)
	assert.Equal(t, "entered", got.Transition)
	assert.Equal(t, 45.0, got.Location.Latitude)
}

func TestPublishStatusAndAvailability(t *testing.T) {
	_, nc := runNatsServer(t)
	statusMsgs := subscribe(t, nc, "gnss.dev42.status")
	geofenceMsgs := subscribe(t, nc, "gnss.dev42.geofence.status")

	pub := New(nc, "dev42", zap.NewNop())
	pub.OnStatus(session.StatusSessionBegin)
	pub.OnGeofenceAvailability(true, device.Location{})

	msg := nextMsg(t, statusMsgs)
	var status statusMessage
	assert.NilError(t, json.Unmarshal(msg.Data, &status))
	assert.Equal(t, "session-begin", status.Status)

	msg = nextMsg(t, geofenceMsgs)
	var gf geofenceStatusMessage
	assert.NilError(t, json.Unmarshal(msg.Data, &gf))
	assert.Equal(t, true, gf.Available)
}
