package simulator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openfms/teseo-device/device"
	"github.com/openfms/teseo-device/session"
	"github.com/openfms/teseo-device/transport"
)

func TestSimulatorDrivesFullPipeline(t *testing.T) {
	sim := NewTeseoDevice("127.0.0.1:0", 50*time.Millisecond, zap.NewNop())
	require.NoError(t, sim.Start())
	defer sim.Stop()

	locations := make(chan device.Location, 16)
	sess := session.New(transport.NewTCP(sim.Addr()), session.Options{
		Listener: locationChan(locations),
	}, zap.NewNop())
	require.NoError(t, sess.Start())
	defer sess.Stop()

	select {
	case loc := <-locations:
		assert.True(t, loc.PositionValid)
		assert.InDelta(t, 45.3833, loc.Latitude, 0.01)
		assert.InDelta(t, 9.5, loc.Longitude, 0.01)
		assert.True(t, loc.SpeedValid)
	case <-time.After(5 * time.Second):
		t.Fatal("no location decoded from simulator stream")
	}

	require.NoError(t, sess.Send(device.MessageGetVersions, nil))
	assert.Eventually(t, func() bool {
		_, ok := sess.State().ProductVersion("GNSSLIB")
		return ok
	}, 5*time.Second, 20*time.Millisecond)
}

type locationChan chan device.Location

func (c locationChan) OnNMEA(int64, string) {}

func (c locationChan) OnLocation(loc device.Location) {
	select {
	case c <- loc:
	default:
	}
}

func (c locationChan) OnSatellites([]device.SatelliteInfo) {}
