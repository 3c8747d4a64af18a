package session

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/openfms/teseo-device/device"
	"github.com/openfms/teseo-device/nmea"
)

// memTransport feeds scripted receiver output to the reader and records
// everything the writer sends.
type memTransport struct {
	reads  chan []byte
	closed chan struct{}
	once   sync.Once

	mu      sync.Mutex
	written [][]byte
}

func newMemTransport() *memTransport {
	return &memTransport{
		reads:  make(chan []byte, 32),
		closed: make(chan struct{}),
	}
}

func (m *memTransport) Open() error  { return nil }
func (m *memTransport) Flush() error { return nil }

func (m *memTransport) Close() error {
	m.once.Do(func() { close(m.closed) })
	return nil
}

func (m *memTransport) Read(p []byte) (int, error) {
	select {
	case data := <-m.reads:
		return copy(p, data), nil
	case <-m.closed:
		return 0, io.EOF
	}
}

func (m *memTransport) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.written = append(m.written, append([]byte(nil), p...))
	return len(p), nil
}

func (m *memTransport) feed(line string) {
	m.reads <- []byte(line)
}

func (m *memTransport) allWritten() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.written))
	copy(out, m.written)
	return out
}

type chanListener struct {
	locations chan device.Location
	sentences chan string
}

func newChanListener() *chanListener {
	return &chanListener{
		locations: make(chan device.Location, 16),
		sentences: make(chan string, 64),
	}
}

func (c *chanListener) OnNMEA(_ int64, sentence string) { c.sentences <- sentence }
func (c *chanListener) OnLocation(loc device.Location)  { c.locations <- loc }
func (c *chanListener) OnSatellites([]device.SatelliteInfo) {}

type statusRecorder struct {
	mu       sync.Mutex
	statuses []Status
	caps     Capability
}

func (r *statusRecorder) OnStatus(s Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, s)
}

func (r *statusRecorder) OnCapabilities(caps Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.caps = caps
}

func (r *statusRecorder) snapshot() ([]Status, Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Status(nil), r.statuses...), r.caps
}

type countingWakelock struct {
	mu       sync.Mutex
	acquired int
	released int
}

func (w *countingWakelock) Acquire() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.acquired++
}

func (w *countingWakelock) Release() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.released++
}

// line wires a payload into a full on-the-wire sentence.
func line(payload string) string {
	return string(nmea.EncodeSentence([]byte(payload)))
}

func waitLocation(t *testing.T, ch chan device.Location) device.Location {
	t.Helper()
	select {
	case loc := <-ch:
		return loc
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for location broadcast")
		return device.Location{}
	}
}

func TestSessionDecodePipeline(t *testing.T) {
	tr := newMemTransport()
	listener := newChanListener()
	status := &statusRecorder{}
	wakelock := &countingWakelock{}

	sess := New(tr, Options{
		Listener:       listener,
		StatusListener: status,
		Wakelock:       wakelock,
	}, zap.NewNop())

	require.NoError(t, sess.Start())

	tr.feed(line("GPGGA,133742.000,4523.0000,N,00930.0000,E,1,08,1.1,25.0,M,47.0,M,,"))
	tr.feed(line("GPVTG,87.2,T,,M,5.0,N,36.0,K,A"))
	// Second cycle start broadcasts the fix decoded above.
	tr.feed(line("GPGGA,133743.000,4523.0000,N,00930.0000,E,1,08,1.1,25.0,M,47.0,M,,"))

	loc := waitLocation(t, listener.locations)
	assert.True(t, loc.PositionValid)
	assert.InDelta(t, 45.3833, loc.Latitude, 0.001)
	assert.InDelta(t, 9.5, loc.Longitude, 0.001)
	assert.True(t, loc.SpeedValid)
	assert.InDelta(t, 10.0, loc.Speed, 0.001)

	sess.Stop()

	statuses, caps := status.snapshot()
	assert.Equal(t, []Status{StatusSessionBegin, StatusSessionEnd}, statuses)
	assert.NotZero(t, caps&CapGeofencing)
	assert.Equal(t, 1, wakelock.acquired)
	assert.Equal(t, 1, wakelock.released)
}

func TestSessionSendWritesFramedCommand(t *testing.T) {
	tr := newMemTransport()
	sess := New(tr, Options{}, zap.NewNop())
	require.NoError(t, sess.Start())

	require.NoError(t, sess.Send(device.MessageGetVersions, nil))
	sess.Stop()

	written := tr.allWritten()
	require.Len(t, written, 1)
	assert.Equal(t, "$PSTMGETSWVER,255*17\r\n", string(written[0]))
}

func TestSessionSetConstellationMask(t *testing.T) {
	tr := newMemTransport()
	sess := New(tr, Options{}, zap.NewNop())
	require.NoError(t, sess.Start())

	mask := device.MaskGPS | device.MaskGLONASS
	require.NoError(t, sess.SetConstellationMask(mask))
	sess.Stop()

	written := tr.allWritten()
	require.Len(t, written, 1)
	want := nmea.EncodeSentence([]byte("PSTMSETPAR,1200,3"))
	assert.Equal(t, string(want), string(written[0]))
	assert.Equal(t, mask, sess.State().GetConstellationMask())
}

func TestSessionStopIdempotent(t *testing.T) {
	tr := newMemTransport()
	sess := New(tr, Options{}, zap.NewNop())
	require.NoError(t, sess.Start())

	sess.Stop()
	sess.Stop()

	assert.ErrorIs(t, sess.Send(device.MessageGetVersions, nil), ErrNotRunning)
}

func TestSessionQueuedCommandsDrainOnStop(t *testing.T) {
	tr := newMemTransport()
	sess := New(tr, Options{}, zap.NewNop())
	require.NoError(t, sess.Start())

	for i := 0; i < 5; i++ {
		require.NoError(t, sess.Send(device.MessageGetVersions, nil))
	}
	sess.Stop()

	assert.Len(t, tr.allWritten(), 5)
}

func TestReaderLogsZeroLengthRead(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	tr := newMemTransport()
	sess := New(tr, Options{}, zap.New(core))
	require.NoError(t, sess.Start())

	tr.feed("")
	assert.Eventually(t, func() bool {
		return logs.FilterMessage("zero-length transport read").Len() == 1
	}, 2*time.Second, 10*time.Millisecond)

	sess.Stop()
}

// failingTransport errors on every read.
type failingTransport struct {
	memTransport
	mu    sync.Mutex
	reads int
}

func (f *failingTransport) Read([]byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	return 0, io.ErrUnexpectedEOF
}

func TestReaderGivesUpAfterRepeatedFailures(t *testing.T) {
	tr := &failingTransport{memTransport: *newMemTransport()}
	sess := New(tr, Options{}, zap.NewNop())
	require.NoError(t, sess.Start())

	assert.Eventually(t, func() bool {
		tr.mu.Lock()
		defer tr.mu.Unlock()
		return tr.reads >= 10
	}, 2*time.Second, 10*time.Millisecond)

	sess.Stop()

	tr.mu.Lock()
	defer tr.mu.Unlock()
	assert.Equal(t, 10, tr.reads)
}
