// Package session runs the reader/decoder/writer pipeline for one open
// receiver connection and owns the device state, decoder and geofence
// engine for its lifetime.
package session

import (
	"errors"
	"strconv"
	"sync"
	"sync/atomic"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"

	"github.com/openfms/teseo-device/device"
	"github.com/openfms/teseo-device/geofence"
	"github.com/openfms/teseo-device/nmea"
	"github.com/openfms/teseo-device/observability"
	"github.com/openfms/teseo-device/transport"
)

// Status is the navigation session lifecycle reported to the platform.
type Status int

const (
	StatusNone Status = iota
	StatusSessionBegin
	StatusSessionEnd
)

func (s Status) String() string {
	switch s {
	case StatusSessionBegin:
		return "session-begin"
	case StatusSessionEnd:
		return "session-end"
	}
	return "none"
}

// Capability bits advertised once at session start.
type Capability uint32

const (
	CapGeofencing       Capability = 1 << 0
	CapSatelliteInfo    Capability = 1 << 1
	CapNMEAForwarding   Capability = 1 << 2
	CapTimeInjection    Capability = 1 << 3
	CapAssistedPassword Capability = 1 << 4
)

// StatusListener receives session lifecycle events.
type StatusListener interface {
	OnStatus(status Status)
	OnCapabilities(caps Capability)
}

// Wakelock is held while the pipeline goroutines are alive.
type Wakelock interface {
	Acquire()
	Release()
}

type noopWakelock struct{}

func (noopWakelock) Acquire() {}
func (noopWakelock) Release() {}

type noopStatus struct{}

func (noopStatus) OnStatus(Status)           {}
func (noopStatus) OnCapabilities(Capability) {}

const (
	readBufferSize  = 1024
	frameQueueDepth = 64
	writeQueueDepth = 16

	// Consecutive read failures before the reader gives up.
	maxReadFailures = 10

	// Teseo firmware chokes on back-to-back commands; pace writes.
	writesPerSecond = 20
)

var ErrNotRunning = errors.New("session not running")

type outbound struct {
	id      device.MessageID
	payload []byte
}

// Session owns one receiver connection end to end.
type Session struct {
	tr       transport.Transport
	state    *device.State
	decoder  *device.Decoder
	engine   *geofence.Engine
	status   StatusListener
	wakelock Wakelock
	log      *zap.Logger

	mu       sync.Mutex
	frames   chan []byte
	writes   chan outbound
	wg       sync.WaitGroup
	running  bool
	stopping atomic.Bool
	limiter  ratelimit.Limiter
}

// Options carries the optional collaborators; zero values get no-op
// implementations.
type Options struct {
	Listener       device.Listener
	GeofenceSink   geofence.EventSink
	StatusListener StatusListener
	Wakelock       Wakelock
	AssistanceSink device.AssistanceSink
}

// New wires a session over tr. The decoder broadcasts each completed cycle
// to opts.Listener and to the geofence engine.
func New(tr transport.Transport, opts Options, logger *zap.Logger) *Session {
	timeCtx := nmea.NewTimeContext(logger)
	state := device.NewState(timeCtx, logger)
	engine := geofence.NewEngine(opts.GeofenceSink, logger)

	listeners := device.Listeners{engineListener{engine}}
	if opts.Listener != nil {
		listeners = append(listeners, opts.Listener)
	}

	decoder := device.NewDecoder(state, listeners, logger)
	if opts.AssistanceSink != nil {
		decoder.SetAssistanceSink(opts.AssistanceSink)
	}

	status := StatusListener(noopStatus{})
	if opts.StatusListener != nil {
		status = opts.StatusListener
	}
	wakelock := Wakelock(noopWakelock{})
	if opts.Wakelock != nil {
		wakelock = opts.Wakelock
	}

	return &Session{
		tr:       tr,
		state:    state,
		decoder:  decoder,
		engine:   engine,
		status:   status,
		wakelock: wakelock,
		log:      logger,
		limiter:  ratelimit.New(writesPerSecond),
	}
}

func (s *Session) State() *device.State        { return s.state }
func (s *Session) Geofences() *geofence.Engine { return s.engine }

// InjectUTCTime anchors timestamp parsing to the given UTC day.
func (s *Session) InjectUTCTime(epochMs, referenceMs, uncertaintyMs int64) {
	s.state.TimeContext().InjectUTCTime(epochMs, referenceMs, uncertaintyMs)
}

// Teseo configuration block holding the constellation mask.
const constellationMaskParameter = "1200"

// SetConstellationMask asks the receiver to track only the given systems
// and records the mask once the command is queued.
func (s *Session) SetConstellationMask(mask device.ConstellationMask) error {
	params := [][]byte{
		[]byte(constellationMaskParameter),
		[]byte(strconv.FormatUint(uint64(mask), 10)),
	}
	if err := s.Send(device.MessageSetPar, params); err != nil {
		return err
	}
	s.state.SetConstellationMask(mask)
	return nil
}

// Start opens the transport and launches the three pipeline goroutines.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	if err := s.tr.Open(); err != nil {
		return err
	}
	if err := s.tr.Flush(); err != nil {
		s.log.Warn("transport flush failed", zap.Error(err))
	}

	s.frames = make(chan []byte, frameQueueDepth)
	s.writes = make(chan outbound, writeQueueDepth)
	s.stopping.Store(false)
	s.running = true

	s.wakelock.Acquire()
	s.status.OnCapabilities(CapGeofencing | CapSatelliteInfo | CapNMEAForwarding | CapTimeInjection | CapAssistedPassword)
	s.status.OnStatus(StatusSessionBegin)
	s.engine.SetAvailable(true)

	s.wg.Add(3)
	go s.readLoop()
	go s.decodeLoop()
	go s.writeLoop()

	s.log.Info("session started")
	return nil
}

// Stop closes the transport, drains the queued backlog and joins the
// pipeline. Stopping an already-stopped session is a no-op.
func (s *Session) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		s.log.Debug("stop requested on stopped session")
		return
	}
	s.running = false
	s.stopping.Store(true)
	writes := s.writes
	s.mu.Unlock()

	// Closing the descriptor releases the reader from its blocking read;
	// the reader poisons the frame queue on its way out so the decoder
	// drains before exiting.
	if err := s.tr.Close(); err != nil {
		s.log.Warn("transport close failed", zap.Error(err))
	}
	close(writes)
	s.wg.Wait()

	s.engine.SetAvailable(false)
	s.status.OnStatus(StatusSessionEnd)
	s.wakelock.Release()
	s.log.Info("session stopped")
}

// Send encodes a command and queues it for the writer. Queued commands are
// written in submission order.
func (s *Session) Send(id device.MessageID, params [][]byte) error {
	payload, err := device.EncodeCommand(id, s.state, params, s.log)
	if err != nil {
		return err
	}
	if payload == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return ErrNotRunning
	}
	s.writes <- outbound{id: id, payload: payload}
	return nil
}

func (s *Session) readLoop() {
	defer s.wg.Done()

	framer := nmea.NewFramer(func(frame []byte) {
		observability.SentencesFramed.Inc()
		s.frames <- frame
	})

	buf := make([]byte, readBufferSize)
	failures := 0
	for {
		n, err := s.tr.Read(buf)
		if err != nil {
			if s.stopping.Load() {
				break
			}
			failures++
			observability.TransportReadErrors.Inc()
			s.log.Error("transport read failed",
				zap.Error(err),
				zap.Int("consecutive", failures),
			)
			if failures >= maxReadFailures {
				s.log.Error("giving up on transport after repeated read failures")
				break
			}
			continue
		}
		failures = 0
		if n == 0 {
			s.log.Debug("zero-length transport read")
			continue
		}
		framer.Push(buf[:n])
	}

	s.frames <- nil
	s.log.Debug("reader exited")
}

func (s *Session) decodeLoop() {
	defer s.wg.Done()
	for frame := range s.frames {
		if frame == nil {
			break
		}
		s.decoder.Decode(frame)
	}
	s.log.Debug("decoder exited")
}

func (s *Session) writeLoop() {
	defer s.wg.Done()
	for out := range s.writes {
		s.limiter.Take()
		frame := nmea.EncodeSentence(out.payload)
		if _, err := s.tr.Write(frame); err != nil {
			s.log.Error("transport write failed", zap.Error(err))
			continue
		}
		observability.CommandsSent.WithLabelValues(out.id.String()).Inc()
		s.log.Debug("command written", zap.String("message", out.id.String()))
	}
	s.log.Debug("writer exited")
}

// engineListener feeds cycle broadcasts into the geofence engine.
type engineListener struct {
	engine *geofence.Engine
}

func (e engineListener) OnNMEA(int64, string)                {}
func (e engineListener) OnLocation(loc device.Location)      { e.engine.OnLocation(loc) }
func (e engineListener) OnSatellites([]device.SatelliteInfo) {}
