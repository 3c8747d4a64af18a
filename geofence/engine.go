// Package geofence tracks circular regions against the stream of position
// fixes and reports entry, exit and uncertainty transitions.
package geofence

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/openfms/teseo-device/device"
	"github.com/openfms/teseo-device/geo"
	"github.com/openfms/teseo-device/observability"
)

// Transition is a bitmask of reportable boundary crossings.
type Transition uint8

const (
	TransitionEntered   Transition = 1 << 0
	TransitionExited    Transition = 1 << 1
	TransitionUncertain Transition = 1 << 2

	transitionMaskAll = TransitionEntered | TransitionExited | TransitionUncertain
)

func (t Transition) String() string {
	switch t {
	case TransitionEntered:
		return "entered"
	case TransitionExited:
		return "exited"
	case TransitionUncertain:
		return "uncertain"
	}
	return "none"
}

// ZoneState is the persisted relation of the last fix to a geofence.
type ZoneState int

const (
	ZoneUnknown ZoneState = iota
	ZoneInside
	ZoneOutside
)

func (s ZoneState) String() string {
	switch s {
	case ZoneInside:
		return "inside"
	case ZoneOutside:
		return "outside"
	}
	return "unknown"
}

// TrackingStatus gates whether a geofence participates in evaluation.
type TrackingStatus int

const (
	StatusTracking TrackingStatus = iota
	StatusPaused
	StatusRemoving
)

// Result is the synchronous outcome of a geofence control operation.
type Result int

const (
	Success Result = iota
	ErrorIDExists
	ErrorIDUnknown
	ErrorInvalidTransition
	ErrorGeneric
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case ErrorIDExists:
		return "id-exists"
	case ErrorIDUnknown:
		return "id-unknown"
	case ErrorInvalidTransition:
		return "invalid-transition"
	}
	return "generic-error"
}

// Geofence is one monitored circular region.
type Geofence struct {
	ID                   int32
	Latitude             float64
	Longitude            float64
	RadiusMeters         float64
	MonitoredTransitions Transition
	ResponsivenessMs     int64
	UnknownTimerMs       int64

	trackingStatus   TrackingStatus
	state            ZoneState
	lastTransition   Transition
	lastTransitionMs int64
}

// TransitionEvent is emitted when a monitored geofence boundary is crossed.
type TransitionEvent struct {
	GeofenceID  int32
	Location    device.Location
	Transition  Transition
	TimestampMs int64
}

// EventSink receives geofence transitions and system availability changes.
type EventSink interface {
	OnGeofenceTransition(ev TransitionEvent)
	OnGeofenceAvailability(available bool, lastLocation device.Location)
}

// Engine owns the geofence registry. One mutex serializes control
// operations arriving from the API side with the location evaluation driven
// by the decode goroutine.
type Engine struct {
	mu      sync.Mutex
	zones   map[int32]*Geofence
	sink    EventSink
	log     *zap.Logger
	now     func() int64
	lastLoc device.Location
}

func NewEngine(sink EventSink, logger *zap.Logger) *Engine {
	return &Engine{
		zones: make(map[int32]*Geofence),
		sink:  sink,
		log:   logger,
		now:   func() int64 { return time.Now().UnixMilli() },
	}
}

// Add registers a new geofence, initially in the unknown state.
func (e *Engine) Add(zone Geofence) Result {
	if zone.MonitoredTransitions&^transitionMaskAll != 0 {
		return ErrorInvalidTransition
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.zones[zone.ID]; ok {
		return ErrorIDExists
	}
	zone.trackingStatus = StatusTracking
	zone.state = ZoneUnknown
	e.zones[zone.ID] = &zone
	e.log.Info("geofence added",
		zap.Int32("id", zone.ID),
		zap.Float64("radius", zone.RadiusMeters),
	)
	return Success
}

// Remove drops a geofence and its history.
func (e *Engine) Remove(id int32) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	zone, ok := e.zones[id]
	if !ok {
		return ErrorIDUnknown
	}
	zone.trackingStatus = StatusRemoving
	delete(e.zones, id)
	e.log.Info("geofence removed", zap.Int32("id", id))
	return Success
}

// Pause keeps the geofence and its state but stops evaluation.
func (e *Engine) Pause(id int32) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	zone, ok := e.zones[id]
	if !ok {
		return ErrorIDUnknown
	}
	zone.trackingStatus = StatusPaused
	return Success
}

// Resume restarts evaluation with a replacement transition mask.
func (e *Engine) Resume(id int32, monitored Transition) Result {
	if monitored&^transitionMaskAll != 0 {
		return ErrorInvalidTransition
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	zone, ok := e.zones[id]
	if !ok {
		return ErrorIDUnknown
	}
	zone.trackingStatus = StatusTracking
	zone.MonitoredTransitions = monitored
	return Success
}

// Zone returns a copy of a registered geofence.
func (e *Engine) Zone(id int32) (Geofence, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	zone, ok := e.zones[id]
	if !ok {
		return Geofence{}, false
	}
	return *zone, true
}

// State reports the persisted zone relation for a geofence.
func (e *Engine) State(id int32) (ZoneState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	zone, ok := e.zones[id]
	if !ok {
		return ZoneUnknown, false
	}
	return zone.state, true
}

// SetAvailable reports geofencing system availability, driven by the
// navigation session lifecycle rather than individual geofences.
func (e *Engine) SetAvailable(available bool) {
	e.mu.Lock()
	lastLoc := e.lastLoc
	e.mu.Unlock()
	if e.sink != nil {
		e.sink.OnGeofenceAvailability(available, lastLoc)
	}
}

// OnLocation evaluates every tracking geofence against a new fix. Called
// from the decode goroutine on each cycle broadcast.
func (e *Engine) OnLocation(loc device.Location) {
	if !loc.PositionValid {
		return
	}
	accuracy := 0.0
	if loc.AccuracyValid {
		accuracy = loc.Accuracy
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastLoc = loc
	for _, zone := range e.zones {
		if zone.trackingStatus != StatusTracking {
			continue
		}
		e.evaluate(zone, loc, accuracy)
	}
}

// evaluate refines the raw inside/outside decision with the accuracy band:
// a fix beyond the radius but within its accuracy circle of the boundary
// lands in the unknown state instead of flapping between inside and outside.
func (e *Engine) evaluate(zone *Geofence, loc device.Location, accuracy float64) {
	distance := geo.Distance(zone.Latitude, zone.Longitude, loc.Latitude, loc.Longitude)

	refined := ZoneInside
	if distance > zone.RadiusMeters {
		refined = ZoneUnknown
		if distance-accuracy > zone.RadiusMeters {
			refined = ZoneOutside
		}
	}

	if refined == zone.state {
		return
	}

	transition := transitionFor(zone.state, refined)
	zone.state = refined
	if transition == 0 {
		return
	}
	if transition == zone.lastTransition {
		return
	}
	if zone.MonitoredTransitions&transition == 0 {
		return
	}

	zone.lastTransition = transition
	zone.lastTransitionMs = e.now()
	observability.GeofenceTransitions.WithLabelValues(transition.String()).Inc()
	e.log.Info("geofence transition",
		zap.Int32("id", zone.ID),
		zap.String("transition", transition.String()),
		zap.Float64("distance", distance),
	)
	if e.sink != nil {
		e.sink.OnGeofenceTransition(TransitionEvent{
			GeofenceID:  zone.ID,
			Location:    loc,
			Transition:  transition,
			TimestampMs: zone.lastTransitionMs,
		})
	}
}

// transitionFor maps a state change to the transition it reports.
func transitionFor(from, to ZoneState) Transition {
	switch {
	case to == ZoneInside && (from == ZoneOutside || from == ZoneUnknown):
		return TransitionEntered
	case to == ZoneOutside && (from == ZoneInside || from == ZoneUnknown):
		return TransitionExited
	case to == ZoneUnknown:
		return TransitionUncertain
	}
	return 0
}
