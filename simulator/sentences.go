package simulator

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// walkState is a slow random walk around a starting point.
type walkState struct {
	lat, lon float64
	altitude float64
	speedKmh float64
	course   float64
	rng      *rand.Rand
}

func newWalkState() walkState {
	return walkState{
		lat:      45.3833,
		lon:      9.5,
		altitude: 120,
		speedKmh: 36,
		course:   87.2,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (w *walkState) step() {
	w.lat += (w.rng.Float64() - 0.5) * 0.0002
	w.lon += (w.rng.Float64() - 0.5) * 0.0002
	w.altitude += (w.rng.Float64() - 0.5) * 2
	w.speedKmh = math.Max(0, w.speedKmh+(w.rng.Float64()-0.5)*4)
	w.course = math.Mod(w.course+(w.rng.Float64()-0.5)*6+360, 360)
}

// degMin renders a coordinate in the ddmm.mmmm wire form.
func degMin(value float64, degDigits int) string {
	abs := math.Abs(value)
	deg := int(abs)
	minutes := (abs - float64(deg)) * 60
	return fmt.Sprintf("%0*d%07.4f", degDigits, deg, minutes)
}

func hemisphere(value float64, positive, negative string) string {
	if value < 0 {
		return negative
	}
	return positive
}

// cyclePayloads builds one reporting cycle, checksum-less: the framer on
// the wire side adds $ and *HH.
func cyclePayloads(w walkState, now time.Time) []string {
	timeStr := now.UTC().Format("150405") + ".000"

	gga := fmt.Sprintf("GPGGA,%s,%s,%s,%s,%s,1,04,1.1,%.1f,M,0.0,M,,",
		timeStr,
		degMin(w.lat, 2), hemisphere(w.lat, "N", "S"),
		degMin(w.lon, 3), hemisphere(w.lon, "E", "W"),
		w.altitude)

	gsv := "GPGSV,1,1,04,01,40,083,46,02,17,308,41,12,07,344,39,14,22,228,45"
	gsa := "GPGSA,A,3,01,02,12,14,,,,,,,,,1.8,1.1,1.4"

	vtg := fmt.Sprintf("GPVTG,%.1f,T,,M,%.1f,N,%.1f,K,A",
		w.course, w.speedKmh/1.852, w.speedKmh)

	return []string{gga, gsv, gsa, vtg}
}
