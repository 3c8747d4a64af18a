package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SentencesFramed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gnss_sentences_framed_total",
		Help: "Sentence frames emitted by the stream framer",
	})
	SentencesDecoded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gnss_sentences_decoded_total",
		Help: "Sentences decoded, by sentence id",
	}, []string{"sentence"})
	FrameErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gnss_frame_errors_total",
		Help: "Frames dropped before dispatch (too short)",
	})
	ChecksumErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gnss_checksum_errors_total",
		Help: "Frames dropped on checksum validation",
	})
	FieldParseErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gnss_field_parse_errors_total",
		Help: "Malformed sentence fields treated as absent",
	})
	TransportReadErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gnss_transport_read_errors_total",
		Help: "Transport read failures",
	})
	CommandsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gnss_commands_sent_total",
		Help: "Outbound commands written to the transport, by message id",
	}, []string{"message"})
	GeofenceTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gnss_geofence_transitions_total",
		Help: "Geofence transitions reported, by transition kind",
	}, []string{"transition"})
)

// StartMetricsServer serves /metrics and /healthz until the process exits.
func StartMetricsServer(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	_ = http.ListenAndServe(":"+port, mux)
}
