package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "metar_map"

// Metrics holds the Prometheus counters, histograms, and gauges for the map service.
type Metrics struct {
	// Feed metrics.
	FetchRequests *prometheus.CounterVec // labels: outcome={success,fetch_error,parse_error}
	FetchDuration prometheus.Histogram
	FetchRetries  prometheus.Counter

	// Cycle metrics.
	Cycles             *prometheus.CounterVec // labels: state={active,inactive,failed}
	AirportsByCategory *prometheus.GaugeVec   // labels: category={VFR,MVFR,IFR,LIFR,UNKNOWN}
	LastSuccess        prometheus.Gauge
	ControllerRunning  prometheus.Gauge

	// Output metrics.
	FrameCommits    *prometheus.CounterVec // labels: outcome={success,error}
	LEDBrightness   prometheus.Gauge
	ReportsProduced prometheus.Counter

	// Control metrics.
	SettingsWrites *prometheus.CounterVec // labels: setting, outcome={success,error}
	Triggers       *prometheus.CounterVec // labels: outcome={accepted,busy,error}
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchRequests,
		m.FetchDuration,
		m.FetchRetries,
		m.Cycles,
		m.AirportsByCategory,
		m.LastSuccess,
		m.ControllerRunning,
		m.FrameCommits,
		m.LEDBrightness,
		m.ReportsProduced,
		m.SettingsWrites,
		m.Triggers,
	)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, to
// avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "METAR feed fetches by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of a METAR feed fetch including retries.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
		FetchRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_retries_total",
			Help:      "Feed requests retried after a transport or status failure.",
		}),
		Cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Schedule evaluations by resulting state.",
		}, []string{"state"}),
		AirportsByCategory: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "airports",
			Help:      "Airports in each flight category after the last successful fetch.",
		}, []string{"category"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful fetch and render.",
		}),
		ControllerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "controller_running",
			Help:      "1 when the schedule controller is running, 0 when shut down.",
		}),
		FrameCommits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frame_commits_total",
			Help:      "LED frame commits by outcome.",
		}, []string{"outcome"}),
		LEDBrightness: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "led_brightness",
			Help:      "Current global LED brightness (0-255).",
		}),
		ReportsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_produced_total",
			Help:      "Airport reports written to the report topic.",
		}),
		SettingsWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settings_writes_total",
			Help:      "Durable settings writes by setting and outcome.",
		}, []string{"setting", "outcome"}),
		Triggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triggers_total",
			Help:      "Manual fetch triggers by outcome.",
		}, []string{"outcome"}),
	}
}

// SettingWritten records a durable settings write.
func (m *Metrics) SettingWritten(name string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.SettingsWrites.WithLabelValues(name, outcome).Inc()
}
