package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	processTotal      *prometheus.CounterVec
	processDuration   *prometheus.HistogramVec
	processInFlight   prometheus.Gauge
	attemptsPerRun    prometheus.Histogram
	completenessScore prometheus.Histogram
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ci",
			Subsystem: "worker",
			Name:      "contract_process_total",
			Help:      "Total processed contracts by terminal status.",
		},
		[]string{"service", "status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ci",
			Subsystem: "worker",
			Name:      "contract_process_duration_seconds",
			Help:      "Contract processing duration in seconds by terminal status.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 540, 600},
		},
		[]string{"service", "status"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ci",
			Subsystem: "worker",
			Name:      "contract_process_in_flight",
			Help:      "Number of contracts currently being processed.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	attemptsPerRun := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ci",
			Subsystem: "worker",
			Name:      "contract_process_attempts",
			Help:      "Attempts consumed per contract before reaching a terminal state.",
			Buckets:   []float64{1, 2, 3},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	completenessScore := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ci",
			Subsystem: "worker",
			Name:      "contract_completeness_score",
			Help:      "Distribution of completeness scores for completed contracts.",
			Buckets:   []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(processTotal, processDuration, processInFlight, attemptsPerRun, completenessScore)

	return &WorkerMetrics{
		registry:          registry,
		processTotal:      processTotal,
		processDuration:   processDuration,
		processInFlight:   processInFlight,
		attemptsPerRun:    attemptsPerRun,
		completenessScore: completenessScore,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartContract() {
	m.processInFlight.Inc()
}

func (m *WorkerMetrics) FinishContract(service string, duration time.Duration, attempts int, err error) {
	m.processInFlight.Dec()

	status := "completed"
	if err != nil {
		status = "failed"
	}

	m.processTotal.WithLabelValues(service, status).Inc()
	m.processDuration.WithLabelValues(service, status).Observe(duration.Seconds())
	if attempts > 0 {
		m.attemptsPerRun.Observe(float64(attempts))
	}
}

func (m *WorkerMetrics) ObserveCompletenessScore(score float64) {
	m.completenessScore.Observe(score)
}
