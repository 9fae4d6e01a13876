package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "harvestguard_"

	ResultSent    = "sent"
	ResultFailed  = "failed"
	ResultSkipped = "skipped"
)

var (
	registerOnce sync.Once

	advisoryEvaluations *prometheus.CounterVec
	lossEstimates       *prometheus.CounterVec
	evaluatorErrors     *prometheus.CounterVec
	criticalAlerts      *prometheus.CounterVec
	weatherFetchLatency *prometheus.HistogramVec
)

// Init registers evaluator and alert metrics with the default registry.
func Init() {
	registerOnce.Do(func() {
		advisoryEvaluations = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "advisory_evaluations_total",
				Help: "Weather advisories issued by level",
			},
			[]string{"level"},
		)
		lossEstimates = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "loss_estimates_total",
				Help: "Crop loss estimates by risk level",
			},
			[]string{"risk"},
		)
		evaluatorErrors = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "evaluator_errors_total",
				Help: "Evaluator failures by evaluator and reason",
			},
			[]string{"evaluator", "reason"},
		)
		criticalAlerts = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "critical_alerts_total",
				Help: "Critical alert deliveries by result",
			},
			[]string{"result"},
		)
		weatherFetchLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "weather_fetch_latency_seconds",
				Help:    "Weather collaborator latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			advisoryEvaluations,
			lossEstimates,
			evaluatorErrors,
			criticalAlerts,
			weatherFetchLatency,
		)
	})
}

// IncAdvisory counts an issued advisory.
func IncAdvisory(level string) {
	if advisoryEvaluations != nil {
		advisoryEvaluations.WithLabelValues(level).Inc()
	}
}

// IncLossEstimate counts a completed loss estimate.
func IncLossEstimate(risk string) {
	if lossEstimates != nil {
		lossEstimates.WithLabelValues(risk).Inc()
	}
}

// IncEvaluatorError counts an evaluator failure.
func IncEvaluatorError(evaluator, reason string) {
	if reason == "" {
		reason = "unknown"
	}
	if evaluatorErrors != nil {
		evaluatorErrors.WithLabelValues(evaluator, reason).Inc()
	}
}

// IncCriticalAlert counts a critical alert delivery attempt.
func IncCriticalAlert(result string) {
	if criticalAlerts != nil {
		criticalAlerts.WithLabelValues(result).Inc()
	}
}

// ObserveWeatherFetch records weather collaborator latency.
func ObserveWeatherFetch(result string, seconds float64) {
	if weatherFetchLatency != nil {
		weatherFetchLatency.WithLabelValues(result).Observe(seconds)
	}
}
