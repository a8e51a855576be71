package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry    *prometheus.Registry
	Runs        *prometheus.CounterVec
	FinalLoss   prometheus.Gauge
	Iterations  prometheus.Counter
	Duration    prometheus.Histogram
	Predictions *prometheus.CounterVec
}

// New registers the training collectors on a private registry, so several
// instances can coexist in tests.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "logreg",
			Name:      "training_runs_total",
			Help:      "Execuções de treino por resultado.",
		}, []string{"outcome"}),
		FinalLoss: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "logreg",
			Name:      "final_loss",
			Help:      "Entropia cruzada média da última execução concluída.",
		}),
		Iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "logreg",
			Name:      "iterations_total",
			Help:      "Iterações de gradiente executadas.",
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "logreg",
			Name:      "training_duration_seconds",
			Help:      "Duração das execuções de treino.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "logreg",
			Name:      "predictions_total",
			Help:      "Linhas pontuadas por origem do modelo.",
		}, []string{"source"}),
	}
	m.registry.MustRegister(m.Runs, m.FinalLoss, m.Iterations, m.Duration, m.Predictions)
	return m
}

func (m *Metrics) ObserveRun(iterations int, finalLoss float64, elapsed time.Duration, err error) {
	if err != nil {
		m.Runs.WithLabelValues("failed").Inc()
		return
	}
	m.Runs.WithLabelValues("trained").Inc()
	m.FinalLoss.Set(finalLoss)
	m.Iterations.Add(float64(iterations))
	m.Duration.Observe(elapsed.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
