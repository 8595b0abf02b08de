package services

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes workspace and artifact counters. A nil *Metrics is a no-op.
type Metrics struct {
	gatherer prometheus.Gatherer

	Mutations     *prometheus.CounterVec
	Artifacts     *prometheus.CounterVec
	BuildDuration *prometheus.HistogramVec
	Features      prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sitemeasure_store_mutations_total",
		Help: "Geometry store mutations by operation.",
	}, []string{"op"})
	artifacts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sitemeasure_artifacts_total",
		Help: "Reports and exports produced, by format and outcome.",
	}, []string{"format", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sitemeasure_artifact_build_seconds",
		Help:    "Time spent assembling an artifact.",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"format"})
	features := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sitemeasure_features",
		Help: "Features currently held by the workspace.",
	})

	m := &Metrics{gatherer: gatherer}
	var err error
	if m.Mutations, err = register(reg, mutations, "sitemeasure_store_mutations_total"); err != nil {
		return nil, err
	}
	if m.Artifacts, err = register(reg, artifacts, "sitemeasure_artifacts_total"); err != nil {
		return nil, err
	}
	if m.BuildDuration, err = register(reg, duration, "sitemeasure_artifact_build_seconds"); err != nil {
		return nil, err
	}
	if m.Features, err = register(reg, features, "sitemeasure_features"); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return nil
	}
	return m.gatherer
}

func (m *Metrics) Mutation(op string, featureCount int) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(op).Inc()
	m.Features.Set(float64(featureCount))
}

func (m *Metrics) Artifact(format string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Artifacts.WithLabelValues(format, outcome).Inc()
	m.BuildDuration.WithLabelValues(format).Observe(time.Since(started).Seconds())
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T, name string) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return c, nil
}
