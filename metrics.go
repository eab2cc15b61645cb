// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package steer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Clone modes reported by the clones counter.
const (
	cloneFresh = "fresh"
	cloneFull  = "full"
	cloneOrig  = "orig"
)

// Metrics are the Prometheus collectors of a driver. A nil *Metrics
// records nothing.
type Metrics struct {
	// Calls counts Calls handed to the controller, by kind.
	Calls *prometheus.CounterVec
	// Results counts Results delivered by Continue, by kind and result.
	Results *prometheus.CounterVec
	// Stops counts solves stopped by Continue(Stop) or Close.
	Stops prometheus.Counter
	// Clones counts Copy and CopyOrig, by mode (fresh, full, orig).
	Clones *prometheus.CounterVec
	// Solves counts completed solves, by terminal state.
	Solves *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Calls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "steer",
			Subsystem: "driver",
			Name:      "calls_total",
			Help:      "Solver callbacks suspended and handed to the controller",
		}, []string{"kind"}),
		Results: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "steer",
			Subsystem: "driver",
			Name:      "results_total",
			Help:      "Results delivered to suspended callbacks",
		}, []string{"kind", "result"}),
		Stops: f.NewCounter(prometheus.CounterOpts{
			Namespace: "steer",
			Subsystem: "driver",
			Name:      "stops_total",
			Help:      "In-flight solves stopped or abandoned by the controller",
		}),
		Clones: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "steer",
			Subsystem: "driver",
			Name:      "clones_total",
			Help:      "Driver clones by mode",
		}, []string{"mode"}),
		Solves: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "steer",
			Subsystem: "driver",
			Name:      "solves_total",
			Help:      "Completed solves by terminal state",
		}, []string{"state"}),
	}
}

func (m *Metrics) call(k Kind) {
	if m != nil {
		m.Calls.WithLabelValues(k.String()).Inc()
	}
}

func (m *Metrics) result(k Kind, r Result) {
	if m != nil {
		m.Results.WithLabelValues(k.String(), r.String()).Inc()
	}
}

func (m *Metrics) stop() {
	if m != nil {
		m.Stops.Inc()
	}
}

func (m *Metrics) clone(mode string) {
	if m != nil {
		m.Clones.WithLabelValues(mode).Inc()
	}
}

func (m *Metrics) solve(s State) {
	if m != nil {
		m.Solves.WithLabelValues(s.String()).Inc()
	}
}
