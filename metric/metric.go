// Package metric counts activity of patch graphs with prometheus counters.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

const nodeLabel = "node"

const (
	// CallCounter counts calls of inputs, triggers and multi inputs.
	CallCounter = "patch_calls_total"
	// EvaluationCounter counts evaluations of outputs.
	EvaluationCounter = "patch_evaluations_total"
	// PropagationCounter counts values forwarded by outputs.
	PropagationCounter = "patch_propagations_total"
)

// Metric holds counters of a graph. A nil *Metric is valid and counts
// nothing.
type Metric struct {
	calls        *prometheus.CounterVec
	evaluations  *prometheus.CounterVec
	propagations *prometheus.CounterVec
}

// New creates counters and registers them in reg.
func New(reg prometheus.Registerer) (*Metric, error) {
	m := &Metric{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: CallCounter,
			Help: "Number of input, trigger and multi input calls.",
		}, []string{nodeLabel}),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: EvaluationCounter,
			Help: "Number of output evaluations.",
		}, []string{nodeLabel}),
		propagations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: PropagationCounter,
			Help: "Number of values forwarded through connections.",
		}, []string{nodeLabel}),
	}
	for _, c := range []prometheus.Collector{m.calls, m.evaluations, m.propagations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Call counts a receiver call on node.
func (m *Metric) Call(node string) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(node).Inc()
}

// Evaluation counts an output evaluation on node.
func (m *Metric) Evaluation(node string) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(node).Inc()
}

// Propagation counts a forwarded value from node.
func (m *Metric) Propagation(node string) {
	if m == nil {
		return
	}
	m.propagations.WithLabelValues(node).Inc()
}

// Calls returns the call counter of node.
func (m *Metric) Calls(node string) prometheus.Counter {
	return m.calls.WithLabelValues(node)
}

// Evaluations returns the evaluation counter of node.
func (m *Metric) Evaluations(node string) prometheus.Counter {
	return m.evaluations.WithLabelValues(node)
}

// Propagations returns the propagation counter of node.
func (m *Metric) Propagations(node string) prometheus.Counter {
	return m.propagations.WithLabelValues(node)
}
