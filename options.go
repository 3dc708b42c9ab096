package patch

import (
	"github.com/dudk/patch/config"
	"github.com/dudk/patch/log"
	"github.com/dudk/patch/metric"
)

// Option provides a way to set functional parameters to graph.
type Option func(*Graph)

// WithLogger sets logger to graph. If this option is not provided,
// log.GetLogger is used.
func WithLogger(logger log.Logger) Option {
	return func(g *Graph) {
		g.log = logger
	}
}

// WithConfig applies settings to graph. Outputs declared without Caching
// option use the caching setting of config. Debug setting enables debug
// level of the graph logger only.
func WithConfig(c config.Config) Option {
	return func(g *Graph) {
		g.caching = c.Caching
		g.debug = c.Debug
	}
}

// WithMetric adds counters for all nodes of graph.
func WithMetric(m *metric.Metric) Option {
	return func(g *Graph) {
		g.metric = m
	}
}
