// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package steer

import "log/slog"

// Option configures a [Driver].
type Option func(*config)

type config struct {
	log     *slog.Logger
	metrics *Metrics
}

// WithLogger sets the driver's logger. New also hands it to the model it
// creates. A nil logger discards.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.log = l }
}

// WithMetrics attaches Prometheus collectors created by [NewMetrics].
func WithMetrics(m *Metrics) Option {
	return func(c *config) { c.metrics = m }
}
