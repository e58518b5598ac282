/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package metrics provides a Prometheus client_golang implementation of
// server.Collector. It is entirely optional: a nil Collector is a valid,
// no-op value for server.New.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ServerCollector implements server.Collector with three Prometheus
// metrics: active connection gauge, packets-handled counter labeled by
// control-code group and ack outcome, and a worker-error counter.
type ServerCollector struct {
	connectionsActive prometheus.Gauge
	packetsTotal      *prometheus.CounterVec
	workerErrorsTotal prometheus.Counter
}

// NewServerCollector builds a ServerCollector and registers its metrics
// against reg. Passing prometheus.DefaultRegisterer registers against the
// global registry.
func NewServerCollector(reg prometheus.Registerer) *ServerCollector {
	c := &ServerCollector{
		connectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stdsc_server_connections_active",
			Help: "Number of currently open server-side connections.",
		}),
		packetsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stdsc_server_packets_total",
			Help: "Packets dispatched by the server, labeled by control-code group and ack outcome.",
		}, []string{"group", "outcome"}),
		workerErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stdsc_server_worker_errors_total",
			Help: "Connection workers that exited due to an unrecoverable error.",
		}),
	}

	if reg != nil {
		reg.MustRegister(c.connectionsActive, c.packetsTotal, c.workerErrorsTotal)
	}

	return c
}

// ConnectionOpened implements server.Collector.
func (c *ServerCollector) ConnectionOpened() {
	c.connectionsActive.Inc()
}

// ConnectionClosed implements server.Collector.
func (c *ServerCollector) ConnectionClosed() {
	c.connectionsActive.Dec()
}

// PacketHandled implements server.Collector.
func (c *ServerCollector) PacketHandled(group string, accepted bool) {
	outcome := "rejected"
	if accepted {
		outcome = "accepted"
	}
	c.packetsTotal.WithLabelValues(group, outcome).Inc()
}

// WorkerError implements server.Collector.
func (c *ServerCollector) WorkerError() {
	c.workerErrorsTotal.Inc()
}
