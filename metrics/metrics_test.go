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

package metrics_test

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/stdsc/metrics"
	"github.com/nabbar/stdsc/server"
)

// satisfies ensures ServerCollector implements server.Collector without
// pulling prometheus into the server package itself.
var _ server.Collector = (*metrics.ServerCollector)(nil)

var _ = Describe("ServerCollector", func() {
	It("tracks active connections and worker errors", func() {
		reg := prometheus.NewRegistry()
		c := metrics.NewServerCollector(reg)

		c.ConnectionOpened()
		c.ConnectionOpened()
		c.ConnectionClosed()
		c.WorkerError()
		c.PacketHandled("data", true)
		c.PacketHandled("request", false)

		families, err := reg.Gather()
		Expect(err).To(BeNil())

		var sawPackets, sawErrors, sawActive bool
		for _, f := range families {
			switch f.GetName() {
			case "stdsc_server_connections_active":
				sawActive = true
				Expect(f.GetMetric()[0].GetGauge().GetValue()).To(Equal(1.0))
			case "stdsc_server_worker_errors_total":
				sawErrors = true
				Expect(f.GetMetric()[0].GetCounter().GetValue()).To(Equal(1.0))
			case "stdsc_server_packets_total":
				sawPackets = true
				Expect(len(f.GetMetric())).To(Equal(2))
			}
		}
		Expect(sawActive).To(BeTrue())
		Expect(sawErrors).To(BeTrue())
		Expect(sawPackets).To(BeTrue())
		Expect(strings.HasPrefix("stdsc_server_packets_total", "stdsc_server")).To(BeTrue())
	})
})
