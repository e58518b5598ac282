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

package server

import (
	libatm "github.com/nabbar/stdsc/atomic"
	liberr "github.com/nabbar/stdsc/errors"
	"github.com/nabbar/stdsc/errors/pool"
	"github.com/nabbar/stdsc/handler"
	"github.com/nabbar/stdsc/logger"
	loglvl "github.com/nabbar/stdsc/logger/level"
	"github.com/nabbar/stdsc/packet"
	"github.com/nabbar/stdsc/socket"
	"github.com/nabbar/stdsc/state"
)

// worker owns one accepted connection: its own state.StateContext clone, a
// reference to the shared handler.Registry, and a last-error slot holding the
// error that ended the worker. No logger error sink is registered; callback
// errors answered with Reject are not stored in the slot.
type worker struct {
	conn     *socket.Socket
	registry *handler.Registry
	state    *state.StateContext
	log      logger.Logger
	metrics  Collector
	pool     pool.Pool
	onExit   func()

	lastErr libatm.Value[error]
}

func newWorker(conn *socket.Socket, st *state.StateContext, registry *handler.Registry, log logger.Logger, metrics Collector, errs pool.Pool, onExit func()) *worker {
	w := &worker{
		conn:     conn,
		registry: registry,
		state:    st,
		log:      log,
		metrics:  metrics,
		pool:     errs,
		onExit:   onExit,
		lastErr:  libatm.NewValue[error](),
	}

	if log != nil {
		if sub, err := log.Clone(); err == nil {
			sub.SetFields(sub.GetFields().Add("connection_id", conn.ConnectionID()))
			w.log = sub
		}
	}

	return w
}

// RecordError stores err in the worker's last-error slot. fail calls it for
// every error that ends the worker; errors logged through the worker's logger
// are not forwarded here.
func (w *worker) RecordError(err error) {
	w.lastErr.Store(err)
}

// LastError returns the most recent error recorded for this connection, or
// nil if none occurred.
func (w *worker) LastError() error {
	return w.lastErr.Load()
}

// run executes the per-connection loop: receive, dispatch, acknowledge,
// until the peer sends Exit or an unrecoverable error occurs.
func (w *worker) run() {
	defer w.onExit()
	defer func() { _ = w.conn.Close() }()
	defer func() { _ = w.conn.Shutdown() }()

	connID := w.conn.ConnectionID()

	for {
		pkt, rerr := w.conn.RecvPacket(socket.Infinite)
		if rerr != nil {
			w.fail(rerr)
			return
		}

		if pkt.Code == packet.Exit {
			return
		}

		_, derr := w.registry.Dispatch(connID, w.conn, pkt, w.state)
		if derr != nil && liberr.IsKind(derr, liberr.KindCallback) {
			if w.metrics != nil {
				w.metrics.PacketHandled(groupName(pkt.Code), false)
			}
			if aerr := w.conn.SendPacket(packet.New(packet.Reject)); aerr != nil {
				w.fail(aerr)
				return
			}
			continue
		}
		if derr != nil {
			w.fail(derr)
			return
		}

		if w.metrics != nil {
			w.metrics.PacketHandled(groupName(pkt.Code), true)
		}
		if aerr := w.conn.SendPacket(packet.New(packet.Accept)); aerr != nil {
			w.fail(aerr)
			return
		}
	}
}

func (w *worker) fail(err liberr.Error) {
	w.RecordError(err)
	w.pool.Add(err)
	if w.metrics != nil {
		w.metrics.WorkerError()
	}
	if w.log != nil {
		w.log.LogDetails(loglvl.ErrorLevel, "connection worker exiting on error", nil, []error{err}, nil)
	}
}

func groupName(code packet.Code) string {
	if code.IsReserved() {
		return "reserved"
	}
	if g, ok := code.Group(); ok {
		switch g {
		case packet.GroupRequest:
			return "request"
		case packet.GroupData:
			return "data"
		case packet.GroupDownload:
			return "download"
		case packet.GroupUpDownload:
			return "updownload"
		}
	}
	return "unknown"
}
