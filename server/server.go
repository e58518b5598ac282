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

// Package server implements the stdsc multi-connection listening server:
// the accept loop, one worker goroutine per accepted connection running the
// receive-dispatch-acknowledge loop, and graceful stop/wait.
package server

import (
	"errors"
	"net"
	"sync"
	"time"

	libatm "github.com/nabbar/stdsc/atomic"
	liberr "github.com/nabbar/stdsc/errors"
	"github.com/nabbar/stdsc/errors/pool"
	"github.com/nabbar/stdsc/handler"
	"github.com/nabbar/stdsc/logger"
	loglvl "github.com/nabbar/stdsc/logger/level"
	"github.com/nabbar/stdsc/socket"
	"github.com/nabbar/stdsc/state"
)

// acceptPollInterval bounds each accept() call so the loop can observe the
// stop flag promptly instead of blocking forever on a quiet listener.
const acceptPollInterval = 500 * time.Millisecond

// Collector receives optional instrumentation events. A nil Collector (the
// zero value of Server's field) means "no metrics"; every call site nil-checks
// before invoking it. See github.com/nabbar/stdsc/metrics for the Prometheus
// implementation.
type Collector interface {
	ConnectionOpened()
	ConnectionClosed()
	PacketHandled(group string, accepted bool)
	WorkerError()
}

// Server listens on one TCP port and runs one worker per accepted connection
// against a shared handler.Registry and a per-connection clone of an initial
// state.StateContext template.
type Server struct {
	port     int
	registry *handler.Registry
	initial  *state.StateContext
	log      logger.Logger
	metrics  Collector

	ln       *socket.Listener
	stopping libatm.Value[bool]
	errs     pool.Pool

	wg      sync.WaitGroup
	workers libatm.MapTyped[string, *worker]

	acceptErr error
	acceptWg  sync.WaitGroup
}

// New builds a Server. log and metrics may be nil (logging/metrics become
// no-ops). initial is cloned once per accepted connection; the Server never
// mutates the template itself.
func New(port int, initial *state.StateContext, registry *handler.Registry, log logger.Logger, metrics Collector) *Server {
	s := &Server{
		port:     port,
		registry: registry,
		initial:  initial,
		log:      log,
		metrics:  metrics,
		errs:     pool.New(),
		workers:  libatm.NewMapTyped[string, *worker](),
		stopping: libatm.NewValue[bool](),
	}
	s.stopping.Store(false)
	return s
}

// Start binds the listening socket and begins accepting connections. When
// async is false, Start blocks until the server is stopped (via Stop from
// another goroutine) and all workers have exited. When async is true, Start
// returns immediately after the listener is bound and the accept loop is
// running in the background; the caller uses Stop + Wait.
func (s *Server) Start(async bool) liberr.Error {
	ln, err := socket.Listen(s.port)
	if err != nil {
		return err
	}
	s.ln = ln

	s.acceptWg.Add(1)
	go s.acceptLoop()

	if async {
		return nil
	}

	s.acceptWg.Wait()
	s.wg.Wait()
	return liberr.Make(s.acceptErr)
}

// Addr returns the listener's bound local address. It is nil until Start has
// successfully bound the socket.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Stop requests the accept loop to stop accepting new connections. Workers
// already running continue until their peer disconnects, sends Exit, or a
// transport error occurs; Stop does not cancel them.
func (s *Server) Stop() {
	s.stopping.Store(true)
}

// Wait blocks until the accept loop and every spawned worker have exited,
// then returns any error recorded by the accept loop or by a worker.
func (s *Server) Wait() liberr.Error {
	s.acceptWg.Wait()
	s.wg.Wait()

	if s.acceptErr != nil {
		return liberr.Make(s.acceptErr)
	}
	return liberr.MakeIfError(s.errs.Error())
}

func (s *Server) acceptLoop() {
	defer s.acceptWg.Done()
	defer func() { _ = s.ln.Close() }()

	for !s.stopping.Load() {
		conn, err := s.ln.Accept(acceptPollInterval)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				// Poll-interval timeout: expected, lets the loop re-check
				// the stop flag. Silent.
				continue
			}
			s.acceptErr = err
			if s.log != nil {
				s.log.LogDetails(loglvl.ErrorLevel, "accept loop stopped on error", nil, []error{err}, nil)
			}
			return
		}

		if s.metrics != nil {
			s.metrics.ConnectionOpened()
		}

		w := newWorker(conn, s.initial.Clone(), s.registry, s.log, s.metrics, s.errs, func() {
			s.registry.DropConnection(conn.ConnectionID())
			s.workers.Delete(conn.ConnectionID())
			if s.metrics != nil {
				s.metrics.ConnectionClosed()
			}
		})

		s.workers.Store(conn.ConnectionID(), w)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			w.run()
		}()
	}
}
