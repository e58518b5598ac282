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

package socket

import (
	"fmt"
	"net"
	"time"

	liberr "github.com/nabbar/stdsc/errors"
)

// Listener is a bound, listening TCP endpoint with SO_REUSEADDR set.
type Listener struct {
	ln *net.TCPListener
}

// Listen binds port on all interfaces with SO_REUSEADDR.
func Listen(port int) (*Listener, liberr.Error) {
	addr, err := net.ResolveTCPAddr("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, liberr.NewInvalidParam("invalid listen port", err)
	}

	ln, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return nil, liberr.NewSocket("failed to listen", err)
	}

	if terr := tuneListener(ln); terr != nil {
		_ = ln.Close()
		return nil, terr
	}

	return &Listener{ln: ln}, nil
}

// Accept blocks until a peer connects, or timeout elapses (Infinite waits
// forever). A KindSocket timeout error is distinguishable from any other
// accept failure via liberr.IsKind(err, liberr.KindSocket) plus the
// net.Error.Timeout() check on the wrapped parent.
func (l *Listener) Accept(timeout time.Duration) (*Socket, liberr.Error) {
	var deadline time.Time
	if timeout != Infinite {
		deadline = time.Now().Add(timeout)
	}
	if err := l.ln.SetDeadline(deadline); err != nil {
		return nil, liberr.NewSocket("failed to set accept deadline", err)
	}

	conn, err := l.ln.AcceptTCP()
	if err != nil {
		return nil, liberr.NewSocket("accept failed", err)
	}

	return wrap(conn)
}

// Addr returns the bound local address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Close releases the listening socket. Idempotent.
func (l *Listener) Close() liberr.Error {
	if err := l.ln.Close(); err != nil {
		return liberr.NewSocket("failed to close listener", err)
	}
	return nil
}
