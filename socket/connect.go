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

// Connect establishes one TCP connection to host:port, tuned the same way an
// accepted connection is. timeout bounds the connect attempt itself
// (Infinite uses the platform default).
func Connect(host string, port int, timeout time.Duration) (*Socket, liberr.Error) {
	addr := fmt.Sprintf("%s:%d", host, port)

	d := net.Dialer{}
	if timeout != Infinite {
		d.Timeout = timeout
	}

	conn, err := d.Dial("tcp", addr)
	if err != nil {
		return nil, liberr.NewSocket("failed to connect to "+addr, err)
	}

	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		_ = conn.Close()
		return nil, liberr.NewInvariant("dialed connection is not a TCP connection")
	}

	return wrap(tcpConn)
}
