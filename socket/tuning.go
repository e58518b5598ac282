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
	"net"

	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/stdsc/errors"
)

const (
	recvBufferBytes = 1 << 20 // 1 MiB
	sendBufferBytes = 1 << 20

	keepAliveIdleSec     = 60
	keepAliveIntervalSec = 30
	keepAliveCount       = 10
)

// tuneConn applies the fixed TCP options every live stdsc socket carries:
// TCP_NODELAY, 1 MiB send/receive buffers, and a tuned keepalive probe.
func tuneConn(conn *net.TCPConn) liberr.Error {
	if err := conn.SetNoDelay(true); err != nil {
		return liberr.NewSocket("failed to set TCP_NODELAY", err)
	}
	if err := conn.SetReadBuffer(recvBufferBytes); err != nil {
		return liberr.NewSocket("failed to set receive buffer size", err)
	}
	if err := conn.SetWriteBuffer(sendBufferBytes); err != nil {
		return liberr.NewSocket("failed to set send buffer size", err)
	}
	if err := conn.SetKeepAlive(true); err != nil {
		return liberr.NewSocket("failed to enable keepalive", err)
	}

	raw, err := conn.SyscallConn()
	if err != nil {
		return liberr.NewSocket("failed to access raw connection for keepalive tuning", err)
	}

	var sockErr error
	ctrlErr := raw.Control(func(fd uintptr) {
		if e := unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPIDLE, keepAliveIdleSec); e != nil {
			sockErr = e
			return
		}
		if e := unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPINTVL, keepAliveIntervalSec); e != nil {
			sockErr = e
			return
		}
		if e := unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPCNT, keepAliveCount); e != nil {
			sockErr = e
			return
		}
	})
	if ctrlErr != nil {
		return liberr.NewSocket("failed to reach raw connection for keepalive tuning", ctrlErr)
	}
	if sockErr != nil {
		return liberr.NewSocket("failed to tune keepalive probe interval", sockErr)
	}

	return nil
}

// tuneListener sets SO_REUSEADDR on the listening socket, matching the
// source implementation's bind-retry friendliness.
func tuneListener(l *net.TCPListener) liberr.Error {
	raw, err := l.SyscallConn()
	if err != nil {
		return liberr.NewSocket("failed to access raw listener for SO_REUSEADDR", err)
	}

	var sockErr error
	ctrlErr := raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if ctrlErr != nil {
		return liberr.NewSocket("failed to reach raw listener for SO_REUSEADDR", ctrlErr)
	}
	if sockErr != nil {
		return liberr.NewSocket("failed to set SO_REUSEADDR", sockErr)
	}

	return nil
}
