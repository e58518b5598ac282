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

// Package socket implements the stdsc TCP transport: listen/accept/connect,
// fixed keepalive/buffer tuning, and framed send/recv of packet.Packet
// headers and buffer.ByteBuffer payloads. Socket satisfies handler.Conn so
// the dispatcher can read payloads and Download/UpDownload handlers can
// write responses directly.
package socket

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nabbar/stdsc/buffer"
	liberr "github.com/nabbar/stdsc/errors"
	"github.com/nabbar/stdsc/packet"
)

// Infinite designates "no deadline" for Recv operations, matching the
// source's STDSC_TIME_INFINITE sentinel.
const Infinite time.Duration = 0

// Socket is one established, tuned TCP endpoint framing stdsc packets and
// buffers. All send and recv operations share one mutex, so calls on a
// single Socket serialize even across directions; this is harmless under
// stdsc's strict request/response alternation but means a Socket is not
// usable for a concurrent full-duplex read/write pattern.
type Socket struct {
	conn   *net.TCPConn
	connID string

	mu       sync.Mutex
	closedMu sync.Mutex
	closed   bool
}

// wrap tunes conn and returns a ready Socket with a fresh connection id.
func wrap(conn *net.TCPConn) (*Socket, liberr.Error) {
	if err := tuneConn(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &Socket{conn: conn, connID: uuid.NewString()}, nil
}

// ConnectionID returns a stable identifier for this socket's lifetime, used
// to key PerConnection shared-context clones.
func (s *Socket) ConnectionID() string {
	return s.connID
}

// LocalAddr and RemoteAddr expose the underlying TCP endpoints.
func (s *Socket) LocalAddr() net.Addr  { return s.conn.LocalAddr() }
func (s *Socket) RemoteAddr() net.Addr { return s.conn.RemoteAddr() }

// SendPacket writes one 1032-byte header frame.
func (s *Socket) SendPacket(p packet.Packet) liberr.Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeFull(sliceOf(p))
}

// RecvPacket blocks until one full header frame has been read, or timeout
// elapses (Infinite waits forever). A premature close is reported as a
// KindSocket error, never as a zero-value success.
func (s *Socket) RecvPacket(timeout time.Duration) (packet.Packet, liberr.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.setReadDeadline(timeout); err != nil {
		return packet.Packet{}, err
	}

	var buf [packet.Size]byte
	if err := s.readFull(buf[:]); err != nil {
		return packet.Packet{}, err
	}

	return packet.Decode(buf[:])
}

// SendBuffer writes the raw contents of b, with no framing of its own; used
// after SendPacket(NewData(...)) to carry the declared payload.
func (s *Socket) SendBuffer(b buffer.ByteBuffer) liberr.Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeFull(b.Bytes())
}

// RecvBuffer reads exactly size bytes into a new ByteBuffer.
func (s *Socket) RecvBuffer(size uint64, timeout time.Duration) (buffer.ByteBuffer, liberr.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.setReadDeadline(timeout); err != nil {
		return nil, err
	}

	if size == 0 {
		return buffer.New(), nil
	}

	raw := make([]byte, size)
	if err := s.readFull(raw); err != nil {
		return nil, err
	}

	return buffer.NewFromBytes(raw), nil
}

// RecvPayload implements handler.PayloadReader: read size bytes with no
// deadline, matching the dispatcher's "already mid-exchange" assumption.
func (s *Socket) RecvPayload(size uint64) (buffer.ByteBuffer, liberr.Error) {
	return s.RecvBuffer(size, Infinite)
}

// SendData implements handler.Peer: write a Data-framed header followed by
// the payload, the same framing a client's send_data uses.
func (s *Socket) SendData(code packet.Code, payload buffer.ByteBuffer) liberr.Error {
	p, err := packet.NewData(code, payload.Size())
	if err != nil {
		return err
	}
	if err = s.SendPacket(p); err != nil {
		return err
	}
	if payload.Size() == 0 {
		return nil
	}
	return s.SendBuffer(payload)
}

// Shutdown half-closes both directions. Idempotent: calling it twice, or
// after Close, is a no-op.
func (s *Socket) Shutdown() liberr.Error {
	s.closedMu.Lock()
	defer s.closedMu.Unlock()
	if s.closed {
		return nil
	}
	// CloseRead+CloseWrite approximate shutdown(SHUT_RDWR); errors here are
	// expected once the peer has already gone away and are not fatal.
	_ = s.conn.CloseRead()
	_ = s.conn.CloseWrite()
	return nil
}

// Close releases the underlying file descriptor. Idempotent.
func (s *Socket) Close() liberr.Error {
	s.closedMu.Lock()
	defer s.closedMu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.conn.Close(); err != nil {
		return liberr.NewSocket("failed to close socket", err)
	}
	return nil
}

func (s *Socket) setReadDeadline(timeout time.Duration) liberr.Error {
	var deadline time.Time
	if timeout != Infinite {
		deadline = time.Now().Add(timeout)
	}
	if err := s.conn.SetReadDeadline(deadline); err != nil {
		return liberr.NewSocket("failed to set read deadline", err)
	}
	return nil
}

// readFull repeatedly reads until buf is full, distinguishing a premature
// close (io.ErrUnexpectedEOF/io.EOF before buf is full) from a real error.
func (s *Socket) readFull(buf []byte) liberr.Error {
	if _, err := io.ReadFull(s.conn, buf); err != nil {
		return liberr.NewSocket("connection closed or read failed before full frame was received", err)
	}
	return nil
}

// writeFull repeatedly writes until buf is fully drained.
func (s *Socket) writeFull(buf []byte) liberr.Error {
	total := 0
	for total < len(buf) {
		n, err := s.conn.Write(buf[total:])
		if err != nil {
			return liberr.NewSocket("write failed before full frame was sent", err)
		}
		total += n
	}
	return nil
}

func sliceOf(p packet.Packet) []byte {
	buf := p.Encode()
	return buf[:]
}
