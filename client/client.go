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

// Package client implements the stdsc blocking client: one connection,
// one-shot request/data/download/updownload operations, and bounded-retry
// "_blocking"-style variants that retry on Reject and give up on Failure.
package client

import (
	"sync"
	"time"

	"github.com/nabbar/stdsc/buffer"
	liberr "github.com/nabbar/stdsc/errors"
	"github.com/nabbar/stdsc/packet"
	"github.com/nabbar/stdsc/socket"
)

// Infinite means "no timeout, no retry budget": Connect retries forever
// until it succeeds, and the bounded-retry operations never give up on
// Reject.
const Infinite time.Duration = 0

// DefaultRetryInterval matches the source's STDSC_RETRY_INTERVAL_USEC.
const DefaultRetryInterval = time.Second

// Client owns at most one TCP connection at a time. All operations serialize
// on one mutex, the same guarantee the source gives via its own
// std::mutex-guarded Impl: one in-flight request per Client.
type Client struct {
	mu   sync.Mutex
	sock *socket.Socket
}

// New returns an unconnected Client.
func New() *Client {
	return &Client{}
}

// Connect repeatedly attempts to establish a TCP connection to host:port
// until it succeeds or the retry budget derived from timeout/retryInterval
// is exhausted. Calling Connect again after Close succeeds against a
// running server.
func (c *Client) Connect(host string, port int, retryInterval, timeout time.Duration) liberr.Error {
	c.mu.Lock()
	defer c.mu.Unlock()

	budget := retryBudget(timeout, retryInterval)

	var lastErr liberr.Error
	for attempt := uint64(0); budget == 0 || attempt < budget; attempt++ {
		s, err := socket.Connect(host, port, socket.Infinite)
		if err == nil {
			c.sock = s
			return nil
		}
		lastErr = err
		if retryInterval > 0 {
			time.Sleep(retryInterval)
		}
	}

	return liberr.NewSocket("connection time out", lastErr)
}

// Exit tells the peer worker to end its connection loop cleanly, then
// closes the connection. Unlike Close alone, this lets the server record
// the disconnect as a normal exit rather than a read error.
func (c *Client) Exit() liberr.Error {
	c.mu.Lock()
	if c.sock == nil {
		c.mu.Unlock()
		return nil
	}
	err := c.sock.SendPacket(packet.New(packet.Exit))
	c.mu.Unlock()

	if err != nil {
		return err
	}
	return c.Close()
}

// Close releases the connection, if any. A Client is reusable afterward via
// Connect.
func (c *Client) Close() liberr.Error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sock == nil {
		return nil
	}
	err := c.sock.Close()
	c.sock = nil
	return err
}

// SendRequest sends a zero-body Request-group packet and waits for its ack.
// Reject/Failed acks are surfaced as KindReject/KindFailure errors; any
// other transport failure propagates directly.
func (c *Client) SendRequest(code packet.Code) liberr.Error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.sock.SendPacket(packet.New(code)); err != nil {
		return err
	}
	ack, err := c.sock.RecvPacket(socket.Infinite)
	if err != nil {
		return err
	}
	return ackError(ack.Code, "send request")
}

// SendData sends a Data/UpDownload-group packet with payload and waits for
// its ack.
func (c *Client) SendData(code packet.Code, payload buffer.ByteBuffer) liberr.Error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.sock.SendData(code, payload); err != nil {
		return err
	}
	ack, err := c.sock.RecvPacket(socket.Infinite)
	if err != nil {
		return err
	}
	return ackError(ack.Code, "send data")
}

// RecvData sends a zero-body Download-group request, then reads the header
// and (if size > 0) the payload the handler pushes back, followed by the
// closing ack.
func (c *Client) RecvData(code packet.Code) (buffer.ByteBuffer, liberr.Error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.sock.SendPacket(packet.New(code)); err != nil {
		return nil, err
	}
	return c.recvPushedDataAndAck()
}

// SendRecvData sends an UpDownload-group packet with payload, then reads the
// header and (if size > 0) the payload the handler pushes back, followed by
// the closing ack.
func (c *Client) SendRecvData(code packet.Code, payload buffer.ByteBuffer) (buffer.ByteBuffer, liberr.Error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.sock.SendData(code, payload); err != nil {
		return nil, err
	}
	return c.recvPushedDataAndAck()
}

// recvPushedDataAndAck reads one pushed Data header (plus payload if
// declared) followed by the terminating ack. Caller holds c.mu.
func (c *Client) recvPushedDataAndAck() (buffer.ByteBuffer, liberr.Error) {
	hdr, err := c.sock.RecvPacket(socket.Infinite)
	if err != nil {
		return nil, err
	}
	if hdr.Code == packet.Reject {
		return nil, liberr.NewReject("rejected to recv data")
	}

	payload := buffer.New()
	if hdr.Size > 0 {
		payload, err = c.sock.RecvPayload(hdr.Size)
		if err != nil {
			return nil, err
		}
	}

	ack, err := c.sock.RecvPacket(socket.Infinite)
	if err != nil {
		return nil, err
	}
	if aerr := ackError(ack.Code, "recv data"); aerr != nil {
		return nil, aerr
	}

	return payload, nil
}

// SendRequestBlocking retries SendRequest on Reject until it succeeds or the
// retry budget derived from timeout/retryInterval is exhausted.
func (c *Client) SendRequestBlocking(code packet.Code, retryInterval, timeout time.Duration) liberr.Error {
	return retryOnReject(retryBudget(timeout, retryInterval), retryInterval, func() liberr.Error {
		return c.SendRequest(code)
	})
}

// SendDataBlocking retries SendData on Reject until it succeeds or the retry
// budget derived from timeout/retryInterval is exhausted.
func (c *Client) SendDataBlocking(code packet.Code, payload buffer.ByteBuffer, retryInterval, timeout time.Duration) liberr.Error {
	return retryOnReject(retryBudget(timeout, retryInterval), retryInterval, func() liberr.Error {
		return c.SendData(code, payload)
	})
}

// RecvDataBlocking retries RecvData on Reject until it succeeds or the retry
// budget derived from timeout/retryInterval is exhausted.
func (c *Client) RecvDataBlocking(code packet.Code, retryInterval, timeout time.Duration) (buffer.ByteBuffer, liberr.Error) {
	var result buffer.ByteBuffer
	err := retryOnReject(retryBudget(timeout, retryInterval), retryInterval, func() liberr.Error {
		b, e := c.RecvData(code)
		if e == nil {
			result = b
		}
		return e
	})
	return result, err
}

// SendRecvDataBlocking retries SendRecvData on Reject until it succeeds or
// the retry budget derived from timeout/retryInterval is exhausted.
func (c *Client) SendRecvDataBlocking(code packet.Code, payload buffer.ByteBuffer, retryInterval, timeout time.Duration) (buffer.ByteBuffer, liberr.Error) {
	var result buffer.ByteBuffer
	err := retryOnReject(retryBudget(timeout, retryInterval), retryInterval, func() liberr.Error {
		b, e := c.SendRecvData(code, payload)
		if e == nil {
			result = b
		}
		return e
	})
	return result, err
}

// ackError classifies a terminal ack code into the client's error taxonomy:
// Reject is retriable by the _blocking variants, Failed never is.
func ackError(code packet.Code, action string) liberr.Error {
	switch code {
	case packet.Reject:
		return liberr.NewReject("rejected to " + action)
	case packet.Failed:
		return liberr.NewFailure("failed to " + action)
	default:
		return nil
	}
}

// retryBudget computes the number of attempts a bounded retry gets out of
// timeout/retryInterval, or 1 if retryInterval is zero. timeout == Infinite
// returns 0, meaning "retry without limit" to the caller.
func retryBudget(timeout, retryInterval time.Duration) uint64 {
	if timeout <= Infinite {
		return 0
	}
	if retryInterval <= 0 {
		return 1
	}
	return uint64(timeout / retryInterval)
}

// retryOnReject runs op until it succeeds, returns a non-Reject error, or
// the retry budget (0 meaning unlimited) is exhausted, in which case it
// reports a KindSocket time-out wrapping the last Reject.
func retryOnReject(budget uint64, retryInterval time.Duration, op func() liberr.Error) liberr.Error {
	var attempt uint64
	for {
		err := op()
		if err == nil {
			return nil
		}
		if !liberr.IsKind(err, liberr.KindReject) {
			return err
		}

		attempt++
		if budget > 0 && attempt >= budget {
			return liberr.NewSocket("operation timed out after exhausting the retry budget", err)
		}
		if retryInterval > 0 {
			time.Sleep(retryInterval)
		}
	}
}
