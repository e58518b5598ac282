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

package handler

import (
	"github.com/nabbar/stdsc/buffer"
	liberr "github.com/nabbar/stdsc/errors"
	"github.com/nabbar/stdsc/packet"
	"github.com/nabbar/stdsc/state"
)

// PayloadReader is the capability the dispatcher needs from a connection to
// read a Data/UpDownload payload declared by an inbound header.
type PayloadReader interface {
	RecvPayload(size uint64) (buffer.ByteBuffer, liberr.Error)
}

// Conn is the full per-dispatch socket capability: reading the declared
// payload and (for Download/UpDownload) writing a response.
type Conn interface {
	PayloadReader
	Peer
}

// Dispatch classifies pkt, optionally reads its payload, and invokes the
// handler registered for pkt.Code, if any. connID identifies the connection
// for PerConnection shared-context resolution.
//
// Returns (invoked, err). invoked is false when no handler is registered for
// pkt.Code (or pkt.Code sets none of the four group bits); the caller must
// still treat that as a successful Accept per the framework's "drop unknown
// codes after consuming any declared payload" rule. err is a KindCallback
// error when the handler itself refused the request (the caller turns that
// into a Reject ack), or any other kind on an unrecoverable dispatch failure.
func (r *Registry) Dispatch(connID string, conn Conn, pkt packet.Packet, st *state.StateContext) (invoked bool, err liberr.Error) {
	group, ok := pkt.Code.Group()
	if !ok {
		return false, nil
	}

	ctx := r.contextFor(connID)

	switch group {
	case packet.GroupRequest:
		fct, has := r.lookupRequest(pkt.Code)
		if !has {
			return false, nil
		}
		return true, fct(pkt.Code, st, ctx)

	case packet.GroupData:
		payload, rerr := conn.RecvPayload(pkt.Size)
		if rerr != nil {
			return false, rerr
		}
		fct, has := r.lookupData(pkt.Code)
		if !has {
			return false, nil
		}
		return true, fct(pkt.Code, payload, st, ctx)

	case packet.GroupDownload:
		fct, has := r.lookupDownload(pkt.Code)
		if !has {
			return false, nil
		}
		return true, fct(pkt.Code, conn, st, ctx)

	case packet.GroupUpDownload:
		payload, rerr := conn.RecvPayload(pkt.Size)
		if rerr != nil {
			return false, rerr
		}
		fct, has := r.lookupUpDownload(pkt.Code)
		if !has {
			return false, nil
		}
		return true, fct(pkt.Code, payload, conn, st, ctx)

	default:
		return false, nil
	}
}
