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

// Package handler implements the control-code handler registry and dispatch
// engine: the mapping from packet.Code to one of the four handler shapes
// (request, data, download, updownload), and the per-connection shared
// context scoping (AllConnections / PerConnection) handlers receive.
package handler

import (
	"github.com/nabbar/stdsc/buffer"
	libctx "github.com/nabbar/stdsc/context"
	liberr "github.com/nabbar/stdsc/errors"
	"github.com/nabbar/stdsc/packet"
	"github.com/nabbar/stdsc/state"
)

// SharedContext is the typed context.Config handlers receive, keyed by an
// arbitrary string the application chooses (free-form key space inside one
// connection's or the server's shared region).
type SharedContext = libctx.Config[string]

// Peer is the minimal socket capability a Download/UpDownload handler needs:
// writing a response framed the same way the client expects it (header +
// payload bytes). The payload declared by the inbound header is read by the
// dispatcher before the handler runs.
type Peer interface {
	// SendData writes a Data-group framed packet (header + payload) to the peer.
	SendData(code packet.Code, payload buffer.ByteBuffer) liberr.Error
}

// RequestFunc handles a Request-group code: no client payload.
type RequestFunc func(code packet.Code, st *state.StateContext, ctx SharedContext) liberr.Error

// DataFunc handles a Data-group code: payload already read off the wire.
type DataFunc func(code packet.Code, payload buffer.ByteBuffer, st *state.StateContext, ctx SharedContext) liberr.Error

// DownloadFunc handles a Download-group code: the handler itself writes one
// or more Data-framed responses via peer before returning.
type DownloadFunc func(code packet.Code, peer Peer, st *state.StateContext, ctx SharedContext) liberr.Error

// UpDownloadFunc handles an UpDownload-group code: payload already read off
// the wire, and the handler may write a response via peer.
type UpDownloadFunc func(code packet.Code, payload buffer.ByteBuffer, peer Peer, st *state.StateContext, ctx SharedContext) liberr.Error

// Scope selects how a registry's shared context is handed to handlers.
type Scope uint8

const (
	// AllConnections hands every worker the same SharedContext instance.
	AllConnections Scope = iota
	// PerConnection clones the template SharedContext once per connection_id
	// on first dispatch, and hands that worker its own clone thereafter.
	PerConnection
)
