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

package errors

// Kind carries the taxonomy used across the framework. It is a thin wrapper
// around CodeError so that callers can match on a name instead of a magic
// number, while still getting the code/trace/parent machinery of Error for
// free.
//
// Socket failures carry the underlying errno through the parent chain (see
// NewSocket); the other kinds never wrap an errno.
const (
	// KindSocket reports any transport-level failure (dial, accept, read,
	// write, premature close). The originating errno, when known, is added
	// as a parent error.
	KindSocket CodeError = MinPkgSocket + iota

	// KindInvariant reports a pre/post-condition violation in a framework
	// API, such as constructing a data packet for a non-Data/UpDownload
	// control code.
	KindInvariant

	// KindCallback reports a handler-initiated refusal. The dispatcher
	// turns this into a Reject acknowledgement instead of propagating it.
	KindCallback

	// KindReject reports that a peer answered Reject to an acknowledgeable
	// request. Retriable by the client's blocking operations.
	KindReject

	// KindFailure reports that a peer answered Failed. Terminal for that
	// request; never retried.
	KindFailure

	// KindFile is reserved for file-backed extensions. The core never
	// raises it.
	KindFile

	// KindInvalidParam reports malformed API input.
	KindInvalidParam
)

func init() {
	RegisterIdFctMessage(KindSocket, func(CodeError) string { return "socket error" })
	RegisterIdFctMessage(KindInvariant, func(CodeError) string { return "invariant violation" })
	RegisterIdFctMessage(KindCallback, func(CodeError) string { return "callback rejected request" })
	RegisterIdFctMessage(KindReject, func(CodeError) string { return "request rejected" })
	RegisterIdFctMessage(KindFailure, func(CodeError) string { return "request failed" })
	RegisterIdFctMessage(KindFile, func(CodeError) string { return "file error" })
	RegisterIdFctMessage(KindInvalidParam, func(CodeError) string { return "invalid parameter" })
}

// NewSocket wraps an underlying transport error (commonly a *net.OpError or
// an errno-bearing error) into a KindSocket Error.
func NewSocket(message string, parent ...error) Error {
	if message == "" {
		message = KindSocket.Message()
	}
	return New(KindSocket.Uint16(), message, parent...)
}

// NewInvariant builds a KindInvariant Error.
func NewInvariant(message string, parent ...error) Error {
	if message == "" {
		message = KindInvariant.Message()
	}
	return New(KindInvariant.Uint16(), message, parent...)
}

// NewCallback builds a KindCallback Error. The dispatcher recognizes this
// kind and answers the peer with Reject instead of tearing down the worker.
func NewCallback(message string, parent ...error) Error {
	if message == "" {
		message = KindCallback.Message()
	}
	return New(KindCallback.Uint16(), message, parent...)
}

// NewReject builds a KindReject Error, raised by the client when a peer
// answers Reject to a request.
func NewReject(message string, parent ...error) Error {
	if message == "" {
		message = KindReject.Message()
	}
	return New(KindReject.Uint16(), message, parent...)
}

// NewFailure builds a KindFailure Error, raised by the client when a peer
// answers Failed to a request.
func NewFailure(message string, parent ...error) Error {
	if message == "" {
		message = KindFailure.Message()
	}
	return New(KindFailure.Uint16(), message, parent...)
}

// NewInvalidParam builds a KindInvalidParam Error.
func NewInvalidParam(message string, parent ...error) Error {
	if message == "" {
		message = KindInvalidParam.Message()
	}
	return New(KindInvalidParam.Uint16(), message, parent...)
}

// IsKind reports whether err carries the given Kind as its direct code.
func IsKind(err error, kind CodeError) bool {
	return IsCode(err, kind)
}
