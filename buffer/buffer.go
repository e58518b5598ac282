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

// Package buffer provides ByteBuffer, the resizable owning byte container
// exchanged at the stdsc client/handler API boundary for Data, Download and
// UpDownload payloads. It is a thin domain wrapper around
// github.com/nabbar/stdsc/ioutils/bufferReadCloser, reusing its Buffer type
// for the actual storage and io.ReadWriteCloser behavior.
package buffer

import (
	"bytes"

	"github.com/nabbar/stdsc/ioutils/bufferReadCloser"
)

// ByteBuffer is an owning, resizable raw-byte container. One ByteBuffer is
// exclusively owned by one party at a time; Bytes exposes the current
// contents for a send, Resize prepares storage for a receive.
type ByteBuffer interface {
	bufferReadCloser.Buffer

	// Size returns the number of bytes currently stored.
	Size() uint64

	// Bytes returns the current contents. The returned slice aliases internal
	// storage and must not be retained across a Resize/Write call.
	Bytes() []byte

	// Resize truncates or zero-extends the buffer to exactly n bytes.
	Resize(n uint64)
}

type byteBuffer struct {
	bufferReadCloser.Buffer
	buf *bytes.Buffer
}

// New returns an empty ByteBuffer.
func New() ByteBuffer {
	b := &bytes.Buffer{}
	return &byteBuffer{Buffer: bufferReadCloser.New(b), buf: b}
}

// NewFromBytes returns a ByteBuffer initialized with a copy of p.
func NewFromBytes(p []byte) ByteBuffer {
	b := bytes.NewBuffer(append([]byte(nil), p...))
	return &byteBuffer{Buffer: bufferReadCloser.New(b), buf: b}
}

func (b *byteBuffer) Size() uint64 {
	return uint64(b.buf.Len())
}

func (b *byteBuffer) Bytes() []byte {
	return b.buf.Bytes()
}

func (b *byteBuffer) Resize(n uint64) {
	cur := b.buf.Bytes()
	out := make([]byte, n)
	copy(out, cur)
	b.buf.Reset()
	b.buf.Write(out)
}
