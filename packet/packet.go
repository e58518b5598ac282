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

package packet

import (
	"encoding/binary"

	liberr "github.com/nabbar/stdsc/errors"
)

// Size is the fixed length in bytes of every packet header on the wire.
const Size = 1032

// bodySize is the length of the body following the 8-byte control code.
const bodySize = Size - 8

// sizeFieldLen is the length of the little-endian payload-size field that
// opens the body of a Data/UpDownload packet.
const sizeFieldLen = 8

// Packet is one fixed-size stdsc wire frame: an 8-byte control code plus a
// 1024-byte body. For Data/UpDownload codes, the first 8 bytes of the body
// carry the byte length of the payload that follows on the wire; the
// remainder of the body is zero padding never transmitted meaningfully.
type Packet struct {
	Code Code
	Size uint64
}

// New builds a zero-body packet (Request/Download/reserved codes).
func New(code Code) Packet {
	return Packet{Code: code}
}

// NewData builds a Data/UpDownload packet header declaring a payload of the
// given size. It refuses codes outside those two groups with KindInvariant.
func NewData(code Code, size uint64) (Packet, liberr.Error) {
	if !code.IsData() {
		return Packet{}, liberr.NewInvariant("control code " + code.String() + " is not in the Data or UpDownload group")
	}
	return Packet{Code: code, Size: size}, nil
}

// Encode renders p as the exact 1032-byte wire representation.
func (p Packet) Encode() [Size]byte {
	var out [Size]byte
	binary.LittleEndian.PutUint64(out[0:8], uint64(p.Code))
	if p.Code.IsData() {
		binary.LittleEndian.PutUint64(out[8:8+sizeFieldLen], p.Size)
	}
	return out
}

// Decode parses a wire frame previously produced by Encode. It returns
// KindInvariant if buf is not exactly Size bytes.
func Decode(buf []byte) (Packet, liberr.Error) {
	if len(buf) != Size {
		return Packet{}, liberr.NewInvariant("packet frame must be exactly 1032 bytes")
	}

	p := Packet{Code: Code(binary.LittleEndian.Uint64(buf[0:8]))}
	if p.Code.IsData() {
		p.Size = binary.LittleEndian.Uint64(buf[8 : 8+sizeFieldLen])
	}

	return p, nil
}
