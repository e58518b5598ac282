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

// Package packet implements the fixed 1032-byte stdsc wire frame: an 8-byte
// control code followed by a 1024-byte body, plus the control-code group
// algebra (Reserved / Request / Data / Download / UpDownload) used by the
// dispatcher to classify every inbound frame.
package packet

// Code is the 64-bit control code carried by every packet header.
type Code uint64

// Group masks. A non-reserved code belongs to the lowest-numbered group whose
// bit is set; application codes occupy the low byte within one group.
const (
	GroupReserved   Code = 0x0100
	GroupRequest    Code = 0x0200
	GroupData       Code = 0x0400
	GroupDownload   Code = 0x0800
	GroupUpDownload Code = 0x1000
)

// Reserved control codes.
const (
	Accept       Code = 0x0101
	Reject       Code = 0x0102
	Failed       Code = 0x0103
	Connected    Code = 0x0104
	Disconnected Code = 0x0105

	// Exit ends a connection worker cleanly. Fixed at 0x0106, inside the
	// Reserved mask but above the five named reserved codes.
	Exit Code = 0x0106
)

// IsReserved reports whether c is one of the fixed reserved codes or Exit.
func (c Code) IsReserved() bool {
	return c&GroupReserved != 0 && c&(GroupRequest|GroupData|GroupDownload|GroupUpDownload) == 0
}

// Group returns the content group c belongs to, and false if c sets none of
// the four content-group bits (and is not a reserved code).
func (c Code) Group() (Code, bool) {
	switch {
	case c&GroupRequest != 0:
		return GroupRequest, true
	case c&GroupData != 0:
		return GroupData, true
	case c&GroupDownload != 0:
		return GroupDownload, true
	case c&GroupUpDownload != 0:
		return GroupUpDownload, true
	default:
		return 0, false
	}
}

// IsData reports whether c belongs to the Data or UpDownload group, i.e.
// whether a make_data_packet-style size field is legal for it.
func (c Code) IsData() bool {
	return c&GroupData != 0 || c&GroupUpDownload != 0
}

// String renders a code as its well-known reserved name, or a hex literal.
func (c Code) String() string {
	switch c {
	case Accept:
		return "Accept"
	case Reject:
		return "Reject"
	case Failed:
		return "Failed"
	case Connected:
		return "Connected"
	case Disconnected:
		return "Disconnected"
	case Exit:
		return "Exit"
	default:
		return hexString(uint64(c))
	}
}

func hexString(v uint64) string {
	const hexdigits = "0123456789abcdef"
	if v == 0 {
		return "0x0"
	}
	buf := make([]byte, 0, 18)
	buf = append(buf, '0', 'x')
	started := false
	for shift := 60; shift >= 0; shift -= 4 {
		d := (v >> uint(shift)) & 0xf
		if d != 0 {
			started = true
		}
		if started {
			buf = append(buf, hexdigits[d])
		}
	}
	return string(buf)
}
