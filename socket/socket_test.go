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

package socket_test

import (
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/stdsc/buffer"
	"github.com/nabbar/stdsc/packet"
	"github.com/nabbar/stdsc/socket"
)

var _ = Describe("Listen/Connect/Accept", func() {
	var ln *socket.Listener

	BeforeEach(func() {
		var err error
		ln, err = socket.Listen(0)
		Expect(err).To(BeNil())
	})

	AfterEach(func() {
		_ = ln.Close()
	})

	It("accepts a connecting peer and assigns each side a distinct connection id", func() {
		port := ln.Addr().(*net.TCPAddr).Port

		type result struct {
			sock *socket.Socket
			err  error
		}
		acceptCh := make(chan result, 1)
		go func() {
			s, aerr := ln.Accept(5 * time.Second)
			var e error
			if aerr != nil {
				e = aerr
			}
			acceptCh <- result{sock: s, err: e}
		}()

		client, cerr := socket.Connect("127.0.0.1", port, 5*time.Second)
		Expect(cerr).To(BeNil())
		defer func() { _ = client.Close() }()

		r := <-acceptCh
		Expect(r.err).To(BeNil())
		defer func() { _ = r.sock.Close() }()

		Expect(client.ConnectionID()).ToNot(Equal(r.sock.ConnectionID()))
	})

	It("round-trips a packet header and its data payload", func() {
		port := ln.Addr().(*net.TCPAddr).Port

		type result struct {
			sock *socket.Socket
			err  error
		}
		acceptCh := make(chan result, 1)
		go func() {
			s, aerr := ln.Accept(5 * time.Second)
			var e error
			if aerr != nil {
				e = aerr
			}
			acceptCh <- result{sock: s, err: e}
		}()

		client, cerr := socket.Connect("127.0.0.1", port, 5*time.Second)
		Expect(cerr).To(BeNil())
		defer func() { _ = client.Close() }()

		r := <-acceptCh
		Expect(r.err).To(BeNil())
		server := r.sock
		defer func() { _ = server.Close() }()

		payload := buffer.NewFromBytes([]byte("payload"))
		Expect(client.SendData(packet.GroupData|0x01, payload)).To(BeNil())

		pkt, perr := server.RecvPacket(5 * time.Second)
		Expect(perr).To(BeNil())
		Expect(pkt.Code).To(Equal(packet.GroupData | 0x01))
		Expect(pkt.Size).To(Equal(uint64(len("payload"))))

		got, rerr := server.RecvPayload(pkt.Size)
		Expect(rerr).To(BeNil())
		Expect(got.Bytes()).To(Equal([]byte("payload")))
	})
})
