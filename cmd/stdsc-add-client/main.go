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

// Command stdsc-add-client is an example stdsc client: it sends two
// operands, a compute request, then downloads and prints the sum.
package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nabbar/stdsc/buffer"
	"github.com/nabbar/stdsc/client"
	"github.com/nabbar/stdsc/packet"
)

const (
	codeValueA         packet.Code = 0x0401
	codeValueB         packet.Code = 0x0402
	codeComputeRequest packet.Code = 0x0201
	codeDownloadResult packet.Code = 0x0801

	retryTimeout = 30 * time.Second
)

func run(host string, port int, valueA, valueB uint32) (uint32, error) {
	c := client.New()
	if err := c.Connect(host, port, client.DefaultRetryInterval, retryTimeout); err != nil {
		return 0, err
	}
	defer func() { _ = c.Close() }()

	a := make([]byte, 4)
	binary.LittleEndian.PutUint32(a, valueA)
	if err := c.SendDataBlocking(codeValueA, buffer.NewFromBytes(a), client.DefaultRetryInterval, retryTimeout); err != nil {
		return 0, err
	}

	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, valueB)
	if err := c.SendDataBlocking(codeValueB, buffer.NewFromBytes(b), client.DefaultRetryInterval, retryTimeout); err != nil {
		return 0, err
	}

	if err := c.SendRequestBlocking(codeComputeRequest, client.DefaultRetryInterval, retryTimeout); err != nil {
		return 0, err
	}

	result, err := c.RecvDataBlocking(codeDownloadResult, client.DefaultRetryInterval, retryTimeout)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(result.Bytes()), nil
}

func main() {
	var (
		host   string
		port   int
		valueA uint32
		valueB uint32
	)

	cmd := &cobra.Command{
		Use:   "stdsc-add-client",
		Short: "Run the stdsc add-two-values example client",
		RunE: func(cmd *cobra.Command, args []string) error {
			sum, err := run(host, port, valueA, valueB)
			if err != nil {
				return err
			}
			fmt.Printf("Result: %d\n", sum)
			return nil
		},
	}
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "server host")
	cmd.Flags().IntVar(&port, "port", 7766, "server port")
	cmd.Flags().Uint32Var(&valueA, "a", 10, "first operand")
	cmd.Flags().Uint32Var(&valueB, "b", 20, "second operand")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
