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

// Command stdsc-add-server is an example stdsc server: it sums two uint32
// values received over two Data codes once a compute Request arrives, and
// pushes the sum back on a Download code.
package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nabbar/stdsc/buffer"
	"github.com/nabbar/stdsc/config"
	libctx "github.com/nabbar/stdsc/context"
	liberr "github.com/nabbar/stdsc/errors"
	"github.com/nabbar/stdsc/handler"
	"github.com/nabbar/stdsc/logger"
	"github.com/nabbar/stdsc/metrics"
	"github.com/nabbar/stdsc/packet"
	"github.com/nabbar/stdsc/server"
	"github.com/nabbar/stdsc/state"

	spfprm "github.com/prometheus/client_golang/prometheus"
)

const (
	codeValueA         packet.Code = 0x0401
	codeValueB         packet.Code = 0x0402
	codeComputeRequest packet.Code = 0x0201
	codeDownloadResult packet.Code = 0x0801
	codeDataResult     packet.Code = 0x0403
)

// connectedState mirrors the original add_server example's StateConnected:
// it waits for both operands before advancing to readyState.
type connectedState struct{ haveA, haveB bool }

func (connectedState) ID() int64    { return 1 }
func (connectedState) Name() string { return "Connected" }
func (s connectedState) Set(c *state.StateContext, e state.Event) {
	switch e {
	case 1:
		s.haveA = true
	case 2:
		s.haveB = true
	}
	if s.haveA && s.haveB {
		c.SetState(readyState{})
	} else {
		c.SetState(s)
	}
}

type readyState struct{}

func (readyState) ID() int64    { return 2 }
func (readyState) Name() string { return "Ready" }
func (readyState) Set(c *state.StateContext, e state.Event) {
	if e == 3 {
		c.SetState(computedState{})
	}
}

type computedState struct{}

func (computedState) ID() int64                             { return 3 }
func (computedState) Name() string                          { return "Computed" }
func (computedState) Set(*state.StateContext, state.Event)  {}

func newRegistry() *handler.Registry {
	r := handler.New()
	r.SetSharedContext(handler.PerConnection, libctx.New[string](context.Background()))

	r.RegisterData(codeValueA, func(code packet.Code, payload buffer.ByteBuffer, st *state.StateContext, ctx handler.SharedContext) liberr.Error {
		ctx.Store("A", binary.LittleEndian.Uint32(payload.Bytes()))
		st.Set(1)
		return nil
	})
	r.RegisterData(codeValueB, func(code packet.Code, payload buffer.ByteBuffer, st *state.StateContext, ctx handler.SharedContext) liberr.Error {
		ctx.Store("B", binary.LittleEndian.Uint32(payload.Bytes()))
		st.Set(2)
		return nil
	})
	r.RegisterRequest(codeComputeRequest, func(code packet.Code, st *state.StateContext, ctx handler.SharedContext) liberr.Error {
		if st.CurrentStateID() != (readyState{}).ID() {
			return liberr.NewCallback("must be connected and received both values before computing")
		}
		av, _ := ctx.Load("A")
		bv, _ := ctx.Load("B")
		ctx.Store("sum", av.(uint32)+bv.(uint32))
		st.Set(3)
		return nil
	})
	r.RegisterDownload(codeDownloadResult, func(code packet.Code, peer handler.Peer, st *state.StateContext, ctx handler.SharedContext) liberr.Error {
		if st.CurrentStateID() != (computedState{}).ID() {
			return liberr.NewCallback("must have computed the sum before downloading it")
		}
		sv, _ := ctx.Load("sum")
		out := make([]byte, 4)
		binary.LittleEndian.PutUint32(out, sv.(uint32))
		return peer.SendData(codeDataResult, buffer.NewFromBytes(out))
	})

	return r
}

func run(cfgFiles []string) error {
	opt, cerr := config.Load(cfgFiles...)
	if cerr != nil {
		return cerr
	}

	log := logger.New(context.Background())
	if err := log.SetOptions(&opt.Log); err != nil {
		return err
	}

	collector := metrics.NewServerCollector(spfprm.DefaultRegisterer)

	st := state.NewContext(connectedState{})
	srv := server.New(opt.ServerPort, st, newRegistry(), log, collector)

	if err := srv.Start(true); err != nil {
		return err
	}
	log.Info(fmt.Sprintf("add-server listening on %s", srv.Addr()), nil)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	srv.Stop()
	return srv.Wait()
}

func main() {
	var cfgFiles []string

	cmd := &cobra.Command{
		Use:   "stdsc-add-server",
		Short: "Run the stdsc add-two-values example server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfgFiles)
		},
	}
	cmd.Flags().StringSliceVar(&cfgFiles, "config", nil, "path to an optional YAML/TOML/JSON config file")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
