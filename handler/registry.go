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
	"context"
	"sync"

	libatm "github.com/nabbar/stdsc/atomic"
	"github.com/nabbar/stdsc/packet"
)

// Registry maps control codes to handlers and resolves the shared context
// scope (AllConnections / PerConnection) each dispatch sees. Register calls
// are expected to complete before the owning server starts; after that, a
// Registry is read-mostly and safe for concurrent Dispatch calls across
// connections.
type Registry struct {
	mu   sync.RWMutex
	req  map[packet.Code]RequestFunc
	data map[packet.Code]DataFunc
	dl   map[packet.Code]DownloadFunc
	updl map[packet.Code]UpDownloadFunc

	scope    Scope
	allCtx   SharedContext
	template SharedContext
	perConn  libatm.MapTyped[string, SharedContext]
}

// New returns an empty Registry with no shared context configured.
func New() *Registry {
	return &Registry{
		req:     make(map[packet.Code]RequestFunc),
		data:    make(map[packet.Code]DataFunc),
		dl:      make(map[packet.Code]DownloadFunc),
		updl:    make(map[packet.Code]UpDownloadFunc),
		perConn: libatm.NewMapTyped[string, SharedContext](),
	}
}

// RegisterRequest registers a Request-shape handler for code.
func (r *Registry) RegisterRequest(code packet.Code, fct RequestFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.req[code] = fct
}

// RegisterData registers a Data-shape handler for code.
func (r *Registry) RegisterData(code packet.Code, fct DataFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[code] = fct
}

// RegisterDownload registers a Download-shape handler for code.
func (r *Registry) RegisterDownload(code packet.Code, fct DownloadFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dl[code] = fct
}

// RegisterUpDownload registers an UpDownload-shape handler for code.
func (r *Registry) RegisterUpDownload(code packet.Code, fct UpDownloadFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updl[code] = fct
}

// SetSharedContext configures the shared context every handler receives.
// For AllConnections, every worker sees tmpl itself. For PerConnection, tmpl
// is cloned once per connection_id on that connection's first dispatch.
func (r *Registry) SetSharedContext(scope Scope, tmpl SharedContext) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scope = scope
	if scope == AllConnections {
		r.allCtx = tmpl
	} else {
		r.template = tmpl
	}
}

// contextFor resolves the SharedContext a dispatch for connID should see. It
// returns nil if no shared context was configured.
func (r *Registry) contextFor(connID string) SharedContext {
	r.mu.RLock()
	scope, all, tmpl := r.scope, r.allCtx, r.template
	r.mu.RUnlock()

	if scope == AllConnections {
		return all
	}
	if tmpl == nil {
		return nil
	}
	if cfg, ok := r.perConn.Load(connID); ok {
		return cfg
	}
	cfg := tmpl.Clone(context.Background())
	actual, _ := r.perConn.LoadOrStore(connID, cfg)
	return actual
}

// DropConnection releases the PerConnection shared-context clone for connID,
// called by the server worker when a connection ends.
func (r *Registry) DropConnection(connID string) {
	r.perConn.Delete(connID)
}

func (r *Registry) lookupRequest(code packet.Code) (RequestFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fct, ok := r.req[code]
	return fct, ok
}

func (r *Registry) lookupData(code packet.Code) (DataFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fct, ok := r.data[code]
	return fct, ok
}

func (r *Registry) lookupDownload(code packet.Code) (DownloadFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fct, ok := r.dl[code]
	return fct, ok
}

func (r *Registry) lookupUpDownload(code packet.Code) (UpDownloadFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fct, ok := r.updl[code]
	return fct, ok
}
