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

// Package state implements the per-connection state-machine runtime: a
// polymorphic current State reacting to opaque 64-bit Event codes and
// electing its own successor through StateContext.
package state

// Event is an opaque value whose meaning is defined entirely by the service
// author's concrete State implementations; the runtime never interprets it.
type Event uint64

// State is one node of a connection's state machine. Set is invoked with the
// owning StateContext and the posted Event; it may call ctx.SetState to
// advance (or leave the current state unchanged to ignore the event).
type State interface {
	// ID is the state's numeric identity.
	ID() int64

	// Name is a human-readable name, used in logs and error messages.
	Name() string

	// Set reacts to an incoming event. It may call ctx.SetState(next) to
	// transition, or do nothing to stay in the current state.
	Set(ctx *StateContext, event Event)
}

// StateContext holds the single current State for one connection and
// dispatches events to it. It is never nil after construction.
type StateContext struct {
	current State
}

// NewContext returns a StateContext starting at initial.
func NewContext(initial State) *StateContext {
	return &StateContext{current: initial}
}

// SetState replaces the current state. Handlers call this from within a
// State.Set implementation (or, less commonly, directly) to transition.
func (c *StateContext) SetState(s State) {
	if s != nil {
		c.current = s
	}
}

// Set delegates event to the current state's Set method.
func (c *StateContext) Set(event Event) {
	c.current.Set(c, event)
}

// CurrentStateID returns the numeric identity of the current state.
func (c *StateContext) CurrentStateID() int64 {
	return c.current.ID()
}

// CurrentStateName returns the human-readable name of the current state.
func (c *StateContext) CurrentStateName() string {
	return c.current.Name()
}

// Clone returns a new StateContext starting at the same state this context
// currently holds. Used by the server to give each accepted connection an
// independent copy of the initial-state template.
func (c *StateContext) Clone() *StateContext {
	return &StateContext{current: c.current}
}
