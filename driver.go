// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package steer

import (
	"fmt"
	"runtime"
	"slices"

	"code.hybscloud.com/steer/bnb"
	"code.hybscloud.com/steer/coro"
	"code.hybscloud.com/steer/internal/logging"
)

// State is the life-cycle state of a [Driver].
type State uint8

const (
	// Idle: no solve was begun.
	Idle State = iota
	// Running: the solver is executing; only seen from inside Begin and Continue.
	Running
	// Suspended: a Call is pending.
	Suspended
	// Finished: the last solve completed on its own.
	Finished
	// Terminated: the last solve was stopped or abandoned.
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Suspended:
		return "suspended"
	case Finished:
		return "finished"
	case Terminated:
		return "terminated"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// Driver turns the blocking Solve of a model into a sequence of steps.
//
// Begin starts the solve and returns the first [Call] raised by a steered
// callback; Continue answers it and returns the next one. A nil Call means
// the solve has completed. Exactly one of the controller and the solver
// runs at any time.
//
// A Driver exclusively owns its model and must be used from one goroutine
// at a time. Dropping a suspended Driver has the effect of Close once the
// garbage collector notices.
type Driver struct {
	model   *bnb.Model
	cfg     config
	co      *coro.Coroutine[Call, Result]
	cs      []Constructor
	pending Call
	state   State
	cleanup runtime.Cleanup
	armed   bool
}

// New returns a driver owning a new model in bnb.StageInit.
func New(opts ...Option) *Driver {
	cfg := newConfig(opts)
	return &Driver{model: bnb.New(bnb.WithLogger(cfg.log)), cfg: cfg}
}

// FromModel returns a driver owning m. The caller must not use m other
// than through the driver afterwards.
func FromModel(m *bnb.Model, opts ...Option) *Driver {
	if m == nil {
		panic("steer: FromModel with a nil model")
	}
	return &Driver{model: m, cfg: newConfig(opts)}
}

func newConfig(opts []Option) config {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.log = logging.OrNop(cfg.log)
	return cfg
}

// Model returns the owned model, to build the problem, set parameters,
// and act on the search while a Call is pending.
func (d *Driver) Model() *bnb.Model { return d.model }

// State returns the driver's state.
func (d *Driver) State() State { return d.state }

// Pending returns the pending Call, or nil.
func (d *Driver) Pending() Call { return d.pending }

// Callbacks returns the plugin names under which the last Begin included
// its callbacks, in constructor order.
func (d *Driver) Callbacks() []string {
	if d.co == nil {
		return nil
	}
	names := make([]string, len(d.cs))
	for i, c := range d.cs {
		names[i] = callbackName(c.Kind(), d.co.Serial(), i)
	}
	return names
}

func callbackName(k Kind, serial coro.Serial, i int) string {
	return fmt.Sprintf("steer:%s:%d.%d", k, serial, i)
}

// Begin includes one steered callback per constructor and starts solving.
// It returns the first Call, or nil when the solve completed without
// raising one; the error is then the solve's error, if any.
//
// Begin panics while a solve is in flight.
func (d *Driver) Begin(cs ...Constructor) (Call, error) {
	if d.state == Running || d.state == Suspended {
		panic("steer: Begin while a solve is in flight")
	}
	m := d.model
	log := d.cfg.log
	cs = slices.Clone(cs)
	body := func(ex *executor) error {
		a := adapter{ex: ex, log: log}
		for i, c := range cs {
			name := callbackName(c.Kind(), ex.Serial(), i)
			if err := c.include(m, name, a); err != nil {
				return fmt.Errorf("steer: include %s: %w", name, err)
			}
		}
		return m.Solve()
	}

	d.state = Running
	d.pending = nil
	d.cs = cs
	defer d.recoverBody()
	d.co = coro.New[Call, Result](body)
	d.cleanup = runtime.AddCleanup(d, func(ex *executor) { ex.Expire() }, d.co.Executor())
	d.armed = true
	log.Debug("solve begun", "serial", d.co.Serial(), "callbacks", len(cs))
	return d.next()
}

// Continue answers the pending Call with r and returns the next Call, or
// nil once the solve has completed.
//
// Continue(Stop) interrupts the solver, waits for the solve to wind down
// without raising further Calls, and returns nil.
// Continue panics when no Call is pending.
func (d *Driver) Continue(r Result) (Call, error) {
	if d.state != Suspended {
		panic("steer: Continue without a pending call")
	}
	k := d.pending.Kind()
	d.pending = nil
	d.state = Running
	defer d.recoverBody()
	d.cfg.metrics.result(k, r)
	if r == Stop {
		d.cfg.metrics.stop()
		d.cfg.log.Debug("solve stopped", "serial", d.co.Serial(), "kind", k)
		d.co.Close()
		return d.next()
	}
	d.co.Resume(r)
	return d.next()
}

// Close abandons an in-flight solve: the pending callback observes the
// stop, interrupts the solver, and Close waits for Solve to return. It
// returns the solve's error. Close does nothing unless a solve is in flight.
func (d *Driver) Close() error {
	if d.state != Running && d.state != Suspended {
		return nil
	}
	d.pending = nil
	d.cfg.metrics.stop()
	d.cfg.log.Debug("solve abandoned", "serial", d.co.Serial())
	d.co.Close()
	d.co.Wait()
	return d.settle()
}

func (d *Driver) next() (Call, error) {
	call, ok := d.co.Wait()
	if !ok {
		return nil, d.settle()
	}
	d.pending = call
	d.state = Suspended
	d.cfg.metrics.call(call.Kind())
	d.cfg.log.Debug("suspended", "serial", d.co.Serial(), "kind", call.Kind())
	return call, nil
}

// settle records the end of the solve and returns its error.
func (d *Driver) settle() error {
	d.disarm()
	d.state = Finished
	if d.co.Closed() {
		d.state = Terminated
	}
	d.cfg.metrics.solve(d.state)
	if err := d.co.Err(); err != nil {
		d.cfg.log.Debug("solve failed", "serial", d.co.Serial(), "error", err)
		return fmt.Errorf("steer: solve: %w", err)
	}
	d.cfg.log.Debug("solve completed", "serial", d.co.Serial(), "state", d.state, "status", d.model.Status())
	return nil
}

func (d *Driver) disarm() {
	if d.armed {
		d.cleanup.Stop()
		d.armed = false
	}
}

// recoverBody terminates the driver when the solver goroutine panicked,
// then lets the panic continue.
func (d *Driver) recoverBody() {
	if p := recover(); p != nil {
		d.disarm()
		d.pending = nil
		d.state = Terminated
		panic(p)
	}
}

// Copy returns an independent driver holding a copy of the model with the
// global bounds found so far, its parameters and none of its callbacks.
// A model without a problem is not cloned: the copy owns a fresh model.
func (d *Driver) Copy() *Driver { return d.clone(false) }

// CopyOrig is like Copy but keeps the original variable bounds.
func (d *Driver) CopyOrig() *Driver { return d.clone(true) }

func (d *Driver) clone(orig bool) *Driver {
	c := &Driver{cfg: d.cfg}
	if d.model.Stage() == bnb.StageInit {
		c.model = bnb.New(bnb.WithLogger(d.model.Logger()))
		d.cfg.metrics.clone(cloneFresh)
		return c
	}
	c.model = cloneModel(d.model, orig)
	mode := cloneFull
	if orig {
		mode = cloneOrig
	}
	d.cfg.metrics.clone(mode)
	d.cfg.log.Debug("model cloned", "mode", mode, "problem", d.model.Name())
	return c
}
