// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package coro

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
	"code.hybscloud.com/lfq"
)

// queueCapacity bounds both transport queues.
// The wait/resume handshake keeps at most one element in flight.
const queueCapacity = 2

// Serial identifies a coroutine within the process. New hands out
// increasing serials starting at 1.
type Serial = uint32

var serials atomix.Uint32

// StopToken is delivered to the body instead of a message when the
// controller stopped or abandoned the coroutine.
type StopToken struct{}

// MessageOrStop is what Yield hands back to the body:
// Left(StopToken) when the body must terminate, Right(message) otherwise.
type MessageOrStop[M any] = kont.Either[StopToken, M]

// IsStop reports whether m carries a StopToken.
func IsStop[M any](m MessageOrStop[M]) bool {
	return m.IsLeft()
}

// Body is the code run by the executor. It yields values through ex and
// must return promptly once Yield delivers a StopToken.
type Body[R, M any] func(ex *Executor[R, M]) error

// Executor is the body-side handle of a coroutine.
//
// It does not keep the controller alive: once the owning [Coroutine] is
// closed (or its owner is collected and expires it), Expired reports true
// and Yield returns a StopToken without suspending. An executor whose body
// has returned is expired as well.
type Executor[R, M any] struct {
	valueQ   lfq.SPSC[R] // body → controller
	messageQ lfq.SPSC[M] // controller → body
	value    R
	expired  atomix.Uint32
	done     atomix.Uint32
	err      error
	panicked bool
	panicVal any
	serial   Serial
}

// Yield suspends the body, hands v to the controller, and blocks until the
// controller resumes with a message or abandons the coroutine.
//
// If the executor has already expired, Yield returns a StopToken at once
// and v is never observed by the controller.
func (ex *Executor[R, M]) Yield(v R) MessageOrStop[M] {
	if ex.Expired() {
		return kont.Left[StopToken, M](StopToken{})
	}
	ex.value = v
	if err := ex.valueQ.Enqueue(&ex.value); err != nil {
		panic("coro: yield with an unconsumed value")
	}
	var bo iox.Backoff
	for {
		m, err := ex.messageQ.Dequeue()
		if err == nil {
			return kont.Right[StopToken](m)
		}
		if ex.Expired() {
			return kont.Left[StopToken, M](StopToken{})
		}
		bo.Wait()
	}
}

// Expired reports whether the owning handle was closed or abandoned,
// or the body has returned.
func (ex *Executor[R, M]) Expired() bool {
	return ex.expired.Load() != 0
}

// Expire marks the executor as abandoned. A body suspended in Yield wakes
// with a StopToken. Safe to call from any goroutine, any number of times.
func (ex *Executor[R, M]) Expire() {
	ex.expired.Store(1)
}

// Serial returns the serial number of the coroutine this executor belongs to.
func (ex *Executor[R, M]) Serial() Serial {
	return ex.serial
}

// run executes body on the calling goroutine and records how it ended.
// A panic in body is captured and re-raised on the controller by Wait.
func (ex *Executor[R, M]) run(body Body[R, M]) {
	defer func() {
		if r := recover(); r != nil {
			ex.panicked = true
			ex.panicVal = r
		}
		ex.expired.Store(1)
		ex.done.Store(1)
	}()
	ex.err = body(ex)
}

// Coroutine is the controller-side handle of a two-party rendezvous.
//
// Exactly one side executes at any instant: the controller blocks in New
// and Wait while the body runs, and the body blocks in Yield while the
// controller runs. The handle is owned by a single controller and must not
// be copied or shared between goroutines.
type Coroutine[R, M any] struct {
	ex       *Executor[R, M]
	message  M
	first    R
	primed   bool
	firstOK  bool
	pending  bool
	finished bool
	closed   bool
}

// New starts body on its own goroutine and returns once the body has
// yielded its first value or completed.
//
// A panic raised by body before its first yield is re-raised by New.
func New[R, M any](body Body[R, M]) *Coroutine[R, M] {
	ex := &Executor[R, M]{serial: serials.Add(1)}
	ex.valueQ.Init(queueCapacity)
	ex.messageQ.Init(queueCapacity)
	c := &Coroutine[R, M]{ex: ex}
	go ex.run(body)
	c.first, c.firstOK = c.recv()
	c.primed = true
	return c
}

// Wait returns the next value yielded by the body, or false once the body
// has completed.
//
// Wait must not be called again before Resume once it returned a value;
// doing so panics. After completion Wait keeps returning false.
func (c *Coroutine[R, M]) Wait() (R, bool) {
	if c.pending {
		panic("coro: Wait called twice without Resume")
	}
	var zero R
	if c.finished {
		return zero, false
	}
	if c.closed {
		// A closed body never hands out another value; drain it to completion.
		c.first, c.primed = zero, false
		for {
			if _, ok := c.recv(); !ok {
				break
			}
		}
		c.finished = true
		return zero, false
	}
	v, ok := c.first, c.firstOK
	if c.primed {
		c.first, c.primed = zero, false
	} else {
		v, ok = c.recv()
	}
	if !ok {
		c.finished = true
		return zero, false
	}
	c.pending = true
	return v, true
}

// Resume hands m to the suspended body. It does not block.
// Resume panics unless the previous Wait returned a value.
func (c *Coroutine[R, M]) Resume(m M) {
	if !c.pending {
		panic("coro: Resume without a pending value")
	}
	c.pending = false
	c.message = m
	if err := c.ex.messageQ.Enqueue(&c.message); err != nil {
		panic("coro: Resume with an unconsumed message")
	}
}

// Close abandons the body. A body suspended in Yield wakes with a
// StopToken, and every later Yield returns a StopToken immediately.
// Close does not wait for the body; call Wait until it returns false to
// observe completion. Close is idempotent.
func (c *Coroutine[R, M]) Close() {
	c.closed = true
	c.pending = false
	c.ex.Expire()
}

// Closed reports whether Close was called.
func (c *Coroutine[R, M]) Closed() bool {
	return c.closed
}

// Done reports whether Wait has observed completion of the body.
func (c *Coroutine[R, M]) Done() bool {
	return c.finished
}

// Err returns the error returned by the body.
// It is nil until Wait has observed completion.
func (c *Coroutine[R, M]) Err() error {
	if !c.finished {
		return nil
	}
	return c.ex.err
}

// Executor returns the body-side handle. Holding it does not keep the
// controller alive; it is meant for expiring the body from a cleanup.
func (c *Coroutine[R, M]) Executor() *Executor[R, M] {
	return c.ex
}

// Serial returns the serial number assigned to this coroutine.
func (c *Coroutine[R, M]) Serial() Serial {
	return c.ex.serial
}

// recv blocks until the body yields a value or completes,
// backing off on iox.ErrWouldBlock with iox.Backoff.
func (c *Coroutine[R, M]) recv() (R, bool) {
	var bo iox.Backoff
	for {
		v, err := c.ex.valueQ.Dequeue()
		if err == nil {
			return v, true
		}
		if c.ex.done.Load() != 0 {
			if c.ex.panicked {
				c.finished = true
				panic(c.ex.panicVal)
			}
			var zero R
			return zero, false
		}
		bo.Wait()
	}
}
