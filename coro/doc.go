// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package coro provides a two-party cooperative rendezvous between a
// controller and a body that yields intermediate values.
//
// The body runs on its own goroutine, but control is handed off
// explicitly: exactly one of the two parties executes at any instant.
//
// # Protocol
//
//  1. [New] starts the body and returns once it yields its first value or completes.
//  2. [Coroutine.Wait] returns the yielded value, or false once the body has completed.
//  3. [Coroutine.Resume] hands a message to the suspended body.
//  4. Inside the body, [Executor.Yield] returns that message and the cycle repeats from 2.
//
// Wait twice without Resume, or Resume without a value returned by Wait,
// is a programming error and panics.
//
// # Cancellation
//
// The body only holds an [Executor]. [Coroutine.Close] (or [Executor.Expire]
// from a cleanup once the owner is gone) marks it expired: a suspended
// Yield wakes with a [StopToken], later Yields return one without
// suspending, and [Executor.Expired] lets the body check before trying.
//
// # Transport
//
// Values and messages travel over bounded lock-free SPSC queues from
// [code.hybscloud.com/lfq]. Both sides wait past
// [code.hybscloud.com/iox.ErrWouldBlock] with adaptive backoff.
//
// # Example
//
//	co := coro.New(func(ex *coro.Executor[int, int]) error {
//		i := 5
//		for {
//			m := ex.Yield(i)
//			if coro.IsStop(m) {
//				return nil
//			}
//			d, _ := m.GetRight()
//			i += d
//		}
//	})
//	for i := 0; i < 5; i++ {
//		v, _ := co.Wait()
//		fmt.Println(v)
//		co.Resume(i)
//	}
//	co.Close()
package coro
