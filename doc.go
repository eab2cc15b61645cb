// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package steer drives a callback-based branch-and-bound solve one
// decision at a time.
//
// A solver runs its search in one blocking call and reaches user code only
// through callbacks. steer inverts that control flow: the solve runs on a
// coroutine (package coro), and every steered callback suspends it and
// hands a [Call] to the controller. The controller inspects the search
// through the model, answers with a [Result], and the solve resumes until
// the next Call.
//
// # Driving a solve
//
//	d := steer.New()
//	m := d.Model()
//	// ... m.CreateProb, m.AddVar, m.AddCons ...
//	call, err := d.Begin(steer.DefaultBranchrule())
//	for call != nil {
//		cands, _ := m.BranchCands()
//		if err := m.Branch(cands[0]); err != nil {
//			call, err = d.Continue(steer.Stop)
//			continue
//		}
//		call, err = d.Continue(steer.Branched)
//	}
//
// Calls are [BranchruleCall] and [HeuristicCall]. Each kind accepts its
// own set of results; answering with one it does not accept fails the
// solve with a [*CallbackError]. [Stop] interrupts the solver: the solve
// winds down without raising further Calls and Continue returns nil.
//
// # Cancellation
//
// Callbacks never keep the driver alive. [Driver.Close], or the garbage
// collection of a suspended driver, expires the solve: the pending
// callback wakes with a stop and interrupts the solver, and later
// callbacks answer DidNotRun without suspending.
//
// # Cloning
//
// [Driver.Copy] and [Driver.CopyOrig] clone the model under one
// process-wide lock. A driver whose model holds no problem yet is cloned
// into a fresh model without taking it.
//
// # Handlers
//
// Every Call is a kont operation resumed with a Result, so a whole solve
// can be driven by a kont handler with [Drive].
package steer
