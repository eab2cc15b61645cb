// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package steer

import (
	"log/slog"

	"code.hybscloud.com/steer/bnb"
	"code.hybscloud.com/steer/coro"
)

type executor = coro.Executor[Call, Result]

// adapter is the state shared by the plugins of one solve. It holds only
// the body-side handle, never the driver.
type adapter struct {
	ex  *executor
	log *slog.Logger
}

// yieldCall suspends the solve on call and translates the controller's
// answer with accept. Expired executors and stops answer DidNotRun; a stop
// also interrupts the solver.
func yieldCall[C Call](a adapter, m *bnb.Model, call C, accept func(Result) (bnb.Result, bool)) (res bnb.Result, err error) {
	if a.ex == nil || a.ex.Expired() {
		return bnb.DidNotRun, nil
	}
	defer func() {
		if p := recover(); p != nil {
			res, err = bnb.DidNotRun, &CallbackError{Kind: call.Kind(), Panic: p}
		}
	}()

	msg := a.ex.Yield(call)
	r, ok := msg.GetRight()
	if !ok || r == Stop {
		a.log.Debug("callback stopped", "kind", call.Kind(), "serial", a.ex.Serial())
		if err := m.Interrupt(); err != nil {
			return bnb.DidNotRun, &CallbackError{Kind: call.Kind(), Result: Stop, Err: err}
		}
		return bnb.DidNotRun, nil
	}
	out, ok := accept(r)
	if !ok {
		return bnb.DidNotRun, &CallbackError{Kind: call.Kind(), Result: r, Err: ErrResultKind}
	}
	return out, nil
}

type branchruleAdapter struct{ adapter }

func (a *branchruleAdapter) exec(m *bnb.Model, allowAddCons bool, origin Origin) (bnb.Result, error) {
	return yieldCall(a.adapter, m, BranchruleCall{AllowAddConstraints: allowAddCons, Origin: origin}, branchruleResult)
}

func (a *branchruleAdapter) ExecLP(m *bnb.Model, allowAddCons bool) (bnb.Result, error) {
	return a.exec(m, allowAddCons, AtLP)
}

func (a *branchruleAdapter) ExecExt(m *bnb.Model, allowAddCons bool) (bnb.Result, error) {
	return a.exec(m, allowAddCons, External)
}

func (a *branchruleAdapter) ExecPs(m *bnb.Model, allowAddCons bool) (bnb.Result, error) {
	return a.exec(m, allowAddCons, Pseudo)
}

type heuristicAdapter struct{ adapter }

func (a *heuristicAdapter) Exec(m *bnb.Model, timing bnb.HeurTiming, nodeInfeasible bool) (bnb.Result, error) {
	return yieldCall(a.adapter, m, HeuristicCall{Timing: timing, NodeInfeasible: nodeInfeasible}, heuristicResult)
}
