// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bnb_test

import (
	"errors"

	"code.hybscloud.com/steer/bnb"
)

var errBoom = errors.New("boom")

// recRule records how it was called and abstains.
type recRule struct {
	origins []string
	depths  []int
}

func (r *recRule) rec(m *bnb.Model, origin string) (bnb.Result, error) {
	r.origins = append(r.origins, origin)
	r.depths = append(r.depths, m.NodeDepth())
	return bnb.DidNotRun, nil
}

func (r *recRule) ExecLP(m *bnb.Model, _ bool) (bnb.Result, error)  { return r.rec(m, "lp") }
func (r *recRule) ExecExt(m *bnb.Model, _ bool) (bnb.Result, error) { return r.rec(m, "ext") }
func (r *recRule) ExecPs(m *bnb.Model, _ bool) (bnb.Result, error)  { return r.rec(m, "ps") }

// ruleFunc answers every branching origin with the same function.
type ruleFunc func(m *bnb.Model) (bnb.Result, error)

func (f ruleFunc) ExecLP(m *bnb.Model, _ bool) (bnb.Result, error)  { return f(m) }
func (f ruleFunc) ExecExt(m *bnb.Model, _ bool) (bnb.Result, error) { return f(m) }
func (f ruleFunc) ExecPs(m *bnb.Model, _ bool) (bnb.Result, error)  { return f(m) }

type heurCall struct {
	timing     bnb.HeurTiming
	infeasible bool
	depth      int
}

// recHeur records its calls and finds nothing.
type recHeur struct {
	calls []heurCall
}

func (h *recHeur) Exec(m *bnb.Model, timing bnb.HeurTiming, nodeInfeasible bool) (bnb.Result, error) {
	h.calls = append(h.calls, heurCall{timing, nodeInfeasible, m.NodeDepth()})
	return bnb.DidNotFind, nil
}

type heurFunc func(m *bnb.Model, timing bnb.HeurTiming, nodeInfeasible bool) (bnb.Result, error)

func (f heurFunc) Exec(m *bnb.Model, timing bnb.HeurTiming, nodeInfeasible bool) (bnb.Result, error) {
	return f(m, timing, nodeInfeasible)
}
