// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bnb

import (
	"fmt"
	"slices"
)

// Branchrule decides how the focus node is split. The search calls
// exactly one of its methods per focus node, chosen by the state of the
// node: ExecLP when the LP relaxation is solved and has fractional
// candidates, ExecExt when external candidates were registered, and
// ExecPs otherwise.
//
// A rule returns Branched after calling [Model.Branch], CutOff to prune
// the node, ReducedDom after tightening node bounds, or DidNotRun to defer
// to the next rule.
type Branchrule interface {
	ExecLP(m *Model, allowAddCons bool) (Result, error)
	ExecExt(m *Model, allowAddCons bool) (Result, error)
	ExecPs(m *Model, allowAddCons bool) (Result, error)
}

// Heuristic searches for primal solutions and submits them with
// [Model.TrySol]. It returns Found, DidNotFind, Delayed or DidNotRun.
type Heuristic interface {
	Exec(m *Model, timing HeurTiming, nodeInfeasible bool) (Result, error)
}

// BranchruleParams are the registration parameters of a branching rule.
type BranchruleParams struct {
	Name        string
	Description string
	// Priority orders rules; higher runs first.
	Priority int
	// MaxDepth is the deepest node depth the rule is called at; -1 for no limit.
	MaxDepth int
	// MaxBoundDist is the largest relative distance of the node's bound
	// from the global lower bound, in [0, 1], at which the rule is called.
	MaxBoundDist float64
}

// HeuristicParams are the registration parameters of a primal heuristic.
type HeuristicParams struct {
	Name        string
	Description string
	// DispChar is a one-letter tag shown in logs.
	DispChar byte
	Priority int
	// Freq calls the heuristic at depths FreqOfs, FreqOfs+Freq, ...;
	// 0 calls it only at depth FreqOfs and a negative value never.
	Freq     int
	FreqOfs  int
	MaxDepth int
	Timing   HeurTiming
	// UsesSubSolver marks heuristics that solve sub-models.
	UsesSubSolver bool
}

type branchruleEntry struct {
	BranchruleParams
	rule  Branchrule
	calls int64
}

type heuristicEntry struct {
	HeuristicParams
	heur  Heuristic
	calls int64
	found int64
}

func (m *Model) includable(name string) error {
	if st := m.Stage(); st == StageSolving {
		return fmt.Errorf("%w: include %q in stage %s", ErrWrongStage, name, st)
	}
	if name == "" {
		return fmt.Errorf("bnb: plugin name is empty")
	}
	if _, dup := m.plugins[name]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicatePlugin, name)
	}
	return nil
}

// IncludeBranchrule adds a branching rule.
func (m *Model) IncludeBranchrule(p BranchruleParams, r Branchrule) error {
	if err := m.includable(p.Name); err != nil {
		return err
	}
	if p.MaxBoundDist < 0 || p.MaxBoundDist > 1 {
		return fmt.Errorf("%w: branchrule %q maxbounddist %g", ErrParamValue, p.Name, p.MaxBoundDist)
	}
	m.plugins[p.Name] = struct{}{}
	m.branchrules = append(m.branchrules, &branchruleEntry{BranchruleParams: p, rule: r})
	slices.SortStableFunc(m.branchrules, func(a, b *branchruleEntry) int { return b.Priority - a.Priority })
	m.logger.Debug("branchrule included", "name", p.Name, "priority", p.Priority)
	return nil
}

// IncludeHeuristic adds a primal heuristic.
func (m *Model) IncludeHeuristic(p HeuristicParams, h Heuristic) error {
	if err := m.includable(p.Name); err != nil {
		return err
	}
	if p.Timing == 0 {
		return fmt.Errorf("%w: heuristic %q has empty timing", ErrParamValue, p.Name)
	}
	m.plugins[p.Name] = struct{}{}
	m.heuristics = append(m.heuristics, &heuristicEntry{HeuristicParams: p, heur: h})
	slices.SortStableFunc(m.heuristics, func(a, b *heuristicEntry) int { return b.Priority - a.Priority })
	m.logger.Debug("heuristic included", "name", p.Name, "priority", p.Priority, "timing", p.Timing)
	return nil
}

// PluginCalls returns how often the named plugin was called by the last
// search, and false if no such plugin is included.
func (m *Model) PluginCalls(name string) (int64, bool) {
	for _, b := range m.branchrules {
		if b.Name == name {
			return b.calls, true
		}
	}
	for _, h := range m.heuristics {
		if h.Name == name {
			return h.calls, true
		}
	}
	return 0, false
}

func (h *heuristicEntry) due(depth int) bool {
	if h.MaxDepth >= 0 && depth > h.MaxDepth {
		return false
	}
	switch {
	case h.Freq < 0:
		return false
	case h.Freq == 0:
		return depth == h.FreqOfs
	default:
		return depth >= h.FreqOfs && (depth-h.FreqOfs)%h.Freq == 0
	}
}
