// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package steer

import (
	"code.hybscloud.com/steer/bnb"
)

// defaultPriority places steered plugins ahead of every built-in one.
const defaultPriority = 536870911

// Constructor registers one steered callback with the solver. The
// variants are [BranchruleConstructor] and [HeuristicConstructor].
type Constructor interface {
	Kind() Kind
	include(m *bnb.Model, name string, a adapter) error
}

// BranchruleConstructor registers a branching rule whose decisions are
// taken by the controller through [BranchruleCall]s.
type BranchruleConstructor struct {
	Priority int
	// MaxDepth is the deepest node the rule is called at; -1 for no limit.
	MaxDepth int
	// MaxBoundDistance is the largest relative distance, in [0, 1], of a
	// node's bound from the global lower bound at which the rule is called.
	MaxBoundDistance float64
}

// DefaultBranchrule returns a rule that is called at every node first.
func DefaultBranchrule() BranchruleConstructor {
	return BranchruleConstructor{Priority: defaultPriority, MaxDepth: -1, MaxBoundDistance: 1}
}

func (BranchruleConstructor) Kind() Kind { return KindBranchrule }

func (c BranchruleConstructor) include(m *bnb.Model, name string, a adapter) error {
	return m.IncludeBranchrule(bnb.BranchruleParams{
		Name:         name,
		Description:  "branching rule steered by the driver",
		Priority:     c.Priority,
		MaxDepth:     c.MaxDepth,
		MaxBoundDist: c.MaxBoundDistance,
	}, &branchruleAdapter{a})
}

// HeuristicConstructor registers a primal heuristic whose runs are
// reported to the controller as [HeuristicCall]s.
type HeuristicConstructor struct {
	Priority int
	// Frequency calls the heuristic at depths FrequencyOffset,
	// FrequencyOffset+Frequency, ...; 0 only at FrequencyOffset, -1 never.
	Frequency       int
	FrequencyOffset int
	MaxDepth        int
	TimingMask      bnb.HeurTiming
}

// DefaultHeuristic returns a heuristic called after every node.
func DefaultHeuristic() HeuristicConstructor {
	return HeuristicConstructor{
		Priority:   defaultPriority,
		Frequency:  1,
		MaxDepth:   -1,
		TimingMask: bnb.AfterNode,
	}
}

func (HeuristicConstructor) Kind() Kind { return KindHeuristic }

func (c HeuristicConstructor) include(m *bnb.Model, name string, a adapter) error {
	return m.IncludeHeuristic(bnb.HeuristicParams{
		Name:        name,
		Description: "primal heuristic steered by the driver",
		DispChar:    'S',
		Priority:    c.Priority,
		Freq:        c.Frequency,
		FreqOfs:     c.FrequencyOffset,
		MaxDepth:    c.MaxDepth,
		Timing:      c.TimingMask,
	}, &heuristicAdapter{a})
}
