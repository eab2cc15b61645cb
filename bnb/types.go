// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bnb

import (
	"errors"
	"fmt"
)

// Stage is the life-cycle stage of a [Model].
type Stage uint32

const (
	// StageInit: no problem has been created yet.
	StageInit Stage = iota
	// StageProblem: the problem is being built.
	StageProblem
	// StageSolving: Solve is running.
	StageSolving
	// StageSolved: Solve returned.
	StageSolved
)

func (s Stage) String() string {
	switch s {
	case StageInit:
		return "init"
	case StageProblem:
		return "problem"
	case StageSolving:
		return "solving"
	case StageSolved:
		return "solved"
	}
	return fmt.Sprintf("stage(%d)", uint32(s))
}

// Status describes how the last Solve ended.
type Status uint8

const (
	StatusUnknown Status = iota
	StatusOptimal
	StatusInfeasible
	StatusUnbounded
	StatusNodeLimit
	StatusTimeLimit
	StatusGapLimit
	StatusUserInterrupt
)

func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusNodeLimit:
		return "nodelimit"
	case StatusTimeLimit:
		return "timelimit"
	case StatusGapLimit:
		return "gaplimit"
	case StatusUserInterrupt:
		return "userinterrupt"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Result is the code a plugin callback returns to the search.
type Result uint8

const (
	// DidNotRun: the plugin abstained; the search proceeds with its default.
	DidNotRun Result = iota
	// Delayed: a heuristic postponed itself.
	Delayed
	// DidNotFind: a heuristic ran without finding a solution.
	DidNotFind
	// Found: a heuristic submitted a solution.
	Found
	// Branched: a branching rule created children with Branch.
	Branched
	// CutOff: a branching rule proved the focus node can be pruned.
	CutOff
	// ReducedDom: a branching rule tightened bounds of the focus node.
	ReducedDom
)

func (r Result) String() string {
	switch r {
	case DidNotRun:
		return "didnotrun"
	case Delayed:
		return "delayed"
	case DidNotFind:
		return "didnotfind"
	case Found:
		return "found"
	case Branched:
		return "branched"
	case CutOff:
		return "cutoff"
	case ReducedDom:
		return "reduceddom"
	}
	return fmt.Sprintf("result(%d)", uint8(r))
}

// HeurTiming is a bitmask of the points in node processing where a
// heuristic may run.
type HeurTiming uint32

const (
	// BeforeNode: before the focus node is processed.
	BeforeNode HeurTiming = 1 << iota
	// AfterLPNode: after the LP relaxation of the focus node was solved.
	AfterLPNode
	// AfterPseudoNode: after a node processed without an LP solution.
	AfterPseudoNode

	// AfterNode is AfterLPNode | AfterPseudoNode.
	AfterNode = AfterLPNode | AfterPseudoNode
)

func (t HeurTiming) String() string {
	switch t {
	case BeforeNode:
		return "beforenode"
	case AfterLPNode:
		return "afterlpnode"
	case AfterPseudoNode:
		return "afterpseudonode"
	case AfterNode:
		return "afternode"
	}
	return fmt.Sprintf("timing(%#x)", uint32(t))
}

var (
	ErrNoProblem       = errors.New("bnb: no problem created")
	ErrWrongStage      = errors.New("bnb: operation not valid in this stage")
	ErrNotSolving      = errors.New("bnb: not solving")
	ErrUnknownVar      = errors.New("bnb: unknown variable")
	ErrUnknownParam    = errors.New("bnb: unknown parameter")
	ErrParamType       = errors.New("bnb: parameter type mismatch")
	ErrParamValue      = errors.New("bnb: parameter value out of range")
	ErrDuplicatePlugin = errors.New("bnb: plugin name already included")
	ErrInvalidResult   = errors.New("bnb: invalid plugin result")
	ErrNoBranching     = errors.New("bnb: plugin reported branched but created no children")
	ErrNotBranching    = errors.New("bnb: branching is only valid inside a branching rule")
	ErrCannotBranch    = errors.New("bnb: variable cannot be branched on")
	ErrNoFocusNode     = errors.New("bnb: no focus node")
)

// PluginError reports a failure raised by, or blamed on, an included plugin.
// Solve stops and returns it.
type PluginError struct {
	Plugin string
	Err    error
}

func (e *PluginError) Error() string {
	return "bnb: plugin " + e.Plugin + ": " + e.Err.Error()
}

func (e *PluginError) Unwrap() error { return e.Err }
