// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package steer

import (
	"fmt"

	"code.hybscloud.com/steer/bnb"
)

// Result is the controller's answer to a pending [Call].
//
// Branching calls accept DidNotRun, Branched, CutOff and ReducedDom.
// Heuristic calls accept DidNotRun, Found, DidNotFind and Delayed.
// Stop is accepted by both and ends the solve.
type Result uint8

const (
	DidNotRun Result = iota
	Branched
	CutOff
	ReducedDom
	Found
	DidNotFind
	Delayed
	// Stop interrupts the solver and terminates the in-flight solve.
	Stop
)

func (r Result) String() string {
	switch r {
	case DidNotRun:
		return "didnotrun"
	case Branched:
		return "branched"
	case CutOff:
		return "cutoff"
	case ReducedDom:
		return "reduceddom"
	case Found:
		return "found"
	case DidNotFind:
		return "didnotfind"
	case Delayed:
		return "delayed"
	case Stop:
		return "stop"
	}
	return fmt.Sprintf("result(%d)", uint8(r))
}

// branchruleResult translates r for a branching callback.
func branchruleResult(r Result) (bnb.Result, bool) {
	switch r {
	case DidNotRun:
		return bnb.DidNotRun, true
	case Branched:
		return bnb.Branched, true
	case CutOff:
		return bnb.CutOff, true
	case ReducedDom:
		return bnb.ReducedDom, true
	}
	return bnb.DidNotRun, false
}

// heuristicResult translates r for a heuristic callback.
func heuristicResult(r Result) (bnb.Result, bool) {
	switch r {
	case DidNotRun:
		return bnb.DidNotRun, true
	case Found:
		return bnb.Found, true
	case DidNotFind:
		return bnb.DidNotFind, true
	case Delayed:
		return bnb.Delayed, true
	}
	return bnb.DidNotRun, false
}
