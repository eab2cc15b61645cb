// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package steer

import (
	"fmt"

	"code.hybscloud.com/kont"

	"code.hybscloud.com/steer/bnb"
)

// Kind identifies the solver callback a [Call] was raised by.
type Kind uint8

const (
	KindBranchrule Kind = iota
	KindHeuristic
)

func (k Kind) String() string {
	switch k {
	case KindBranchrule:
		return "branchrule"
	case KindHeuristic:
		return "heuristic"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Origin is the branching entry point the solver called.
type Origin uint8

const (
	// AtLP: the focus node has an LP solution with fractional candidates.
	AtLP Origin = iota
	// External: external branching candidates were registered.
	External
	// Pseudo: the node has no LP solution; branch on the pseudo solution.
	Pseudo
)

func (o Origin) String() string {
	switch o {
	case AtLP:
		return "lp"
	case External:
		return "external"
	case Pseudo:
		return "pseudo"
	}
	return fmt.Sprintf("origin(%d)", uint8(o))
}

// Call is a solver callback suspended until the controller answers it with
// a [Result]. The variants are [BranchruleCall] and [HeuristicCall].
//
// Every variant is a kont operation whose resumption value is a Result,
// so a Call can be dispatched by any kont handler (see [Drive]).
type Call interface {
	Kind() Kind
	OpResult() Result
	sealed()
}

// BranchruleCall is raised when the solver asks a branching rule to split
// the focus node. While it is pending, decisions are applied through the
// model (bnb.Model.Branch, BranchCands, ChgVarLbNode, ...).
type BranchruleCall struct {
	kont.Phantom[Result]
	// AllowAddConstraints reports whether the rule may add constraints.
	AllowAddConstraints bool
	Origin              Origin
}

func (BranchruleCall) Kind() Kind { return KindBranchrule }
func (BranchruleCall) sealed()    {}

// HeuristicCall is raised when the solver runs a primal heuristic.
type HeuristicCall struct {
	kont.Phantom[Result]
	// Timing is the single point in node processing the call is made at.
	Timing bnb.HeurTiming
	// NodeInfeasible reports that the focus node was found infeasible.
	NodeInfeasible bool
}

func (HeuristicCall) Kind() Kind { return KindHeuristic }
func (HeuristicCall) sealed()    {}
