// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package bnb is a small branch-and-bound solver for mixed-integer linear
// programs with plugin extension points.
//
// A [Model] moves through four stages: [StageInit] after [New],
// [StageProblem] after [Model.CreateProb], [StageSolving] while
// [Model.Solve] runs, and [StageSolved] once it returns.
//
// Solve is blocking and calls the included plugins synchronously:
//
//   - a [Branchrule] decides how a focus node is split, and is called
//     through ExecLP, ExecExt or ExecPs depending on whether the node has
//     an LP solution or external candidates;
//   - a [Heuristic] looks for primal solutions at the timings in its mask,
//     at depths selected by its frequency and offset.
//
// Rules and heuristics run in priority order. When every rule returns
// DidNotRun the node is split on the most fractional LP candidate.
// Inside a callback the plugin reads the search through [Model.BranchCands],
// [Model.PseudoCands], [Model.LPSol] and [Model.NodeDepth], and acts on it
// through [Model.Branch], [Model.TrySol] and [Model.Interrupt].
//
// Node relaxations are solved with the simplex of gonums lp package. Parameters
// are typed and can be loaded from YAML with [ReadParams]:
//
//	limits:
//	  nodes: 1000
//	  gap: 0.01
//	nodeselection/strategy: d
package bnb
