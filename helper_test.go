// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package steer_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"code.hybscloud.com/steer"
	"code.hybscloud.com/steer/bnb"
)

// buildPair fills m with max x + y s.t. 2x + 2y <= 3 over binaries.
// Its root LP is fractional and its optimum is 1.
func buildPair(t testing.TB, m *bnb.Model) {
	t.Helper()
	require.NoError(t, m.CreateProb("pair"))
	require.NoError(t, m.SetMaximize(true))
	x, err := m.AddVar("x", 0, 1, 1, true)
	require.NoError(t, err)
	y, err := m.AddVar("y", 0, 1, 1, true)
	require.NoError(t, err)
	_, err = m.AddCons("cap", map[int]float64{x: 2, y: 2}, math.Inf(-1), 3)
	require.NoError(t, err)
}

func pairDriver(t testing.TB, opts ...steer.Option) *steer.Driver {
	t.Helper()
	d := steer.New(opts...)
	buildPair(t, d.Model())
	return d
}

// branchFirst answers a branching Call by splitting on the first LP
// candidate, or on the first pseudo candidate without an LP solution.
func branchFirst(t testing.TB, m *bnb.Model) steer.Result {
	t.Helper()
	cands, _ := m.BranchCands()
	if len(cands) == 0 {
		cands = m.PseudoCands()
	}
	require.NotEmpty(t, cands)
	require.NoError(t, m.Branch(cands[0]))
	return steer.Branched
}
