// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bnb_test

import (
	"bytes"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/steer/bnb"
	"code.hybscloud.com/steer/internal/logging"
)

func TestCopyInit(t *testing.T) {
	m := bnb.New()
	c := m.Copy()
	assert.NotSame(t, m, c)
	assert.Equal(t, bnb.StageInit, c.Stage())
	assert.Equal(t, bnb.StageInit, m.CopyOrig().Stage())
}

func TestCopyIndependent(t *testing.T) {
	m := newKnapsack(t)
	require.NoError(t, m.SetParam("limits/nodes", 7))

	c := m.Copy()
	require.Equal(t, bnb.StageProblem, c.Stage())
	assert.Equal(t, m.Vars(), c.Vars())
	assert.Equal(t, m.NConss(), c.NConss())
	assert.True(t, c.Maximize())
	n, err := c.LongParam("limits/nodes")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	_, err = c.AddVar("extra", 0, 1, 1, true)
	require.NoError(t, err)
	require.NoError(t, c.SetParam("limits/nodes", -1))
	assert.Equal(t, 3, m.NVars())
	n, _ = m.LongParam("limits/nodes")
	assert.Equal(t, int64(7), n)

	require.NoError(t, c.Solve())
	assert.Equal(t, bnb.StageProblem, m.Stage())
	assert.InDelta(t, 21.0, c.ObjVal(), 1e-9)
}

func TestCopyHasNoPlugins(t *testing.T) {
	m := newPair(t)
	require.NoError(t, m.IncludeHeuristic(bnb.HeuristicParams{Name: "h", Freq: 1, Timing: bnb.AfterNode}, &recHeur{}))
	c := m.CopyOrig()
	_, ok := c.PluginCalls("h")
	assert.False(t, ok)
	require.NoError(t, c.IncludeHeuristic(bnb.HeuristicParams{Name: "h", Freq: 1, Timing: bnb.AfterNode}, &recHeur{}))
}

func TestCopySolvedModel(t *testing.T) {
	m := newPair(t)
	require.NoError(t, m.Solve())
	c := m.Copy()
	require.Equal(t, bnb.StageProblem, c.Stage())
	require.NoError(t, c.Solve())
	assert.InDelta(t, m.ObjVal(), c.ObjVal(), 1e-9)
}

func TestSolveLogsWithTag(t *testing.T) {
	var buf bytes.Buffer
	m := bnb.New(bnb.WithLogger(logging.New(&buf, slog.LevelDebug)))
	require.NoError(t, m.CreateProb("logged"))
	_, err := m.AddVar("x", 0, 1, -1, true)
	require.NoError(t, err)
	require.NoError(t, m.SetParam("display/tag", "t1"))
	require.NoError(t, m.Solve())

	out := buf.String()
	assert.Contains(t, out, "solve started")
	assert.Contains(t, out, "tag=t1")
	assert.Contains(t, out, "solve finished")
	assert.InDelta(t, -1.0, m.ObjVal(), 1e-9)
}

func TestGapLimit(t *testing.T) {
	m := newKnapsack(t)
	greedy := heurFunc(func(m *bnb.Model, _ bnb.HeurTiming, _ bool) (bnb.Result, error) {
		ok, err := m.TrySol([]float64{0, 1, 1})
		if !ok {
			return bnb.DidNotFind, err
		}
		return bnb.Found, err
	})
	require.NoError(t, m.IncludeHeuristic(bnb.HeuristicParams{Name: "greedy", Freq: 0, Timing: bnb.BeforeNode}, greedy))
	require.NoError(t, m.SetParam("limits/gap", 0.5))
	require.NoError(t, m.Solve())
	assert.Equal(t, bnb.StatusGapLimit, m.Status())
	assert.LessOrEqual(t, m.Gap(), 0.5)
	assert.False(t, math.IsInf(m.DualBound(), 0))
}
