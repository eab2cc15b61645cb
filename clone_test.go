// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package steer_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"code.hybscloud.com/steer"
	"code.hybscloud.com/steer/bnb"
)

func TestCopyUninitialized(t *testing.T) {
	metrics := steer.NewMetrics(prometheus.NewRegistry())
	d := steer.New(steer.WithMetrics(metrics))

	for _, c := range []*steer.Driver{d.Copy(), d.CopyOrig()} {
		assert.NotSame(t, d.Model(), c.Model())
		assert.Equal(t, bnb.StageInit, c.Model().Stage())
		assert.Equal(t, steer.Idle, c.State())
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Clones.WithLabelValues("fresh")))
	assert.Zero(t, testutil.ToFloat64(metrics.Clones.WithLabelValues("full")))
	assert.Zero(t, testutil.ToFloat64(metrics.Clones.WithLabelValues("orig")))
}

func TestCopyIsIndependent(t *testing.T) {
	skipRace(t)
	d := pairDriver(t)
	m := d.Model()
	require.NoError(t, m.SetParam("limits/nodes", 50))
	call, err := d.Begin(steer.DefaultBranchrule())
	require.NoError(t, err)
	require.NotNil(t, call)

	c := d.Copy()
	o := d.CopyOrig()
	for _, cl := range []*steer.Driver{c, o} {
		cm := cl.Model()
		require.Equal(t, bnb.StageProblem, cm.Stage())
		assert.Equal(t, m.NVars(), cm.NVars())
		assert.Equal(t, m.NConss(), cm.NConss())
		n, err := cm.LongParam("limits/nodes")
		require.NoError(t, err)
		assert.Equal(t, int64(50), n)
	}

	require.NoError(t, c.Model().SetParam("limits/nodes", 1))
	call, err = c.Begin()
	require.NoError(t, err)
	assert.Nil(t, call)
	assert.Equal(t, bnb.StatusNodeLimit, c.Model().Status())

	for call, err = d.Continue(branchFirst(t, m)); call != nil; call, err = d.Continue(branchFirst(t, m)) {
		require.NoError(t, err)
	}
	require.NoError(t, err)
	assert.Equal(t, bnb.StatusOptimal, m.Status())

	call, err = o.Begin(steer.DefaultHeuristic())
	require.NoError(t, err)
	require.NotNil(t, call)
	require.NoError(t, o.Close())
}

func TestCopyKeepsRootReductions(t *testing.T) {
	skipRace(t)
	d := pairDriver(t)
	m := d.Model()
	call, err := d.Begin(steer.DefaultBranchrule())
	require.NoError(t, err)
	require.NotNil(t, call)
	require.NoError(t, m.ChgVarUbNode(1, 0))
	_, err = d.Continue(steer.ReducedDom)
	require.NoError(t, err)
	require.Equal(t, steer.Finished, d.State())

	assert.Equal(t, 0.0, d.Copy().Model().Vars()[1].Ub)
	assert.Equal(t, 1.0, d.CopyOrig().Model().Vars()[1].Ub)
}

func TestConcurrentCopies(t *testing.T) {
	skipRace(t)
	const goroutines, rounds = 8, 25
	metrics := steer.NewMetrics(prometheus.NewRegistry())
	d := pairDriver(t, steer.WithMetrics(metrics))
	call, err := d.Begin(steer.DefaultHeuristic())
	require.NoError(t, err)
	require.NotNil(t, call)

	var g errgroup.Group
	copies := make([][]*steer.Driver, goroutines)
	for i := range goroutines {
		g.Go(func() error {
			for r := range rounds {
				c := d.Copy()
				if r%2 == 1 {
					c = d.CopyOrig()
				}
				copies[i] = append(copies[i], c)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for _, cs := range copies {
		require.Len(t, cs, rounds)
		for _, c := range cs {
			require.Equal(t, bnb.StageProblem, c.Model().Stage())
			require.Equal(t, d.Model().Vars(), c.Model().Vars())
		}
	}
	total := testutil.ToFloat64(metrics.Clones.WithLabelValues("full")) +
		testutil.ToFloat64(metrics.Clones.WithLabelValues("orig"))
	assert.Equal(t, float64(goroutines*rounds), total)

	call, err = d.Continue(steer.Stop)
	require.NoError(t, err)
	assert.Nil(t, call)
}
