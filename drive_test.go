// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package steer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/kont"
	"code.hybscloud.com/steer"
	"code.hybscloud.com/steer/bnb"
)

func TestDriveBranching(t *testing.T) {
	skipRace(t)
	d := pairDriver(t)
	m := d.Model()
	var seen []steer.Call
	h := kont.HandleFunc[steer.Result](func(op kont.Operation) (kont.Resumed, bool) {
		call := op.(steer.Call)
		seen = append(seen, call)
		switch c := call.(type) {
		case steer.BranchruleCall:
			require.Equal(t, steer.AtLP, c.Origin)
			return branchFirst(t, m), true
		case steer.HeuristicCall:
			return steer.DidNotFind, true
		}
		return steer.DidNotRun, true
	})

	require.NoError(t, steer.Drive(d, h, steer.DefaultBranchrule(), steer.DefaultHeuristic()))
	assert.NotEmpty(t, seen)
	assert.Equal(t, steer.Finished, d.State())
	assert.Equal(t, bnb.StatusOptimal, m.Status())
	assert.InDelta(t, 1.0, m.ObjVal(), 1e-9)
}

func TestDriveShortCircuitStops(t *testing.T) {
	skipRace(t)
	d := pairDriver(t)
	n := 0
	h := kont.HandleFunc[steer.Result](func(kont.Operation) (kont.Resumed, bool) {
		n++
		return nil, false
	})

	require.NoError(t, steer.Drive(d, h, steer.DefaultHeuristic()))
	assert.Equal(t, 1, n)
	assert.Equal(t, steer.Terminated, d.State())
	assert.Equal(t, bnb.StatusUserInterrupt, d.Model().Status())
}

func TestDriveRejectsNonResult(t *testing.T) {
	skipRace(t)
	d := pairDriver(t)
	h := kont.HandleFunc[steer.Result](func(kont.Operation) (kont.Resumed, bool) {
		return "branched", true
	})

	err := steer.Drive(d, h, steer.DefaultHeuristic())
	assert.ErrorIs(t, err, steer.ErrResumeType)
	assert.Equal(t, steer.Terminated, d.State())
}

func TestDriveHandlerPanicAbandonsSolve(t *testing.T) {
	skipRace(t)
	d := pairDriver(t)
	h := kont.HandleFunc[steer.Result](func(kont.Operation) (kont.Resumed, bool) {
		panic("handler failed")
	})

	assert.PanicsWithValue(t, "handler failed", func() {
		steer.Drive(d, h, steer.DefaultHeuristic())
	})
	assert.Equal(t, steer.Terminated, d.State())
	assert.Equal(t, bnb.StageSolved, d.Model().Stage())
}

func TestDriveWithoutCalls(t *testing.T) {
	d := pairDriver(t)
	h := kont.HandleFunc[steer.Result](func(kont.Operation) (kont.Resumed, bool) {
		t.Fatal("unexpected call")
		return nil, false
	})
	require.NoError(t, steer.Drive(d, h))
	assert.Equal(t, steer.Finished, d.State())
}
