// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package steer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/steer/bnb"
	"code.hybscloud.com/steer/coro"
	"code.hybscloud.com/steer/internal/logging"
)

func TestYieldCallWithoutExecutor(t *testing.T) {
	res, err := yieldCall(adapter{log: logging.NewNop()}, nil, HeuristicCall{}, heuristicResult)
	require.NoError(t, err)
	assert.Equal(t, bnb.DidNotRun, res)
}

func TestYieldCallExpiredDoesNotSuspend(t *testing.T) {
	if raceEnabled {
		t.Skip("skip: coroutine handoff uses SPSC cross-variable ordering")
	}
	var res bnb.Result
	var err error
	co := coro.New(func(ex *executor) error {
		ex.Expire()
		res, err = yieldCall(adapter{ex: ex, log: logging.NewNop()}, nil, BranchruleCall{}, branchruleResult)
		return nil
	})
	_, ok := co.Wait()
	require.False(t, ok)
	require.NoError(t, err)
	assert.Equal(t, bnb.DidNotRun, res)
}

func TestYieldCallRecoversPanic(t *testing.T) {
	if raceEnabled {
		t.Skip("skip: coroutine handoff uses SPSC cross-variable ordering")
	}
	var err error
	co := coro.New(func(ex *executor) error {
		_, err = yieldCall(adapter{ex: ex, log: logging.NewNop()}, nil, HeuristicCall{Timing: bnb.BeforeNode},
			func(Result) (bnb.Result, bool) { panic("translate") })
		return nil
	})
	call, ok := co.Wait()
	require.True(t, ok)
	assert.Equal(t, KindHeuristic, call.Kind())
	co.Resume(Found)
	_, ok = co.Wait()
	require.False(t, ok)

	var ce *CallbackError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, KindHeuristic, ce.Kind)
	assert.Equal(t, "translate", ce.Panic)
	assert.Contains(t, ce.Error(), "panicked")
}

func TestResultTables(t *testing.T) {
	for r := DidNotRun; r <= Stop; r++ {
		_, br := branchruleResult(r)
		_, he := heuristicResult(r)
		switch r {
		case DidNotRun:
			assert.True(t, br && he, r.String())
		case Branched, CutOff, ReducedDom:
			assert.True(t, br && !he, r.String())
		case Found, DidNotFind, Delayed:
			assert.True(t, he && !br, r.String())
		case Stop:
			assert.False(t, br || he)
		}
	}
}
