// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package coro_test

import "testing"

// skipRace skips tests that hand values between the controller and the
// body. Both queues publish through lfq SPSC, whose store-release on the
// slot and load-acquire on the index the race detector cannot pair.
func skipRace(tb testing.TB) {
	tb.Helper()
	tb.Skip("skip: coroutine handoff uses SPSC cross-variable ordering")
}
