// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package steer_test

import "testing"

// skipRace skips tests that suspend a solve. The solver goroutine and the
// controller hand off through lfq SPSC queues, whose ordering the race
// detector cannot see.
func skipRace(tb testing.TB) {
	tb.Helper()
	tb.Skip("skip: solve handoff uses SPSC cross-variable ordering")
}
