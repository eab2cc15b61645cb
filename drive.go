// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package steer

import (
	"fmt"

	"code.hybscloud.com/kont"
)

// Drive runs a whole solve on d, dispatching every Call through h.
//
// A handler that resumes with (r, true) answers the Call with r, which
// must be a Result. A handler that short-circuits with (_, false) stops
// the solve. If h panics, the solve is abandoned before the panic
// propagates.
//
//	steer.Drive(d, kont.HandleFunc[steer.Result](func(op kont.Operation) (kont.Resumed, bool) {
//		switch op.(type) {
//		case steer.HeuristicCall:
//			return steer.DidNotFind, true
//		}
//		return steer.DidNotRun, true
//	}), steer.DefaultHeuristic())
func Drive[H kont.Handler[H, Result]](d *Driver, h H, cs ...Constructor) error {
	call, err := d.Begin(cs...)
	defer func() {
		if p := recover(); p != nil {
			d.Close()
			panic(p)
		}
	}()
	for call != nil {
		r := Stop
		v, ok := h.Dispatch(call)
		if ok {
			rr, isResult := v.(Result)
			if !isResult {
				d.Close()
				return fmt.Errorf("%w: %T for %s call", ErrResumeType, v, call.Kind())
			}
			r = rr
		}
		call, err = d.Continue(r)
	}
	return err
}
