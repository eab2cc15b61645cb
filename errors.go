// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package steer

import (
	"errors"
	"fmt"
)

var (
	// ErrResultKind is returned to the solver when the controller answers
	// a Call with a Result its kind does not accept.
	ErrResultKind = errors.New("steer: result not accepted by this callback kind")
	// ErrResumeType is returned by Drive when a handler resumes a Call
	// with a value that is not a Result.
	ErrResumeType = errors.New("steer: handler resumed with a non-Result value")
)

// CallbackError is what an adapter reports to the solver when translating
// a Call or its Result failed. The solver stops and its Solve error, which
// Begin or Continue surfaces, wraps the CallbackError.
type CallbackError struct {
	Kind   Kind
	Result Result
	// Panic holds the recovered value when the callback panicked.
	Panic any
	Err   error
}

func (e *CallbackError) Error() string {
	switch {
	case e.Panic != nil:
		return fmt.Sprintf("steer: %s callback panicked: %v", e.Kind, e.Panic)
	case errors.Is(e.Err, ErrResultKind):
		return fmt.Sprintf("steer: %s callback: result %s not accepted", e.Kind, e.Result)
	}
	return fmt.Sprintf("steer: %s callback: %v", e.Kind, e.Err)
}

func (e *CallbackError) Unwrap() error { return e.Err }
