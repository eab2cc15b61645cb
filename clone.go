// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package steer

import (
	"sync"

	"code.hybscloud.com/steer/bnb"
)

// cloneRegistry serializes model clones across the process:
// bnb.Model.Copy and CopyOrig are not reentrant.
var cloneRegistry sync.Mutex

func cloneModel(m *bnb.Model, orig bool) *bnb.Model {
	cloneRegistry.Lock()
	defer cloneRegistry.Unlock()
	if orig {
		return m.CopyOrig()
	}
	return m.Copy()
}
