// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package logging_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"code.hybscloud.com/steer/internal/logging"
)

func TestErrorKeyStandardized(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(&buf, slog.LevelDebug)
	l.Error("solve failed", "error", errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "err=boom")
	assert.NotContains(t, out, "error=boom")
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(&buf, slog.LevelInfo)
	l.Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, logging.OrNop(nil))
	l := logging.NewNop()
	assert.Same(t, l, logging.OrNop(l))
}
