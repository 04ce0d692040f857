// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithContextFollowsRoot(t *testing.T) {
	logger := WithContext("pkg", "staking")

	var buf bytes.Buffer
	SetDefault(NewJSONLogger(&buf, 3))
	t.Cleanup(func() { SetDefault(Discard()) })

	logger.Info("staked", "amount", 10)
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "staked", rec["msg"])
	assert.Equal(t, "staking", rec["pkg"])
	assert.Equal(t, float64(10), rec["amount"])
}

func TestWithContextDoesNotShareContext(t *testing.T) {
	logger := WithContext("pkg", "x").(*lazyLogger)
	a := logger.with([]any{"a", 1})
	b := logger.with([]any{"b", 2})

	assert.Equal(t, []any{"pkg", "x", "a", 1}, a)
	assert.Equal(t, []any{"pkg", "x", "b", 2}, b)
}

func TestTerminalLogger(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(NewTerminalLogger(&buf, 5, false))
	t.Cleanup(func() { SetDefault(Discard()) })

	WithContext("pkg", "runtime").Warn("timestamp overridden", "account", "0x01")
	out := buf.String()
	assert.Contains(t, out, "timestamp overridden")
	assert.Contains(t, out, "pkg=runtime")
}

func TestLeveledLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, level := NewLeveledLogger(JSONHandler(&buf), 3)
	SetDefault(logger)
	t.Cleanup(func() { SetDefault(Discard()) })

	assert.Equal(t, LevelInfo, level.Level())
	Root().Debug("hidden")
	assert.Empty(t, buf.String())

	level.Set(LevelDebug)
	assert.Equal(t, "debug", LevelName(level.Level()))
	Root().Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"trace", "debug", "info", "warn", "error", "crit"} {
		l, err := ParseLevel(name)
		require.NoError(t, err)
		assert.Equal(t, name, LevelName(l))
	}
	l, err := ParseLevel(" WARN ")
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, l)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}
