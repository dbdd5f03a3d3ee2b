package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelFlag(t *testing.T) {
	require := require.New(t)

	for _, tc := range []struct {
		input    string
		expected Level
		valid    bool
		msg      string
	}{
		{"debug", LevelDebug, true, "lower case"},
		{"INFO", LevelInfo, true, "upper case"},
		{"Warn", LevelWarn, true, "mixed case"},
		{"error", LevelError, true, "error"},
		{"trace", 0, false, "unknown level"},
	} {
		var l Level
		err := l.Set(tc.input)
		if !tc.valid {
			require.Error(err, tc.msg)
			continue
		}
		require.NoError(err, tc.msg)
		require.Equal(tc.expected, l, tc.msg)
	}
}

func TestFormatFlag(t *testing.T) {
	require := require.New(t)

	var f Format
	require.NoError(f.Set("json"))
	require.Equal(FmtJSON, f)
	require.Equal("JSON", f.String())
	require.NoError(f.Set("LOGFMT"))
	require.Equal(FmtLogfmt, f)
	require.Error(f.Set("xml"))
}

func TestModuleLevels(t *testing.T) {
	require := require.New(t)

	b := logBackend{
		defaultLevel: LevelWarn,
		moduleLevels: map[string]Level{
			"staking":          LevelInfo,
			"staking/platform": LevelDebug,
		},
	}
	for _, tc := range []struct {
		module   string
		expected Level
	}{
		{"staking/platform", LevelDebug},
		{"staking/host", LevelInfo},
		{"minter", LevelWarn},
	} {
		l := &Logger{module: tc.module}
		b.setupLogLevelLocked(l)
		require.Equal(tc.expected, l.level, tc.module)
	}
}
