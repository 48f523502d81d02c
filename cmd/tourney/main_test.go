package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFlags_Defaults(t *testing.T) {
	rc, exit, code := parseFlags(nil)
	require.False(t, exit)
	require.Equal(t, 0, code)
	require.Equal(t, 9, rc.PeriodsPerStage)
	require.Equal(t, 1, rc.BonusSP)
}

func TestParseFlags_Version(t *testing.T) {
	_, exit, code := parseFlags([]string{"--version"})
	require.True(t, exit)
	require.Equal(t, 0, code)
}

func TestParseFlags_Overrides(t *testing.T) {
	rc, exit, code := parseFlags([]string{"--periods", "3", "--bonus", "0", "--verbosity", "0"})
	require.False(t, exit)
	require.Equal(t, 0, code)
	require.Equal(t, 3, rc.PeriodsPerStage)
	require.Equal(t, 0, rc.BonusSP)
	require.Equal(t, 0, rc.Verbosity)
}

func TestParseFlags_InvalidBudget(t *testing.T) {
	_, exit, code := parseFlags([]string{"--budget", "not-a-number"})
	require.True(t, exit)
	require.Equal(t, 2, code)
}

func TestRun_EndToEnd_EmitsValidJSONResult(t *testing.T) {
	var buf bytes.Buffer

	code := run([]string{"--periods", "2", "--verbosity", "0"}, &buf)
	require.Equal(t, 0, code)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Contains(t, decoded, "Winner")
	require.Contains(t, decoded, "Leaderboard")
}
