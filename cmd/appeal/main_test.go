package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestRulesCommand(t *testing.T) {
	out := execute(t, "rules", "--day", "2")
	assert.Contains(t, out, "Day 2 (day2), 7 rules")
	assert.Contains(t, out, "6. NO links in user bios!")
}

func TestCheckCommand(t *testing.T) {
	out := execute(t, "check",
		"--day", "1",
		"--record", "../../content/lang/en/days/day1/loud_larry.json",
		"--date", "2024-03-04",
	)
	assert.Contains(t, out, "broken:  Rules Broken: #4")
	assert.Contains(t, out, "stale:   false")
	assert.Contains(t, out, "verdict: DENIED")
}

func TestTopRequiresArchive(t *testing.T) {
	rootCmd.SetArgs([]string{"--log-level", "error", "top"})
	err := rootCmd.Execute()
	assert.ErrorIs(t, err, errArchiveDisabled)
}

func TestRootFlagsRegistered(t *testing.T) {
	for _, name := range []string{"config", "log-level"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
}
