package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stephengoldbaum/icppgo/layout"
)

func TestGCConfigFromEnvDefaults(t *testing.T) {
	threshold, debug, logCycles := gcConfigFromEnv()
	require.Equal(t, uint64(layout.DefaultCollectionThresholdBytes), threshold)
	require.False(t, debug.Enabled)
	require.False(t, logCycles)
}

func TestGCConfigFromEnvClampsThreshold(t *testing.T) {
	t.Setenv("ICPP_GC_THRESHOLD_MB", "1")
	threshold, _, _ := gcConfigFromEnv()
	require.Equal(t, uint64(layout.MinCollectionThresholdBytes), threshold)

	t.Setenv("ICPP_GC_THRESHOLD_MB", "4096")
	threshold, _, _ = gcConfigFromEnv()
	require.Equal(t, uint64(layout.MaxCollectionThresholdBytes), threshold)
}

func TestGCConfigFromEnvDebugAndLog(t *testing.T) {
	t.Setenv("ICPP_GC_DEBUG", "1")
	t.Setenv("ICPP_GC_LOG", "1")
	_, debug, logCycles := gcConfigFromEnv()
	require.True(t, debug.Enabled)
	require.True(t, logCycles)
}
