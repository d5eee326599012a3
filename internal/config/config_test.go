package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symrouted/symrouted/internal/netlinkx"
)

func TestParseNoArgs(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.False(t, cfg.Dump)
	assert.Empty(t, cfg.RouteMetrics)
}

func TestParseDump(t *testing.T) {
	cfg, err := Parse([]string{"--dump"})
	require.NoError(t, err)
	assert.True(t, cfg.Dump)
}

func TestParseRouteMetricOverrides(t *testing.T) {
	cfg, err := Parse([]string{
		"--set-route-metric", "mtu=1400",
		"--set-route-metric", "hoplimit=64",
	})
	require.NoError(t, err)
	require.Len(t, cfg.RouteMetrics, 2)
	assert.Equal(t, netlinkx.MetricMTU, cfg.RouteMetrics[0].Key)
	assert.Equal(t, uint32(1400), cfg.RouteMetrics[0].Value)
	assert.Equal(t, netlinkx.MetricHopLimit, cfg.RouteMetrics[1].Key)
	assert.Equal(t, uint32(64), cfg.RouteMetrics[1].Value)
}

func TestParseRouteMetricBadSyntax(t *testing.T) {
	_, err := Parse([]string{"--set-route-metric", "mtu"})
	assert.Error(t, err)
}

func TestParseRouteMetricUnknownName(t *testing.T) {
	_, err := Parse([]string{"--set-route-metric", "bogus=1"})
	assert.Error(t, err)
}

func TestParseRouteMetricBadValue(t *testing.T) {
	_, err := Parse([]string{"--set-route-metric", "mtu=notanumber"})
	assert.Error(t, err)
}

func TestParseHelp(t *testing.T) {
	_, err := Parse([]string{"--help"})
	assert.True(t, IsHelpRequested(err))
}
