package netlinkx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vishvananda/netlink"
)

func TestMetricKeyFor(t *testing.T) {
	key, ok := MetricKeyFor("mtu")
	assert.True(t, ok)
	assert.Equal(t, MetricMTU, key)

	_, ok = MetricKeyFor("not-a-real-metric")
	assert.False(t, ok)
}

func TestSetRouteMetric(t *testing.T) {
	rt := &netlink.Route{}

	require := assert.New(t)
	require.NoError(SetRouteMetric(rt, MetricMTU, 1400))
	require.Equal(1400, rt.MTU)

	require.NoError(SetRouteMetric(rt, MetricHopLimit, 64))
	require.Equal(64, rt.Hoplimit)

	err := SetRouteMetric(rt, RouteMetric(999), 1)
	require.Error(err)
}
