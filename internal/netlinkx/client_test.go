package netlinkx

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vishvananda/netlink"
)

func TestClassifyRouteNewThenChange(t *testing.T) {
	c, err := Open()
	assert.NoError(t, err)

	_, dst, _ := net.ParseCIDR("198.51.100.0/24")
	rt := &netlink.Route{Table: 254, Dst: dst, LinkIndex: 5}

	assert.Equal(t, ActionNew, c.classifyRoute(rt))
	assert.Equal(t, ActionChange, c.classifyRoute(rt))
}

func TestClassifyRouteForgetThenNew(t *testing.T) {
	c, err := Open()
	assert.NoError(t, err)

	_, dst, _ := net.ParseCIDR("198.51.100.0/24")
	rt := &netlink.Route{Table: 254, Dst: dst, LinkIndex: 5}

	assert.Equal(t, ActionNew, c.classifyRoute(rt))
	c.forgetRoute(rt)
	assert.Equal(t, ActionNew, c.classifyRoute(rt))
}

func TestClassifyRouteSeparateTablesIndependent(t *testing.T) {
	c, err := Open()
	assert.NoError(t, err)

	_, dst, _ := net.ParseCIDR("198.51.100.0/24")
	rtMain := &netlink.Route{Table: 254, Dst: dst, LinkIndex: 5}
	rtReplica := &netlink.Route{Table: 1005, Dst: dst, LinkIndex: 5}

	assert.Equal(t, ActionNew, c.classifyRoute(rtMain))
	assert.Equal(t, ActionNew, c.classifyRoute(rtReplica))
}

func TestRouteNextHopSinglePath(t *testing.T) {
	gw := net.ParseIP("192.0.2.1")
	rt := &netlink.Route{LinkIndex: 4, Gw: gw}
	nh, ok := RouteNextHop(rt)
	assert.True(t, ok)
	assert.Equal(t, 4, nh.IfIndex)
	assert.Equal(t, gw, nh.Gateway)
}

func TestRouteNextHopMultipathExcluded(t *testing.T) {
	rt := &netlink.Route{
		MultiPath: []*netlink.NexthopInfo{{LinkIndex: 4}, {LinkIndex: 5}},
	}
	_, ok := RouteNextHop(rt)
	assert.False(t, ok)
}

func TestRouteNextHopNoLinkIndex(t *testing.T) {
	rt := &netlink.Route{}
	_, ok := RouteNextHop(rt)
	assert.False(t, ok)
}
