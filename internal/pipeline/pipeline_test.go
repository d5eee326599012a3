package pipeline

import (
	"net"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	"github.com/symrouted/symrouted/internal/config"
	"github.com/symrouted/symrouted/internal/mutate"
	"github.com/symrouted/symrouted/internal/netlinkx"
)

type fakeClient struct {
	addRouteCalls  int
	addRuleCalls   int
}

func (f *fakeClient) AddRoute(*netlink.Route) error     { f.addRouteCalls++; return nil }
func (f *fakeClient) ReplaceRoute(*netlink.Route) error { return nil }
func (f *fakeClient) DeleteRoute(*netlink.Route) error  { return nil }
func (f *fakeClient) AddRule(*netlink.Rule) error       { f.addRuleCalls++; return nil }
func (f *fakeClient) DeleteRule(*netlink.Rule) error    { return nil }

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(discardWriter{})
	return log
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestRouteOutOfScopeIsDropped(t *testing.T) {
	fc := &fakeClient{}
	mut := mutate.New(fc, discardLogger())

	ev := netlinkx.RouteEvent{
		Action: netlinkx.ActionNew,
		Route:  netlink.Route{Table: 254 + 100, LinkIndex: 5},
	}
	Route(ev, &config.Config{}, mut, discardLogger())
	assert.Equal(t, 0, fc.addRouteCalls)
}

func TestRouteInScopeIsApplied(t *testing.T) {
	fc := &fakeClient{}
	mut := mutate.New(fc, discardLogger())

	ev := netlinkx.RouteEvent{
		Action: netlinkx.ActionNew,
		Route: netlink.Route{
			Table:     unix.RT_TABLE_MAIN,
			LinkIndex: 5,
			Gw:        net.ParseIP("192.0.2.1"),
		},
	}
	Route(ev, &config.Config{}, mut, discardLogger())
	assert.Equal(t, 1, fc.addRouteCalls)
}

func TestAddrChangeIsIgnored(t *testing.T) {
	fc := &fakeClient{}
	mut := mutate.New(fc, discardLogger())

	ev := netlinkx.AddrEvent{
		Action:    netlinkx.ActionChange,
		LinkIndex: 5,
		Scope:     unix.RT_SCOPE_UNIVERSE,
		Local:     &net.IPNet{IP: net.ParseIP("192.0.2.9"), Mask: net.CIDRMask(24, 32)},
	}
	Addr(ev, mut, discardLogger())
	assert.Equal(t, 0, fc.addRuleCalls)
}

func TestAddrInScopeIsApplied(t *testing.T) {
	fc := &fakeClient{}
	mut := mutate.New(fc, discardLogger())

	ev := netlinkx.AddrEvent{
		Action:    netlinkx.ActionNew,
		LinkIndex: 5,
		Scope:     unix.RT_SCOPE_UNIVERSE,
		Local:     &net.IPNet{IP: net.ParseIP("192.0.2.9"), Mask: net.CIDRMask(24, 32)},
	}
	Addr(ev, mut, discardLogger())
	assert.Equal(t, 1, fc.addRuleCalls)
}
