package daemon

import (
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	"github.com/symrouted/symrouted/internal/config"
	"github.com/symrouted/symrouted/internal/mutate"
	"github.com/symrouted/symrouted/internal/netlinkx"
)

type fakeNetlinkClient struct {
	routes chan netlinkx.RouteEvent
	addrs  chan netlinkx.AddrEvent
}

func (f *fakeNetlinkClient) SubscribeRoutes(<-chan struct{}) (<-chan netlinkx.RouteEvent, error) {
	return f.routes, nil
}
func (f *fakeNetlinkClient) SubscribeAddrs(<-chan struct{}) (<-chan netlinkx.AddrEvent, error) {
	return f.addrs, nil
}

type fakeMutateClient struct {
	routeAdds chan struct{}
}

func (f *fakeMutateClient) AddRoute(*netlink.Route) error {
	if f.routeAdds != nil {
		f.routeAdds <- struct{}{}
	}
	return nil
}
func (f *fakeMutateClient) ReplaceRoute(*netlink.Route) error { return nil }
func (f *fakeMutateClient) DeleteRoute(*netlink.Route) error  { return nil }
func (f *fakeMutateClient) AddRule(*netlink.Rule) error       { return nil }
func (f *fakeMutateClient) DeleteRule(*netlink.Rule) error    { return nil }

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(discardWriter{})
	return log
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestRunDispatchesRouteEventAndStops(t *testing.T) {
	nl := &fakeNetlinkClient{
		routes: make(chan netlinkx.RouteEvent, 1),
		addrs:  make(chan netlinkx.AddrEvent, 1),
	}
	adds := make(chan struct{}, 1)
	mut := mutate.New(&fakeMutateClient{routeAdds: adds}, discardLogger())
	stop := make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- Run(nl, &config.Config{}, mut, discardLogger(), stop) }()

	nl.routes <- netlinkx.RouteEvent{
		Action: netlinkx.ActionNew,
		Route: netlink.Route{
			Table:     unix.RT_TABLE_MAIN,
			LinkIndex: 5,
			Gw:        net.ParseIP("192.0.2.1"),
		},
	}

	select {
	case <-adds:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for route add")
	}

	close(stop)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Run to return")
	}
}
