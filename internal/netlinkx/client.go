package netlinkx

import (
	"fmt"
	"net/netip"
	"sync"

	"github.com/gaissmai/bart"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// Client is the daemon's sole netlink session. It holds the small amount
// of state needed to turn the kernel's raw RTM_NEWROUTE/RTM_DELROUTE
// stream into NEW/CHANGE/DEL events the way libnl's cache manager does
// (RTM_NEWROUTE for an already-known destination is a CHANGE, not a NEW)
// — the kernel notification itself carries no such distinction.
//
// known indexes, per routing table, every destination prefix this client
// has observed, by its current next-hop interface. A bart.Table gives
// this the same longest-prefix-match shape the kernel's own FIB uses,
// rather than an opaque composite-string map key.
type Client struct {
	mu    sync.Mutex
	known map[int]*bart.Table[int]
}

// Open returns a netlink client. There is no explicit session handle to
// allocate: vishvananda/netlink opens and closes a raw socket per call
// (and keeps one open for the lifetime of a subscription), which is
// sufficient for the ~15 operations this daemon performs.
func Open() (*Client, error) {
	return &Client{known: make(map[int]*bart.Table[int])}, nil
}

// dstPrefix reduces a route's destination to a netip.Prefix, treating an
// absent Dst as the IPv4 or IPv6 default route depending on the
// gateway's family.
func dstPrefix(rt *netlink.Route) (netip.Prefix, bool) {
	if rt.Dst == nil {
		if rt.Gw != nil && rt.Gw.To4() == nil {
			return netip.PrefixFrom(netip.IPv6Unspecified(), 0), true
		}
		return netip.PrefixFrom(netip.IPv4Unspecified(), 0), true
	}
	addr, ok := netip.AddrFromSlice(rt.Dst.IP)
	if !ok {
		return netip.Prefix{}, false
	}
	ones, _ := rt.Dst.Mask.Size()
	return netip.PrefixFrom(addr.Unmap(), ones), true
}

// tableFor returns the bart.Table tracking table id, creating it lazily.
// Caller must hold c.mu.
func (c *Client) tableFor(table int) *bart.Table[int] {
	t, ok := c.known[table]
	if !ok {
		t = new(bart.Table[int])
		c.known[table] = t
	}
	return t
}

// classifyRoute assigns ActionNew or ActionChange to a RTM_NEWROUTE
// notification by checking whether the route's destination was already
// known in its table.
func (c *Client) classifyRoute(rt *netlink.Route) Action {
	c.mu.Lock()
	defer c.mu.Unlock()

	pfx, ok := dstPrefix(rt)
	if !ok {
		return ActionNew
	}
	t := c.tableFor(rt.Table)
	_, existed := t.Get(pfx)
	t.Insert(pfx, rt.LinkIndex)
	if existed {
		return ActionChange
	}
	return ActionNew
}

func (c *Client) forgetRoute(rt *netlink.Route) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pfx, ok := dstPrefix(rt)
	if !ok {
		return
	}
	c.tableFor(rt.Table).Delete(pfx)
}

// noteRoute records a route learned during reconciliation so that a later
// live RTM_NEWROUTE for the same destination is correctly classified as
// a CHANGE.
func (c *Client) noteRoute(rt *netlink.Route) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pfx, ok := dstPrefix(rt)
	if !ok {
		return
	}
	c.tableFor(rt.Table).Insert(pfx, rt.LinkIndex)
}

// SubscribeRoutes delivers route NEW/DEL/CHANGE events until done is
// closed. ListExisting is false: the Reconciler already walks the initial
// route cache explicitly, with its own action forced to NEW.
func (c *Client) SubscribeRoutes(done <-chan struct{}) (<-chan RouteEvent, error) {
	upd := make(chan netlink.RouteUpdate)
	opts := netlink.RouteSubscribeOptions{
		ErrorCallback: func(err error) {
			// The error is discarded: the caller only sees the event
			// channel deliver no further traffic, and nothing logs it.
		},
	}
	if err := netlink.RouteSubscribeWithOptions(upd, done, opts); err != nil {
		return nil, fmt.Errorf("netlinkx: route subscribe: %w", err)
	}

	out := make(chan RouteEvent)
	go func() {
		defer close(out)
		for u := range upd {
			rt := u.Route
			var action Action
			switch u.Type {
			case unix.RTM_NEWROUTE:
				action = c.classifyRoute(&rt)
			case unix.RTM_DELROUTE:
				action = ActionDel
				c.forgetRoute(&rt)
			default:
				action = ActionUnknown
			}
			out <- RouteEvent{Route: rt, Action: action}
		}
	}()
	return out, nil
}

// SubscribeAddrs delivers address NEW/DEL events until done is closed.
// The kernel/vishvananda pairing never distinguishes an address CHANGE
// from a NEW (a lifetime refresh re-announces RTM_NEWADDR for an address
// that already exists) — the Policy Filter's CHANGE-is-noise branch
// therefore never fires from this source, and the daemon instead relies
// on EXCL-add idempotence (see internal/mutate) to stay convergent.
func (c *Client) SubscribeAddrs(done <-chan struct{}) (<-chan AddrEvent, error) {
	upd := make(chan netlink.AddrUpdate)
	opts := netlink.AddrSubscribeOptions{
		ErrorCallback: func(err error) {},
	}
	if err := netlink.AddrSubscribeWithOptions(upd, done, opts); err != nil {
		return nil, fmt.Errorf("netlinkx: addr subscribe: %w", err)
	}

	out := make(chan AddrEvent)
	go func() {
		defer close(out)
		for u := range upd {
			action := ActionDel
			if u.NewAddr {
				action = ActionNew
			}
			local := u.LinkAddress
			out <- AddrEvent{
				LinkIndex: u.LinkIndex,
				Local:     &local,
				Scope:     u.Scope,
				Action:    action,
			}
		}
	}()
	return out, nil
}

// ListRoutes returns a snapshot of every route on the system, across all
// address families and tables. netlink.RouteList keeps only main-table
// routes, so the table filter is given explicitly with RT_TABLE_UNSPEC
// (every table).
func (c *Client) ListRoutes() ([]netlink.Route, error) {
	routes, err := netlink.RouteListFiltered(netlink.FAMILY_ALL,
		&netlink.Route{Table: unix.RT_TABLE_UNSPEC}, netlink.RT_FILTER_TABLE)
	if err != nil {
		return nil, fmt.Errorf("netlinkx: list routes: %w", err)
	}
	for i := range routes {
		c.noteRoute(&routes[i])
	}
	return routes, nil
}

// ListAddrs returns a snapshot of every address on the system, of any
// scope, one AddrEvent per (interface, address) pair; scope filtering is
// left to the Policy Filter. netlink.Addr carries no
// ifindex of its own, so each link is walked individually, the same
// pattern the kata-containers netmon scanNetwork uses.
func (c *Client) ListAddrs() ([]AddrEvent, error) {
	links, err := netlink.LinkList()
	if err != nil {
		return nil, fmt.Errorf("netlinkx: list links: %w", err)
	}

	var events []AddrEvent
	for _, link := range links {
		idx := link.Attrs().Index
		addrs, err := netlink.AddrList(link, netlink.FAMILY_ALL)
		if err != nil {
			return nil, fmt.Errorf("netlinkx: list addrs for %s: %w", link.Attrs().Name, err)
		}
		for _, a := range addrs {
			ipnet := *a.IPNet
			events = append(events, AddrEvent{
				LinkIndex: idx,
				Local:     &ipnet,
				Scope:     a.Scope,
				Action:    ActionNew,
			})
		}
	}
	return events, nil
}

// ListRules returns every policy routing rule for the given family
// (netlink.FAMILY_ALL for every family).
func (c *Client) ListRules(family int) ([]netlink.Rule, error) {
	rules, err := netlink.RuleList(family)
	if err != nil {
		return nil, fmt.Errorf("netlinkx: list rules: %w", err)
	}
	return rules, nil
}

// AddRoute issues RTM_NEWROUTE with NLM_F_EXCL (netlink.RouteAdd already
// sends NLM_F_CREATE|NLM_F_EXCL).
func (c *Client) AddRoute(rt *netlink.Route) error {
	return netlink.RouteAdd(rt)
}

// ReplaceRoute issues RTM_NEWROUTE with NLM_F_REPLACE (netlink.RouteReplace
// already sends NLM_F_CREATE|NLM_F_REPLACE).
func (c *Client) ReplaceRoute(rt *netlink.Route) error {
	return netlink.RouteReplace(rt)
}

// DeleteRoute issues RTM_DELROUTE.
func (c *Client) DeleteRoute(rt *netlink.Route) error {
	return netlink.RouteDel(rt)
}

// AddRule issues RTM_NEWRULE with NLM_F_EXCL.
func (c *Client) AddRule(r *netlink.Rule) error {
	return netlink.RuleAdd(r)
}

// DeleteRule issues RTM_DELRULE.
func (c *Client) DeleteRule(r *netlink.Rule) error {
	return netlink.RuleDel(r)
}

// RouteNextHop returns the route's single next hop and whether the route
// qualifies as single-path at all (spec.md I1/P8: multipath routes are
// out of scope entirely).
func RouteNextHop(rt *netlink.Route) (NextHop, bool) {
	if len(rt.MultiPath) > 1 {
		return NextHop{}, false
	}
	if len(rt.MultiPath) == 1 {
		nh := rt.MultiPath[0]
		return NextHop{IfIndex: nh.LinkIndex, Gateway: nh.Gw}, true
	}
	if rt.LinkIndex == 0 {
		// No next hop at all (e.g. a blackhole/unreachable route).
		return NextHop{}, false
	}
	return NextHop{IfIndex: rt.LinkIndex, Gateway: rt.Gw}, true
}
