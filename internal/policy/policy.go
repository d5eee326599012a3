// Package policy holds the daemon's pure in-scope predicates: whether an
// inbound route or address event is interesting enough to mirror, with
// no side effects (spec §4.2).
package policy

import (
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	"github.com/symrouted/symrouted/internal/netlinkx"
)

// rtTableMain is RT_TABLE_MAIN, the kernel's default routing table.
const rtTableMain = unix.RT_TABLE_MAIN

// RouteInScope reports whether rt should be mirrored, and its single
// next hop if so. All of the following must hold:
//   - table is the main table
//   - exactly one next hop
//   - next-hop interface index > 1 (excludes invalid index 0 and
//     loopback index 1)
//   - for IPv6, the destination's first byte is not 0xFE (excludes
//     fe80::/10 link-local, and fec0::/10 as an accepted over-match —
//     see spec §9)
func RouteInScope(rt *netlink.Route) (netlinkx.NextHop, bool) {
	if rt.Table != rtTableMain {
		return netlinkx.NextHop{}, false
	}

	nh, ok := netlinkx.RouteNextHop(rt)
	if !ok {
		return netlinkx.NextHop{}, false
	}
	if nh.IfIndex <= 1 {
		return netlinkx.NextHop{}, false
	}

	if rt.Dst != nil && rt.Dst.IP.To4() == nil {
		if v6 := rt.Dst.IP.To16(); v6 != nil && v6[0] == 0xFE {
			return netlinkx.NextHop{}, false
		}
	}

	return nh, true
}

// AddrInScope reports whether a should get a source rule: global scope,
// IPv4 or IPv6, and an interface index beyond invalid/loopback.
func AddrInScope(a netlinkx.AddrEvent) bool {
	if a.Scope != unix.RT_SCOPE_UNIVERSE {
		return false
	}
	if a.LinkIndex <= 1 {
		return false
	}
	if a.Local == nil || a.Local.IP == nil {
		return false
	}
	return true
}

// RouteActionDispatchable reports whether the route pipeline acts on
// this action at all (NEW, DEL, CHANGE); any other action is a
// handler-dispatch-warning (spec §4.2/§7) that the caller logs and drops.
func RouteActionDispatchable(a netlinkx.Action) bool {
	switch a {
	case netlinkx.ActionNew, netlinkx.ActionDel, netlinkx.ActionChange:
		return true
	default:
		return false
	}
}

// AddrActionDispatchable reports whether the address pipeline acts on
// this action (NEW, DEL). CHANGE is a recognized action that is silently
// ignored (spec §4.2) — distinct from an unknown action, which is a
// handler-dispatch-warning.
func AddrActionDispatchable(a netlinkx.Action) bool {
	switch a {
	case netlinkx.ActionNew, netlinkx.ActionDel:
		return true
	default:
		return false
	}
}

// AddrActionKnown reports whether a is CHANGE or one of the dispatchable
// actions — i.e. not an unrecognized action. Used to distinguish
// "ignore, it's CHANGE" from "log a dispatch warning, it's unknown".
func AddrActionKnown(a netlinkx.Action) bool {
	return a == netlinkx.ActionChange || AddrActionDispatchable(a)
}
