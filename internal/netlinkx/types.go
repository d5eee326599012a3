// Package netlinkx is a thin adapter over vishvananda/netlink: a typed
// view of routes, addresses and rules, and the subscription that
// delivers object-level events to the rest of the daemon.
package netlinkx

import (
	"net"

	"github.com/vishvananda/netlink"
)

// Action is the object-level event kind delivered by a subscription.
type Action int

const (
	ActionUnknown Action = iota
	ActionNew
	ActionDel
	ActionChange
)

func (a Action) String() string {
	switch a {
	case ActionNew:
		return "new"
	case ActionDel:
		return "del"
	case ActionChange:
		return "chg"
	default:
		return "unknown"
	}
}

// RouteEvent is a route/NEW/DEL/CHANGE notification, or a reconciliation
// entry replayed with Action forced to ActionNew.
type RouteEvent struct {
	Route  netlink.Route
	Action Action
}

// AddrEvent is an address NEW/DEL notification, or a reconciliation entry
// replayed with Action forced to ActionNew. Unlike netlink.Addr, it
// carries the owning interface index directly, since the kernel's address
// dump does not attach one per-object.
type AddrEvent struct {
	LinkIndex int
	Local     *net.IPNet
	Scope     int
	Action    Action
}

// NextHop is the single next hop of an in-scope route: the interface it
// egresses on, and the gateway if any.
type NextHop struct {
	IfIndex int
	Gateway net.IP
}
