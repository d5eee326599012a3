// Package transform builds the derived objects the Mutator issues to the
// kernel: a replica route re-tabled to a per-interface table, and a
// source-match rule pointing at it (spec §4.3).
package transform

import (
	"net"

	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"

	"github.com/symrouted/symrouted/internal/config"
	"github.com/symrouted/symrouted/internal/logx"
	"github.com/symrouted/symrouted/internal/netlinkx"
)

// BaseTable is the base of the daemon-owned table ids: every table id
// above it is the daemon's, and table 1000+ifindex is reserved for
// interface ifindex (spec §3). BaseTable itself is not daemon-owned.
const BaseTable = 1000

// TableFor returns the daemon-owned table id for an interface.
func TableFor(ifindex int) int {
	return BaseTable + ifindex
}

// ReplicaRoute clones rt, applies cfg's metric overrides, and re-tables
// it to the next hop's interface. Protocol, destination and every other
// attribute besides table id, the configured metrics and the next-hop
// fields (collapsed below) are preserved verbatim (spec §4.3).
//
// Failure to apply any one metric override is logged and skipped; it
// never aborts the clone.
func ReplicaRoute(rt netlink.Route, nh netlinkx.NextHop, cfg *config.Config, log *logrus.Logger) netlink.Route {
	clone := rt
	if rt.Dst != nil {
		d := *rt.Dst
		clone.Dst = &d
	}
	// The route was already established to have exactly one next hop;
	// collapse it onto the flat LinkIndex/Gw fields so the replica is a
	// genuine single-path route regardless of how the original expressed
	// its one hop.
	clone.MultiPath = nil
	clone.LinkIndex = nh.IfIndex
	clone.Gw = nh.Gateway

	for _, m := range cfg.RouteMetrics {
		if err := netlinkx.SetRouteMetric(&clone, m.Key, m.Value); err != nil {
			logx.WriteWarnf(log, "transform: set metric %v=%d on route: %v", m.Key, m.Value, err)
		}
	}

	clone.Table = TableFor(nh.IfIndex)
	return clone
}

// SourceRule builds the source-match rule for an in-scope address: a
// host-prefix (/32 or /128) selector on the address's interface table,
// action to-table (spec §4.3). vishvananda/netlink's Rule does not carry
// an explicit "action" field to set to FR_ACT_TO_TBL — RuleAdd encodes
// that action implicitly whenever Table is set and Goto is not, which is
// the library's equivalent of the original never setting any other rule
// field beyond src/table (spec §9's "no other rule fields are set").
func SourceRule(a netlinkx.AddrEvent) *netlink.Rule {
	prefixLen := 32
	family := netlink.FAMILY_V4
	if a.Local.IP.To4() == nil {
		prefixLen = 128
		family = netlink.FAMILY_V6
	}

	src := &net.IPNet{
		IP:   a.Local.IP,
		Mask: net.CIDRMask(prefixLen, prefixLen),
	}

	r := netlink.NewRule()
	r.Family = family
	r.Src = src
	r.Table = TableFor(a.LinkIndex)
	return r
}
