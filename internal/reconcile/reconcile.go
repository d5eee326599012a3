// Package reconcile performs the daemon's startup reconciliation: flush
// every daemon-owned table and rule left behind by a previous run, then
// replicate the current main table and create rules for every in-scope
// address, in that order (spec §4.5).
//
// The original walked its route cache twice — once to flush, once to
// mirror — without re-fetching from the kernel between passes. Run
// reproduces that by listing routes exactly once and reusing the
// snapshot for both the flush and the replicate passes. Rules are listed
// once and used only for the flush; the create pass walks the address
// list.
package reconcile

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"

	"github.com/symrouted/symrouted/internal/config"
	"github.com/symrouted/symrouted/internal/logx"
	"github.com/symrouted/symrouted/internal/mutate"
	"github.com/symrouted/symrouted/internal/netlinkx"
	"github.com/symrouted/symrouted/internal/pipeline"
	"github.com/symrouted/symrouted/internal/transform"
)

// client is the subset of *netlinkx.Client the Reconciler needs.
type client interface {
	ListRules(family int) ([]netlink.Rule, error)
	ListRoutes() ([]netlink.Route, error)
	ListAddrs() ([]netlinkx.AddrEvent, error)
	DeleteRule(*netlink.Rule) error
	DeleteRoute(*netlink.Route) error
}

// isOwnedRule reports whether r is one of the daemon's own source rules:
// table beyond the daemon's reserved base, routed straight to a table
// (Goto unset) rather than any other rule action.
func isOwnedRule(r *netlink.Rule) bool {
	return r.Table > transform.BaseTable && r.Goto <= 0
}

// isOwnedRoute reports whether rt lives in one of the daemon's own
// per-interface tables.
func isOwnedRoute(rt *netlink.Route) bool {
	return rt.Table > transform.BaseTable
}

// Run flushes stale daemon state and replays the system's current main
// table and addresses through the route/address pipelines, each entry
// forced to ActionNew. A failed delete, add or replace is logged and does
// not stop reconciliation — a single unreachable table or rule should not
// prevent the rest from converging. A failure to list rules, routes or
// addresses is returned and ends the run.
func Run(nl client, cfg *config.Config, mut *mutate.Mutator, log *logrus.Logger) error {
	logx.WriteLine(log, "Deleting routing policy rules matching lookup table > 1000")
	rules, err := nl.ListRules(netlink.FAMILY_ALL)
	if err != nil {
		return fmt.Errorf("reconcile: list rules: %w", err)
	}
	for _, r := range rules {
		if !isOwnedRule(&r) {
			continue
		}
		rule := r
		logx.WriteLine(log, mutate.DumpLine(netlinkx.ActionDel, "rule", &rule))
		if err := nl.DeleteRule(&rule); err != nil {
			logx.WriteErrorf(log, "Rule: %v", err)
		}
	}

	logx.WriteLine(log, "Deleting route tables with id > 1000")
	routes, err := nl.ListRoutes()
	if err != nil {
		return fmt.Errorf("reconcile: list routes: %w", err)
	}
	for _, rt := range routes {
		if !isOwnedRoute(&rt) {
			continue
		}
		route := rt
		logx.WriteLine(log, mutate.DumpLine(netlinkx.ActionDel, "route", &route))
		if err := nl.DeleteRoute(&route); err != nil {
			logx.WriteErrorf(log, "Route: %v", err)
		}
	}

	logx.WriteLine(log, "Replicating main route table into device-specific route tables")
	for _, rt := range routes {
		route := rt
		logx.WriteLine(log, mutate.DumpLine(netlinkx.ActionNew, "route-init", &route))
		pipeline.Route(netlinkx.RouteEvent{Route: route, Action: netlinkx.ActionNew}, cfg, mut, log)
	}

	logx.WriteLine(log, "Creating network source-specific lookup rules")
	addrs, err := nl.ListAddrs()
	if err != nil {
		return fmt.Errorf("reconcile: list addrs: %w", err)
	}
	for _, a := range addrs {
		a.Action = netlinkx.ActionNew
		pipeline.Addr(a, mut, log)
	}

	return nil
}
