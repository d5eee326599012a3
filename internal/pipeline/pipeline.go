// Package pipeline wires the Policy Filter, Transformer and Mutator
// together into the two object pipelines (route, address) that the
// Reconciler and the Event Loop both drive — the former replaying a
// startup snapshot with every action forced to NEW, the latter driving
// live subscription events (spec §4.5/§4.6).
package pipeline

import (
	"github.com/sirupsen/logrus"

	"github.com/symrouted/symrouted/internal/config"
	"github.com/symrouted/symrouted/internal/logx"
	"github.com/symrouted/symrouted/internal/mutate"
	"github.com/symrouted/symrouted/internal/netlinkx"
	"github.com/symrouted/symrouted/internal/policy"
	"github.com/symrouted/symrouted/internal/transform"
)

// Route runs one route event through Filter -> Transformer -> Mutator.
// An action the route pipeline doesn't recognize, or a route outside the
// filter's scope, is dropped with a warning and a silent skip
// respectively (spec §4.2/§7).
func Route(ev netlinkx.RouteEvent, cfg *config.Config, mut *mutate.Mutator, log *logrus.Logger) {
	if !policy.RouteActionDispatchable(ev.Action) {
		logx.WriteWarnf(log, "route: unhandled action %v, ignoring", ev.Action)
		return
	}

	nh, ok := policy.RouteInScope(&ev.Route)
	if !ok {
		return
	}

	replica := transform.ReplicaRoute(ev.Route, nh, cfg, log)
	mut.Route(ev.Action, replica, ev.Route)
}

// Addr runs one address event through Filter -> Transformer -> Mutator.
// CHANGE is a recognized, silently-ignored action (an address lifetime
// refresh re-announces NEW; see internal/netlinkx); anything else
// unrecognized is a handler-dispatch warning.
func Addr(ev netlinkx.AddrEvent, mut *mutate.Mutator, log *logrus.Logger) {
	if !policy.AddrActionKnown(ev.Action) {
		logx.WriteWarnf(log, "addr: unhandled action %v, ignoring", ev.Action)
		return
	}
	if !policy.AddrActionDispatchable(ev.Action) {
		return
	}
	if !policy.AddrInScope(ev) {
		return
	}

	rule := transform.SourceRule(ev)
	mut.Rule(ev.Action, rule)
}
