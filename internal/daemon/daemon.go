// Package daemon runs the event loop: once reconciliation has brought
// kernel state up to date, it selects over the route and address
// notification channels for the life of the process and drives each
// event through the matching pipeline (spec §4.6).
//
// Exactly one goroutine ever reads these channels or calls into the
// Mutator; there is no internal worker pool, so handlers always run to
// completion before the next event is considered (spec §4.1/§9).
package daemon

import (
	"github.com/sirupsen/logrus"

	"github.com/symrouted/symrouted/internal/config"
	"github.com/symrouted/symrouted/internal/mutate"
	"github.com/symrouted/symrouted/internal/netlinkx"
	"github.com/symrouted/symrouted/internal/pipeline"
)

// client is the subset of *netlinkx.Client the event loop needs to open
// its two subscriptions.
type client interface {
	SubscribeRoutes(done <-chan struct{}) (<-chan netlinkx.RouteEvent, error)
	SubscribeAddrs(done <-chan struct{}) (<-chan netlinkx.AddrEvent, error)
}

// Run subscribes to route and address notifications and services them
// until stop is closed, at which point both subscriptions are torn down
// and Run returns. It never returns early on its own — a notification
// channel closing (the subscription's done channel is always the same
// stop channel, so this only happens on shutdown) simply stops that
// case from firing again.
func Run(nl client, cfg *config.Config, mut *mutate.Mutator, log *logrus.Logger, stop <-chan struct{}) error {
	routes, err := nl.SubscribeRoutes(stop)
	if err != nil {
		return err
	}
	addrs, err := nl.SubscribeAddrs(stop)
	if err != nil {
		return err
	}

	for {
		select {
		case ev, ok := <-routes:
			if !ok {
				routes = nil
				continue
			}
			pipeline.Route(ev, cfg, mut, log)
		case ev, ok := <-addrs:
			if !ok {
				addrs = nil
				continue
			}
			pipeline.Addr(ev, mut, log)
		case <-stop:
			return nil
		}
	}
}
