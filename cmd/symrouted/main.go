// Command symrouted mirrors the kernel's main routing table into
// per-interface tables and installs source-address rules that select
// them, so that reply traffic leaves on the same interface the request
// arrived on (spec §1).
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vishvananda/netlink"

	"github.com/symrouted/symrouted/internal/config"
	"github.com/symrouted/symrouted/internal/daemon"
	"github.com/symrouted/symrouted/internal/logx"
	"github.com/symrouted/symrouted/internal/mutate"
	"github.com/symrouted/symrouted/internal/netlinkx"
	"github.com/symrouted/symrouted/internal/reconcile"
)

// Exit codes (spec §6). The original propagates the transport library's
// raw negative error code for any startup/runtime failure; vishvananda's
// netlink calls return plain Go errors instead of a signed error-kind
// int, so this distinguishes the same three failure classes by distinct
// fixed codes rather than inventing a fake negative-code mapping.
const (
	exitInvalidArgs = 1 // option parsing failure, or --help
	exitSocketAlloc = 2 // could not open a netlink session at all
	exitTransport   = 3 // reconciliation or event-loop netlink failure
)

func main() {
	os.Exit(run())
}

func run() int {
	startupLog := logx.Startup()

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		if config.IsHelpRequested(err) {
			return exitInvalidArgs
		}
		startupLog.Errorf("option error: %v", err)
		return exitInvalidArgs
	}

	nl, err := netlinkx.Open()
	if err != nil {
		startupLog.Errorf("netlink: %v", err)
		return exitSocketAlloc
	}

	log := logx.New()
	mut := mutate.New(nl, log)

	if err := reconcile.Run(nl, cfg, mut, log); err != nil {
		startupLog.Errorf("reconcile: %v", err)
		return exitTransport
	}

	if cfg.Dump {
		dumpStartup(nl)
	}

	stop := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		close(stop)
	}()

	if err := daemon.Run(nl, cfg, mut, log, stop); err != nil {
		startupLog.Errorf("daemon: %v", err)
		return exitTransport
	}
	return 0
}

// dumpStartup prints every route, rule and address the daemon can see
// once reconciliation has completed, for --dump (spec §4.7/§4.8).
func dumpStartup(nl *netlinkx.Client) {
	if routes, err := nl.ListRoutes(); err == nil {
		for i := range routes {
			fmt.Println("dump route", routes[i].String())
		}
	}
	if rules, err := nl.ListRules(netlink.FAMILY_ALL); err == nil {
		for i := range rules {
			fmt.Println("dump rule", rules[i].String())
		}
	}
	if addrs, err := nl.ListAddrs(); err == nil {
		for _, a := range addrs {
			fmt.Printf("dump addr if=%d %s\n", a.LinkIndex, a.Local.String())
		}
	}
}
