// Package mutate issues the add/delete/replace calls that apply a
// derived object (replica route or source rule) to the kernel, and
// classifies every failure as benign or worth logging (spec §4.4).
package mutate

import (
	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	"github.com/symrouted/symrouted/internal/logx"
	"github.com/symrouted/symrouted/internal/netlinkx"
)

// kernelProtocol is the route origin protocol the kernel attaches to
// directly-connected routes it manages itself (spec §3/§4.4).
const kernelProtocol = unix.RTPROT_KERNEL

// client is the subset of *netlinkx.Client the Mutator needs; defined
// here so tests can supply a fake kernel without a real netlink socket.
type client interface {
	AddRoute(*netlink.Route) error
	ReplaceRoute(*netlink.Route) error
	DeleteRoute(*netlink.Route) error
	AddRule(*netlink.Rule) error
	DeleteRule(*netlink.Rule) error
}

// Mutator applies derived objects to the kernel and logs every mutation
// and every failure (classified benign or real) on its way through.
type Mutator struct {
	client client
	log    *logrus.Logger
}

// New returns a Mutator using nl for kernel access and log for the
// mutation/banner line contract of spec §6.
func New(nl client, log *logrus.Logger) *Mutator {
	return &Mutator{client: nl, log: log}
}

// Route applies action to a replica route. origin is the main-table
// route the replica was derived from; its protocol is consulted for the
// kernel-GC delete tolerance (spec §4.4).
func (m *Mutator) Route(action netlinkx.Action, replica netlink.Route, origin netlink.Route) {
	switch action {
	case netlinkx.ActionNew:
		logx.WriteLine(m.log, DumpLine(action, "route", &replica))
		if err := m.client.AddRoute(&replica); err != nil {
			if netlinkx.IsExist(err) {
				logx.WriteWarnf(m.log, "route: %v already exists, skipping", dumpObj(&replica))
				return
			}
			logx.WriteErrorf(m.log, "Route: %v", err)
		}
	case netlinkx.ActionChange:
		logx.WriteLine(m.log, DumpLine(action, "route", &replica))
		if err := m.client.ReplaceRoute(&replica); err != nil {
			logx.WriteErrorf(m.log, "Route: %v", err)
		}
	case netlinkx.ActionDel:
		logx.WriteLine(m.log, DumpLine(action, "route", &replica))
		if err := m.client.DeleteRoute(&replica); err != nil {
			if netlinkx.IsNotExist(err) && origin.Protocol == kernelProtocol {
				// The kernel already garbage-collected our replica
				// because the origin was a directly-attached route it
				// manages itself. Expected (spec §4.4/§9) — not logged
				// as a failure.
				return
			}
			logx.WriteErrorf(m.log, "Route: %v", err)
		}
	}
}

// Rule applies action to a source rule. NEW adds with EXCL (tolerating a
// duplicate benignly); DEL deletes and logs any failure (spec §4.4).
func (m *Mutator) Rule(action netlinkx.Action, rule *netlink.Rule) {
	switch action {
	case netlinkx.ActionNew:
		logx.WriteLine(m.log, DumpLine(action, "rule", rule))
		if err := m.client.AddRule(rule); err != nil {
			if netlinkx.IsExist(err) {
				logx.WriteWarnf(m.log, "rule: %v already exists, skipping", dumpObj(rule))
				return
			}
			logx.WriteErrorf(m.log, "Rule: %v", err)
		}
	case netlinkx.ActionDel:
		logx.WriteLine(m.log, DumpLine(action, "rule", rule))
		if err := m.client.DeleteRule(rule); err != nil {
			logx.WriteErrorf(m.log, "Rule: %v", err)
		}
	}
}
