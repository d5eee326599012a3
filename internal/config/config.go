// Package config parses the daemon's command-line options into an
// immutable value consumed by the Transformer. Unlike the original's
// process-wide mutable metric-override list (spec §9, "global mutable
// configuration"), Config is built once in main and never mutated
// afterward; every pipeline stage takes it as a plain argument.
package config

import (
	"fmt"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/symrouted/symrouted/internal/netlinkx"
)

// MetricOverride is one (kernel metric id, value) pair applied to every
// replicated route, in the order given on the command line.
type MetricOverride struct {
	Key   netlinkx.RouteMetric
	Value uint32
}

// Config is the daemon's fully-resolved, read-only configuration.
type Config struct {
	RouteMetrics []MetricOverride
	Dump         bool
}

// Parse parses args (excluding argv[0]) into a Config. A malformed
// --set-route-metric value or an unresolvable metric name is an
// option-fatal error (spec §7): Parse returns it directly, without
// printing usage, and main logs it and exits with an invalid-argument
// code.
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("symrouted", flag.ContinueOnError)
	metricFlags := fs.StringArray("set-route-metric", nil,
		"<name>=<value> - adds the specified metric to every replicated route; repeatable")
	dump := fs.Bool("dump", false, "dump all observed attributes on startup")
	help := fs.BoolP("help", "h", false, "print usage and exit")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if *help {
		fs.Usage()
		return nil, errHelpRequested
	}

	cfg := &Config{Dump: *dump}
	for _, kv := range *metricFlags {
		name, valueStr, ok := strings.Cut(kv, "=")
		if !ok || name == "" || valueStr == "" {
			return nil, fmt.Errorf("config: invalid syntax for --set-route-metric %q, expected <name>=<value>", kv)
		}
		key, ok := netlinkx.MetricKeyFor(name)
		if !ok {
			return nil, fmt.Errorf("config: unable to resolve metric %q", name)
		}
		value, err := strconv.ParseUint(valueStr, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("config: invalid value %q for metric %q: %w", valueStr, name, err)
		}
		cfg.RouteMetrics = append(cfg.RouteMetrics, MetricOverride{Key: key, Value: uint32(value)})
	}
	return cfg, nil
}
