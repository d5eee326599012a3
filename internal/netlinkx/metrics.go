package netlinkx

import "github.com/vishvananda/netlink"

// RouteMetric identifies one of the kernel's RTAX_* route metric
// attributes, the way the original's rtnl_route_str2metric/
// rtnl_route_set_metric pair does. vishvananda/netlink does not expose a
// generic metrics array; it flattens the handful of RTAX_* values it
// supports onto named Route fields, so SetRouteMetric dispatches onto
// those instead of indexing an array.
type RouteMetric int

const (
	MetricMTU RouteMetric = iota
	MetricWindow
	MetricRTT
	MetricRTTVar
	MetricSSThresh
	MetricCwnd
	MetricAdvMSS
	MetricHopLimit
	MetricInitCwnd
	MetricFeatures
	MetricRtoMin
	MetricInitRwnd
	MetricQuickACK
)

var metricNames = map[string]RouteMetric{
	"mtu":       MetricMTU,
	"window":    MetricWindow,
	"rtt":       MetricRTT,
	"rttvar":    MetricRTTVar,
	"ssthresh":  MetricSSThresh,
	"cwnd":      MetricCwnd,
	"advmss":    MetricAdvMSS,
	"hoplimit":  MetricHopLimit,
	"initcwnd":  MetricInitCwnd,
	"features":  MetricFeatures,
	"rto_min":   MetricRtoMin,
	"initrwnd":  MetricInitRwnd,
	"quickack":  MetricQuickACK,
}

// MetricKeyFor maps a human-readable metric name (as given to
// --set-route-metric) to the daemon's RouteMetric id. An unresolvable
// name is the option-fatal condition of spec §4.7/§7.
func MetricKeyFor(name string) (RouteMetric, bool) {
	m, ok := metricNames[name]
	return m, ok
}

// SetRouteMetric sets one metric on a route clone. The value is stored
// as given, with no range check for fields of restricted width (hop
// limit, quickack); only an unknown key returns an error, which the
// caller logs and skips per spec §4.3 step 2.
func SetRouteMetric(rt *netlink.Route, key RouteMetric, value uint32) error {
	switch key {
	case MetricMTU:
		rt.MTU = int(value)
	case MetricWindow:
		rt.Window = int(value)
	case MetricRTT:
		rt.Rtt = int(value)
	case MetricRTTVar:
		rt.RttVar = int(value)
	case MetricSSThresh:
		rt.Ssthresh = int(value)
	case MetricCwnd:
		rt.Cwnd = int(value)
	case MetricAdvMSS:
		rt.AdvMSS = int(value)
	case MetricHopLimit:
		rt.Hoplimit = int(value)
	case MetricInitCwnd:
		rt.InitCwnd = int(value)
	case MetricFeatures:
		rt.Features = int(value)
	case MetricRtoMin:
		rt.RtoMin = int(value)
	case MetricInitRwnd:
		rt.InitRwnd = int(value)
	case MetricQuickACK:
		rt.QuickACK = int(value)
	default:
		return errUnknownMetric
	}
	return nil
}
