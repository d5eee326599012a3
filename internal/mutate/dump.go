package mutate

import (
	"fmt"

	"github.com/symrouted/symrouted/internal/netlinkx"
)

// dumpObj renders a one-line textual dump of a route or rule, the Go
// equivalent of the original's nl_object_dump(NL_DUMP_LINE); the
// vishvananda types' String()/fmt.Stringer already produce a single-line
// form that serves the same purpose.
func dumpObj(obj fmt.Stringer) string {
	return obj.String()
}

// DumpLine renders one full mutation log line: action verb, object-class
// prefix, one-line dump (spec §4.4/§6). Exported so the Reconciler can
// render the same "route-init" banner line for every entry it walks,
// ahead of running it through the route pipeline.
func DumpLine(action netlinkx.Action, class string, obj fmt.Stringer) string {
	return fmt.Sprintf("%s %s %s", action, class, dumpObj(obj))
}
