package netlinkx

import (
	"errors"

	"golang.org/x/sys/unix"
)

var errUnknownMetric = errors.New("netlinkx: unknown route metric")

// IsNotExist reports whether err is the kernel's "object not found"
// response to a delete — RTM_DELROUTE/RTM_DELRULE for an object the
// kernel has already garbage-collected return ESRCH; some paths return
// ENOENT instead. Mutator uses this to apply the kernel-GC tolerance of
// spec §4.4/§7.
func IsNotExist(err error) bool {
	return errors.Is(err, unix.ESRCH) || errors.Is(err, unix.ENOENT)
}

// IsExist reports whether err is the kernel's rejection of a duplicate
// EXCL add.
func IsExist(err error) bool {
	return errors.Is(err, unix.EEXIST)
}
