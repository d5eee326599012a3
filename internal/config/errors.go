package config

import "errors"

// errHelpRequested signals that --help was given; Parse has already
// printed usage through pflag's Usage(), and main exits non-zero per
// spec §4.7.
var errHelpRequested = errors.New("config: help requested")

// IsHelpRequested reports whether err is the --help sentinel.
func IsHelpRequested(err error) bool {
	return errors.Is(err, errHelpRequested)
}
