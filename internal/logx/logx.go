// Package logx sets up the daemon's logging: structured fields on stderr
// for startup/fatal diagnostics, and a bare message-per-line form on
// stdout for the mutation and reconciliation banner lines spec §6
// requires to be line-buffered and stable for supervisors tailing stdout.
package logx

import (
	"bufio"
	"os"

	"github.com/sirupsen/logrus"
)

// lineFormatter renders only the log entry's message, one line per
// entry, with no timestamp or level prefix — the textual contract the
// original's dump_obj()/printf() banners use, and that systemd's journal
// (or any line-oriented supervisor) expects from a daemon's stdout.
type lineFormatter struct{}

func (lineFormatter) Format(e *logrus.Entry) ([]byte, error) {
	return append([]byte(e.Message), '\n'), nil
}

// New returns the daemon's logger, writing line-buffered to stdout.
func New() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(bufio.NewWriter(os.Stdout))
	log.SetFormatter(lineFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log
}

// Flusher exposes the underlying buffered writer's Flush, called after
// every line so output stays timely under supervision (spec §6:
// "line-buffered so supervision daemons capturing logs see timely
// output").
type Flusher interface {
	Flush() error
}

// WriteLine emits one already-formatted daemon line (action verb, object
// class, one-line dump) and flushes immediately.
func WriteLine(log *logrus.Logger, msg string) {
	log.Info(msg)
	flush(log)
}

// WriteWarnf and WriteErrorf emit a warn/error diagnostic through log and
// flush immediately, the same as WriteLine — mutation-recoverable and
// mutation-benign lines (internal/mutate) need the same timeliness
// guarantee as the banner lines, since they share log's buffered writer.
func WriteWarnf(log *logrus.Logger, format string, args ...interface{}) {
	log.Warnf(format, args...)
	flush(log)
}

func WriteErrorf(log *logrus.Logger, format string, args ...interface{}) {
	log.Errorf(format, args...)
	flush(log)
}

func flush(log *logrus.Logger) {
	if f, ok := log.Out.(Flusher); ok {
		_ = f.Flush()
	}
}

// Startup returns a logger using logrus' own structured text formatter,
// for the fatal/diagnostic lines emitted before the event loop starts
// (library/session errors, option-parse failures) — distinct from the
// bare mutation-line formatter above.
func Startup() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: false})
	return log
}
