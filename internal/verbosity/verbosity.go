// Package verbosity holds the single process-wide logging level (spec §5,
// §6 `verbosity` option). It is set once by the driver before compilation
// and read many times by every component; writes after initialization are
// permitted but discouraged, and readers tolerate racing reads by
// returning the last-written value, which is sufficient for a
// single-threaded batch pipeline.
package verbosity

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/fatih/color"
)

// Level is the ordered verbosity enum from the Options record.
type Level int32

const (
	Quiet Level = iota
	Normal
	Verbose
	Debug
)

func (l Level) String() string {
	switch l {
	case Quiet:
		return "quiet"
	case Normal:
		return "normal"
	case Verbose:
		return "verbose"
	case Debug:
		return "debug"
	default:
		return "normal"
	}
}

// IsVerbose reports whether trace-level detail should be shown (verbose or
// above).
func (l Level) IsVerbose() bool { return l >= Verbose }

// IsDebug reports whether debug-level detail should be shown.
func (l Level) IsDebug() bool { return l >= Debug }

// ParseLevel maps the Options.verbosity string to a Level, defaulting to
// Normal for any unrecognized value.
func ParseLevel(s string) Level {
	switch s {
	case "quiet":
		return Quiet
	case "verbose":
		return Verbose
	case "debug":
		return Debug
	default:
		return Normal
	}
}

var current atomic.Int32

func init() {
	current.Store(int32(Normal))
}

// Set installs the process-wide verbosity level. Called once by the
// driver before compilation begins.
func Set(l Level) { current.Store(int32(l)) }

// Get returns the current verbosity level.
func Get() Level { return Level(current.Load()) }

var (
	errColor   = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow)
	debugColor = color.New(color.Faint)
)

// Errorf prints an error-level line in red. Always shown unless Quiet.
func Errorf(format string, args ...any) {
	if Get() == Quiet {
		return
	}
	errColor.Fprintln(os.Stderr, fmt.Sprintf(format, args...))
}

// Warnf prints a warning-level line in yellow. Shown at Normal and above.
func Warnf(format string, args ...any) {
	if Get() < Normal {
		return
	}
	warnColor.Fprintln(os.Stderr, fmt.Sprintf(format, args...))
}

// Debugf prints a dim trace line. Only shown when the level is Debug.
func Debugf(format string, args ...any) {
	if !Get().IsDebug() {
		return
	}
	debugColor.Fprintln(os.Stderr, fmt.Sprintf(format, args...))
}
