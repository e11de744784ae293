// Package signame resolves POSIX signal names to their numeric values.
//
// It mirrors parse_signal from the original IO::SocketAlarm XS module: a
// bare numeric string is accepted as-is, and a small set of well-known
// names (SIGTERM, SIGKILL, ...) are mapped via golang.org/x/sys/unix's
// platform signal constants.
package signame

import (
	"fmt"
	"strconv"

	"golang.org/x/sys/unix"
)

// byName is the table of signal names this package understands.
var byName = map[string]unix.Signal{
	"SIGHUP":  unix.SIGHUP,
	"SIGINT":  unix.SIGINT,
	"SIGQUIT": unix.SIGQUIT,
	"SIGKILL": unix.SIGKILL,
	"SIGPIPE": unix.SIGPIPE,
	"SIGALRM": unix.SIGALRM,
	"SIGTERM": unix.SIGTERM,
	"SIGUSR1": unix.SIGUSR1,
	"SIGUSR2": unix.SIGUSR2,
	"SIGCHLD": unix.SIGCHLD,
	"SIGCONT": unix.SIGCONT,
	"SIGSTOP": unix.SIGSTOP,
	"SIGTSTP": unix.SIGTSTP,
	"SIGABRT": unix.SIGABRT,
}

// Resolve maps a signal name (e.g. "SIGTERM") or a decimal signal number
// given as a string (e.g. "15") to its numeric value. An unrecognised name
// is an error; the original C implementation calls croak() for this case,
// which in Go terms is an error return rather than a panic.
func Resolve(name string) (int, error) {
	if n, err := strconv.Atoi(name); err == nil {
		return n, nil
	}
	if sig, ok := byName[name]; ok {
		return int(sig), nil
	}
	return 0, fmt.Errorf("signame: unimplemented signal name %q", name)
}

// MustResolve is like Resolve but panics on error, for use in tests and
// static action-program construction where the name is a compile-time
// constant known to be valid.
func MustResolve(name string) int {
	n, err := Resolve(name)
	if err != nil {
		panic(err)
	}
	return n
}
