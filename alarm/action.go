package alarm

import (
	"time"

	"github.com/joeycumines/go-socketalarm/internal/signame"
)

// Action is one step of an alarm's action program. The set of concrete
// types is closed: Signal, Sleep, Close, Shutdown, and DumpFDTable are the
// only ones the interpreter recognises. A concrete type satisfying this
// interface from outside the package is exactly spec.md's "unknown tag"
// case — the interpreter terminates that one alarm, leaving all others
// unaffected.
type Action interface {
	isAction()
}

// Signal delivers Signum to Pid. Absence of the process is not fatal to
// the action program (spec.md §4.F).
type Signal struct {
	Pid    int
	Signum int
}

func (Signal) isAction() {}

// SignalNamed builds a Signal action from a POSIX signal name ("SIGTERM")
// or a decimal signal number given as a string ("15"), delegating to
// internal/signame. This is the Go equivalent of the original module's
// accepting either form for an action program's signal argument.
func SignalNamed(pid int, name string) (Signal, error) {
	n, err := signame.Resolve(name)
	if err != nil {
		return Signal{}, err
	}
	return Signal{Pid: pid, Signum: n}, nil
}

// Sleep suspends the action program for Duration. The watcher resolves it
// into an absolute monotonic deadline the first time the interpreter
// reaches this step; subsequent iterations just check whether that
// deadline has elapsed.
type Sleep struct {
	Duration time.Duration
}

func (Sleep) isAction() {}

// Close closes FD. Errors (e.g. already closed) are non-fatal.
type Close struct {
	FD int
}

func (Close) isAction() {}

// ShutdownHow selects which half of a connection to shut down.
type ShutdownHow int

const (
	ShutdownRead ShutdownHow = iota
	ShutdownWrite
	ShutdownBoth
)

// Shutdown calls shutdown(2) on FD with the given How. Errors (e.g. fd
// already closed) are non-fatal.
type Shutdown struct {
	FD  int
	How ShutdownHow
}

func (Shutdown) isAction() {}

// DumpFDTable invokes the fd-table printer (internal/fdtable), writing its
// output to StreamFD.
type DumpFDTable struct {
	StreamFD int
}

func (DumpFDTable) isAction() {}
