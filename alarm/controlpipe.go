//go:build linux || darwin

package alarm

import (
	"io"

	"golang.org/x/sys/unix"
)

// opcode is a Control Channel message, per spec.md §6: a byte stream of
// opcodes, one per readable notification.
type opcode byte

const (
	// opRewatch asks the watcher to re-snapshot the registry and rebuild
	// its poll set immediately.
	opRewatch opcode = 1
	// opTerminate asks the watcher goroutine to exit.
	opTerminate opcode = 2
)

// controlPipe is the self-pipe the host goroutine uses to wake the watcher
// goroutine out of unix.Poll. It carries two distinct one-byte opcodes
// rather than an eventfd counter — grounded on the teacher's Darwin
// self-pipe fallback (wakeup_darwin.go's createWakeFd), generalised to
// cover both Linux and Darwin here since neither end needs an
// eventfd-style coalescing counter, just "wake up and look at this byte".
type controlPipe struct {
	readFD  int
	writeFD int
}

// newControlPipe creates a non-blocking, close-on-exec self-pipe.
func newControlPipe() (*controlPipe, error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return nil, err
	}
	unix.CloseOnExec(fds[0])
	unix.CloseOnExec(fds[1])
	if err := unix.SetNonblock(fds[0], true); err != nil {
		unix.Close(fds[0])
		unix.Close(fds[1])
		return nil, err
	}
	if err := unix.SetNonblock(fds[1], true); err != nil {
		unix.Close(fds[0])
		unix.Close(fds[1])
		return nil, err
	}
	return &controlPipe{readFD: fds[0], writeFD: fds[1]}, nil
}

// notify writes a single opcode byte to the pipe. Writes are single-byte
// and therefore atomic (spec.md §5). If the pipe is momentarily full, an
// already-pending opcode guarantees the watcher will wake and re-snapshot
// anyway, so EAGAIN is not an error here (spec.md §8 scenario 6: REWATCH
// coalescing).
func (c *controlPipe) notify(op opcode) error {
	buf := [1]byte{byte(op)}
	_, err := unix.Write(c.writeFD, buf[:])
	if err == unix.EAGAIN {
		return nil
	}
	return err
}

// readOpcode reads exactly one opcode byte. A short read is fatal per
// spec.md §4.E step 5 / §7.
func (c *controlPipe) readOpcode() (opcode, error) {
	var buf [1]byte
	n, err := unix.Read(c.readFD, buf[:])
	if err != nil {
		return 0, err
	}
	if n != 1 {
		return 0, io.ErrUnexpectedEOF
	}
	return opcode(buf[0]), nil
}

func (c *controlPipe) close() error {
	e1 := unix.Close(c.readFD)
	e2 := unix.Close(c.writeFD)
	if e1 != nil {
		return e1
	}
	return e2
}
