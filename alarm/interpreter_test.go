//go:build linux || darwin

package alarm

import (
	"os"
	"os/signal"
	"syscall"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func TestExecActionsRunsToCompletion(t *testing.T) {
	var r, w int
	fds := make([]int, 2)
	if err := unix.Pipe(fds); err != nil {
		t.Fatalf("Pipe: %v", err)
	}
	r, w = fds[0], fds[1]
	defer unix.Close(r)

	a := NewAlarm(r, EventEOF, Close{FD: w})
	execActions(a, NewNoopLogger())

	if !a.Done() {
		t.Fatal("alarm should be Done after a single Close action completes")
	}
	// w should now be closed; writing to it must fail.
	if _, err := unix.Write(w, []byte("x")); err == nil {
		t.Fatal("expected write to a closed fd to fail")
	}
}

func TestExecActionsSuspendsOnSleep(t *testing.T) {
	a := NewAlarm(0, EventEOF, Sleep{Duration: time.Hour})
	execActions(a, NewNoopLogger())

	if a.Done() {
		t.Fatal("alarm should not be Done while sleep is pending")
	}
	if a.curAction != 0 {
		t.Fatalf("curAction = %d, want 0 (still on the Sleep step)", a.curAction)
	}
	if a.wakeDeadline.IsZero() {
		t.Fatal("wakeDeadline should be set once a Sleep step begins")
	}

	// Calling again before the deadline must not advance the cursor.
	execActions(a, NewNoopLogger())
	if a.curAction != 0 {
		t.Fatal("re-entering execActions before the deadline should not advance the cursor")
	}
}

func TestExecActionsResumesAfterDeadlineElapses(t *testing.T) {
	a := NewAlarm(0, EventEOF, Sleep{Duration: time.Millisecond}, Close{FD: -1})
	execActions(a, NewNoopLogger())
	if a.Done() {
		t.Fatal("should not be done immediately")
	}
	time.Sleep(5 * time.Millisecond)
	execActions(a, NewNoopLogger())
	if !a.Done() {
		t.Fatal("alarm should be Done once the sleep deadline elapses and the remaining action runs")
	}
}

func TestExecActionsZeroDurationSleepResolvesImmediately(t *testing.T) {
	a := NewAlarm(0, EventEOF, Sleep{Duration: 0})
	execActions(a, NewNoopLogger())
	if !a.Done() {
		t.Fatal("a zero-duration sleep should resolve within the same interpreter call")
	}
}

func TestExecActionsUnknownActionTerminatesOnlyThatAlarm(t *testing.T) {
	a := NewAlarm(0, EventEOF, fakeAction{})
	execActions(a, NewNoopLogger())
	if !a.Done() {
		t.Fatal("an unrecognised action type should terminate the program (Done)")
	}
}

type fakeAction struct{}

func (fakeAction) isAction() {}

func TestExecSignalDeliversToSelf(t *testing.T) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1)
	defer signal.Stop(ch)

	a := NewAlarm(0, EventEOF, Signal{Pid: os.Getpid(), Signum: int(unix.SIGUSR1)})
	execActions(a, NewNoopLogger())

	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for SIGUSR1")
	}
	if !a.Done() {
		t.Fatal("alarm should be Done after its one Signal action runs")
	}
}

func TestExecDumpFDTableWritesOutput(t *testing.T) {
	fds := make([]int, 2)
	if err := unix.Pipe(fds); err != nil {
		t.Fatalf("Pipe: %v", err)
	}
	defer unix.Close(fds[0])
	defer unix.Close(fds[1])

	a := NewAlarm(0, EventEOF, DumpFDTable{StreamFD: fds[1]})
	execActions(a, NewNoopLogger())
	if !a.Done() {
		t.Fatal("alarm should be Done after dump_fd_table runs")
	}

	unix.SetNonblock(fds[0], true)
	buf := make([]byte, 4096)
	n, err := unix.Read(fds[0], buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n == 0 {
		t.Fatal("expected dump_fd_table to write a non-empty report")
	}
}
