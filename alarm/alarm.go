package alarm

import "time"

// EventMask selects which lifecycle events an Alarm watches for. EOF is
// the only event spec.md currently defines (peer close / hang-up,
// delivered as POLLHUP or POLLIN per spec.md's Open Questions resolution).
type EventMask uint32

const (
	// EventEOF triggers on peer shutdown or hang-up.
	EventEOF EventMask = 1 << iota
)

// notTriggered is the cur_action sentinel meaning "has not yet fired".
const notTriggered = -1

// Alarm is a watch spec bound to one fd, carrying an action program. An
// Alarm is constructed unlisted (not yet attached to any Watcher) via
// NewAlarm; Watcher.Attach publishes it into the Watch Registry.
//
// Alarm does not own WatchFD: the fd's lifetime is controlled by the host,
// which must keep it valid until Detach or Shutdown.
type Alarm struct {
	// WatchFD is the descriptor under observation. Immutable after
	// construction.
	WatchFD int

	// EventMask is the set of events that trigger this alarm. Immutable
	// after construction.
	EventMask EventMask

	// actions is this alarm's action program. Immutable after
	// construction (spec.md §3 invariant).
	actions []Action

	// curAction is the execution cursor: notTriggered means "not yet
	// triggered"; [0, len(actions)) means "in progress, at step N";
	// >= len(actions) means "completed/stale". Reset by Attach just
	// before the alarm is listed; otherwise written only by the watcher
	// goroutine while the alarm is listed.
	curAction int

	// wakeDeadline is set while a Sleep step is in flight (zero value
	// means "none"). Cleared by Attach just before the alarm is listed;
	// otherwise written only by the watcher goroutine.
	wakeDeadline time.Time

	// listIndex is this alarm's position inside the Watch Registry, or -1
	// when unlisted. Back-reference, not ownership (spec.md §3
	// invariant 1).
	listIndex int
}

// NewAlarm constructs an unlisted Alarm watching fd for the events in mask,
// running actions in order once triggered. actions is copied so the caller
// may reuse or mutate its backing slice afterward; the action program
// itself is immutable once the Alarm exists (spec.md §3).
func NewAlarm(fd int, mask EventMask, actions ...Action) *Alarm {
	prog := make([]Action, len(actions))
	copy(prog, actions)
	return &Alarm{
		WatchFD:   fd,
		EventMask: mask,
		actions:   prog,
		curAction: notTriggered,
		listIndex: -1,
	}
}

// Triggered reports whether the alarm has started executing its action
// program (cur_action != -1, in spec.md's terms).
func (a *Alarm) Triggered() bool {
	return a.curAction != notTriggered
}

// Done reports whether the alarm's action program has completed (the
// terminal cur_action >= len(actions) state).
func (a *Alarm) Done() bool {
	return a.curAction >= len(a.actions)
}

// listed reports whether the alarm is currently published into a
// registry (spec.md §3 invariant 1, `list_ofs >= 0`).
func (a *Alarm) listed() bool {
	return a.listIndex >= 0
}
