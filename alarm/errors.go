package alarm

import "errors"

// Standard errors, following the teacher's sentinel-error-with-Unwrap
// convention (see eventloop's errors.go / poller_linux.go ErrFD* vars)
// rather than ad hoc fmt.Errorf strings for conditions callers may want to
// match with errors.Is.
var (
	// ErrShutdown is returned by Attach/Detach once Shutdown has been
	// called; the Watcher is no longer usable.
	ErrShutdown = errors.New("alarm: watcher has been shut down")

	// ErrPipeCreate is returned (wrapped) when the control-pipe self-pipe
	// cannot be created on first Attach. This is a host-misuse-adjacent
	// failure per spec.md §7 ("Host misuse: pipe/thread creation
	// failure") and is surfaced directly to the caller of Attach.
	ErrPipeCreate = errors.New("alarm: failed to create control pipe")

	// ErrNotifyFailed is returned (wrapped) when writing a control-pipe
	// opcode fails. The poll-delay cap (WithMaxPollDelay, default 10s) still bounds
	// how long an already-attached alarm's wake deadline can be missed,
	// but the caller is told so it isn't silently inconsistent.
	ErrNotifyFailed = errors.New("alarm: failed to notify watcher thread")

	// errUnknownAction is set internally when the interpreter encounters
	// an Action concrete type it doesn't recognise; it is never returned
	// to callers, only attached to the Warn log entry for the "terminate
	// this alarm only" policy.
	errUnknownAction = errors.New("alarm: unknown action type")
)
