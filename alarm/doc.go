// Package alarm provides socket death alarms: a host goroutine registers a
// watch on an open file descriptor together with a scripted list of
// actions, and when the fd experiences peer shutdown/hang-up (or, mid
// action-program, a configured sleep elapses) the package runs the script
// on the host's behalf.
//
// # Architecture
//
// A Watcher owns exactly one background goroutine (spawned lazily on the
// first Attach) that multiplexes readiness for every attached Alarm's fd
// using golang.org/x/sys/unix.Poll, plus a self-pipe control channel the
// host goroutine uses to wake it after Attach/Detach/Shutdown. Alarms
// sharing the same fd are deduplicated per iteration by internal/fdindex so
// that fd occupies a single poll slot regardless of how many alarms
// reference it.
//
// # Thread safety
//
// Attach, Detach, and Shutdown are safe to call from any goroutine except
// the watcher's own. The watcher goroutine never calls back into the
// Watcher's public methods while holding the registry lock.
package alarm
