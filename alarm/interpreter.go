//go:build linux || darwin

package alarm

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/joeycumines/go-socketalarm/internal/fdtable"
)

// execActions is the Action Interpreter from spec.md §4.F. It is invoked
// with the registry mutex held, on one alarm at a time, and advances
// curAction from wherever it currently is — possibly notTriggered -> 0 on
// first trigger — executing actions sequentially until the program
// completes or suspends on an unfired Sleep. It never blocks.
func execActions(a *Alarm, logger Logger) {
	if a.curAction < 0 {
		a.curAction = 0
	}
	for a.curAction < len(a.actions) {
		switch act := a.actions[a.curAction].(type) {
		case Signal:
			execSignal(act, logger)
			a.curAction++
		case Sleep:
			if !execSleep(a, act) {
				return // still sleeping: suspend, let the poll delay resume us
			}
		case Close:
			execClose(act, logger)
			a.curAction++
		case Shutdown:
			execShutdown(act, logger)
			a.curAction++
		case DumpFDTable:
			execDumpFDTable(act, logger)
			a.curAction++
		default:
			logger.Log(Entry{
				Level:    LevelWarn,
				Category: "action",
				Message:  "unknown action type, terminating this alarm",
				Err:      errUnknownAction,
				Fields:   map[string]any{"fd": a.WatchFD},
			})
			a.curAction = len(a.actions)
			return
		}
	}
}

func execSignal(act Signal, logger Logger) {
	if err := unix.Kill(act.Pid, unix.Signal(act.Signum)); err != nil {
		logger.Log(Entry{
			Level:    LevelWarn,
			Category: "action",
			Message:  "signal delivery failed",
			Err:      err,
			Fields:   map[string]any{"pid": act.Pid, "signum": act.Signum},
		})
	}
}

// execSleep returns true once the sleep has elapsed (caller should advance
// past it), or false if it is still in flight (caller must suspend).
func execSleep(a *Alarm, act Sleep) bool {
	now := time.Now()
	if a.wakeDeadline.IsZero() {
		a.wakeDeadline = now.Add(act.Duration)
	}
	if now.Before(a.wakeDeadline) {
		return false
	}
	a.wakeDeadline = time.Time{}
	a.curAction++
	return true
}

func execClose(act Close, logger Logger) {
	if err := unix.Close(act.FD); err != nil {
		logger.Log(Entry{
			Level:    LevelWarn,
			Category: "action",
			Message:  "close failed",
			Err:      err,
			Fields:   map[string]any{"fd": act.FD},
		})
	}
}

func shutdownHowToUnix(how ShutdownHow) int {
	switch how {
	case ShutdownRead:
		return unix.SHUT_RD
	case ShutdownWrite:
		return unix.SHUT_WR
	default:
		return unix.SHUT_RDWR
	}
}

func execShutdown(act Shutdown, logger Logger) {
	if err := unix.Shutdown(act.FD, shutdownHowToUnix(act.How)); err != nil {
		logger.Log(Entry{
			Level:    LevelWarn,
			Category: "action",
			Message:  "shutdown failed",
			Err:      err,
			Fields:   map[string]any{"fd": act.FD, "how": act.How},
		})
	}
}

// fdWriter adapts a raw fd to io.Writer without taking ownership of it
// (unlike os.NewFile, which would attach a GC finalizer that closes it).
type fdWriter int

func (w fdWriter) Write(p []byte) (int, error) {
	return unix.Write(int(w), p)
}

func execDumpFDTable(act DumpFDTable, logger Logger) {
	if err := fdtable.Fprint(fdWriter(act.StreamFD), maxFDCeiling()); err != nil {
		logger.Log(Entry{
			Level:    LevelWarn,
			Category: "action",
			Message:  "dump_fd_table failed",
			Err:      err,
			Fields:   map[string]any{"stream_fd": act.StreamFD},
		})
	}
}

// maxFDCeiling reports an upper bound on fd values for the fd-table dump,
// from the process's open-file-descriptor limit, capped to keep the scan
// bounded even if the limit is effectively unlimited.
func maxFDCeiling() int {
	var rlim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rlim); err != nil {
		return 1024
	}
	n := int(rlim.Cur)
	if n <= 0 || n > 65536 {
		return 65536
	}
	return n
}
