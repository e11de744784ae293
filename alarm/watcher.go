//go:build linux || darwin

package alarm

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/joeycumines/go-socketalarm/internal/fdindex"
)

// Watcher is the Host Bridge plus the one goroutine that ever calls poll(2)
// on behalf of every Alarm attached to it, per spec.md §2/§4. There is no
// per-process singleton here, unlike the original C source's single global
// watch list: callers that want "one watcher per process" just construct
// one Watcher and share it, which is the idiomatic Go equivalent.
//
// A single mutex (mu) guards the Watch Registry, the control pipe, and the
// watcher-goroutine lifecycle flags together, mirroring the original's
// single watch_list_mutex (spec.md §4.B/§4.E, §9).
type Watcher struct {
	opts *watcherOptions

	mu       sync.Mutex
	reg      *registry
	pipe     *controlPipe
	running  bool
	shutdown bool
	loopDone chan struct{}

	index *fdindex.Index
}

// NewWatcher constructs a Watcher. No goroutine or control pipe is created
// until the first Attach (spec.md §4.E: "spawns the watcher thread on first
// use").
func NewWatcher(opts ...Option) *Watcher {
	return &Watcher{
		opts:  resolveOptions(opts),
		reg:   newRegistry(),
		index: fdindex.New(),
	}
}

// Attach publishes alarm into the registry and wakes (or starts) the
// watcher goroutine so it observes the new alarm on its very next
// iteration. It reports whether alarm was newly added: attaching an
// already-listed alarm is a no-op that still returns (false, nil), per
// spec.md §3's idempotence property.
func (w *Watcher) Attach(a *Alarm) (bool, error) {
	if a == nil {
		return false, nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.shutdown {
		return false, ErrShutdown
	}

	added := w.reg.add(a)

	if w.running {
		select {
		case <-w.loopDone:
			// The previous watcher goroutine exited after a fatal poll or
			// control-pipe error; start a fresh one below.
			w.running = false
		default:
		}
	}

	if !w.running {
		if w.pipe == nil {
			pipe, err := newControlPipe()
			if err != nil {
				return added, fmt.Errorf("%w: %v", ErrPipeCreate, err)
			}
			w.pipe = pipe
		}
		w.running = true
		w.loopDone = make(chan struct{})
		go w.run(w.loopDone)
		return added, nil
	}

	if err := w.pipe.notify(opRewatch); err != nil {
		return added, fmt.Errorf("%w: %v", ErrNotifyFailed, err)
	}
	return added, nil
}

// Detach unlists alarm, reporting whether it had been listed. The watcher
// goroutine is only woken (via REWATCH) if alarm was actually removed,
// matching spec.md §4.C.
func (w *Watcher) Detach(a *Alarm) (bool, error) {
	if a == nil {
		return false, nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.shutdown {
		return false, ErrShutdown
	}

	removed := w.reg.remove(a)
	if removed && w.pipe != nil {
		if err := w.pipe.notify(opRewatch); err != nil {
			return removed, fmt.Errorf("%w: %v", ErrNotifyFailed, err)
		}
	}
	return removed, nil
}

// Shutdown unlists every alarm and asks the watcher goroutine to exit. It
// does not wait for the goroutine to actually exit: spec.md §4.B describes
// this as final-teardown, not a handshake the host blocks on. Shutdown is
// idempotent.
func (w *Watcher) Shutdown() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.shutdown {
		return nil
	}
	w.shutdown = true
	w.reg.shutdownAll()

	if w.pipe == nil {
		return nil
	}
	if err := w.pipe.notify(opTerminate); err != nil {
		return fmt.Errorf("%w: %v", ErrNotifyFailed, err)
	}
	return nil
}

// wait blocks until the watcher goroutine has exited, or returns
// immediately if one was never started. It exists for tests that need to
// observe the loop actually stopping after Shutdown.
func (w *Watcher) wait() {
	w.mu.Lock()
	done := w.loopDone
	w.mu.Unlock()
	if done != nil {
		<-done
	}
}

// run is the Watcher Loop goroutine (spec.md §4.E). It keeps iterating
// until doWatch reports the loop should stop (a TERMINATE opcode or a fatal
// poll error).
func (w *Watcher) run(done chan struct{}) {
	defer close(done)
	for w.doWatch() {
	}
}

// doWatch runs exactly one iteration of the watcher loop: snapshot, poll,
// dispatch. It returns false once the goroutine should exit.
func (w *Watcher) doWatch() bool {
	pollset, corrupted := w.snapshot()

	if corrupted {
		w.opts.logger.Log(Entry{
			Level:    LevelError,
			Category: "poll",
			Message:  "bug: corrupt fd index, this iteration's poll set is incomplete",
		})
	}

	delay := w.pollDelay()
	n, err := unix.Poll(pollset, delay)
	if err != nil {
		if err == unix.EINTR {
			return true
		}
		w.opts.logger.Log(Entry{
			Level:    LevelError,
			Category: "poll",
			Message:  "poll failed, watcher exiting",
			Err:      err,
		})
		return false
	}
	if n == 0 {
		// Timeout: nothing readable, but a sleeping alarm's deadline may
		// have elapsed. Dispatch normally; execActions itself decides
		// whether each deadline has actually passed.
		return w.dispatch(pollset)
	}

	if pollset[0].Revents&unix.POLLIN != 0 {
		op, err := w.pipe.readOpcode()
		if err != nil {
			w.opts.logger.Log(Entry{
				Level:    LevelError,
				Category: "poll",
				Message:  "control pipe read failed, watcher exiting",
				Err:      err,
			})
			return false
		}
		if op == opTerminate {
			return false
		}
		// opRewatch: drop any fd events discovered this round and
		// re-snapshot immediately, per spec.md §4.E step 5.
		return true
	}

	return w.dispatch(pollset)
}

// snapshot builds this iteration's poll set under the registry lock,
// mirroring spec.md §4.E steps 1-2. Slot 0 is always the control pipe's
// read end.
func (w *Watcher) snapshot() (pollset []unix.PollFd, corrupted bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	count := w.reg.count()
	capacity := count + 1
	if capacity > w.opts.pollCap {
		capacity = w.opts.pollCap
	}
	if capacity < 1 {
		capacity = 1
	}
	indexCap := capacity - 1
	if indexCap < 1 {
		indexCap = 1
	}
	w.index.Reset(indexCap)

	pollset = make([]unix.PollFd, 1, capacity)
	pollset[0] = unix.PollFd{Fd: int32(w.pipe.readFD), Events: unix.POLLIN}
	nPoll := 1

	for _, a := range w.reg.items {
		if nPoll >= capacity {
			break
		}
		if a.Done() {
			continue
		}
		slot := w.index.Insert(a.WatchFD)
		if slot == 0 {
			corrupted = true
			break
		}
		if slot == nPoll {
			pollset = append(pollset, unix.PollFd{Fd: int32(a.WatchFD)})
			nPoll++
		}
		if a.EventMask&EventEOF != 0 {
			pollset[slot].Events |= unix.POLLIN
		}
	}

	return pollset, corrupted
}

// pollDelay computes this iteration's poll(2) timeout in milliseconds,
// capped at maxPollDelay and reduced to the earliest pending wake deadline
// among sleeping alarms (spec.md §4.E step 3).
func (w *Watcher) pollDelay() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	delay := w.opts.maxPollDelay
	now := time.Now()
	for _, a := range w.reg.items {
		if a.Done() || a.wakeDeadline.IsZero() {
			continue
		}
		if d := a.wakeDeadline.Sub(now); d < delay {
			delay = d
		}
	}
	if delay < 0 {
		delay = 0
	}
	return int(delay / time.Millisecond)
}

// dispatch re-acquires the registry lock and runs the Action Interpreter
// over every alarm that either just triggered or was already mid-program,
// per spec.md §4.E step 6 / §4.F.
func (w *Watcher) dispatch(pollset []unix.PollFd) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, a := range w.reg.items {
		if a.Done() {
			continue
		}

		if !a.Triggered() {
			slot := w.index.Find(a.WatchFD)
			if slot == 0 {
				// Registry changed during the lock gap around poll(2);
				// this alarm simply wasn't in this iteration's poll set.
				continue
			}
			revents := pollset[slot].Revents
			if a.EventMask&EventEOF == 0 {
				continue
			}
			if revents&(unix.POLLHUP|unix.POLLIN) == 0 {
				continue
			}
			execActions(a, w.opts.logger)
			continue
		}

		// Already in progress (most likely suspended on a Sleep): always
		// give the interpreter a chance to notice its deadline elapsed.
		execActions(a, w.opts.logger)
	}

	return true
}
