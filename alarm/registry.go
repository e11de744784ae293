package alarm

import "time"

// registry is the Watch Registry from spec.md §2/§4.C: a mutable ordered
// collection of live Alarms, with the alarm's own listIndex field serving
// as the bidirectional index back into the slice.
//
// registry has no mutex of its own: spec.md §4.B/§4.E describes a single
// mutex guarding the registry, the control pipe, and the watcher-thread
// handle together ("Underlying requirement: at most one watcher thread
// per process; all alarms observed there", spec.md §9). That mutex is
// Watcher.mu; every method here must be called with it held.
type registry struct {
	items []*Alarm
}

func newRegistry() *registry {
	return &registry{}
}

// compact scans from the tail and swap-removes any alarm whose action
// program has completed, per spec.md §4.B/§4.C.
func (r *registry) compact() {
	for i := len(r.items) - 1; i >= 0; i-- {
		a := r.items[i]
		if !a.Done() {
			continue
		}
		a.listIndex = -1
		last := len(r.items) - 1
		if i != last {
			r.items[i] = r.items[last]
			r.items[i].listIndex = i
		}
		r.items = r.items[:last]
	}
}

// add publishes alarm into the registry, resetting its execution state if
// it was previously unlisted, and reports whether it was newly added
// (already-listed is a no-op, matching spec.md's idempotence property:
// attach(a) called twice returns true then false).
func (r *registry) add(a *Alarm) bool {
	r.compact()

	if a.listed() {
		return false
	}
	a.curAction = notTriggered
	a.wakeDeadline = time.Time{}
	a.listIndex = len(r.items)
	r.items = append(r.items, a)
	return true
}

// remove unlists alarm via swap-remove, reporting whether it had been
// listed. The moved alarm's listIndex is fixed up to preserve spec.md §3
// invariant 1.
func (r *registry) remove(a *Alarm) bool {
	r.compact()

	if !a.listed() {
		return false
	}
	i := a.listIndex
	last := len(r.items) - 1
	if i != last {
		r.items[i] = r.items[last]
		r.items[i].listIndex = i
	}
	r.items = r.items[:last]
	a.listIndex = -1
	return true
}

// shutdownAll unlists every alarm and empties the registry. Unlike
// remove/add, this does not compact first: a shutdown wipes everything
// regardless of completion state (spec.md §4.B).
func (r *registry) shutdownAll() {
	for _, a := range r.items {
		a.listIndex = -1
	}
	r.items = r.items[:0]
}

// count returns the number of listed alarms.
func (r *registry) count() int {
	return len(r.items)
}
