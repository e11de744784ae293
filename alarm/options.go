package alarm

import "time"

// defaultPollCap is the hard ceiling on simultaneously-polled fds from
// spec.md §4.A/§8 ("With watch_list_count > 1024, only the first 1024
// alarms appear in the poll set").
const defaultPollCap = 1024

// defaultMaxPollDelay is the hard cap on the poll delay from spec.md §4.E
// step 3 / §5, so newly-added wake deadlines are honoured within this
// bound even if a REWATCH notification is somehow lost.
const defaultMaxPollDelay = 10 * time.Second

// watcherOptions holds configuration resolved from Option values, mirroring
// the teacher's loopOptions/resolveLoopOptions split in eventloop/options.go.
type watcherOptions struct {
	logger       Logger
	pollCap      int
	maxPollDelay time.Duration
}

// Option configures a Watcher at construction time.
type Option interface {
	apply(*watcherOptions)
}

type optionFunc func(*watcherOptions)

func (f optionFunc) apply(o *watcherOptions) { f(o) }

// WithLogger sets the Logger a Watcher reports diagnostics through.
// Default is NewNoopLogger().
func WithLogger(logger Logger) Option {
	return optionFunc(func(o *watcherOptions) {
		if logger != nil {
			o.logger = logger
		}
	})
}

// WithPollCap overrides the ceiling on simultaneously-polled fds (default
// 1024, per spec.md §4.A). A small value lets the boundary behaviour in
// spec.md §8 be exercised without attaching 1025 real alarms.
func WithPollCap(n int) Option {
	return optionFunc(func(o *watcherOptions) {
		if n > 0 {
			o.pollCap = n
		}
	})
}

// WithMaxPollDelay overrides the hard cap on the poll delay (default 10s,
// per spec.md §4.E/§5).
func WithMaxPollDelay(d time.Duration) Option {
	return optionFunc(func(o *watcherOptions) {
		if d > 0 {
			o.maxPollDelay = d
		}
	})
}

func resolveOptions(opts []Option) *watcherOptions {
	o := &watcherOptions{
		logger:       NewNoopLogger(),
		pollCap:      defaultPollCap,
		maxPollDelay: defaultMaxPollDelay,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.apply(o)
	}
	return o
}
