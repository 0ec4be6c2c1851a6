package runtime

import "github.com/wippyai/watim-playground/wasi/unstable"

type runOptions struct {
	onExit       func(uint32)
	preopenName  string
	evictOnClose bool
}

// Option configures a single run
type Option func(*runOptions)

// WithOnExit registers a callback invoked with the code the guest passes to
// proc_exit. It is not called when _start returns normally.
func WithOnExit(fn func(code uint32)) Option {
	return func(o *runOptions) {
		o.onExit = fn
	}
}

// WithPreopenName sets the directory name reported for the root preopen
func WithPreopenName(name string) Option {
	return func(o *runOptions) {
		o.preopenName = name
	}
}

// WithEvict drops the compiled binary from the engine cache once the run
// ends. Use it for binaries that are not expected to run again. Concurrent
// runs of the same bytes must not be in flight.
func WithEvict() Option {
	return func(o *runOptions) {
		o.evictOnClose = true
	}
}

func buildOptions(opts []Option) runOptions {
	o := runOptions{preopenName: unstable.DefaultPreopenName}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
