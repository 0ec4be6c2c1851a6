// Package output carries guest text from the host shim to whoever displays it.
//
// The shim emits one Output per written chunk, tagged with the descriptor it
// was written to. Sinks receive those events as they happen; Transcript groups
// them into display blocks and Renderer styles the blocks.
package output

import (
	"io"
	"strings"
	"sync"
)

// Standard descriptors
const (
	Stdout uint32 = 1
	Stderr uint32 = 2
)

// Output is one chunk of text written by the guest
type Output struct {
	Data       string
	Descriptor uint32
}

// IsStderr reports whether the chunk belongs to the diagnostic stream
func (o Output) IsStderr() bool { return o.Descriptor == Stderr }

// Sink receives guest output incrementally
type Sink interface {
	Write(Output)
}

// Func adapts a function to Sink
type Func func(Output)

func (f Func) Write(o Output) { f(o) }

// Discard drops all output
var Discard Sink = Func(func(Output) {})

// Writers routes stderr chunks to errOut and all others to out
func Writers(out, errOut io.Writer) Sink {
	return Func(func(o Output) {
		w := out
		if o.IsStderr() {
			w = errOut
		}
		_, _ = io.WriteString(w, o.Data)
	})
}

// Route sends stderr chunks to errSink and all others to outSink
func Route(outSink, errSink Sink) Sink {
	return Func(func(o Output) {
		if o.IsStderr() {
			errSink.Write(o)
			return
		}
		outSink.Write(o)
	})
}

// Tee forwards each chunk to every sink in order
func Tee(sinks ...Sink) Sink {
	return Func(func(o Output) {
		for _, s := range sinks {
			s.Write(o)
		}
	})
}

// Recorder keeps every chunk in arrival order. It is safe for concurrent use.
type Recorder struct {
	outputs []Output
	mu      sync.Mutex
}

func (r *Recorder) Write(o Output) {
	r.mu.Lock()
	r.outputs = append(r.outputs, o)
	r.mu.Unlock()
}

// Outputs returns a copy of the recorded chunks
func (r *Recorder) Outputs() []Output {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Output, len(r.outputs))
	copy(out, r.outputs)
	return out
}

// Text concatenates everything written to descriptor fd
func (r *Recorder) Text(fd uint32) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var b strings.Builder
	for _, o := range r.outputs {
		if o.Descriptor == fd {
			b.WriteString(o.Data)
		}
	}
	return b.String()
}
