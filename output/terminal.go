package output

import (
	"os"
	"sync/atomic"

	"golang.org/x/term"
)

var (
	stdoutIsTerminal int32 = -1 // -1 = unchecked, 0 = no, 1 = yes
	stderrIsTerminal int32 = -1
)

func isTerminal(fd int, cached *int32) bool {
	if v := atomic.LoadInt32(cached); v >= 0 {
		return v == 1
	}
	result := term.IsTerminal(fd)
	if result {
		atomic.StoreInt32(cached, 1)
	} else {
		atomic.StoreInt32(cached, 0)
	}
	return result
}

// StdoutIsTerminal reports whether the process stdout is a terminal
func StdoutIsTerminal() bool {
	return isTerminal(int(os.Stdout.Fd()), &stdoutIsTerminal)
}

// StderrIsTerminal reports whether the process stderr is a terminal
func StderrIsTerminal() bool {
	return isTerminal(int(os.Stderr.Fd()), &stderrIsTerminal)
}

// AutoRenderer styles output only when both standard streams are terminals
func AutoRenderer() *Renderer {
	return NewRenderer(StdoutIsTerminal() && StderrIsTerminal())
}
