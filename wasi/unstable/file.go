package unstable

import (
	"github.com/wippyai/watim-playground/output"
)

// File is an entry of the descriptor table
type File interface {
	// Read fills p from the current position and reports the count.
	// A short count means the file has no more data.
	Read(p []byte) (int, Errno)
	// Write consumes p entirely or fails.
	Write(p []byte) Errno
	// Preopen returns the directory name for preopened descriptors.
	Preopen() (string, bool)
}

// unsupportedFile backs stdin, which the playground never feeds
type unsupportedFile struct{}

func (unsupportedFile) Read([]byte) (int, Errno) { return 0, ErrnoNotsup }
func (unsupportedFile) Write([]byte) Errno       { return ErrnoNotsup }
func (unsupportedFile) Preopen() (string, bool)  { return "", false }

// sinkFile forwards writes to the output sink tagged with its descriptor
type sinkFile struct {
	sink output.Sink
	fd   uint32
}

func (f *sinkFile) Read([]byte) (int, Errno) { return 0, ErrnoNotsup }

func (f *sinkFile) Write(p []byte) Errno {
	f.sink.Write(output.Output{Descriptor: f.fd, Data: string(p)})
	return ErrnoSuccess
}

func (f *sinkFile) Preopen() (string, bool) { return "", false }

// preopenDir is the root directory handed to the guest before it starts
type preopenDir struct {
	name string
}

func (d *preopenDir) Read([]byte) (int, Errno) { return 0, ErrnoNotsup }
func (d *preopenDir) Write([]byte) Errno       { return ErrnoNotsup }
func (d *preopenDir) Preopen() (string, bool)  { return d.name, true }

// readOnlyFile is an opened tree file. data is shared with the loaded tree
// and never written; pos only moves forward.
type readOnlyFile struct {
	data []byte
	pos  int
}

func newReadOnlyFile(data []byte) *readOnlyFile {
	return &readOnlyFile{data: data}
}

func (f *readOnlyFile) Read(p []byte) (int, Errno) {
	n := copy(p, f.data[f.pos:])
	f.pos += n
	return n, ErrnoSuccess
}

func (f *readOnlyFile) Write([]byte) Errno      { return ErrnoNotsup }
func (f *readOnlyFile) Preopen() (string, bool) { return "", false }
