package unstable

import "fmt"

// Errno is a WASI error number returned to the guest
type Errno uint32

const (
	ErrnoSuccess Errno = 0
	ErrnoBadf    Errno = 8
	ErrnoFault   Errno = 21
	ErrnoIsdir   Errno = 31
	ErrnoNoent   Errno = 44
	ErrnoNotsup  Errno = 58
)

func (e Errno) String() string {
	switch e {
	case ErrnoSuccess:
		return "ESUCCESS"
	case ErrnoBadf:
		return "EBADF"
	case ErrnoFault:
		return "EFAULT"
	case ErrnoIsdir:
		return "EISDIR"
	case ErrnoNoent:
		return "ENOENT"
	case ErrnoNotsup:
		return "ENOTSUP"
	default:
		return fmt.Sprintf("errno(%d)", uint32(e))
	}
}
