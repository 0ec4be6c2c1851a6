package unstable

import (
	"go.uber.org/zap"

	"github.com/wippyai/watim-playground/errors"
)

// Prestat tag for directories, the only preopen kind
const preopenTypeDir = 0

// ArgsSizesGet stores the argument count and the size of the NUL terminated
// argument buffer.
func (s *Session) ArgsSizesGet(mem Memory, argcPtr, bufSizePtr uint32) Errno {
	if !mem.WriteUint32Le(argcPtr, uint32(len(s.args))) {
		return ErrnoFault
	}
	if !mem.WriteUint32Le(bufSizePtr, s.argsSize) {
		return ErrnoFault
	}
	return ErrnoSuccess
}

// ArgsGet writes the arguments back to back into buf, each followed by a
// zero byte, and stores the address of each in the argv array.
func (s *Session) ArgsGet(mem Memory, argvPtr, bufPtr uint32) Errno {
	offset := bufPtr
	for i, arg := range s.args {
		if !mem.WriteUint32Le(argvPtr+uint32(i)*4, offset) {
			return ErrnoFault
		}
		if !mem.Write(offset, arg) {
			return ErrnoFault
		}
		offset += uint32(len(arg))
		if !mem.WriteByte(offset, 0) {
			return ErrnoFault
		}
		offset++
	}
	return ErrnoSuccess
}

// FDRead fills the iovecs in order from fd's position, stopping at the
// first short copy, and stores the total. A buffer that runs past the end of
// memory is clamped; one that starts outside it is a fault. An fd that was never opened is
// reported as an error, which the host turns into a fatal trap.
func (s *Session) FDRead(mem Memory, fd, iovs, iovsLen, nreadPtr uint32) (Errno, error) {
	f, ok := s.files.Get(fd)
	if !ok {
		return 0, errors.BadDescriptor(FunctionFDRead, fd)
	}
	vecs, ok := readIovecs(mem, iovs, iovsLen)
	if !ok {
		return ErrnoFault, nil
	}

	size := mem.Size()
	var total uint32
	for _, v := range vecs {
		if v.len > 0 && v.ptr >= size {
			return ErrnoFault, nil
		}
		n, errno := f.Read(window(mem, v.ptr, v.len))
		if errno != ErrnoSuccess {
			return errno, nil
		}
		total += uint32(n)
		if uint32(n) < v.len {
			break
		}
	}

	if !mem.WriteUint32Le(nreadPtr, total) {
		return ErrnoFault, nil
	}
	return ErrnoSuccess, nil
}

// FDWrite hands the bytes of each iovec to fd and stores the total. Empty
// iovecs are skipped.
func (s *Session) FDWrite(mem Memory, fd, iovs, iovsLen, nwrittenPtr uint32) (Errno, error) {
	f, ok := s.files.Get(fd)
	if !ok {
		return 0, errors.BadDescriptor(FunctionFDWrite, fd)
	}
	vecs, ok := readIovecs(mem, iovs, iovsLen)
	if !ok {
		return ErrnoFault, nil
	}

	var total uint32
	for _, v := range vecs {
		if v.len == 0 {
			continue
		}
		data, ok := mem.Read(v.ptr, v.len)
		if !ok {
			return ErrnoFault, nil
		}
		if errno := f.Write(data); errno != ErrnoSuccess {
			return errno, nil
		}
		total += v.len
	}

	if !mem.WriteUint32Le(nwrittenPtr, total) {
		return ErrnoFault, nil
	}
	return ErrnoSuccess, nil
}

// FDPrestatGet stores the prestat of a preopened directory: the directory
// tag at ptr and the name length at ptr+4.
func (s *Session) FDPrestatGet(mem Memory, fd, ptr uint32) Errno {
	name, ok := s.preopen(fd)
	if !ok {
		return ErrnoBadf
	}
	if !mem.WriteByte(ptr, preopenTypeDir) {
		return ErrnoFault
	}
	if !mem.WriteUint32Le(ptr+4, uint32(len(name))) {
		return ErrnoFault
	}
	return ErrnoSuccess
}

// FDPrestatDirName copies the preopen name into [ptr, ptr+length),
// truncating it when the buffer is short.
func (s *Session) FDPrestatDirName(mem Memory, fd, ptr, length uint32) Errno {
	name, ok := s.preopen(fd)
	if !ok {
		return ErrnoBadf
	}
	copyOut(mem, ptr, length, []byte(name))
	return ErrnoSuccess
}

func (s *Session) preopen(fd uint32) (string, bool) {
	f, ok := s.files.Get(fd)
	if !ok {
		return "", false
	}
	return f.Preopen()
}

// PathOpen resolves the path at [pathPtr, pathPtr+pathLen) against the root
// preopen and stores the new descriptor at fdPtr. dirFD and the WASI open
// flags are accepted but not interpreted.
func (s *Session) PathOpen(mem Memory, dirFD, pathPtr, pathLen, fdPtr uint32) Errno {
	raw, ok := mem.Read(pathPtr, pathLen)
	if !ok {
		return ErrnoFault
	}
	path := string(raw)
	if dirFD != FDRoot {
		Logger().Debug("path_open relative to non-root descriptor",
			zap.Uint32("dirfd", dirFD), zap.String("path", path))
	}

	fd, errno := s.files.Open(path)
	if errno != ErrnoSuccess {
		return errno
	}
	if !mem.WriteUint32Le(fdPtr, fd) {
		return ErrnoFault
	}
	return ErrnoSuccess
}
