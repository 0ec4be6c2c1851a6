package unstable

// Memory is the view of guest linear memory the host calls need.
// wazero's api.Memory satisfies it.
type Memory interface {
	Size() uint32
	Read(offset, byteCount uint32) ([]byte, bool)
	Write(offset uint32, v []byte) bool
	ReadUint32Le(offset uint32) (uint32, bool)
	WriteUint32Le(offset, v uint32) bool
	WriteByte(offset uint32, v byte) bool
}

const iovecSize = 8

type iovec struct {
	ptr uint32
	len uint32
}

// readIovecs decodes iovsLen (ptr, len) pairs starting at iovs
func readIovecs(mem Memory, iovs, iovsLen uint32) ([]iovec, bool) {
	if iovsLen > mem.Size()/iovecSize {
		return nil, false
	}
	raw, ok := mem.Read(iovs, iovsLen*iovecSize)
	if !ok {
		return nil, false
	}
	vecs := make([]iovec, iovsLen)
	for i := range vecs {
		b := raw[i*iovecSize:]
		vecs[i] = iovec{
			ptr: le32(b[0:4]),
			len: le32(b[4:8]),
		}
	}
	return vecs, true
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// window returns the writable part of [ptr, ptr+length) that lies inside
// memory. It is empty when ptr is at or past the end.
func window(mem Memory, ptr, length uint32) []byte {
	size := mem.Size()
	if ptr >= size {
		return nil
	}
	if room := size - ptr; length > room {
		length = room
	}
	view, ok := mem.Read(ptr, length)
	if !ok {
		return nil
	}
	return view
}

// copyOut copies min(length, len(src), memory left after ptr) bytes of src
// into guest memory at ptr and returns the count.
func copyOut(mem Memory, ptr, length uint32, src []byte) uint32 {
	return uint32(copy(window(mem, ptr, length), src))
}
