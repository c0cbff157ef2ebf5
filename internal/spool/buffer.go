package spool

// maxBufferSize caps how much a single native size hint may ask for.
// Spooler responses are at most a few hundred KB in practice; anything
// far beyond that means a corrupt hint, not a big directory.
const maxBufferSize = 16 << 20

// Buffer is a raw byte region sized to a previously reported native
// requirement, tagged with the element stride it was filled with. A Buffer
// is owned by whoever allocated it and must be freed exactly once; views
// derived from it become invalid at that point.
type Buffer struct {
	data   []byte
	stride int
	freed  bool
}

func newBuffer(size, stride int) (*Buffer, error) {
	if size <= 0 || size > maxBufferSize || stride <= 0 {
		return nil, ErrAllocation
	}
	return &Buffer{data: make([]byte, size), stride: stride}, nil
}

// Bytes returns the underlying region. It panics after Free: any access
// past the free is a lifetime bug in the caller, not a recoverable state.
func (b *Buffer) Bytes() []byte {
	if b.freed {
		panic("spool: use of freed buffer")
	}
	return b.data
}

// Len is the buffer size in bytes.
func (b *Buffer) Len() int {
	if b.freed {
		panic("spool: use of freed buffer")
	}
	return len(b.data)
}

// Stride is the element width the buffer was negotiated for.
func (b *Buffer) Stride() int { return b.stride }

// Slot returns the i-th stride-sized element.
func (b *Buffer) Slot(i int) []byte {
	data := b.Bytes()
	return data[i*b.stride : (i+1)*b.stride]
}

// Free releases the region. Freeing twice returns ErrBufferFreed.
func (b *Buffer) Free() error {
	if b.freed {
		return ErrBufferFreed
	}
	b.freed = true
	b.data = nil
	return nil
}
