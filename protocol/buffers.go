package protocol

import "errors"

// ErrFifoFull is returned when a FIFO write does not fit
var ErrFifoFull = errors.New("fifo full")

// InputBuffer is received link data waiting to be decoded
type InputBuffer interface {
	Data() []byte
	Available() int
	Pop(n int)
}

// OutputBuffer is a frame under construction
type OutputBuffer interface {
	Output(data []byte)
	CurPosition() int
	Update(pos int, val byte)
	DataSince(pos int) []byte
}

// SliceInputBuffer is an InputBuffer over a fixed slice
type SliceInputBuffer struct {
	data []byte
}

// NewSliceInputBuffer returns an InputBuffer reading data
func NewSliceInputBuffer(data []byte) *SliceInputBuffer {
	return &SliceInputBuffer{data: data}
}

func (s *SliceInputBuffer) Data() []byte   { return s.data }
func (s *SliceInputBuffer) Available() int { return len(s.data) }

func (s *SliceInputBuffer) Pop(n int) {
	s.data = s.data[min(n, len(s.data)):]
}

// scratchSize leaves room to detect a frame that overflows FrameMax
const scratchSize = 4 * FrameMax

// ScratchOutput is an OutputBuffer over a fixed array. Writes past the end
// are dropped.
type ScratchOutput struct {
	buf [scratchSize]byte
	pos int
}

// NewScratchOutput returns an empty ScratchOutput
func NewScratchOutput() *ScratchOutput {
	return &ScratchOutput{}
}

func (s *ScratchOutput) Output(data []byte) {
	s.pos += copy(s.buf[s.pos:], data)
}

func (s *ScratchOutput) CurPosition() int { return s.pos }

func (s *ScratchOutput) Update(pos int, val byte) {
	if pos < s.pos {
		s.buf[pos] = val
	}
}

func (s *ScratchOutput) DataSince(pos int) []byte {
	if pos > s.pos {
		return nil
	}
	return s.buf[pos:s.pos]
}

// Result returns everything written since the last Reset
func (s *ScratchOutput) Result() []byte { return s.buf[:s.pos] }

// Reset empties the buffer
func (s *ScratchOutput) Reset() { s.pos = 0 }

// FifoBuffer is a ring of received bytes. One slot stays free to tell full
// from empty.
type FifoBuffer struct {
	buf   []byte
	read  int
	write int
}

// NewFifoBuffer returns a FIFO holding up to capacity-1 bytes
func NewFifoBuffer(capacity int) *FifoBuffer {
	return &FifoBuffer{buf: make([]byte, capacity)}
}

// Write appends as much of data as fits. It implements io.Writer and
// reports ErrFifoFull on a short write.
func (f *FifoBuffer) Write(data []byte) (int, error) {
	for i, b := range data {
		next := (f.write + 1) % len(f.buf)
		if next == f.read {
			return i, ErrFifoFull
		}
		f.buf[f.write] = b
		f.write = next
	}
	return len(data), nil
}

// Available returns the number of buffered bytes
func (f *FifoBuffer) Available() int {
	if f.write >= f.read {
		return f.write - f.read
	}
	return len(f.buf) - f.read + f.write
}

// Free returns the room left for writing
func (f *FifoBuffer) Free() int {
	return len(f.buf) - f.Available() - 1
}

// Data returns the buffered bytes in order. A wrapped ring is copied into a
// new slice.
func (f *FifoBuffer) Data() []byte {
	if f.read <= f.write {
		return f.buf[f.read:f.write]
	}
	out := make([]byte, 0, f.Available())
	out = append(out, f.buf[f.read:]...)
	return append(out, f.buf[:f.write]...)
}

// Pop discards n bytes from the front
func (f *FifoBuffer) Pop(n int) {
	n = min(n, f.Available())
	f.read = (f.read + n) % len(f.buf)
}

// IsEmpty reports whether nothing is buffered
func (f *FifoBuffer) IsEmpty() bool { return f.read == f.write }

// Reset empties the FIFO
func (f *FifoBuffer) Reset() {
	f.read, f.write = 0, 0
}
