package pool

import "sync"

// PacketBufferDefaultSize is the default size of the ByteBuffer obtained from the pool.
const (
	PacketBufferDefaultSize  = 1024 * 4        // 4KiB, a typical DATA packet fits
	PacketBufferMaxThreshold = 1024 * 64       // 64KiB
	FrameBufferDefaultSize   = 1024 * 256      // 256KiB
	FrameBufferMaxThreshold  = 1024 * 1024 * 4 // 4MiB
)

// ByteBuffer is a reusable byte slice wrapper handed out by the pools below.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default size.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset resets the buffer to be empty, but retains the allocated memory for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// MustWrite appends data to the buffer, growing it if necessary.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// WriteByte appends a single byte to the buffer.
func (bb *ByteBuffer) WriteByte(b byte) error {
	bb.B = append(bb.B, b)
	return nil
}

// Write appends the contents of data to the buffer, growing it as needed.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

var packetBufferPool = sync.Pool{
	New: func() any {
		return NewByteBuffer(PacketBufferDefaultSize)
	},
}

var frameBufferPool = sync.Pool{
	New: func() any {
		return NewByteBuffer(FrameBufferDefaultSize)
	},
}

// GetPacketBuffer returns a ByteBuffer sized for a single packet.
func GetPacketBuffer() *ByteBuffer {
	bb, _ := packetBufferPool.Get().(*ByteBuffer)
	bb.Reset()

	return bb
}

// PutPacketBuffer returns a packet buffer to the pool.
// Oversized buffers are dropped to keep the pool's memory bounded.
func PutPacketBuffer(bb *ByteBuffer) {
	if bb == nil || cap(bb.B) > PacketBufferMaxThreshold {
		return
	}
	packetBufferPool.Put(bb)
}

// GetFrameBuffer returns a ByteBuffer sized for a full framed stream.
func GetFrameBuffer() *ByteBuffer {
	bb, _ := frameBufferPool.Get().(*ByteBuffer)
	bb.Reset()

	return bb
}

// PutFrameBuffer returns a frame buffer to the pool.
// Oversized buffers are dropped to keep the pool's memory bounded.
func PutFrameBuffer(bb *ByteBuffer) {
	if bb == nil || cap(bb.B) > FrameBufferMaxThreshold {
		return
	}
	frameBufferPool.Put(bb)
}
