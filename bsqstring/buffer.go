package bsqstring

// ByteBuffer is the binary-blob counterpart to BSQString (spec §2 "String
// Engine", §9 "Large strings & byte buffers": "the leaf/node chain for
// buffers" is required, not optional). It reuses BSQString's own
// inline/K-repr/concat-tree chunking machinery since a byte buffer has
// exactly the same chunking shape as a string with no UTF-8 semantics
// layered on top.
type ByteBuffer struct {
	data BSQString
}

// NewByteBuffer builds a buffer from raw bytes, chunked the same way
// FromBytes chunks a string.
func NewByteBuffer(b []byte) ByteBuffer { return ByteBuffer{data: FromBytes(b)} }

// EmptyByteBuffer is the zero-length buffer.
func EmptyByteBuffer() ByteBuffer { return ByteBuffer{} }

// Len returns the buffer's byte length.
func (b ByteBuffer) Len() int { return b.data.Len() }

// Bytes flattens the buffer to a contiguous slice.
func (b ByteBuffer) Bytes() []byte { return b.data.Bytes() }

// ConcatBuffers joins two buffers.
func ConcatBuffers(a, b ByteBuffer) ByteBuffer { return ByteBuffer{data: Concat(a.data, b.data)} }

// SliceBuffer returns byte range [i,j).
func SliceBuffer(b ByteBuffer, i, j int) ByteBuffer { return ByteBuffer{data: Slice(b.data, i, j)} }

// EncodeBufferSlot/DecodeBufferSlot reuse BSQString's slot codec
// (EncodeSlot/DecodeSlot): a ByteBuffer slot
// has the identical 16-byte shape, just without the UTF-8 validity
// expectation strings carry.
func EncodeBufferSlot(slot []byte, t *Table, b ByteBuffer) { EncodeSlot(slot, t, b.data) }

func DecodeBufferSlot(slot []byte, t *Table) ByteBuffer {
	return ByteBuffer{data: DecodeSlot(slot, t)}
}
