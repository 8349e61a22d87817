package libewf

// ChunkBuffer accumulates arbitrary-sized caller writes into
// fixed-size, chunk-sized pieces. Callers of the write path work in
// terms of media chunks; callers of the public Writer API work in
// terms of an ordinary byte stream, so this buffering layer sits
// between them (spec.md §9 Open Question 3).
type ChunkBuffer struct {
	chunkSize uint32
	buf       []byte
	chunkIdx  uint32
}

// NewChunkBuffer returns an empty buffer for the given media chunk
// size.
func NewChunkBuffer(chunkSize uint32) *ChunkBuffer {
	return &ChunkBuffer{chunkSize: chunkSize}
}

// Write appends p to the buffer and returns every now-complete chunk it
// produced, in order, each exactly chunkSize bytes. Any leftover tail
// shorter than a full chunk stays buffered for the next call or for
// Flush.
func (b *ChunkBuffer) Write(p []byte) [][]byte {
	b.buf = append(b.buf, p...)
	var chunks [][]byte
	for uint32(len(b.buf)) >= b.chunkSize {
		chunk := make([]byte, b.chunkSize)
		copy(chunk, b.buf[:b.chunkSize])
		chunks = append(chunks, chunk)
		b.buf = b.buf[b.chunkSize:]
		b.chunkIdx++
	}
	return chunks
}

// Flush returns whatever partial chunk remains buffered (possibly
// empty) and resets the buffer. Callers write this as the image's
// final, short chunk.
func (b *ChunkBuffer) Flush() []byte {
	tail := b.buf
	b.buf = nil
	return tail
}

// NextChunkIndex is the logical index the next chunk produced by Write
// or Flush will occupy.
func (b *ChunkBuffer) NextChunkIndex() uint32 {
	return b.chunkIdx
}

// Pending reports how many bytes are currently buffered awaiting a
// full chunk.
func (b *ChunkBuffer) Pending() int {
	return len(b.buf)
}
