package libewf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkBuffer(t *testing.T) {
	t.Run("accumulates exact multiples into full chunks", func(t *testing.T) {
		b := NewChunkBuffer(4)
		chunks := b.Write([]byte{1, 2, 3, 4, 5, 6, 7, 8})
		assert.Len(t, chunks, 2)
		assert.Equal(t, []byte{1, 2, 3, 4}, chunks[0])
		assert.Equal(t, []byte{5, 6, 7, 8}, chunks[1])
		assert.Equal(t, 0, b.Pending())
		assert.Equal(t, uint32(2), b.NextChunkIndex())
	})

	t.Run("holds a short tail until flushed", func(t *testing.T) {
		b := NewChunkBuffer(4)
		chunks := b.Write([]byte{1, 2, 3, 4, 5})
		assert.Len(t, chunks, 1)
		assert.Equal(t, 1, b.Pending())
		tail := b.Flush()
		assert.Equal(t, []byte{5}, tail)
		assert.Equal(t, 0, b.Pending())
	})

	t.Run("writes spanning multiple calls still assemble correctly", func(t *testing.T) {
		b := NewChunkBuffer(4)
		assert.Empty(t, b.Write([]byte{1, 2}))
		chunks := b.Write([]byte{3, 4, 5})
		assert.Len(t, chunks, 1)
		assert.Equal(t, []byte{1, 2, 3, 4}, chunks[0])
		assert.Equal(t, []byte{5}, b.Flush())
	})
}
