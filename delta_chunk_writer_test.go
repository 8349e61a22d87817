package libewf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeltaChunkWriter(t *testing.T) {
	t.Run("unknown chunk index is rejected", func(t *testing.T) {
		ws, table := newTestWriteState(t, 64, 2)
		d := NewDeltaChunkWriter(ws, table)
		_, err := d.WriteDeltaChunk(0, make([]byte, 64), false, 0, false)
		assert.ErrorIs(t, err, ErrChunkNotFound)
	})

	t.Run("a compressed replacement is rejected outright", func(t *testing.T) {
		ws, table := newTestWriteState(t, 64, 2)
		n := NewNewChunkWriter(ws, table)
		payload := make([]byte, 64+int(SizeOfCRC))
		_, err := n.WriteNewChunk(stubHeaderBuilder{}, 0, payload, 64, false, 0, false)
		assert.Nil(t, err)

		d := NewDeltaChunkWriter(ws, table)
		_, err = d.WriteDeltaChunk(0, make([]byte, 32), true, 1234, true)
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.False(t, ws.OffsetTable[0].IsDelta)
	})

	t.Run("redirects a primary-segment chunk into a fresh delta segment", func(t *testing.T) {
		ws, table := newTestWriteState(t, 64, 2)
		n := NewNewChunkWriter(ws, table)
		payload := make([]byte, 64+int(SizeOfCRC))
		_, err := n.WriteNewChunk(stubHeaderBuilder{}, 0, payload, 64, false, 0, false)
		assert.Nil(t, err)
		assert.False(t, ws.OffsetTable[0].IsDelta)

		d := NewDeltaChunkWriter(ws, table)
		replacement := make([]byte, 64)
		written, err := d.WriteDeltaChunk(0, replacement, false, 1234, true)
		assert.Nil(t, err)
		assert.Greater(t, written, int64(0))
		assert.True(t, ws.OffsetTable[0].IsDelta)
	})

	t.Run("a second overwrite targets the same delta segment in place", func(t *testing.T) {
		ws, table := newTestWriteState(t, 64, 2)
		n := NewNewChunkWriter(ws, table)
		payload := make([]byte, 64+int(SizeOfCRC))
		_, err := n.WriteNewChunk(stubHeaderBuilder{}, 0, payload, 64, false, 0, false)
		assert.Nil(t, err)

		d := NewDeltaChunkWriter(ws, table)
		_, err = d.WriteDeltaChunk(0, make([]byte, 64), false, 1, true)
		assert.Nil(t, err)
		before := ws.OffsetTable[0]

		_, err = d.WriteDeltaChunk(0, make([]byte, 64), false, 2, true)
		assert.Nil(t, err)
		after := ws.OffsetTable[0]
		assert.Equal(t, before.SegmentNumber, after.SegmentNumber)
		assert.Equal(t, before.Offset, after.Offset)
	})
}
