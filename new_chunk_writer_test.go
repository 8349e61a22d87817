package libewf

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubHeaderBuilder struct{}

func (stubHeaderBuilder) BuildHeader(FormatFlags) ([]byte, error) {
	return []byte("stub-header"), nil
}

func newTestWriteState(t *testing.T, chunkSize uint32, amountOfChunks uint32) (*WriteState, *SegmentTable) {
	t.Helper()
	media := MediaValues{ChunkSize: chunkSize, AmountOfChunks: amountOfChunks, MediaSize: uint64(amountOfChunks) * uint64(chunkSize)}
	flags := FormatFlags{EWFFormat: EWFFormatE01, Format: FormatEnCase6}
	ws, err := NewWriteState(media, flags)
	assert.Nil(t, err)

	pool := NewFilePool()
	table := NewSegmentTable(pool, filepath.Join(t.TempDir(), "case"))
	return ws, table
}

func TestNewChunkWriterWriteNewChunk(t *testing.T) {
	t.Run("writes chunks across a section boundary", func(t *testing.T) {
		ws, table := newTestWriteState(t, 64, 4)
		w := NewNewChunkWriter(ws, table)
		assert.Nil(t, ws.SetMaximumSectionAmountOfChunks(2))

		for i := uint32(0); i < 4; i++ {
			payload := make([]byte, 64+int(SizeOfCRC))
			n, err := w.WriteNewChunk(stubHeaderBuilder{}, i, payload, 64, false, 0, false)
			assert.Nil(t, err)
			assert.Greater(t, n, int64(0))
		}
		assert.Equal(t, uint32(4), ws.AmountOfChunks)
		for i := uint32(0); i < 4; i++ {
			assert.True(t, ws.OffsetTable[i].Set)
		}

		assert.Nil(t, w.Finalize(nil))
		assert.True(t, ws.WriteFinalized)
	})

	t.Run("rejects a second write to the same chunk index", func(t *testing.T) {
		ws, table := newTestWriteState(t, 64, 2)
		w := NewNewChunkWriter(ws, table)
		payload := make([]byte, 64+int(SizeOfCRC))
		_, err := w.WriteNewChunk(stubHeaderBuilder{}, 0, payload, 64, false, 0, false)
		assert.Nil(t, err)
		_, err = w.WriteNewChunk(stubHeaderBuilder{}, 0, payload, 64, false, 0, false)
		assert.ErrorIs(t, err, ErrValueAlreadySet)
	})

	t.Run("rejects writes after finalize", func(t *testing.T) {
		ws, table := newTestWriteState(t, 64, 1)
		w := NewNewChunkWriter(ws, table)
		payload := make([]byte, 64+int(SizeOfCRC))
		_, err := w.WriteNewChunk(stubHeaderBuilder{}, 0, payload, 64, false, 0, false)
		assert.Nil(t, err)
		assert.Nil(t, w.Finalize(nil))

		_, err = w.WriteNewChunk(stubHeaderBuilder{}, 1, payload, 64, false, 0, false)
		assert.ErrorIs(t, err, ErrWriteFinalized)
	})
}
