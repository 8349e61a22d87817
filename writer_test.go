package libewf

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriterEndToEnd(t *testing.T) {
	t.Run("streams an image across several chunks and finalizes cleanly", func(t *testing.T) {
		dir := t.TempDir()
		pool := NewFilePool()
		media := MediaValues{ChunkSize: 32, AmountOfChunks: 8, MediaSize: 8 * 32}
		flags := FormatFlags{EWFFormat: EWFFormatE01, Format: FormatEnCase6}
		headers := HeaderValues{CaseNumber: "case-1", Examiner: "tester"}

		w, err := NewWriter(pool, filepath.Join(dir, "image"), media, flags, headers)
		assert.Nil(t, err)
		assert.Nil(t, w.SetMaximumSectionAmountOfChunks(3))

		source := bytes.Repeat([]byte{0x41}, int(media.MediaSize))
		n, err := w.Write(source)
		assert.Nil(t, err)
		assert.Equal(t, len(source), n)

		assert.Nil(t, w.Close(nil))
	})

	t.Run("a short final chunk is flushed on close", func(t *testing.T) {
		dir := t.TempDir()
		pool := NewFilePool()
		media := MediaValues{ChunkSize: 32}
		flags := FormatFlags{EWFFormat: EWFFormatE01, Format: FormatEnCase6}

		w, err := NewWriter(pool, filepath.Join(dir, "image"), media, flags, HeaderValues{})
		assert.Nil(t, err)

		_, err = w.Write(bytes.Repeat([]byte{0x01}, 40))
		assert.Nil(t, err)
		assert.Equal(t, 8, w.buffer.Pending())

		assert.Nil(t, w.Close(nil))
		assert.Equal(t, 0, w.buffer.Pending())
	})

	t.Run("writes after close are rejected", func(t *testing.T) {
		dir := t.TempDir()
		pool := NewFilePool()
		media := MediaValues{ChunkSize: 32, AmountOfChunks: 1, MediaSize: 32}
		flags := FormatFlags{EWFFormat: EWFFormatE01, Format: FormatEnCase6}

		w, err := NewWriter(pool, filepath.Join(dir, "image"), media, flags, HeaderValues{})
		assert.Nil(t, err)
		_, err = w.Write(make([]byte, 32))
		assert.Nil(t, err)
		assert.Nil(t, w.Close(nil))

		_, err = w.Write([]byte{1})
		assert.ErrorIs(t, err, ErrWriteFinalized)
	})
}

func TestWriterSetMaximumSectionAmountOfChunks(t *testing.T) {
	dir := t.TempDir()
	pool := NewFilePool()
	w, err := NewWriter(pool, filepath.Join(dir, "image"), MediaValues{ChunkSize: 32}, FormatFlags{EWFFormat: EWFFormatE01}, HeaderValues{})
	assert.Nil(t, err)
	assert.ErrorIs(t, w.SetMaximumSectionAmountOfChunks(0), ErrInvalidArgument)
}
