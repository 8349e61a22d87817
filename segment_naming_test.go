package libewf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegmentFileExtension(t *testing.T) {
	t.Run("two-digit range", func(t *testing.T) {
		ext, err := segmentFileExtension(1, false)
		assert.Nil(t, err)
		assert.Equal(t, "E01", ext)

		ext, err = segmentFileExtension(99, false)
		assert.Nil(t, err)
		assert.Equal(t, "E99", ext)
	})

	t.Run("delta segments use the d-prefixed scheme", func(t *testing.T) {
		ext, err := segmentFileExtension(1, true)
		assert.Nil(t, err)
		assert.Equal(t, "d01", ext)
	})

	t.Run("extended letter range past .E99", func(t *testing.T) {
		ext, err := segmentFileExtension(100, false)
		assert.Nil(t, err)
		assert.Equal(t, "EAA", ext)
	})

	t.Run("segment zero is invalid", func(t *testing.T) {
		_, err := segmentFileExtension(0, false)
		assert.ErrorIs(t, err, ErrTooManySegments)
	})

	t.Run("exhausted naming scheme", func(t *testing.T) {
		_, err := segmentFileExtension(maximumAmountOfSegments+1, false)
		assert.ErrorIs(t, err, ErrTooManySegments)
	})
}

func TestSegmentFileName(t *testing.T) {
	name, err := segmentFileName("/evidence/case001", 1, false)
	assert.Nil(t, err)
	assert.Equal(t, "/evidence/case001.E01", name)
}
