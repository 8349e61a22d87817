package libewf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunksPerSegment(t *testing.T) {
	t.Run("unrestricted offset table uses a single section", func(t *testing.T) {
		n, err := CapacityPlanner{}.ChunksPerSegment(ChunksPerSegmentInput{
			RemainingSegmentFileSize:     640 * 1024 * 1024,
			MaximumSectionAmountOfChunks: DefaultMaximumSectionAmountOfChunks,
			Media:                        MediaValues{ChunkSize: 32 * 1024},
			Flags:                        FormatFlags{EWFFormat: EWFFormatE01, UnrestrictOffsetAmount: true},
		})
		assert.Nil(t, err)
		assert.Greater(t, n, uint32(0))
	})

	t.Run("zero maximum section amount is rejected", func(t *testing.T) {
		_, err := CapacityPlanner{}.ChunksPerSegment(ChunksPerSegmentInput{
			Media: MediaValues{ChunkSize: 32 * 1024},
			Flags: FormatFlags{EWFFormat: EWFFormatE01},
		})
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("result never exceeds the 32-bit ceiling", func(t *testing.T) {
		n, err := CapacityPlanner{}.ChunksPerSegment(ChunksPerSegmentInput{
			RemainingSegmentFileSize:     MaximumSegmentFileSize,
			MaximumSectionAmountOfChunks: DefaultMaximumSectionAmountOfChunks,
			Media:                        MediaValues{ChunkSize: 1},
			Flags:                        FormatFlags{EWFFormat: EWFFormatE01, UnrestrictOffsetAmount: true},
		})
		assert.Nil(t, err)
		assert.LessOrEqual(t, uint64(n), uint64(MaximumChunksPerSegment))
	})

	t.Run("result is clamped by remaining media chunks", func(t *testing.T) {
		n, err := CapacityPlanner{}.ChunksPerSegment(ChunksPerSegmentInput{
			RemainingSegmentFileSize:     640 * 1024 * 1024,
			MaximumSectionAmountOfChunks: DefaultMaximumSectionAmountOfChunks,
			AmountOfChunks:               0,
			Media:                        MediaValues{ChunkSize: 32 * 1024, AmountOfChunks: 5, MediaSize: 5 * 32 * 1024},
			Flags:                        FormatFlags{EWFFormat: EWFFormatE01, UnrestrictOffsetAmount: true},
		})
		assert.Nil(t, err)
		assert.LessOrEqual(t, n, uint32(5))
	})
}

func TestChunksPerChunksSection(t *testing.T) {
	t.Run("section number must be at least one", func(t *testing.T) {
		_, err := CapacityPlanner{}.ChunksPerChunksSection(DefaultMaximumSectionAmountOfChunks, 100, 0, false)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("restricted sections are capped at the table capacity", func(t *testing.T) {
		n, err := CapacityPlanner{}.ChunksPerChunksSection(100, 1000, 1, false)
		assert.Nil(t, err)
		assert.Equal(t, uint32(100), n)
	})

	t.Run("later sections see the remaining budget", func(t *testing.T) {
		n, err := CapacityPlanner{}.ChunksPerChunksSection(100, 150, 2, false)
		assert.Nil(t, err)
		assert.Equal(t, uint32(50), n)
	})

	t.Run("exhausted budget is an invariant violation", func(t *testing.T) {
		_, err := CapacityPlanner{}.ChunksPerChunksSection(100, 100, 2, false)
		var invariantErr *InvariantViolationError
		assert.ErrorAs(t, err, &invariantErr)
	})
}

func TestSegmentFileFull(t *testing.T) {
	t.Run("exact media chunk count closes the segment", func(t *testing.T) {
		full := CapacityPlanner{}.SegmentFileFull(SegmentFullInput{
			Media:              MediaValues{ChunkSize: 512, AmountOfChunks: 10},
			TotalChunksWritten: 10,
		})
		assert.True(t, full)
	})

	t.Run("E01 triad format is full when no budget remains for another chunk", func(t *testing.T) {
		full := CapacityPlanner{}.SegmentFileFull(SegmentFullInput{
			Media:                 MediaValues{ChunkSize: 512},
			SegmentAmountOfChunks: 100,
			ChunksPerSegment:      100,
			Flags:                 FormatFlags{EWFFormat: EWFFormatE01},
		})
		assert.True(t, full)
	})

	t.Run("not yet full", func(t *testing.T) {
		full := CapacityPlanner{}.SegmentFileFull(SegmentFullInput{
			Media:                    MediaValues{ChunkSize: 512},
			RemainingSegmentFileSize: 1 << 20,
			Flags:                    FormatFlags{EWFFormat: EWFFormatUnknown},
		})
		assert.False(t, full)
	})
}

func TestChunksSectionFull(t *testing.T) {
	t.Run("no open section is never full", func(t *testing.T) {
		full := CapacityPlanner{}.ChunksSectionFull(SectionFullInput{})
		assert.False(t, full)
	})

	t.Run("offset-table overflow forces a close", func(t *testing.T) {
		full := CapacityPlanner{}.ChunksSectionFull(SectionFullInput{
			ChunksSectionOffset:          1,
			MaximumSectionAmountOfChunks: DefaultMaximumSectionAmountOfChunks,
			SegmentFileOffset:            uint64(MaximumOffsetTableOffset) + 2,
		})
		assert.True(t, full)
	})

	t.Run("restricted section amount caps at maximum", func(t *testing.T) {
		full := CapacityPlanner{}.ChunksSectionFull(SectionFullInput{
			ChunksSectionOffset:          1,
			SectionAmountOfChunks:        DefaultMaximumSectionAmountOfChunks,
			MaximumSectionAmountOfChunks: DefaultMaximumSectionAmountOfChunks,
		})
		assert.True(t, full)
	})
}
