package libewf

// CapacityPlanner is pure arithmetic: given remaining segment bytes and
// the active format, it computes how many chunks fit in a segment or a
// chunks section, and evaluates the "is this segment/section full?"
// predicates. It holds no state of its own; every method is a function
// of its arguments.
type CapacityPlanner struct{}

// ChunksPerSegmentInput bundles CalculateChunksPerSegment's inputs.
type ChunksPerSegmentInput struct {
	RemainingSegmentFileSize     uint64
	MaximumSectionAmountOfChunks uint32
	SegmentAmountOfChunks        uint32
	AmountOfChunks               uint32
	Media                        MediaValues
	Flags                        FormatFlags
}

// ChunksPerSegment implements spec.md §4.2.1: the upper bound on how
// many chunks this segment could ever hold, given the bytes remaining
// and the per-chunk section/offset-table overhead the active format
// requires.
func (CapacityPlanner) ChunksPerSegment(in ChunksPerSegmentInput) (uint32, error) {
	if in.MaximumSectionAmountOfChunks == 0 {
		return 0, ErrInvalidArgument
	}
	if err := in.Media.Validate(); err != nil {
		return 0, err
	}

	perChunkCost := int64(in.Media.ChunkSize)
	if in.Flags.EWFFormat == EWFFormatS01 {
		perChunkCost += compressedChunkOverheadEstimate
	} else {
		perChunkCost += SizeOfCRC
	}

	upperBound := int64(in.RemainingSegmentFileSize) / perChunkCost

	var requiredSections int64
	if in.Flags.UnrestrictOffsetAmount {
		requiredSections = 1
	} else {
		// Matches the original library's "required = X mod M" formula,
		// preserved intentionally; see spec.md §9 Open Question 1.
		requiredSections = upperBound % int64(in.MaximumSectionAmountOfChunks)
	}

	var overhead int64
	switch {
	case in.Flags.EWFFormat == EWFFormatS01:
		overhead = requiredSections*SizeOfSectionHeader + upperBound*SizeOfOffsetTableEntry
	case in.Flags.Format == FormatEnCase1:
		overhead = requiredSections*(SizeOfSectionHeader+SizeOfCRC) + upperBound*SizeOfOffsetTableEntry
	default:
		overhead = requiredSections*(3*SizeOfSectionHeader+2*SizeOfCRC) + 2*upperBound*SizeOfOffsetTableEntry
	}

	remaining := int64(in.RemainingSegmentFileSize) - overhead
	calculated := remaining / perChunkCost

	if in.Media.MediaSize > 0 {
		remainingChunks := int64(in.Media.AmountOfChunks) - int64(in.AmountOfChunks)
		if remainingChunks < calculated {
			calculated = remainingChunks
		}
	}

	calculated += int64(in.SegmentAmountOfChunks)
	if calculated < 0 {
		calculated = 0
	}
	if calculated > MaximumChunksPerSegment {
		calculated = MaximumChunksPerSegment
	}
	return uint32(calculated), nil
}

// ChunksPerChunksSection implements spec.md §4.2.2.
func (CapacityPlanner) ChunksPerChunksSection(
	maximumSectionAmountOfChunks uint32,
	chunksPerSegment uint32,
	sectionNumber uint32,
	unrestrictOffsetAmount bool,
) (uint32, error) {
	if sectionNumber == 0 {
		return 0, ErrInvalidArgument
	}
	remaining := int64(chunksPerSegment) - int64(sectionNumber-1)*int64(maximumSectionAmountOfChunks)
	if remaining <= 0 {
		return 0, &InvariantViolationError{Detail: "no chunks remain for this chunks section"}
	}
	if !unrestrictOffsetAmount && remaining > int64(maximumSectionAmountOfChunks) {
		remaining = int64(maximumSectionAmountOfChunks)
	}
	if remaining > MaximumSectionAmountOfChunks {
		remaining = MaximumSectionAmountOfChunks
	}
	return uint32(remaining), nil
}

// SegmentFullInput bundles SegmentFileFull's inputs.
type SegmentFullInput struct {
	Media                    MediaValues
	TotalChunksWritten       uint32
	InputWriteCount          uint64
	SegmentAmountOfChunks    uint32
	ChunksPerSegment         uint32
	RemainingSegmentFileSize uint64
	Flags                    FormatFlags
}

// SegmentFileFull implements spec.md §4.2.3.
func (CapacityPlanner) SegmentFileFull(in SegmentFullInput) bool {
	if in.Media.AmountOfChunks != 0 && in.Media.AmountOfChunks == in.TotalChunksWritten {
		return true
	}
	if in.Media.MediaSize != 0 && in.InputWriteCount >= in.Media.MediaSize {
		return true
	}
	if in.Flags.EWFFormat == EWFFormatS01 || in.Flags.Format == FormatEnCase1 {
		return in.SegmentAmountOfChunks >= in.ChunksPerSegment
	}
	return in.RemainingSegmentFileSize < uint64(in.Media.ChunkSize)+SizeOfCRC
}

// SectionFullInput bundles ChunksSectionFull's inputs.
type SectionFullInput struct {
	Media                        MediaValues
	TotalChunksWritten           uint32
	InputWriteCount              uint64
	ChunksSectionOffset          uint64
	SectionAmountOfChunks        uint32
	MaximumSectionAmountOfChunks uint32
	ChunksPerChunksSection       uint32
	SegmentFileOffset            uint64
	RemainingSegmentFileSize     uint64
	Flags                        FormatFlags
}

// ChunksSectionFull implements spec.md §4.2.4.
func (CapacityPlanner) ChunksSectionFull(in SectionFullInput) bool {
	if in.ChunksSectionOffset == 0 {
		return false
	}
	if in.Media.AmountOfChunks != 0 && in.Media.AmountOfChunks == in.TotalChunksWritten {
		return true
	}
	if in.Media.MediaSize != 0 && in.InputWriteCount >= in.Media.MediaSize {
		return true
	}
	if !in.Flags.UnrestrictOffsetAmount && in.SectionAmountOfChunks >= in.MaximumSectionAmountOfChunks {
		return true
	}
	if in.SectionAmountOfChunks > MaximumSectionAmountOfChunks {
		return true
	}
	if in.SegmentFileOffset-in.ChunksSectionOffset > MaximumOffsetTableOffset {
		return true
	}
	if in.Flags.EWFFormat == EWFFormatS01 || in.Flags.Format == FormatEnCase1 {
		return in.SectionAmountOfChunks >= in.ChunksPerChunksSection
	}
	return in.RemainingSegmentFileSize < uint64(in.Media.ChunkSize)+SizeOfCRC
}
