package libewf

// FormatFlags is the read-only set of format decisions a write session
// is configured with.
type FormatFlags struct {
	// Format selects the EnCase/EWFX dialect, which determines how many
	// sections a chunks section emits (one table for S01/EnCase1, a
	// sectors/table/table2 triad otherwise).
	Format Format

	// EWFFormat selects the coarse on-disk variant: S01 (compressed
	// only) or E01 (standard).
	EWFFormat EWFFormat

	// CompressionLevel is the target compression effort. NONE may still
	// be promoted to DEFAULT per-chunk by CompressEmptyBlock.
	CompressionLevel CompressionLevel

	// CompressEmptyBlock, when set alongside CompressionLevel == NONE,
	// causes an all-identical-bytes chunk to be compressed anyway.
	CompressEmptyBlock bool

	// UnrestrictOffsetAmount, when set, allows a single chunks section
	// to exceed MaximumSectionAmountOfChunks.
	UnrestrictOffsetAmount bool
}

// usesTable2 reports whether the format emits a redundant table2
// section alongside sectors/table.
func (f FormatFlags) usesTable2() bool {
	return f.EWFFormat != EWFFormatS01 && f.Format != FormatEnCase1
}

// chunksSectionCount is the number of logical sections one "chunks
// block" is made of: one (S01 and EnCase1, table only) or three
// (sectors + table + table2).
func (f FormatFlags) chunksSectionCount() int {
	if f.EWFFormat == EWFFormatS01 || f.Format == FormatEnCase1 {
		return 1
	}
	return 3
}
