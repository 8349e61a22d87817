// Package libewf writes Expert Witness Compression Format (EWF) disk
// images: the segmented, chunked, CRC-protected container produced by
// forensic disk acquisition tools.
//
// This package implements the write path only: chunking incoming bytes,
// compressing and CRC'ing them, packing them into chunks sections, and
// laying the sections out across a chain of segment files. Reading,
// verification, and compression-algorithm selection heuristics are out
// of scope.
package libewf

import "encoding/binary"

// Format identifies the EWF dialect a writer targets. Dialects differ in
// which sections they emit, whether a chunks section carries a redundant
// table2, and in their default compression policy.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatEnCase1
	FormatEnCase2
	FormatEnCase3
	FormatEnCase4
	FormatEnCase5
	FormatEnCase6
	FormatEWFX
)

func (f Format) String() string {
	switch f {
	case FormatEnCase1:
		return "encase1"
	case FormatEnCase2:
		return "encase2"
	case FormatEnCase3:
		return "encase3"
	case FormatEnCase4:
		return "encase4"
	case FormatEnCase5:
		return "encase5"
	case FormatEnCase6:
		return "encase6"
	case FormatEWFX:
		return "ewfx"
	default:
		return "unknown"
	}
}

// EWFFormat is the coarse on-disk variant: EWF-S01 (compressed-only,
// single offset table) versus the standard E01 layout (sectors/table/
// table2 triad, optional compression).
type EWFFormat uint8

const (
	EWFFormatUnknown EWFFormat = iota
	EWFFormatS01
	EWFFormatE01
)

func (f EWFFormat) String() string {
	switch f {
	case EWFFormatS01:
		return "S01"
	case EWFFormatE01:
		return "E01"
	default:
		return "unknown"
	}
}

// CompressionLevel selects how hard ChunkProcessor tries to compress a
// chunk before falling back to storing it raw.
type CompressionLevel uint8

const (
	CompressionNone CompressionLevel = iota
	CompressionDefault
	CompressionBest
)

// On-disk geometry constants shared by the planner and the segment file
// writer. These mirror the EWF section/table layout recovered from the
// reference reader (see other_examples' ewfgo header structs) and the
// original libewf write path.
const (
	// SizeOfCRC is the serialized size of one trailing CRC32.
	SizeOfCRC = 4

	// SizeOfSectionHeader is the serialized size of one section descriptor
	// (16-byte type name + 8-byte next-offset + 8-byte size + 40 bytes
	// padding + 4-byte CRC).
	SizeOfSectionHeader = 76

	// SizeOfOffsetTableEntry is the serialized size of one table/table2
	// offset entry: a 32-bit little-endian offset with the high bit used
	// as a compression flag.
	SizeOfOffsetTableEntry = 4

	// SizeOfTableHeader is the serialized size of a table/table2 section's
	// fixed header (entry count + 16 bytes padding + CRC), prepended to
	// the offset entries themselves.
	SizeOfTableHeader = 24

	// compressedChunkOverheadEstimate is the empirical average number of
	// bytes EWF-S01's always-on compression adds per chunk; used only for
	// the upper-bound chunk estimate in CapacityPlanner.
	compressedChunkOverheadEstimate = 16

	// DefaultMaximumSectionAmountOfChunks is the standard EWF offset
	// table capacity (16 375 32-bit offsets fit a 64KiB-ish table
	// section).
	DefaultMaximumSectionAmountOfChunks = 16375

	// DefaultSegmentFileSize is the library's default target segment
	// size (640 MiB), matching common forensic tool defaults.
	DefaultSegmentFileSize = 640 * 1024 * 1024

	// MaximumSegmentFileSize is the hard ceiling imposed by the 32-bit
	// section offset fields: a segment file's size may never exceed
	// this, and the unsigned section-offset arithmetic depends on it.
	MaximumSegmentFileSize = 1<<31 - 1

	// DefaultDeltaSegmentFileSize is effectively "unbounded" for delta
	// segments: 2^63-1.
	DefaultDeltaSegmentFileSize = 1<<63 - 1

	// MaximumOffsetTableOffset bounds a 32-bit offset-table entry's
	// payload (bit 31 is reserved for the compression flag).
	MaximumOffsetTableOffset = 1<<31 - 1

	// MaximumSectionAmountOfChunks bounds section_amount_of_chunks so it
	// always fits a signed 32-bit count.
	MaximumSectionAmountOfChunks = 1<<31 - 1

	// MaximumChunksPerSegment bounds the planner's chunks-per-segment
	// output to an unsigned 32-bit count.
	MaximumChunksPerSegment = 1<<32 - 1
)

// Section type names as they appear on disk, NUL-padded to 16 bytes.
const (
	sectionTypeHeader  = "header"
	sectionTypeHeader2 = "header2"
	sectionTypeVolume  = "volume"
	sectionTypeDisk    = "disk"
	sectionTypeData    = "data"
	sectionTypeSectors = "sectors"
	sectionTypeTable   = "table"
	sectionTypeTable2  = "table2"
	sectionTypeNext    = "next"
	sectionTypeDone    = "done"
	sectionTypeHash    = "hash"
	sectionTypeDelta   = "delta_chunk"
)

// dataSectionName returns the on-disk section name a segment's
// geometry block is wrapped in: "volume" for the EnCase1 dialect,
// "data" for every later EnCase/EWFX dialect.
func dataSectionName(flags FormatFlags) string {
	if flags.Format == FormatEnCase1 {
		return sectionTypeVolume
	}
	return sectionTypeData
}

// offsetTableCompressedFlag is OR'd into a table entry's high bit to mark
// the corresponding chunk as compressed.
const offsetTableCompressedFlag = uint32(1) << 31

func putOffsetEntry(buf []byte, offset uint32, compressed bool) {
	v := offset
	if compressed {
		v |= offsetTableCompressedFlag
	}
	binary.LittleEndian.PutUint32(buf, v)
}

func sectionNameBytes(name string) [16]byte {
	var b [16]byte
	copy(b[:], name)
	return b
}
