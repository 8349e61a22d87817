package libewf

// WriteState is the mutable bookkeeping of one write session: counters,
// the current segment/section offsets, remaining budgets, and the
// scratch buffers writers share. It is created at handle-open time,
// owns all bookkeeping through Finalize, and is destroyed at handle
// close. It is not safe for concurrent use (spec.md §5).
type WriteState struct {
	Media MediaValues
	Flags FormatFlags

	// SegmentFileSize is the configured target for new primary segment
	// files.
	SegmentFileSize uint64
	// DeltaSegmentFileSize is the configured target for delta segment
	// files.
	DeltaSegmentFileSize uint64
	// MaximumSectionAmountOfChunks is the offset-table capacity a single
	// chunks section may hold (format table capacity, typically 16375).
	MaximumSectionAmountOfChunks uint32

	// RemainingSegmentFileSize tracks bytes left in the segment
	// currently open, decremented both as bytes are written and as
	// future footer/offset reservations are made.
	RemainingSegmentFileSize uint64

	ChunksPerSegment       uint32
	ChunksPerChunksSection uint32

	AmountOfChunks          uint32
	SegmentAmountOfChunks   uint32
	SectionAmountOfChunks   uint32
	ChunksSectionNumber     uint32
	InputWriteCount         uint64
	WriteCount              uint64
	ChunksSectionWriteCount uint64

	// ChunksSectionOffset is the file offset where the open chunks
	// section begins; 0 means no section is currently open.
	ChunksSectionOffset uint64

	CreateChunksSection bool
	WriteFinalized      bool

	// DataSection caches the data/volume section bytes so every segment
	// of one image re-emits identical content.
	DataSection []byte

	// HeaderSection caches the rendered "header" section bytes for the
	// same reason: every segment's file header is followed by the same
	// evidence metadata, built once at first segment open.
	HeaderSection []byte

	// OffsetTable records, per chunk index, the absolute segment/offset
	// a committed new-chunk write lives at. A zero-valued entry means
	// "not yet written".
	OffsetTable []ChunkLocation

	Cache *ChunkCache

	CurrentSegmentNumber uint32
	HeaderSectionsBuilt  bool

	planner CapacityPlanner
}

// ChunkLocation records where one chunk's current, authoritative copy
// lives: which segment file, and its absolute file offset within that
// segment (the chunk's payload for a primary segment, the delta_chunk
// section for a delta segment).
type ChunkLocation struct {
	SegmentNumber uint32
	IsDelta       bool
	Offset        uint64
	Set           bool
}

// NewWriteState returns a WriteState configured with the library's
// documented defaults (spec.md §4.5): a 640MiB segment target, a
// 2^63-1 delta segment target, and the format's standard 16375-entry
// offset table capacity.
func NewWriteState(media MediaValues, flags FormatFlags) (*WriteState, error) {
	if err := media.Validate(); err != nil {
		return nil, err
	}
	ws := &WriteState{
		Media:                        media,
		Flags:                        flags,
		SegmentFileSize:              DefaultSegmentFileSize,
		DeltaSegmentFileSize:         DefaultDeltaSegmentFileSize,
		MaximumSectionAmountOfChunks: DefaultMaximumSectionAmountOfChunks,
		Cache:                        NewChunkCache(media.ChunkSize),
	}
	if media.AmountOfChunks > 0 {
		ws.OffsetTable = make([]ChunkLocation, media.AmountOfChunks)
	}
	return ws, nil
}

// SetSegmentFileSize validates and applies a new target segment size.
func (ws *WriteState) SetSegmentFileSize(size uint64) error {
	if size == 0 || size > MaximumSegmentFileSize {
		return ErrInvalidArgument
	}
	ws.SegmentFileSize = size
	return nil
}

// SetDeltaSegmentFileSize validates and applies a new target delta
// segment size.
func (ws *WriteState) SetDeltaSegmentFileSize(size uint64) error {
	if size == 0 {
		return ErrInvalidArgument
	}
	ws.DeltaSegmentFileSize = size
	return nil
}

// SetMaximumSectionAmountOfChunks validates and applies a new offset
// table capacity.
func (ws *WriteState) SetMaximumSectionAmountOfChunks(n uint32) error {
	if n == 0 {
		return ErrInvalidArgument
	}
	ws.MaximumSectionAmountOfChunks = n
	return nil
}

// SetUnrestrictOffsetAmount toggles whether a chunks section may exceed
// MaximumSectionAmountOfChunks.
func (ws *WriteState) SetUnrestrictOffsetAmount(v bool) {
	ws.Flags.UnrestrictOffsetAmount = v
}

// SetCompressionLevel changes the compression effort applied to
// subsequently processed chunks.
func (ws *WriteState) SetCompressionLevel(level CompressionLevel) {
	ws.Flags.CompressionLevel = level
}

// SetCompressEmptyBlock toggles empty-block promotion to DEFAULT
// compression.
func (ws *WriteState) SetCompressEmptyBlock(v bool) {
	ws.Flags.CompressEmptyBlock = v
}

// SetFormat changes the active EnCase/EWFX dialect.
func (ws *WriteState) SetFormat(format Format) {
	ws.Flags.Format = format
}

// ensureOffsetTableCapacity grows OffsetTable to at least n entries,
// zero-initializing the new tail, matching spec.md §4.3 step 2.
func (ws *WriteState) ensureOffsetTableCapacity(n uint32) {
	if uint32(len(ws.OffsetTable)) >= n {
		return
	}
	grown := make([]ChunkLocation, n)
	copy(grown, ws.OffsetTable)
	ws.OffsetTable = grown
}

// Release frees the cached data-section and chunk-cache buffers. It is
// the Go stand-in for the source library's destroy call.
func (ws *WriteState) Release() {
	ws.DataSection = nil
	ws.HeaderSection = nil
	ws.Cache = nil
	ws.OffsetTable = nil
}
