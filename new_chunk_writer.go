package libewf

import "encoding/binary"

// NewChunkWriter drives the state machine that writes a stream of
// brand-new chunks: opening segments, opening chunks sections, writing
// chunk payloads, correcting chunks sections on close, and closing
// segments, per spec.md §4.3.
type NewChunkWriter struct {
	state   *WriteState
	table   *SegmentTable
	segment *SegmentFile
}

// NewNewChunkWriter returns a writer bound to the given write state and
// segment table. The caller retains ownership of both.
func NewNewChunkWriter(state *WriteState, table *SegmentTable) *NewChunkWriter {
	return &NewChunkWriter{state: state, table: table}
}

// HeaderBuilder supplies the header-section bytes a freshly opened
// segment needs. It is injected rather than hard-coded so callers can
// vary evidence metadata (case number, examiner, ...) without this
// package needing to know about it.
type HeaderBuilder interface {
	BuildHeader(flags FormatFlags) ([]byte, error)
}

// WriteNewChunk implements spec.md §4.3's write_new_chunk operation.
// chunkIndex is the chunk's logical position in the image; payload,
// isCompressed, crc and writeCRCSeparately are ChunkProcessor's output
// for this chunk; rawChunkDataSize is the number of source-media bytes
// the chunk represents (normally Media.ChunkSize, except for a final
// partial chunk).
func (w *NewChunkWriter) WriteNewChunk(
	headers HeaderBuilder,
	chunkIndex uint32,
	payload []byte,
	rawChunkDataSize uint32,
	isCompressed bool,
	crc uint32,
	writeCRCSeparately bool,
) (int64, error) {
	ws := w.state
	if ws.WriteFinalized {
		return 0, ErrWriteFinalized
	}
	if int(chunkIndex) < len(ws.OffsetTable) && ws.OffsetTable[chunkIndex].Set {
		return 0, ErrValueAlreadySet
	}
	if ws.Media.MediaSize != 0 && ws.InputWriteCount >= ws.Media.MediaSize {
		return 0, nil
	}
	if ws.Media.AmountOfChunks != 0 && ws.AmountOfChunks >= ws.Media.AmountOfChunks {
		return 0, nil
	}

	if ws.Media.AmountOfChunks > 0 {
		ws.ensureOffsetTableCapacity(ws.Media.AmountOfChunks)
	} else if uint32(len(ws.OffsetTable)) <= chunkIndex {
		ws.ensureOffsetTableCapacity(chunkIndex + 1)
	}

	var written int64

	if w.segment == nil {
		n, err := w.openSegment(headers)
		if err != nil {
			return written, err
		}
		written += n
	}

	if ws.CreateChunksSection {
		n, err := w.openChunksSection()
		if err != nil {
			return written, err
		}
		written += n
	}

	onDisk := payload
	if writeCRCSeparately {
		onDisk = make([]byte, len(payload)+int(SizeOfCRC))
		copy(onDisk, payload)
		binary.LittleEndian.PutUint32(onDisk[len(payload):], crc)
	}

	chunkOffset := w.segment.Offset
	n, err := w.segment.WriteChunksData(onDisk, isCompressed)
	if err != nil {
		return written, err
	}
	written += n

	payloadLen := uint64(len(onDisk))
	ws.InputWriteCount += uint64(rawChunkDataSize)
	ws.WriteCount += payloadLen
	ws.ChunksSectionWriteCount += payloadLen
	ws.SegmentAmountOfChunks++
	ws.SectionAmountOfChunks++
	ws.AmountOfChunks++
	ws.OffsetTable[chunkIndex] = ChunkLocation{
		SegmentNumber: ws.CurrentSegmentNumber,
		Offset:        chunkOffset,
		Set:           true,
	}
	deductRemaining(ws, uint64(payloadLen))

	// Reserve slots for this chunk's eventual table/table2 entries.
	tableReserve := uint64(2 * SizeOfOffsetTableEntry)
	deductRemaining(ws, tableReserve)

	if w.sectionFull() {
		n, err := w.closeChunksSection()
		if err != nil {
			return written, err
		}
		written += n
	}

	if w.segmentFull() && !inputExhausted(ws) {
		n, err := w.closeSegment(false)
		if err != nil {
			return written, err
		}
		written += n
	}

	return written, nil
}

// inputExhausted reports whether every known bound on the total input
// (media size, chunk count) has been reached. An unbounded (streaming)
// session, where neither bound is known, is never exhausted.
func inputExhausted(ws *WriteState) bool {
	if ws.Media.MediaSize == 0 && ws.Media.AmountOfChunks == 0 {
		return false
	}
	if ws.Media.MediaSize != 0 && ws.InputWriteCount < ws.Media.MediaSize {
		return false
	}
	if ws.Media.AmountOfChunks != 0 && ws.AmountOfChunks < ws.Media.AmountOfChunks {
		return false
	}
	return true
}

func deductRemaining(ws *WriteState, n uint64) {
	if n > ws.RemainingSegmentFileSize {
		ws.RemainingSegmentFileSize = 0
		return
	}
	ws.RemainingSegmentFileSize -= n
}

func (w *NewChunkWriter) openSegment(headers HeaderBuilder) (int64, error) {
	ws := w.state
	if !ws.HeaderSectionsBuilt {
		h, err := headers.BuildHeader(ws.Flags)
		if err != nil {
			return 0, err
		}
		ws.HeaderSection = h
		ws.DataSection = buildDataSection(ws.Media)
		ws.HeaderSectionsBuilt = true
	}

	ws.CurrentSegmentNumber++
	sf, err := w.table.CreateSegment(ws.CurrentSegmentNumber)
	if err != nil {
		return 0, err
	}
	w.segment = sf

	ws.RemainingSegmentFileSize = ws.SegmentFileSize - SizeOfSectionHeader

	n, err := sf.WriteStart(ws.HeaderSection, ws.DataSection, dataSectionName(ws.Flags))
	if err != nil {
		return 0, err
	}
	deductRemaining(ws, uint64(n))

	chunksPerSegment, err := CapacityPlanner{}.ChunksPerSegment(ChunksPerSegmentInput{
		RemainingSegmentFileSize:     ws.RemainingSegmentFileSize,
		MaximumSectionAmountOfChunks: ws.MaximumSectionAmountOfChunks,
		SegmentAmountOfChunks:        0,
		AmountOfChunks:               ws.AmountOfChunks,
		Media:                        ws.Media,
		Flags:                        ws.Flags,
	})
	if err != nil {
		return n, err
	}
	ws.ChunksPerSegment = chunksPerSegment
	ws.SegmentAmountOfChunks = 0
	ws.ChunksSectionNumber = 0
	ws.CreateChunksSection = true
	return n, nil
}

func (w *NewChunkWriter) openChunksSection() (int64, error) {
	ws := w.state
	ws.SectionAmountOfChunks = 0
	ws.ChunksSectionWriteCount = 0

	reserve := uint64(3*SizeOfSectionHeader + 2*SizeOfCRC)
	switch {
	case ws.Flags.EWFFormat == EWFFormatS01:
		reserve = SizeOfSectionHeader
	case ws.Flags.Format == FormatEnCase1:
		reserve = SizeOfSectionHeader + SizeOfCRC
	}
	deductRemaining(ws, reserve)

	ws.ChunksSectionNumber++

	chunksPerSegment, err := CapacityPlanner{}.ChunksPerSegment(ChunksPerSegmentInput{
		RemainingSegmentFileSize:     ws.RemainingSegmentFileSize,
		MaximumSectionAmountOfChunks: ws.MaximumSectionAmountOfChunks,
		SegmentAmountOfChunks:        ws.SegmentAmountOfChunks,
		AmountOfChunks:               ws.AmountOfChunks,
		Media:                        ws.Media,
		Flags:                        ws.Flags,
	})
	if err != nil {
		return 0, err
	}
	ws.ChunksPerSegment = chunksPerSegment

	chunksPerSection, err := CapacityPlanner{}.ChunksPerChunksSection(
		ws.MaximumSectionAmountOfChunks,
		ws.ChunksPerSegment,
		ws.ChunksSectionNumber,
		ws.Flags.UnrestrictOffsetAmount,
	)
	if err != nil {
		return 0, err
	}
	ws.ChunksPerChunksSection = chunksPerSection

	n, err := w.segment.WriteChunksSectionStart()
	if err != nil {
		return 0, err
	}
	deductRemaining(ws, uint64(n))
	ws.ChunksSectionOffset = w.segment.chunksSectionStart
	ws.CreateChunksSection = false
	return n, nil
}

func (w *NewChunkWriter) closeChunksSection() (int64, error) {
	ws := w.state
	n, err := w.segment.WriteChunksCorrection(ws.Flags.usesTable2())
	if err != nil {
		return 0, err
	}
	deductRemaining(ws, uint64(n))
	ws.CreateChunksSection = true
	ws.ChunksSectionOffset = 0
	return n, nil
}

func (w *NewChunkWriter) closeSegment(lastSegment bool) (int64, error) {
	ws := w.state
	n, err := w.segment.WriteClose(lastSegment)
	if err != nil {
		return 0, err
	}
	deductRemaining(ws, uint64(n))
	if !lastSegment {
		w.segment = nil
	}
	return n, nil
}

func (w *NewChunkWriter) sectionFull() bool {
	ws := w.state
	return CapacityPlanner{}.ChunksSectionFull(SectionFullInput{
		Media:                        ws.Media,
		TotalChunksWritten:           ws.AmountOfChunks,
		InputWriteCount:              ws.InputWriteCount,
		ChunksSectionOffset:          ws.ChunksSectionOffset,
		SectionAmountOfChunks:        ws.SectionAmountOfChunks,
		MaximumSectionAmountOfChunks: ws.MaximumSectionAmountOfChunks,
		ChunksPerChunksSection:       ws.ChunksPerChunksSection,
		SegmentFileOffset:            w.segment.Offset,
		RemainingSegmentFileSize:     ws.RemainingSegmentFileSize,
		Flags:                        ws.Flags,
	})
}

func (w *NewChunkWriter) segmentFull() bool {
	ws := w.state
	return CapacityPlanner{}.SegmentFileFull(SegmentFullInput{
		Media:                    ws.Media,
		TotalChunksWritten:       ws.AmountOfChunks,
		InputWriteCount:          ws.InputWriteCount,
		SegmentAmountOfChunks:    ws.SegmentAmountOfChunks,
		ChunksPerSegment:         ws.ChunksPerSegment,
		RemainingSegmentFileSize: ws.RemainingSegmentFileSize,
		Flags:                    ws.Flags,
	})
}

// Finalize closes out the write session: it seals any still-open
// chunks section, writes the final segment's hash section (only when
// digest is non-empty) and "done" terminator, and marks the state
// finalized. digest is written into the hash section verbatim (digest
// algorithm selection is out of scope).
func (w *NewChunkWriter) Finalize(digest []byte) error {
	ws := w.state
	if ws.WriteFinalized {
		return ErrWriteFinalized
	}
	if w.segment == nil {
		ws.WriteFinalized = true
		return nil
	}
	if ws.ChunksSectionOffset != 0 {
		if _, err := w.closeChunksSection(); err != nil {
			return err
		}
	}
	if len(digest) > 0 {
		if _, err := w.segment.WriteHashSections(digest); err != nil {
			return err
		}
	}
	if _, err := w.closeSegment(true); err != nil {
		return err
	}
	ws.WriteFinalized = true
	return nil
}
