package libewf

// DeltaChunkWriter implements spec.md §4.4's delta write path: a chunk
// originally committed to a primary EWF segment gets redirected into a
// delta segment (Mode A), or a chunk already living in a delta/DWF
// segment gets overwritten in place (Mode B).
type DeltaChunkWriter struct {
	state *WriteState
	table *SegmentTable
}

// NewDeltaChunkWriter returns a writer bound to the given write state
// and segment table.
func NewDeltaChunkWriter(state *WriteState, table *SegmentTable) *DeltaChunkWriter {
	return &DeltaChunkWriter{state: state, table: table}
}

// WriteDeltaChunk implements write_delta_chunk. chunkIndex must already
// have a committed location in state.OffsetTable; payload, crc and
// writeCRCSeparately are ChunkProcessor's output for the replacement
// chunk content. isCompressed must be false: delta chunks are always
// stored uncompressed, and a compressed one is rejected outright rather
// than silently written.
func (w *DeltaChunkWriter) WriteDeltaChunk(chunkIndex uint32, payload []byte, isCompressed bool, crc uint32, writeCRCSeparately bool) (int64, error) {
	if isCompressed {
		return 0, ErrInvalidArgument
	}

	ws := w.state
	if int(chunkIndex) >= len(ws.OffsetTable) || !ws.OffsetTable[chunkIndex].Set {
		return 0, ErrChunkNotFound
	}
	loc := ws.OffsetTable[chunkIndex]

	var written int64
	var err error
	if loc.IsDelta {
		written, err = w.overwriteInPlace(chunkIndex, loc, payload, crc, writeCRCSeparately)
	} else {
		written, err = w.redirectToDelta(chunkIndex, loc, payload, crc, writeCRCSeparately)
	}
	if err != nil {
		return written, err
	}
	ws.WriteCount += uint64(len(payload)) + uint64(SizeOfCRC)
	return written, nil
}

// redirectToDelta is Mode A: the chunk's authoritative copy still lives
// in a primary EWF segment. The replacement is appended to the latest
// open delta segment, opening a new one first if none is open yet or
// if the write would overrun the current delta segment's size budget.
func (w *DeltaChunkWriter) redirectToDelta(chunkIndex uint32, loc ChunkLocation, payload []byte, crc uint32, writeCRCSeparately bool) (int64, error) {
	ws := w.state

	delta, deltaNumber, ok := w.table.LatestDeltaSegment()
	projected := uint64(deltaChunkHeaderSize+len(payload)+int(SizeOfCRC)) + uint64(rawSectionHeaderSize)

	needsNewSegment := !ok
	if ok && delta.Offset+projected > ws.DeltaSegmentFileSize {
		needsNewSegment = true
	}

	var written int64
	if needsNewSegment {
		if ok {
			// Seal the segment being vacated with a "next" terminator
			// before moving on, so the chain stays well-formed.
			n, err := delta.WriteLastSection(false)
			if err != nil {
				return written, err
			}
			written += n
		}
		deltaNumber++
		newDelta, err := w.table.CreateDeltaSegment(deltaNumber)
		if err != nil {
			return written, err
		}
		// Mode A step 3: a fresh DWF segment still gets the usual file
		// header plus the header/data sections, reusing the bytes cached
		// from the primary segment chain rather than rebuilding them.
		n, err := newDelta.WriteStart(ws.HeaderSection, ws.DataSection, dataSectionName(ws.Flags))
		if err != nil {
			return written, err
		}
		written += n
		delta = newDelta
	}

	at := delta.Offset
	_, n, err := delta.WriteDeltaChunk(at, chunkIndex, payload, crc, writeCRCSeparately)
	if err != nil {
		return written, err
	}
	written += n

	n2, err := delta.WriteLastSection(true)
	if err != nil {
		return written, err
	}
	written += n2

	ws.OffsetTable[chunkIndex] = ChunkLocation{
		SegmentNumber: deltaNumber,
		IsDelta:       true,
		Offset:        at,
		Set:           true,
	}
	return written, nil
}

// overwriteInPlace is Mode B: the chunk already lives in a delta
// segment from an earlier redirect. The replacement must be the same
// size as what is already on disk (the delta_chunk header is fixed and
// the section was sized for the original payload), so it is written
// directly over the existing region without touching the trailing
// done/next section.
func (w *DeltaChunkWriter) overwriteInPlace(chunkIndex uint32, loc ChunkLocation, payload []byte, crc uint32, writeCRCSeparately bool) (int64, error) {
	delta, ok := w.table.DeltaSegment(loc.SegmentNumber)
	if !ok {
		return 0, ErrChunkNotFound
	}
	_, n, err := delta.WriteDeltaChunk(loc.Offset, chunkIndex, payload, crc, writeCRCSeparately)
	if err != nil {
		return 0, err
	}
	return n, nil
}
