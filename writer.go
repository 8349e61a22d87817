package libewf

import "io"

// Writer is the public entry point: it owns the chunk-accumulation
// buffer, the chunk processor, the segment table and the two
// lower-level write-state machines, presenting an ordinary io.Writer-
// shaped surface over the whole acquisition pipeline.
type Writer struct {
	state   *WriteState
	table   *SegmentTable
	buffer  *ChunkBuffer
	proc    *ChunkProcessor
	newer   *NewChunkWriter
	delta   *DeltaChunkWriter
	headers HeaderValues
	closed  bool
}

// NewWriter opens baseName.E01 (and successors) for a fresh acquisition
// described by media and flags, using headers for the evidence metadata
// carried in the header sections.
func NewWriter(pool *FilePool, baseName string, media MediaValues, flags FormatFlags, headers HeaderValues) (*Writer, error) {
	state, err := NewWriteState(media, flags)
	if err != nil {
		return nil, err
	}
	table := NewSegmentTable(pool, baseName)
	w := &Writer{
		state:   state,
		table:   table,
		buffer:  NewChunkBuffer(media.ChunkSize),
		proc:    NewChunkProcessor(),
		newer:   NewNewChunkWriter(state, table),
		delta:   NewDeltaChunkWriter(state, table),
		headers: headers,
	}
	return w, nil
}

// SetSegmentFileSize overrides the target size for subsequently opened
// primary segment files.
func (w *Writer) SetSegmentFileSize(size uint64) error {
	return w.state.SetSegmentFileSize(size)
}

// SetMaximumSectionAmountOfChunks overrides the offset-table capacity a
// single chunks section may hold.
func (w *Writer) SetMaximumSectionAmountOfChunks(n uint32) error {
	return w.state.SetMaximumSectionAmountOfChunks(n)
}

// BuildHeader implements HeaderBuilder by rendering w.headers with the
// compression-type field derived from the active format flags.
func (w *Writer) BuildHeader(flags FormatFlags) ([]byte, error) {
	h := w.headers
	h.CompressionType = compressionTypeField(flags.CompressionLevel)
	return BuildHeaderSection(h, w.proc.compressor)
}

// Write implements io.Writer, buffering p into whole media chunks and
// committing each completed chunk through the new-chunk write path. It
// never writes a short final chunk itself; call Close to flush and
// finalize the acquisition.
func (w *Writer) Write(p []byte) (int, error) {
	if w.state.WriteFinalized {
		return 0, ErrWriteFinalized
	}
	for _, chunk := range w.buffer.Write(p) {
		if err := w.commitChunk(chunk); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

func (w *Writer) commitChunk(raw []byte) error {
	cache := w.state.Cache
	copy(cache.Raw(), raw)
	processed, err := w.proc.Process(cache.Raw()[:len(raw)], true, cache, w.state.Media.ChunkSize, w.state.Flags)
	if err != nil {
		return err
	}
	idx := w.state.AmountOfChunks
	_, err = w.newer.WriteNewChunk(w, idx, processed.Payload, uint32(len(raw)), processed.IsCompressed, processed.CRC, processed.WriteCRCSeparately)
	return err
}

// OverwriteChunk replaces the content of an already-committed chunk via
// the delta write path (spec.md §4.4), without disturbing the image's
// original chunk count or ordering. Delta chunks are always stored
// uncompressed, so the replacement is processed with compression forced
// off regardless of the session's own format flags.
func (w *Writer) OverwriteChunk(chunkIndex uint32, raw []byte) error {
	cache := w.state.Cache
	copy(cache.Raw(), raw)
	rawFlags := FormatFlags{Format: w.state.Flags.Format, EWFFormat: EWFFormatE01, CompressionLevel: CompressionNone}
	processed, err := w.proc.Process(cache.Raw()[:len(raw)], true, cache, w.state.Media.ChunkSize, rawFlags)
	if err != nil {
		return err
	}
	_, err = w.delta.WriteDeltaChunk(chunkIndex, processed.Payload, processed.IsCompressed, processed.CRC, processed.WriteCRCSeparately)
	return err
}

// Close flushes any buffered partial chunk, finalizes the write state
// (sealing the last section, writing the hash section if digest is
// non-empty) and closes every open segment file. digest may be nil.
func (w *Writer) Close(digest []byte) error {
	if w.closed {
		return nil
	}
	w.closed = true
	if tail := w.buffer.Flush(); len(tail) > 0 {
		if err := w.commitChunk(tail); err != nil {
			return err
		}
	}
	if err := w.newer.Finalize(digest); err != nil {
		return err
	}
	return w.table.Close()
}

var _ io.Writer = (*Writer)(nil)
