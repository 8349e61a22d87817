package libewf

import "encoding/binary"

// ChunkCache is the scratch storage ChunkProcessor and NewChunkWriter
// share across an entire write session: a buffer the raw chunk is
// assembled into (with SizeOfCRC bytes of trailing slack so a raw
// chunk's CRC can be appended in place) and a separate, independently
// growable compression scratch buffer.
//
// ChunkCache is not safe for concurrent use; a WriteState owns exactly
// one, matching the single-threaded model in spec.md §5.
type ChunkCache struct {
	raw        []byte
	compressed []byte
}

// NewChunkCache allocates a cache sized for the given chunk size.
func NewChunkCache(chunkSize uint32) *ChunkCache {
	return &ChunkCache{
		raw:        make([]byte, chunkSize+SizeOfCRC),
		compressed: make([]byte, chunkSize),
	}
}

// Raw returns the cache's chunk-assembly buffer, sized chunkSize+4 so a
// caller filling it with exactly chunkSize bytes can grow the returned
// slice by SizeOfCRC without reallocating.
func (c *ChunkCache) Raw() []byte { return c.raw }

func (c *ChunkCache) growCompressed(n int) {
	if cap(c.compressed) >= n {
		c.compressed = c.compressed[:n]
		return
	}
	c.compressed = make([]byte, n)
}

// ProcessedChunk is the output of ChunkProcessor.Process: a ready-to-
// write payload plus the bookkeeping the writers need to record it.
type ProcessedChunk struct {
	Payload            []byte
	IsCompressed       bool
	CRC                uint32
	WriteCRCSeparately bool
}

// ChunkProcessor turns one raw chunk into its on-disk representation:
// optionally compressed, CRC'd, and (for the common streaming path)
// with the CRC appended directly to the shared cache buffer to save an
// extra I/O.
type ChunkProcessor struct {
	compressor *compressor
}

// NewChunkProcessor returns a ChunkProcessor ready to process chunks.
func NewChunkProcessor() *ChunkProcessor {
	return &ChunkProcessor{compressor: newCompressor()}
}

// Process implements the ChunkProcessor contract from spec.md §4.1.
//
// chunkData is the raw chunk, at most chunkSizeLimit bytes.
// chunkInCache reports whether chunkData is backed by cache.Raw()
// (i.e. cache.Raw()[:len(chunkData)]) — the explicit stand-in for the
// source library's pointer-aliasing trick (spec.md §9's "cache-buffer
// aliasing" note): when true and the chunk ends up stored raw, its CRC
// is appended into the same backing array instead of being returned
// for separate writing.
func (p *ChunkProcessor) Process(
	chunkData []byte,
	chunkInCache bool,
	cache *ChunkCache,
	chunkSizeLimit uint32,
	flags FormatFlags,
) (ProcessedChunk, error) {
	if len(chunkData) > int(chunkSizeLimit) {
		return ProcessedChunk{}, ErrInvalidArgument
	}

	effectiveLevel := flags.CompressionLevel
	if effectiveLevel == CompressionNone && flags.CompressEmptyBlock && isEmptyBlock(chunkData) {
		effectiveLevel = CompressionDefault
	}

	attemptCompression := flags.EWFFormat == EWFFormatS01 || effectiveLevel != CompressionNone
	if attemptCompression {
		n, short, required, err := p.compressor.compress(cache.compressed, chunkData, effectiveLevel)
		if err != nil {
			return ProcessedChunk{}, err
		}
		if short {
			// The destination is always the shared cache's compressed
			// buffer in this writer; grow it to the reported size and
			// retry exactly once.
			cache.growCompressed(required)
			n, short, _, err = p.compressor.compress(cache.compressed, chunkData, effectiveLevel)
			if err != nil {
				return ProcessedChunk{}, err
			}
			if short {
				return ProcessedChunk{}, &CompressionError{Err: ErrOutOfMemory}
			}
		}
		useCompressed := flags.EWFFormat == EWFFormatS01 || (n > 0 && n < int(chunkSizeLimit))
		if useCompressed {
			payload := cache.compressed[:n]
			crc := binary.LittleEndian.Uint32(payload[len(payload)-SizeOfCRC:])
			return ProcessedChunk{
				Payload:            payload,
				IsCompressed:       true,
				CRC:                crc,
				WriteCRCSeparately: false,
			}, nil
		}
		// Compression didn't help: fall through to the raw path.
	}

	crc := chunkCRC32(chunkData)
	if chunkInCache {
		n := len(chunkData)
		binary.LittleEndian.PutUint32(cache.raw[n:n+SizeOfCRC], crc)
		return ProcessedChunk{
			Payload:            cache.raw[:n+SizeOfCRC],
			IsCompressed:       false,
			CRC:                crc,
			WriteCRCSeparately: false,
		}, nil
	}
	return ProcessedChunk{
		Payload:            chunkData,
		IsCompressed:       false,
		CRC:                crc,
		WriteCRCSeparately: true,
	}, nil
}

// isEmptyBlock reports whether every byte in data equals data[0].
func isEmptyBlock(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	first := data[0]
	for _, b := range data[1:] {
		if b != first {
			return false
		}
	}
	return true
}
