package libewf

import "encoding/binary"

// dataSectionSize is the fixed-width geometry block a "data"/"volume"
// section carries: chunk count, chunk size, total media size and a
// trailing CRC, following the same header-then-CRC shape
// encodeSectionHeader uses for every other section (spec.md §1 leaves
// the exact byte layout out of scope beyond "the same content on every
// segment").
const dataSectionSize = 4 + 4 + 8 + 4

// buildDataSection renders MediaValues into the bytes a segment's
// data/volume section wraps. It is computed once per write session and
// cached on WriteState so every segment re-emits identical content.
func buildDataSection(media MediaValues) []byte {
	buf := make([]byte, dataSectionSize)
	binary.LittleEndian.PutUint32(buf[0:4], media.AmountOfChunks)
	binary.LittleEndian.PutUint32(buf[4:8], media.ChunkSize)
	binary.LittleEndian.PutUint64(buf[8:16], media.MediaSize)
	binary.LittleEndian.PutUint32(buf[16:20], chunkCRC32(buf[:16]))
	return buf
}
