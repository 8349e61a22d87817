package libewf

import "hash/crc32"

// crcSeed is the initial CRC register value the EWF format seeds every
// checksum with, instead of the conventional all-ones/all-zeros start.
const crcSeed = 1

// chunkCRC32 computes the little-endian-serialized CRC32 (IEEE
// polynomial, seed=1) of data, matching the "crc32-style, seed=1"
// primitive spec.md treats as an external collaborator. This is the
// same table-driven algorithm the reference library's crc_writer.go
// uses; seeding is the only divergence from hash/crc32's zero-value
// default, so no third-party CRC package is warranted here (see
// DESIGN.md).
func chunkCRC32(data []byte) uint32 {
	return crc32.Update(crcSeed, crc32.IEEETable, data)
}
