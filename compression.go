package libewf

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
)

// zlibLevel maps the format's CompressionLevel onto klauspost/compress's
// zlib levels. klauspost/compress/zlib is a drop-in, allocation-lighter
// reimplementation of the stdlib package; the reference library already
// depends on the sibling klauspost/compress/zstd codec, so this keeps
// the same vendor for every compression concern in the port (see
// DESIGN.md).
func (c CompressionLevel) zlibLevel() int {
	switch c {
	case CompressionBest:
		return zlib.BestCompression
	case CompressionDefault:
		return zlib.DefaultCompression
	default:
		return zlib.NoCompression
	}
}

// compressor wraps a pooled zlib.Writer so repeated chunk compressions
// don't re-allocate the DEFLATE tables on every call.
type compressor struct {
	scratch bytes.Buffer
	zw      *zlib.Writer
	level   CompressionLevel
}

func newCompressor() *compressor {
	return &compressor{}
}

// compress DEFLATE-compresses src at the given level and attempts to
// copy the result into dst. If dst is too small, it reports the size
// the compressor actually needed so the caller can decide whether to
// grow a reusable buffer and retry, or fail outright.
//
// The returned n is only valid when short is false.
func (c *compressor) compress(dst, src []byte, level CompressionLevel) (n int, short bool, required int, err error) {
	if c.zw == nil || c.level != level {
		c.scratch.Reset()
		zw, zerr := zlib.NewWriterLevel(&c.scratch, level.zlibLevel())
		if zerr != nil {
			return 0, false, 0, &CompressionError{Err: zerr}
		}
		c.zw = zw
		c.level = level
	} else {
		c.scratch.Reset()
		c.zw.Reset(&c.scratch)
	}
	if _, err := c.zw.Write(src); err != nil {
		return 0, false, 0, &CompressionError{Err: err}
	}
	if err := c.zw.Close(); err != nil {
		return 0, false, 0, &CompressionError{Err: err}
	}
	compressed := c.scratch.Bytes()
	if len(dst) < len(compressed) {
		return 0, true, len(compressed), nil
	}
	return copy(dst, compressed), false, 0, nil
}

// decompress inflates a zlib stream produced by compress into dst. No
// caller in this package uses it; full EWF reading is out of scope.
func decompress(dst io.Writer, src []byte) error {
	r, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return &CompressionError{Err: err}
	}
	defer r.Close()
	_, err = io.Copy(dst, r)
	if err != nil {
		return &CompressionError{Err: err}
	}
	return nil
}
