package libewf

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// HeaderValues are the free-text evidence fields EWF's "header"/
// "header2" sections carry, tab-separated, UTF-16-encoded and DEFLATE
// compressed. Field semantics are exactly what the reference decoder
// (other_examples' ewfgo internal/constants.go ParseHeader) parses back
// out; this module is its write-side counterpart.
type HeaderValues struct {
	CaseNumber      string
	Description     string
	EvidenceNumber  string
	Examiner        string
	Notes           string
	AcquiryDate     string
	SystemDate      string
	Version         string
	Platform        string
	CompressionType string
}

// BuildHeaderSection renders HeaderValues into the compressed,
// UTF-16LE-with-BOM byte block a "header" section's content carries.
func BuildHeaderSection(h HeaderValues, c *compressor) ([]byte, error) {
	flags := []string{"a", "c", "n", "e", "t", "av", "ov", "m", "u", "r"}
	values := []string{
		h.Description, h.CaseNumber, h.EvidenceNumber, h.Examiner, h.Notes,
		h.Version, h.Platform, h.AcquiryDate, h.SystemDate, h.CompressionType,
	}

	var text strings.Builder
	fmt.Fprintln(&text, "1")
	fmt.Fprintln(&text, "main")
	fmt.Fprintln(&text, strings.Join(flags, "\t"))
	fmt.Fprintln(&text, strings.Join(values, "\t"))
	fmt.Fprintln(&text)

	encoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	encoded, err := encoder.String(text.String())
	if err != nil {
		return nil, &CompressionError{Err: err}
	}

	dst := make([]byte, len(encoded)+64)
	n, short, required, err := c.compress(dst, []byte(encoded), CompressionBest)
	if err != nil {
		return nil, err
	}
	if short {
		dst = make([]byte, required)
		n, _, _, err = c.compress(dst, []byte(encoded), CompressionBest)
		if err != nil {
			return nil, err
		}
	}
	return dst[:n], nil
}

// compressionTypeField returns the header's single-character
// compression-level code ("n" none, "f" fast/default, "b" best).
func compressionTypeField(level CompressionLevel) string {
	switch level {
	case CompressionBest:
		return "b"
	case CompressionDefault:
		return "f"
	default:
		return "n"
	}
}
