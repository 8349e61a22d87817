package libewf

import "fmt"

// segmentFileExtension computes the extension for segment number n
// (1-based) under the classic EWF naming scheme: .E01 .. .E99, then
// .EAA .. .EZZ, .FAA .. .YZZ, matching the scheme spec.md §6
// describes. delta selects the parallel .d01.. scheme for delta
// segments.
//
// maximumAmountOfSegments reports the largest segment number the
// scheme can name; it is derived once from the scheme, not from any
// particular n.
const maximumAmountOfSegments = 14295 // 99 + 21*26*26 (.E01-.E99, then .EAA-.YZZ), matching libewf's naming ceiling

func segmentFileExtension(n uint32, delta bool) (string, error) {
	if n == 0 || n > maximumAmountOfSegments {
		return "", ErrTooManySegments
	}
	if n <= 99 {
		if delta {
			return fmt.Sprintf("d%02d", n), nil
		}
		return fmt.Sprintf("E%02d", n), nil
	}
	// Beyond .E99 / .d99 the scheme continues through two-letter
	// suffixes: EAA, EAB, ... EZZ, FAA, ... up to YZZ.
	n -= 100
	first := byte('E' + n/(26*26))
	rem := n % (26 * 26)
	second := byte('A' + rem/26)
	third := byte('A' + rem%26)
	if delta {
		return fmt.Sprintf("d%c%c", second, third), nil
	}
	return fmt.Sprintf("%c%c%c", first, second, third), nil
}

// segmentFileName joins baseName with the segment's extension.
func segmentFileName(baseName string, n uint32, delta bool) (string, error) {
	ext, err := segmentFileExtension(n, delta)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s.%s", baseName, ext), nil
}
