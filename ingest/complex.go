// Package ingest reads tabular coefficient recordings into phase tensors.
// Individual malformed values are recoverable by contract: they map to the
// zero complex value with a logged warning and never surface as errors to
// the statistics layer.
package ingest

import (
	"strconv"
	"strings"
)

// ParseComplex parses one cell of complex-number text. Accepted forms:
// "a+bi", "a-bi", engineering "j" notation, a bare real, and surrounding
// quotes or brackets. The second return is false when the value was empty,
// a missing-data marker, or unparseable; the caller substitutes zero and
// logs, it does not fail.
func ParseComplex(s string) (complex128, bool) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "'\"[]")
	s = strings.TrimSpace(s)

	if s == "" || strings.EqualFold(s, "nan") || s == "-" {
		return 0, false
	}

	// Go's parser wants the "i" suffix.
	if strings.ContainsAny(s, "jJ") {
		s = strings.Map(func(r rune) rune {
			if r == 'j' || r == 'J' {
				return 'i'
			}
			return r
		}, s)
	}

	if c, err := strconv.ParseComplex(s, 128); err == nil {
		return c, true
	}

	// Plain real value without an imaginary part.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return complex(f, 0), true
	}

	return 0, false
}
