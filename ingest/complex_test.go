package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseComplex(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want complex128
		ok   bool
	}{
		{"standard form", "1.5+2.5i", complex(1.5, 2.5), true},
		{"negative imaginary", "0.3-0.7i", complex(0.3, -0.7), true},
		{"engineering j", "1+2j", complex(1, 2), true},
		{"uppercase J", "1-3J", complex(1, -3), true},
		{"bare real", "42.5", complex(42.5, 0), true},
		{"negative real", "-0.25", complex(-0.25, 0), true},
		{"pure imaginary", "2i", complex(0, 2), true},
		{"quoted", "'1+2i'", complex(1, 2), true},
		{"bracketed", "[0.5+0.5i]", complex(0.5, 0.5), true},
		{"padded", "  3+4i  ", complex(3, 4), true},
		{"empty", "", 0, false},
		{"whitespace only", "   ", 0, false},
		{"missing marker", "-", 0, false},
		{"nan marker", "NaN", 0, false},
		{"garbage", "not-a-number", 0, false},
		{"double sign", "1++2i", 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseComplex(tc.in)
			assert.Equal(t, tc.ok, ok, "ok flag")
			assert.Equal(t, tc.want, got, "parsed value")
		})
	}
}
