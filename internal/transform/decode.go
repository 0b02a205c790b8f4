package transform

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const (
	// SchemeUTF8 is primary decoding scheme
	SchemeUTF8 = "utf-8"
	// SchemeLatin1 is fallback decoding scheme. Any byte sequence is valid in it.
	SchemeLatin1 = "latin-1"
)

var latin1 = charmap.ISO8859_1

// DecodeText converts raw bytes of archive entry to string and returns decoding scheme.
func DecodeText(raw []byte) (string, string) {
	if utf8.Valid(raw) {
		return string(raw), SchemeUTF8
	}

	var b strings.Builder
	b.Grow(len(raw) * 2)
	for _, c := range raw {
		b.WriteRune(latin1.DecodeByte(c))
	}
	return b.String(), SchemeLatin1
}
