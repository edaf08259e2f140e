package core

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodeLegacy returns a legacy export as UTF-8 text.
//
// A UTF-8 or UTF-16 byte order mark selects that encoding and is removed.
// Without one the data is taken as UTF-8, falling back to Windows-1252 when
// it is not valid UTF-8 (sheets saved by older Excel builds).
func decodeLegacy(data []byte) (string, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
	if err != nil {
		return "", fmt.Errorf("encoding error: %w", err)
	}
	if utf8.Valid(out) {
		return string(out), nil
	}

	out, _, err = transform.Bytes(charmap.Windows1252.NewDecoder(), out)
	if err != nil {
		return "", fmt.Errorf("encoding error: %w", err)
	}
	return string(out), nil
}
