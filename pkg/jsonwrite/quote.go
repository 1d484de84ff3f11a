package jsonwrite

import (
	"strings"

	gojson "github.com/goccy/go-json"
)

// Quote returns s as a JSON string literal the way legacy netlist writers
// produce it: wrapped in double quotes with each backslash doubled. Nothing
// else is escaped, so a name containing '"' yields invalid JSON. Use
// [QuoteStrict] when the consumer needs strictly valid output.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}

// QuoteStrict returns s as a fully escaped JSON string literal. HTML
// characters are left alone. Invalid UTF-8 is replaced with U+FFFD.
func QuoteStrict(s string) string {
	b, err := gojson.MarshalNoEscape(s)
	if err != nil {
		// Marshalling a string cannot fail; keep the legacy form if it ever does.
		return Quote(s)
	}
	return string(b)
}
