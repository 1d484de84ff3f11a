package jsonwrite

import (
	"strconv"

	"github.com/matzehuels/pnrjson/pkg/netlist"
)

// numericWidth is the only property width written as a bare number.
const numericWidth = 32

// FormatValue renders a parameter or attribute value. A fully defined
// 32-bit vector becomes a signed decimal literal; any other width, any
// vector with x/z bits and any string becomes a quoted string of the
// property's text.
func FormatValue(p netlist.Property) string {
	return formatValue(p, Quote)
}

func formatValue(p netlist.Property, quote func(string) string) string {
	if p.Size() == numericWidth && p.IsFullyDefined() {
		return strconv.FormatInt(int64(int32(p.AsInt64())), 10)
	}
	return quote(p.String())
}
