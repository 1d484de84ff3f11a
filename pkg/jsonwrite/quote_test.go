package jsonwrite

import (
	"testing"

	"github.com/matzehuels/pnrjson/pkg/netlist"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		in, legacy, strict string
	}{
		{"", `""`, `""`},
		{"clk", `"clk"`, `"clk"`},
		{`a\b`, `"a\\b"`, `"a\\b"`},
		{`\\`, `"\\\\"`, `"\\\\"`},
		{`say "hi"`, `"say "hi""`, `"say \"hi\""`},
		{"tab\there", "\"tab\there\"", `"tab\there"`},
		{"<top>", `"<top>"`, `"<top>"`},
	}
	for _, tt := range tests {
		if got := Quote(tt.in); got != tt.legacy {
			t.Errorf("Quote(%q) = %s, want %s", tt.in, got, tt.legacy)
		}
		if got := QuoteStrict(tt.in); got != tt.strict {
			t.Errorf("QuoteStrict(%q) = %s, want %s", tt.in, got, tt.strict)
		}
	}
}

func TestFormatValue(t *testing.T) {
	bits := func(s string) netlist.Property {
		p, err := netlist.BitsProperty(s)
		if err != nil {
			t.Fatal(err)
		}
		return p
	}
	x32 := "x" + "0000000000000000000000000000001"

	tests := []struct {
		name string
		in   netlist.Property
		want string
	}{
		{"int", netlist.Int(42), "42"},
		{"negative", netlist.Int(-1), "-1"},
		{"min int32", netlist.IntProperty(1<<31, 32), "-2147483648"},
		{"narrow", netlist.IntProperty(5, 4), `"0101"`},
		{"wide", netlist.IntProperty(1, 33), `"000000000000000000000000000000001"`},
		{"undefined bit", bits(x32), `"` + x32 + `"`},
		{"string", netlist.StringProperty("hello"), `"hello"`},
		{"bit-like string", netlist.StringProperty("101"), `"101 "`},
		{"empty string", netlist.StringProperty(""), `" "`},
		{"backslash string", netlist.StringProperty(`a\b`), `"a\\b"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValue(tt.in); got != tt.want {
				t.Errorf("FormatValue() = %s, want %s", got, tt.want)
			}
		})
	}
}
