package netlist

import (
	"slices"
	"strings"
	"testing"
)

func TestIntProperty(t *testing.T) {
	p := Int(42)
	if p.IsString() || p.Size() != 32 || !p.IsFullyDefined() {
		t.Errorf("Int(42): string %v, size %d, defined %v; want false, 32, true", p.IsString(), p.Size(), p.IsFullyDefined())
	}
	if got := p.AsInt64(); got != 42 {
		t.Errorf("AsInt64() = %d, want 42", got)
	}
	if got, want := p.String(), "00000000000000000000000000101010"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestIntPropertyNegative(t *testing.T) {
	p := Int(-1)
	// AsInt64 does not sign-extend.
	if got := p.AsInt64(); got != 0xFFFFFFFF {
		t.Errorf("AsInt64() = %#x, want 0xffffffff", got)
	}
	if got := int32(p.AsInt64()); got != -1 {
		t.Errorf("int32(AsInt64()) = %d, want -1", got)
	}

	wide := IntProperty(-2, 70)
	if wide.Size() != 70 {
		t.Errorf("Size() = %d, want 70", wide.Size())
	}
	if got, want := wide.String(), strings.Repeat("1", 69)+"0"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestBitsProperty(t *testing.T) {
	p, err := BitsProperty("10x1")
	if err != nil {
		t.Fatalf("BitsProperty() error: %v", err)
	}
	if p.Size() != 4 || p.IsFullyDefined() {
		t.Errorf("size %d, defined %v; want 4, false", p.Size(), p.IsFullyDefined())
	}
	if got := p.String(); got != "10x1" {
		t.Errorf("String() = %q, want 10x1", got)
	}
	// Undefined bits read as zero.
	if got := p.AsInt64(); got != 0b1001 {
		t.Errorf("AsInt64() = %d, want 9", got)
	}

	if _, err := BitsProperty("10a1"); err == nil {
		t.Error("BitsProperty(10a1) should fail")
	}
}

func TestStringPropertyText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"LUT4", "LUT4"},
		{"hello world", "hello world"},
		{"0101", "0101 "},
		{"x", "x "},
		{"10  ", "10   "},
		{"10 1", "10 1"},
		{"", " "},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p := StringProperty(tt.in)
			if !p.IsString() || p.IsFullyDefined() {
				t.Errorf("string %v, defined %v; want true, false", p.IsString(), p.IsFullyDefined())
			}
			if got := p.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if got := p.AsString(); got != tt.in {
				t.Errorf("AsString() = %q, want %q", got, tt.in)
			}
		})
	}
}

func TestPropertyMapOrder(t *testing.T) {
	var m PropertyMap
	m.Set(IdString(3), Int(1))
	m.Set(IdString(1), Int(2))
	m.Set(IdString(3), Int(5))

	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
	if got, want := m.Keys(), []IdString{3, 1}; !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if v, ok := m.Get(IdString(3)); !ok || v.AsInt64() != 5 {
		t.Errorf("Get(3) = %d (set %v), want 5", v.AsInt64(), ok)
	}
	if _, ok := m.Get(IdString(9)); ok {
		t.Error("Get(9) should miss")
	}
}
