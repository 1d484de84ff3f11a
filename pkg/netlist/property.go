package netlist

import (
	"fmt"
	"strings"
)

// Bit states used in integer properties.
const (
	S0 byte = '0'
	S1 byte = '1'
	Sx byte = 'x'
	Sz byte = 'z'
)

// Property is a typed parameter or attribute value: either a bit vector of
// explicit width, whose bits may be unknown ('x') or high-impedance ('z'), or
// an opaque string.
//
// The zero value is an empty bit vector.
type Property struct {
	isString bool
	// str holds the string value, or the bits LSB first.
	str string
}

// IntProperty returns a width-bit vector holding v in two's complement.
func IntProperty(v int64, width int) Property {
	var b strings.Builder
	b.Grow(width)
	for i := 0; i < width; i++ {
		shift := i
		if shift > 63 {
			shift = 63
		}
		if (v>>shift)&1 == 1 {
			b.WriteByte(S1)
		} else {
			b.WriteByte(S0)
		}
	}
	return Property{str: b.String()}
}

// Int returns a 32-bit integer property, the width used for plain numeric
// parameters.
func Int(v int64) Property { return IntProperty(v, 32) }

// StringProperty returns a string-valued property.
func StringProperty(s string) Property {
	return Property{isString: true, str: s}
}

// BitsProperty parses an MSB-first bit string such as "10x1" into a bit vector.
func BitsProperty(msbFirst string) (Property, error) {
	bits := make([]byte, len(msbFirst))
	for i := 0; i < len(msbFirst); i++ {
		c := msbFirst[i]
		switch c {
		case S0, S1, Sx, Sz:
		default:
			return Property{}, fmt.Errorf("invalid bit %q at position %d", c, i)
		}
		bits[len(msbFirst)-1-i] = c
	}
	return Property{str: string(bits)}, nil
}

// IsString reports whether the property holds a string.
func (p Property) IsString() bool { return p.isString }

// Size returns the number of bits, or the byte length of a string value.
func (p Property) Size() int { return len(p.str) }

// IsFullyDefined reports whether p is a bit vector with no 'x' or 'z' bits.
func (p Property) IsFullyDefined() bool {
	if p.isString {
		return false
	}
	for i := 0; i < len(p.str); i++ {
		if p.str[i] != S0 && p.str[i] != S1 {
			return false
		}
	}
	return true
}

// AsInt64 returns the low 64 bits of the vector as an integer. Undefined bits
// read as zero and the value is not sign-extended.
func (p Property) AsInt64() int64 {
	var v int64
	for i := 0; i < len(p.str) && i < 64; i++ {
		if p.str[i] == S1 {
			v |= 1 << i
		}
	}
	return v
}

// AsString returns a string value unchanged, or the MSB-first text of a bit
// vector.
func (p Property) AsString() string {
	if p.isString {
		return p.str
	}
	return p.String()
}

// String returns the textual form used in netlist files. Bit vectors print
// MSB first. A string that would read back as a bit vector (only 0, 1, x and
// z, optionally followed by spaces) gets one trailing space appended.
func (p Property) String() string {
	if p.isString {
		if looksLikeBits(p.str) {
			return p.str + " "
		}
		return p.str
	}
	b := make([]byte, len(p.str))
	for i := 0; i < len(p.str); i++ {
		b[len(p.str)-1-i] = p.str[i]
	}
	return string(b)
}

func looksLikeBits(s string) bool {
	spaces := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case spaces && c != ' ':
			return false
		case c == ' ':
			spaces = true
		case c != S0 && c != S1 && c != Sx && c != Sz:
			return false
		}
	}
	return true
}

// PropertyMap is a name → Property map that remembers insertion order.
// The zero value is an empty map ready to use.
type PropertyMap struct {
	keys []IdString
	vals map[IdString]Property
}

// Set stores v under key. Overwriting keeps the key's original position.
func (m *PropertyMap) Set(key IdString, v Property) {
	if m.vals == nil {
		m.vals = make(map[IdString]Property)
	}
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

// Get returns the value stored under key.
func (m *PropertyMap) Get(key IdString) (Property, bool) {
	v, ok := m.vals[key]
	return v, ok
}

// Len returns the number of entries.
func (m *PropertyMap) Len() int { return len(m.keys) }

// Keys returns the keys in insertion order.
func (m *PropertyMap) Keys() []IdString {
	return append([]IdString(nil), m.keys...)
}
