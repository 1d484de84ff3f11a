package netlist

import (
	"cmp"
	"fmt"
	"slices"
)

// Order selects how collections are enumerated.
type Order int

const (
	// OrderDeclaration enumerates in the order entities were added.
	OrderDeclaration Order = iota
	// OrderName enumerates by name, byte-wise.
	OrderName
)

// String returns "declaration" or "name".
func (o Order) String() string {
	if o == OrderName {
		return "name"
	}
	return "declaration"
}

// ParseOrder parses "declaration" (or "") and "name".
func ParseOrder(s string) (Order, error) {
	switch s {
	case "", "declaration":
		return OrderDeclaration, nil
	case "name":
		return OrderName, nil
	}
	return 0, fmt.Errorf("unknown order %q (want declaration or name)", s)
}

// PortsIn returns the top-level ports in order o.
func (d *Design) PortsIn(o Order) []*Port {
	return sortedBy(d, d.Ports(), o, func(p *Port) IdString { return p.Name })
}

// CellsIn returns the cells in order o.
func (d *Design) CellsIn(o Order) []*Cell {
	return sortedBy(d, d.Cells(), o, func(c *Cell) IdString { return c.Name })
}

// NetsIn returns the nets in order o.
func (d *Design) NetsIn(o Order) []*Net {
	return sortedBy(d, d.Nets(), o, func(n *Net) IdString { return n.Name })
}

// CellPortsIn returns the pins of c in order o.
func (d *Design) CellPortsIn(c *Cell, o Order) []*CellPort {
	return sortedBy(d, c.Ports(), o, func(p *CellPort) IdString { return p.Name })
}

// KeysIn returns the keys of m in order o.
func (d *Design) KeysIn(m *PropertyMap, o Order) []IdString {
	return sortedBy(d, m.Keys(), o, func(id IdString) IdString { return id })
}

func sortedBy[T any](d *Design, items []T, o Order, name func(T) IdString) []T {
	if o == OrderName {
		slices.SortStableFunc(items, func(a, b T) int {
			return cmp.Compare(d.Str(name(a)), d.Str(name(b)))
		})
	}
	return items
}
