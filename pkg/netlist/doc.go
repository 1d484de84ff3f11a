// Package netlist provides the in-memory design database read by the JSON
// exporter and the schematic renderer.
//
// # Overview
//
// A [Design] holds a single flattened module: top-level [Port]s, [Cell]
// instances with named port connections, and single-bit [Net]s. Settings and
// attributes attach typed [Property] values to the design, cells and nets.
//
// Every name is interned into the design's identifier pool and referred to by
// an [IdString] handle; [Design.Str] resolves a handle back to text. A net's
// bit index is the index of its name in that pool, so bit indices are unique
// across the whole design.
//
// # Buses
//
// Multi-bit buses are not first-class. A 4-bit bus "data" is four nets named
// "data[0]" … "data[3]", and four ports with the same names. Consumers that
// need buses regroup them by name (see the jsonwrite package).
//
// # Ordering
//
// Collections remember declaration order. [Order] selects between that order
// and lexical name order so output built from a design is reproducible:
//
//	for _, c := range d.CellsIn(netlist.OrderName) {
//	    fmt.Println(d.Str(c.Name), d.Str(c.Type))
//	}
//
// # Concurrency
//
// A Design is not safe for concurrent mutation. Concurrent readers are fine
// once construction has finished.
package netlist
