// Package io reads and writes design descriptions: small TOML or YAML files
// that describe a flattened module for the exporter.
//
// # Overview
//
// A design description lists the module's settings, attributes, nets, ports
// and cells. It is the hand-written or tool-generated input of the pnrjson
// CLI and HTTP service, and it round-trips: a design written with
// [WriteDescription] reads back into an equivalent [netlist.Design].
//
// # Format
//
//	module = "blinky"
//
//	[settings]
//	seed = 1
//
//	[[nets]]
//	name = "clk"
//	attributes = { src = "blinky.v:3" }
//
//	[[ports]]
//	name = "clk"
//	direction = "input"
//
//	[[ports]]
//	name = "led[0]"
//	direction = "output"
//	net = "q0"
//
//	[[cells]]
//	name = "ff0"
//	type = "DFF"
//	parameters = { INIT = "0b0" }
//	ports = [
//	  { name = "C", direction = "input", net = "clk" },
//	  { name = "Q", direction = "output", net = "q0" },
//	]
//
// The YAML form uses the same keys.
//
// # Fields
//
//   - module: Module name, stored as the "module" attribute
//   - settings, attributes: Property tables
//   - nets: Each net has a name and optional attributes
//   - ports: Top-level ports; net defaults to the port name
//   - cells: Each cell has a name, a type, parameters, attributes and pins.
//     A pin with no net is unconnected.
//
// Nets referenced by ports or pins but not listed under nets are declared
// implicitly, in order of first reference. Property tables are applied in
// key order.
//
// # Values
//
//   - Integers become 32-bit vectors, or 64-bit vectors when out of int32
//     range
//   - Booleans become 1-bit vectors
//   - Strings starting with "0b" become bit vectors written MSB first, and
//     may contain x and z bits ("0b10xz"). Quote them: both TOML and YAML
//     read a bare 0b101 as an integer
//   - Any other string is a string property
//
// # Errors
//
// Syntax errors and unknown keys fail with INVALID_FORMAT. Semantic errors
// such as duplicate names, bad directions or unsupported values fail with
// INVALID_DESIGN and name the offending entity.
package io
