// Package schematic draws a design as a Graphviz node-link schematic.
//
// # Overview
//
// Top-level ports appear as ellipses and cells as rounded boxes. Every net
// becomes edges from each endpoint that drives it (input ports, cell
// outputs, inouts) to each endpoint that reads it. Bus ports are drawn as
// one node per bus, grouped the same way the JSON exporter groups them.
// Auto-generated names (starting with '$') are drawn dimmed.
//
// # Usage
//
//	dot := schematic.ToDOT(d, schematic.Options{})
//	svg, err := schematic.RenderSVG(dot)
//
// For PDF or PNG output:
//
//	pdf, err := schematic.RenderPDF(dot)
//	png, err := schematic.RenderPNG(dot, 2.0)
//
// # Options
//
//   - Detailed: cell labels list parameters and edges carry net names
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package schematic
