// Package render converts rendered designs between output formats.
//
// # Overview
//
// Schematics are drawn as SVG by the [schematic] subpackage. This package
// turns any SVG into PDF or PNG using the external rsvg-convert tool (from
// librsvg):
//
//	svg, err := schematic.RenderSVG(dot)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [Format] names the output formats understood by the CLI and the HTTP
// service.
//
// [schematic]: github.com/matzehuels/pnrjson/pkg/render/schematic
package render
