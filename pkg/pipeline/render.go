package pipeline

import (
	"github.com/matzehuels/pnrjson/pkg/netlist"
	"github.com/matzehuels/pnrjson/pkg/render"
	"github.com/matzehuels/pnrjson/pkg/render/schematic"
)

// RenderSchematic draws d in the given render format.
func RenderSchematic(d *netlist.Design, format string, opts Options) ([]byte, error) {
	dot := schematic.ToDOT(d, schematic.Options{Detailed: opts.Detailed})

	switch render.Format(format) {
	case render.FormatDOT:
		return []byte(dot), nil
	case render.FormatSVG:
		return schematic.RenderSVG(dot)
	case render.FormatPDF:
		return schematic.RenderPDF(dot)
	case render.FormatPNG:
		return schematic.RenderPNG(dot, opts.Scale)
	}
	return nil, ValidateFormat(format)
}
