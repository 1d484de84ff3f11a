package schematic

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/pnrjson/pkg/errors"
	"github.com/matzehuels/pnrjson/pkg/jsonwrite"
	"github.com/matzehuels/pnrjson/pkg/netlist"
	"github.com/matzehuels/pnrjson/pkg/render"
)

// Options configures schematic rendering.
type Options struct {
	// Detailed adds cell parameters to labels and net names to edges.
	Detailed bool
}

// endpoints collects the nodes attached to each net bit.
type endpoints struct {
	drivers map[int][]string
	loads   map[int][]string
}

func (e *endpoints) add(bit int, node string, dir netlist.PortType, isTopPort bool) {
	// A top-level input drives the design; a cell input reads from it.
	drives := dir == netlist.PortOut
	if isTopPort {
		drives = dir == netlist.PortIn
	}
	if drives || dir == netlist.PortInout {
		e.drivers[bit] = append(e.drivers[bit], node)
	}
	if !drives || dir == netlist.PortInout {
		e.loads[bit] = append(e.loads[bit], node)
	}
}

// ToDOT converts a design to Graphviz DOT source. The result can be
// rendered with [RenderSVG], [RenderPDF] or [RenderPNG].
//
// ToDOT panics like [jsonwrite.GroupPorts] if two ports claim the same bus bit.
func ToDOT(d *netlist.Design, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	ep := endpoints{drivers: map[int][]string{}, loads: map[int][]string{}}

	for _, g := range jsonwrite.GroupPorts(d, d.Ports()) {
		id := "port:" + g.Name
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(portAttrs(g), ", "))
		for _, bit := range g.Bits {
			if bit != jsonwrite.Placeholder {
				ep.add(bit, id, g.Dir, true)
			}
		}
	}

	for _, c := range d.Cells() {
		name := d.Str(c.Name)
		id := "cell:" + name
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(cellAttrs(d, c, opts.Detailed), ", "))
		for _, p := range c.Ports() {
			if p.Connected() {
				ep.add(p.Net.Index(), id, p.Type, false)
			}
		}
	}

	buf.WriteString("\n")
	seen := make(map[string]bool)
	for _, n := range d.Nets() {
		bit := n.Index()
		netName := d.Str(n.Name)
		for _, from := range ep.drivers[bit] {
			for _, to := range ep.loads[bit] {
				if from == to {
					continue
				}
				key := from + "\x00" + to + "\x00" + netName
				if seen[key] {
					continue
				}
				seen[key] = true
				if opts.Detailed {
					fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", from, to, netName)
				} else {
					fmt.Fprintf(&buf, "  %q -> %q;\n", from, to)
				}
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func portAttrs(g jsonwrite.PortGroup) []string {
	label := g.Name
	if len(g.Bits) > 1 {
		label = fmt.Sprintf("%s[%d:0]", g.Name, len(g.Bits)-1)
	}
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		"shape=ellipse",
		fmt.Sprintf("fillcolor=%q", portColor(g.Dir)),
	}
	if hidden(g.Name) {
		attrs = append(attrs, "fontcolor=grey")
	}
	return attrs
}

func portColor(dir netlist.PortType) string {
	switch dir {
	case netlist.PortIn:
		return "#dbeafe"
	case netlist.PortOut:
		return "#dcfce7"
	}
	return "#fef3c7"
}

func cellAttrs(d *netlist.Design, c *netlist.Cell, detailed bool) []string {
	name := d.Str(c.Name)
	lines := []string{name, d.Str(c.Type)}
	if detailed {
		for _, k := range c.Params.Keys() {
			v, _ := c.Params.Get(k)
			lines = append(lines, d.Str(k)+" = "+jsonwrite.FormatValue(v))
		}
	}
	attrs := []string{fmt.Sprintf("label=%q", strings.Join(lines, "\n"))}
	if hidden(name) {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=grey")
	}
	return attrs
}

func hidden(name string) bool { return strings.HasPrefix(name, "$") }

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root tag so the SVG scales from its viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders DOT source as PDF via SVG conversion.
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders DOT source as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image.
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
