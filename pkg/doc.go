// Package pkg provides the core libraries for pnrjson, the JSON netlist
// exporter for place-and-route designs.
//
// # Overview
//
// pnrjson writes a flattened design (ports, cells, nets and their
// parameters and attributes) as the JSON netlist interchange document read
// by downstream analysis and visualization tools. The pkg directory is
// organized into four areas:
//
//  1. Design model: [netlist]
//  2. Export: [jsonwrite] (the JSON netlist writer) and [io] (design descriptions)
//  3. Rendering: [render] and [render/schematic]
//  4. Infrastructure: [pipeline], [cache], [config], [metrics], [observability]
//
// # Architecture
//
// The typical data flow:
//
//	Design description (TOML/YAML)
//	         ↓
//	    [io] package (decode into a netlist.Design)
//	         ↓
//	    [jsonwrite] package (stream the JSON netlist)
//	    [render/schematic] package (draw the design)
//	         ↓
//	    JSON / SVG / DOT / PDF / PNG output
//
// [pipeline] ties these together with caching and is shared by the CLI and
// the HTTP service.
//
// # Quick Start
//
// Build a design in code and export it:
//
//	d := netlist.New()
//	d.AddNet("a")
//	d.AddPort("a", netlist.PortIn, "a")
//	opts := jsonwrite.DefaultOptions()
//	if !jsonwrite.Export(os.Stdout, d, opts, logger) {
//	    os.Exit(1)
//	}
//
// Export a description file:
//
//	d, err := io.ImportDesign("blinky.toml")
//	if err != nil {
//	    return err
//	}
//	return jsonwrite.ExportFile("blinky.json", d, jsonwrite.DefaultOptions())
//
// # Testing
//
//	go test ./pkg/...                  # All tests
//	go test ./pkg/jsonwrite/...        # The exporter only
//	go test -run Example ./pkg/...     # Examples only
//	PNRJSON_TEST_REDIS=localhost:6379 go test ./pkg/cache/...
//
// [netlist]: https://pkg.go.dev/github.com/matzehuels/pnrjson/pkg/netlist
// [jsonwrite]: https://pkg.go.dev/github.com/matzehuels/pnrjson/pkg/jsonwrite
// [io]: https://pkg.go.dev/github.com/matzehuels/pnrjson/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/pnrjson/pkg/render
// [render/schematic]: https://pkg.go.dev/github.com/matzehuels/pnrjson/pkg/render/schematic
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/pnrjson/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/pnrjson/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/pnrjson/pkg/config
// [metrics]: https://pkg.go.dev/github.com/matzehuels/pnrjson/pkg/metrics
// [observability]: https://pkg.go.dev/github.com/matzehuels/pnrjson/pkg/observability
package pkg
