// Package pipeline provides the load → export → render pipeline shared by
// the CLI and the HTTP service.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read a design description into a netlist.Design
//  2. Export: Write the JSON netlist document
//  3. Render: Draw the design as a schematic (SVG, DOT, PDF, PNG)
//
// Export and render results are cached by the hash of the description and
// the options that shape the output.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	src, err := runner.Load(ctx, "blinky.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := runner.Execute(ctx, src, pipeline.Options{Formats: []string{"json", "svg"}})
//	netlist := result.Artifacts["json"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pnrjson/pkg/buildinfo"
	"github.com/matzehuels/pnrjson/pkg/cache"
	"github.com/matzehuels/pnrjson/pkg/errors"
	"github.com/matzehuels/pnrjson/pkg/jsonwrite"
	"github.com/matzehuels/pnrjson/pkg/netlist"
	"github.com/matzehuels/pnrjson/pkg/render"
)

// =============================================================================
// Default Values
// =============================================================================

// DefaultScale is the PNG scale factor.
const DefaultScale = 2.0

// FormatJSON selects the JSON netlist. The other formats are render.Format values.
const FormatJSON = "json"

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON:              true,
	string(render.FormatSVG): true,
	string(render.FormatDOT): true,
	string(render.FormatPDF): true,
	string(render.FormatPNG): true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Export options
	Creator      string `json:"creator,omitempty"`
	Order        string `json:"order,omitempty"`
	StrictQuotes bool   `json:"strict_quotes,omitempty"`
	Gzip         bool   `json:"gzip,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
	Scale    float64  `json:"scale,omitempty"`

	// Refresh bypasses cached artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Source is a loaded design and the hash of the description it came from.
type Source struct {
	Path   string
	Design *netlist.Design
	Hash   string
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Artifacts contains outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Ports      int
	Cells      int
	Nets       int
	ExportTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ExportHit bool // Whether the netlist came from cache
	RenderHit bool // Whether all schematics came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: json, svg, dot, pdf, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and fills in defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if _, err := netlist.ParseOrder(o.Order); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid order")
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Creator == "" {
		o.Creator = buildinfo.Creator()
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ExportOptions returns the exporter settings. Call ValidateAndSetDefaults first.
func (o *Options) ExportOptions() jsonwrite.Options {
	order, _ := netlist.ParseOrder(o.Order)
	return jsonwrite.Options{
		Creator:      o.Creator,
		Order:        order,
		StrictQuotes: o.StrictQuotes,
		Gzip:         o.Gzip,
		Logger:       o.Logger,
	}
}

// ArtifactKeyOpts returns cache key options for format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	if format == FormatJSON {
		return cache.ArtifactKeyOpts{
			Kind:         format,
			Creator:      o.Creator,
			Order:        o.Order,
			StrictQuotes: o.StrictQuotes,
			Gzip:         o.Gzip,
		}
	}
	k := cache.ArtifactKeyOpts{Kind: format, Detailed: o.Detailed}
	if format == string(render.FormatPNG) {
		k.Scale = o.Scale
	}
	return k
}
