package jsonwrite

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/gzip"

	"github.com/matzehuels/pnrjson/pkg/buildinfo"
	"github.com/matzehuels/pnrjson/pkg/errors"
	"github.com/matzehuels/pnrjson/pkg/netlist"
)

// DefaultModuleName is used when the design has no "module" attribute.
const DefaultModuleName = "top"

// Options controls document generation.
type Options struct {
	// Creator is written as the "creator" value. Empty means
	// [buildinfo.Creator].
	Creator string
	// Order selects the enumeration order of ports, cells, nets, pins and
	// property keys.
	Order netlist.Order
	// StrictQuotes escapes every string with [QuoteStrict] instead of [Quote].
	StrictQuotes bool
	// Gzip compresses the document before it reaches the sink.
	Gzip bool
	// Logger receives warnings about suspicious but writable input, such as
	// a bus whose bits disagree on direction. Nil disables them.
	Logger *log.Logger
}

// DefaultOptions returns the legacy-compatible settings.
func DefaultOptions() Options {
	return Options{Creator: buildinfo.Creator(), Order: netlist.OrderDeclaration}
}

// Write streams d to w as a JSON netlist document.
//
// A nil w fails with SINK_UNAVAILABLE before anything is written. Any write
// error aborts the pass and is returned with code WRITE_FAILED; bytes
// already written stay on the sink.
func Write(w io.Writer, d *netlist.Design, opts Options) (err error) {
	if w == nil {
		return errors.New(errors.ErrCodeSinkUnavailable, "no output sink")
	}
	if d == nil {
		return errors.New(errors.ErrCodeInvalidInput, "no design")
	}
	if opts.Creator == "" {
		opts.Creator = buildinfo.Creator()
	}

	if opts.Gzip {
		zw := gzip.NewWriter(w)
		defer func() {
			if cerr := zw.Close(); err == nil && cerr != nil {
				err = errors.Wrap(errors.ErrCodeWriteFailed, cerr, "finish gzip stream")
			}
		}()
		w = zw
	}

	dw := &docWriter{
		writer: writer{out: w, quote: Quote},
		d:      d,
		opts:   opts,
	}
	if opts.StrictQuotes {
		dw.quote = QuoteStrict
	}
	if err := dw.document(); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, err, "write netlist")
	}
	return nil
}

// Export writes d to w and reports success. On failure it logs a single
// error line to logger, or to the default logger when logger is nil.
func Export(w io.Writer, d *netlist.Design, opts Options, logger *log.Logger) bool {
	if logger == nil {
		logger = log.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logger
	}
	if err := Write(w, d, opts); err != nil {
		logger.Error("Failed to write JSON netlist", "err", err)
		return false
	}
	return true
}

// ExportFile writes d to path through a buffered writer. A path ending in
// ".gz" is compressed regardless of opts.Gzip.
func ExportFile(path string, d *netlist.Design, opts Options) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeSinkUnavailable, err, "failed to open JSON file %s", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(errors.ErrCodeWriteFailed, cerr, "close %s", path)
		}
	}()

	if strings.HasSuffix(path, ".gz") {
		opts.Gzip = true
	}
	bw := bufio.NewWriter(f)
	if err := Write(bw, d, opts); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, err, "flush %s", path)
	}
	return nil
}

// docWriter holds the state of one document pass.
type docWriter struct {
	writer
	d    *netlist.Design
	opts Options
}

func (w *docWriter) document() error {
	top, err := w.object(0)
	if err != nil {
		return err
	}
	if err := top.field("creator", w.quote(w.opts.Creator)); err != nil {
		return err
	}
	if err := top.key("modules"); err != nil {
		return err
	}
	modules, err := w.object(1)
	if err != nil {
		return err
	}
	if err := modules.key(ModuleName(w.d)); err != nil {
		return err
	}
	if err := w.module(); err != nil {
		return err
	}
	if err := modules.end(); err != nil {
		return err
	}
	if err := top.end(); err != nil {
		return err
	}
	return w.raw("\n")
}

// ModuleName returns the design's "module" attribute, or [DefaultModuleName].
func ModuleName(d *netlist.Design) string {
	if id, ok := d.LookupID("module"); ok {
		if v, ok := d.Attrs.Get(id); ok {
			return v.AsString()
		}
	}
	return DefaultModuleName
}

func (w *docWriter) module() error {
	body, err := w.object(2)
	if err != nil {
		return err
	}
	if err := body.key("settings"); err != nil {
		return err
	}
	if err := w.properties(&w.d.Settings, 3); err != nil {
		return err
	}
	if err := body.key("attributes"); err != nil {
		return err
	}
	if err := w.properties(&w.d.Attrs, 3); err != nil {
		return err
	}
	if err := body.key("ports"); err != nil {
		return err
	}
	if err := w.ports(); err != nil {
		return err
	}
	if err := body.key("cells"); err != nil {
		return err
	}
	if err := w.cells(); err != nil {
		return err
	}
	if err := body.key("netnames"); err != nil {
		return err
	}
	if err := w.netnames(); err != nil {
		return err
	}
	return body.end()
}

// properties writes m as an object at depth.
func (w *docWriter) properties(m *netlist.PropertyMap, depth int) error {
	obj, err := w.object(depth)
	if err != nil {
		return err
	}
	for _, k := range w.d.KeysIn(m, w.opts.Order) {
		v, _ := m.Get(k)
		if err := obj.field(w.d.Str(k), formatValue(v, w.quote)); err != nil {
			return err
		}
	}
	return obj.end()
}

func (w *docWriter) ports() error {
	obj, err := w.object(3)
	if err != nil {
		return err
	}
	for _, g := range GroupPorts(w.d, w.d.PortsIn(w.opts.Order)) {
		warnMixedDirection(w.opts.Logger, g)
		if err := obj.key(g.Name); err != nil {
			return err
		}
		body, err := w.object(4)
		if err != nil {
			return err
		}
		if err := body.field("direction", w.quote(g.Dir.String())); err != nil {
			return err
		}
		if err := body.key("bits"); err != nil {
			return err
		}
		if err := w.portBits(g.Bits); err != nil {
			return err
		}
		if err := body.end(); err != nil {
			return err
		}
	}
	return obj.end()
}

// WarnMixedDirections logs the warning Write emits for every bus of d whose
// bits disagree on direction. It lets callers that replay a previously
// written document report the same condition.
func WarnMixedDirections(d *netlist.Design, o netlist.Order, logger *log.Logger) {
	for _, g := range GroupPorts(d, d.PortsIn(o)) {
		warnMixedDirection(logger, g)
	}
}

func warnMixedDirection(logger *log.Logger, g PortGroup) {
	if g.MixedDirection && logger != nil {
		logger.Warn("Bus port bits disagree on direction; keeping the first", "port", g.Name, "direction", g.Dir)
	}
}

func (w *docWriter) portBits(bits []int) error {
	arr, err := w.array()
	if err != nil {
		return err
	}
	for _, b := range bits {
		v := `"x"`
		if b != Placeholder {
			v = strconv.Itoa(b)
		}
		if err := arr.item(v); err != nil {
			return err
		}
	}
	return arr.end()
}

func (w *docWriter) cells() error {
	obj, err := w.object(3)
	if err != nil {
		return err
	}
	for _, c := range w.d.CellsIn(w.opts.Order) {
		name := w.d.Str(c.Name)
		if err := obj.key(name); err != nil {
			return err
		}
		if err := w.cell(c, name); err != nil {
			return err
		}
	}
	return obj.end()
}

func (w *docWriter) cell(c *netlist.Cell, name string) error {
	body, err := w.object(4)
	if err != nil {
		return err
	}
	if err := body.field("hide_name", hideName(name)); err != nil {
		return err
	}
	if err := body.field("type", w.quote(w.d.Str(c.Type))); err != nil {
		return err
	}
	if err := body.key("parameters"); err != nil {
		return err
	}
	if err := w.properties(&c.Params, 5); err != nil {
		return err
	}
	if err := body.key("attributes"); err != nil {
		return err
	}
	if err := w.properties(&c.Attrs, 5); err != nil {
		return err
	}

	pins := w.d.CellPortsIn(c, w.opts.Order)
	if err := body.key("port_directions"); err != nil {
		return err
	}
	dirs, err := w.object(5)
	if err != nil {
		return err
	}
	for _, p := range pins {
		if err := dirs.field(w.d.Str(p.Name), w.quote(p.Type.String())); err != nil {
			return err
		}
	}
	if err := dirs.end(); err != nil {
		return err
	}

	if err := body.key("connections"); err != nil {
		return err
	}
	conns, err := w.object(5)
	if err != nil {
		return err
	}
	for _, p := range pins {
		v := "[ ]"
		if p.Connected() {
			v = "[ " + strconv.Itoa(p.Net.Index()) + " ]"
		}
		if err := conns.field(w.d.Str(p.Name), v); err != nil {
			return err
		}
	}
	if err := conns.end(); err != nil {
		return err
	}
	return body.end()
}

func (w *docWriter) netnames() error {
	obj, err := w.object(3)
	if err != nil {
		return err
	}
	for _, n := range w.d.NetsIn(w.opts.Order) {
		name := w.d.Str(n.Name)
		if err := obj.key(name); err != nil {
			return err
		}
		body, err := w.object(4)
		if err != nil {
			return err
		}
		if err := body.field("hide_name", hideName(name)); err != nil {
			return err
		}
		// Consumers expect the space before the comma on this line.
		if err := body.field("bits", "[ "+strconv.Itoa(n.Index())+" ] "); err != nil {
			return err
		}
		if err := body.key("attributes"); err != nil {
			return err
		}
		if err := w.properties(&n.Attrs, 5); err != nil {
			return err
		}
		if err := body.end(); err != nil {
			return err
		}
	}
	return obj.end()
}

// hideName marks auto-generated names, which start with '$'.
func hideName(name string) string {
	if strings.HasPrefix(name, "$") {
		return "1"
	}
	return "0"
}
