package jsonwrite

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	gojson "github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"

	"github.com/matzehuels/pnrjson/pkg/errors"
	"github.com/matzehuels/pnrjson/pkg/netlist"
)

const andGolden = `{
  "creator": "test",
  "modules": {
    "top": {
      "settings": {
      },
      "attributes": {
      },
      "ports": {
        "a": {
          "direction": "input",
          "bits": [ 1 ]
        },
        "y": {
          "direction": "output",
          "bits": [ 2 ]
        }
      },
      "cells": {
        "$and0": {
          "hide_name": 1,
          "type": "AND2",
          "parameters": {
            "WIDTH": 1
          },
          "attributes": {
          },
          "port_directions": {
            "A": "input",
            "Y": "output",
            "B": "input"
          },
          "connections": {
            "A": [ 1 ],
            "Y": [ 2 ],
            "B": [ ]
          }
        }
      },
      "netnames": {
        "a": {
          "hide_name": 0,
          "bits": [ 1 ] ,
          "attributes": {
            "src": "top.v:1"
          }
        },
        "y": {
          "hide_name": 0,
          "bits": [ 2 ] ,
          "attributes": {
          }
        }
      }
    }
  }
}
`

// andDesign builds a one-gate design whose ids are assigned in a fixed
// order: a=1, y=2.
func andDesign(t *testing.T) *netlist.Design {
	t.Helper()
	d := netlist.New()
	mustNets(t, d, "a", "y")
	mustPort(t, d, "a", netlist.PortIn, "a")
	mustPort(t, d, "y", netlist.PortOut, "y")

	c, err := d.AddCell("$and0", "AND2")
	if err != nil {
		t.Fatal(err)
	}
	c.Params.Set(d.ID("WIDTH"), netlist.Int(1))
	for _, p := range []struct {
		name string
		dir  netlist.PortType
	}{{"A", netlist.PortIn}, {"Y", netlist.PortOut}, {"B", netlist.PortIn}} {
		if _, err := d.AddCellPort(c, p.name, p.dir); err != nil {
			t.Fatal(err)
		}
	}
	if err := d.Connect(c, "A", "a"); err != nil {
		t.Fatal(err)
	}
	if err := d.Connect(c, "Y", "y"); err != nil {
		t.Fatal(err)
	}

	a, _ := d.Net("a")
	a.Attrs.Set(d.ID("src"), netlist.StringProperty("top.v:1"))
	return d
}

func mustNets(t *testing.T, d *netlist.Design, names ...string) {
	t.Helper()
	for _, n := range names {
		if _, err := d.AddNet(n); err != nil {
			t.Fatalf("AddNet(%q) error: %v", n, err)
		}
	}
}

func mustPort(t *testing.T, d *netlist.Design, name string, dir netlist.PortType, net string) {
	t.Helper()
	if _, err := d.AddPort(name, dir, net); err != nil {
		t.Fatalf("AddPort(%q) error: %v", name, err)
	}
}

func testOptions() Options {
	return Options{Creator: "test"}
}

func write(t *testing.T, d *netlist.Design, opts Options) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Write(&buf, d, opts); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	return buf.String()
}

func assertContains(t *testing.T, out, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Errorf("output missing %q:\n%s", want, out)
	}
}

func TestWriteGolden(t *testing.T) {
	got := write(t, andDesign(t), testOptions())
	if got != andGolden {
		t.Errorf("Write() =\n%s\nwant\n%s", got, andGolden)
	}
	// The legacy layout is still valid JSON for plain names.
	if !gojson.Valid([]byte(got)) {
		t.Error("golden output is not valid JSON")
	}
}

func TestWriteDeterministic(t *testing.T) {
	d := andDesign(t)
	if first, second := write(t, d, testOptions()), write(t, d, testOptions()); first != second {
		t.Error("two passes over the same design differ")
	}
}

func TestWriteEmptyDesign(t *testing.T) {
	want := `{
  "creator": "test",
  "modules": {
    "top": {
      "settings": {
      },
      "attributes": {
      },
      "ports": {
      },
      "cells": {
      },
      "netnames": {
      }
    }
  }
}
`
	if got := write(t, netlist.New(), testOptions()); got != want {
		t.Errorf("Write(empty) =\n%s\nwant\n%s", got, want)
	}
}

func TestWriteModuleName(t *testing.T) {
	d := netlist.New()
	d.Attrs.Set(d.ID("module"), netlist.StringProperty("blinky"))
	d.Attrs.Set(d.ID("count"), netlist.Int(-3))
	d.Settings.Set(d.ID("seed"), netlist.IntProperty(7, 4))

	out := write(t, d, testOptions())
	assertContains(t, out, "\n    \"blinky\": {\n")
	assertContains(t, out, "\"settings\": {\n        \"seed\": \"0111\"\n      },")
	assertContains(t, out, "\"module\": \"blinky\",\n        \"count\": -3\n      },")
}

func TestWriteDefaultCreator(t *testing.T) {
	out := write(t, netlist.New(), Options{})
	assertContains(t, out, `"creator": "pnrjson `)
	assertContains(t, out, `(git sha1 `)
}

func TestWriteNameOrder(t *testing.T) {
	d := netlist.New()
	for _, n := range []string{"zeta", "alpha", "mid"} {
		mustNets(t, d, n)
		if _, err := d.AddCell("u_"+n, "BUF"); err != nil {
			t.Fatal(err)
		}
	}

	decl := write(t, d, testOptions())
	opts := testOptions()
	opts.Order = netlist.OrderName
	byName := write(t, d, opts)

	before := func(out, a, b string) {
		t.Helper()
		if strings.Index(out, a) >= strings.Index(out, b) {
			t.Errorf("%s should come before %s", a, b)
		}
	}
	before(decl, `"zeta": {`, `"alpha": {`)
	before(byName, `"alpha": {`, `"mid": {`)
	before(byName, `"mid": {`, `"zeta": {`)
	before(byName, `"u_alpha": {`, `"u_zeta": {`)
}

func TestWriteBusPort(t *testing.T) {
	d := netlist.New()
	mustNets(t, d, "d0", "d2")
	mustPort(t, d, "data[2]", netlist.PortIn, "d2")
	mustPort(t, d, "data[0]", netlist.PortIn, "d0")

	assertContains(t, write(t, d, testOptions()), `"data": {
          "direction": "input",
          "bits": [ 1, "x", 2 ]
        }`)
}

func TestWriteStrictQuotes(t *testing.T) {
	d := netlist.New()
	mustNets(t, d, "say \"hi\"\n")

	if legacy := write(t, d, testOptions()); gojson.Valid([]byte(legacy)) {
		t.Error("legacy quoting of a name with quotes should not be valid JSON")
	}

	opts := testOptions()
	opts.StrictQuotes = true
	strict := write(t, d, opts)
	if !gojson.Valid([]byte(strict)) {
		t.Fatalf("strict output is not valid JSON:\n%s", strict)
	}

	var doc struct {
		Modules map[string]struct {
			Netnames map[string]struct {
				Bits []int `json:"bits"`
			} `json:"netnames"`
		} `json:"modules"`
	}
	if err := gojson.Unmarshal([]byte(strict), &doc); err != nil {
		t.Fatal(err)
	}
	if bits := doc.Modules["top"].Netnames["say \"hi\"\n"].Bits; len(bits) != 1 || bits[0] != 1 {
		t.Errorf("bits = %v, want [1]", bits)
	}
}

func readGzip(t *testing.T, r io.Reader) string {
	t.Helper()
	zr, err := gzip.NewReader(r)
	if err != nil {
		t.Fatalf("gzip.NewReader() error: %v", err)
	}
	plain, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	return string(plain)
}

func TestWriteGzip(t *testing.T) {
	opts := testOptions()
	opts.Gzip = true
	var buf bytes.Buffer
	if err := Write(&buf, andDesign(t), opts); err != nil {
		t.Fatal(err)
	}
	if got := readGzip(t, &buf); got != andGolden {
		t.Errorf("decompressed output =\n%s\nwant the golden document", got)
	}
}

func TestWriteNilSink(t *testing.T) {
	err := Write(nil, andDesign(t), testOptions())
	if !errors.Is(err, errors.ErrCodeSinkUnavailable) {
		t.Errorf("Write(nil) error = %v, want SINK_UNAVAILABLE", err)
	}
}

var errDiskFull = stderrors.New("disk full")

// failAfter accepts n bytes and then fails every write.
type failAfter struct {
	n       int
	written bytes.Buffer
}

func (f *failAfter) Write(p []byte) (int, error) {
	if f.written.Len()+len(p) > f.n {
		return 0, errDiskFull
	}
	return f.written.Write(p)
}

func TestWriteSinkFailure(t *testing.T) {
	for _, n := range []int{0, 10, 200, len(andGolden) - 1} {
		sink := &failAfter{n: n}
		err := Write(sink, andDesign(t), testOptions())
		if !errors.Is(err, errors.ErrCodeWriteFailed) || !stderrors.Is(err, errDiskFull) {
			t.Errorf("limit %d: error = %v, want WRITE_FAILED wrapping disk full", n, err)
		}
		if !strings.HasPrefix(andGolden, sink.written.String()) {
			t.Errorf("limit %d: partial output is not a prefix of the document", n)
		}
	}
}

func TestExport(t *testing.T) {
	var logs bytes.Buffer
	logger := log.New(&logs)

	var out bytes.Buffer
	if !Export(&out, andDesign(t), testOptions(), logger) {
		t.Fatal("Export() = false on a healthy sink")
	}
	if out.String() != andGolden || logs.Len() != 0 {
		t.Errorf("Export() wrote %d bytes and logged %q", out.Len(), logs.String())
	}

	if Export(&failAfter{n: 32}, andDesign(t), testOptions(), logger) {
		t.Error("Export() = true on a failing sink")
	}
	if n := strings.Count(logs.String(), "\n"); n != 1 {
		t.Errorf("logged %d lines, want one diagnostic line", n)
	}
	assertContains(t, logs.String(), "Failed to write JSON netlist")

	logs.Reset()
	if Export(nil, andDesign(t), testOptions(), logger) {
		t.Error("Export(nil) = true")
	}
	assertContains(t, logs.String(), "no output sink")
}

func mixedDesign(t *testing.T) *netlist.Design {
	t.Helper()
	d := netlist.New()
	mustNets(t, d, "q0", "q1")
	mustPort(t, d, "q[0]", netlist.PortIn, "q0")
	mustPort(t, d, "q[1]", netlist.PortOut, "q1")
	return d
}

func TestExportMixedDirectionWarns(t *testing.T) {
	var logs, out bytes.Buffer
	if !Export(&out, mixedDesign(t), testOptions(), log.New(&logs)) {
		t.Fatal("Export() = false")
	}
	assertContains(t, logs.String(), "disagree on direction")
	assertContains(t, out.String(), `"direction": "input",
          "bits": [ 1, 2 ]`)
}

func TestWarnMixedDirections(t *testing.T) {
	var logs bytes.Buffer
	WarnMixedDirections(mixedDesign(t), netlist.OrderDeclaration, log.New(&logs))
	assertContains(t, logs.String(), "disagree on direction")

	logs.Reset()
	WarnMixedDirections(andDesign(t), netlist.OrderDeclaration, log.New(&logs))
	if logs.Len() != 0 {
		t.Errorf("consistent design logged %q", logs.String())
	}

	// A nil logger is allowed.
	WarnMixedDirections(mixedDesign(t), netlist.OrderDeclaration, nil)
}

func TestExportFile(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "top.json")
	if err := ExportFile(plain, andDesign(t), testOptions()); err != nil {
		t.Fatalf("ExportFile() error: %v", err)
	}
	got, err := os.ReadFile(plain)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != andGolden {
		t.Errorf("%s =\n%s\nwant the golden document", plain, got)
	}

	zipped := filepath.Join(dir, "top.json.gz")
	if err := ExportFile(zipped, andDesign(t), testOptions()); err != nil {
		t.Fatalf("ExportFile(.gz) error: %v", err)
	}
	f, err := os.Open(zipped)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if got := readGzip(t, f); got != andGolden {
		t.Errorf("%s decompressed =\n%s\nwant the golden document", zipped, got)
	}
}

func TestExportFileUnwritable(t *testing.T) {
	err := ExportFile(filepath.Join(t.TempDir(), "missing", "top.json"), andDesign(t), testOptions())
	if !errors.Is(err, errors.ErrCodeSinkUnavailable) {
		t.Errorf("ExportFile() error = %v, want SINK_UNAVAILABLE", err)
	}
}
