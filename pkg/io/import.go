package io

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/pnrjson/pkg/errors"
	"github.com/matzehuels/pnrjson/pkg/jsonwrite"
	"github.com/matzehuels/pnrjson/pkg/netlist"
)

const (
	// busBitsPerPort and busSlack bound how many bus positions, gaps
	// included, a description may declare relative to its port count.
	busBitsPerPort = 8
	busSlack       = 64
)

// Format is a design description syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "toml", "yaml" and "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "toml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown description format %q (want toml or yaml)", s)
}

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "%s: cannot tell format without an extension", path)
	}
	return ParseFormat(ext)
}

type description struct {
	Module     string         `toml:"module,omitempty" yaml:"module,omitempty"`
	Settings   map[string]any `toml:"settings,omitempty" yaml:"settings,omitempty"`
	Attributes map[string]any `toml:"attributes,omitempty" yaml:"attributes,omitempty"`
	Nets       []netDesc      `toml:"nets,omitempty" yaml:"nets,omitempty"`
	Ports      []portDesc     `toml:"ports,omitempty" yaml:"ports,omitempty"`
	Cells      []cellDesc     `toml:"cells,omitempty" yaml:"cells,omitempty"`
}

type netDesc struct {
	Name       string         `toml:"name" yaml:"name"`
	Attributes map[string]any `toml:"attributes,omitempty" yaml:"attributes,omitempty"`
}

type portDesc struct {
	Name      string `toml:"name" yaml:"name"`
	Direction string `toml:"direction" yaml:"direction"`
	Net       string `toml:"net,omitempty" yaml:"net,omitempty"`
}

type cellDesc struct {
	Name       string         `toml:"name" yaml:"name"`
	Type       string         `toml:"type" yaml:"type"`
	Parameters map[string]any `toml:"parameters,omitempty" yaml:"parameters,omitempty"`
	Attributes map[string]any `toml:"attributes,omitempty" yaml:"attributes,omitempty"`
	Ports      []portDesc     `toml:"ports,omitempty" yaml:"ports,omitempty"`
}

// ReadDesign decodes a design description from r.
//
// The returned design is independent of r. ReadDesign does not close r.
func ReadDesign(r io.Reader, format Format) (*netlist.Design, error) {
	var desc description
	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&desc)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode toml")
		}
		if extra := md.Undecoded(); len(extra) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown key %s", extra[0])
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&desc); err != nil && err != io.EOF {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown description format %q", format)
	}
	return build(&desc)
}

// ImportDesign reads the description file at path. The format comes from
// the file extension.
func ImportDesign(path string) (*netlist.Design, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()

	d, err := ReadDesign(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func build(desc *description) (*netlist.Design, error) {
	if err := checkBusWidths(desc.Ports); err != nil {
		return nil, err
	}
	d := netlist.New()

	if desc.Module != "" {
		d.Attrs.Set(d.ID("module"), netlist.StringProperty(desc.Module))
	}
	if err := setProperties(d, &d.Settings, desc.Settings); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	if err := setProperties(d, &d.Attrs, desc.Attributes); err != nil {
		return nil, fmt.Errorf("attributes: %w", err)
	}

	for _, n := range desc.Nets {
		if err := errors.ValidateName("net", n.Name); err != nil {
			return nil, err
		}
		net, err := d.AddNet(n.Name)
		if err != nil {
			return nil, invalid(err)
		}
		if err := setProperties(d, &net.Attrs, n.Attributes); err != nil {
			return nil, fmt.Errorf("net %s: %w", n.Name, err)
		}
	}

	for _, p := range desc.Ports {
		if err := addPort(d, p); err != nil {
			return nil, err
		}
	}

	for _, c := range desc.Cells {
		if err := addCell(d, c); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func addPort(d *netlist.Design, p portDesc) error {
	if err := errors.ValidateName("port", p.Name); err != nil {
		return err
	}
	dir, err := netlist.ParsePortType(p.Direction)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDesign, err, "port %s", p.Name)
	}
	net := p.Net
	if net == "" {
		net = p.Name
	}
	if err := ensureNet(d, net); err != nil {
		return err
	}
	if _, err := d.AddPort(p.Name, dir, net); err != nil {
		return invalid(err)
	}
	return nil
}

func addCell(d *netlist.Design, c cellDesc) error {
	if err := errors.ValidateName("cell", c.Name); err != nil {
		return err
	}
	if c.Type == "" {
		return errors.New(errors.ErrCodeInvalidDesign, "cell %s: missing type", c.Name)
	}
	cell, err := d.AddCell(c.Name, c.Type)
	if err != nil {
		return invalid(err)
	}
	if err := setProperties(d, &cell.Params, c.Parameters); err != nil {
		return fmt.Errorf("cell %s parameters: %w", c.Name, err)
	}
	if err := setProperties(d, &cell.Attrs, c.Attributes); err != nil {
		return fmt.Errorf("cell %s attributes: %w", c.Name, err)
	}
	for _, p := range c.Ports {
		if err := errors.ValidateName("cell port", p.Name); err != nil {
			return fmt.Errorf("cell %s: %w", c.Name, err)
		}
		dir, err := netlist.ParsePortType(p.Direction)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDesign, err, "cell %s port %s", c.Name, p.Name)
		}
		if _, err := d.AddCellPort(cell, p.Name, dir); err != nil {
			return invalid(err)
		}
		if p.Net == "" {
			continue
		}
		if err := ensureNet(d, p.Net); err != nil {
			return err
		}
		if err := d.Connect(cell, p.Name, p.Net); err != nil {
			return invalid(err)
		}
	}
	return nil
}

// ensureNet declares net unless it already exists.
func ensureNet(d *netlist.Design, net string) error {
	if _, ok := d.Net(net); ok {
		return nil
	}
	if err := errors.ValidateName("net", net); err != nil {
		return err
	}
	if _, err := d.AddNet(net); err != nil {
		return invalid(err)
	}
	return nil
}

func setProperties(d *netlist.Design, m *netlist.PropertyMap, values map[string]any) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if k == "" {
			return errors.New(errors.ErrCodeInvalidDesign, "empty property name")
		}
		p, err := toProperty(values[k])
		if err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		m.Set(d.ID(k), p)
	}
	return nil
}

const bitsPrefix = "0b"

func toProperty(v any) (netlist.Property, error) {
	switch v := v.(type) {
	case string:
		if rest, ok := strings.CutPrefix(v, bitsPrefix); ok {
			p, err := netlist.BitsProperty(rest)
			if err != nil {
				return netlist.Property{}, errors.Wrap(errors.ErrCodeInvalidDesign, err, "bit vector %q", v)
			}
			return p, nil
		}
		return netlist.StringProperty(v), nil
	case bool:
		if v {
			return netlist.IntProperty(1, 1), nil
		}
		return netlist.IntProperty(0, 1), nil
	case int:
		return intProperty(int64(v)), nil
	case int64:
		return intProperty(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return netlist.Property{}, errors.New(errors.ErrCodeInvalidDesign, "integer %d out of range", v)
		}
		return intProperty(int64(v)), nil
	}
	return netlist.Property{}, errors.New(errors.ErrCodeInvalidDesign, "unsupported value %v (%T)", v, v)
}

func intProperty(v int64) netlist.Property {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return netlist.IntProperty(v, 64)
	}
	return netlist.Int(v)
}

// invalid tags a netlist builder error as an invalid design.
func invalid(err error) error {
	return errors.Wrap(errors.ErrCodeInvalidDesign, err, "invalid design")
}

// checkBusWidths rejects descriptions whose "base[N]" port names would
// expand into far more bus positions than there are ports.
func checkBusWidths(ports []portDesc) error {
	widths := make(map[string]int)
	total := 0
	for _, p := range ports {
		base, idx, ok := jsonwrite.SplitBusName(p.Name)
		if !ok {
			continue
		}
		if w := widths[base]; idx >= w {
			total += idx + 1 - w
			widths[base] = idx + 1
		}
	}
	if limit := busBitsPerPort*len(ports) + busSlack; total > limit {
		return errors.New(errors.ErrCodeInvalidDesign,
			"bus ports span %d bit positions for %d ports (limit %d)", total, len(ports), limit)
	}
	return nil
}
