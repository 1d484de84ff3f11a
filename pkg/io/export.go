package io

import (
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/pnrjson/pkg/errors"
	"github.com/matzehuels/pnrjson/pkg/netlist"
)

// WriteDescription encodes d as a design description and writes it to w.
// The output can be read back with [ReadDesign]. Property tables come out
// sorted by key, and a string property that starts with "0b" reads back as
// a bit vector.
func WriteDescription(w io.Writer, d *netlist.Design, format Format) error {
	desc := describe(d)
	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(desc); err != nil {
			return errors.Wrap(errors.ErrCodeWriteFailed, err, "encode toml")
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(desc); err != nil {
			return errors.Wrap(errors.ErrCodeWriteFailed, err, "encode yaml")
		}
		if err := enc.Close(); err != nil {
			return errors.Wrap(errors.ErrCodeWriteFailed, err, "encode yaml")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown description format %q", format)
	}
	return nil
}

// ExportDescription writes d to a description file at path. The format
// comes from the file extension.
func ExportDescription(d *netlist.Design, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeSinkUnavailable, err, "create %s", path)
	}
	defer f.Close()
	return WriteDescription(f, d, format)
}

func describe(d *netlist.Design) *description {
	desc := &description{
		Settings:   properties(d, &d.Settings),
		Attributes: properties(d, &d.Attrs),
	}
	if id, ok := d.LookupID("module"); ok {
		if v, ok := d.Attrs.Get(id); ok {
			desc.Module = v.AsString()
			delete(desc.Attributes, "module")
			if len(desc.Attributes) == 0 {
				desc.Attributes = nil
			}
		}
	}

	for _, n := range d.Nets() {
		desc.Nets = append(desc.Nets, netDesc{Name: d.Str(n.Name), Attributes: properties(d, &n.Attrs)})
	}
	for _, p := range d.Ports() {
		pd := portDesc{Name: d.Str(p.Name), Direction: p.Type.String(), Net: d.Str(p.Net)}
		if pd.Net == pd.Name {
			pd.Net = ""
		}
		desc.Ports = append(desc.Ports, pd)
	}
	for _, c := range d.Cells() {
		cd := cellDesc{
			Name:       d.Str(c.Name),
			Type:       d.Str(c.Type),
			Parameters: properties(d, &c.Params),
			Attributes: properties(d, &c.Attrs),
		}
		for _, p := range c.Ports() {
			pd := portDesc{Name: d.Str(p.Name), Direction: p.Type.String()}
			if p.Connected() {
				pd.Net = d.Str(p.Net)
			}
			cd.Ports = append(cd.Ports, pd)
		}
		desc.Cells = append(desc.Cells, cd)
	}
	return desc
}

func properties(d *netlist.Design, m *netlist.PropertyMap) map[string]any {
	if m.Len() == 0 {
		return nil
	}
	out := make(map[string]any, m.Len())
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		out[d.Str(k)] = fromProperty(v)
	}
	return out
}

func fromProperty(p netlist.Property) any {
	switch {
	case p.IsString():
		return p.AsString()
	case p.Size() == 32 && p.IsFullyDefined():
		return int64(int32(p.AsInt64()))
	case p.Size() == 64 && p.IsFullyDefined():
		if v := p.AsInt64(); int64(int32(v)) != v {
			return v
		}
	}
	return bitsPrefix + p.String()
}
