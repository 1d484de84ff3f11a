package netlist

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrInvalidName is returned by the Add methods when a name is empty.
	ErrInvalidName = errors.New("name must not be empty")

	// ErrDuplicateName is returned when a port, cell, net or cell port with the
	// same name already exists in its scope.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrUnknownNet is returned when a port or connection refers to a net that
	// has not been added.
	ErrUnknownNet = errors.New("unknown net")

	// ErrUnknownPort is returned by [Design.Connect] when the cell has no
	// port with the given name.
	ErrUnknownPort = errors.New("unknown cell port")
)

// PortType is the direction of a module or cell port.
type PortType int

const (
	// PortIn is an input port.
	PortIn PortType = iota
	// PortOut is an output port.
	PortOut
	// PortInout is a bidirectional port.
	PortInout
)

// String returns "input", "output" or "inout".
func (t PortType) String() string {
	switch t {
	case PortIn:
		return "input"
	case PortInout:
		return "inout"
	default:
		return "output"
	}
}

// ParsePortType accepts the long ("input") and short ("in") spellings.
func ParsePortType(s string) (PortType, error) {
	switch s {
	case "input", "in":
		return PortIn, nil
	case "output", "out":
		return PortOut, nil
	case "inout":
		return PortInout, nil
	}
	return 0, fmt.Errorf("unknown port direction %q", s)
}

// Port is a top-level module port carrying one net bit.
type Port struct {
	Name IdString
	Type PortType
	Net  IdString // name of the carried net
}

// Bit returns the index of the net the port carries.
func (p *Port) Bit() int { return p.Net.Index() }

// CellPort is a named pin on a cell instance.
type CellPort struct {
	Name IdString
	Type PortType
	Net  IdString // zero when unconnected
}

// Connected reports whether the pin is attached to a net.
func (p *CellPort) Connected() bool { return p.Net != 0 }

// Cell is an instance of a typed circuit element.
type Cell struct {
	Name   IdString
	Type   IdString
	Params PropertyMap
	Attrs  PropertyMap

	ports     []*CellPort
	portIndex map[IdString]*CellPort
}

// Ports returns the cell's pins in declaration order.
func (c *Cell) Ports() []*CellPort { return slices.Clone(c.ports) }

// Port looks up a pin by name handle.
func (c *Cell) Port(name IdString) (*CellPort, bool) {
	p, ok := c.portIndex[name]
	return p, ok
}

// Net is a single signal bit.
type Net struct {
	Name  IdString
	Attrs PropertyMap
}

// Index returns the net's globally unique bit index.
func (n *Net) Index() int { return n.Name.Index() }

// Design is a flattened module: settings, attributes, ports, cells and nets.
//
// The zero value is not usable - use [New].
type Design struct {
	Settings PropertyMap
	Attrs    PropertyMap

	ids *idPool

	ports     []*Port
	portIndex map[IdString]*Port
	cells     []*Cell
	cellIndex map[IdString]*Cell
	nets      []*Net
	netIndex  map[IdString]*Net
}

// New creates an empty design.
func New() *Design {
	return &Design{
		ids:       newIDPool(),
		portIndex: make(map[IdString]*Port),
		cellIndex: make(map[IdString]*Cell),
		netIndex:  make(map[IdString]*Net),
	}
}

// ID interns s and returns its handle.
func (d *Design) ID(s string) IdString { return d.ids.intern(s) }

// LookupID returns the handle for s without interning it.
func (d *Design) LookupID(s string) (IdString, bool) { return d.ids.lookup(s) }

// Str resolves a handle to its text. Unknown handles resolve to "".
func (d *Design) Str(id IdString) string { return d.ids.str(id) }

// AddNet adds a single-bit net.
func (d *Design) AddNet(name string) (*Net, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	id := d.ID(name)
	if _, exists := d.netIndex[id]; exists {
		return nil, fmt.Errorf("net %s: %w", name, ErrDuplicateName)
	}
	n := &Net{Name: id}
	d.nets = append(d.nets, n)
	d.netIndex[id] = n
	return n, nil
}

// AddPort adds a top-level port carrying the named net, which must exist.
func (d *Design) AddPort(name string, t PortType, net string) (*Port, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	id := d.ID(name)
	if _, exists := d.portIndex[id]; exists {
		return nil, fmt.Errorf("port %s: %w", name, ErrDuplicateName)
	}
	n, ok := d.Net(net)
	if !ok {
		return nil, fmt.Errorf("port %s: net %s: %w", name, net, ErrUnknownNet)
	}
	p := &Port{Name: id, Type: t, Net: n.Name}
	d.ports = append(d.ports, p)
	d.portIndex[id] = p
	return p, nil
}

// AddCell adds a cell instance of the given type.
func (d *Design) AddCell(name, typ string) (*Cell, error) {
	if name == "" || typ == "" {
		return nil, ErrInvalidName
	}
	id := d.ID(name)
	if _, exists := d.cellIndex[id]; exists {
		return nil, fmt.Errorf("cell %s: %w", name, ErrDuplicateName)
	}
	c := &Cell{Name: id, Type: d.ID(typ), portIndex: make(map[IdString]*CellPort)}
	d.cells = append(d.cells, c)
	d.cellIndex[id] = c
	return c, nil
}

// AddCellPort adds an unconnected pin to c.
func (d *Design) AddCellPort(c *Cell, name string, t PortType) (*CellPort, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	id := d.ID(name)
	if _, exists := c.portIndex[id]; exists {
		return nil, fmt.Errorf("cell %s port %s: %w", d.Str(c.Name), name, ErrDuplicateName)
	}
	p := &CellPort{Name: id, Type: t}
	c.ports = append(c.ports, p)
	c.portIndex[id] = p
	return p, nil
}

// Connect attaches pin port of c to the named net. An empty net name
// disconnects the pin.
func (d *Design) Connect(c *Cell, port, net string) error {
	pid, ok := d.LookupID(port)
	if !ok {
		return fmt.Errorf("cell %s port %s: %w", d.Str(c.Name), port, ErrUnknownPort)
	}
	p, ok := c.Port(pid)
	if !ok {
		return fmt.Errorf("cell %s port %s: %w", d.Str(c.Name), port, ErrUnknownPort)
	}
	if net == "" {
		p.Net = 0
		return nil
	}
	n, ok := d.Net(net)
	if !ok {
		return fmt.Errorf("cell %s port %s: net %s: %w", d.Str(c.Name), port, net, ErrUnknownNet)
	}
	p.Net = n.Name
	return nil
}

// Net looks up a net by name.
func (d *Design) Net(name string) (*Net, bool) {
	id, ok := d.LookupID(name)
	if !ok {
		return nil, false
	}
	n, ok := d.netIndex[id]
	return n, ok
}

// NetByID looks up a net by name handle.
func (d *Design) NetByID(id IdString) (*Net, bool) {
	n, ok := d.netIndex[id]
	return n, ok
}

// Cell looks up a cell by name.
func (d *Design) Cell(name string) (*Cell, bool) {
	id, ok := d.LookupID(name)
	if !ok {
		return nil, false
	}
	c, ok := d.cellIndex[id]
	return c, ok
}

// Ports returns the top-level ports in declaration order.
func (d *Design) Ports() []*Port { return slices.Clone(d.ports) }

// Cells returns the cells in declaration order.
func (d *Design) Cells() []*Cell { return slices.Clone(d.cells) }

// Nets returns the nets in declaration order.
func (d *Design) Nets() []*Net { return slices.Clone(d.nets) }
