package netlist

import (
	"errors"
	"slices"
	"testing"
)

func buildAnd(t *testing.T) *Design {
	t.Helper()
	d := New()
	for _, n := range []string{"y", "a", "b"} {
		if _, err := d.AddNet(n); err != nil {
			t.Fatalf("AddNet(%q) error: %v", n, err)
		}
	}
	for _, p := range []struct {
		name string
		dir  PortType
	}{{"a", PortIn}, {"b", PortIn}, {"y", PortOut}} {
		if _, err := d.AddPort(p.name, p.dir, p.name); err != nil {
			t.Fatalf("AddPort(%q) error: %v", p.name, err)
		}
	}

	c, err := d.AddCell("and0", "AND2")
	if err != nil {
		t.Fatalf("AddCell() error: %v", err)
	}
	for _, p := range []struct {
		name string
		dir  PortType
	}{{"A", PortIn}, {"B", PortIn}, {"Y", PortOut}} {
		if _, err := d.AddCellPort(c, p.name, p.dir); err != nil {
			t.Fatalf("AddCellPort(%q) error: %v", p.name, err)
		}
	}
	if err := d.Connect(c, "A", "a"); err != nil {
		t.Fatal(err)
	}
	if err := d.Connect(c, "Y", "y"); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestDesignBuild(t *testing.T) {
	d := buildAnd(t)

	if len(d.Ports()) != 3 || len(d.Nets()) != 3 || len(d.Cells()) != 1 {
		t.Fatalf("design has %d ports, %d nets, %d cells; want 3, 3, 1", len(d.Ports()), len(d.Nets()), len(d.Cells()))
	}

	a, ok := d.Net("a")
	if !ok {
		t.Fatal("net a missing")
	}
	port := d.Ports()[0]
	if got := d.Str(port.Name); got != "a" {
		t.Errorf("port 0 = %q, want a", got)
	}
	if port.Bit() != a.Index() {
		t.Errorf("port a bit = %d, want %d", port.Bit(), a.Index())
	}

	c, ok := d.Cell("and0")
	if !ok {
		t.Fatal("cell and0 missing")
	}
	if got := d.Str(c.Type); got != "AND2" {
		t.Errorf("and0 type = %q, want AND2", got)
	}

	pins := c.Ports()
	if len(pins) != 3 {
		t.Fatalf("len(and0.Ports()) = %d, want 3", len(pins))
	}
	if !pins[0].Connected() || pins[0].Net != a.Name {
		t.Errorf("pin A net = %v, want %v", pins[0].Net, a.Name)
	}
	if pins[1].Connected() {
		t.Error("pin B should be unconnected")
	}
}

func TestBitIndicesUnique(t *testing.T) {
	d := buildAnd(t)
	seen := map[int]bool{}
	for _, n := range d.Nets() {
		if seen[n.Index()] {
			t.Errorf("duplicate bit index %d", n.Index())
		}
		seen[n.Index()] = true
	}
}

func TestNetIndexIsNameHandle(t *testing.T) {
	d := New()
	first, err := d.AddNet("n0")
	if err != nil {
		t.Fatal(err)
	}
	// Handle 0 is the empty string, which marks unconnected pins.
	if first.Index() != 1 {
		t.Errorf("first net index = %d, want 1", first.Index())
	}

	// Any string interned earlier, net or not, shifts later indices.
	d.ID("unrelated")
	second, err := d.AddNet("n1")
	if err != nil {
		t.Fatal(err)
	}
	if second.Index() != 3 {
		t.Errorf("second net index = %d, want 3", second.Index())
	}
	if second.Index() != second.Name.Index() {
		t.Errorf("Index() = %d, want the name handle %d", second.Index(), second.Name.Index())
	}
}

func TestDesignErrors(t *testing.T) {
	d := buildAnd(t)
	c, _ := d.Cell("and0")

	_, errNet := d.AddNet("a")
	_, errEmpty := d.AddNet("")
	_, errUnknown := d.AddPort("z", PortIn, "nope")
	_, errPort := d.AddPort("a", PortIn, "a")
	_, errPin := d.AddCellPort(c, "A", PortIn)

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"duplicate net", errNet, ErrDuplicateName},
		{"empty net name", errEmpty, ErrInvalidName},
		{"port on unknown net", errUnknown, ErrUnknownNet},
		{"duplicate port", errPort, ErrDuplicateName},
		{"duplicate pin", errPin, ErrDuplicateName},
		{"connect unknown pin", d.Connect(c, "Q", "a"), ErrUnknownPort},
		{"connect unknown net", d.Connect(c, "B", "nope"), ErrUnknownNet},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, tt.want) {
			t.Errorf("%s: error = %v, want %v", tt.name, tt.err, tt.want)
		}
	}

	if err := d.Connect(c, "A", ""); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if pin, _ := c.Port(d.ID("A")); pin.Connected() {
		t.Error("pin A should be disconnected")
	}
}

func TestOrder(t *testing.T) {
	d := buildAnd(t)

	var ports []string
	for _, p := range d.PortsIn(OrderDeclaration) {
		ports = append(ports, d.Str(p.Name))
	}
	if want := []string{"a", "b", "y"}; !slices.Equal(ports, want) {
		t.Errorf("PortsIn(declaration) = %v, want %v", ports, want)
	}

	var nets []string
	for _, n := range d.NetsIn(OrderName) {
		nets = append(nets, d.Str(n.Name))
	}
	if want := []string{"a", "b", "y"}; !slices.Equal(nets, want) {
		t.Errorf("NetsIn(name) = %v, want %v", nets, want)
	}
	if got := d.Str(d.Nets()[0].Name); got != "y" {
		t.Errorf("Nets()[0] = %q, want y; NetsIn must not reorder the design", got)
	}

	d.Attrs.Set(d.ID("zeta"), Int(1))
	d.Attrs.Set(d.ID("alpha"), Int(2))
	if got := d.Str(d.KeysIn(&d.Attrs, OrderName)[0]); got != "alpha" {
		t.Errorf("first key by name = %q, want alpha", got)
	}
	if got := d.Str(d.KeysIn(&d.Attrs, OrderDeclaration)[0]); got != "zeta" {
		t.Errorf("first key by declaration = %q, want zeta", got)
	}
}

func TestParse(t *testing.T) {
	if o, err := ParseOrder("name"); err != nil || o != OrderName {
		t.Errorf("ParseOrder(name) = %v, %v; want name", o, err)
	}
	if _, err := ParseOrder("random"); err == nil {
		t.Error("ParseOrder(random) should fail")
	}

	for s, want := range map[string]PortType{"input": PortIn, "out": PortOut, "inout": PortInout} {
		got, err := ParsePortType(s)
		if err != nil || got != want {
			t.Errorf("ParsePortType(%q) = %v, %v; want %v", s, got, err, want)
		}
		if len(s) > 3 && got.String() != s {
			t.Errorf("%v.String() = %q, want %q", got, got.String(), s)
		}
	}
	if _, err := ParsePortType("sideways"); err == nil {
		t.Error("ParsePortType(sideways) should fail")
	}
}
