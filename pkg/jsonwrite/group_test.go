package jsonwrite

import (
	"reflect"
	"slices"
	"testing"

	"github.com/matzehuels/pnrjson/pkg/errors"
	"github.com/matzehuels/pnrjson/pkg/netlist"
)

type portSpec struct {
	name string
	dir  netlist.PortType
}

// portDesign adds one net per port, named "n_<port>", in order.
func portDesign(t *testing.T, ports ...portSpec) *netlist.Design {
	t.Helper()
	d := netlist.New()
	for _, p := range ports {
		if _, err := d.AddNet("n_" + p.name); err != nil {
			t.Fatalf("AddNet(n_%s) error: %v", p.name, err)
		}
		if _, err := d.AddPort(p.name, p.dir, "n_"+p.name); err != nil {
			t.Fatalf("AddPort(%s) error: %v", p.name, err)
		}
	}
	return d
}

func bitOf(t *testing.T, d *netlist.Design, port string) int {
	t.Helper()
	n, ok := d.Net("n_" + port)
	if !ok {
		t.Fatalf("net n_%s missing", port)
	}
	return n.Index()
}

func groupsOf(t *testing.T, d *netlist.Design, want int) []PortGroup {
	t.Helper()
	groups := GroupPorts(d, d.Ports())
	if len(groups) != want {
		t.Fatalf("GroupPorts() returned %d groups, want %d: %+v", len(groups), want, groups)
	}
	return groups
}

func TestGroupPortsScalar(t *testing.T) {
	d := portDesign(t, portSpec{"clk", netlist.PortIn}, portSpec{"led", netlist.PortOut})
	groups := groupsOf(t, d, 2)

	want := []PortGroup{
		{Name: "clk", Dir: netlist.PortIn, Bits: []int{bitOf(t, d, "clk")}},
		{Name: "led", Dir: netlist.PortOut, Bits: []int{bitOf(t, d, "led")}},
	}
	if !reflect.DeepEqual(groups, want) {
		t.Errorf("GroupPorts() = %+v, want %+v", groups, want)
	}
}

func TestGroupPortsBus(t *testing.T) {
	d := portDesign(t,
		portSpec{"d[2]", netlist.PortIn},
		portSpec{"clk", netlist.PortIn},
		portSpec{"d[0]", netlist.PortIn},
	)
	groups := groupsOf(t, d, 2)

	// Groups keep first-discovery order.
	if groups[0].Name != "d" || groups[1].Name != "clk" {
		t.Errorf("group names = %q, %q; want d, clk", groups[0].Name, groups[1].Name)
	}
	want := []int{bitOf(t, d, "d[0]"), Placeholder, bitOf(t, d, "d[2]")}
	if !slices.Equal(groups[0].Bits, want) {
		t.Errorf("d bits = %v, want %v", groups[0].Bits, want)
	}
}

func TestGroupPortsGrows(t *testing.T) {
	d := portDesign(t, portSpec{"q[0]", netlist.PortOut}, portSpec{"q[3]", netlist.PortOut})
	groups := groupsOf(t, d, 1)

	want := []int{bitOf(t, d, "q[0]"), Placeholder, Placeholder, bitOf(t, d, "q[3]")}
	if !slices.Equal(groups[0].Bits, want) {
		t.Errorf("q bits = %v, want %v", groups[0].Bits, want)
	}
	if groups[0].MixedDirection {
		t.Error("q should not be flagged as mixed")
	}
}

func TestGroupPortsNames(t *testing.T) {
	tests := []struct {
		port, group string
		width       int
	}{
		{"a[b]", "a[b]", 1},
		{"a]", "a]", 1},
		{"a[", "a[", 1},
		{"[1]", "", 2},
		{"x[3][1]", "x[3]", 2},
		{"neg[-1]", "neg[-1]", 1},
	}
	for _, tt := range tests {
		t.Run(tt.port, func(t *testing.T) {
			d := portDesign(t, portSpec{tt.port, netlist.PortIn})
			g := groupsOf(t, d, 1)[0]
			if g.Name != tt.group || len(g.Bits) != tt.width {
				t.Errorf("group = %q width %d, want %q width %d", g.Name, len(g.Bits), tt.group, tt.width)
			}
		})
	}
}

func TestSplitBusName(t *testing.T) {
	tests := []struct {
		name string
		base string
		idx  int
		ok   bool
	}{
		{"d[7]", "d", 7, true},
		{"d[007]", "d", 7, true},
		{"d", "", 0, false},
		{"d[x]", "", 0, false},
		{"d[16777216]", "d", 16777216, true},
		{"d[16777217]", "", 0, false},
	}
	for _, tt := range tests {
		base, idx, ok := SplitBusName(tt.name)
		if base != tt.base || idx != tt.idx || ok != tt.ok {
			t.Errorf("SplitBusName(%q) = %q, %d, %v; want %q, %d, %v", tt.name, base, idx, ok, tt.base, tt.idx, tt.ok)
		}
	}
}

func TestGroupPortsMixedDirection(t *testing.T) {
	d := portDesign(t, portSpec{"io[0]", netlist.PortInout}, portSpec{"io[1]", netlist.PortOut})
	g := groupsOf(t, d, 1)[0]

	if g.Dir != netlist.PortInout {
		t.Errorf("Dir = %v, want inout", g.Dir)
	}
	if !g.MixedDirection {
		t.Error("io should be flagged as mixed")
	}
}

func TestGroupPortsDuplicateBit(t *testing.T) {
	d := portDesign(t, portSpec{"d[1]", netlist.PortIn}, portSpec{"d[01]", netlist.PortIn})

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, errors.ErrCodeCorruptDesign) {
			t.Errorf("panic value = %v, want a CORRUPT_DESIGN error", r)
		}
	}()
	GroupPorts(d, d.Ports())
}

func TestGroupPortsBitTotal(t *testing.T) {
	d := portDesign(t,
		portSpec{"a[0]", netlist.PortIn},
		portSpec{"a[1]", netlist.PortIn},
		portSpec{"b", netlist.PortOut},
		portSpec{"c[0]", netlist.PortOut},
	)
	placed := 0
	for _, g := range GroupPorts(d, d.Ports()) {
		for _, b := range g.Bits {
			if b != Placeholder {
				placed++
			}
		}
	}
	if placed != len(d.Ports()) {
		t.Errorf("placed bits = %d, want %d", placed, len(d.Ports()))
	}
}
