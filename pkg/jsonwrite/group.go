package jsonwrite

import (
	"strconv"
	"strings"

	"github.com/matzehuels/pnrjson/pkg/errors"
	"github.com/matzehuels/pnrjson/pkg/netlist"
)

// Placeholder marks a bus position no port was found for. It is written
// as "x".
const Placeholder = -1

// maxBusIndex bounds the index parsed from a "base[N]" name. Larger
// indices are kept as scalar ports instead of allocating the bus.
const maxBusIndex = 1 << 24

// PortGroup is a module port reconstructed from per-bit ports.
type PortGroup struct {
	Name string
	// Dir is the direction of the first bit seen for this group.
	Dir netlist.PortType
	// Bits holds the net bit index for each position, or Placeholder.
	Bits []int
	// MixedDirection is set when a later bit disagreed with Dir. Dir is not
	// changed.
	MixedDirection bool
}

// GroupPorts regroups single-bit ports into buses, in the order the ports
// are given. A port named "base[N]" fills position N of the group "base";
// any other name becomes a group of its own with one bit. Groups are
// returned in first-discovery order of their names.
//
// GroupPorts panics with a CORRUPT_DESIGN error if two ports claim the same
// position of a bus.
func GroupPorts(d *netlist.Design, ports []*netlist.Port) []PortGroup {
	var groups []PortGroup
	byBase := make(map[string]int)

	for _, p := range ports {
		name := d.Str(p.Name)
		base, idx, ok := SplitBusName(name)
		if !ok {
			groups = append(groups, PortGroup{Name: name, Dir: p.Type, Bits: []int{p.Bit()}})
			continue
		}

		gi, seen := byBase[base]
		if !seen {
			gi = len(groups)
			byBase[base] = gi
			groups = append(groups, PortGroup{Name: base, Dir: p.Type, Bits: placeholders(idx + 1)})
		}

		grp := &groups[gi]
		if len(grp.Bits) <= idx {
			grp.Bits = append(grp.Bits, placeholders(idx+1-len(grp.Bits))...)
		}
		if grp.Bits[idx] != Placeholder {
			panic(errors.New(errors.ErrCodeCorruptDesign,
				"port %s: bit %d of bus %s already carries net %d", name, idx, base, grp.Bits[idx]))
		}
		grp.Bits[idx] = p.Bit()
		if p.Type != grp.Dir {
			grp.MixedDirection = true
		}
	}
	return groups
}

// SplitBusName splits "base[N]" into base and N. ok is false for names
// that GroupPorts keeps as scalar ports.
func SplitBusName(name string) (base string, idx int, ok bool) {
	if !strings.HasSuffix(name, "]") {
		return "", 0, false
	}
	open := strings.LastIndexByte(name, '[')
	if open < 0 {
		return "", 0, false
	}
	idx, err := strconv.Atoi(name[open+1 : len(name)-1])
	if err != nil || idx < 0 || idx > maxBusIndex {
		return "", 0, false
	}
	return name[:open], idx, true
}

func placeholders(n int) []int {
	bits := make([]int, n)
	for i := range bits {
		bits[i] = Placeholder
	}
	return bits
}
