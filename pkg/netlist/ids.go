package netlist

// IdString is a handle to an interned identifier. The zero value refers to
// the empty string.
type IdString int

// Index returns the handle's position in the identifier pool.
func (id IdString) Index() int { return int(id) }

type idPool struct {
	strs  []string
	index map[string]IdString
}

func newIDPool() *idPool {
	return &idPool{
		strs:  []string{""},
		index: map[string]IdString{"": 0},
	}
}

func (p *idPool) intern(s string) IdString {
	if id, ok := p.index[s]; ok {
		return id
	}
	id := IdString(len(p.strs))
	p.strs = append(p.strs, s)
	p.index[s] = id
	return id
}

func (p *idPool) lookup(s string) (IdString, bool) {
	id, ok := p.index[s]
	return id, ok
}

func (p *idPool) str(id IdString) string {
	if id < 0 || int(id) >= len(p.strs) {
		return ""
	}
	return p.strs[id]
}
