package jsonwrite

import (
	"io"
	"strings"
)

// writer is the low-level sink shared by every collection in one document.
type writer struct {
	out   io.Writer
	quote func(string) string
}

func (w *writer) raw(s string) error {
	_, err := io.WriteString(w.out, s)
	return err
}

// object writes "{" and returns the list of its members at depth.
func (w *writer) object(depth int) (*list, error) {
	if err := w.raw("{"); err != nil {
		return nil, err
	}
	return &list{w: w, depth: depth}, nil
}

// array writes "[ " and returns a list whose items stay on one line.
func (w *writer) array() (*list, error) {
	if err := w.raw("[ "); err != nil {
		return nil, err
	}
	return &list{w: w, inline: true}, nil
}

// list emits the separators of one JSON object or array. Block lists put
// each member on its own line indented to depth+1 and close at depth.
// Inline lists separate items with ", " and close with " ]".
type list struct {
	w      *writer
	depth  int
	inline bool
	n      int
}

// next starts a member.
func (l *list) next() error {
	l.n++
	if l.inline {
		if l.n == 1 {
			return nil
		}
		return l.w.raw(", ")
	}
	sep := ",\n"
	if l.n == 1 {
		sep = "\n"
	}
	return l.w.raw(sep + indent(l.depth+1))
}

// key starts a member and writes its quoted key.
func (l *list) key(k string) error {
	if err := l.next(); err != nil {
		return err
	}
	return l.w.raw(l.w.quote(k) + ": ")
}

// field writes a complete member whose value is already rendered.
func (l *list) field(k, value string) error {
	if err := l.key(k); err != nil {
		return err
	}
	return l.w.raw(value)
}

// item writes a complete array item.
func (l *list) item(value string) error {
	if err := l.next(); err != nil {
		return err
	}
	return l.w.raw(value)
}

// end closes the collection. An empty block object closes on its own line.
func (l *list) end() error {
	if l.inline {
		return l.w.raw(" ]")
	}
	return l.w.raw("\n" + indent(l.depth) + "}")
}

const indentUnit = "  "

var indents [8]string

func init() {
	for i := range indents {
		indents[i] = strings.Repeat(indentUnit, i)
	}
}

func indent(depth int) string {
	if depth < len(indents) {
		return indents[depth]
	}
	return strings.Repeat(indentUnit, depth)
}
