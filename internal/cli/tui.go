package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// CellBrowser - Interactive cell inspection
// =============================================================================

// CellBrowser is the bubbletea model behind "inspect --interactive". The
// left pane lists cells, the right pane shows the selected cell's pins and
// parameters.
type CellBrowser struct {
	Module string
	Cells  []cellRow
	Cursor int
	Height int
	Offset int
}

func newCellBrowser(s designSummary) CellBrowser {
	return CellBrowser{
		Module: s.Module,
		Cells:  s.Cells,
		Height: 15,
	}
}

func (m CellBrowser) Init() tea.Cmd {
	return nil
}

func (m CellBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Cells)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			if n := len(m.Cells); n > 0 {
				m.Cursor = n - 1
				m.Offset = max(0, n-m.Height)
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m CellBrowser) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Cells in " + m.Module))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  g/G first/last  q quit"))
	b.WriteString("\n\n")

	if len(m.Cells) == 0 {
		b.WriteString(listDimStyle.Render("  no cells"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Cells))
	var list strings.Builder
	for i := m.Offset; i < end; i++ {
		c := m.Cells[i]
		line := fmt.Sprintf("  %-20s %s", c.Name, listDimStyle.Render(c.Type))
		switch {
		case i == m.Cursor:
			list.WriteString(listSelectedStyle.Render("▸ " + fmt.Sprintf("%-20s %s", c.Name, c.Type)))
		case strings.HasPrefix(c.Name, "$"):
			list.WriteString(listDimStyle.Render(line))
		default:
			list.WriteString(listNormalStyle.Render(line))
		}
		list.WriteString("\n")
	}

	detail := m.detail(m.Cells[m.Cursor])
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list.String(), "  ", detail))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Cells))))

	return b.String()
}

// detail renders the pin table and parameter list of c.
func (m CellBrowser) detail(c cellRow) string {
	rows := make([][]string, len(c.Pins))
	for i, p := range c.Pins {
		net := p.Net
		if net == "" {
			net = "-"
		}
		rows[i] = []string{p.Name, p.Dir, net}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Pin", "Dir", "Net").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if col == 1 {
				return directionStyle(c.Pins[row].Dir)
			}
			if col == 2 && c.Pins[row].Net == "" {
				return listDimStyle
			}
			return listNormalStyle
		})

	var b strings.Builder
	b.WriteString(t.Render())
	for _, section := range []struct {
		title string
		items []string
	}{{"Parameters", c.Params}, {"Attributes", c.Attrs}} {
		if len(section.items) == 0 {
			continue
		}
		b.WriteString("\n" + styleHeader.Render(section.title) + "\n")
		for _, item := range section.items {
			b.WriteString("  " + listNormalStyle.Render(item) + "\n")
		}
	}
	return b.String()
}
