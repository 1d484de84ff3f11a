package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/pnrjson/pkg/io"
	"github.com/matzehuels/pnrjson/pkg/jsonwrite"
	"github.com/matzehuels/pnrjson/pkg/netlist"
)

// inspectCommand creates the inspect command that summarizes a design.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		interactive bool
		dump        string
		order       string
	)

	cmd := &cobra.Command{
		Use:   "inspect [design]",
		Short: "Show the ports, buses and cells of a design",
		Long: `Show the ports, buses and cells of a design.

Bus ports are grouped the way the JSON netlist groups them. Missing bus bits
are shown as x, and buses whose bits disagree on direction are flagged.

Use --interactive to browse cells, or --dump toml|yaml to print the design
back as a normalized description.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("order") {
				order = c.Config.Order
			}
			o, err := netlist.ParseOrder(order)
			if err != nil {
				return err
			}

			d, err := pkgio.ImportDesign(args[0])
			if err != nil {
				return fmt.Errorf("load %s: %w", args[0], err)
			}
			s := summarize(d, o)

			switch {
			case dump != "":
				format, err := pkgio.ParseFormat(dump)
				if err != nil {
					return err
				}
				return pkgio.WriteDescription(os.Stdout, d, format)
			case interactive:
				_, err := tea.NewProgram(newCellBrowser(s), tea.WithContext(cmd.Context())).Run()
				return err
			}
			printSummary(s)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse cells interactively")
	cmd.Flags().StringVar(&dump, "dump", "", "print the design as a description: toml, yaml")
	cmd.Flags().StringVar(&order, "order", "", "enumeration order: declaration (default), name")

	return cmd
}

// =============================================================================
// Summary
// =============================================================================

// designSummary is the display form of a design.
type designSummary struct {
	Module string
	Ports  []portRow
	Cells  []cellRow
	Nets   int
}

type portRow struct {
	Name  string
	Dir   string
	Bits  string // e.g. "[4 x 6]"; x marks a missing bus bit
	Width int
	Mixed bool
}

type cellRow struct {
	Name   string
	Type   string
	Params []string // "KEY=value", value as written to the netlist
	Attrs  []string
	Pins   []pinRow
}

type pinRow struct {
	Name string
	Dir  string
	Net  string // empty when unconnected
}

func summarize(d *netlist.Design, o netlist.Order) designSummary {
	s := designSummary{
		Module: jsonwrite.ModuleName(d),
		Nets:   len(d.Nets()),
	}

	for _, g := range jsonwrite.GroupPorts(d, d.PortsIn(o)) {
		s.Ports = append(s.Ports, portRow{
			Name:  g.Name,
			Dir:   g.Dir.String(),
			Bits:  formatBits(g.Bits),
			Width: len(g.Bits),
			Mixed: g.MixedDirection,
		})
	}

	for _, c := range d.CellsIn(o) {
		row := cellRow{
			Name:   d.Str(c.Name),
			Type:   d.Str(c.Type),
			Params: propertyList(d, &c.Params, o),
			Attrs:  propertyList(d, &c.Attrs, o),
		}
		for _, p := range d.CellPortsIn(c, o) {
			pin := pinRow{Name: d.Str(p.Name), Dir: p.Type.String()}
			if p.Connected() {
				pin.Net = d.Str(p.Net)
			}
			row.Pins = append(row.Pins, pin)
		}
		s.Cells = append(s.Cells, row)
	}
	return s
}

// formatBits renders bus bits LSB first with placeholders as x.
func formatBits(bits []int) string {
	parts := make([]string, len(bits))
	for i, b := range bits {
		if b == jsonwrite.Placeholder {
			parts[i] = "x"
		} else {
			parts[i] = strconv.Itoa(b)
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func propertyList(d *netlist.Design, m *netlist.PropertyMap, o netlist.Order) []string {
	var out []string
	for _, k := range d.KeysIn(m, o) {
		v, _ := m.Get(k)
		out = append(out, d.Str(k)+"="+jsonwrite.FormatValue(v))
	}
	return out
}

// =============================================================================
// Table Output
// =============================================================================

func printSummary(s designSummary) {
	printKeyValue("Module", s.Module)
	fmt.Println("  " + statsLine(len(s.Ports), len(s.Cells), s.Nets))
	fmt.Println()

	if len(s.Ports) > 0 {
		fmt.Println(StyleTitle.Render("Ports"))
		fmt.Println(portTable(s.Ports).Render())
		fmt.Println()
	}
	for _, p := range s.Ports {
		if p.Mixed {
			printWarning("bus %s mixes port directions; exported as %s", p.Name, p.Dir)
		}
		if strings.Contains(p.Bits, "x") {
			printInfo("bus %s has missing bits", p.Name)
		}
	}

	if len(s.Cells) > 0 {
		fmt.Println(StyleTitle.Render("Cells"))
		fmt.Println(cellTable(s.Cells).Render())
	} else {
		printDetail("no cells")
	}
}

func portTable(rows []portRow) *table.Table {
	data := make([][]string, len(rows))
	for i, r := range rows {
		data[i] = []string{r.Name, r.Dir, strconv.Itoa(r.Width), r.Bits}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("Port", "Direction", "Width", "Bits").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			r := rows[row]
			switch col {
			case 1:
				if r.Mixed {
					return StyleWarning
				}
				return directionStyle(r.Dir)
			case 2:
				return StyleNumber
			case 3:
				return StyleDim
			}
			return StyleValue
		})
}

func cellTable(rows []cellRow) *table.Table {
	data := make([][]string, len(rows))
	for i, r := range rows {
		connected := 0
		for _, p := range r.Pins {
			if p.Net != "" {
				connected++
			}
		}
		data[i] = []string{
			r.Name,
			r.Type,
			fmt.Sprintf("%d/%d", connected, len(r.Pins)),
			strings.Join(r.Params, " "),
		}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("Cell", "Type", "Pins", "Parameters").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styleHeader
			case col == 0 && strings.HasPrefix(rows[row].Name, "$"):
				return StyleDim
			case col == 1:
				return StyleNumber
			case col == 3:
				return StyleDim
			}
			return StyleValue
		})
}
