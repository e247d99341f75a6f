package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"transpo-cli/model"
	"transpo-cli/seatgrid"
)

const minSeatCellWidth = 4

var (
	colorAvailable = lipgloss.Color("2")
	colorReserved  = lipgloss.Color("1")
	colorPaid      = lipgloss.Color("4")
	colorSelected  = lipgloss.Color("3")
	colorDisabled  = lipgloss.Color("8")

	legendEntries = []struct {
		label string
		color lipgloss.Color
	}{
		{"Available", colorAvailable},
		{"Reserved", colorReserved},
		{"Paid", colorPaid},
		{"Selected", colorSelected},
		{"Disabled", colorDisabled},
	}

	sidePanelStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("63")).
			MarginLeft(3)
)

func (m appModel) renderSeatGrid() string {
	vm := m.grid
	if vm.Placeholder() {
		return hint("Pick a bus and schedule to see its seats.")
	}

	var b strings.Builder
	b.WriteString(legendView())
	b.WriteString("\n\n")

	switch {
	case vm.Loading():
		b.WriteString(fmt.Sprintf("%s Loading seats", m.spinner.View()))
	case !vm.Loaded():
		b.WriteString(hint("No seat data."))
	default:
		b.WriteString(m.seatRows(vm.Cells()))
		b.WriteString("\n")
		b.WriteString(hint(vm.Grid().Summary()))
	}

	if msg := vm.Err(); msg != "" {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render(msg))
	}

	content := b.String()
	if vm.Role() == model.RoleConductor && vm.Loaded() {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, m.sidePanelView())
	}
	return content
}

func (m appModel) seatRows(cells []seatgrid.Cell) string {
	width := max(minSeatCellWidth, len(fmt.Sprint(len(cells)))+2)
	var b strings.Builder
	for i, cell := range cells {
		b.WriteString(m.seatCellView(cell, width))
		if (i+1)%gridColumns == 0 || i == len(cells)-1 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}
	return b.String()
}

func (m appModel) seatCellView(cell seatgrid.Cell, width int) string {
	label := fmt.Sprintf("%02d", cell.Number)
	if cell.Number == m.cursor {
		label = "[" + label + "]"
	}
	style := lipgloss.NewStyle().
		Background(seatColor(cell, m.grid.Role())).
		Foreground(lipgloss.Color("0"))
	if cell.Mine {
		style = style.Bold(true)
	}
	if !cell.Interactive {
		style = style.Faint(true)
	}
	return style.Render(padCell(label, width))
}

// seatColor follows the legend. SELECTED overlays the real state; a
// read-only viewer sees free seats grayed out.
func seatColor(cell seatgrid.Cell, role model.Role) lipgloss.Color {
	if cell.Selected {
		return colorSelected
	}
	switch cell.State {
	case model.SeatReserved:
		return colorReserved
	case model.SeatPaid:
		return colorPaid
	case model.SeatDisabled:
		return colorDisabled
	}
	if role.IsReadOnly() {
		return colorDisabled
	}
	return colorAvailable
}

func legendView() string {
	parts := make([]string, 0, len(legendEntries))
	for _, entry := range legendEntries {
		swatch := lipgloss.NewStyle().Background(entry.color).Render("  ")
		parts = append(parts, swatch+" "+entry.label)
	}
	return strings.Join(parts, "  ")
}

func (m appModel) sidePanelView() string {
	detail, seatNumber, loading := m.grid.Detail()
	lines := []string{}
	switch {
	case seatNumber == 0:
		lines = append(lines, lipgloss.NewStyle().Bold(true).Render("Seat details"), "", hint("Select a seat to see details."))
	case loading && detail == nil:
		lines = append(lines, lipgloss.NewStyle().Bold(true).Render(fmtSeatTitle(seatNumber)), "", m.spinner.View()+" Loading details")
	case detail == nil:
		lines = append(lines, lipgloss.NewStyle().Bold(true).Render(fmtSeatTitle(seatNumber)), "", hint("No details loaded. Press i to retry."))
	default:
		lines = append(lines, lipgloss.NewStyle().Bold(true).Render(fmtSeatTitle(detail.SeatNumber)), "")
		lines = append(lines, detailRows(*detail)...)
		if loading {
			lines = append(lines, "", m.spinner.View()+" Refreshing")
		}
	}
	lines = append(lines, "", hint("a/r/p/d set state • i refresh"))
	return sidePanelStyle.Render(strings.Join(lines, "\n"))
}

func detailRows(d model.SeatDetail) []string {
	rows := d.Rows()
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("%-12s %s", row.Label, row.Value))
	}
	return lines
}

func fmtSeatTitle(number int) string {
	return fmt.Sprintf("Seat %d", number)
}

func padCell(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if text == "" {
		return strings.Repeat(" ", width)
	}
	if len(text) >= width {
		return text[:width]
	}
	padding := width - len(text)
	left := padding / 2
	right := padding - left
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", right)
}
