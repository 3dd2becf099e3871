package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/cdmoen/Museum/internal/cart"
	"github.com/cdmoen/Museum/internal/catalog"
	"github.com/cdmoen/Museum/internal/format"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	totalStyle  = lipgloss.NewStyle().Bold(true)
	emptyStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("244"))
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
)

func renderRows(items []cart.LineItem) string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{
			it.Name,
			format.Qty(it.Quantity),
			format.PerUnit(it.UnitPrice),
			format.Money(it.LineTotal()),
		})
	}
	return renderTable([]string{"Item", "Quantity", "Price", "Line Total"}, rows, 2)
}

func renderCatalog(products []catalog.Product) string {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{p.ID, p.Name, format.Money(p.UnitPrice)})
	}
	return renderTable([]string{"ID", "Name", "Price"}, rows, 2)
}

// renderTable right-aligns every column from firstNumeric on.
func renderTable(headers []string, rows [][]string, firstNumeric int) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col >= firstNumeric:
				return numberStyle
			default:
				return cellStyle
			}
		})
	return t.String()
}

func renderSummary(lines []format.SummaryLine) string {
	width := 0
	for _, l := range lines {
		if len(l.Label) > width {
			width = len(l.Label)
		}
	}
	label := lipgloss.NewStyle().Width(width + 2)
	amount := lipgloss.NewStyle().Width(12).Align(lipgloss.Right)

	var b strings.Builder
	for i, l := range lines {
		row := lipgloss.JoinHorizontal(lipgloss.Top, label.Render(l.Label), amount.Render(l.Amount))
		if l.Key == "total" {
			row = totalStyle.Render(row)
		}
		b.WriteString(row)
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
