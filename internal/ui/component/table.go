package component

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aymeric-roucher/PolymarketShowcase/internal/ui/style"
)

// TableColumn represents a column configuration
type TableColumn struct {
	Header string
	Width  int
	Align  lipgloss.Position
}

// TableRow represents a row of data
type TableRow struct {
	Data  []string
	Style lipgloss.Style
}

// Table renders tabular data such as open positions
type Table struct {
	columns []TableColumn
	rows    []TableRow

	headerStyle lipgloss.Style
	rowStyle    lipgloss.Style
	borderStyle lipgloss.Style

	showBorder bool
}

// NewTable creates a new table component
func NewTable() *Table {
	palette := style.DefaultPalette()

	return &Table{
		columns: make([]TableColumn, 0),
		rows:    make([]TableRow, 0),

		headerStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			Padding(0, 1),

		rowStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1),

		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),

		showBorder: true,
	}
}

// AddColumn adds a column to the table
func (t *Table) AddColumn(header string, width int, align lipgloss.Position) *Table {
	t.columns = append(t.columns, TableColumn{
		Header: header,
		Width:  width,
		Align:  align,
	})
	return t
}

// AddRow adds a row to the table
func (t *Table) AddRow(data []string) *Table {
	t.rows = append(t.rows, TableRow{
		Data:  data,
		Style: t.rowStyle,
	})
	return t
}

// AddStyledRow adds a row with a custom style
func (t *Table) AddStyledRow(data []string, rowStyle lipgloss.Style) *Table {
	t.rows = append(t.rows, TableRow{
		Data:  data,
		Style: rowStyle.Padding(0, 1),
	})
	return t
}

// SetShowBorder enables/disables table border
func (t *Table) SetShowBorder(show bool) *Table {
	t.showBorder = show
	return t
}

// Clear removes all rows from the table
func (t *Table) Clear() *Table {
	t.rows = make([]TableRow, 0)
	return t
}

// View renders the table
func (t *Table) View() string {
	if len(t.columns) == 0 {
		return "No columns defined"
	}

	var content strings.Builder

	var headerRow strings.Builder
	for i, col := range t.columns {
		headerRow.WriteString(t.renderCell(col.Header, col.Width, col.Align, t.headerStyle))
		if i < len(t.columns)-1 {
			headerRow.WriteString("│")
		}
	}
	content.WriteString(headerRow.String())
	content.WriteString("\n")

	var separator strings.Builder
	for i, col := range t.columns {
		separator.WriteString(strings.Repeat("─", col.Width+2))
		if i < len(t.columns)-1 {
			separator.WriteString("┼")
		}
	}
	content.WriteString(separator.String())

	for _, row := range t.rows {
		content.WriteString("\n")

		var rowStr strings.Builder
		for i, col := range t.columns {
			cellData := ""
			if i < len(row.Data) {
				cellData = row.Data[i]
			}
			rowStr.WriteString(t.renderCell(cellData, col.Width, col.Align, row.Style))
			if i < len(t.columns)-1 {
				rowStr.WriteString("│")
			}
		}
		content.WriteString(rowStr.String())
	}

	result := content.String()
	if t.showBorder {
		result = t.borderStyle.Render(result)
	}
	return result
}

// renderCell renders a single table cell
func (t *Table) renderCell(content string, width int, align lipgloss.Position, cellStyle lipgloss.Style) string {
	if len(content) > width {
		if width > 3 {
			content = content[:width-3] + "..."
		} else {
			content = content[:width]
		}
	}
	return cellStyle.Width(width + 2).Align(align).Render(content)
}
