package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type column struct {
	title string
	right bool
}

func left(title string) column  { return column{title: title} }
func right(title string) column { return column{title: title, right: true} }

// textTable lays out rows under fixed columns, sized by display width so wide
// runes stay aligned. Missing cells render blank and extra cells are ignored.
type textTable struct {
	columns []column
	rows    [][]string
}

func newTextTable(columns ...column) *textTable {
	return &textTable{columns: columns}
}

func (t *textTable) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *textTable) lines() []string {
	if len(t.columns) == 0 {
		return nil
	}
	widths := make([]int, len(t.columns))
	for i, col := range t.columns {
		widths[i] = runewidth.StringWidth(col.title)
	}
	for _, row := range t.rows {
		for i := range widths {
			widths[i] = max(widths[i], runewidth.StringWidth(cellAt(row, i)))
		}
	}

	titles := make([]string, len(t.columns))
	for i, col := range t.columns {
		titles[i] = col.title
	}
	out := make([]string, 0, len(t.rows)+1)
	out = append(out, t.render(titles, widths))
	for _, row := range t.rows {
		out = append(out, t.render(row, widths))
	}
	return out
}

func (t *textTable) render(row []string, widths []int) string {
	cells := make([]string, len(widths))
	for i, width := range widths {
		cell := cellAt(row, i)
		pad := strings.Repeat(" ", width-runewidth.StringWidth(cell))
		if t.columns[i].right {
			cells[i] = pad + cell
		} else {
			cells[i] = cell + pad
		}
	}
	return strings.Join(cells, " ")
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
