package parser

import (
	"sort"
	"strconv"
	"strings"
)

// RawRow is one spreadsheet line keyed by header text exactly as written in
// the sheet. Values are either string or float64.
//
// Ambiguous lists the headers whose text looked like thousands grouping
// ("12.345") in a format that does not tell text from numbers.
type RawRow struct {
	Line      int            `json:"line"`
	Cells     map[string]any `json:"cells"`
	Ambiguous []string       `json:"ambiguous,omitempty"`
}

// groupedNumber is cell text that reads either as Brazilian thousands
// grouping or as a number with three decimals.
type groupedNumber string

// IsAmbiguous reports whether the cell under header was flagged ambiguous.
func (r RawRow) IsAmbiguous(header string) bool {
	for _, h := range r.Ambiguous {
		if h == header {
			return true
		}
	}
	return false
}

// Headers returns the row keys in sorted order.
func (r RawRow) Headers() []string {
	keys := make([]string, 0, len(r.Cells))
	for k := range r.Cells {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// buildRows turns a cell grid into header keyed rows. The first non-empty
// line is the header; fully empty lines are skipped. Columns with an empty
// header are dropped and repeated headers keep their first column.
func buildRows(grid [][]any) []RawRow {
	headerAt := -1
	for i, line := range grid {
		if !isBlank(line) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil
	}

	type column struct {
		index int
		name  string
	}
	var columns []column
	seen := make(map[string]bool)
	for i, cell := range grid[headerAt] {
		name := cellText(cell)
		if strings.TrimSpace(name) == "" || seen[name] {
			continue
		}
		seen[name] = true
		columns = append(columns, column{index: i, name: name})
	}

	rows := make([]RawRow, 0, len(grid)-headerAt-1)
	for i := headerAt + 1; i < len(grid); i++ {
		line := grid[i]
		if isBlank(line) {
			continue
		}
		row := RawRow{Line: i + 1, Cells: make(map[string]any, len(columns))}
		for _, col := range columns {
			var v any = ""
			if col.index < len(line) && line[col.index] != nil {
				v = line[col.index]
			}
			if g, ok := v.(groupedNumber); ok {
				v = string(g)
				row.Ambiguous = append(row.Ambiguous, col.name)
			}
			row.Cells[col.name] = v
		}
		rows = append(rows, row)
	}
	return rows
}

func isBlank(line []any) bool {
	for _, cell := range line {
		if strings.TrimSpace(cellText(cell)) != "" {
			return false
		}
	}
	return true
}

func cellText(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case groupedNumber:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
