package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/extrame/xls"
)

// Brazilian thousands grouping such as "1.234" or "-12.345.678". The xls
// decoder hands every cell back as text and hides the cell type, so these
// stay text for the amount parser and are flagged as ambiguous: a numeric
// cell holding 12.345 looks the same.
var thousandsGrouping = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+$`)

func (p *Parser) readXLS(data []byte) (grid [][]any, err error) {
	// The xls decoder panics on some malformed streams.
	defer func() {
		if rec := recover(); rec != nil {
			grid = nil
			err = fmt.Errorf("%w: xls decoder panic: %v", ErrUnreadableWorkbook, rec)
		}
	}()

	workbook, err := xls.OpenReader(bytes.NewReader(data), "cp1252")
	if err != nil {
		return nil, fmt.Errorf("%w: error creating workbook: %v", ErrUnreadableWorkbook, err)
	}

	names := make([]string, 0, workbook.NumSheets())
	for i := 0; i < workbook.NumSheets(); i++ {
		if sheet := workbook.GetSheet(i); sheet != nil {
			names = append(names, sheet.Name)
		}
	}
	name, err := p.pickSheet(names)
	if err != nil {
		return nil, err
	}

	var sheet *xls.WorkSheet
	for i := 0; i < workbook.NumSheets(); i++ {
		if s := workbook.GetSheet(i); s != nil && s.Name == name {
			sheet = s
			break
		}
	}
	if sheet == nil {
		return nil, fmt.Errorf("%w: sheet %q not found", ErrUnreadableWorkbook, name)
	}

	grid = make([][]any, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		line := make([]any, row.LastCol()+1)
		for c := 0; c <= row.LastCol(); c++ {
			line[c] = xlsCell(row.Col(c))
		}
		grid[i] = line
	}
	return grid, nil
}

// xlsCell restores numeric cells, which the decoder formats with a dot as
// decimal separator and no grouping.
func xlsCell(text string) any {
	s := strings.TrimSpace(text)
	if thousandsGrouping.MatchString(s) {
		return groupedNumber(text)
	}
	if s == "" || strings.Contains(s, ",") {
		return text
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return text
}
