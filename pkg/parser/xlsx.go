package parser

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

func (p *Parser) readXLSX(data []byte) ([][]any, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: error opening xlsx: %v", ErrUnreadableWorkbook, err)
	}
	defer f.Close()

	sheet, err := p.pickSheet(f.GetSheetList())
	if err != nil {
		return nil, err
	}

	// Raw values keep date cells as serial numbers instead of formatted text.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: error reading sheet %q: %v", ErrUnreadableWorkbook, sheet, err)
	}

	grid := make([][]any, len(rows))
	for r, row := range rows {
		line := make([]any, len(row))
		for c, raw := range row {
			line[c] = p.xlsxCell(f, sheet, c, r, raw)
		}
		grid[r] = line
	}
	return grid, nil
}

// xlsxCell keeps string cells as text and turns every other cell that holds a
// number into float64.
func (p *Parser) xlsxCell(f *excelize.File, sheet string, col, row int, raw string) any {
	if raw == "" {
		return ""
	}
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return raw
	}
	typ, err := f.GetCellType(sheet, axis)
	if err != nil {
		p.logger.Debug("error reading cell type", "cell", axis, "error", err)
		return raw
	}
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeBool, excelize.CellTypeError:
		return raw
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v
	}
	return raw
}
