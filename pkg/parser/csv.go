package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func (p *Parser) readCSV(data []byte) ([][]any, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	var src io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		// Exports from Excel in pt-BR are usually Windows-1252.
		p.logger.Debug("csv is not utf-8, decoding as windows-1252")
		src = transform.NewReader(src, charmap.Windows1252.NewDecoder())
	}

	reader := csv.NewReader(src)
	reader.Comma = sniffComma(data)
	reader.FieldsPerRecord = -1 // allow variable columns
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read csv: %v", ErrUnreadableWorkbook, err)
	}
	if len(records) == 0 {
		p.logger.Debug("csv has no lines")
		return nil, nil
	}

	grid := make([][]any, len(records))
	for i, rec := range records {
		line := make([]any, len(rec))
		for c, v := range rec {
			line[c] = v
		}
		grid[i] = line
	}
	return grid, nil
}

// sniffComma picks ';' when the header line has any, ',' otherwise.
func sniffComma(data []byte) rune {
	header := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		header = data[:i]
	}
	if bytes.Count(header, []byte{';'}) > 0 {
		return ';'
	}
	return ','
}
