package parser

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// ErrUnreadableWorkbook is returned when the uploaded bytes are not a
// spreadsheet we can decode, or the workbook has no worksheets.
var ErrUnreadableWorkbook = errors.New("unreadable workbook")

type FileType string

const (
	XLSX FileType = "xlsx"
	XLS  FileType = "xls"
	CSV  FileType = "csv"
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

type Parser struct {
	logger *log.Logger
	sheet  string
}

type Option func(*Parser)

// WithSheet makes the parser prefer the worksheet with the given name. When
// the workbook has no such sheet the first one is used.
func WithSheet(name string) Option {
	return func(p *Parser) {
		p.sheet = strings.TrimSpace(name)
	}
}

func New(logger *log.Logger, opts ...Option) *Parser {
	p := &Parser{
		logger: logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessBytes decodes a workbook into header keyed rows.
func (p *Parser) ProcessBytes(data []byte, filename string) ([]RawRow, error) {
	fileType := detectType(data, filename)
	p.logger.Debug("detected file type", "type", fileType, "filename", filename, "bytes", len(data))

	var (
		grid [][]any
		err  error
	)
	switch fileType {
	case XLSX:
		grid, err = p.readXLSX(data)
	case XLS:
		grid, err = p.readXLS(data)
	case CSV:
		grid, err = p.readCSV(data)
	default:
		p.logger.Debug("unknown file type", "filename", filename)
		return nil, fmt.Errorf("%w: unknown file type for %q", ErrUnreadableWorkbook, filename)
	}
	if err != nil {
		return nil, err
	}

	rows := buildRows(grid)
	p.logger.Debug("decoded workbook", "type", fileType, "rows", len(rows))
	return rows, nil
}

// detectType sniffs the content first and falls back to the extension.
func detectType(data []byte, filename string) FileType {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return XLSX
	case bytes.HasPrefix(data, oleMagic):
		return XLS
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return CSV
	case ".xlsx", ".xlsm":
		return XLSX
	case ".xls":
		return XLS
	}
	return ""
}

// pickSheet returns the preferred sheet when present, else the first one.
func (p *Parser) pickSheet(names []string) (string, error) {
	if len(names) == 0 {
		return "", fmt.Errorf("%w: workbook has no worksheets", ErrUnreadableWorkbook)
	}
	if p.sheet != "" {
		for _, name := range names {
			if strings.EqualFold(strings.TrimSpace(name), p.sheet) {
				return name, nil
			}
		}
		p.logger.Warn("preferred sheet not found, using first sheet", "sheet", p.sheet, "first", names[0])
	}
	return names[0], nil
}
