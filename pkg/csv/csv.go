package csv

import (
	"bytes"
	stdcsv "encoding/csv"
	"fmt"
	"strings"

	"github.com/rmo02/dash-financeiro/pkg/models"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

type Encoding string

const (
	UTF8        Encoding = "utf-8"
	Windows1252 Encoding = "windows-1252"
)

// Header is written in the current column convention so the export can be
// uploaded again.
var Header = []string{"EMPRESA", "PERIODO", "CONTA", "GRUPO", "SUBGRUPO", "NOME CONTA", "VALOR"}

type FilterFunc func(models.Record) bool

// And combines filters; nil filters are skipped.
func And(filters ...FilterFunc) FilterFunc {
	return func(r models.Record) bool {
		for _, f := range filters {
			if f != nil && !f(r) {
				return false
			}
		}
		return true
	}
}

// Create writes the records that pass filter as a ";" separated sheet with
// DD/MM/YYYY dates and decimal comma amounts.
func Create(records []models.Record, filter FilterFunc) []byte {
	var buf bytes.Buffer
	w := stdcsv.NewWriter(&buf)
	w.Comma = ';'

	_ = w.Write(Header)
	for _, r := range records {
		if filter == nil || filter(r) {
			_ = w.Write([]string{
				r.Company,
				r.Date(),
				r.AccountCode,
				r.Group,
				r.Subgroup,
				r.AccountName,
				FormatAmount(r.Amount),
			})
		}
	}
	w.Flush()
	return buf.Bytes()
}

// FormatAmount renders d with two decimals and a decimal comma, without
// thousands grouping.
func FormatAmount(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1)
}

// ParseEncoding accepts the names used in configuration files.
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return UTF8, nil
	case "windows-1252", "cp1252", "latin1", "iso-8859-1":
		return Windows1252, nil
	default:
		return "", fmt.Errorf("unknown csv encoding %q", name)
	}
}

// Encode transcodes UTF-8 output for older spreadsheet tools.
func Encode(data []byte, enc Encoding) ([]byte, error) {
	switch enc {
	case UTF8, "":
		return data, nil
	case Windows1252:
		out, err := charmap.Windows1252.NewEncoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to encode csv as %s: %w", enc, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown csv encoding %q", enc)
	}
}
