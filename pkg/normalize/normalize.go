package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/rmo02/dash-financeiro/pkg/models"
	"github.com/rmo02/dash-financeiro/pkg/parser"
)

// Result is the canonical dataset built from one upload.
type Result struct {
	Records    []models.Record
	Warnings   []Warning
	Convention Convention
}

type Normalizer struct {
	logger *log.Logger
}

func New(logger *log.Logger) *Normalizer {
	return &Normalizer{
		logger: logger,
	}
}

// Normalize validates the rows and converts them into records. A row with a
// cell that cannot be parsed is left out and reported as a Warning. A row
// whose amount was ambiguous is kept and also reported.
func (n *Normalizer) Normalize(rows []parser.RawRow) (*Result, error) {
	if err := Validate(rows); err != nil {
		return nil, err
	}

	hm, _, convention := resolveHeaders(rows[0].Headers())
	n.logger.Debug("resolved header convention", "convention", convention, "rows", len(rows))

	result := &Result{
		Records:    make([]models.Record, 0, len(rows)),
		Convention: convention,
	}
	for _, row := range rows {
		record, warning := n.record(row, hm)
		if warning != nil {
			result.Warnings = append(result.Warnings, *warning)
			if !warning.Kept {
				n.logger.Warn("skipping malformed row", "row", warning.Row, "column", warning.Column, "value", warning.Value, "reason", warning.Reason)
				continue
			}
			n.logger.Warn("ambiguous cell", "row", warning.Row, "column", warning.Column, "value", warning.Value, "reason", warning.Reason)
		}
		result.Records = append(result.Records, record)
	}

	n.logger.Debug("normalized rows", "records", len(result.Records), "warnings", len(result.Warnings))
	return result, nil
}

func (n *Normalizer) record(row parser.RawRow, hm headerMap) (models.Record, *Warning) {
	cell := func(f Field) any {
		v, ok := row.Cells[hm[f]]
		if !ok || v == nil {
			return ""
		}
		return v
	}
	malformed := func(f Field, err error) *Warning {
		return &Warning{
			Row:    row.Line,
			Column: hm[f],
			Value:  cell(f),
			Reason: err.Error(),
		}
	}

	company := text(cell(FieldCompany))
	if company == "" {
		return models.Record{}, malformed(FieldCompany, ErrEmptyCompany)
	}

	period, err := ParseDate(cell(FieldPeriod))
	if err != nil {
		return models.Record{}, malformed(FieldPeriod, err)
	}

	amount, err := ParseAmount(cell(FieldAmount))
	if err != nil {
		return models.Record{}, malformed(FieldAmount, err)
	}

	var warning *Warning
	if row.IsAmbiguous(hm[FieldAmount]) {
		warning = malformed(FieldAmount, ErrAmbiguousAmount)
		warning.Kept = true
	}

	return models.Record{
		Row:         row.Line,
		Company:     company,
		Period:      period,
		AccountCode: text(cell(FieldAccountCode)),
		AccountName: text(cell(FieldAccountName)),
		Group:       text(cell(FieldGroup)),
		Subgroup:    text(cell(FieldSubgroup)),
		Amount:      amount,
	}, warning
}

// text renders a label cell. Numeric account codes come out without a
// trailing ".0".
func text(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// IsValidationError reports whether err is one of the structural failures
// that stop a load before any record is produced.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyDataset) || errors.Is(err, ErrMissingColumns)
}
