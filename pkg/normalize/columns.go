package normalize

import (
	"strings"
	"unicode"

	"github.com/rmo02/dash-financeiro/pkg/models"
)

type Field int

const (
	FieldCompany Field = iota
	FieldPeriod
	FieldAccountCode
	FieldGroup
	FieldSubgroup
	FieldAccountName
	FieldAmount
)

// Convention tells which header naming the sheet used.
type Convention string

const (
	ConventionCurrent Convention = "current"
	ConventionLegacy  Convention = "legacy"
	ConventionMixed   Convention = "mixed"
)

type column struct {
	field   Field
	current string
	legacy  string
}

// Current: EMPRESA, PERIODO, CONTA, GRUPO, SUBGRUPO, NOME CONTA, VALOR
// Legacy:  CIA, PERÍODO, CÓD. CONTA, GRUPO, SUBGRUPO, NOME CONTA, VALOR
var columns = []column{
	{field: FieldCompany, current: "EMPRESA", legacy: "CIA"},
	{field: FieldPeriod, current: "PERIODO", legacy: "PERÍODO"},
	{field: FieldAccountCode, current: "CONTA", legacy: "CÓD. CONTA"},
	{field: FieldGroup, current: "GRUPO", legacy: "GRUPO"},
	{field: FieldSubgroup, current: "SUBGRUPO", legacy: "SUBGRUPO"},
	{field: FieldAccountName, current: "NOME CONTA", legacy: "NOME CONTA"},
	{field: FieldAmount, current: "VALOR", legacy: "VALOR"},
}

// RequiredColumns returns the required headers in the current convention.
func RequiredColumns() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.current
	}
	return out
}

func (f Field) String() string {
	if int(f) < len(columns) {
		return columns[f].current
	}
	return "UNKNOWN"
}

// foldHeader drops all whitespace, accents and case so " Cód. Conta " and
// "CÓD.CONTA" compare equal.
func foldHeader(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return strings.ToUpper(models.FoldAccents(s))
}

// headerMap points each canonical field at the raw header carrying it.
type headerMap map[Field]string

// resolveHeaders matches raw headers to canonical fields. Current names win
// when a sheet carries both spellings.
func resolveHeaders(headers []string) (headerMap, []column, Convention) {
	byFold := make(map[string]string, len(headers))
	for _, h := range headers {
		key := foldHeader(h)
		if _, ok := byFold[key]; !ok {
			byFold[key] = h
		}
	}

	hm := make(headerMap, len(columns))
	var missing []column
	legacy, current := 0, 0
	for _, c := range columns {
		distinct := foldHeader(c.current) != foldHeader(c.legacy)
		if raw, ok := byFold[foldHeader(c.current)]; ok {
			hm[c.field] = raw
			if distinct {
				current++
			}
			continue
		}
		if raw, ok := byFold[foldHeader(c.legacy)]; ok && distinct {
			hm[c.field] = raw
			legacy++
			continue
		}
		missing = append(missing, c)
	}

	convention := ConventionCurrent
	switch {
	case legacy > 0 && current == 0:
		convention = ConventionLegacy
	case legacy > 0:
		convention = ConventionMixed
	}
	return hm, missing, convention
}
