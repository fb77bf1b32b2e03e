package models

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var monthNames = [12]string{
	"janeiro",
	"fevereiro",
	"março",
	"abril",
	"maio",
	"junho",
	"julho",
	"agosto",
	"setembro",
	"outubro",
	"novembro",
	"dezembro",
}

var monthLabels = [12]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

// Months returns the fixed calendar of Portuguese month names, janeiro first.
func Months() []string {
	out := make([]string, len(monthNames))
	copy(out, monthNames[:])
	return out
}

// MonthName returns the canonical Portuguese name for m.
func MonthName(m time.Month) string {
	return monthNames[int(m)-1]
}

// MonthLabel returns the three letter label for m (jan, fev, ...).
func MonthLabel(m time.Month) string {
	return monthLabels[int(m)-1]
}

// LookupMonth resolves a month name to its time.Month. The match ignores case
// and accents, so "Março" and "marco" both resolve to March.
func LookupMonth(name string) (time.Month, bool) {
	key := strings.ToLower(FoldAccents(strings.TrimSpace(name)))
	for i, m := range monthNames {
		if FoldAccents(m) == key {
			return time.Month(i + 1), true
		}
	}
	return 0, false
}

// FoldAccents strips combining marks after NFD decomposition.
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
