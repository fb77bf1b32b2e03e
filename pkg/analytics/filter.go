package analytics

import (
	"time"

	"github.com/rmo02/dash-financeiro/pkg/models"
)

// Predicate returns the match function for sel. Dimensions are combined with
// AND, values inside one dimension with OR, and an empty dimension matches
// everything. Month names are matched ignoring case and accents; a year of ""
// or "Todos" matches every year. Subgroups match on the record's label, so
// models.OtherSubgroup selects records without a subgroup.
func Predicate(sel models.Selection) func(models.Record) bool {
	companies := toSet(sel.Companies)
	groups := toSet(sel.Groups)
	subgroups := toSet(sel.Subgroups)

	months := make(map[time.Month]bool, len(sel.Months))
	for _, name := range sel.Months {
		if m, ok := models.LookupMonth(name); ok {
			months[m] = true
		}
	}
	year := sel.Year
	if year == models.AllSentinel {
		year = ""
	}

	return func(r models.Record) bool {
		if len(sel.Companies) > 0 && !companies[r.Company] {
			return false
		}
		if year != "" && r.Year() != year {
			return false
		}
		if len(sel.Months) > 0 && !months[r.Period.UTC().Month()] {
			return false
		}
		if len(sel.Groups) > 0 && !groups[r.Group] {
			return false
		}
		if len(sel.Subgroups) > 0 && !subgroups[r.SubgroupLabel()] {
			return false
		}
		return true
	}
}

// Filter returns the records matching sel, in their original order. It is the
// only filtering path; every metric and view is computed from its output.
func Filter(records []models.Record, sel models.Selection) []models.Record {
	match := Predicate(sel)
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if match(r) {
			out = append(out, r)
		}
	}
	return out
}
