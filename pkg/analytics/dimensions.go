package analytics

import (
	"sort"

	"github.com/rmo02/dash-financeiro/pkg/models"
)

// ExtractDimensions lists the values each filter can take. The subgroup list
// is narrowed to the groups in sel when any are selected.
func ExtractDimensions(records []models.Record, sel models.Selection) models.Dimensions {
	return models.Dimensions{
		Companies: Companies(records),
		Months:    models.Months(),
		Years:     Years(records),
		Groups:    Groups(records),
		Subgroups: Subgroups(records, sel.Groups),
	}
}

// Companies returns the distinct companies in first-seen order.
func Companies(records []models.Record) []string {
	return distinct(records, func(r models.Record) string { return r.Company })
}

// Groups returns the distinct groups in first-seen order.
func Groups(records []models.Record) []string {
	return distinct(records, func(r models.Record) string { return r.Group })
}

// Years returns the distinct UTC years, sorted ascending as strings.
func Years(records []models.Record) []string {
	years := distinct(records, models.Record.Year)
	sort.Strings(years)
	return years
}

// Subgroups returns the distinct subgroup labels in first-seen order, so an
// empty subgroup is listed as models.OtherSubgroup. With groups given, only
// subgroups that occur under one of them are listed.
func Subgroups(records []models.Record, groups []string) []string {
	if len(groups) == 0 {
		return distinct(records, models.Record.SubgroupLabel)
	}
	allowed := toSet(groups)
	return distinct(records, func(r models.Record) string {
		if !allowed[r.Group] {
			return ""
		}
		return r.SubgroupLabel()
	})
}

// GroupChoices prefixes the "all" sentinel for single-select lists.
func GroupChoices(groups []string) []string {
	out := make([]string, 0, len(groups)+1)
	out = append(out, models.AllSentinel)
	return append(out, groups...)
}

func distinct(records []models.Record, key func(models.Record) string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, r := range records {
		k := key(r)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
