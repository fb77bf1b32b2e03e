package analytics

import (
	"strings"
	"time"

	"github.com/rmo02/dash-financeiro/pkg/models"
	"github.com/shopspring/decimal"
)

// PersonnelYearEnd reports whether r is a December personnel expense, the one
// case where magnitudes do not come from a plain absolute value.
func PersonnelYearEnd(r models.Record) bool {
	return r.Group == models.GroupExpenses &&
		strings.EqualFold(strings.TrimSpace(r.Subgroup), models.SubgroupPersonnel) &&
		r.Period.UTC().Month() == time.December
}

// Magnitude is the contribution of r to every sum-of-magnitudes aggregate.
// December personnel expenses flip negative amounts and keep non-negative ones
// as stored; every other record contributes its absolute value. Stored amounts
// are never changed.
func Magnitude(r models.Record) decimal.Decimal {
	if PersonnelYearEnd(r) {
		if r.Amount.IsNegative() {
			return r.Amount.Neg()
		}
		return r.Amount
	}
	return r.Amount.Abs()
}
