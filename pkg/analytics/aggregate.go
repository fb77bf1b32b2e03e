package analytics

import (
	"sort"
	"time"

	"github.com/rmo02/dash-financeiro/pkg/models"
	"github.com/shopspring/decimal"
)

const (
	TopBreakdowns = 3
	TopAccounts   = 10
)

var hundred = decimal.NewFromInt(100)

// Compute filters records once and derives every view from that subset.
// Empty input produces zero values.
func Compute(records []models.Record, sel models.Selection) models.Report {
	filtered := Filter(records, sel)

	report := models.Report{
		Selection:  sel.Clone(),
		Records:    filtered,
		Metrics:    ComputeMetrics(filtered),
		Breakdowns: ComputeBreakdowns(filtered, TopBreakdowns),
		Monthly:    Monthly(filtered),
		Groups:     GroupTotals(filtered),
		Subgroups:  SubgroupTotals(filtered),
		Accounts:   RankAccounts(filtered, TopAccounts),
	}
	if sel.MultiCompany() {
		report.Companies = CompanyReports(filtered, sel.Companies)
	}
	return report
}

type sums struct {
	revenue    decimal.Decimal
	deductions decimal.Decimal
	expenses   decimal.Decimal
}

func (s *sums) add(r models.Record) {
	switch r.Group {
	case models.GroupRevenue:
		s.revenue = s.revenue.Add(r.Amount)
	case models.GroupDeductions:
		s.deductions = s.deductions.Add(r.Amount)
	case models.GroupExpenses:
		s.expenses = s.expenses.Add(r.Amount)
	}
}

// ComputeMetrics applies the headline formulas. Deductions are summed first
// and then shown as an absolute value; net margin is taken over the absolute
// net revenue and is zero when net revenue is zero.
func ComputeMetrics(records []models.Record) models.Metrics {
	var s sums
	for _, r := range records {
		s.add(r)
	}

	netRevenue := s.revenue.Add(s.deductions)
	netResult := netRevenue.Add(s.expenses)
	margin := decimal.Zero
	if !netRevenue.IsZero() {
		margin = netResult.Mul(hundred).Div(netRevenue.Abs())
	}

	return models.Metrics{
		GrossRevenue: s.revenue,
		Deductions:   s.deductions.Abs(),
		NetRevenue:   netRevenue,
		Expenses:     s.expenses,
		NetResult:    netResult,
		NetMargin:    margin,
	}
}

// CompanyReports computes metrics and breakdowns per selected company over
// the already filtered records. Companies without records get zero values.
func CompanyReports(records []models.Record, companies []string) map[string]models.CompanyReport {
	byCompany := make(map[string][]models.Record)
	for _, r := range records {
		byCompany[r.Company] = append(byCompany[r.Company], r)
	}

	out := make(map[string]models.CompanyReport, len(companies))
	for _, company := range companies {
		subset := byCompany[company]
		out[company] = models.CompanyReport{
			Metrics:    ComputeMetrics(subset),
			Breakdowns: ComputeBreakdowns(subset, TopBreakdowns),
		}
	}
	return out
}

// ComputeBreakdowns returns the largest subgroups behind the revenue,
// deductions and expenses cards.
func ComputeBreakdowns(records []models.Record, n int) models.Breakdowns {
	revenue, deductions, expenses := newBucket(), newBucket(), newBucket()
	for _, r := range records {
		switch r.Group {
		case models.GroupRevenue:
			revenue.add(r.SubgroupLabel(), r.Amount)
		case models.GroupDeductions:
			deductions.add(r.SubgroupLabel(), Magnitude(r))
		case models.GroupExpenses:
			expenses.add(r.SubgroupLabel(), Magnitude(r))
		}
	}
	return models.Breakdowns{
		Revenue:    top(revenue.amounts(), n),
		Deductions: top(deductions.amounts(), n),
		Expenses:   top(expenses.amounts(), n),
	}
}

// Monthly returns the twelve calendar months in order, zero filled.
func Monthly(records []models.Record) []models.MonthlyRow {
	var months [12]struct {
		signed     sums
		deductions decimal.Decimal
		expenses   decimal.Decimal
	}
	for _, r := range records {
		m := &months[r.MonthIndex()]
		m.signed.add(r)
		switch r.Group {
		case models.GroupDeductions:
			m.deductions = m.deductions.Add(Magnitude(r))
		case models.GroupExpenses:
			m.expenses = m.expenses.Add(Magnitude(r))
		}
	}

	rows := make([]models.MonthlyRow, len(months))
	for i, m := range months {
		month := time.Month(i + 1)
		rows[i] = models.MonthlyRow{
			Month:      models.MonthName(month),
			Label:      models.MonthLabel(month),
			Revenue:    m.signed.revenue,
			Deductions: m.deductions,
			Expenses:   m.expenses,
			Result:     m.signed.revenue.Add(m.signed.deductions).Add(m.signed.expenses),
		}
	}
	return rows
}

// GroupTotals is the magnitude distribution by group, largest first.
func GroupTotals(records []models.Record) []models.Amount {
	b := newBucket()
	for _, r := range records {
		label := r.Group
		if label == "" {
			label = models.OtherSubgroup
		}
		b.add(label, Magnitude(r))
	}
	return nonZero(b.amounts())
}

// SubgroupTotals is the magnitude distribution by subgroup, largest first.
func SubgroupTotals(records []models.Record) []models.Amount {
	b := newBucket()
	for _, r := range records {
		b.add(r.SubgroupLabel(), Magnitude(r))
	}
	return nonZero(b.amounts())
}

// RankAccounts buckets records by account label and returns at most n
// accounts ranked by summed magnitude. Value keeps the signed total.
func RankAccounts(records []models.Record, n int) []models.AccountTotal {
	index := make(map[string]int)
	var accounts []models.AccountTotal
	for _, r := range records {
		label := r.AccountLabel()
		i, ok := index[label]
		if !ok {
			i = len(accounts)
			index[label] = i
			accounts = append(accounts, models.AccountTotal{Account: label})
		}
		accounts[i].Value = accounts[i].Value.Add(r.Amount)
		accounts[i].Magnitude = accounts[i].Magnitude.Add(Magnitude(r))
	}

	sort.SliceStable(accounts, func(i, j int) bool {
		return accounts[i].Magnitude.GreaterThan(accounts[j].Magnitude)
	})
	if len(accounts) > n {
		accounts = accounts[:n]
	}
	if accounts == nil {
		accounts = []models.AccountTotal{}
	}
	return accounts
}

// bucket sums values per label and remembers first-seen order.
type bucket struct {
	labels []string
	totals map[string]decimal.Decimal
}

func newBucket() *bucket {
	return &bucket{totals: make(map[string]decimal.Decimal)}
}

func (b *bucket) add(label string, v decimal.Decimal) {
	if _, ok := b.totals[label]; !ok {
		b.labels = append(b.labels, label)
	}
	b.totals[label] = b.totals[label].Add(v)
}

// amounts returns the totals sorted by value, largest first. Ties keep
// first-seen order.
func (b *bucket) amounts() []models.Amount {
	out := make([]models.Amount, len(b.labels))
	for i, label := range b.labels {
		out[i] = models.Amount{Label: label, Value: b.totals[label]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Value.GreaterThan(out[j].Value)
	})
	return out
}

func top(amounts []models.Amount, n int) []models.Amount {
	if len(amounts) > n {
		return amounts[:n]
	}
	return amounts
}

func nonZero(amounts []models.Amount) []models.Amount {
	out := amounts[:0]
	for _, a := range amounts {
		if !a.Value.IsZero() {
			out = append(out, a)
		}
	}
	return out
}
