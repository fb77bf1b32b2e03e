package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/rmo02/dash-financeiro/pkg/models"
	"github.com/shopspring/decimal"
)

func rec(company, group, subgroup, date, amount string) models.Record {
	period, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return models.Record{
		Company:     company,
		Period:      period,
		AccountCode: "1",
		AccountName: subgroup,
		Group:       group,
		Subgroup:    subgroup,
		Amount:      decimal.RequireFromString(amount),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("Expected %s %s, got %s", name, want, got)
	}
}

func scenario() []models.Record {
	return []models.Record{
		rec("A", models.GroupRevenue, "VENDAS", "2024-01-10", "1000"),
		rec("A", models.GroupDeductions, "IMPOSTOS", "2024-01-10", "-100"),
		rec("A", models.GroupExpenses, "ALUGUEL", "2024-01-10", "-300"),
	}
}

func TestComputeMetricsScenario(t *testing.T) {
	report := Compute(scenario(), models.Selection{Companies: []string{"A"}, Year: "2024"})
	m := report.Metrics

	assertDecimal(t, "gross revenue", m.GrossRevenue, "1000")
	assertDecimal(t, "deductions", m.Deductions, "100")
	assertDecimal(t, "net revenue", m.NetRevenue, "900")
	assertDecimal(t, "expenses", m.Expenses, "-300")
	assertDecimal(t, "net result", m.NetResult, "600")
	assertDecimal(t, "net margin", m.NetMargin.Round(2), "66.67")

	if report.Companies != nil {
		t.Errorf("Expected no per-company view for a single company, got %v", report.Companies)
	}
}

func TestComputeMetricsIdentities(t *testing.T) {
	sets := [][]models.Record{
		nil,
		scenario(),
		{
			rec("A", models.GroupRevenue, "VENDAS", "2024-03-01", "250.75"),
			rec("B", models.GroupDeductions, "IMPOSTOS", "2024-03-01", "-40.10"),
			rec("B", models.GroupDeductions, "DEVOLUCOES", "2024-04-01", "5"),
			rec("A", models.GroupExpenses, "ALUGUEL", "2024-04-01", "-1000"),
			rec("A", "OUTROS", "X", "2024-04-01", "999"),
		},
	}

	for i, records := range sets {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			var deductions decimal.Decimal
			for _, r := range records {
				if r.Group == models.GroupDeductions {
					deductions = deductions.Add(r.Amount)
				}
			}
			m := ComputeMetrics(records)
			if !m.GrossRevenue.Add(deductions).Equal(m.NetRevenue) {
				t.Errorf("Expected gross + deductions == net revenue, got %s + %s != %s", m.GrossRevenue, deductions, m.NetRevenue)
			}
			if !m.NetRevenue.Add(m.Expenses).Equal(m.NetResult) {
				t.Errorf("Expected net revenue + expenses == net result, got %s + %s != %s", m.NetRevenue, m.Expenses, m.NetResult)
			}
			if !m.Deductions.Equal(deductions.Abs()) {
				t.Errorf("Expected displayed deductions %s, got %s", deductions.Abs(), m.Deductions)
			}
		})
	}
}

func TestNetMarginZeroRevenue(t *testing.T) {
	records := []models.Record{
		rec("A", models.GroupRevenue, "VENDAS", "2024-01-10", "100"),
		rec("A", models.GroupDeductions, "IMPOSTOS", "2024-01-10", "-100"),
		rec("A", models.GroupExpenses, "ALUGUEL", "2024-01-10", "-50"),
	}
	m := ComputeMetrics(records)
	if !m.NetRevenue.IsZero() {
		t.Fatalf("Expected zero net revenue, got %s", m.NetRevenue)
	}
	if !m.NetMargin.IsZero() {
		t.Errorf("Expected zero margin, got %s", m.NetMargin)
	}
}

func TestNetMarginNegativeRevenue(t *testing.T) {
	records := []models.Record{
		rec("A", models.GroupRevenue, "VENDAS", "2024-01-10", "100"),
		rec("A", models.GroupDeductions, "IMPOSTOS", "2024-01-10", "-200"),
		rec("A", models.GroupExpenses, "ALUGUEL", "2024-01-10", "-50"),
	}
	m := ComputeMetrics(records)
	// -150 / |-100| * 100
	assertDecimal(t, "net margin", m.NetMargin, "-150")
}

func TestComputeEmpty(t *testing.T) {
	report := Compute(nil, models.Selection{})
	if len(report.Records) != 0 {
		t.Errorf("Expected no records, got %d", len(report.Records))
	}
	if !report.Metrics.NetMargin.IsZero() || !report.Metrics.GrossRevenue.IsZero() {
		t.Errorf("Expected zero metrics, got %+v", report.Metrics)
	}
	if len(report.Monthly) != 12 {
		t.Errorf("Expected 12 monthly rows, got %d", len(report.Monthly))
	}
	if len(report.Accounts) != 0 || len(report.Groups) != 0 {
		t.Errorf("Expected empty views, got %+v", report)
	}
}

func TestPersonnelYearEnd(t *testing.T) {
	december := rec("A", models.GroupExpenses, "Despesa com Pessoal", "2024-12-20", "-500")
	november := rec("A", models.GroupExpenses, "DESPESA COM PESSOAL", "2024-11-20", "-500")
	otherGroup := rec("A", "Despesa", "DESPESA COM PESSOAL", "2024-12-20", "-500")

	if !PersonnelYearEnd(december) {
		t.Errorf("Expected December personnel expense to match")
	}
	if PersonnelYearEnd(november) {
		t.Errorf("Expected November personnel expense not to match")
	}
	if PersonnelYearEnd(otherGroup) {
		t.Errorf("Expected group comparison to be case-sensitive")
	}

	assertDecimal(t, "december magnitude", Magnitude(december), "500")
	assertDecimal(t, "november magnitude", Magnitude(november), "500")

	positive := december
	positive.Amount = dec("120")
	assertDecimal(t, "positive december magnitude", Magnitude(positive), "120")

	for _, r := range []models.Record{december, november} {
		subgroups := SubgroupTotals([]models.Record{r})
		if len(subgroups) != 1 {
			t.Fatalf("Expected one subgroup, got %v", subgroups)
		}
		assertDecimal(t, "subgroup total "+r.Month(), subgroups[0].Value, "500")
	}
}

func TestMagnitudeIdempotent(t *testing.T) {
	records := []models.Record{
		rec("A", models.GroupExpenses, "DESPESA COM PESSOAL", "2024-12-20", "-500"),
		rec("A", models.GroupExpenses, "DESPESA COM PESSOAL", "2024-12-20", "80"),
		rec("A", models.GroupExpenses, "ALUGUEL", "2024-12-20", "-70"),
		rec("A", models.GroupRevenue, "VENDAS", "2024-06-20", "300"),
	}
	for _, r := range records {
		once := Magnitude(r)
		again := r
		again.Amount = once
		if twice := Magnitude(again); !twice.Equal(once) {
			t.Errorf("Expected idempotent contribution for %s, got %s then %s", r, once, twice)
		}
	}
}

func dataset() []models.Record {
	return []models.Record{
		rec("A", models.GroupRevenue, "VENDAS", "2023-12-05", "10"),
		rec("A", models.GroupRevenue, "SERVICOS", "2024-03-05", "20"),
		rec("B", models.GroupRevenue, "VENDAS", "2024-03-15", "40"),
		rec("B", models.GroupExpenses, "ALUGUEL", "2024-07-01", "-30"),
		rec("C", models.GroupDeductions, "IMPOSTOS", "2024-12-31", "-5"),
		rec("A", models.GroupExpenses, "DESPESA COM PESSOAL", "2024-12-31", "-15"),
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		sel  models.Selection
		want int
	}{
		{name: "no restriction", sel: models.Selection{}, want: 6},
		{name: "company", sel: models.Selection{Companies: []string{"A"}}, want: 3},
		{name: "companies", sel: models.Selection{Companies: []string{"A", "C"}}, want: 4},
		{name: "year", sel: models.Selection{Year: "2024"}, want: 5},
		{name: "all years", sel: models.Selection{Year: models.AllSentinel}, want: 6},
		{name: "months folded", sel: models.Selection{Months: []string{"Março", "dezembro"}}, want: 5},
		{name: "months and year", sel: models.Selection{Months: []string{"marco", "Dezembro"}, Year: "2024"}, want: 4},
		{name: "unknown month", sel: models.Selection{Months: []string{"smarch"}}, want: 0},
		{name: "group", sel: models.Selection{Groups: []string{models.GroupRevenue}}, want: 3},
		{name: "subgroup", sel: models.Selection{Subgroups: []string{"VENDAS", "ALUGUEL"}}, want: 3},
		{name: "conjunction", sel: models.Selection{Companies: []string{"B"}, Groups: []string{models.GroupRevenue}, Year: "2024"}, want: 1},
		{name: "no match", sel: models.Selection{Companies: []string{"Z"}}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(dataset(), tt.sel)
			if len(got) != tt.want {
				t.Fatalf("Expected %d records, got %d", tt.want, len(got))
			}
			again := Filter(got, tt.sel)
			if len(again) != len(got) {
				t.Fatalf("Expected filtering to be idempotent, got %d then %d", len(got), len(again))
			}
			for i := range got {
				if again[i].String() != got[i].String() {
					t.Errorf("Expected same record at %d, got %s and %s", i, got[i], again[i])
				}
			}
		})
	}
}

func TestExtractDimensions(t *testing.T) {
	records := dataset()

	dims := ExtractDimensions(records, models.Selection{})
	if fmt.Sprint(dims.Companies) != "[A B C]" {
		t.Errorf("Expected companies [A B C], got %v", dims.Companies)
	}
	if fmt.Sprint(dims.Years) != "[2023 2024]" {
		t.Errorf("Expected years [2023 2024], got %v", dims.Years)
	}
	if want := fmt.Sprint([]string{models.GroupRevenue, models.GroupExpenses, models.GroupDeductions}); fmt.Sprint(dims.Groups) != want {
		t.Errorf("Expected groups %s, got %v", want, dims.Groups)
	}
	if len(dims.Months) != 12 || dims.Months[0] != "janeiro" || dims.Months[11] != "dezembro" {
		t.Errorf("Expected the fixed calendar, got %v", dims.Months)
	}
	if len(dims.Subgroups) != 5 {
		t.Errorf("Expected 5 subgroups, got %v", dims.Subgroups)
	}

	narrowed := ExtractDimensions(records, models.Selection{Groups: []string{models.GroupExpenses}})
	if fmt.Sprint(narrowed.Subgroups) != "[ALUGUEL DESPESA COM PESSOAL]" {
		t.Errorf("Expected expense subgroups only, got %v", narrowed.Subgroups)
	}

	choices := GroupChoices(dims.Groups)
	if choices[0] != models.AllSentinel || len(choices) != len(dims.Groups)+1 {
		t.Errorf("Expected sentinel first, got %v", choices)
	}
}

func TestOtherSubgroupIsFilterable(t *testing.T) {
	records := []models.Record{
		rec("A", models.GroupRevenue, "VENDAS", "2024-01-01", "100"),
		rec("A", models.GroupRevenue, "", "2024-01-01", "50"),
		rec("A", models.GroupExpenses, " ", "2024-02-01", "-20"),
	}

	dims := ExtractDimensions(records, models.Selection{})
	if want := fmt.Sprint([]string{"VENDAS", models.OtherSubgroup}); fmt.Sprint(dims.Subgroups) != want {
		t.Errorf("Expected subgroups %s, got %v", want, dims.Subgroups)
	}

	sel := models.Selection{Subgroups: []string{models.OtherSubgroup}}
	filtered := Filter(records, sel)
	if len(filtered) != 2 {
		t.Fatalf("Expected the 2 records without subgroup, got %v", filtered)
	}
	report := Compute(records, sel)
	if len(report.Breakdowns.Revenue) != 1 || report.Breakdowns.Revenue[0].Label != models.OtherSubgroup {
		t.Errorf("Expected the breakdown to show %s, got %+v", models.OtherSubgroup, report.Breakdowns.Revenue)
	}

	narrowed := ExtractDimensions(records, models.Selection{Groups: []string{models.GroupExpenses}})
	if fmt.Sprint(narrowed.Subgroups) != "["+models.OtherSubgroup+"]" {
		t.Errorf("Expected only %s under expenses, got %v", models.OtherSubgroup, narrowed.Subgroups)
	}
}

func TestMonthly(t *testing.T) {
	rows := Monthly(Filter(dataset(), models.Selection{Year: "2024"}))
	if len(rows) != 12 {
		t.Fatalf("Expected 12 rows, got %d", len(rows))
	}
	for i, row := range rows {
		if row.Month != models.MonthName(time.Month(i+1)) {
			t.Errorf("Expected month %s at %d, got %s", models.MonthName(time.Month(i+1)), i, row.Month)
		}
	}

	assertDecimal(t, "march revenue", rows[2].Revenue, "60")
	assertDecimal(t, "january revenue", rows[0].Revenue, "0")
	assertDecimal(t, "july expenses", rows[6].Expenses, "30")
	assertDecimal(t, "july result", rows[6].Result, "-30")
	assertDecimal(t, "december deductions", rows[11].Deductions, "5")
	assertDecimal(t, "december expenses", rows[11].Expenses, "15")
	assertDecimal(t, "december result", rows[11].Result, "-20")
	if rows[11].Label != "dez" {
		t.Errorf("Expected label dez, got %s", rows[11].Label)
	}
}

func TestCompanyReports(t *testing.T) {
	report := Compute(dataset(), models.Selection{Companies: []string{"B", "A", "Z"}, Year: "2024"})
	if len(report.Companies) != 3 {
		t.Fatalf("Expected 3 company entries, got %v", report.Companies)
	}
	assertDecimal(t, "B net result", report.Companies["B"].Metrics.NetResult, "10")
	assertDecimal(t, "A gross revenue", report.Companies["A"].Metrics.GrossRevenue, "20")
	assertDecimal(t, "Z gross revenue", report.Companies["Z"].Metrics.GrossRevenue, "0")
	assertDecimal(t, "total gross revenue", report.Metrics.GrossRevenue, "60")

	empty := report.Companies["Z"].Breakdowns
	if len(empty.Revenue)+len(empty.Deductions)+len(empty.Expenses) != 0 {
		t.Errorf("Expected no breakdowns for a company without records, got %+v", empty)
	}
}

func TestCompanyReportBreakdowns(t *testing.T) {
	records := []models.Record{
		rec("A", models.GroupRevenue, "VENDAS", "2024-03-01", "100"),
		rec("A", models.GroupExpenses, "ALUGUEL", "2024-03-01", "-30"),
		rec("B", models.GroupRevenue, "SERVICOS", "2024-03-01", "40"),
		rec("B", models.GroupRevenue, "VENDAS", "2024-03-01", "25"),
		rec("B", models.GroupDeductions, "IMPOSTOS", "2024-03-01", "-5"),
		rec("B", models.GroupExpenses, "DESPESA COM PESSOAL", "2024-12-01", "-8"),
	}

	report := Compute(records, models.Selection{Companies: []string{"A", "B"}})

	a := report.Companies["A"].Breakdowns
	if len(a.Revenue) != 1 || a.Revenue[0].Label != "VENDAS" {
		t.Fatalf("Expected A revenue breakdown [VENDAS], got %+v", a.Revenue)
	}
	assertDecimal(t, "A VENDAS", a.Revenue[0].Value, "100")
	if len(a.Deductions) != 0 {
		t.Errorf("Expected no deductions for A, got %+v", a.Deductions)
	}
	if len(a.Expenses) != 1 || a.Expenses[0].Label != "ALUGUEL" {
		t.Fatalf("Expected A expense breakdown [ALUGUEL], got %+v", a.Expenses)
	}
	assertDecimal(t, "A ALUGUEL", a.Expenses[0].Value, "30")

	b := report.Companies["B"].Breakdowns
	if len(b.Revenue) != 2 || b.Revenue[0].Label != "SERVICOS" || b.Revenue[1].Label != "VENDAS" {
		t.Fatalf("Expected B revenue breakdown [SERVICOS VENDAS], got %+v", b.Revenue)
	}
	assertDecimal(t, "B VENDAS", b.Revenue[1].Value, "25")
	assertDecimal(t, "B IMPOSTOS", b.Deductions[0].Value, "5")
	// December personnel expense keeps its magnitude.
	assertDecimal(t, "B personnel", b.Expenses[0].Value, "8")

	overall := report.Breakdowns.Revenue
	if len(overall) != 2 || overall[0].Label != "VENDAS" {
		t.Errorf("Expected the overall breakdown to merge companies, got %+v", overall)
	}
	assertDecimal(t, "overall VENDAS", overall[0].Value, "125")
}

func TestComputeBreakdowns(t *testing.T) {
	records := []models.Record{
		rec("A", models.GroupRevenue, "VENDAS", "2024-01-01", "100"),
		rec("A", models.GroupRevenue, "SERVICOS", "2024-01-01", "300"),
		rec("A", models.GroupRevenue, "", "2024-01-01", "50"),
		rec("A", models.GroupRevenue, "JUROS", "2024-01-01", "10"),
		rec("A", models.GroupExpenses, "ALUGUEL", "2024-01-01", "-40"),
		rec("A", models.GroupExpenses, "DESPESA COM PESSOAL", "2024-12-01", "-70"),
		rec("A", models.GroupDeductions, "IMPOSTOS", "2024-01-01", "-9"),
	}
	b := ComputeBreakdowns(records, TopBreakdowns)

	if len(b.Revenue) != 3 {
		t.Fatalf("Expected 3 revenue entries, got %v", b.Revenue)
	}
	if b.Revenue[0].Label != "SERVICOS" || b.Revenue[2].Label != models.OtherSubgroup {
		t.Errorf("Unexpected revenue order %v", b.Revenue)
	}
	if len(b.Expenses) != 2 || b.Expenses[0].Label != "DESPESA COM PESSOAL" {
		t.Errorf("Unexpected expenses %v", b.Expenses)
	}
	assertDecimal(t, "personnel", b.Expenses[0].Value, "70")
	assertDecimal(t, "deductions", b.Deductions[0].Value, "9")
}

func TestRankAccounts(t *testing.T) {
	var records []models.Record
	for i := 0; i < 12; i++ {
		r := rec("A", models.GroupExpenses, "X", "2024-01-01", fmt.Sprint(-(i + 1)))
		r.AccountCode = fmt.Sprint(i)
		r.AccountName = "Conta"
		records = append(records, r)
	}
	extra := rec("A", models.GroupRevenue, "Y", "2024-02-01", "5")
	extra.AccountCode = "11"
	extra.AccountName = "Conta"
	records = append(records, extra)

	got := RankAccounts(records, TopAccounts)
	if len(got) != 10 {
		t.Fatalf("Expected 10 accounts, got %d", len(got))
	}
	if got[0].Account != "11 - Conta" {
		t.Errorf("Expected account 11 first, got %s", got[0].Account)
	}
	assertDecimal(t, "signed value", got[0].Value, "-7")
	assertDecimal(t, "magnitude", got[0].Magnitude, "17")
	if got[9].Account != "2 - Conta" {
		t.Errorf("Expected account 2 last, got %s", got[9].Account)
	}
}

func TestGroupTotals(t *testing.T) {
	records := []models.Record{
		rec("A", models.GroupRevenue, "VENDAS", "2024-01-01", "10"),
		rec("A", models.GroupExpenses, "ALUGUEL", "2024-01-01", "-30"),
		rec("A", "NEUTRO", "Z", "2024-01-01", "0"),
	}
	got := GroupTotals(records)
	if len(got) != 2 || got[0].Label != models.GroupExpenses {
		t.Errorf("Expected expenses first and zero buckets dropped, got %v", got)
	}
}
