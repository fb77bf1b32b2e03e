package session

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/cucumber/godog"
	"github.com/rmo02/dash-financeiro/pkg/models"
	"github.com/rmo02/dash-financeiro/pkg/parser"
	"github.com/shopspring/decimal"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "dashboard",
		ScenarioInitializer: initializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"testdata/features"},
			Strict:   true,
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

type featureContext struct {
	store    *Store
	workbook []byte
	err      error
}

func initializeScenario(ctx *godog.ScenarioContext) {
	logger := log.Default()
	fc := &featureContext{store: New(logger, parser.New(logger))}

	ctx.Step(`^a workbook with the rows:$`, fc.aWorkbookWithTheRows)
	ctx.Step(`^I upload it as "([^"]*)"$`, fc.iUploadItAs)
	ctx.Step(`^I select the companies "([^"]*)"$`, fc.iSelectTheCompanies)
	ctx.Step(`^I select the months "([^"]*)"$`, fc.iSelectTheMonths)
	ctx.Step(`^(\d+) records? (?:is|are) loaded$`, fc.recordsAreLoaded)
	ctx.Step(`^the (gross revenue|deductions|net revenue|expenses|net result|net margin) is "([^"]*)"$`, fc.theMetricIs)
	ctx.Step(`^the subgroup "([^"]*)" totals "([^"]*)"$`, fc.theSubgroupTotals)
	ctx.Step(`^company "([^"]*)" has gross revenue "([^"]*)"$`, fc.companyHasGrossRevenue)
	ctx.Step(`^the upload fails with "([^"]*)"$`, fc.theUploadFailsWith)
}

func (fc *featureContext) aWorkbookWithTheRows(table *godog.Table) error {
	var b strings.Builder
	for _, row := range table.Rows {
		cells := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			cells[i] = cell.Value
		}
		b.WriteString(strings.Join(cells, ";"))
		b.WriteString("\n")
	}
	fc.workbook = []byte(b.String())
	return nil
}

func (fc *featureContext) iUploadItAs(filename string) error {
	_, fc.err = fc.store.Load(context.Background(), fc.workbook, filename)
	return nil
}

func (fc *featureContext) iSelectTheCompanies(list string) error {
	fc.store.SetCompanies(strings.Split(list, ",")...)
	return nil
}

func (fc *featureContext) iSelectTheMonths(list string) error {
	fc.store.SetMonths(strings.Split(list, ",")...)
	return nil
}

func (fc *featureContext) report() (models.Report, error) {
	if fc.err != nil {
		return models.Report{}, fmt.Errorf("upload failed: %w", fc.err)
	}
	return fc.store.Report()
}

func (fc *featureContext) recordsAreLoaded(n int) error {
	ds, err := fc.store.Dataset()
	if err != nil {
		return err
	}
	if len(ds.Records) != n {
		return fmt.Errorf("expected %d records, got %d", n, len(ds.Records))
	}
	return nil
}

func (fc *featureContext) theMetricIs(name, want string) error {
	report, err := fc.report()
	if err != nil {
		return err
	}
	m := report.Metrics
	values := map[string]decimal.Decimal{
		"gross revenue": m.GrossRevenue,
		"deductions":    m.Deductions,
		"net revenue":   m.NetRevenue,
		"expenses":      m.Expenses,
		"net result":    m.NetResult,
		"net margin":    m.NetMargin,
	}
	return expectDecimal(name, values[name], want)
}

func (fc *featureContext) theSubgroupTotals(subgroup, want string) error {
	report, err := fc.report()
	if err != nil {
		return err
	}
	for _, a := range report.Subgroups {
		if a.Label == subgroup {
			return expectDecimal(subgroup, a.Value, want)
		}
	}
	return fmt.Errorf("subgroup %s not found in %v", subgroup, report.Subgroups)
}

func (fc *featureContext) companyHasGrossRevenue(company, want string) error {
	report, err := fc.report()
	if err != nil {
		return err
	}
	view, ok := report.Companies[company]
	if !ok {
		return fmt.Errorf("no metrics for company %s", company)
	}
	return expectDecimal(company, view.Metrics.GrossRevenue, want)
}

func (fc *featureContext) theUploadFailsWith(message string) error {
	if fc.err == nil {
		return fmt.Errorf("expected upload to fail")
	}
	if got := Message(fc.err); got != message {
		return fmt.Errorf("expected message %q, got %q", message, got)
	}
	return nil
}

func expectDecimal(name string, got decimal.Decimal, want string) error {
	w, err := decimal.NewFromString(want)
	if err != nil {
		return err
	}
	if !got.Round(2).Equal(w) {
		return fmt.Errorf("expected %s %s, got %s", name, want, got)
	}
	return nil
}
