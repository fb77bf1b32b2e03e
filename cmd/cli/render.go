package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/rmo02/dash-financeiro/pkg/analytics"
	"github.com/rmo02/dash-financeiro/pkg/models"
	"github.com/rmo02/dash-financeiro/pkg/normalize"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	positiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// formatBRL renders d as "R$ 1.234,56".
func formatBRL(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")

	var grouped strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(c)
	}

	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return fmt.Sprintf("%sR$ %s,%s", sign, grouped.String(), frac)
}

func formatPercent(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1) + "%"
}

func colored(d decimal.Decimal, text string) string {
	if d.IsNegative() {
		return negativeStyle.Render(text)
	}
	return positiveStyle.Render(text)
}

func renderMetrics(w io.Writer, m models.Metrics) {
	rows := []struct {
		label string
		value decimal.Decimal
		text  string
	}{
		{"Receita bruta", m.GrossRevenue, formatBRL(m.GrossRevenue)},
		{"Deduções", m.Deductions, formatBRL(m.Deductions)},
		{"Receita líquida", m.NetRevenue, formatBRL(m.NetRevenue)},
		{"Despesas", m.Expenses, formatBRL(m.Expenses)},
		{"Resultado líquido", m.NetResult, formatBRL(m.NetResult)},
		{"Margem líquida", m.NetMargin, formatPercent(m.NetMargin)},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-18s", r.label)), colored(r.value, r.text))
	}
}

func renderAmounts(w io.Writer, title string, amounts []models.Amount) {
	if len(amounts) == 0 {
		return
	}
	fmt.Fprintf(w, "  %s\n", labelStyle.Render(title))
	for _, a := range amounts {
		fmt.Fprintf(w, "    %-32s %s\n", a.Label, formatBRL(a.Value))
	}
}

func renderBreakdowns(w io.Writer, b models.Breakdowns) {
	renderAmounts(w, "Receita", b.Revenue)
	renderAmounts(w, "Deduções", b.Deductions)
	renderAmounts(w, "Despesas", b.Expenses)
}

// describeSelection summarizes the active filters for the report header.
func describeSelection(sel models.Selection) string {
	if sel.IsZero() {
		return "todos os lançamentos"
	}
	var parts []string
	add := func(label string, values []string) {
		if len(values) > 0 {
			parts = append(parts, label+" "+strings.Join(values, ", "))
		}
	}
	add("empresas", sel.Companies)
	if sel.Year != "" {
		parts = append(parts, "ano "+sel.Year)
	}
	add("meses", sel.Months)
	add("grupos", sel.Groups)
	add("subgrupos", sel.Subgroups)
	return strings.Join(parts, "; ")
}

func renderReport(w io.Writer, title string, report models.Report) {
	fmt.Fprintln(w, titleStyle.Render(title))
	fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("Filtros"), describeSelection(report.Selection))
	fmt.Fprintf(w, "  %s %d\n", labelStyle.Render("Lançamentos"), len(report.Records))
	renderMetrics(w, report.Metrics)

	if len(report.Companies) > 0 {
		fmt.Fprintln(w, titleStyle.Render("Por empresa"))
		for _, company := range report.Selection.Companies {
			view, ok := report.Companies[company]
			if !ok {
				continue
			}
			fmt.Fprintf(w, " %s\n", company)
			renderMetrics(w, view.Metrics)
			renderBreakdowns(w, view.Breakdowns)
		}
	}

	fmt.Fprintln(w, titleStyle.Render("Principais subgrupos"))
	renderBreakdowns(w, report.Breakdowns)

	fmt.Fprintln(w, titleStyle.Render("Mensal"))
	fmt.Fprintf(w, "  %s\n", labelStyle.Render(fmt.Sprintf("%-4s %18s %18s %18s %18s", "mês", "receita", "deduções", "despesas", "resultado")))
	for _, m := range report.Monthly {
		fmt.Fprintf(w, "  %-4s %18s %18s %18s %s\n", m.Label,
			formatBRL(m.Revenue), formatBRL(m.Deductions), formatBRL(m.Expenses),
			colored(m.Result, fmt.Sprintf("%18s", formatBRL(m.Result))))
	}

	fmt.Fprintln(w, titleStyle.Render("Principais contas"))
	for i, a := range report.Accounts {
		fmt.Fprintf(w, "  %2d. %-40s %s\n", i+1, a.Account, colored(a.Value, formatBRL(a.Value)))
	}
	fmt.Fprintln(w)
}

func renderDimensions(w io.Writer, dims models.Dimensions) {
	lists := map[string][]string{
		"Empresas":  dims.Companies,
		"Anos":      dims.Years,
		"Meses":     dims.Months,
		"Grupos":    analytics.GroupChoices(dims.Groups),
		"Subgrupos": dims.Subgroups,
	}
	names := make([]string, 0, len(lists))
	for name := range lists {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s %s\n", titleStyle.Render(name+":"), strings.Join(lists[name], ", "))
	}
}

func renderWarnings(w io.Writer, warnings []normalize.Warning) {
	for _, warning := range warnings {
		fmt.Fprintln(w, warnStyle.Render("! "+warning.String()))
	}
}
