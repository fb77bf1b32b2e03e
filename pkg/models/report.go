package models

import "github.com/shopspring/decimal"

// Metrics holds the six headline figures.
//
// Deductions is the absolute value of the summed deductions, for display.
// Expenses keeps its sign (normally negative).
type Metrics struct {
	GrossRevenue decimal.Decimal `json:"gross_revenue"`
	Deductions   decimal.Decimal `json:"deductions"`
	NetRevenue   decimal.Decimal `json:"net_revenue"`
	Expenses     decimal.Decimal `json:"expenses"`
	NetResult    decimal.Decimal `json:"net_result"`
	NetMargin    decimal.Decimal `json:"net_margin"`
}

// Amount is a labelled total, used by breakdowns and distributions.
type Amount struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// Breakdowns are the top subgroups behind the revenue, deductions and
// expenses cards.
type Breakdowns struct {
	Revenue    []Amount `json:"revenue"`
	Deductions []Amount `json:"deductions"`
	Expenses   []Amount `json:"expenses"`
}

// CompanyReport is the per-company slice of the headline cards.
type CompanyReport struct {
	Metrics    Metrics    `json:"metrics"`
	Breakdowns Breakdowns `json:"breakdowns"`
}

// MonthlyRow is one calendar slot of the monthly rollup.
type MonthlyRow struct {
	Month      string          `json:"month"`
	Label      string          `json:"label"`
	Revenue    decimal.Decimal `json:"revenue"`
	Deductions decimal.Decimal `json:"deductions"`
	Expenses   decimal.Decimal `json:"expenses"`
	Result     decimal.Decimal `json:"result"`
}

// AccountTotal is one entry of the top accounts ranking. Value is the signed
// total shown to the user, Magnitude is what the ranking sorts by.
type AccountTotal struct {
	Account   string          `json:"account"`
	Value     decimal.Decimal `json:"value"`
	Magnitude decimal.Decimal `json:"magnitude"`
}

// Dimensions lists the values available to each filter.
type Dimensions struct {
	Companies []string `json:"companies"`
	Months    []string `json:"months"`
	Years     []string `json:"years"`
	Groups    []string `json:"groups"`
	Subgroups []string `json:"subgroups"`
}

// Report is everything the presentation layer consumes for one selection.
type Report struct {
	Selection  Selection                `json:"selection"`
	Records    []Record                 `json:"records"`
	Metrics    Metrics                  `json:"metrics"`
	Companies  map[string]CompanyReport `json:"companies,omitempty"`
	Breakdowns Breakdowns               `json:"breakdowns"`
	Monthly    []MonthlyRow             `json:"monthly"`
	Groups     []Amount                 `json:"groups"`
	Subgroups  []Amount                 `json:"subgroups"`
	Accounts   []AccountTotal           `json:"accounts"`
}
