package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Groups with formula meaning. The set of groups is data driven; only these
// three take part in the headline metrics.
const (
	GroupRevenue    = "RECEITA"
	GroupDeductions = "DEDUCOES DE VENDAS"
	GroupExpenses   = "DESPESA"

	SubgroupPersonnel = "DESPESA COM PESSOAL"
)

const (
	// AllSentinel is the "all values" entry shown first in single-select lists.
	AllSentinel = "Todos"
	// NoAccountName labels accounts whose name cell was empty.
	NoAccountName = "Sem nome"
	// OtherSubgroup labels records whose subgroup cell was empty.
	OtherSubgroup = "Outros"
)

// Record is one canonical transaction after normalization. Records are
// created in one batch per upload and never modified afterwards.
type Record struct {
	Row         int             `json:"row"`
	Company     string          `json:"company"`
	Period      time.Time       `json:"period"`
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Group       string          `json:"group"`
	Subgroup    string          `json:"subgroup"`
	Amount      decimal.Decimal `json:"amount"`
}

// Year returns the UTC year of the period as a string.
func (r Record) Year() string {
	return strconv.Itoa(r.Period.UTC().Year())
}

// MonthIndex returns the zero based UTC month of the period.
func (r Record) MonthIndex() int {
	return int(r.Period.UTC().Month()) - 1
}

// Month returns the canonical Portuguese month name of the period.
func (r Record) Month() string {
	return MonthName(r.Period.UTC().Month())
}

// Date formats the period as DD/MM/YYYY.
func (r Record) Date() string {
	return r.Period.UTC().Format("02/01/2006")
}

// AccountLabel is the display key used to bucket accounts.
func (r Record) AccountLabel() string {
	name := strings.TrimSpace(r.AccountName)
	if name == "" {
		name = NoAccountName
	}
	if code := strings.TrimSpace(r.AccountCode); code != "" {
		return fmt.Sprintf("%s - %s", code, name)
	}
	return name
}

// SubgroupLabel returns the subgroup, or OtherSubgroup when it is empty.
func (r Record) SubgroupLabel() string {
	if strings.TrimSpace(r.Subgroup) == "" {
		return OtherSubgroup
	}
	return r.Subgroup
}

func (r Record) String() string {
	return fmt.Sprintf("%s | %s | %s | %s | %s | %s", r.Date(), r.Company, r.Group, r.Subgroup, r.AccountLabel(), r.Amount.StringFixed(2))
}
