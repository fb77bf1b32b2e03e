package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/rmo02/dash-financeiro/pkg/config"
	"github.com/rmo02/dash-financeiro/pkg/csv"
	"github.com/rmo02/dash-financeiro/pkg/models"
	"github.com/rmo02/dash-financeiro/pkg/parser"
	"github.com/rmo02/dash-financeiro/pkg/session"
)

type filters struct {
	companies []string
	months    []string
	year      string
	groups    []string
	subgroups []string

	minAmount float64
	maxAmount float64
	account   string
}

// apply overrides the post-load defaults with the dimensions given on the
// command line. "Todos" lifts the restriction on companies, groups or year.
func (f *filters) apply(store *session.Store) {
	if len(f.companies) > 0 {
		if containsAll(f.companies) {
			store.SetCompanies()
		} else {
			store.SetCompanies(f.companies...)
		}
	}
	if f.year != "" {
		store.SetYear(f.year)
	}
	if len(f.months) > 0 {
		store.SetMonths(f.months...)
	}
	if len(f.subgroups) > 0 {
		store.SetSubgroups(f.subgroups...)
	}
	if len(f.groups) > 0 {
		if containsAll(f.groups) {
			store.SetGroups()
		} else {
			store.SetGroups(f.groups...)
		}
	}
}

func containsAll(values []string) bool {
	for _, v := range values {
		if strings.EqualFold(v, models.AllSentinel) {
			return true
		}
	}
	return false
}

func (f *filters) toFilterFunc() csv.FilterFunc {
	return func(r models.Record) bool {
		if f.minAmount != 0 && r.Amount.LessThan(decimal.NewFromFloat(f.minAmount)) {
			return false
		}
		if f.maxAmount != 0 && r.Amount.GreaterThan(decimal.NewFromFloat(f.maxAmount)) {
			return false
		}
		if f.account != "" {
			needle := strings.ToLower(models.FoldAccents(f.account))
			if !strings.Contains(strings.ToLower(models.FoldAccents(r.AccountLabel())), needle) {
				return false
			}
		}
		return true
	}
}

type FileProcessor struct {
	logger  *log.Logger
	store   *session.Store
	filters *filters
}

func NewFileProcessor(logger *log.Logger, cfg *config.Config, filters *filters) *FileProcessor {
	return &FileProcessor{
		logger:  logger,
		store:   session.New(logger, parser.New(logger, parser.WithSheet(cfg.Sheet))),
		filters: filters,
	}
}

// Load reads a workbook from disk into the session and applies the
// command line filters.
func (p *FileProcessor) Load(ctx context.Context, inputPath string) (*session.Dataset, error) {
	fileBytes, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	ds, err := p.store.Load(ctx, fileBytes, filepath.Base(inputPath))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", session.Message(err), err)
	}
	p.filters.apply(p.store)
	return ds, nil
}
