package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/rmo02/dash-financeiro/pkg/analytics"
	"github.com/rmo02/dash-financeiro/pkg/models"
	"github.com/rmo02/dash-financeiro/pkg/normalize"
	"github.com/rmo02/dash-financeiro/pkg/parser"
)

// Decoder turns uploaded bytes into raw rows. *parser.Parser implements it.
type Decoder interface {
	ProcessBytes(data []byte, filename string) ([]parser.RawRow, error)
}

// Dataset is one successfully loaded upload. It is never modified after it
// is committed; a new upload replaces it as a whole.
type Dataset struct {
	ID         uuid.UUID            `json:"id"`
	Generation uint64               `json:"generation"`
	FileName   string               `json:"file_name"`
	Records    []models.Record      `json:"-"`
	Warnings   []normalize.Warning  `json:"warnings"`
	Convention normalize.Convention `json:"convention"`
	Dimensions models.Dimensions    `json:"dimensions"`
	LoadedAt   time.Time            `json:"loaded_at"`
}

// Store holds the current dataset and filter selection for one session.
type Store struct {
	logger     *log.Logger
	decoder    Decoder
	normalizer *normalize.Normalizer

	mu        sync.RWMutex
	issued    uint64
	pending   int
	dataset   *Dataset
	selection models.Selection
	lastErr   error
}

func New(logger *log.Logger, decoder Decoder) *Store {
	return &Store{
		logger:     logger,
		decoder:    decoder,
		normalizer: normalize.New(logger),
	}
}

// Load decodes, validates and normalizes an upload and makes it the current
// dataset. When a newer Load started in the meantime the result is dropped and
// ErrStaleGeneration is returned. A failed load keeps the previous dataset.
func (s *Store) Load(ctx context.Context, data []byte, filename string) (*Dataset, error) {
	gen := s.begin()
	s.logger.Info("loading workbook", "file", filename, "generation", gen, "bytes", len(data))

	ds, err := s.build(ctx, gen, data, filename)
	return s.commit(gen, ds, err)
}

func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	s.pending++
	return s.issued
}

func (s *Store) build(ctx context.Context, gen uint64, data []byte, filename string) (*Dataset, error) {
	rows, err := s.decoder.ProcessBytes(data, filename)
	if err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", filename, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := s.normalizer.Normalize(rows)
	if err != nil {
		return nil, fmt.Errorf("error normalizing %s: %w", filename, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Dataset{
		ID:         uuid.New(),
		Generation: gen,
		FileName:   filename,
		Records:    result.Records,
		Warnings:   result.Warnings,
		Convention: result.Convention,
		Dimensions: analytics.ExtractDimensions(result.Records, models.Selection{}),
		LoadedAt:   time.Now().UTC(),
	}, nil
}

func (s *Store) commit(gen uint64, ds *Dataset, err error) (*Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--

	if gen != s.issued {
		s.logger.Warn("discarding stale load", "generation", gen, "latest", s.issued)
		return nil, ErrStaleGeneration
	}
	if err != nil {
		s.lastErr = err
		s.logger.Warn("load failed", "generation", gen, "error", err)
		return nil, err
	}

	s.dataset = ds
	s.selection = defaultSelection(ds)
	s.lastErr = nil
	s.logger.Info("dataset loaded", "id", ds.ID, "records", len(ds.Records), "warnings", len(ds.Warnings), "convention", ds.Convention)
	return ds, nil
}

// defaultSelection picks the first company and the most recent year.
func defaultSelection(ds *Dataset) models.Selection {
	var sel models.Selection
	if ds == nil {
		return sel
	}
	if companies := ds.Dimensions.Companies; len(companies) > 0 {
		sel.Companies = []string{companies[0]}
	}
	if years := ds.Dimensions.Years; len(years) > 0 {
		sel.Year = years[len(years)-1]
	}
	return sel
}

// Dataset returns the current dataset.
func (s *Store) Dataset() (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dataset == nil {
		return nil, ErrNoDataset
	}
	return s.dataset, nil
}

// Loading reports whether a load is in progress.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending > 0
}

// LastError returns the error of the latest load, or nil when it succeeded.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *Store) snapshot() (*Dataset, models.Selection) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset, s.selection.Clone()
}

// Report recomputes every view for the current selection.
func (s *Store) Report() (models.Report, error) {
	ds, sel := s.snapshot()
	if ds == nil {
		return models.Report{}, ErrNoDataset
	}
	return analytics.Compute(ds.Records, sel), nil
}

// Filtered returns the records matching the current selection.
func (s *Store) Filtered() ([]models.Record, error) {
	ds, sel := s.snapshot()
	if ds == nil {
		return nil, ErrNoDataset
	}
	return analytics.Filter(ds.Records, sel), nil
}

// Dimensions returns the filter lists, with subgroups narrowed by the
// selected groups.
func (s *Store) Dimensions() (models.Dimensions, error) {
	ds, sel := s.snapshot()
	if ds == nil {
		return models.Dimensions{}, ErrNoDataset
	}
	return analytics.ExtractDimensions(ds.Records, sel), nil
}
