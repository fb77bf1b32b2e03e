package normalize

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyDataset is returned when the sheet produced no rows.
	ErrEmptyDataset = errors.New("empty dataset")
	// ErrMissingColumns is matched by every *MissingColumnsError.
	ErrMissingColumns = errors.New("missing required columns")

	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCompany  = errors.New("empty company")
	// ErrAmbiguousAmount marks an amount like "12.345" that was read as
	// thousands grouping but may have been a number with three decimals.
	ErrAmbiguousAmount = errors.New("ambiguous amount read as thousands grouping")
)

// MissingColumnsError lists every required column absent from the header,
// named with the current header convention.
type MissingColumnsError struct {
	Missing []string
	// Suggestions maps a missing column to the closest header found in the
	// sheet, when there is a plausible one.
	Suggestions map[string]string
}

func (e *MissingColumnsError) Error() string {
	parts := make([]string, len(e.Missing))
	for i, name := range e.Missing {
		if s, ok := e.Suggestions[name]; ok {
			parts[i] = fmt.Sprintf("%s (did you mean %q?)", name, s)
			continue
		}
		parts[i] = name
	}
	return fmt.Sprintf("%s: %s", ErrMissingColumns, strings.Join(parts, ", "))
}

func (e *MissingColumnsError) Is(target error) bool {
	return target == ErrMissingColumns
}

// Warning describes a problem in one row. The row is excluded from the
// dataset unless Kept is set.
type Warning struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Value  any    `json:"value"`
	Reason string `json:"reason"`
	Kept   bool   `json:"kept"`
}

func (w Warning) String() string {
	s := fmt.Sprintf("row %d, column %s: %s (value %v)", w.Row, w.Column, w.Reason, w.Value)
	if w.Kept {
		s += ", row kept"
	}
	return s
}
