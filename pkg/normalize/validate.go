package normalize

import (
	"strings"

	"github.com/rmo02/dash-financeiro/pkg/parser"
	"github.com/schollz/closestmatch"
)

// Validate checks the header of the first row against the required columns.
// It looks at structure only, never at values.
func Validate(rows []parser.RawRow) error {
	if len(rows) == 0 {
		return ErrEmptyDataset
	}
	headers := rows[0].Headers()
	hm, missing, _ := resolveHeaders(headers)
	if len(missing) == 0 {
		return nil
	}
	return newMissingColumnsError(missing, headers, hm)
}

func newMissingColumnsError(missing []column, headers []string, hm headerMap) *MissingColumnsError {
	used := make(map[string]bool, len(hm))
	for _, raw := range hm {
		used[raw] = true
	}

	// Only headers not already claimed by another column are worth suggesting.
	// closestmatch indexes lower case text, so keys and queries are lowered.
	byFold := make(map[string]string)
	var candidates []string
	for _, h := range headers {
		if used[h] {
			continue
		}
		key := strings.ToLower(foldHeader(h))
		if key == "" {
			continue
		}
		if _, ok := byFold[key]; !ok {
			byFold[key] = h
			candidates = append(candidates, key)
		}
	}

	e := &MissingColumnsError{Suggestions: make(map[string]string)}
	var cm *closestmatch.ClosestMatch
	if len(candidates) > 0 {
		cm = closestmatch.New(candidates, []int{2, 3})
	}
	for _, c := range missing {
		e.Missing = append(e.Missing, c.current)
		if cm == nil {
			continue
		}
		if match := cm.Closest(strings.ToLower(foldHeader(c.current))); match != "" {
			e.Suggestions[c.current] = byFold[match]
		}
	}
	return e
}
