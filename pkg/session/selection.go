package session

import (
	"github.com/rmo02/dash-financeiro/pkg/analytics"
	"github.com/rmo02/dash-financeiro/pkg/models"
)

// Selection returns a copy of the active selection.
func (s *Store) Selection() models.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection.Clone()
}

// SetSelection replaces the whole selection.
func (s *Store) SetSelection(sel models.Selection) {
	s.update(func(models.Selection) models.Selection { return sel.Clone() })
}

func (s *Store) SetCompanies(companies ...string) {
	s.update(func(sel models.Selection) models.Selection {
		sel.Companies = companies
		return sel
	})
}

func (s *Store) SetMonths(months ...string) {
	s.update(func(sel models.Selection) models.Selection {
		sel.Months = months
		return sel
	})
}

func (s *Store) SetYear(year string) {
	s.update(func(sel models.Selection) models.Selection {
		sel.Year = year
		return sel
	})
}

// SetGroups changes the group filter and drops selected subgroups that no
// longer occur under any of the new groups.
func (s *Store) SetGroups(groups ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := s.selection.Clone()
	sel.Groups = append([]string(nil), groups...)
	if s.dataset != nil && len(groups) > 0 && len(sel.Subgroups) > 0 {
		allowed := make(map[string]bool)
		for _, sg := range analytics.Subgroups(s.dataset.Records, groups) {
			allowed[sg] = true
		}
		kept := sel.Subgroups[:0]
		for _, sg := range sel.Subgroups {
			if allowed[sg] {
				kept = append(kept, sg)
			}
		}
		sel.Subgroups = kept
	}
	s.selection = sel
}

func (s *Store) SetSubgroups(subgroups ...string) {
	s.update(func(sel models.Selection) models.Selection {
		sel.Subgroups = subgroups
		return sel
	})
}

// ResetFilters goes back to the selection made right after a load.
func (s *Store) ResetFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = defaultSelection(s.dataset)
}

// update swaps the selection for a modified copy. Callers never see a
// selection change while they hold one.
func (s *Store) update(fn func(models.Selection) models.Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = fn(s.selection.Clone()).Clone()
}
