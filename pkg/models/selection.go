package models

// Selection is the active filter state. Every multi-valued dimension treats an
// empty slice as "no restriction"; an empty Year means every year passes.
//
// Selections are values: callers replace them wholesale instead of mutating a
// selection that is in use.
type Selection struct {
	Companies []string `json:"companies" yaml:"companies"`
	Months    []string `json:"months" yaml:"months"`
	Year      string   `json:"year" yaml:"year"`
	Groups    []string `json:"groups" yaml:"groups"`
	Subgroups []string `json:"subgroups" yaml:"subgroups"`
}

// Clone returns a deep copy.
func (s Selection) Clone() Selection {
	return Selection{
		Companies: cloneStrings(s.Companies),
		Months:    cloneStrings(s.Months),
		Year:      s.Year,
		Groups:    cloneStrings(s.Groups),
		Subgroups: cloneStrings(s.Subgroups),
	}
}

// MultiCompany reports whether more than one company is selected, which is
// when per-company metrics are produced.
func (s Selection) MultiCompany() bool {
	return len(s.Companies) > 1
}

// IsZero reports whether no dimension is restricted.
func (s Selection) IsZero() bool {
	return len(s.Companies) == 0 && len(s.Months) == 0 && s.Year == "" &&
		len(s.Groups) == 0 && len(s.Subgroups) == 0
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
