package catalog

import (
	"errors"
	"slices"
)

// Filter selects the rows that become class documents: one department and an
// allow-list of course numbers within it.
type Filter struct {
	Department string
	Numbers    []int
}

// DefaultFilter is the ECE core sequence the class collection was seeded with.
func DefaultFilter() Filter {
	return Filter{
		Department: "ECE",
		Numbers:    []int{110, 120, 210, 220, 391, 445, 330},
	}
}

// Match reports whether the row is selected. A Number that is not an
// integer can never be on the allow-list, so such rows are skipped like any
// other unlisted course.
func (f Filter) Match(row *SourceRow) (bool, error) {
	if row.Subject != f.Department {
		return false, nil
	}
	n, err := row.CourseNumber()
	if errors.Is(err, ErrInvalidNumber) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return slices.Contains(f.Numbers, n), nil
}
