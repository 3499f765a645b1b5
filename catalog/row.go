// Package catalog reads the course listing export and turns qualifying rows
// into class documents.
package catalog

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidNumber is returned when a course number cell is not an integer.
var ErrInvalidNumber = errors.New("course number is not an integer")

// SourceRow is one course offering from the listing export. Only the columns
// below are read; any other column in the file is ignored.
type SourceRow struct {
	Subject      string `csv:"Subject"`
	Number       string `csv:"Number"`
	Name         string `csv:"Name"`
	SectionTitle string `csv:"Section Title"`
	Spring       Flag   `csv:"Spring"`
	Summer       Flag   `csv:"Summer"`
	Fall         Flag   `csv:"Fall"`
}

// CourseNumber parses the Number cell. Spreadsheet exports sometimes write
// whole numbers as "220.0", which is accepted.
func (r *SourceRow) CourseNumber() (int, error) {
	s := strings.TrimSpace(r.Number)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, r.Number)
	}
	return int(f), nil
}

// Flag is a boolean-like term column. Empty cells read as false.
type Flag bool

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (f *Flag) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "n", "no":
		*f = false
		return nil
	case "x", "y", "yes":
		*f = true
		return nil
	}
	if b, err := strconv.ParseBool(s); err == nil {
		*f = Flag(b)
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) {
		return fmt.Errorf("invalid term flag %q", s)
	}
	*f = n != 0
	return nil
}
