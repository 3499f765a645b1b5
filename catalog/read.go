package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/gocarina/gocsv"
)

// ErrMissingColumn is returned when the header lacks a column SourceRow reads.
var ErrMissingColumn = errors.New("missing column")

// requiredColumns are the csv tags of SourceRow.
var requiredColumns = []string{"Subject", "Number", "Name", "Section Title", "Spring", "Summer", "Fall"}

// ReadFile loads the whole listing export into memory.
func ReadFile(path string) ([]*SourceRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f)
}

// Read decodes a listing export with a header row. Every column of
// SourceRow must be present; extra columns are ignored.
func Read(r io.Reader) ([]*SourceRow, error) {
	var rows []*SourceRow
	if err := gocsv.UnmarshalDecoder(headerChecker{gocsv.DefaultCSVReader(r)}, &rows); err != nil {
		return nil, fmt.Errorf("decode courses: %w", err)
	}
	return rows, nil
}

// LineNumber returns the file line of the row at index i, counting the header.
func LineNumber(i int) int {
	return i + 2
}

// headerChecker is a gocsv.Decoder that rejects files missing a required
// column before any row is decoded.
type headerChecker struct {
	gocsv.CSVReader
}

func (h headerChecker) GetCSVRows() ([][]string, error) {
	rows, err := h.ReadAll()
	if err != nil || len(rows) == 0 {
		return rows, err
	}
	for _, col := range requiredColumns {
		if !slices.Contains(rows[0], col) {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, col)
		}
	}
	return rows, nil
}
