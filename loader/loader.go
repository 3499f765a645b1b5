// Package loader seeds the class collection from the course listing CSV.
//
// One pass, one goroutine: every row that passes the filter becomes exactly
// one new document. The first failure stops the run and whatever was already
// written stays written.
package loader

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/coursehub/classloader/catalog"
	"github.com/coursehub/classloader/store"
)

// Loader writes class documents for the selected rows of a listing.
type Loader struct {
	store      store.Store
	collection string
	filter     catalog.Filter
	opts       catalog.Options
	out        io.Writer
	log        *zap.Logger
	now        func() time.Time
}

// Option customises a Loader.
type Option func(*Loader)

// WithFilter replaces the default department and course number selection.
func WithFilter(f catalog.Filter) Option {
	return func(l *Loader) { l.filter = f }
}

// WithOptions replaces the default row to document mapping options.
func WithOptions(opts catalog.Options) Option {
	return func(l *Loader) { l.opts = opts }
}

// WithOutput sets where progress lines are printed. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(l *Loader) { l.out = w }
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) { l.log = log }
}

// WithClock overrides the lastUpdated timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Loader) { l.now = now }
}

// New returns a Loader writing into collection of s.
func New(s store.Store, collection string, opts ...Option) *Loader {
	l := &Loader{
		store:      s,
		collection: collection,
		filter:     catalog.DefaultFilter(),
		opts:       catalog.DefaultOptions(),
		out:        os.Stdout,
		log:        zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadFile reads the CSV at path and loads it.
func (l *Loader) LoadFile(ctx context.Context, path string) (int, error) {
	rows, err := catalog.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read csv: %w", err)
	}
	l.log.Info("courses read", zap.String("path", path), zap.Int("rows", len(rows)))
	return l.Run(ctx, rows)
}

// Run creates one document per matching row, in input order, and returns
// how many were created.
func (l *Loader) Run(ctx context.Context, rows []*catalog.SourceRow) (int, error) {
	created := 0
	for i, row := range rows {
		ok, err := l.filter.Match(row)
		if err != nil {
			return created, fmt.Errorf("row %d (%s %s): %w", catalog.LineNumber(i), row.Subject, row.Number, err)
		}
		if !ok {
			continue
		}

		doc, err := catalog.NewClassDocument(row, l.now(), l.opts)
		if err != nil {
			return created, fmt.Errorf("row %d (%s %s): %w", catalog.LineNumber(i), row.Subject, row.Number, err)
		}

		fmt.Fprintf(l.out, "Adding document for %s...\n", doc.ClassName)
		id, err := l.store.Create(ctx, l.collection, doc.Fields())
		if err != nil {
			return created, fmt.Errorf("row %d (%s): create document: %w", catalog.LineNumber(i), doc.CourseNumber, err)
		}
		created++
		l.log.Debug("document created",
			zap.String("id", id),
			zap.String("course", doc.CourseNumber),
			zap.String("collection", l.collection),
		)
	}
	return created, nil
}
