package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/coursehub/classloader/models"
)

// Postgres keeps documents as jsonb rows in the documents table.
type Postgres struct {
	db    *bun.DB
	now   func() time.Time
	newID func() string
}

// NewPostgres wraps an open database. The documents table must exist,
// see db.CreateTables.
func NewPostgres(db *bun.DB) *Postgres {
	return &Postgres{db: db, now: time.Now, newID: uuid.NewString}
}

// Create implements Store.
func (p *Postgres) Create(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	if err := CheckCollection(collection); err != nil {
		return "", err
	}
	if fields == nil {
		fields = map[string]interface{}{}
	}

	doc := &models.Document{
		ID:         p.newID(),
		Collection: collection,
		Data:       fields,
		CreatedAt:  p.now().UTC(),
	}
	if _, err := p.db.NewInsert().Model(doc).Exec(ctx); err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}
	return doc.ID, nil
}

// Get implements Store.
func (p *Postgres) Get(ctx context.Context, collection, id string) (*Document, error) {
	if err := CheckCollection(collection); err != nil {
		return nil, err
	}

	row := new(models.Document)
	err := p.db.NewSelect().Model(row).
		Where("d.collection = ?", collection).
		Where("d.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	if err != nil {
		return nil, fmt.Errorf("select document: %w", err)
	}
	d := toDocument(row)
	return &d, nil
}

// List implements Store. Filters compare the text form of a top level jsonb
// value, so they are rechecked with Matches once rows are decoded.
func (p *Postgres) List(ctx context.Context, collection string, filters ...Where) ([]Document, error) {
	if err := CheckCollection(collection); err != nil {
		return nil, err
	}

	q := p.db.NewSelect().Model((*models.Document)(nil)).
		Where("d.collection = ?", collection)
	for _, w := range filters {
		q = q.Where("d.data ->> ? = ?", w.Field, fmt.Sprint(w.Value))
	}

	var rows []models.Document
	if err := q.OrderExpr("d.created_at ASC, d.id ASC").Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("select documents: %w", err)
	}

	docs := make([]Document, 0, len(rows))
	for i := range rows {
		d := toDocument(&rows[i])
		if Matches(d.Fields, filters) {
			docs = append(docs, d)
		}
	}
	return docs, nil
}

// Collections implements Store. Subcollections are derived from the stored
// collection paths.
func (p *Postgres) Collections(ctx context.Context, parent string) ([]string, error) {
	prefix := ""
	if parent != "" {
		if err := CheckDocument(parent); err != nil {
			return nil, err
		}
		prefix = parent + "/"
	}

	var paths []string
	err := p.db.NewSelect().Model((*models.Document)(nil)).
		ColumnExpr("DISTINCT d.collection").
		Scan(ctx, &paths)
	if err != nil {
		return nil, fmt.Errorf("select collections: %w", err)
	}

	ids := map[string]struct{}{}
	for _, path := range paths {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		rest := strings.TrimPrefix(path, prefix)
		ids[strings.SplitN(rest, "/", 2)[0]] = struct{}{}
	}
	return sortedKeys(ids), nil
}

// Import inserts documents with their existing ids, skipping documents whose
// collection and id are already present. It returns the number of rows
// written.
func (p *Postgres) Import(ctx context.Context, docs []models.Document) (int64, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	for i := range docs {
		if docs[i].CreatedAt.IsZero() {
			docs[i].CreatedAt = p.now().UTC()
		}
		if docs[i].Data == nil {
			docs[i].Data = map[string]interface{}{}
		}
	}

	res, err := p.db.NewInsert().Model(&docs).
		On("CONFLICT (collection, id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("import documents: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the underlying database.
func (p *Postgres) Close() error {
	return p.db.Close()
}

func toDocument(row *models.Document) Document {
	return Document{
		ID:     row.ID,
		Path:   row.Collection + "/" + row.ID,
		Fields: row.Data,
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
