// cmd/migrate/main.go
// Copies a Firestore collection, subcollections included, into the local
// PostgreSQL documents table. Document ids are kept, so re-runs skip what
// was already copied.
//
// Usage:
//
//	FIREBASE_CREDENTIALS=scripts/uiuc-coursehub-firebase-key.json \
//	DB_PASS="pgpass" \
//	go run ./cmd/migrate
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/coursehub/classloader/config"
	bundb "github.com/coursehub/classloader/db"
	"github.com/coursehub/classloader/models"
	"github.com/coursehub/classloader/store"
)

const batchSize = 500

// importer is the write side of the migration, satisfied by *store.Postgres.
type importer interface {
	Import(ctx context.Context, docs []models.Document) (int64, error)
}

func main() {
	ctx := context.Background()

	cfg := config.Load()
	if !cfg.HasPostgres() {
		log.Fatal("DATABASE_URL or DB_PASS required")
	}

	// --- Firestore ---
	src, err := store.NewFirestore(ctx, cfg.CredentialsFile, cfg.FirebaseProjectID, cfg.FirestoreDatabase)
	if err != nil {
		log.Fatalf("open firestore: %v", err)
	}
	defer src.Close()
	log.Println("connected to Firestore")

	// --- PostgreSQL ---
	pgDB := bundb.Setup(cfg)
	defer pgDB.Close()
	log.Println("connected to PostgreSQL")

	// Create tables (idempotent)
	if err := bundb.CreateTables(ctx, pgDB); err != nil {
		log.Fatalf("create tables: %v", err)
	}

	read, written, err := migrateCollection(ctx, src, store.NewPostgres(pgDB), cfg.ClassCollection)
	if err != nil {
		log.Fatalf("migrate %s: %v", cfg.ClassCollection, err)
	}
	log.Printf("%-15s  %d documents read, %d new rows", cfg.ClassCollection, read, written)
	log.Println("migration complete")
}

// migrateCollection copies collection and everything below it, flushing
// every batchSize documents.
func migrateCollection(ctx context.Context, src store.Store, dst importer, collection string) (int, int64, error) {
	var (
		batch   []models.Document
		read    int
		written int64
	)
	flush := func() error {
		n, err := dst.Import(ctx, batch)
		if err != nil {
			return err
		}
		written += n
		batch = batch[:0]
		return nil
	}

	var walk func(path string) error
	walk = func(path string) error {
		docs, err := src.List(ctx, path)
		if err != nil {
			return fmt.Errorf("list %s: %w", path, err)
		}
		for _, doc := range docs {
			read++
			batch = append(batch, models.Document{
				ID:         doc.ID,
				Collection: path,
				Data:       doc.Fields,
			})
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return err
				}
			}

			docPath := path + "/" + doc.ID
			subs, err := src.Collections(ctx, docPath)
			if err != nil {
				return fmt.Errorf("list subcollections of %s: %w", docPath, err)
			}
			for _, sub := range subs {
				if err := walk(docPath + "/" + sub); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := walk(collection); err != nil {
		return read, written, err
	}
	if err := flush(); err != nil {
		return read, written, err
	}
	return read, written, nil
}
