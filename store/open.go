package store

import (
	"context"
	"fmt"

	"github.com/coursehub/classloader/config"
	"github.com/coursehub/classloader/db"
)

// Open connects to the backend selected by cfg.StoreBackend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StoreBackend {
	case config.BackendFirestore:
		return NewFirestore(ctx, cfg.CredentialsFile, cfg.FirebaseProjectID, cfg.FirestoreDatabase)
	case config.BackendPostgres:
		bdb, err := db.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := db.CreateTables(ctx, bdb); err != nil {
			_ = bdb.Close()
			return nil, err
		}
		return NewPostgres(bdb), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
