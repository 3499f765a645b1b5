// cmd/listcollections/main.go
// Dumps every collection, document and subcollection of the store to JSON.
//
// Usage:
//
//	go run ./cmd/listcollections -out firestore_collections.json
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/coursehub/classloader/config"
	applog "github.com/coursehub/classloader/logger"
	"github.com/coursehub/classloader/snapshot"
	"github.com/coursehub/classloader/store"
)

func main() {
	out := flag.String("out", "firestore_collections.json", "output file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger, err := applog.New("listcollections", cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	s, err := store.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("open store failed", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer s.Close()

	tree, err := snapshot.Take(ctx, s, logger)
	if err != nil {
		logger.Fatal("snapshot failed", zap.Error(err))
	}
	if err := snapshot.WriteFile(*out, tree); err != nil {
		logger.Fatal("write failed", zap.Error(err))
	}
	logger.Info("data written", zap.String("path", *out), zap.Int("collections", len(tree)))
}
