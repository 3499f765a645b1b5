// cmd/adddoc/main.go
// Seeds the Class collection from the course listing CSV.
//
// Every ECE row in the configured course number list becomes one new
// document. Running it twice creates every document twice.
//
// Usage:
//
//	FIREBASE_CREDENTIALS=scripts/uiuc-coursehub-firebase-key.json \
//	COURSES_CSV=src/assets/final_courses.csv \
//	go run ./cmd/adddoc
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/coursehub/classloader/catalog"
	"github.com/coursehub/classloader/config"
	"github.com/coursehub/classloader/loader"
	applog "github.com/coursehub/classloader/logger"
	"github.com/coursehub/classloader/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger, err := applog.New("adddoc", cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	s, err := store.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("open store failed", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer s.Close()

	l := loader.New(s, cfg.ClassCollection,
		loader.WithFilter(catalog.Filter{Department: cfg.Department, Numbers: cfg.CourseNumbers}),
		loader.WithOptions(catalog.Options{
			GraphicURL:        cfg.GraphicURL,
			HyphensToSpaces:   cfg.HyphensToSpaces,
			FillSeasonStrings: cfg.FillSeasonStrings,
		}),
		loader.WithLogger(logger),
	)

	n, err := l.LoadFile(ctx, cfg.CoursesCSV)
	if err != nil {
		logger.Fatal("load failed", zap.Int("created", n), zap.Error(err))
	}
	logger.Info("load complete",
		zap.Int("created", n),
		zap.String("collection", cfg.ClassCollection),
		zap.String("backend", cfg.StoreBackend),
	)
}
