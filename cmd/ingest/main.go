// Command ingest bulk-uploads a directory of images as assets of one parent.
// It is the reference external caller for the asset subsystem.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marcos-nsantos/media-assets/internal/adapter/repository/postgres"
	"github.com/marcos-nsantos/media-assets/internal/infrastructure/config"
	"github.com/marcos-nsantos/media-assets/internal/infrastructure/database"
	"github.com/marcos-nsantos/media-assets/internal/infrastructure/imaging"
	"github.com/marcos-nsantos/media-assets/internal/infrastructure/observability"
	"github.com/marcos-nsantos/media-assets/internal/infrastructure/storage"
	"github.com/marcos-nsantos/media-assets/internal/pkg/objectkey"
	"github.com/marcos-nsantos/media-assets/internal/usecase/asset"
	"github.com/marcos-nsantos/media-assets/internal/usecase/ingest"
)

func main() {
	var (
		parent    = flag.String("parent", "", "UUID of the parent entity")
		dir       = flag.String("dir", ".", "directory containing images to ingest")
		baseOrder = flag.Int("base-order", 0, "sort order assigned to the first item")
		migrate   = flag.String("migrate", "", "run .up.sql migrations from this directory before ingesting")
	)
	flag.Parse()

	parentID, err := uuid.Parse(*parent)
	if err != nil {
		log.Fatalf("invalid -parent: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if *migrate != "" {
		if err := database.RunMigrations(ctx, pool, *migrate); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	s3Storage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		logger.Fatal("failed to create s3 storage", zap.Error(err))
	}

	assetRepo := postgres.NewAssetRepo(pool)
	validator := imaging.NewValidator(cfg.Media.MaxUploadBytes, cfg.Media.MinDimension, cfg.Media.MaxDimension)
	generator := imaging.NewGenerator()
	keys := objectkey.NewGenerator()

	assetSvc := asset.NewService(assetRepo, s3Storage, validator, generator, keys,
		asset.SpecsFromConfig(cfg.Media), cfg.Media.Workers, logger)
	ingestSvc := ingest.NewService(assetSvc, cfg.Media.MaxBatchSize, cfg.Media.Workers, logger)

	payloads, names, err := readImages(*dir)
	if err != nil {
		logger.Fatal("failed to read input directory", zap.Error(err))
	}
	if len(payloads) == 0 {
		logger.Fatal("no image files found", zap.String("dir", *dir))
	}

	created, itemErrs, err := ingestSvc.BulkCreate(ctx, parentID, payloads, *baseOrder)
	if err != nil {
		logger.Fatal("bulk ingestion rejected", zap.Error(err))
	}

	for _, a := range created {
		fmt.Printf("created %s (order %d, original %s)\n", a.ID, a.SortOrder, a.OriginalKey)
	}
	for _, ie := range itemErrs {
		fmt.Fprintf(os.Stderr, "failed %s: %v\n", names[ie.Index], ie.Err)
	}

	logger.Info("ingestion finished",
		zap.Int("created", len(created)),
		zap.Int("failed", len(itemErrs)),
	)
	if len(itemErrs) > 0 {
		os.Exit(1)
	}
}

func readImages(dir string) ([][]byte, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".jpg", ".jpeg", ".png", ".webp":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	payloads := make([][]byte, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, nil, err
		}
		payloads = append(payloads, data)
	}
	return payloads, names, nil
}
