package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"planets-api/internal/planet"
	"planets-api/internal/shared/config"
	"planets-api/internal/shared/logger"
)

func main() {
	path := flag.String("file", "seeds/planets.yaml", "YAML file with a top-level planets list")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.Init(cfg)

	if err := run(context.Background(), cfg, *path, log); err != nil {
		log.Error("Seeding failed", "error", err, "file", *path)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, path string, log *slog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	inputs, err := planet.LoadSeed(f)
	if err != nil {
		return err
	}

	store, closeStore, err := planet.OpenStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	count, err := planet.NewService(store, log).Seed(ctx, inputs)
	if err != nil {
		return err
	}

	log.Info("Planets seeded", "count", count, "storage", cfg.Storage.Driver)
	return nil
}
