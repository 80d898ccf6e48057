package main

import (
	"context"
	"os"

	"github.com/marioalfredo2411-sys/chivoferton/config"
	"github.com/marioalfredo2411-sys/chivoferton/scraper/encuentra24"
	"github.com/marioalfredo2411-sys/chivoferton/services"
	"github.com/marioalfredo2411-sys/chivoferton/storage"
	"github.com/marioalfredo2411-sys/chivoferton/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.Debug)

	logger.Info("=== Encuentra24 Housing Crawler starting ===")
	logger.Info("Config — listings/category: %d | concurrency: %d | catalog delay: %dms | detail delay: %dms",
		cfg.ListingsPerCategory, cfg.MaxConcurrency, cfg.CatalogDelayMs, cfg.DetailDelayMs)

	jsonWriter, err := storage.NewJSONWriter(cfg.OutputPath)
	if err != nil {
		logger.Error("Failed to prepare JSON output: %v", err)
		os.Exit(1)
	}
	defer jsonWriter.Close()

	scraper := encuentra24.New(cfg, logger)
	listings := scraper.Scrape(context.Background(), cfg.Categories())

	if len(listings) == 0 {
		logger.Warn("No listings were scraped")
	}

	if err := jsonWriter.Write(listings); err != nil {
		logger.Error("JSON write failed: %v", err)
		os.Exit(1)
	}
	logger.Info("Saved %d listings to %s", len(listings), cfg.OutputPath)

	if cfg.PostgresEnabled {
		pgWriter, err := storage.NewPostgresWriter(cfg.DSN(), logger)
		if err != nil {
			logger.Error("PostgreSQL unavailable, skipping DB storage: %v", err)
		} else {
			defer pgWriter.Close()
			if err := pgWriter.Write(listings); err != nil {
				logger.Error("PostgreSQL write failed: %v", err)
			} else {
				logger.Info("Listings stored in PostgreSQL (table: listings)")
			}
		}
	}

	summarySvc := services.NewSummaryService(logger)
	summarySvc.Print(summarySvc.Generate(listings))
}
