package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bikeshop-prices/config"
	"bikeshop-prices/scraper"
	"bikeshop-prices/scraper/pricepage"
	"bikeshop-prices/server"
	"bikeshop-prices/services"
	"bikeshop-prices/storage"
	"bikeshop-prices/utils"
)

const usage = `usage: bikeshop-prices [command]

commands:
  serve    load the dataset and serve the dashboard API (default)
  report   load the dataset, persist it and print the price insights
  collect  build a shop directory from OpenStreetMap and the Wayback Machine
  probe    scan shop websites for current price candidates`

func main() {
	cfg := config.Load()
	logger := utils.NewLoggerFor(cfg.Env, cfg.LogLevel)
	if cfg.EnvFileLoaded {
		logger.Debug("Loaded environment variables from .env file.")
	} else {
		logger.Debug("No .env file found; proceeding with existing environment variables.")
	}

	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd {
	case "serve":
		err = runServe(ctx, cfg, logger)
	case "report":
		err = runReport(ctx, cfg, logger)
	case "collect":
		err = runCollect(ctx, cfg, logger)
	case "probe":
		err = runProbe(ctx, cfg, logger)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		logger.Error("%s failed: %v", cmd, err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	logger.Info("=== Bicycle repair price dashboard starting ===")

	source, err := newRowSource(ctx, cfg)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	var sink storage.RecordWriter
	if store != nil {
		defer store.Close()
		sink = store
	}

	normalizer := services.NewNormalizer(logger, services.AustrianCPI, cfg.TargetYear)
	dash := services.NewDashboard(logger, source, normalizer, sink)

	// A failed first load leaves the dashboard empty; POST /api/v1/reload retries by hand.
	_ = dash.Reload(ctx)

	return server.NewServer(dash, logger).ListenAndServe(ctx, cfg.HTTPAddr)
}

func runReport(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	source, err := newRowSource(ctx, cfg)
	if err != nil {
		return err
	}

	rows, err := source.LoadRows(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	normalizer := services.NewNormalizer(logger, services.AustrianCPI, cfg.TargetYear)
	records, _ := normalizer.Normalize(rows)
	if len(records) == 0 {
		return fmt.Errorf("dataset has no named shops")
	}

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		return err
	}
	defer csvWriter.Close()

	if err := csvWriter.Write(records); err != nil {
		logger.Error("CSV write failed: %v", err)
	} else {
		logger.Info("Canonical records saved to %s", cfg.CSVOutputPath)
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
		if err := store.Write(records); err != nil {
			logger.Error("%s write failed: %v", cfg.StorageDriver, err)
		} else if stored, err := store.FetchAll(); err != nil {
			logger.Error("Failed to fetch records back for insights: %v", err)
		} else {
			logger.Info("Canonical records stored in %s (table: shops)", cfg.StorageDriver)
			records = stored
		}
	}

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(os.Stdout, insightSvc.Generate(records))
	return nil
}

func runCollect(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	entries, err := scraper.New(cfg, logger).Collect(ctx)
	if err != nil {
		return err
	}

	w, err := storage.NewDirectoryWriter(cfg.DirectoryOutputPath)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.WriteEntries(entries); err != nil {
		return err
	}
	logger.Info("%d bicycle shops written to %s", len(entries), cfg.DirectoryOutputPath)
	return nil
}

func runProbe(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	source, err := newRowSource(ctx, cfg)
	if err != nil {
		return err
	}
	rows, err := source.LoadRows(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	records, _ := services.NewNormalizer(logger, services.AustrianCPI, cfg.TargetYear).Normalize(rows)

	candidates, err := pricepage.New(cfg, logger).Probe(ctx, records)
	if err != nil {
		return err
	}
	if err := storage.WriteCandidatesCSV(cfg.ProbeOutputPath, candidates); err != nil {
		return err
	}
	logger.Info("%d price candidates written to %s", len(candidates), cfg.ProbeOutputPath)
	return nil
}

// newRowSource prefers a Google Sheet, then a dataset URL, then the local file.
func newRowSource(ctx context.Context, cfg *config.Config) (storage.RowSource, error) {
	switch {
	case cfg.SheetsSpreadsheetID != "":
		return storage.NewSheetsSource(ctx, cfg.GoogleCredentialsFile, cfg.SheetsSpreadsheetID, cfg.SheetsRange)
	case cfg.DatasetURL != "":
		return storage.NewTSVURLSource(cfg.DatasetURL, &http.Client{Timeout: 30 * time.Second}), nil
	default:
		return storage.NewTSVFileSource(cfg.DatasetPath), nil
	}
}

// openStore returns nil when persistence is disabled.
func openStore(ctx context.Context, cfg *config.Config, logger *utils.Logger) (*storage.SQLStore, error) {
	switch cfg.StorageDriver {
	case "", "none":
		return nil, nil
	case "postgres":
		retry := &utils.RetryConfig{
			MaxAttempts: 10,
			BaseDelay:   time.Second,
			MaxDelay:    5 * time.Second,
			Logger:      logger,
		}
		return storage.NewPostgresStore(ctx, cfg.DSN(), retry)
	case "sqlite":
		return storage.NewSQLiteStore(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}
