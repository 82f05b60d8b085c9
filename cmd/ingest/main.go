package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/UnknownOlympus/cellmap/internal/config"
	"github.com/UnknownOlympus/cellmap/internal/ingest"
	applog "github.com/UnknownOlympus/cellmap/internal/logger"
	"github.com/UnknownOlympus/cellmap/internal/models"
	"github.com/UnknownOlympus/cellmap/internal/projection"
	"github.com/UnknownOlympus/cellmap/internal/repository"
	"github.com/jessevdk/go-flags"
)

type Options struct {
	Raw         string `short:"r" long:"raw"          env:"CELLMAP_RAW_FILE"       description:"Raw survey file (operator;x;y;2G;3G;4G, Lambert-93 meters)"`
	Processed   string `short:"p" long:"processed"    env:"CELLMAP_PROCESSED_FILE" description:"Processed file to write from --raw, or to load when --raw is not set"`
	Operators   string `short:"o" long:"operators"    env:"CELLMAP_OPERATORS_FILE" description:"YAML operators file, built-in French operators when empty"`
	ProcessOnly bool   `short:"n" long:"process-only" description:"Write the processed file without touching the database"`
	Force       bool   `short:"f" long:"force"        description:"Replace an already initialized dataset"`
	Strict      bool   `short:"s" long:"strict"       description:"Skip raw points outside the Lambert-93 extent"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	cfg := config.MustLoad()
	logger := applog.New(os.Stdout, cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, cfg, logger); err != nil {
		logger.ErrorContext(ctx, "Ingestion failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, opts Options, cfg *config.Config, logger *slog.Logger) error {
	if opts.Raw == "" && opts.Processed == "" {
		return errors.New("either --raw or --processed is required")
	}
	if opts.ProcessOnly && (opts.Raw == "" || opts.Processed == "") {
		return errors.New("--process-only needs both --raw and --processed")
	}

	points, err := readPoints(ctx, opts, opts.Strict || cfg.Resolver.LambertStrict, logger)
	if err != nil {
		return err
	}
	if opts.ProcessOnly {
		return nil
	}

	operators, err := ingest.LoadOperators(opts.Operators)
	if err != nil {
		return err
	}

	dtb, err := repository.NewDatabase(
		ctx, cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to connect to DB: %w", err)
	}
	defer dtb.Close()

	repo := repository.NewRepository(dtb, logger)
	if err = repo.EnsureSchema(ctx); err != nil {
		return err
	}

	if _, err = ingest.NewLoader(repo, logger).Load(ctx, operators, points, opts.Force); err != nil {
		return err
	}

	return nil
}

// readPoints projects the raw file when one is given, writing the processed file alongside,
// and otherwise reads a previously processed file.
func readPoints(ctx context.Context, opts Options, strict bool, logger *slog.Logger) ([]models.CoveragePoint, error) {
	if opts.Raw == "" {
		return readProcessed(opts.Processed)
	}

	lambert := projection.Lambert93
	lambert.Strict = strict

	raw, err := os.Open(opts.Raw)
	if err != nil {
		return nil, fmt.Errorf("failed to open raw file: %w", err)
	}
	defer raw.Close()

	points, stats, err := ingest.ParseRaw(ctx, raw, projection.MustLambert(lambert), logger)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Raw file parsed",
		"lines", stats.Lines,
		"accepted", stats.Accepted,
		"malformed", stats.Malformed,
		"out_of_region", stats.OutOfRegion)

	if opts.Processed != "" {
		if err = writeProcessed(opts.Processed, points); err != nil {
			return nil, err
		}
		logger.InfoContext(ctx, "Processed file written", "path", opts.Processed, "points", len(points))
	}

	return points, nil
}

func readProcessed(path string) ([]models.CoveragePoint, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open processed file: %w", err)
	}
	defer file.Close()

	return ingest.ReadProcessed(file)
}

func writeProcessed(path string, points []models.CoveragePoint) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create processed file: %w", err)
	}

	if err = ingest.WriteProcessed(file, points); err != nil {
		_ = file.Close()
		return err
	}

	return file.Close()
}
