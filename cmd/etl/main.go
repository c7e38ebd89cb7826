// Command etl builds the model-ready count panels: it loads the species,
// plant, and temperature exports, cleans and joins them by year and region,
// and writes the two panels (plus a seeded train/test split of the species
// panel) for the downstream regression analysis.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	httpadapter "github.com/bombuslab/occurrence-etl/internal/adapter/http"
	"github.com/bombuslab/occurrence-etl/internal/config"
	"github.com/bombuslab/occurrence-etl/internal/domain"
	"github.com/bombuslab/occurrence-etl/internal/loader"
	"github.com/bombuslab/occurrence-etl/internal/observability"
	"github.com/bombuslab/occurrence-etl/internal/pipeline"
	"github.com/bombuslab/occurrence-etl/internal/sink"
)

func main() {
	// Optional .env for local runs; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	cmd := newRootCommand(cfg)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "occurrence-etl",
		Short:         "Build bumblebee and forage-plant count panels joined with temperature",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.SpeciesPath, "species", cfg.SpeciesPath, "path to the species occurrence CSV")
	flags.StringVar(&cfg.PlantPath, "plant", cfg.PlantPath, "path to the forage-plant occurrence CSV")
	flags.StringVar(&cfg.TemperaturePath, "temperature", cfg.TemperaturePath, "path to the wide-format temperature CSV")
	flags.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "directory for the panel CSV outputs")
	flags.StringVar(&cfg.SQLitePath, "sqlite", cfg.SQLitePath, "optional SQLite file to also store the panels in")
	flags.StringVar(&cfg.CorrectionsPath, "region-corrections", cfg.CorrectionsPath, "optional YAML file overriding the region correction table")
	flags.Int64Var(&cfg.Seed, "seed", cfg.Seed, "seed for the deterministic train/test split")
	flags.Float64Var(&cfg.TrainFraction, "train-fraction", cfg.TrainFraction, "fraction of species panel rows assigned to the training split")
	flags.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "optional listen address for the metrics endpoint")

	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	runID := uuid.NewString()
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		return err
	}
	corrections, err := cfg.Corrections()
	if err != nil {
		logger.Error("failed to load region corrections", "error", err)
		return err
	}

	csvSink := sink.NewCSVSink(cfg.OutputDir, logger)
	sinks := []pipeline.Sink{csvSink}
	if cfg.SQLitePath != "" {
		sqliteSink, err := sink.NewSQLiteSink(cfg.SQLitePath, logger)
		if err != nil {
			logger.Error("failed to open sqlite sink", "error", err)
			return err
		}
		defer func() {
			if err := sqliteSink.Close(); err != nil {
				logger.Error("sqlite sink close error", "error", err)
			}
		}()
		sinks = append(sinks, sqliteSink)
	}

	inputs := pipeline.Inputs{
		Species:     cfg.SpeciesPath,
		Plant:       cfg.PlantPath,
		Temperature: cfg.TemperaturePath,
	}
	p := pipeline.New(loader.FileExtractor{}, sinks, logger, metrics, inputs, cfg.Years(), corrections, runID)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional metrics listener, for runs launched under a scheduler that
	// scrapes batch jobs. Disabled unless an address is configured.
	if cfg.MetricsAddr != "" {
		srv := httpadapter.NewServer(cfg.MetricsAddr, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", "error", err)
			}
		}()
		defer func() {
			if err := srv.Shutdown(context.Background()); err != nil {
				logger.Error("metrics server shutdown error", "error", err)
			}
		}()
	}

	result, err := p.Run(ctx)
	if err != nil {
		logger.Error("pipeline failed", "error", err)
		return err
	}

	split := domain.SplitPanel(result.Species, cfg.TrainFraction, cfg.Seed)
	if err := csvSink.WriteSplit(ctx, split); err != nil {
		logger.Error("failed to write train/test split", "error", err)
		return err
	}

	return nil
}
