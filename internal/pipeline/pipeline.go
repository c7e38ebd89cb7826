// Package pipeline orchestrates the four panel-building stages: load the
// three input tables, clean each source, aggregate and join temperature,
// and hand the finished count panels to the configured sinks.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/bombuslab/occurrence-etl/internal/domain"
	"github.com/bombuslab/occurrence-etl/internal/observability"
)

// Source names used in logs and metrics labels.
const (
	SourceSpecies     = "species"
	SourcePlant       = "plant"
	SourceTemperature = "temperature"
)

// Extractor reads the raw input tables. Implementations return fatal errors
// for missing files or unparseable rows; there is no partial recovery.
type Extractor interface {
	Occurrences(ctx context.Context, path string) ([]domain.OccurrenceRecord, error)
	Table(ctx context.Context, path string) (header []string, rows [][]string, err error)
}

// Sink receives the finished panels. A sink error fails the run.
type Sink interface {
	WritePanels(ctx context.Context, result *Result) error
}

// Inputs holds the paths of the three source tables.
type Inputs struct {
	Species     string
	Plant       string
	Temperature string
}

// Result is one completed pipeline run: both model-ready count panels plus
// run metadata.
type Result struct {
	RunID   string
	BuiltAt time.Time
	Species []domain.PanelRow
	Plant   []domain.PanelRow
}

// Pipeline wires the stages together with logging and metrics.
type Pipeline struct {
	extractor   Extractor
	sinks       []Sink
	logger      *slog.Logger
	metrics     *observability.Metrics
	inputs      Inputs
	years       domain.YearRange
	corrections []domain.RegionCorrection
	runID       string
	done        atomic.Bool
}

// New creates a Pipeline. corrections may be nil to skip region repair
// entirely, but callers normally pass domain.DefaultRegionCorrections().
func New(e Extractor, sinks []Sink, logger *slog.Logger, metrics *observability.Metrics, inputs Inputs, years domain.YearRange, corrections []domain.RegionCorrection, runID string) *Pipeline {
	return &Pipeline{
		extractor:   e,
		sinks:       sinks,
		logger:      logger.With("run_id", runID),
		metrics:     metrics,
		inputs:      inputs,
		years:       years,
		corrections: corrections,
		runID:       runID,
	}
}

// CheckReadiness returns nil once a run has completed. Used by the optional
// metrics server's readiness endpoint.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.done.Load() {
		return errors.New("pipeline has not completed a run yet")
	}
	return nil
}

// Run executes one batch build and delivers the result to every sink.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	p.logger.Info("pipeline started", "years", p.years)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	aggregates, err := p.buildTemperatureAggregates(ctx)
	if err != nil {
		return nil, err
	}

	species, err := p.buildPanel(ctx, SourceSpecies, p.inputs.Species, aggregates)
	if err != nil {
		return nil, err
	}

	plant, err := p.buildPanel(ctx, SourcePlant, p.inputs.Plant, aggregates)
	if err != nil {
		return nil, err
	}
	plant = p.repairPlantRegions(plant)

	result := &Result{
		RunID:   p.runID,
		BuiltAt: domain.Now(),
		Species: species,
		Plant:   plant,
	}

	for _, sink := range p.sinks {
		if err := sink.WritePanels(ctx, result); err != nil {
			return nil, err
		}
	}

	p.done.Store(true)
	p.logger.Info("pipeline finished",
		"species_panel_rows", len(species),
		"plant_panel_rows", len(plant),
	)
	return result, nil
}

// buildTemperatureAggregates loads the wide temperature table, reshapes it to
// long form, and computes the per-(year, country) means.
func (p *Pipeline) buildTemperatureAggregates(ctx context.Context) (map[domain.TemperatureKey]float64, error) {
	defer p.observeStage("temperature")()

	header, rows, err := p.extractor.Table(ctx, p.inputs.Temperature)
	if err != nil {
		return nil, err
	}
	p.metrics.RowsLoaded.WithLabelValues(SourceTemperature).Add(float64(len(rows)))

	obs, stats, err := domain.ReshapeTemperature(header, rows, p.years)
	if err != nil {
		return nil, err
	}
	p.metrics.RowsDropped.WithLabelValues(SourceTemperature, "unmapped_country").Add(float64(stats.UnmappedCountry))
	p.metrics.RowsDropped.WithLabelValues(SourceTemperature, "missing_reading").Add(float64(stats.MissingReading))
	if stats.UnmappedCountry > 0 {
		p.logger.Warn("temperature rows excluded: country code not in fixed lookup",
			"source", SourceTemperature,
			"rows", stats.UnmappedCountry,
		)
	}
	p.logger.Info("temperature reshaped",
		"rows", stats.Rows,
		"readings", stats.Kept,
		"missing_readings", stats.MissingReading,
	)

	return domain.AggregateTemperature(obs), nil
}

// buildPanel runs the cleaning, join, and aggregation stages for one
// occurrence source.
func (p *Pipeline) buildPanel(ctx context.Context, source, path string, aggregates map[domain.TemperatureKey]float64) ([]domain.PanelRow, error) {
	defer p.observeStage(source)()

	records, err := p.extractor.Occurrences(ctx, path)
	if err != nil {
		return nil, err
	}
	p.metrics.RowsLoaded.WithLabelValues(source).Add(float64(len(records)))

	cleaned, stats := domain.CleanOccurrences(records, p.years)
	p.metrics.RowsDropped.WithLabelValues(source, "bad_timestamp").Add(float64(stats.BadTimestamp))
	p.metrics.RowsDropped.WithLabelValues(source, "out_of_range").Add(float64(stats.OutOfRange))
	p.metrics.RowsDropped.WithLabelValues(source, "empty_region").Add(float64(stats.EmptyRegion))
	if stats.BadTimestamp > 0 {
		p.logger.Warn("rows dropped: unparseable dateIdentified",
			"source", source,
			"rows", stats.BadTimestamp,
		)
	}
	p.logger.Info("source cleaned",
		"source", source,
		"input_rows", stats.Input,
		"kept_rows", stats.Kept,
		"out_of_range", stats.OutOfRange,
		"empty_region", stats.EmptyRegion,
	)

	joined := domain.JoinTemperature(cleaned, aggregates)
	panel := domain.BuildCountPanel(joined)
	p.metrics.PanelRows.WithLabelValues(source).Set(float64(len(panel)))
	return panel, nil
}

// repairPlantRegions applies the encoding repair to the plant panel only.
// The species export never exhibited the mangling.
func (p *Pipeline) repairPlantRegions(panel []domain.PanelRow) []domain.PanelRow {
	if len(p.corrections) == 0 {
		return panel
	}
	repaired, changed := domain.RepairRegionNames(panel, p.corrections)
	p.metrics.RegionRepairs.Add(float64(changed))
	if changed > 0 {
		p.logger.Info("plant region names repaired", "rows", changed)
	}
	return repaired
}

// observeStage times a stage; call the returned func when the stage ends.
func (p *Pipeline) observeStage(stage string) func() {
	start := time.Now()
	return func() {
		p.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}
