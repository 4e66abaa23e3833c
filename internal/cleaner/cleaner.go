// Package cleaner runs batch cleaning stages over loosely shaped records and
// reports how each stage changed the item count and mean quality.
package cleaner

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/act-placemat/normalizer/internal/metrics"
	"github.com/act-placemat/normalizer/internal/quality"
	"github.com/act-placemat/normalizer/pkg/logger"
)

type StageReport struct {
	Operation     Operation `json:"operation"`
	ItemsBefore   int       `json:"items_before"`
	ItemsAfter    int       `json:"items_after"`
	Removed       int       `json:"removed"`
	QualityBefore float64   `json:"quality_before"`
	QualityAfter  float64   `json:"quality_after"`
	QualityDelta  float64   `json:"quality_delta"`
	DurationMs    int64     `json:"duration_ms"`
}

type Summary struct {
	OriginalCount      int     `json:"original_count"`
	FinalCount         int     `json:"final_count"`
	Removed            int     `json:"removed"`
	RemovalRate        float64 `json:"removal_rate"`
	QualityBefore      float64 `json:"quality_before"`
	QualityAfter       float64 `json:"quality_after"`
	QualityImprovement float64 `json:"quality_improvement"`
}

type Report struct {
	RunID          string         `json:"run_id"`
	Aggressiveness Aggressiveness `json:"aggressiveness"`
	Operations     []Operation    `json:"operations"`
	Stages         []StageReport  `json:"stages"`
	Summary        Summary        `json:"summary"`
	StartedAt      time.Time      `json:"started_at"`
	DurationMs     int64          `json:"duration_ms"`
}

type Result struct {
	Items  []map[string]any
	Report Report
}

type Cleaner struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	log     *zap.Logger
}

func New() *Cleaner {
	return &Cleaner{
		entropy: ulid.Monotonic(rand.Reader, 0),
		log:     logger.Named("cleaner"),
	}
}

func (c *Cleaner) newRunID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ulid.MustNew(ulid.Now(), c.entropy).String()
}

// Clean applies the requested operations in order to a copy of items. The
// input slice and its maps are never modified.
func (c *Cleaner) Clean(ctx context.Context, items []map[string]any, opts Options) (*Result, error) {
	level, err := ParseAggressiveness(opts.Aggressiveness)
	if err != nil {
		return nil, err
	}
	ops, err := ParseOperations(opts.Operations)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	report := Report{
		RunID:          c.newRunID(),
		Aggressiveness: level,
		Operations:     ops,
		Stages:         make([]StageReport, 0, len(ops)),
		StartedAt:      start.UTC(),
	}

	current := make([]map[string]any, len(items))
	for i, item := range items {
		current[i] = cloneMap(item)
	}
	initialQuality := meanQuality(current)

	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		stageStart := time.Now()
		before := len(current)
		qualityBefore := meanQuality(current)

		current = apply(op, level, current)

		qualityAfter := meanQuality(current)
		elapsed := time.Since(stageStart)
		stage := StageReport{
			Operation:     op,
			ItemsBefore:   before,
			ItemsAfter:    len(current),
			Removed:       before - len(current),
			QualityBefore: qualityBefore,
			QualityAfter:  qualityAfter,
			QualityDelta:  qualityAfter - qualityBefore,
			DurationMs:    elapsed.Milliseconds(),
		}
		report.Stages = append(report.Stages, stage)

		metrics.CleanStageDuration.WithLabelValues(string(op)).Observe(elapsed.Seconds())
		metrics.CleanRemoved.WithLabelValues(string(op)).Add(float64(stage.Removed))

		c.log.Debug("Cleaning stage completed",
			zap.String("run_id", report.RunID),
			zap.String("operation", string(op)),
			zap.Int("items_before", stage.ItemsBefore),
			zap.Int("items_after", stage.ItemsAfter),
		)

		if opts.OnStage != nil {
			opts.OnStage(stage)
		}
	}

	finalQuality := meanQuality(current)
	report.Summary = Summary{
		OriginalCount:      len(items),
		FinalCount:         len(current),
		Removed:            len(items) - len(current),
		QualityBefore:      initialQuality,
		QualityAfter:       finalQuality,
		QualityImprovement: finalQuality - initialQuality,
	}
	if len(items) > 0 {
		report.Summary.RemovalRate = float64(report.Summary.Removed) / float64(len(items)) * 100
	}
	report.DurationMs = time.Since(start).Milliseconds()

	metrics.CleanRuns.WithLabelValues(string(level)).Inc()
	c.log.Info("Cleaning run completed",
		zap.String("run_id", report.RunID),
		zap.String("aggressiveness", string(level)),
		zap.Int("original_count", report.Summary.OriginalCount),
		zap.Int("final_count", report.Summary.FinalCount),
	)

	return &Result{Items: current, Report: report}, nil
}

func apply(op Operation, level Aggressiveness, items []map[string]any) []map[string]any {
	switch op {
	case OpTextCleaning:
		return cleanText(items, level)
	case OpDeduplication:
		return deduplicate(items, level)
	case OpValidation:
		return validate(items)
	case OpEnhancement:
		return enhance(items)
	}
	return items
}

// meanQuality is the mean overall quality score of items, 0 for none.
func meanQuality(items []map[string]any) float64 {
	if len(items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range items {
		total += quality.ScoreMap(item, "").Score
	}
	return total / float64(len(items))
}
