// Package pipeline binds a source transformer to a target schema and runs raw
// records through transformation, validation and quality scoring.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/act-placemat/normalizer/internal/metrics"
	"github.com/act-placemat/normalizer/internal/quality"
	"github.com/act-placemat/normalizer/internal/schema"
	"github.com/act-placemat/normalizer/internal/transform"
	"github.com/act-placemat/normalizer/pkg/logger"
)

const (
	reasonSchema  = "schema"
	reasonQuality = "quality"
)

// Config is an immutable source/target pairing resolved once per request.
type Config struct {
	Source    string
	Target    schema.Kind
	Transform transform.Func
}

type Executor struct {
	registry *transform.Registry
	metrics  *Metrics
	log      *zap.Logger
}

func NewExecutor(registry *transform.Registry) *Executor {
	if registry == nil {
		registry = transform.NewRegistry()
	}
	return &Executor{
		registry: registry,
		metrics:  &Metrics{},
		log:      logger.Named("pipeline"),
	}
}

func (e *Executor) Metrics() *Metrics {
	return e.metrics
}

func (e *Executor) Registry() *transform.Registry {
	return e.registry
}

// Resolve binds source and target. Unknown sources resolve to the generic
// transformer and unknown targets to the document schema.
func (e *Executor) Resolve(source, target string) Config {
	name, fn := e.registry.Resolve(source)
	return Config{
		Source:    name,
		Target:    schema.ParseKind(target),
		Transform: fn,
	}
}

// Execute runs one raw record through the pipeline and returns the accepted
// canonical records. A transformation failure is counted and returned;
// records failing validation or quality scoring are counted and skipped.
func (e *Executor) Execute(ctx context.Context, cfg Config, raw any) ([]schema.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		metrics.TransformDuration.WithLabelValues(cfg.Source).Observe(time.Since(start).Seconds())
	}()

	e.metrics.processed(cfg.Source)

	produced, err := e.transform(cfg, raw)
	if err != nil {
		e.metrics.transformFailed(cfg.Source)
		e.log.Debug("Transformation failed", zap.String("source_type", cfg.Source), zap.Error(err))
		return nil, err
	}

	target := string(cfg.Target)
	accepted := make([]schema.Record, 0, len(produced))
	for _, rec := range produced {
		conformed, err := schema.Conform(rec, cfg.Target)
		if err != nil {
			e.metrics.rejected(target, reasonSchema)
			e.log.Debug("Record failed schema validation",
				zap.String("target_schema", target),
				zap.Error(err),
			)
			continue
		}

		report := quality.ScoreRecord(conformed)
		metrics.QualityScore.Observe(report.Score)
		if !report.Passed {
			e.metrics.rejected(target, reasonQuality)
			e.log.Debug("Record rejected by quality check",
				zap.String("id", conformed.RecordID()),
				zap.Float64("score", report.Score),
				zap.Strings("issues", report.Issues),
			)
			continue
		}

		conformed.AttachQuality(report.Metrics, report.Score)
		e.metrics.accepted(target)
		accepted = append(accepted, conformed)
	}

	return accepted, nil
}

// transform invokes the transformer, turning panics and foreign errors into
// transformation errors.
func (e *Executor) transform(cfg Config, raw any) (recs []schema.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			recs, err = nil, &transform.Error{Source: cfg.Source, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	recs, err = cfg.Transform(raw)
	if err != nil && !errors.Is(err, transform.ErrTransformation) {
		err = &transform.Error{Source: cfg.Source, Err: err}
	}
	return recs, err
}

type ItemError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type BatchResult struct {
	InputCount int
	Records    []schema.Record
	Errors     []ItemError
}

// ExecuteBatch executes every item independently. Transformation errors are
// collected per item; accepted records keep input order. The returned error
// is non-nil only when ctx ends before the batch completes.
func (e *Executor) ExecuteBatch(ctx context.Context, cfg Config, items []any) (BatchResult, error) {
	res := BatchResult{
		InputCount: len(items),
		Records:    []schema.Record{},
		Errors:     []ItemError{},
	}
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		recs, err := e.Execute(ctx, cfg, item)
		if err != nil {
			res.Errors = append(res.Errors, ItemError{Index: i, Error: err.Error()})
			continue
		}
		res.Records = append(res.Records, recs...)
	}
	return res, nil
}

// Items normalizes request data: an array is returned as is, anything else
// becomes a one-element batch.
func Items(data any) []any {
	if list, ok := data.([]any); ok {
		return list
	}
	return []any{data}
}
