package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/act-placemat/normalizer/internal/pipeline"
	"github.com/act-placemat/normalizer/internal/quality"
	"github.com/act-placemat/normalizer/internal/schema"
	"github.com/act-placemat/normalizer/pkg/logger"
	"github.com/act-placemat/normalizer/pkg/utils"
)

// ReportCache stores scored results by content hash.
type ReportCache interface {
	GetReport(ctx context.Context, hash string, report any) (bool, error)
	SetReport(ctx context.Context, hash string, report any) error
}

const notAnObject = "record must be an object"

type QualityHandler struct {
	cache ReportCache
}

// NewQualityHandler builds the handler. A nil cache disables caching.
func NewQualityHandler(cache ReportCache) *QualityHandler {
	return &QualityHandler{cache: cache}
}

type validationResult struct {
	Index int `json:"index"`
	quality.Verdict
}

func (h *QualityHandler) Validate(c *fiber.Ctx) error {
	var req struct {
		Data   any    `json:"data"`
		Schema string `json:"schema"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Data == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "data is required",
		})
	}

	kind := schema.ParseKind(req.Schema)
	items := pipeline.Items(req.Data)
	results := make([]validationResult, len(items))
	valid := 0
	total := 0.0

	for i, item := range items {
		var res validationResult
		m, ok := item.(map[string]any)
		if !ok {
			res = validationResult{Verdict: quality.Verdict{Issues: []string{notAnObject}}}
		} else if !h.cached(c.UserContext(), "validate:"+string(kind), m, &res) {
			res = validationResult{Verdict: quality.Check(m, kind)}
			h.store(c.UserContext(), "validate:"+string(kind), m, res)
		}
		res.Index = i
		results[i] = res

		if res.Valid {
			valid++
		}
		total += res.QualityScore
	}

	passRate, avg := 0.0, 0.0
	if len(items) > 0 {
		passRate = float64(valid) / float64(len(items)) * 100
		avg = total / float64(len(items))
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"schema":        kind,
		"results":       results,
		"total":         len(items),
		"valid":         valid,
		"pass_rate":     passRate,
		"average_score": avg,
	})
}

type qualityResult struct {
	Index   int                   `json:"index"`
	ID      string                `json:"id"`
	Passed  bool                  `json:"passed"`
	Score   float64               `json:"score"`
	Grade   string                `json:"grade"`
	Metrics schema.QualityMetrics `json:"quality_metrics"`
	Issues  []string              `json:"issues"`
}

func (h *QualityHandler) QualityCheck(c *fiber.Ctx) error {
	var req struct {
		Data                   any   `json:"data"`
		IncludeRecommendations *bool `json:"includeRecommendations"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Data == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "data is required",
		})
	}

	items := pipeline.Items(req.Data)
	reports := make([]quality.Report, len(items))
	results := make([]qualityResult, len(items))

	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			m = map[string]any{}
		}

		var report quality.Report
		if !h.cached(c.UserContext(), "quality", m, &report) {
			report = quality.ScoreMap(m, "")
			h.store(c.UserContext(), "quality", m, report)
		}
		reports[i] = report

		id, _ := m["id"].(string)
		results[i] = qualityResult{
			Index:   i,
			ID:      id,
			Passed:  report.Passed,
			Score:   report.Score,
			Grade:   quality.Grade(report.Score),
			Metrics: report.Metrics,
			Issues:  report.Issues,
		}
	}

	summary := quality.Summarize(reports)
	resp := fiber.Map{
		"success": true,
		"results": results,
		"summary": summary,
		"grade":   quality.Grade(summary.AverageScore),
	}
	if req.IncludeRecommendations == nil || *req.IncludeRecommendations {
		recs := []string{}
		if summary.Count > 0 {
			recs = quality.Recommendations(summary.Metrics, summary.AverageScore)
		}
		resp["recommendations"] = recs
	}

	return c.JSON(resp)
}

func (h *QualityHandler) cached(ctx context.Context, prefix string, item map[string]any, out any) bool {
	if h.cache == nil {
		return false
	}
	hash, err := utils.HashValue(item)
	if err != nil {
		return false
	}
	hit, err := h.cache.GetReport(ctx, prefix+":"+hash, out)
	if err != nil {
		logger.Warn("Quality cache read failed", zap.Error(err))
		return false
	}
	return hit
}

func (h *QualityHandler) store(ctx context.Context, prefix string, item map[string]any, report any) {
	if h.cache == nil {
		return
	}
	hash, err := utils.HashValue(item)
	if err != nil {
		return
	}
	if err := h.cache.SetReport(ctx, prefix+":"+hash, report); err != nil {
		logger.Warn("Quality cache write failed", zap.Error(err))
	}
}
