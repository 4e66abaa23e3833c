package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/act-placemat/normalizer/internal/metrics"
	"github.com/act-placemat/normalizer/internal/schema"
	"github.com/act-placemat/normalizer/pkg/circuitbreaker"
	"github.com/act-placemat/normalizer/pkg/logger"
	"github.com/act-placemat/normalizer/pkg/retry"
)

const (
	batchSize = 100
	// maxInputRunes keeps a single input under the embedding model's token limit.
	maxInputRunes = 8000
)

type embeddingAPI interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

type Client struct {
	api            embeddingAPI
	embeddingModel string
	timeout        time.Duration
	cb             *circuitbreaker.Breaker
	retryConfig    retry.Config
}

func NewClient(apiKey, embeddingModel string, timeout time.Duration) *Client {
	return newClient(openai.NewClient(apiKey), embeddingModel, timeout)
}

func newClient(api embeddingAPI, embeddingModel string, timeout time.Duration) *Client {
	if embeddingModel == "" {
		embeddingModel = string(openai.AdaEmbeddingV2)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	cb := circuitbreaker.New("llm", circuitbreaker.Config{
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	logger.Info("Embedding client initialized", zap.String("embedding_model", embeddingModel))

	return &Client{
		api:            api,
		embeddingModel: embeddingModel,
		timeout:        timeout,
		cb:             cb,
		retryConfig:    retryConfig,
	}
}

// GenerateBatchEmbeddings embeds texts in batches, preserving input order.
func (c *Client) GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	embeddings := make([][]float32, len(texts))

	for i := 0; i < len(texts); i += batchSize {
		end := i + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		offset := i
		batch := texts[i:end]

		err := c.cb.Execute(func() error {
			return retry.Do(ctx, c.retryConfig, func(ctx context.Context) error {
				resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
					Input: batch,
					Model: openai.EmbeddingModel(c.embeddingModel),
				})
				if err != nil {
					return fmt.Errorf("failed to generate batch embeddings: %w", err)
				}
				if len(resp.Data) != len(batch) {
					return retry.Permanent(fmt.Errorf("embedding response has %d vectors for %d inputs", len(resp.Data), len(batch)))
				}

				for j, data := range resp.Data {
					idx := data.Index
					if idx < 0 || idx >= len(batch) {
						idx = j
					}
					embeddings[offset+idx] = data.Embedding
				}

				metrics.EmbeddingTokensUsed.WithLabelValues(c.embeddingModel).Add(float64(resp.Usage.TotalTokens))
				return nil
			})
		})
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("Batch embeddings generated", zap.Int("count", len(embeddings)))

	return embeddings, nil
}

// EmbedRecords fills the embedding of every record that has content but no
// embedding yet.
func (c *Client) EmbedRecords(ctx context.Context, records []schema.Record) error {
	var (
		targets []schema.Record
		texts   []string
	)
	for _, rec := range records {
		doc := rec.AsDocument()
		content := strings.TrimSpace(doc.Content)
		if len(doc.Embedding) > 0 || content == "" {
			continue
		}
		if r := []rune(content); len(r) > maxInputRunes {
			content = string(r[:maxInputRunes])
		}
		targets = append(targets, rec)
		texts = append(texts, content)
	}
	if len(targets) == 0 {
		return nil
	}

	vectors, err := c.GenerateBatchEmbeddings(ctx, texts)
	if err != nil {
		return err
	}

	for i, rec := range targets {
		setEmbedding(rec, widen(vectors[i]))
	}

	logger.Debug("Records embedded", zap.Int("count", len(targets)))
	return nil
}

// Enrich lets the client run ahead of a sink.
func (c *Client) Enrich(ctx context.Context, records []schema.Record) error {
	return c.EmbedRecords(ctx, records)
}

func widen(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}

func setEmbedding(rec schema.Record, v []float64) {
	switch r := rec.(type) {
	case *schema.Story:
		r.Embedding = v
	case *schema.Storyteller:
		r.Embedding = v
	case *schema.Document:
		r.Embedding = v
	}
}
