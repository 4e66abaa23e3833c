package zilliz

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/act-placemat/normalizer/internal/schema"
	"github.com/act-placemat/normalizer/pkg/logger"
)

type Client struct {
	client         client.Client
	collectionName string
	vectorDim      int
}

// Row is one record's entry in the vector collection.
type Row struct {
	RecordID   string
	Kind       string
	SourceType string
	Title      string
	Embedding  []float32
	Timestamp  int64
}

func NewClient(endpoint, apiKey, collectionName string, vectorDim int) (*Client, error) {
	c, err := client.NewClient(context.Background(), client.Config{
		Address: endpoint,
		APIKey:  apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	logger.Info("Zilliz/Milvus client initialized",
		zap.String("endpoint", endpoint),
		zap.String("collection", collectionName),
	)

	return &Client{
		client:         c,
		collectionName: collectionName,
		vectorDim:      vectorDim,
	}, nil
}

func (z *Client) Close() error {
	return z.client.Close()
}

func (z *Client) Name() string { return "zilliz" }

func (z *Client) CreateCollection(ctx context.Context) error {
	has, err := z.client.HasCollection(ctx, z.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if has {
		logger.Info("Collection already exists", zap.String("collection", z.collectionName))
		return nil
	}

	collSchema := &entity.Schema{
		CollectionName: z.collectionName,
		Description:    "Canonical record embeddings",
		Fields: []*entity.Field{
			{
				Name:       "record_id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{"max_length": "64"},
			},
			{
				Name:       "kind",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "32"},
			},
			{
				Name:       "source_type",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "32"},
			},
			{
				Name:       "title",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "512"},
			},
			{
				Name:       "embedding",
				DataType:   entity.FieldTypeFloatVector,
				TypeParams: map[string]string{"dim": fmt.Sprintf("%d", z.vectorDim)},
			},
			{
				Name:     "timestamp",
				DataType: entity.FieldTypeInt64,
			},
		},
	}

	err = z.client.CreateCollection(ctx, collSchema, entity.DefaultShardNumber)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idx, err := entity.NewIndexIvfFlat(entity.L2, 1024)
	if err != nil {
		return fmt.Errorf("failed to build index params: %w", err)
	}
	err = z.client.CreateIndex(ctx, z.collectionName, "embedding", idx, false)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	err = z.client.LoadCollection(ctx, z.collectionName, false)
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	logger.Info("Collection created and loaded", zap.String("collection", z.collectionName))

	return nil
}

// Upsert writes the embeddings of records keyed by record id. Records without
// a full-length embedding are skipped.
func (z *Client) Upsert(ctx context.Context, records []schema.Record) error {
	rows := Rows(records, z.vectorDim, time.Now())
	if len(rows) == 0 {
		return nil
	}

	ids := make([]string, len(rows))
	kinds := make([]string, len(rows))
	sources := make([]string, len(rows))
	titles := make([]string, len(rows))
	embeddings := make([][]float32, len(rows))
	timestamps := make([]int64, len(rows))

	for i, row := range rows {
		ids[i] = row.RecordID
		kinds[i] = row.Kind
		sources[i] = row.SourceType
		titles[i] = row.Title
		embeddings[i] = row.Embedding
		timestamps[i] = row.Timestamp
	}

	_, err := z.client.Upsert(
		ctx,
		z.collectionName,
		"",
		entity.NewColumnVarChar("record_id", ids),
		entity.NewColumnVarChar("kind", kinds),
		entity.NewColumnVarChar("source_type", sources),
		entity.NewColumnVarChar("title", titles),
		entity.NewColumnFloatVector("embedding", z.vectorDim, embeddings),
		entity.NewColumnInt64("timestamp", timestamps),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert embeddings: %w", err)
	}

	logger.Info("Embeddings upserted into vector DB", zap.Int("count", len(rows)), zap.Int("skipped", len(records)-len(rows)))

	return nil
}

const maxTitleLength = 512

// Rows selects the records carrying a dim-length embedding.
func Rows(records []schema.Record, dim int, now time.Time) []Row {
	var rows []Row
	for _, rec := range records {
		doc := rec.AsDocument()
		if len(doc.Embedding) != dim {
			continue
		}
		vec := make([]float32, dim)
		for i, v := range doc.Embedding {
			vec[i] = float32(v)
		}
		title := doc.Title
		if r := []rune(title); len(r) > maxTitleLength {
			title = string(r[:maxTitleLength])
		}
		rows = append(rows, Row{
			RecordID:   rec.RecordID(),
			Kind:       string(rec.Kind()),
			SourceType: string(doc.SourceType),
			Title:      title,
			Embedding:  vec,
			Timestamp:  now.Unix(),
		})
	}
	return rows
}
