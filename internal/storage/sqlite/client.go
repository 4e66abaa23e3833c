package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/act-placemat/normalizer/internal/schema"
	"github.com/act-placemat/normalizer/internal/storage/models"
	"github.com/act-placemat/normalizer/pkg/logger"
)

var ErrNotFound = errors.New("record not found")

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	_, err = db.Exec("PRAGMA busy_timeout = 5000")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) Name() string { return "sqlite" }

func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Client) InitSchema() error {
	ddl := `
	CREATE TABLE IF NOT EXISTS canonical_records (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		source_type TEXT NOT NULL,
		source_id TEXT,
		title TEXT,
		content TEXT NOT NULL,
		chunk_index INTEGER NOT NULL DEFAULT 0,
		total_chunks INTEGER NOT NULL DEFAULT 1,
		quality_score REAL,
		payload TEXT NOT NULL,
		normalized_at TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_records_kind ON canonical_records(kind);
	CREATE INDEX IF NOT EXISTS idx_records_source ON canonical_records(source_type, source_id);
	CREATE INDEX IF NOT EXISTS idx_records_updated ON canonical_records(updated_at);

	CREATE TABLE IF NOT EXISTS system_metrics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		metric_name TEXT NOT NULL,
		metric_value REAL NOT NULL,
		tags TEXT,
		timestamp INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_metrics_name ON system_metrics(metric_name);
	CREATE INDEX IF NOT EXISTS idx_metrics_timestamp ON system_metrics(timestamp);
	`

	_, err := c.db.Exec(ddl)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

// Upsert writes records in one transaction, replacing rows with the same id.
// created_at is kept from the first write.
func (c *Client) Upsert(ctx context.Context, records []schema.Record) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]*models.CanonicalRecord, 0, len(records))
	for _, rec := range records {
		row, err := models.FromRecord(rec)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO canonical_records (id, kind, source_type, source_id, title, content, chunk_index,
			total_chunks, quality_score, payload, normalized_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			source_type = excluded.source_type,
			source_id = excluded.source_id,
			title = excluded.title,
			content = excluded.content,
			chunk_index = excluded.chunk_index,
			total_chunks = excluded.total_chunks,
			quality_score = excluded.quality_score,
			payload = excluded.payload,
			normalized_at = excluded.normalized_at,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, row := range rows {
		_, err := stmt.ExecContext(ctx,
			row.ID,
			string(row.Kind),
			string(row.SourceType),
			row.SourceID,
			row.Title,
			row.Content,
			row.ChunkIndex,
			row.TotalChunks,
			row.QualityScore,
			string(row.Payload),
			row.NormalizedAt,
			now,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert record %s: %w", row.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}

	logger.Debug("Records upserted", zap.Int("count", len(rows)))
	return nil
}

func (c *Client) GetRecord(ctx context.Context, id string) (*models.CanonicalRecord, error) {
	query := `
		SELECT id, kind, source_type, source_id, title, content, chunk_index, total_chunks,
			quality_score, payload, normalized_at, created_at, updated_at
		FROM canonical_records WHERE id = ?
	`

	var (
		row                  models.CanonicalRecord
		kind, sourceType     string
		sourceID, title      sql.NullString
		normalizedAt         sql.NullString
		payload              string
		score                sql.NullFloat64
		createdAt, updatedAt int64
	)
	err := c.db.QueryRowContext(ctx, query, id).Scan(
		&row.ID, &kind, &sourceType, &sourceID, &title, &row.Content, &row.ChunkIndex, &row.TotalChunks,
		&score, &payload, &normalizedAt, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	row.Kind = schema.Kind(kind)
	row.SourceType = schema.SourceType(sourceType)
	row.SourceID = sourceID.String
	row.Title = title.String
	row.QualityScore = score.Float64
	row.Payload = json.RawMessage(payload)
	row.NormalizedAt = normalizedAt.String
	row.CreatedAt = time.Unix(createdAt, 0)
	row.UpdatedAt = time.Unix(updatedAt, 0)
	return &row, nil
}

// CountRecords returns the number of stored records per kind.
func (c *Client) CountRecords(ctx context.Context) (map[schema.Kind]int, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM canonical_records GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	defer rows.Close()

	counts := make(map[schema.Kind]int)
	for rows.Next() {
		var (
			kind string
			n    int
		)
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[schema.Kind(kind)] = n
	}
	return counts, rows.Err()
}

func (c *Client) RecordMetric(name string, value float64, tags map[string]string) error {
	tagsJSON, _ := json.Marshal(tags)

	query := `INSERT INTO system_metrics (metric_name, metric_value, tags, timestamp) VALUES (?, ?, ?, ?)`

	_, err := c.db.Exec(query, name, value, string(tagsJSON), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to record metric: %w", err)
	}

	return nil
}

// RecordMetricsSnapshot stores every value of a metrics snapshot under one
// timestamp.
func (c *Client) RecordMetricsSnapshot(values map[string]float64, tags map[string]string) error {
	for name, value := range values {
		if err := c.RecordMetric(name, value, tags); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) MetricHistory(ctx context.Context, name string, limit int) ([]models.MetricSample, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := c.db.QueryContext(ctx, `
		SELECT metric_name, metric_value, tags, timestamp FROM system_metrics
		WHERE metric_name = ? ORDER BY timestamp DESC, id DESC LIMIT ?
	`, name, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics: %w", err)
	}
	defer rows.Close()

	var out []models.MetricSample
	for rows.Next() {
		var (
			s    models.MetricSample
			tags sql.NullString
			ts   int64
		)
		if err := rows.Scan(&s.Name, &s.Value, &tags, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan metric: %w", err)
		}
		if tags.Valid && tags.String != "" {
			_ = json.Unmarshal([]byte(tags.String), &s.Tags)
		}
		s.Timestamp = time.Unix(ts, 0)
		out = append(out, s)
	}
	return out, rows.Err()
}
