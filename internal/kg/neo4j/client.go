package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/act-placemat/normalizer/internal/schema"
	"github.com/act-placemat/normalizer/pkg/circuitbreaker"
	"github.com/act-placemat/normalizer/pkg/logger"
	"github.com/act-placemat/normalizer/pkg/retry"
)

type Client struct {
	driver      neo4j.DriverWithContext
	database    string
	cb          *circuitbreaker.Breaker
	retryConfig retry.Config
}

func NewClient(uri, username, password, database string) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(
		uri,
		neo4j.BasicAuth(username, password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = driver.VerifyConnectivity(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to verify connectivity: %w", err)
	}

	if database == "" {
		database = "neo4j"
	}

	cb := circuitbreaker.New("neo4j", circuitbreaker.Config{
		FailureThreshold: 5,
		OpenTimeout:      20 * time.Second,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:    3,
		InitialDelay:   200 * time.Millisecond,
		MaxDelay:       3 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	logger.Info("Neo4j client initialized", zap.String("uri", uri), zap.String("database", database))

	return &Client{
		driver:      driver,
		database:    database,
		cb:          cb,
		retryConfig: retryConfig,
	}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

func (c *Client) Name() string { return "neo4j" }

// Upsert merges every record and its theme, expertise and source links in
// one write transaction.
func (c *Client) Upsert(ctx context.Context, records []schema.Record) error {
	stmts := Statements(records)
	if len(stmts) == 0 {
		return nil
	}

	err := c.executeWithRetry(ctx, func(tx neo4j.ManagedTransaction) error {
		for _, st := range stmts {
			if _, err := tx.Run(ctx, st.Query, st.Params); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write records to graph: %w", err)
	}

	logger.Debug("Records merged into graph", zap.Int("records", len(records)), zap.Int("statements", len(stmts)))
	return nil
}

func (c *Client) executeWithRetry(ctx context.Context, work func(neo4j.ManagedTransaction) error) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return c.cb.Execute(func() error {
		return retry.Do(ctx, c.retryConfig, func(ctx context.Context) error {
			session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database})
			defer session.Close(ctx)

			_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
				return nil, work(tx)
			})
			return err
		})
	})
}

func (c *Client) Ping(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}
