package db

import (
	"context"
	"fmt"
	"net"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pgcsv/internal/retry"
	"github.com/vvka-141/pgcsv/pkg/pgcsv"
)

// GoogleCloudSQLConnector connects to Cloud SQL with IAM database
// authentication through the Cloud SQL Go Connector.
//
// It implements io.Closer. Close must be called after the pool is closed to
// release the dialer.
type GoogleCloudSQLConnector struct {
	config        *pgcsv.ConnectionConfig
	logger        pgcsv.Logger
	retryExecutor *retry.Executor
	dialer        *cloudsqlconn.Dialer
}

// NewGoogleCloudSQLConnector creates a connector for config.GoogleInstance
// (project:region:instance).
func NewGoogleCloudSQLConnector(config *pgcsv.ConnectionConfig, logger pgcsv.Logger) *GoogleCloudSQLConnector {
	return &GoogleCloudSQLConnector{
		config:        config,
		logger:        logger,
		retryExecutor: connectExecutor(logger),
	}
}

func (c *GoogleCloudSQLConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	if c.dialer == nil {
		dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
		if err != nil {
			return nil, fmt.Errorf("failed to create Cloud SQL dialer: %w", err)
		}
		c.dialer = dialer
	}

	// host is a placeholder; DialFunc routes every connection to the instance.
	dsn := fmt.Sprintf("host=%s user=%s dbname=%s sslmode=disable application_name=%s",
		"cloudsql", c.config.Username, c.config.Database, c.config.AppName)
	dial := func(ctx context.Context, _, _ string) (net.Conn, error) {
		return c.dialer.Dial(ctx, c.config.GoogleInstance)
	}

	var pool *pgxpool.Pool
	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		var err error
		pool, err = openPool(ctx, dsn, c.config, c.logger, dial)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// Close releases the Cloud SQL dialer.
func (c *GoogleCloudSQLConnector) Close() error {
	if c.dialer != nil {
		err := c.dialer.Close()
		c.dialer = nil
		return err
	}
	return nil
}
