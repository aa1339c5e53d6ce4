package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pgcsv/internal/retry"
	"github.com/vvka-141/pgcsv/pkg/pgcsv"
)

// Each file gets its own short-lived pool holding one session.
const (
	DefaultMaxConns        = 1
	DefaultMaxConnIdleTime = 5 * time.Minute
)

func configurePool(poolConfig *pgxpool.Config, logger pgcsv.Logger) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = 0
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Verbose("NOTICE: %s", notice.Message)
	}
}

// openPool creates a pool from connStr and pings it. dial may be nil.
func openPool(ctx context.Context, connStr string, cfg *pgcsv.ConnectionConfig, logger pgcsv.Logger, dial pgconn.DialFunc) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w: %w", pgcsv.ErrInvalidConfig, err)
	}
	configurePool(poolConfig, logger)
	if dial != nil {
		poolConfig.ConnConfig.DialFunc = dial
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, wrapConnectionError(err, cfg.Host, cfg.Port, cfg.Database)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrapConnectionError(err, cfg.Host, cfg.Port, cfg.Database)
	}
	return pool, nil
}

func connectExecutor(logger pgcsv.Logger) *retry.Executor {
	return retry.NewConnectExecutor().WithOnRetry(func(attempt int, err error, delay time.Duration) {
		logger.Verbose("Connection attempt %d failed, retrying in %v: %v", attempt+1, delay.Round(time.Millisecond), err)
	})
}

// StandardConnector connects with username/password and retries transient
// failures.
type StandardConnector struct {
	config        *pgcsv.ConnectionConfig
	logger        pgcsv.Logger
	retryExecutor *retry.Executor
}

// NewStandardConnector creates a new StandardConnector with the given configuration.
func NewStandardConnector(config *pgcsv.ConnectionConfig, logger pgcsv.Logger) *StandardConnector {
	return &StandardConnector{
		config:        config,
		logger:        logger,
		retryExecutor: connectExecutor(logger),
	}
}

// Connect establishes a connection pool using standard authentication with automatic retry.
func (c *StandardConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	connStr := BuildConnectionString(c.config)

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		var err error
		pool, err = openPool(ctx, connStr, c.config, c.logger, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// NewConnector creates the Connector matching config.AuthMethod.
func NewConnector(config *pgcsv.ConnectionConfig, logger pgcsv.Logger) (pgcsv.Connector, error) {
	if logger == nil {
		panic("logger cannot be nil")
	}
	switch config.AuthMethod {
	case pgcsv.AuthMethodStandard:
		return NewStandardConnector(config, logger), nil
	case pgcsv.AuthMethodAWSIAM:
		return newAWSConnector(config, logger)
	case pgcsv.AuthMethodGoogleIAM:
		return newGoogleConnector(config, logger)
	case pgcsv.AuthMethodAzureEntraID:
		return newAzureConnector(config, logger)
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, pgcsv.ErrUnsupportedAuthMethod)
	}
}

// wrapConnectionError wraps raw pgx connection errors with actionable guidance.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - Wrong host or port

Original error: %w`, addr, host, port, err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled
  - DNS is not reachable

Original error: %w`, host, err)

	case strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf(`password authentication failed for database "%s"

Possible causes:
  - Wrong password (check $PGPASSWORD, ~/.pgpass or pgcsv.yaml)
  - Wrong username

Original error: %w`, database, err)

	case strings.Contains(errStr, "does not exist"):
		return fmt.Errorf(`database "%s" does not exist

pgcsv loads into an existing database. To create it:
  createdb %s

Original error: %w`, database, database, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Firewall silently dropping packets

Original error: %w`, addr, err)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		return fmt.Errorf(`SSL/TLS connection error

Possible causes:
  - Server requires SSL but --sslmode is wrong
  - Certificate verification failed (try --sslmode=require)

Original error: %w`, err)

	default:
		return fmt.Errorf("failed to connect to database: %w", err)
	}
}

// newAWSConnector creates a token-based connector with the AWS IAM token provider.
func newAWSConnector(config *pgcsv.ConnectionConfig, logger pgcsv.Logger) (pgcsv.Connector, error) {
	endpoint := fmt.Sprintf("%s:%d", config.Host, config.Port)

	tokenProvider, err := NewAWSIAMTokenProvider(endpoint, config.AWSRegion, config.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS IAM token provider: %w", err)
	}

	return NewTokenBasedConnector(config, tokenProvider, "AWS IAM", logger), nil
}

// newGoogleConnector creates a GoogleCloudSQLConnector for Google Cloud SQL IAM authentication.
func newGoogleConnector(config *pgcsv.ConnectionConfig, logger pgcsv.Logger) (pgcsv.Connector, error) {
	if config.GoogleInstance == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires --google-instance (project:region:instance): %w", pgcsv.ErrInvalidConfig)
	}
	if config.Username == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires username (-U): %w", pgcsv.ErrInvalidConfig)
	}

	return NewGoogleCloudSQLConnector(config, logger), nil
}

// newAzureConnector uses Service Principal credentials when tenant, client
// and secret are all set, and DefaultAzureCredential otherwise.
func newAzureConnector(config *pgcsv.ConnectionConfig, logger pgcsv.Logger) (pgcsv.Connector, error) {
	var tokenProvider TokenProvider
	var err error

	if config.AzureTenantID != "" && config.AzureClientID != "" && config.AzureClientSecret != "" {
		tokenProvider, err = NewAzureServicePrincipalProvider(config.AzureTenantID, config.AzureClientID, config.AzureClientSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Service Principal provider: %w", err)
		}
	} else {
		tokenProvider, err = NewAzureDefaultCredentialProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Default Credential provider: %w", err)
		}
	}

	return NewTokenBasedConnector(config, tokenProvider, "Azure", logger), nil
}
