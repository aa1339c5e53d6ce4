package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pgcsv/internal/retry"
	"github.com/vvka-141/pgcsv/pkg/pgcsv"
)

// tokenExpiryWarning is how close to expiry a fresh token must be before a warning is logged.
const tokenExpiryWarning = 5 * time.Minute

// TokenBasedConnector authenticates with a short-lived cloud token used as
// the PostgreSQL password (AWS IAM, Azure Entra ID). A fresh token is
// fetched for every attempt.
type TokenBasedConnector struct {
	config        *pgcsv.ConnectionConfig
	tokenProvider TokenProvider
	retryExecutor *retry.Executor
	providerName  string
	logger        pgcsv.Logger
}

// NewTokenBasedConnector creates a connector that uses a TokenProvider for authentication.
// providerName is used in error and warning messages (e.g., "AWS IAM", "Azure").
func NewTokenBasedConnector(config *pgcsv.ConnectionConfig, tokenProvider TokenProvider, providerName string, logger pgcsv.Logger) *TokenBasedConnector {
	return &TokenBasedConnector{
		config:        config,
		tokenProvider: tokenProvider,
		retryExecutor: connectExecutor(logger),
		providerName:  providerName,
		logger:        logger,
	}
}

func (c *TokenBasedConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		token, expiresOn, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire %s token: %w", c.providerName, err)
		}
		c.logger.Verbose("Acquired token from %s", c.tokenProvider)
		if remaining := time.Until(expiresOn); remaining < tokenExpiryWarning {
			c.logger.Info("Warning: %s token expires in %v", c.providerName, remaining.Round(time.Second))
		}

		withToken := *c.config
		withToken.Password = token

		pool, err = openPool(ctx, BuildConnectionString(&withToken), c.config, c.logger, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}
