package services

import (
	"context"
	"fmt"

	"github.com/vvka-141/pgcsv/internal/db"
	"github.com/vvka-141/pgcsv/pkg/pgcsv"
)

// ConnectorFactory builds a Connector for one file's session.
type ConnectorFactory func(*pgcsv.ConnectionConfig, pgcsv.Logger) (pgcsv.Connector, error)

// fileSession is a dedicated connection that lives for one file.
type fileSession interface {
	Conn() pgcsv.DBConn
	Close() error
}

type sessionOpenFunc func(ctx context.Context) (fileSession, error)

func (o *Orchestrator) defaultOpenSession(ctx context.Context) (fileSession, error) {
	connector, err := o.connectorFactory(o.connConfig, o.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create connector: %w", pgcsv.ErrConnectionFailed, err)
	}

	session, err := db.OpenSession(ctx, connector)
	if err != nil {
		return nil, err
	}
	return session, nil
}
