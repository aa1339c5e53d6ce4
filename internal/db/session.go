package db

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pgcsv/pkg/pgcsv"
)

// Session is one dedicated database connection opened for a single file.
type Session struct {
	pool      *pgxpool.Pool
	conn      *pgxpool.Conn
	connector pgcsv.Connector
}

// OpenSession connects through connector and acquires a single connection.
// Errors wrap pgcsv.ErrConnectionFailed. On failure nothing is left open.
func OpenSession(ctx context.Context, connector pgcsv.Connector) (*Session, error) {
	pool, err := connector.Connect(ctx)
	if err != nil {
		closeConnector(connector)
		return nil, fmt.Errorf("%w: %w", pgcsv.ErrConnectionFailed, err)
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		pool.Close()
		closeConnector(connector)
		return nil, fmt.Errorf("%w: failed to acquire connection: %w", pgcsv.ErrConnectionFailed, err)
	}

	return &Session{pool: pool, conn: conn, connector: connector}, nil
}

// Conn returns the session connection. It is valid until Close.
func (s *Session) Conn() pgcsv.DBConn {
	return s.conn
}

// Close releases the connection, closes the pool and then the connector if
// it holds resources of its own. It is safe to call more than once.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	if s.conn != nil {
		s.conn.Release()
		s.conn = nil
	}
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
	var err error
	if s.connector != nil {
		err = closeConnector(s.connector)
		s.connector = nil
	}
	return err
}

func closeConnector(connector pgcsv.Connector) error {
	if closer, ok := connector.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return errors.Join(fmt.Errorf("failed to close connector"), err)
		}
	}
	return nil
}
