package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pgcsv/pkg/pgcsv"
)

type mockConnector struct{}

func (m *mockConnector) Connect(_ context.Context) (*pgxpool.Pool, error) {
	return nil, fmt.Errorf("mockConnector is not meant to connect")
}

type mockConn struct{}

func (mockConn) Begin(context.Context) (pgx.Tx, error) {
	return nil, fmt.Errorf("not implemented")
}

func (mockConn) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, fmt.Errorf("not implemented")
}

type mockSession struct {
	closed int
}

func (m *mockSession) Conn() pgcsv.DBConn { return mockConn{} }

func (m *mockSession) Close() error {
	m.closed++
	return nil
}

// sessionRecorder hands out mockSessions, failing for the listed attempts.
type sessionRecorder struct {
	sessions []*mockSession
	failOn   map[int]error
	opened   int
}

func (r *sessionRecorder) open(_ context.Context) (fileSession, error) {
	r.opened++
	if err, ok := r.failOn[r.opened]; ok {
		return nil, err
	}
	s := &mockSession{}
	r.sessions = append(r.sessions, s)
	return s, nil
}

type mockProvisioner struct {
	targets []pgcsv.TargetTable
	errFor  map[string]error
}

func (m *mockProvisioner) Provision(_ context.Context, _ pgcsv.DBConn, target pgcsv.TargetTable) error {
	m.targets = append(m.targets, target)
	return m.errFor[target.Name]
}

type mockLoader struct {
	loaded map[string]*pgcsv.Table
	errFor map[string]error
	panic  string
}

func (m *mockLoader) Load(_ context.Context, _ pgcsv.DBConn, target pgcsv.TargetTable, data *pgcsv.Table) (int64, error) {
	if m.panic == target.Name {
		panic("boom")
	}
	if err := m.errFor[target.Name]; err != nil {
		return 0, err
	}
	if m.loaded == nil {
		m.loaded = make(map[string]*pgcsv.Table)
	}
	m.loaded[target.Name] = data
	return int64(len(data.Rows)), nil
}

type mockLogger struct {
	mu      sync.Mutex
	verbose []string
	info    []string
	errors  []string
}

func (m *mockLogger) Verbose(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verbose = append(m.verbose, fmt.Sprintf(format, args...))
}

func (m *mockLogger) Info(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.info = append(m.info, fmt.Sprintf(format, args...))
}

func (m *mockLogger) Error(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, fmt.Sprintf(format, args...))
}
