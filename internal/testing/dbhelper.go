package testing

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pgcsv/internal/checksum"
	"github.com/vvka-141/pgcsv/internal/clean"
	"github.com/vvka-141/pgcsv/internal/csvsource"
	"github.com/vvka-141/pgcsv/internal/db"
	"github.com/vvka-141/pgcsv/internal/files/discover"
	"github.com/vvka-141/pgcsv/internal/files/filesystem"
	"github.com/vvka-141/pgcsv/internal/files/loader"
	"github.com/vvka-141/pgcsv/internal/logging"
	"github.com/vvka-141/pgcsv/internal/schema"
	"github.com/vvka-141/pgcsv/internal/services"
	"github.com/vvka-141/pgcsv/internal/testinfra"
	"github.com/vvka-141/pgcsv/pkg/pgcsv"
)

var (
	testContainerOnce sync.Once
	testContainerConn string
	testContainerErr  error
)

func getOrStartTestContainer() (string, error) {
	testContainerOnce.Do(func() {
		ctx := context.Background()
		container, err := testinfra.StartPostgres(ctx)
		if err != nil {
			testContainerErr = err
			return
		}
		testContainerConn = container.ConnString
	})
	return testContainerConn, testContainerErr
}

// GetTestConnectionString returns the test database connection string.
// Priority: PGCSV_TEST_CONN env var > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv("PGCSV_TEST_CONN"); connString != "" {
		return connString
	}

	connString, err := getOrStartTestContainer()
	if err != nil {
		t.Skipf("PGCSV_TEST_CONN not set and Docker unavailable: %v", err)
	}
	return connString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString for convenience.
// Returns the test connection string if available, otherwise skips the test.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// NewTestDatabase creates a database with a unique name and drops it when
// the test completes. Returns the database name.
func NewTestDatabase(t *testing.T, connString string) string {
	t.Helper()

	dbName := "pgcsv_test_" + uuid.NewString()[:8]
	t.Cleanup(CreateTestDB(t, connString, dbName))
	return dbName
}

// CreateTestDB creates a test database with the given name.
// Returns a cleanup function that should be called with t.Cleanup().
func CreateTestDB(t *testing.T, connString, dbName string) func() {
	t.Helper()

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect for test DB creation: %v", err)
	}

	createQuery := fmt.Sprintf("CREATE DATABASE %s", pgx.Identifier{dbName}.Sanitize())
	_, err = pool.Exec(ctx, createQuery)
	if err != nil {
		pool.Close()
		t.Fatalf("Failed to create test database %s: %v", dbName, err)
	}

	pool.Close()
	t.Logf("✓ Created test database %s", dbName)

	return func() {
		CleanupTestDB(t, connString, dbName)
	}
}

// CleanupTestDB drops the test database.
// Safe to call multiple times (uses DROP DATABASE IF EXISTS).
func CleanupTestDB(t *testing.T, connString, dbName string) {
	t.Helper()

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Logf("Warning: Failed to connect for cleanup: %v", err)
		return
	}
	defer pool.Close()

	// Terminate all connections to the database
	terminateQuery := `
		SELECT pg_terminate_backend(pid)
		FROM pg_stat_activity
		WHERE datname = $1 AND pid <> pg_backend_pid()
	`
	_, err = pool.Exec(ctx, terminateQuery, dbName)
	if err != nil {
		t.Logf("Warning: Failed to terminate connections to %s: %v", dbName, err)
	}

	dropQuery := fmt.Sprintf("DROP DATABASE IF EXISTS %s", pgx.Identifier{dbName}.Sanitize())
	_, err = pool.Exec(ctx, dropQuery)
	if err != nil {
		t.Logf("Warning: Failed to drop database %s: %v", dbName, err)
	} else {
		t.Logf("✓ Cleaned up database %s", dbName)
	}
}

// TestConnectionConfig parses connString and points it at dbName.
func TestConnectionConfig(t *testing.T, connString, dbName string) *pgcsv.ConnectionConfig {
	t.Helper()

	config, err := db.ParseConnectionString(connString)
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}
	config.Database = dbName
	if config.AppName == "" {
		config.AppName = pgcsv.DefaultAppName
	}
	return config
}

// GetTestPool creates a connection pool to the specified database for testing.
// The pool is automatically closed when the test completes.
func GetTestPool(t *testing.T, connString, dbName string) *pgxpool.Pool {
	t.Helper()

	ctx := context.Background()
	targetConnString := db.BuildConnectionString(TestConnectionConfig(t, connString, dbName))

	pool, err := pgxpool.New(ctx, targetConnString)
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
	})

	return pool
}

// CountRows returns the number of rows in schemaName.table.
func CountRows(t *testing.T, pool *pgxpool.Pool, schemaName, table string) int64 {
	t.Helper()

	var n int64
	query := fmt.Sprintf("SELECT count(*) FROM %s", pgx.Identifier{schemaName, table}.Sanitize())
	if err := pool.QueryRow(context.Background(), query).Scan(&n); err != nil {
		t.Fatalf("Failed to count rows in %s.%s: %v", schemaName, table, err)
	}
	return n
}

// NewTestOrchestrator wires the production pipeline against connConfig,
// reading files from fsProvider, with a silent logger.
func NewTestOrchestrator(t *testing.T, connConfig *pgcsv.ConnectionConfig, fsProvider filesystem.FileSystemProvider, opts pgcsv.LoadOptions) *services.Orchestrator {
	t.Helper()

	logger := logging.NewNullLogger()
	pipeline := services.Pipeline{
		Discoverer:  discover.NewDiscovererWithFS(fsProvider, opts.Suffix),
		Reader:      csvsource.NewReader(fsProvider, checksum.New()),
		Provisioner: schema.NewProvisioner(opts, logger),
		Cleaner:     clean.New(opts.StripChar),
		Loader:      loader.NewLoader(logger),
	}
	return services.NewOrchestrator(connConfig, db.NewConnector, pipeline, opts, logger)
}
