package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgcsv/internal/files/filesystem"
	testhelpers "github.com/vvka-141/pgcsv/internal/testing"
	"github.com/vvka-141/pgcsv/pkg/pgcsv"
)

func TestRun_DirectoryWithValidAndEmptyFile(t *testing.T) {
	connString := testhelpers.RequireDatabase(t)
	testDB := testhelpers.NewTestDatabase(t, connString)
	connConfig := testhelpers.TestConnectionConfig(t, connString, testDB)

	fs := filesystem.NewMemoryFileSystem("/data")
	fs.AddFile("exports/a.csv", "id,name\n1,O'Brien\n2,Smith\n3,Jones\n")
	fs.AddFile("exports/b.csv", "")

	orch := testhelpers.NewTestOrchestrator(t, connConfig, fs, pgcsv.DefaultLoadOptions())
	summary, err := orch.Run(context.Background(), "/data/exports")
	require.NoError(t, err)
	require.Len(t, summary.Results, 2)

	byName := map[string]pgcsv.FileResult{}
	for _, r := range summary.Results {
		byName[r.Source.Name] = r
	}

	a := byName["a.csv"]
	assert.Equal(t, pgcsv.StateLoaded, a.State)
	assert.Equal(t, "sources.a", a.Target)
	assert.Equal(t, int64(3), a.Rows)

	b := byName["b.csv"]
	assert.Equal(t, pgcsv.StateFailed, b.State)
	assert.Equal(t, pgcsv.KindEmptyInput, b.Kind)

	pool := testhelpers.GetTestPool(t, connString, testDB)
	assert.Equal(t, int64(3), testhelpers.CountRows(t, pool, "sources", "a"))

	var name string
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT name FROM sources.a WHERE id = '1'`).Scan(&name))
	assert.Equal(t, "OBrien", name)

	var tables int
	require.NoError(t, pool.QueryRow(context.Background(),
		`SELECT count(*) FROM information_schema.tables WHERE table_schema = 'sources'`).Scan(&tables))
	assert.Equal(t, 1, tables, "the empty file must not create a table")
}

func TestRun_MissingDirectoryTouchesNothing(t *testing.T) {
	connString := testhelpers.RequireDatabase(t)
	testDB := testhelpers.NewTestDatabase(t, connString)
	connConfig := testhelpers.TestConnectionConfig(t, connString, testDB)

	fs := filesystem.NewMemoryFileSystem("/data")
	orch := testhelpers.NewTestOrchestrator(t, connConfig, fs, pgcsv.DefaultLoadOptions())

	summary, err := orch.Run(context.Background(), "/data/nowhere")
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, pgcsv.KindMissingInput, summary.Results[0].Kind)
	assert.True(t, errors.Is(summary.Results[0].Err, pgcsv.ErrInputNotFound))

	pool := testhelpers.GetTestPool(t, connString, testDB)
	var schemas int
	require.NoError(t, pool.QueryRow(context.Background(),
		`SELECT count(*) FROM information_schema.schemata WHERE schema_name = 'sources'`).Scan(&schemas))
	assert.Zero(t, schemas)
}

func TestRun_MismatchedRowFailsOnlyThatFile(t *testing.T) {
	connString := testhelpers.RequireDatabase(t)
	testDB := testhelpers.NewTestDatabase(t, connString)
	connConfig := testhelpers.TestConnectionConfig(t, connString, testDB)

	fs := filesystem.NewMemoryFileSystem("/data")
	fs.AddFile("in/bad.csv", "id,name\n1\n")
	fs.AddFile("in/good.csv", "id\n7\n")

	orch := testhelpers.NewTestOrchestrator(t, connConfig, fs, pgcsv.DefaultLoadOptions())
	summary, err := orch.Run(context.Background(), "/data/in")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Loaded)
	assert.Equal(t, 1, summary.Failed)

	for _, r := range summary.Results {
		if r.Source.Name == "bad.csv" {
			assert.Equal(t, pgcsv.KindLoadData, r.Kind)
			assert.Equal(t, pgcsv.StateDataCleaned, r.LastState)
		}
	}

	pool := testhelpers.GetTestPool(t, connString, testDB)
	assert.Zero(t, testhelpers.CountRows(t, pool, "sources", "bad"), "table exists but holds no rows from the failed file")
	assert.Equal(t, int64(1), testhelpers.CountRows(t, pool, "sources", "good"))
}

func TestRun_UnreachableServerIsConnectivityFailure(t *testing.T) {
	testhelpers.SkipIfShort(t)

	connConfig := &pgcsv.ConnectionConfig{
		Host:       "127.0.0.1",
		Port:       1,
		Database:   "nowhere",
		Username:   "nobody",
		SSLMode:    "disable",
		AuthMethod: pgcsv.AuthMethodStandard,
	}
	fs := filesystem.NewMemoryFileSystem("/data")
	fs.AddFile("a.csv", "id\n1\n")

	orch := testhelpers.NewTestOrchestrator(t, connConfig, fs, pgcsv.DefaultLoadOptions())
	summary, err := orch.Run(context.Background(), "/data/a.csv")
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, pgcsv.StateFailed, summary.Results[0].State)
	assert.Equal(t, pgcsv.KindConnectivity, summary.Results[0].Kind)
	assert.Equal(t, pgcsv.StatePending, summary.Results[0].LastState)
}

func TestRun_NonLatinFileNamesGetTheirOwnTables(t *testing.T) {
	connString := testhelpers.RequireDatabase(t)
	testDB := testhelpers.NewTestDatabase(t, connString)
	connConfig := testhelpers.TestConnectionConfig(t, connString, testDB)

	fs := filesystem.NewMemoryFileSystem("/data")
	fs.AddFile("in/данные.csv", "id\n1\n")
	fs.AddFile("in/売上.csv", "id\n2\n3\n")

	orch := testhelpers.NewTestOrchestrator(t, connConfig, fs, pgcsv.DefaultLoadOptions())
	summary, err := orch.Run(context.Background(), "/data/in")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Loaded)

	pool := testhelpers.GetTestPool(t, connString, testDB)
	assert.Equal(t, int64(1), testhelpers.CountRows(t, pool, "sources", "данные"))
	assert.Equal(t, int64(2), testhelpers.CountRows(t, pool, "sources", "売上"))
}
