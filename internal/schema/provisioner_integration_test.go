package schema_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgcsv/internal/logging"
	"github.com/vvka-141/pgcsv/internal/schema"
	testhelpers "github.com/vvka-141/pgcsv/internal/testing"
	"github.com/vvka-141/pgcsv/pkg/pgcsv"
)

func TestProvision_CreatesSchemaAndTextColumns(t *testing.T) {
	connString := testhelpers.RequireDatabase(t)
	ctx := context.Background()

	pool := testhelpers.GetTestPool(t, connString, testhelpers.NewTestDatabase(t, connString))
	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer conn.Release()

	target := schema.NewTargetTable("sources", "orders", []string{"id", "select", "Unit Price", `a"b`})
	p := schema.NewProvisioner(pgcsv.DefaultLoadOptions(), logging.NewNullLogger())

	require.NoError(t, p.Provision(ctx, conn, target))
	// idempotent
	require.NoError(t, p.Provision(ctx, conn, target))

	rows, err := conn.Query(ctx, `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = 'sources' AND table_name = 'orders'
		ORDER BY ordinal_position`)
	require.NoError(t, err)

	type column struct {
		Name string
		Type string
	}
	cols, err := pgx.CollectRows(rows, pgx.RowToStructByPos[column])
	require.NoError(t, err)

	assert.Equal(t, []column{
		{"id", "text"},
		{"select", "text"},
		{"Unit Price", "text"},
		{`a"b`, "text"},
	}, cols)
}

func TestProvision_ExistingTableIsNeverAltered(t *testing.T) {
	connString := testhelpers.RequireDatabase(t)
	ctx := context.Background()

	pool := testhelpers.GetTestPool(t, connString, testhelpers.NewTestDatabase(t, connString))
	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer conn.Release()

	p := schema.NewProvisioner(pgcsv.DefaultLoadOptions(), logging.NewNullLogger())
	require.NoError(t, p.Provision(ctx, conn, schema.NewTargetTable("sources", "drift", []string{"id"})))
	require.NoError(t, p.Provision(ctx, conn, schema.NewTargetTable("sources", "drift", []string{"id", "added"})))

	cols, err := schema.ExistingColumns(ctx, conn, "sources", "drift")
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, cols)
}

func TestProvision_StrictColumns(t *testing.T) {
	connString := testhelpers.RequireDatabase(t)
	ctx := context.Background()

	pool := testhelpers.GetTestPool(t, connString, testhelpers.NewTestDatabase(t, connString))
	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer conn.Release()

	opts := pgcsv.DefaultLoadOptions()
	opts.StrictColumns = true
	p := schema.NewProvisioner(opts, logging.NewNullLogger())

	require.NoError(t, p.Provision(ctx, conn, schema.NewTargetTable("sources", "strict", []string{"id", "name"})))
	require.NoError(t, p.Provision(ctx, conn, schema.NewTargetTable("sources", "strict", []string{"id", "name"})))

	err = p.Provision(ctx, conn, schema.NewTargetTable("sources", "strict", []string{"name", "id"}))
	assert.True(t, errors.Is(err, pgcsv.ErrColumnMismatch), "expected ErrColumnMismatch, got %v", err)
	assert.Equal(t, pgcsv.KindLoadData, pgcsv.Classify(err))
}

func TestExistingColumns_MissingTable(t *testing.T) {
	connString := testhelpers.RequireDatabase(t)
	ctx := context.Background()

	pool := testhelpers.GetTestPool(t, connString, testhelpers.NewTestDatabase(t, connString))
	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer conn.Release()

	cols, err := schema.ExistingColumns(ctx, conn, "sources", "absent")
	require.NoError(t, err)
	assert.Empty(t, cols)
}
