package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgcsv/internal/checksum"
	"github.com/vvka-141/pgcsv/internal/clean"
	"github.com/vvka-141/pgcsv/internal/csvsource"
	"github.com/vvka-141/pgcsv/internal/files/discover"
	"github.com/vvka-141/pgcsv/internal/files/filesystem"
	"github.com/vvka-141/pgcsv/pkg/pgcsv"
)

type fixture struct {
	orch        *Orchestrator
	sessions    *sessionRecorder
	provisioner *mockProvisioner
	loader      *mockLoader
	logger      *mockLogger
}

func newFixture(t *testing.T, mfs *filesystem.MemoryFileSystem) *fixture {
	t.Helper()

	f := &fixture{
		sessions:    &sessionRecorder{failOn: map[int]error{}},
		provisioner: &mockProvisioner{errFor: map[string]error{}},
		loader:      &mockLoader{errFor: map[string]error{}},
		logger:      &mockLogger{},
	}
	factory := func(*pgcsv.ConnectionConfig, pgcsv.Logger) (pgcsv.Connector, error) {
		return &mockConnector{}, nil
	}
	pipeline := Pipeline{
		Discoverer:  discover.NewDiscovererWithFS(mfs, pgcsv.DefaultSuffix),
		Reader:      csvsource.NewReader(mfs, checksum.New()),
		Provisioner: f.provisioner,
		Cleaner:     clean.New(pgcsv.DefaultStripChar),
		Loader:      f.loader,
	}
	f.orch = NewOrchestrator(&pgcsv.ConnectionConfig{}, factory, pipeline, pgcsv.DefaultLoadOptions(), f.logger)
	f.orch.openSession = f.sessions.open
	return f
}

func resultFor(t *testing.T, summary pgcsv.RunSummary, name string) pgcsv.FileResult {
	t.Helper()
	for _, r := range summary.Results {
		if r.Source.Name == name {
			return r
		}
	}
	t.Fatalf("no result for %s", name)
	return pgcsv.FileResult{}
}

func TestNewOrchestrator_PanicsOnNilDependencies(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/data")
	valid := newFixture(t, mfs)
	factory := valid.orch.connectorFactory
	pipeline := valid.orch.pipeline

	assert.Panics(t, func() { NewOrchestrator(nil, factory, pipeline, pgcsv.LoadOptions{}, valid.logger) })
	assert.Panics(t, func() { NewOrchestrator(&pgcsv.ConnectionConfig{}, nil, pipeline, pgcsv.LoadOptions{}, valid.logger) })
	assert.Panics(t, func() { NewOrchestrator(&pgcsv.ConnectionConfig{}, factory, Pipeline{}, pgcsv.LoadOptions{}, valid.logger) })
	assert.Panics(t, func() { NewOrchestrator(&pgcsv.ConnectionConfig{}, factory, pipeline, pgcsv.LoadOptions{}, nil) })
}

func TestRun_ValidAndEmptyFiles(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/data")
	mfs.AddFile("a.csv", "id,name\n1,x\n2,y\n3,z\n")
	mfs.AddFile("b.csv", "")
	f := newFixture(t, mfs)

	summary, err := f.orch.Run(context.Background(), "/data")
	require.NoError(t, err)
	require.Len(t, summary.Results, 2)
	assert.Equal(t, 1, summary.Loaded)
	assert.Equal(t, 1, summary.Failed)
	assert.NotEmpty(t, summary.RunID)

	a := resultFor(t, summary, "a.csv")
	assert.Equal(t, pgcsv.StateLoaded, a.State)
	assert.Equal(t, int64(3), a.Rows)
	assert.NoError(t, a.Err)
	assert.Len(t, a.Checksum, 64)

	b := resultFor(t, summary, "b.csv")
	assert.Equal(t, pgcsv.StateFailed, b.State)
	assert.Equal(t, pgcsv.StatePending, b.LastState)
	assert.Equal(t, pgcsv.KindEmptyInput, b.Kind)

	require.Len(t, f.provisioner.targets, 1, "the empty file must not touch the database")
	assert.Equal(t, pgcsv.DefaultSchema, f.provisioner.targets[0].Schema)
	assert.Equal(t, "a", f.provisioner.targets[0].Name)
	assert.Equal(t, []string{"id", "name"}, f.provisioner.targets[0].ColumnNames())
	assert.Equal(t, 1, f.sessions.opened)
}

func TestRun_StripsApostrophes(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/data")
	mfs.AddFile("people.csv", "id,name\n1,O'Brien\n")
	f := newFixture(t, mfs)

	_, err := f.orch.Run(context.Background(), "/data/people.csv")
	require.NoError(t, err)

	loaded := f.loader.loaded["people"]
	require.NotNil(t, loaded)
	assert.Equal(t, [][]string{{"1", "OBrien"}}, loaded.Rows)
}

func TestRun_DirectoryNotFound(t *testing.T) {
	f := newFixture(t, filesystem.NewMemoryFileSystem("/data"))

	summary, err := f.orch.Run(context.Background(), "/missing")
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)

	r := summary.Results[0]
	assert.Equal(t, pgcsv.StateFailed, r.State)
	assert.Equal(t, pgcsv.KindMissingInput, r.Kind)
	assert.Contains(t, r.Err.Error(), "not found")
	assert.Zero(t, f.sessions.opened)
	assert.Empty(t, f.provisioner.targets)
}

func TestRun_LoadFailureDoesNotStopBatch(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/data")
	mfs.AddFile("a.csv", "id,name\n1\n")
	mfs.AddFile("c.csv", "id\n7\n")
	f := newFixture(t, mfs)
	f.loader.errFor["a"] = errors.Join(pgcsv.ErrLoadData, errors.New("missing data for column \"name\""))

	summary, err := f.orch.Run(context.Background(), "/data")
	require.NoError(t, err)

	a := resultFor(t, summary, "a.csv")
	assert.Equal(t, pgcsv.StateFailed, a.State)
	assert.Equal(t, pgcsv.StateDataCleaned, a.LastState)
	assert.Equal(t, pgcsv.KindLoadData, a.Kind)
	assert.Zero(t, a.Rows)

	c := resultFor(t, summary, "c.csv")
	assert.Equal(t, pgcsv.StateLoaded, c.State)

	require.Len(t, f.sessions.sessions, 2)
	for _, s := range f.sessions.sessions {
		assert.Equal(t, 1, s.closed, "every session must be closed exactly once")
	}
}

func TestRun_ConnectFailure(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/data")
	mfs.AddFile("a.csv", "id\n1\n")
	mfs.AddFile("b.csv", "id\n2\n")
	f := newFixture(t, mfs)
	f.sessions.failOn[1] = errors.Join(pgcsv.ErrConnectionFailed, errors.New("connection refused"))

	summary, err := f.orch.Run(context.Background(), "/data")
	require.NoError(t, err)

	a := resultFor(t, summary, "a.csv")
	assert.Equal(t, pgcsv.StateFailed, a.State)
	assert.Equal(t, pgcsv.StatePending, a.LastState)
	assert.Equal(t, pgcsv.KindConnectivity, a.Kind)

	b := resultFor(t, summary, "b.csv")
	assert.Equal(t, pgcsv.StateLoaded, b.State)
}

func TestRun_ProvisionFailureClosesSession(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/data")
	mfs.AddFile("a.csv", "id\n1\n")
	f := newFixture(t, mfs)
	f.provisioner.errFor["a"] = pgcsv.ErrColumnMismatch

	summary, err := f.orch.Run(context.Background(), "/data")
	require.NoError(t, err)

	a := resultFor(t, summary, "a.csv")
	assert.Equal(t, pgcsv.StateFailed, a.State)
	assert.Equal(t, pgcsv.StateConnected, a.LastState)
	require.Len(t, f.sessions.sessions, 1)
	assert.Equal(t, 1, f.sessions.sessions[0].closed)
	assert.Nil(t, f.loader.loaded)
}

func TestRun_PanicIsContainedToFile(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/data")
	mfs.AddFile("a.csv", "id\n1\n")
	mfs.AddFile("b.csv", "id\n2\n")
	f := newFixture(t, mfs)
	f.loader.panic = "a"

	summary, err := f.orch.Run(context.Background(), "/data")
	require.NoError(t, err)

	a := resultFor(t, summary, "a.csv")
	assert.Equal(t, pgcsv.StateFailed, a.State)
	assert.Equal(t, pgcsv.KindUnclassified, a.Kind)
	assert.Contains(t, a.Err.Error(), "boom")
	assert.Equal(t, 1, f.sessions.sessions[0].closed)

	assert.Equal(t, pgcsv.StateLoaded, resultFor(t, summary, "b.csv").State)
}

func TestRun_CancelledContextReportsRemainingFiles(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/data")
	mfs.AddFile("a.csv", "id\n1\n")
	f := newFixture(t, mfs)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := f.orch.Run(ctx, "/data")
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, pgcsv.StateFailed, summary.Results[0].State)
	assert.ErrorIs(t, summary.Results[0].Err, context.Canceled)
	assert.Zero(t, f.sessions.opened)
}

func TestRun_FileIDIsStablePerPath(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/data")
	mfs.AddFile("a.csv", "id\n1\n")
	f := newFixture(t, mfs)

	first, err := f.orch.Run(context.Background(), "/data")
	require.NoError(t, err)
	second, err := f.orch.Run(context.Background(), "/data")
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Results[0].ID, second.Results[0].ID)
}

func TestRun_VerboseTransitions(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/data")
	mfs.AddFile("a.csv", "id\n1\n")
	f := newFixture(t, mfs)

	_, err := f.orch.Run(context.Background(), "/data")
	require.NoError(t, err)

	assert.Contains(t, f.logger.verbose, "[a.csv] PENDING -> CONNECTED")
	assert.Contains(t, f.logger.verbose, "[a.csv] CONNECTED -> SCHEMA_READY")
	assert.Contains(t, f.logger.verbose, "[a.csv] SCHEMA_READY -> DATA_CLEANED")
	assert.Contains(t, f.logger.verbose, "[a.csv] DATA_CLEANED -> LOADED")
	assert.Contains(t, f.logger.verbose, "[a.csv] loaded into sources.a (1 rows)")
	assert.Empty(t, f.logger.info, "per-file outcomes are left to the run summary")
	assert.Empty(t, f.logger.errors)
}

func TestRun_SecondFileForSameTableFails(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/data")
	mfs.AddFile("Sales.csv", "id\n1\n")
	mfs.AddFile("sales.csv", "id\n2\n")
	f := newFixture(t, mfs)

	summary, err := f.orch.Run(context.Background(), "/data")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Loaded)
	assert.Equal(t, 1, summary.Failed)

	first := resultFor(t, summary, "Sales.csv")
	assert.Equal(t, pgcsv.StateLoaded, first.State)

	second := resultFor(t, summary, "sales.csv")
	assert.Equal(t, pgcsv.StateFailed, second.State)
	assert.ErrorIs(t, second.Err, pgcsv.ErrTargetInUse)
	assert.Equal(t, pgcsv.KindLoadData, second.Kind)
	assert.Equal(t, "sources.sales", second.Target)
	assert.Contains(t, second.Err.Error(), "Sales.csv")

	require.Len(t, f.provisioner.targets, 1, "the second file must not reach the database")
	assert.Equal(t, 1, f.sessions.opened)
}

func TestRun_EmptyFileDoesNotClaimTable(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/data")
	mfs.AddFile("Sales.csv", "id\n")
	mfs.AddFile("sales.csv", "id\n2\n")
	f := newFixture(t, mfs)

	summary, err := f.orch.Run(context.Background(), "/data")
	require.NoError(t, err)

	assert.Equal(t, pgcsv.KindEmptyInput, resultFor(t, summary, "Sales.csv").Kind)
	assert.Equal(t, pgcsv.StateLoaded, resultFor(t, summary, "sales.csv").State)
}

func TestRun_NonLatinStemsLoadIntoSeparateTables(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/data")
	mfs.AddFile("данные.csv", "id\n1\n")
	mfs.AddFile("отчёт.csv", "id\n2\n")
	mfs.AddFile("売上.csv", "id\n3\n")
	f := newFixture(t, mfs)

	summary, err := f.orch.Run(context.Background(), "/data")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Loaded)
	assert.Equal(t, 0, summary.Failed)

	var names []string
	for _, target := range f.provisioner.targets {
		names = append(names, target.Name)
	}
	assert.ElementsMatch(t, []string{"данные", "отчёт", "売上"}, names)
}
