package pgcsv_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgcsv/pkg/pgcsv"
)

func validConfig() pgcsv.Config {
	return pgcsv.Config{
		Connection: pgcsv.ConnectionConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "warehouse",
		},
		Load: pgcsv.DefaultLoadOptions(),
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*pgcsv.Config)
		wantErr bool
	}{
		{"valid", func(c *pgcsv.Config) {}, false},
		{"missing database", func(c *pgcsv.Config) { c.Connection.Database = "" }, true},
		{"missing host", func(c *pgcsv.Config) { c.Connection.Host = "" }, true},
		{"port out of range", func(c *pgcsv.Config) { c.Connection.Port = 70000 }, true},
		{"negative timeout", func(c *pgcsv.Config) { c.Timeout = -1 }, true},
		{"blank schema", func(c *pgcsv.Config) { c.Load.Schema = "  " }, true},
		{"empty suffix", func(c *pgcsv.Config) { c.Load.Suffix = "" }, true},
		{"two strip chars", func(c *pgcsv.Config) { c.Load.StripChar = `'"` }, true},
		{"multibyte strip char", func(c *pgcsv.Config) { c.Load.StripChar = "’" }, false},
		{"aws without region", func(c *pgcsv.Config) { c.Connection.AuthMethod = pgcsv.AuthMethodAWSIAM }, true},
		{"google without instance", func(c *pgcsv.Config) { c.Connection.AuthMethod = pgcsv.AuthMethodGoogleIAM }, true},
		{"google needs no host", func(c *pgcsv.Config) {
			c.Connection.AuthMethod = pgcsv.AuthMethodGoogleIAM
			c.Connection.GoogleInstance = "proj:region:inst"
			c.Connection.Host = ""
		}, false},
		{"unknown auth method", func(c *pgcsv.Config) { c.Connection.AuthMethod = pgcsv.AuthMethod(99) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t,
				errors.Is(err, pgcsv.ErrInvalidConfig) || errors.Is(err, pgcsv.ErrUnsupportedAuthMethod),
				"unexpected error type: %v", err)
		})
	}
}

func TestConfig_ValidateReportsEveryProblem(t *testing.T) {
	cfg := validConfig()
	cfg.Connection.Database = ""
	cfg.Load.Suffix = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is required")
	assert.Contains(t, err.Error(), "suffix is required")
}

func TestParseAuthMethod(t *testing.T) {
	tests := []struct {
		in   string
		want pgcsv.AuthMethod
	}{
		{"", pgcsv.AuthMethodStandard},
		{"password", pgcsv.AuthMethodStandard},
		{"AWS", pgcsv.AuthMethodAWSIAM},
		{"aws-iam", pgcsv.AuthMethodAWSIAM},
		{"gcp", pgcsv.AuthMethodGoogleIAM},
		{" google ", pgcsv.AuthMethodGoogleIAM},
		{"entra", pgcsv.AuthMethodAzureEntraID},
		{"azure-entra-id", pgcsv.AuthMethodAzureEntraID},
	}
	for _, tt := range tests {
		got, err := pgcsv.ParseAuthMethod(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := pgcsv.ParseAuthMethod("kerberos")
	assert.ErrorIs(t, err, pgcsv.ErrUnsupportedAuthMethod)
}

func TestAuthMethod_String(t *testing.T) {
	assert.Equal(t, "Standard", pgcsv.AuthMethodStandard.String())
	assert.Equal(t, "AWS IAM", pgcsv.AuthMethodAWSIAM.String())
	assert.Equal(t, "Unknown(42)", pgcsv.AuthMethod(42).String())
}

func TestFileState(t *testing.T) {
	assert.Equal(t, "SCHEMA_READY", pgcsv.StateSchemaReady.String())
	assert.Equal(t, "DATA_CLEANED", pgcsv.StateDataCleaned.String())
	assert.True(t, pgcsv.StateLoaded.IsTerminal())
	assert.True(t, pgcsv.StateFailed.IsTerminal())
	assert.False(t, pgcsv.StateConnected.IsTerminal())
}

func TestRunSummary_Add(t *testing.T) {
	var s pgcsv.RunSummary
	s.Add(pgcsv.FileResult{State: pgcsv.StateLoaded, Rows: 3})
	s.Add(pgcsv.FileResult{State: pgcsv.StateFailed, Kind: pgcsv.KindEmptyInput})
	s.Add(pgcsv.FileResult{State: pgcsv.StateLoaded, Rows: 2})

	assert.Equal(t, 2, s.Loaded)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, int64(5), s.TotalRows())
	assert.Len(t, s.Results, 3)
}

func TestTargetTable(t *testing.T) {
	target := pgcsv.TargetTable{
		Schema:  "sources",
		Name:    "people",
		Columns: []pgcsv.Column{{Name: "id"}, {Name: "name"}},
	}
	assert.Equal(t, "sources.people", target.String())
	assert.Equal(t, []string{"id", "name"}, target.ColumnNames())
}
