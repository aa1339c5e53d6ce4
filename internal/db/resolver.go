package db

import (
	"fmt"
	"os"
	"strconv"

	"github.com/vvka-141/pgcsv/internal/config"
	"github.com/vvka-141/pgcsv/pkg/pgcsv"
)

// ConnFlags holds connection parameters given on the command line.
// These follow PostgreSQL standard flag conventions (-h, -p, -U, -d).
//
// Password is not a flag. Use $PGPASSWORD, ~/.pgpass, pgcsv.yaml or a
// connection string.
type ConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string

	AuthMethod     string
	AzureTenantID  string
	AzureClientID  string
	AWSRegion      string
	GoogleInstance string
}

// IsEmpty reports whether no server-addressing flag was given. Database is
// excluded because it may override the database of a connection string.
func (f *ConnFlags) IsEmpty() bool {
	return f.Host == "" && f.Port == 0 && f.Username == "" && f.SSLMode == ""
}

// EnvVars represents PostgreSQL standard environment variables plus the
// cloud identity variables the connectors understand.
// See: https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	PGHOST     string
	PGPORT     string
	PGUSER     string
	PGPASSWORD string
	PGDATABASE string
	PGSSLMODE  string

	PGCSV_CONNECTION_STRING string
	DATABASE_URL            string // Heroku/Rails convention

	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string
	AWS_REGION          string
}

// LoadFromEnvironment reads EnvVars from the process environment.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:                  os.Getenv("PGHOST"),
		PGPORT:                  os.Getenv("PGPORT"),
		PGUSER:                  os.Getenv("PGUSER"),
		PGPASSWORD:              os.Getenv("PGPASSWORD"),
		PGDATABASE:              os.Getenv("PGDATABASE"),
		PGSSLMODE:               os.Getenv("PGSSLMODE"),
		PGCSV_CONNECTION_STRING: os.Getenv("PGCSV_CONNECTION_STRING"),
		DATABASE_URL:            os.Getenv("DATABASE_URL"),
		AZURE_TENANT_ID:         os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:         os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET:     os.Getenv("AZURE_CLIENT_SECRET"),
		AWS_REGION:              os.Getenv("AWS_REGION"),
	}
}

// connectionString returns the first connection string from the environment.
func (e *EnvVars) connectionString() string {
	if e.PGCSV_CONNECTION_STRING != "" {
		return e.PGCSV_CONNECTION_STRING
	}
	return e.DATABASE_URL
}

// ResolveConnectionParams resolves connection parameters:
//
//  1. --connection flag, parsed as is
//  2. $PGCSV_CONNECTION_STRING or $DATABASE_URL, when no addressing flag is set
//  3. per parameter: flag > environment > pgcsv.yaml > default
//
// A -d flag overrides the database of a connection string. Cloud identity
// settings are applied last in every path.
func ResolveConnectionParams(
	connStringFlag string,
	flags *ConnFlags,
	env *EnvVars,
	file *config.ConnectionConfig,
) (*pgcsv.ConnectionConfig, error) {
	if flags == nil {
		flags = &ConnFlags{}
	}
	if env == nil {
		env = &EnvVars{}
	}
	if file == nil {
		file = &config.ConnectionConfig{}
	}

	if connStringFlag != "" && !flags.IsEmpty() {
		return nil, fmt.Errorf(
			"cannot specify both --connection and granular flags (-h, -p, -U, --sslmode)\n"+
				"Choose one approach:\n"+
				"  1. Connection string: --connection \"postgresql://user@localhost:5432/mydb\"\n"+
				"  2. Granular flags: -h localhost -p 5432 -U myuser -d mydb\n"+
				"  3. Environment variables: export PGHOST=localhost PGPORT=5432 PGUSER=myuser: %w",
			pgcsv.ErrInvalidConfig,
		)
	}

	var cfg *pgcsv.ConnectionConfig
	var err error
	switch {
	case connStringFlag != "":
		cfg, err = resolveFromConnectionString(connStringFlag, env)
	case flags.IsEmpty() && env.connectionString() != "":
		cfg, err = resolveFromConnectionString(env.connectionString(), env)
	default:
		cfg, err = resolveFromGranularParams(flags, env, file)
	}
	if err != nil {
		return nil, err
	}

	if flags.Database != "" {
		cfg.Database = flags.Database
	}
	if cfg.AppName == "" {
		cfg.AppName = pgcsv.DefaultAppName
	}

	if err := applyAuth(cfg, flags, env, file); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveFromConnectionString(connStr string, env *EnvVars) (*pgcsv.ConnectionConfig, error) {
	cfg, err := ParseConnectionString(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w: %w", pgcsv.ErrInvalidConfig, err)
	}

	// libpq treats the environment as a fallback for unspecified parameters
	if cfg.SSLMode == "" {
		cfg.SSLMode = env.PGSSLMODE
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "prefer"
	}
	if cfg.Password == "" {
		cfg.Password = env.PGPASSWORD
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func resolveFromGranularParams(flags *ConnFlags, env *EnvVars, file *config.ConnectionConfig) (*pgcsv.ConnectionConfig, error) {
	cfg := &pgcsv.ConnectionConfig{
		AuthMethod:       pgcsv.AuthMethodStandard,
		AdditionalParams: make(map[string]string),
	}

	cfg.Host = firstNonEmpty(flags.Host, env.PGHOST, file.Host, "localhost")

	switch {
	case flags.Port != 0:
		cfg.Port = flags.Port
	case env.PGPORT != "":
		port, err := strconv.Atoi(env.PGPORT)
		if err != nil {
			return nil, fmt.Errorf("invalid $PGPORT value '%s': must be an integer: %w", env.PGPORT, pgcsv.ErrInvalidConfig)
		}
		cfg.Port = port
	case file.Port != 0:
		cfg.Port = file.Port
	default:
		cfg.Port = 5432
	}

	cfg.Username = firstNonEmpty(flags.Username, env.PGUSER, file.User, os.Getenv("USER"), os.Getenv("USERNAME"))
	cfg.Password = firstNonEmpty(env.PGPASSWORD, file.Password)
	cfg.Database = firstNonEmpty(flags.Database, env.PGDATABASE, file.Database)
	cfg.SSLMode = firstNonEmpty(flags.SSLMode, env.PGSSLMODE, file.SSLMode, "prefer")

	return cfg, nil
}

// applyAuth picks the auth method (flag > pgcsv.yaml > Azure environment >
// standard) and attaches the matching identity settings.
func applyAuth(cfg *pgcsv.ConnectionConfig, flags *ConnFlags, env *EnvVars, file *config.ConnectionConfig) error {
	method, err := pgcsv.ParseAuthMethod(firstNonEmpty(flags.AuthMethod, file.AuthMethod))
	if err != nil {
		return err
	}

	tenantID := firstNonEmpty(flags.AzureTenantID, env.AZURE_TENANT_ID, file.AzureTenantID)
	clientID := firstNonEmpty(flags.AzureClientID, env.AZURE_CLIENT_ID, file.AzureClientID)
	if method == pgcsv.AuthMethodStandard && flags.AuthMethod == "" && file.AuthMethod == "" && (tenantID != "" || clientID != "") {
		method = pgcsv.AuthMethodAzureEntraID
	}

	cfg.AuthMethod = method
	switch method {
	case pgcsv.AuthMethodAzureEntraID:
		cfg.AzureTenantID = tenantID
		cfg.AzureClientID = clientID
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
	case pgcsv.AuthMethodAWSIAM:
		cfg.AWSRegion = firstNonEmpty(flags.AWSRegion, env.AWS_REGION, file.AWSRegion)
	case pgcsv.AuthMethodGoogleIAM:
		cfg.GoogleInstance = firstNonEmpty(flags.GoogleInstance, file.GoogleInstance)
	}
	return nil
}
