package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pgcsv/internal/config"
	"github.com/vvka-141/pgcsv/pkg/pgcsv"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a pgcsv.yaml with the resolved connection and load settings",
	Long: `Init writes a pgcsv.yaml in the working directory (or at --config) from the
given flags, the environment and the defaults.

The password is never written to pgcsv.yaml. With --save-password the
password from $PGPASSWORD is stored in .pgpass instead.

Examples:
  pgcsv init -h db.internal -d warehouse -U loader
  pgcsv init --schema staging --suffix .txt --force
  PGPASSWORD=secret pgcsv init -d warehouse --save-password`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

type initFlagValues struct {
	load         loadFlagValues
	force        bool
	savePassword bool
}

var initFlags initFlagValues

func init() {
	rootCmd.AddCommand(initCmd)

	registerConnectionFlags(initCmd, &initFlags.load.conn)
	initCmd.Flags().StringVar(&initFlags.load.configPath, "config", "",
		"Where to write the config file (default: ./"+config.FileName+")")
	initCmd.Flags().StringVar(&initFlags.load.schema, "schema", "", "Schema the tables are created in")
	initCmd.Flags().StringVar(&initFlags.load.schemaOwner, "schema-owner", "", "Role used as AUTHORIZATION for the schema")
	initCmd.Flags().StringVar(&initFlags.load.suffix, "suffix", "", "Suffix of the files to load")
	initCmd.Flags().StringVar(&initFlags.load.stripChar, "strip-char", "", "Character removed from every data field")
	initCmd.Flags().BoolVar(&initFlags.load.strictColumns, "strict-columns", false, "Check existing tables' columns before loading")
	initCmd.Flags().DurationVar(&initFlags.load.timeout, "timeout", 0, "Timeout for a whole run")
	initCmd.Flags().BoolVar(&initFlags.force, "force", false, "Overwrite an existing config file")
	initCmd.Flags().BoolVar(&initFlags.savePassword, "save-password", false, "Store $PGPASSWORD in .pgpass")
}

// buildFileConfig turns resolved settings into the pgcsv.yaml layout.
func buildFileConfig(conn *pgcsv.ConnectionConfig, opts pgcsv.LoadOptions, f loadFlagValues) *config.FileConfig {
	cfg := &config.FileConfig{
		Connection: config.ConnectionConfig{
			Host:     conn.Host,
			Database: conn.Database,
			User:     conn.Username,
			Port:     conn.Port,
			SSLMode:  conn.SSLMode,
		},
		Load: config.LoadConfig{
			Schema:      opts.Schema,
			SchemaOwner: opts.SchemaOwner,
			Suffix:      opts.Suffix,
			StripChar:   opts.StripChar,
		},
	}

	if conn.AuthMethod != pgcsv.AuthMethodStandard {
		cfg.Connection.AuthMethod = authMethodName(conn.AuthMethod)
		cfg.Connection.AzureTenantID = conn.AzureTenantID
		cfg.Connection.AzureClientID = conn.AzureClientID
		cfg.Connection.AWSRegion = conn.AWSRegion
		cfg.Connection.GoogleInstance = conn.GoogleInstance
	}
	if opts.StrictColumns {
		strict := true
		cfg.Load.StrictColumns = &strict
	}
	if f.timeout != 0 {
		cfg.Timeout = f.timeout.String()
	}
	return cfg
}

// authMethodName is the inverse of pgcsv.ParseAuthMethod for the file format.
func authMethodName(m pgcsv.AuthMethod) string {
	switch m {
	case pgcsv.AuthMethodAWSIAM:
		return "aws"
	case pgcsv.AuthMethodGoogleIAM:
		return "google"
	case pgcsv.AuthMethodAzureEntraID:
		return "azure"
	default:
		return "standard"
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	path := initFlags.load.configPath
	if path == "" {
		path = config.FileName
	}

	if _, err := os.Stat(path); err == nil && !initFlags.force {
		return fmt.Errorf("%s already exists, use --force to overwrite: %w", path, pgcsv.ErrUsage)
	}

	conn, err := resolveConnection(initFlags.load.conn, nil)
	if err != nil {
		return err
	}
	opts := pgcsv.DefaultLoadOptions()
	applyLoadFlags(initFlags.load, &opts)
	if err := opts.Validate(); err != nil {
		return err
	}

	if err := config.Save(path, buildFileConfig(conn, opts, initFlags.load)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)

	if initFlags.savePassword {
		if conn.Password == "" {
			return fmt.Errorf("--save-password needs $PGPASSWORD or a password in --connection: %w", pgcsv.ErrUsage)
		}
		if err := writePgpassEntry(conn); err != nil {
			return fmt.Errorf("failed to save .pgpass: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved password to %s\n", pgpassPath())
	}
	return nil
}
