package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pgcsv/internal/checksum"
	"github.com/vvka-141/pgcsv/internal/clean"
	"github.com/vvka-141/pgcsv/internal/config"
	"github.com/vvka-141/pgcsv/internal/csvsource"
	"github.com/vvka-141/pgcsv/internal/db"
	"github.com/vvka-141/pgcsv/internal/files/discover"
	"github.com/vvka-141/pgcsv/internal/files/filesystem"
	"github.com/vvka-141/pgcsv/internal/files/loader"
	"github.com/vvka-141/pgcsv/internal/logging"
	"github.com/vvka-141/pgcsv/internal/schema"
	"github.com/vvka-141/pgcsv/internal/services"
	"github.com/vvka-141/pgcsv/internal/tui"
	"github.com/vvka-141/pgcsv/internal/ui"
	"github.com/vvka-141/pgcsv/pkg/pgcsv"
)

type loadFlagValues struct {
	conn          connectionFlags
	configPath    string
	schema        string
	schemaOwner   string
	suffix        string
	stripChar     string
	strictColumns bool
	failOnError   bool
	timeout       time.Duration
}

var loadFlags loadFlagValues

// newPrompter picks the prompt used when no path argument is given.
var newPrompter = func(suffix string) pgcsv.PathPrompter {
	if tui.IsInteractive() {
		return tui.NewPathPrompter(suffix)
	}
	return ui.NewLinePrompter()
}

func registerLoadFlags(cmd *cobra.Command, f *loadFlagValues) {
	flags := cmd.Flags()

	flags.StringVar(&f.configPath, "config", "",
		"Path to the config file (default: ./"+config.FileName+" when present)")
	flags.StringVar(&f.schema, "schema", "",
		"Schema the tables are created in (default: "+pgcsv.DefaultSchema+")")
	flags.StringVar(&f.schemaOwner, "schema-owner", "",
		"Role used as AUTHORIZATION when the schema is created")
	flags.StringVar(&f.suffix, "suffix", "",
		"Only load directory entries ending with this suffix, case-sensitive (default: "+pgcsv.DefaultSuffix+")")
	flags.StringVar(&f.stripChar, "strip-char", "",
		"Character removed from every data field (default: "+pgcsv.DefaultStripChar+")")
	flags.BoolVar(&f.strictColumns, "strict-columns", false,
		"Fail a file before loading when an existing table's columns differ from its header")
	flags.BoolVar(&f.failOnError, "fail-on-error", false,
		"Exit with code 13 when any file failed to load")

	flags.DurationVar(&f.timeout, "timeout", 0,
		"Deadline for the whole run (default none, or timeout in pgcsv.yaml)\n"+
			"Examples: 30s, 5m, 1h30m")

	_ = cmd.MarkFlagFilename("config", "yaml", "yml")
}

// applyLoadFlags overlays the load flags that were given onto opts.
func applyLoadFlags(f loadFlagValues, opts *pgcsv.LoadOptions) {
	if f.schema != "" {
		opts.Schema = f.schema
	}
	if f.schemaOwner != "" {
		opts.SchemaOwner = f.schemaOwner
	}
	if f.suffix != "" {
		opts.Suffix = f.suffix
	}
	if f.stripChar != "" {
		opts.StripChar = f.stripChar
	}
	if f.strictColumns {
		opts.StrictColumns = true
	}
}

// buildLoadConfig builds the run Config from flags, environment and the
// config file, and validates it.
func buildLoadConfig(f loadFlagValues, verbose bool) (pgcsv.Config, error) {
	fileCfg, err := loadFileConfig(f.configPath)
	if err != nil {
		return pgcsv.Config{}, err
	}

	connConfig, err := resolveConnection(f.conn, fileCfg)
	if err != nil {
		return pgcsv.Config{}, err
	}

	opts := pgcsv.DefaultLoadOptions()
	fileCfg.ApplyLoadOptions(&opts)
	applyLoadFlags(f, &opts)

	timeout, err := resolveEffectiveTimeout(fileCfg, f.timeout)
	if err != nil {
		return pgcsv.Config{}, err
	}

	cfg := pgcsv.Config{
		Connection:  *connConfig,
		Load:        opts,
		Timeout:     timeout,
		Verbose:     verbose,
		FailOnError: f.failOnError,
	}
	if err := cfg.Validate(); err != nil {
		return pgcsv.Config{}, err
	}
	return cfg, nil
}

// newPipeline wires the production stages for opts.
func newPipeline(opts pgcsv.LoadOptions, logger pgcsv.Logger) services.Pipeline {
	return services.Pipeline{
		Discoverer:  discover.NewDiscoverer(opts.Suffix),
		Reader:      csvsource.NewReader(filesystem.NewOSFileSystem(), checksum.New()),
		Provisioner: schema.NewProvisioner(opts, logger),
		Cleaner:     clean.New(opts.StripChar),
		Loader:      loader.NewLoader(logger),
	}
}

// resolveSourcePath returns the path argument, or asks for one.
func resolveSourcePath(ctx context.Context, args []string, prompter pgcsv.PathPrompter) (string, error) {
	if len(args) > 0 {
		path := strings.TrimSpace(args[0])
		if path == "" {
			return "", fmt.Errorf("empty path argument: %w", pgcsv.ErrUsage)
		}
		return path, nil
	}
	return prompter.PromptPath(ctx)
}

// withInterrupt cancels the returned context on the first SIGINT or SIGTERM.
func withInterrupt(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, stopping after the current file...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

func runLoad(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	cfg, err := buildLoadConfig(loadFlags, verbose)
	if err != nil {
		return err
	}

	logger := logging.NewConsoleLogger(verbose)
	logConnectionVerbose(logger, &cfg.Connection)

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := withInterrupt(parent)
	defer cancel()

	path, err := resolveSourcePath(ctx, args, newPrompter(cfg.Load.Suffix))
	if err != nil {
		return err
	}

	// the prompt is not part of the run's time budget
	if cfg.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, cfg.Timeout)
		defer cancelTimeout()
	}

	orchestrator := services.NewOrchestrator(
		&cfg.Connection,
		db.NewConnector,
		newPipeline(cfg.Load, logger),
		cfg.Load,
		logger,
	)

	summary, runErr := orchestrator.Run(ctx, path)
	tui.RenderSummary(cmd.OutOrStdout(), summary)

	if runErr != nil {
		return fmt.Errorf("run stopped: %w", runErr)
	}
	if cfg.FailOnError && summary.Failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed: %w", summary.Failed, len(summary.Results), pgcsv.ErrLoadFailed)
	}
	return nil
}
