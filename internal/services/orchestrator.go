package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vvka-141/pgcsv/internal/checksum"
	"github.com/vvka-141/pgcsv/internal/schema"
	"github.com/vvka-141/pgcsv/pkg/pgcsv"
)

// fileNamespace seeds the per-file IDs so the same path always maps to the
// same ID.
var fileNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("pgcsv:file"))

// Pipeline groups the per-file stages.
type Pipeline struct {
	Discoverer  pgcsv.FileDiscoverer
	Reader      pgcsv.SourceReader
	Provisioner pgcsv.Provisioner
	Cleaner     pgcsv.RowCleaner
	Loader      pgcsv.BulkLoader
}

// Orchestrator runs the pipeline for every file behind a path.
// Not safe for concurrent Run calls on the same instance.
type Orchestrator struct {
	connConfig       *pgcsv.ConnectionConfig
	connectorFactory ConnectorFactory
	pipeline         Pipeline
	schemaName       string
	suffix           string
	logger           pgcsv.Logger
	openSession      sessionOpenFunc
}

// NewOrchestrator creates an Orchestrator with all dependencies injected.
// Panics if any dependency is nil.
func NewOrchestrator(
	connConfig *pgcsv.ConnectionConfig,
	connectorFactory ConnectorFactory,
	pipeline Pipeline,
	opts pgcsv.LoadOptions,
	logger pgcsv.Logger,
) *Orchestrator {
	switch {
	case connConfig == nil:
		panic("connConfig cannot be nil")
	case connectorFactory == nil:
		panic("connectorFactory cannot be nil")
	case pipeline.Discoverer == nil:
		panic("discoverer cannot be nil")
	case pipeline.Reader == nil:
		panic("reader cannot be nil")
	case pipeline.Provisioner == nil:
		panic("provisioner cannot be nil")
	case pipeline.Cleaner == nil:
		panic("cleaner cannot be nil")
	case pipeline.Loader == nil:
		panic("loader cannot be nil")
	case logger == nil:
		panic("logger cannot be nil")
	}

	schemaName := opts.Schema
	if schemaName == "" {
		schemaName = pgcsv.DefaultSchema
	}

	o := &Orchestrator{
		connConfig:       connConfig,
		connectorFactory: connectorFactory,
		pipeline:         pipeline,
		schemaName:       schemaName,
		suffix:           opts.Suffix,
		logger:           logger,
	}
	o.openSession = o.defaultOpenSession
	return o
}

// Run loads every file behind path and returns one result per file, in
// discovery order. Per-file failures are recorded, never returned. A file
// whose table name was already used by an earlier file of the same run fails
// with pgcsv.ErrTargetInUse. The only error returned is the context's, when
// the run was cancelled; results for files finished before that are still in
// the summary.
func (o *Orchestrator) Run(ctx context.Context, path string) (pgcsv.RunSummary, error) {
	summary := pgcsv.RunSummary{RunID: uuid.NewString()}
	o.logger.Verbose("Run %s: resolving %s", summary.RunID, path)

	// target -> path of the first file that reached the database with it
	claimed := make(map[string]string)

	for file, err := range o.pipeline.Discoverer.Resolve(path) {
		var result pgcsv.FileResult
		target := o.schemaName + "." + file.Table
		switch {
		case err != nil:
			result = failedBeforeStart(pgcsv.SourceFile{Path: path}, err)
		case ctx.Err() != nil:
			// cancelled: remaining files are reported, not attempted
			result = failedBeforeStart(file, ctx.Err())
		case claimed[target] != "":
			result = failedBeforeStart(file, fmt.Errorf("%s maps to %s, already used by %s: %w",
				file.Name, target, claimed[target], pgcsv.ErrTargetInUse))
			result.Target = target
		default:
			result = o.processFile(ctx, file)
			if result.LastState != pgcsv.StatePending {
				claimed[target] = file.Path
			}
		}
		o.report(result)
		summary.Add(result)
	}

	if len(summary.Results) == 0 {
		o.logger.Info("No %s files found in %s", o.suffix, path)
	}
	return summary, ctx.Err()
}

// processFile drives one file from PENDING to LOADED or FAILED. The file's
// session is closed on every path out.
func (o *Orchestrator) processFile(ctx context.Context, file pgcsv.SourceFile) (result pgcsv.FileResult) {
	start := time.Now()
	result = pgcsv.FileResult{
		Source: file,
		Target: o.schemaName + "." + file.Table,
		ID:     uuid.NewSHA1(fileNamespace, []byte(file.Path)).String(),
		State:  pgcsv.StatePending,
	}

	defer func() {
		if r := recover(); r != nil {
			result = o.fail(result, fmt.Errorf("unexpected panic: %v", r))
		}
		result.Duration = time.Since(start)
	}()

	o.logger.Verbose("[%s] %s", file.Name, result.State)

	table, err := o.pipeline.Reader.ReadTable(file)
	if err != nil {
		return o.fail(result, err)
	}
	result.Checksum = table.Checksum
	o.logger.Verbose("[%s] %d columns, %d rows, sha256 %s", file.Name, len(table.Header), len(table.Rows), checksum.Short(table.Checksum))

	session, err := o.openSession(ctx)
	if err != nil {
		return o.fail(result, err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			o.logger.Verbose("[%s] close: %v", file.Name, err)
		}
	}()
	result = o.advance(result, pgcsv.StateConnected)

	target := schema.NewTargetTable(o.schemaName, file.Table, table.Header)
	if err := o.pipeline.Provisioner.Provision(ctx, session.Conn(), target); err != nil {
		return o.fail(result, err)
	}
	result = o.advance(result, pgcsv.StateSchemaReady)

	cleaned := o.pipeline.Cleaner.CleanTable(table)
	result = o.advance(result, pgcsv.StateDataCleaned)

	rows, err := o.pipeline.Loader.Load(ctx, session.Conn(), target, cleaned)
	if err != nil {
		return o.fail(result, err)
	}
	result.Rows = rows
	return o.advance(result, pgcsv.StateLoaded)
}

func failedBeforeStart(file pgcsv.SourceFile, err error) pgcsv.FileResult {
	return pgcsv.FileResult{
		Source:    file,
		State:     pgcsv.StateFailed,
		LastState: pgcsv.StatePending,
		Err:       err,
		Kind:      pgcsv.Classify(err),
	}
}

func (o *Orchestrator) advance(result pgcsv.FileResult, next pgcsv.FileState) pgcsv.FileResult {
	o.logger.Verbose("[%s] %s -> %s", result.Source.Name, result.State, next)
	result.LastState = result.State
	result.State = next
	return result
}

func (o *Orchestrator) fail(result pgcsv.FileResult, err error) pgcsv.FileResult {
	result = o.advance(result, pgcsv.StateFailed)
	result.Err = err
	result.Kind = pgcsv.Classify(err)
	result.Rows = 0
	return result
}

// report logs the outcome in verbose mode; the caller renders the summary.
func (o *Orchestrator) report(result pgcsv.FileResult) {
	name := result.Source.Name
	if name == "" {
		name = result.Source.Path
	}

	switch {
	case result.State == pgcsv.StateLoaded:
		o.logger.Verbose("[%s] loaded into %s (%d rows)", name, result.Target, result.Rows)
	case errors.Is(result.Err, context.Canceled):
		o.logger.Verbose("[%s] cancelled", name)
	default:
		o.logger.Verbose("[%s] %s error: %v", name, result.Kind, result.Err)
	}
}
