// Package services sequences the load pipeline.
//
// The Orchestrator resolves the input path, then for every source file reads
// and parses it, opens a dedicated connection, provisions the target table,
// cleans the rows and bulk-loads them. Files are processed one at a time and
// independently: a failure is recorded in the file's result and the run moves
// on to the next file.
package services
