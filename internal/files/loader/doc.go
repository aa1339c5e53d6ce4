// Package loader bulk-loads parsed CSV tables into PostgreSQL.
//
// Rows are re-serialized as CSV and streamed through COPY FROM STDIN inside
// a single transaction, so a file is either fully loaded or not at all.
// The writer side and the COPY side run on an io.Pipe and are coordinated
// with an errgroup; nothing is buffered beyond the pipe.
package loader
