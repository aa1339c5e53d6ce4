// Package schema builds and runs the DDL that prepares a CSV file's target:
// an idempotent CREATE SCHEMA followed by CREATE TABLE with one TEXT column
// per header field. It also derives table names from file stems.
package schema
