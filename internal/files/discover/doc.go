// Package discover resolves a user supplied path into the CSV files to
// load. Directories are listed one level deep; files are taken as given.
package discover
