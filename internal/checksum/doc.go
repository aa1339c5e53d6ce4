// Package checksum fingerprints source files with SHA-256 so a load report
// can tell which version of a file was loaded.
package checksum
