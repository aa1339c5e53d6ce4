// Package files groups the file-side packages:
//   - filesystem: OS and in-memory filesystem providers
//   - discover: resolves a path to the CSV files to load
//   - loader: streams parsed files into PostgreSQL with COPY
package files
