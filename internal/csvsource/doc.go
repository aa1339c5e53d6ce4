// Package csvsource reads CSV files into memory as a header plus string rows.
package csvsource
