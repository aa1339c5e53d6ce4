// Package clean removes a stray character from CSV data fields.
package clean

import (
	"strings"

	"github.com/vvka-141/pgcsv/pkg/pgcsv"
)

// Cleaner strips every occurrence of one literal character from data fields.
// The zero value strips nothing. Cleaner is immutable and safe for
// concurrent use.
type Cleaner struct {
	char string
}

// New returns a Cleaner for char. Validation of char belongs to
// pgcsv.LoadOptions.
func New(char string) Cleaner {
	return Cleaner{char: char}
}

// CleanField removes every occurrence of the stray character.
func (c Cleaner) CleanField(field string) string {
	if c.char == "" {
		return field
	}
	return strings.ReplaceAll(field, c.char, "")
}

// CleanRow returns a cleaned copy of row.
func (c Cleaner) CleanRow(row []string) []string {
	out := make([]string, len(row))
	for i, f := range row {
		out[i] = c.CleanField(f)
	}
	return out
}

// CleanTable returns a copy of t with every data field cleaned. The header
// is copied unchanged.
func (c Cleaner) CleanTable(t *pgcsv.Table) *pgcsv.Table {
	if t == nil {
		return nil
	}
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = c.CleanRow(row)
	}
	return &pgcsv.Table{
		Header:   append([]string(nil), t.Header...),
		Rows:     rows,
		Checksum: t.Checksum,
	}
}

var _ pgcsv.RowCleaner = Cleaner{}
