package schema

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vvka-141/pgcsv/pkg/pgcsv"
	"golang.org/x/text/unicode/norm"
)

// TableName derives a table name from a file stem:
//  1. lowercase
//  2. strip combining marks from Latin letters (café -> cafe); other scripts
//     keep theirs, so отчёт and データ are unchanged
//  3. keep letters and digits of any script, collapse every other run
//     (underscores included) into one underscore
//  4. trim underscores, truncate to 63 bytes on a rune boundary, fall back
//     to csv_file
func TableName(stem string) string {
	s := foldLatin(strings.ToLower(strings.TrimSpace(stem)))

	var b strings.Builder
	prevUnderscore := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.Is(unicode.M, r) && !prevUnderscore && b.Len() > 0:
			b.WriteRune(r)
			prevUnderscore = false
		default:
			if !prevUnderscore {
				b.WriteByte('_')
				prevUnderscore = true
			}
		}
	}

	name := truncate(strings.Trim(b.String(), "_"), pgcsv.MaxIdentifierLength)
	if name == "" {
		return pgcsv.DefaultTableName
	}
	return name
}

// foldLatin decomposes s and drops the combining marks attached to Latin
// base letters, then recomposes.
func foldLatin(s string) string {
	decomposed := norm.NFD.String(s)

	var b strings.Builder
	b.Grow(len(decomposed))
	latinBase := false
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			if !latinBase {
				b.WriteRune(r)
			}
			continue
		}
		latinBase = unicode.Is(unicode.Latin, r)
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	for i, r := range s {
		if i+utf8.RuneLen(r) > n {
			return strings.TrimRight(s[:i], "_")
		}
	}
	return s
}
