package schema

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTableName(t *testing.T) {
	tests := []struct {
		stem string
		want string
	}{
		{"customers", "customers"},
		{"Customers", "customers"},
		{"Sales Report 2024", "sales_report_2024"},
		{"café-menu", "cafe_menu"},
		{"  --weird..name--  ", "weird_name"},
		{"2024_q1", "2024_q1"},
		{"___", "csv_file"},
		{"", "csv_file"},
		{"日本", "日本"},
		{"данные", "данные"},
		{"Отчёт 2024", "отчёт_2024"},
		{"売上", "売上"},
		{"データ", "データ"},
		{"Crème Brûlée", "creme_brulee"},
	}

	for _, tt := range tests {
		t.Run(tt.stem, func(t *testing.T) {
			if got := TableName(tt.stem); got != tt.want {
				t.Errorf("TableName(%q) = %q, want %q", tt.stem, got, tt.want)
			}
		})
	}
}

func TestTableName_Truncates(t *testing.T) {
	got := TableName(strings.Repeat("a", 100))
	if len(got) != 63 {
		t.Errorf("len(TableName) = %d, want 63", len(got))
	}
}

func TestTableName_TruncatesOnRuneBoundary(t *testing.T) {
	// 2-byte runes: 31 fit in 63 bytes, the 32nd would split
	got := TableName(strings.Repeat("д", 40))
	if !utf8.ValidString(got) {
		t.Fatalf("TableName returned invalid UTF-8: %q", got)
	}
	if got != strings.Repeat("д", 31) {
		t.Errorf("TableName = %q (%d bytes), want 31 runes", got, len(got))
	}
}

func TestTableName_DistinctScriptsStayDistinct(t *testing.T) {
	seen := map[string]string{}
	for _, stem := range []string{"данные", "отчёт", "売上", "customers"} {
		name := TableName(stem)
		if prev, ok := seen[name]; ok {
			t.Errorf("%q and %q both map to %q", prev, stem, name)
		}
		seen[name] = stem
	}
}
