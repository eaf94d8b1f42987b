package importer

import (
	"math"
	"testing"
	"time"
)

func TestParseBrazilianNumber(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want float64
	}{
		{name: "currency with thousands", in: "R$ 3.856,52", want: 3856.52},
		{name: "currency small", in: "R$ 12,603", want: 12.603},
		{name: "plain integer", in: "306", want: 306},
		{name: "decimal comma", in: "10,50", want: 10.5},
		{name: "leading minus", in: "-123,45", want: -123.45},
		{name: "paren negative", in: "(123,45)", want: -123.45},
		{name: "trailing minus", in: "123,45-", want: -123.45},
		{name: "trailing minus with space", in: "123,45 -", want: -123.45},
		{name: "empty", in: "", want: 0},
		{name: "blank", in: "   ", want: 0},
		{name: "garbage", in: "n/a", want: 0},
		{name: "lowercase currency", in: "r$ 1,00", want: 1},
		{name: "nbsp inside", in: "R$ 1.000,00", want: 1000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseBrazilianNumber(tc.in)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("ParseBrazilianNumber(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseExcelDate(t *testing.T) {
	cases := []struct {
		name   string
		in     string
		want   time.Time
		wantOK bool
	}{
		{name: "slash format", in: "15/03/2024", want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "dash format", in: "5-3-2024", want: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "iso date", in: "2024-03-15", want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "serial one day", in: "1", want: time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "empty", in: "", wantOK: false},
		{name: "disclaimer text", in: "Valores consolidados", wantOK: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseExcelDate(tc.in)
			if ok != tc.wantOK {
				t.Fatalf("ParseExcelDate(%q) ok = %v, want %v", tc.in, ok, tc.wantOK)
			}
			if ok && !got.Equal(tc.want) {
				t.Fatalf("ParseExcelDate(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseExcelDate_SerialMidYear(t *testing.T) {
	// 45000 days after 1899-12-30
	want := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 45000)
	got, ok := ParseExcelDate("45000")
	if !ok || !got.Equal(want) {
		t.Fatalf("serial 45000 = %v (ok=%v), want %v", got, ok, want)
	}
}

func TestExtractTicker(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"ABEV3 - AMBEV S/A", "ABEV3"},
		{"ALUP3 - ALUPAR INVESTIMENTOS S/A", "ALUP3"},
		{"  hglg11 - CSHG LOGISTICA FII  ", "HGLG11"},
		{"PETR4", "PETR4"},
		{"PETR4 F", "PETR4"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		if got := ExtractTicker(tc.in); got != tc.want {
			t.Fatalf("ExtractTicker(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeHeaderName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Preço unitário", "preço unitário"},
		{"  Preço   unitário  ", "preço unitário"},
		{"Preço unitário", "preço unitário"},
		{"DATA", "data"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeHeaderName(tc.in); got != tc.want {
			t.Fatalf("NormalizeHeaderName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatDateKey(t *testing.T) {
	d := time.Date(2024, 3, 15, 23, 50, 0, 0, time.UTC)
	if got := FormatDateKey(d); got != "2024-03-15" {
		t.Fatalf("FormatDateKey = %q", got)
	}
}

func TestFoldAccents(t *testing.T) {
	if got := foldAccents("juros sobre capital próprio"); got != "juros sobre capital proprio" {
		t.Fatalf("foldAccents = %q", got)
	}
	if got := foldAccents("saída"); got != "saida" {
		t.Fatalf("foldAccents = %q", got)
	}
}
