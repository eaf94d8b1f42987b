package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExpectedColumns is the fixed set of columns a statement export must carry.
// Extra columns are ignored; missing any of these fails the whole import.
var ExpectedColumns = []string{
	ColEntradaSaida,
	ColData,
	ColMovimentacao,
	ColProduto,
	ColInstituicao,
	ColQuantidade,
	ColPrecoUnitario,
	ColValorOperacao,
}

// MissingColumnsError is the structural failure raised when the spreadsheet
// lacks required columns. It aborts the import before any row is processed.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return "missing required columns: " + strings.Join(e.Missing, ", ")
}

// ParsedSheet holds the first sheet of a workbook as a header row plus
// string-keyed data rows.
type ParsedSheet struct {
	Headers []string
	Rows    []Row
}

// ValidateExpectedColumns checks (after header normalization) that every
// required column is present. It returns ok=false plus the missing names,
// in their canonical spelling, for the error message.
func ValidateExpectedColumns(headers []string) (bool, []string) {
	present := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		present[NormalizeHeaderName(h)] = struct{}{}
	}

	var missing []string
	for _, col := range ExpectedColumns {
		if _, ok := present[NormalizeHeaderName(col)]; !ok {
			missing = append(missing, col)
		}
	}
	return len(missing) == 0, missing
}

// ParseXLSX opens a workbook from a binary source and converts the first
// sheet into string-keyed records: row one is the header row, every later
// row becomes a Row keyed by header name plus a normalized-header alias
// for each key, so downstream lookups survive variant casing/spacing.
func ParseXLSX(r io.Reader) (*ParsedSheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(raw) == 0 {
		return &ParsedSheet{}, nil
	}

	headers := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]Row, 0, len(raw)-1)
	for _, cells := range raw[1:] {
		row := make(Row, 2*len(headers))
		for c, key := range headers {
			if key == "" {
				continue
			}
			var v string
			if c < len(cells) {
				v = cells[c]
			}
			row[key] = v
			// normalized alias for mapping convenience
			row[NormalizeHeaderName(key)] = v
		}
		rows = append(rows, row)
	}

	return &ParsedSheet{Headers: headers, Rows: rows}, nil
}
