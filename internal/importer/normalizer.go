package importer

import (
	"math"
	"strings"

	"github.com/guttosm/carteirapulse/internal/domain/models"
)

// NormalizeRow turns one raw spreadsheet row into an operation draft.
//
// Numeric cells may carry a sign in the export (some brokers encode a
// purchase as a negative cash movement); the draft stores absolute values
// only, since direction is already encoded by the kind.
//
// The second return value is false when date, ticker, or kind cannot be
// resolved. Such rows are silently skipped, not errored: statement exports
// routinely contain repeated headers, subtotals, and disclaimers.
func NormalizeRow(row Row) (models.OperationDraft, bool) {
	date, hasDate := ParseExcelDate(fieldValue(row, ColData))
	ticker := ExtractTicker(fieldValue(row, ColProduto))
	kind, hasKind := InferOperationKind(row)

	broker := strings.TrimSpace(fieldValue(row, ColInstituicao, "Instituicao"))
	quantity := math.Abs(ParseBrazilianNumber(fieldValue(row, ColQuantidade)))
	unitPrice := math.Abs(ParseBrazilianNumber(fieldValue(row, ColPrecoUnitario, "Preco unitario")))
	totalValue := math.Abs(ParseBrazilianNumber(fieldValue(row, ColValorOperacao, "Valor da Operacao")))

	if !hasDate || ticker == "" || !hasKind {
		return models.OperationDraft{}, false
	}

	return models.OperationDraft{
		Date:       date,
		Ticker:     ticker,
		Kind:       kind,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		TotalValue: totalValue,
		Broker:     broker,
	}, true
}
