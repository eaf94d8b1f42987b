package importer

import (
	"strings"

	"github.com/guttosm/carteirapulse/internal/domain/models"
)

// Row is one spreadsheet data row keyed by header name. The reader also
// populates a normalized-header alias for every key (see NormalizeHeaderName),
// so lookups tolerate variant casing and spacing in the export.
type Row map[string]string

// Canonical column names of the B3 "Movimentação" statement export.
const (
	ColEntradaSaida  = "Entrada/Saída"
	ColData          = "Data"
	ColMovimentacao  = "Movimentação"
	ColProduto       = "Produto"
	ColInstituicao   = "Instituição"
	ColQuantidade    = "Quantidade"
	ColPrecoUnitario = "Preço unitário"
	ColValorOperacao = "Valor da Operação"
)

// fieldValue returns the first non-empty cell found under any of the given
// header names, trying the raw name first and its normalized alias second.
func fieldValue(row Row, names ...string) string {
	for _, name := range names {
		if v, ok := row[name]; ok && v != "" {
			return v
		}
		if v, ok := row[NormalizeHeaderName(name)]; ok && v != "" {
			return v
		}
	}
	return ""
}

// InferOperationKind inspects a row's credit/debit indicator and free-text
// movement description and infers the operation kind. Matching is substring
// based on lower-cased, accent-folded text, evaluated top to bottom; the
// first rule that matches wins.
//
// Income rules come before the generic settlement-transfer rule on purpose:
// brokers reuse the same "Transferência - Liquidação" mechanism for cash
// movements of many kinds, so income must be recognized first.
//
// The second return value is false when the row is not a recognized
// operation and must be dropped.
func InferOperationKind(row Row) (models.OperationKind, bool) {
	indicator := foldAccents(strings.ToLower(strings.TrimSpace(fieldValue(row, ColEntradaSaida, "Entrada/Saida"))))
	movement := foldAccents(strings.ToLower(strings.TrimSpace(fieldValue(row, ColMovimentacao, "Movimentacao"))))

	// Proventos / rendimentos (includes FIIs)
	if strings.Contains(movement, "dividend") ||
		strings.Contains(movement, "provento") ||
		strings.Contains(movement, "rendimento") {
		return models.KindDividend, true
	}
	if strings.Contains(movement, "juros sobre capital proprio") ||
		strings.Contains(movement, " jcp") ||
		movement == "jcp" {
		return models.KindInterestOnEquity, true
	}

	// Corporate events that change quantity (stock bonus). Treated as a
	// purchase with total value 0, which dilutes the average cost without
	// any special-casing downstream.
	if strings.Contains(movement, "bonifica") {
		return models.KindPurchase, true
	}

	// Some brokers spell out compra/venda in the movement text.
	if strings.Contains(movement, "compra") {
		return models.KindPurchase, true
	}
	if strings.Contains(movement, "venda") {
		return models.KindSale, true
	}

	// Custody settlement transfer: direction comes from the credit/debit
	// indicator. Credit means the asset entered custody (purchase), debit
	// means it left (sale).
	if strings.Contains(movement, "transfer") && strings.Contains(movement, "liquida") {
		credit := strings.Contains(indicator, "entr") ||
			strings.Contains(indicator, "cr") ||
			strings.Contains(indicator, "cred") ||
			strings.Contains(indicator, "credito")
		debit := strings.Contains(indicator, "sai") ||
			strings.Contains(indicator, "deb") ||
			strings.Contains(indicator, "debito")

		if credit {
			return models.KindPurchase, true
		}
		if debit {
			return models.KindSale, true
		}
	}

	return "", false
}
