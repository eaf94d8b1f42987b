package models

import "time"

// OperationKind classifies one economic event from a brokerage statement.
// The wire values are the Portuguese labels used by the statement itself;
// they are also part of the operation identity, so they must never change.
type OperationKind string

const (
	KindPurchase         OperationKind = "COMPRA"
	KindSale             OperationKind = "VENDA"
	KindDividend         OperationKind = "DIVIDENDO"
	KindInterestOnEquity OperationKind = "JCP"
)

// Operation is an immutable fact representing one economic event extracted
// from a brokerage statement row.
//
// All numeric fields are stored as non-negative magnitudes; the direction of
// the flow is encoded solely by Kind. Quantity is zero for income events and
// UnitPrice is zero when the statement does not report a per-unit price
// (stock bonuses, most income rows).
//
// OperationID is content-derived (see importer.BuildOperationID): re-importing
// the same statement yields the same id, which makes duplicate detection a
// simple key lookup.
type Operation struct {
	OperationID string        `json:"operation_id"`
	Date        time.Time     `json:"date"`
	Ticker      string        `json:"ticker" example:"ABEV3"`
	Kind        OperationKind `json:"kind" example:"COMPRA"`
	Quantity    float64       `json:"quantity"`
	UnitPrice   float64       `json:"unit_price"`
	TotalValue  float64       `json:"total_value"`
	Broker      string        `json:"broker"`
}

// OperationDraft is an Operation without its identity, as produced by the
// row normalizer before the id is derived.
type OperationDraft struct {
	Date       time.Time
	Ticker     string
	Kind       OperationKind
	Quantity   float64
	UnitPrice  float64
	TotalValue float64
	Broker     string
}

// WithID promotes a draft to a full Operation.
func (d OperationDraft) WithID(id string) Operation {
	return Operation{
		OperationID: id,
		Date:        d.Date,
		Ticker:      d.Ticker,
		Kind:        d.Kind,
		Quantity:    d.Quantity,
		UnitPrice:   d.UnitPrice,
		TotalValue:  d.TotalValue,
		Broker:      d.Broker,
	}
}

// ImportSummary reports the outcome of one statement import.
//
// TotalRowsRead counts data rows before normalization; rows the normalizer
// drops (disclaimers, subtotals, unclassifiable movements) are included in
// it but contribute neither to imported nor to duplicate counts.
type ImportSummary struct {
	TotalRowsRead         int `json:"total_rows_read"`
	TotalImported         int `json:"total_imported"`
	TotalSkippedDuplicate int `json:"total_skipped_duplicate"`
}
