package models

// Position is the derived per-ticker holding computed from the full
// operation set on every request; it is never persisted.
//
// AverageCost is the weighted average acquisition price. When the net
// quantity is zero the natural formula degenerates to 0/0, and both
// AverageCost and InvestedValue are defined as exactly 0 so downstream
// formatting always receives a number.
type Position struct {
	Ticker          string  `json:"ticker" example:"ABEV3"`
	CurrentQuantity float64 `json:"current_quantity"`
	AverageCost     float64 `json:"average_cost"`
	InvestedValue   float64 `json:"invested_value"`
}
