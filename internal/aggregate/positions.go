package aggregate

import (
	"sort"

	"github.com/guttosm/carteirapulse/internal/domain/models"
)

// CalculatePositions folds an operation list into current per-ticker
// holdings using weighted-average cost.
//
// Only purchases and sales participate: dividends and interest on equity
// affect neither quantity nor cost basis. Sales are priced out at the
// values reported in the statement, not at a recomputed average — the fold
// does not track realized gain separately, and that simplification is part
// of the contract.
//
// When the net quantity of a ticker is zero, average cost and invested
// value are exactly 0 rather than the 0/0 the natural formula produces.
// Output is sorted by ticker ascending for deterministic display.
func CalculatePositions(operations []models.Operation) []models.Position {
	type sums struct {
		boughtQty   float64
		soldQty     float64
		boughtValue float64
		soldValue   float64
	}

	byTicker := make(map[string]*sums)
	for _, op := range operations {
		if op.Ticker == "" {
			continue
		}

		cur, ok := byTicker[op.Ticker]
		if !ok {
			cur = &sums{}
			byTicker[op.Ticker] = cur
		}

		switch op.Kind {
		case models.KindPurchase:
			cur.boughtQty += op.Quantity
			cur.boughtValue += op.TotalValue
		case models.KindSale:
			cur.soldQty += op.Quantity
			cur.soldValue += op.TotalValue
		}
	}

	positions := make([]models.Position, 0, len(byTicker))
	for ticker, s := range byTicker {
		quantity := s.boughtQty - s.soldQty

		averageCost := 0.0
		if quantity != 0 {
			averageCost = (s.boughtValue - s.soldValue) / quantity
		}

		positions = append(positions, models.Position{
			Ticker:          ticker,
			CurrentQuantity: quantity,
			AverageCost:     averageCost,
			InvestedValue:   quantity * averageCost,
		})
	}

	sort.Slice(positions, func(i, j int) bool { return positions[i].Ticker < positions[j].Ticker })
	return positions
}
