package aggregate

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/guttosm/carteirapulse/internal/domain/models"
)

var twoDigitSuffixRe = regexp.MustCompile(`\d\d$`)

// isFiiTicker applies the Brazilian market convention that real-estate fund
// tickers end in "11" (HGLG11, MXRF11). It is a heuristic with known false
// positives/negatives for non-standard tickers; it lives in one place so it
// can be swapped for a lookup table later.
func isFiiTicker(ticker string) bool {
	if !twoDigitSuffixRe.MatchString(ticker) {
		return false
	}
	return strings.HasSuffix(ticker, "11")
}

// add accumulates defensively: a non-finite contribution counts as 0 so a
// stray NaN can never poison a whole summary.
func add(n, v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return n
	}
	return n + v
}

func isTrade(kind models.OperationKind) bool {
	return kind == models.KindPurchase || kind == models.KindSale
}

func isProvento(kind models.OperationKind) bool {
	return kind == models.KindDividend || kind == models.KindInterestOnEquity
}

// SummarizeTradesByYear groups purchases and sales by calendar year.
// Years are sorted descending (most recent first).
func SummarizeTradesByYear(operations []models.Operation) []models.TradeYearHeader {
	type sums struct {
		boughtQty   float64
		boughtValue float64
		soldQty     float64
		soldValue   float64
		tickers     map[string]struct{}
	}

	byYear := make(map[int]*sums)
	for _, op := range operations {
		if !isTrade(op.Kind) || op.Ticker == "" {
			continue
		}

		year := op.Date.Year()
		cur, ok := byYear[year]
		if !ok {
			cur = &sums{tickers: make(map[string]struct{})}
			byYear[year] = cur
		}

		cur.tickers[op.Ticker] = struct{}{}
		if op.Kind == models.KindPurchase {
			cur.boughtQty = add(cur.boughtQty, op.Quantity)
			cur.boughtValue = add(cur.boughtValue, op.TotalValue)
		} else {
			cur.soldQty = add(cur.soldQty, op.Quantity)
			cur.soldValue = add(cur.soldValue, op.TotalValue)
		}
	}

	out := make([]models.TradeYearHeader, 0, len(byYear))
	for year, s := range byYear {
		out = append(out, models.TradeYearHeader{
			Year:             year,
			TotalBoughtQty:   s.boughtQty,
			TotalBoughtValue: s.boughtValue,
			TotalSoldQty:     s.soldQty,
			TotalSoldValue:   s.soldValue,
			TickersCount:     len(s.tickers),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	return out
}

// TradeYearDetails breaks one year's trades down per ticker, sorted by
// ticker ascending.
func TradeYearDetails(operations []models.Operation, year int) []models.TradeTickerSummary {
	byTicker := make(map[string]*models.TradeTickerSummary)

	for _, op := range operations {
		if op.Date.Year() != year || !isTrade(op.Kind) || op.Ticker == "" {
			continue
		}

		cur, ok := byTicker[op.Ticker]
		if !ok {
			cur = &models.TradeTickerSummary{Ticker: op.Ticker}
			byTicker[op.Ticker] = cur
		}

		if op.Kind == models.KindPurchase {
			cur.BoughtQty = add(cur.BoughtQty, op.Quantity)
			cur.BoughtValue = add(cur.BoughtValue, op.TotalValue)
		} else {
			cur.SoldQty = add(cur.SoldQty, op.Quantity)
			cur.SoldValue = add(cur.SoldValue, op.TotalValue)
		}
	}

	out := make([]models.TradeTickerSummary, 0, len(byTicker))
	for _, s := range byTicker {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

// SummarizeProventosByYear groups dividend and interest-on-equity income by
// calendar year, split by income kind and by the FII heuristic. Years are
// sorted descending.
func SummarizeProventosByYear(operations []models.Operation) []models.ProventoYearHeader {
	type sums struct {
		total     float64
		dividends float64
		interest  float64
		fii       float64
		other     float64
		tickers   map[string]struct{}
	}

	byYear := make(map[int]*sums)
	for _, op := range operations {
		if !isProvento(op.Kind) || op.Ticker == "" {
			continue
		}

		year := op.Date.Year()
		cur, ok := byYear[year]
		if !ok {
			cur = &sums{tickers: make(map[string]struct{})}
			byYear[year] = cur
		}

		v := add(0, op.TotalValue)
		cur.tickers[op.Ticker] = struct{}{}
		cur.total = add(cur.total, v)
		if op.Kind == models.KindDividend {
			cur.dividends = add(cur.dividends, v)
		} else {
			cur.interest = add(cur.interest, v)
		}
		if isFiiTicker(op.Ticker) {
			cur.fii = add(cur.fii, v)
		} else {
			cur.other = add(cur.other, v)
		}
	}

	out := make([]models.ProventoYearHeader, 0, len(byYear))
	for year, s := range byYear {
		out = append(out, models.ProventoYearHeader{
			Year:           year,
			Total:          s.total,
			TotalDividends: s.dividends,
			TotalInterest:  s.interest,
			TotalFii:       s.fii,
			TotalOther:     s.other,
			TickersCount:   len(s.tickers),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	return out
}

// ProventosYearDetails breaks one year's income down per ticker, sorted by
// ticker ascending.
func ProventosYearDetails(operations []models.Operation, year int) []models.ProventoTickerSummary {
	type sums struct {
		dividends float64
		interest  float64
	}

	byTicker := make(map[string]*sums)
	for _, op := range operations {
		if op.Date.Year() != year || !isProvento(op.Kind) || op.Ticker == "" {
			continue
		}

		cur, ok := byTicker[op.Ticker]
		if !ok {
			cur = &sums{}
			byTicker[op.Ticker] = cur
		}

		v := add(0, op.TotalValue)
		if op.Kind == models.KindDividend {
			cur.dividends = add(cur.dividends, v)
		} else {
			cur.interest = add(cur.interest, v)
		}
	}

	out := make([]models.ProventoTickerSummary, 0, len(byTicker))
	for ticker, s := range byTicker {
		out = append(out, models.ProventoTickerSummary{
			Ticker:    ticker,
			IsFii:     isFiiTicker(ticker),
			Dividends: s.dividends,
			Interest:  s.interest,
			Total:     add(s.dividends, s.interest),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

// SummarizeProventosOverall computes all-time income totals plus the top
// topN tickers by total income, descending. The sort is stable, so ties
// keep the order in which tickers first appeared in the operation list.
func SummarizeProventosOverall(operations []models.Operation, topN int) models.ProventoOverallSummary {
	summary := models.ProventoOverallSummary{TopPayers: []models.ProventoTickerSummary{}}

	type sums struct {
		dividends float64
		interest  float64
	}
	byTicker := make(map[string]*sums)
	var order []string

	for _, op := range operations {
		if !isProvento(op.Kind) || op.Ticker == "" {
			continue
		}

		v := add(0, op.TotalValue)
		summary.Total = add(summary.Total, v)
		if op.Kind == models.KindDividend {
			summary.TotalDividends = add(summary.TotalDividends, v)
		} else {
			summary.TotalInterest = add(summary.TotalInterest, v)
		}
		if isFiiTicker(op.Ticker) {
			summary.TotalFii = add(summary.TotalFii, v)
		} else {
			summary.TotalOther = add(summary.TotalOther, v)
		}

		cur, ok := byTicker[op.Ticker]
		if !ok {
			cur = &sums{}
			byTicker[op.Ticker] = cur
			order = append(order, op.Ticker)
		}
		if op.Kind == models.KindDividend {
			cur.dividends = add(cur.dividends, v)
		} else {
			cur.interest = add(cur.interest, v)
		}
	}

	payers := make([]models.ProventoTickerSummary, 0, len(order))
	for _, ticker := range order {
		s := byTicker[ticker]
		payers = append(payers, models.ProventoTickerSummary{
			Ticker:    ticker,
			IsFii:     isFiiTicker(ticker),
			Dividends: s.dividends,
			Interest:  s.interest,
			Total:     add(s.dividends, s.interest),
		})
	}

	sort.SliceStable(payers, func(i, j int) bool { return payers[i].Total > payers[j].Total })

	if topN < 0 {
		topN = 0
	}
	if topN > len(payers) {
		topN = len(payers)
	}
	summary.TopPayers = payers[:topN]
	return summary
}
