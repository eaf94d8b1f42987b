package aggregate

import (
	"math"
	"testing"
	"time"

	"github.com/guttosm/carteirapulse/internal/domain/models"
)

func opAt(year int, kind models.OperationKind, ticker string, qty, total float64) models.Operation {
	return models.Operation{
		Date:       time.Date(year, 6, 1, 0, 0, 0, 0, time.UTC),
		Ticker:     ticker,
		Kind:       kind,
		Quantity:   qty,
		TotalValue: total,
	}
}

func TestIsFiiTicker(t *testing.T) {
	cases := []struct {
		ticker string
		want   bool
	}{
		{"HGLG11", true},
		{"MXRF11", true},
		{"ITUB4", false},
		{"PETR3", false},
		{"TAEE11", true}, // known false positive of the convention
		{"X11", true},
		{"ABC1", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := isFiiTicker(tc.ticker); got != tc.want {
			t.Fatalf("isFiiTicker(%q) = %v, want %v", tc.ticker, got, tc.want)
		}
	}
}

func TestSummarizeTradesByYear(t *testing.T) {
	ops := []models.Operation{
		opAt(2023, models.KindPurchase, "PETR4", 100, 3000),
		opAt(2023, models.KindSale, "PETR4", 40, 1400),
		opAt(2023, models.KindPurchase, "VALE3", 10, 600),
		opAt(2024, models.KindPurchase, "ABEV3", 50, 700),
		opAt(2024, models.KindDividend, "ABEV3", 0, 30), // income, excluded
	}

	years := SummarizeTradesByYear(ops)
	if len(years) != 2 {
		t.Fatalf("years = %+v", years)
	}
	if years[0].Year != 2024 || years[1].Year != 2023 {
		t.Fatalf("years not descending: %+v", years)
	}

	y23 := years[1]
	if y23.TotalBoughtQty != 110 || y23.TotalBoughtValue != 3600 {
		t.Fatalf("2023 buys = %+v", y23)
	}
	if y23.TotalSoldQty != 40 || y23.TotalSoldValue != 1400 {
		t.Fatalf("2023 sells = %+v", y23)
	}
	if y23.TickersCount != 2 {
		t.Fatalf("2023 tickers = %d, want 2", y23.TickersCount)
	}
}

func TestTradeYearDetails(t *testing.T) {
	ops := []models.Operation{
		opAt(2023, models.KindPurchase, "VALE3", 10, 600),
		opAt(2023, models.KindPurchase, "ABEV3", 50, 700),
		opAt(2023, models.KindSale, "ABEV3", 20, 300),
		opAt(2022, models.KindPurchase, "ABEV3", 5, 60), // other year
	}

	details := TradeYearDetails(ops, 2023)
	if len(details) != 2 {
		t.Fatalf("details = %+v", details)
	}
	if details[0].Ticker != "ABEV3" || details[1].Ticker != "VALE3" {
		t.Fatalf("not sorted by ticker: %+v", details)
	}
	abev := details[0]
	if abev.BoughtQty != 50 || abev.BoughtValue != 700 || abev.SoldQty != 20 || abev.SoldValue != 300 {
		t.Fatalf("ABEV3 = %+v", abev)
	}
}

func TestSummarizeProventosByYear(t *testing.T) {
	ops := []models.Operation{
		opAt(2019, models.KindDividend, "HGLG11", 0, 50),
		opAt(2019, models.KindInterestOnEquity, "ITUB4", 0, 30),
		opAt(2019, models.KindDividend, "ITUB4", 0, 20),
		opAt(2020, models.KindDividend, "MXRF11", 0, 10),
		opAt(2019, models.KindPurchase, "ITUB4", 10, 300), // trade, excluded
	}

	years := SummarizeProventosByYear(ops)
	if len(years) != 2 {
		t.Fatalf("years = %+v", years)
	}
	if years[0].Year != 2020 || years[1].Year != 2019 {
		t.Fatalf("years not descending: %+v", years)
	}

	y19 := years[1]
	if y19.Total != 100 {
		t.Fatalf("2019 total = %v, want 100", y19.Total)
	}
	if y19.TotalDividends != 70 || y19.TotalInterest != 30 {
		t.Fatalf("2019 split = %+v", y19)
	}
	if y19.TotalFii != 50 || y19.TotalOther != 50 {
		t.Fatalf("2019 fii split = %+v", y19)
	}
	if y19.TickersCount != 2 {
		t.Fatalf("2019 tickers = %d, want 2", y19.TickersCount)
	}
}

func TestProventosYearDetails(t *testing.T) {
	ops := []models.Operation{
		opAt(2019, models.KindDividend, "HGLG11", 0, 50),
		opAt(2019, models.KindInterestOnEquity, "ITUB4", 0, 30),
		opAt(2019, models.KindDividend, "ITUB4", 0, 20),
	}

	details := ProventosYearDetails(ops, 2019)
	if len(details) != 2 {
		t.Fatalf("details = %+v", details)
	}

	hglg := details[0]
	if hglg.Ticker != "HGLG11" || !hglg.IsFii || hglg.Dividends != 50 || hglg.Total != 50 {
		t.Fatalf("HGLG11 = %+v", hglg)
	}
	itub := details[1]
	if itub.Ticker != "ITUB4" || itub.IsFii || itub.Dividends != 20 || itub.Interest != 30 || itub.Total != 50 {
		t.Fatalf("ITUB4 = %+v", itub)
	}
}

func TestSummarizeProventosOverall(t *testing.T) {
	ops := []models.Operation{
		opAt(2019, models.KindDividend, "HGLG11", 0, 50),
		opAt(2019, models.KindInterestOnEquity, "ITUB4", 0, 30),
		opAt(2020, models.KindDividend, "ITUB4", 0, 40),
		opAt(2020, models.KindDividend, "MXRF11", 0, 10),
	}

	summary := SummarizeProventosOverall(ops, 2)
	if summary.Total != 130 || summary.TotalDividends != 100 || summary.TotalInterest != 30 {
		t.Fatalf("totals = %+v", summary)
	}
	if summary.TotalFii != 60 || summary.TotalOther != 70 {
		t.Fatalf("fii split = %+v", summary)
	}

	if len(summary.TopPayers) != 2 {
		t.Fatalf("top payers = %+v", summary.TopPayers)
	}
	if summary.TopPayers[0].Ticker != "ITUB4" || math.Abs(summary.TopPayers[0].Total-70) > 1e-9 {
		t.Fatalf("top payer = %+v", summary.TopPayers[0])
	}
	if summary.TopPayers[1].Ticker != "HGLG11" {
		t.Fatalf("second payer = %+v", summary.TopPayers[1])
	}
}

// Ties keep first-seen order: the sort over payers is stable.
func TestSummarizeProventosOverall_StableTies(t *testing.T) {
	ops := []models.Operation{
		opAt(2019, models.KindDividend, "BBAS3", 0, 25),
		opAt(2019, models.KindDividend, "ABEV3", 0, 25),
	}

	summary := SummarizeProventosOverall(ops, 5)
	if len(summary.TopPayers) != 2 {
		t.Fatalf("top payers = %+v", summary.TopPayers)
	}
	if summary.TopPayers[0].Ticker != "BBAS3" || summary.TopPayers[1].Ticker != "ABEV3" {
		t.Fatalf("tie order changed: %+v", summary.TopPayers)
	}
}

func TestSummarizeProventosOverall_TopNClamped(t *testing.T) {
	ops := []models.Operation{
		opAt(2019, models.KindDividend, "HGLG11", 0, 50),
	}

	if got := SummarizeProventosOverall(ops, 10).TopPayers; len(got) != 1 {
		t.Fatalf("topN above payer count must clamp: %+v", got)
	}
	if got := SummarizeProventosOverall(ops, 0).TopPayers; len(got) != 0 {
		t.Fatalf("topN zero must yield empty: %+v", got)
	}
	if got := SummarizeProventosOverall(nil, 5); got.Total != 0 || len(got.TopPayers) != 0 {
		t.Fatalf("empty input: %+v", got)
	}
}
