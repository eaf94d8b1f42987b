package models

// TradeYearHeader summarizes purchases and sales for one calendar year.
type TradeYearHeader struct {
	Year             int     `json:"year" example:"2024"`
	TotalBoughtQty   float64 `json:"total_bought_qty"`
	TotalBoughtValue float64 `json:"total_bought_value"`
	TotalSoldQty     float64 `json:"total_sold_qty"`
	TotalSoldValue   float64 `json:"total_sold_value"`
	TickersCount     int     `json:"tickers_count"`
}

// TradeTickerSummary is the per-ticker breakdown of one year's trades.
type TradeTickerSummary struct {
	Ticker      string  `json:"ticker"`
	BoughtQty   float64 `json:"bought_qty"`
	BoughtValue float64 `json:"bought_value"`
	SoldQty     float64 `json:"sold_qty"`
	SoldValue   float64 `json:"sold_value"`
}

// ProventoYearHeader summarizes dividend and interest-on-equity income for
// one calendar year, split by income kind and by the FII heuristic.
type ProventoYearHeader struct {
	Year           int     `json:"year" example:"2024"`
	Total          float64 `json:"total"`
	TotalDividends float64 `json:"total_dividends"`
	TotalInterest  float64 `json:"total_interest"`
	TotalFii       float64 `json:"total_fii"`
	TotalOther     float64 `json:"total_other"`
	TickersCount   int     `json:"tickers_count"`
}

// ProventoTickerSummary is the per-ticker income breakdown used both by the
// year details and by the overall top-payer ranking.
type ProventoTickerSummary struct {
	Ticker    string  `json:"ticker"`
	IsFii     bool    `json:"is_fii"`
	Dividends float64 `json:"dividends"`
	Interest  float64 `json:"interest"`
	Total     float64 `json:"total"`
}

// ProventoOverallSummary is the all-time income projection plus the ranking
// of the tickers that paid the most.
type ProventoOverallSummary struct {
	Total          float64                 `json:"total"`
	TotalDividends float64                 `json:"total_dividends"`
	TotalInterest  float64                 `json:"total_interest"`
	TotalFii       float64                 `json:"total_fii"`
	TotalOther     float64                 `json:"total_other"`
	TopPayers      []ProventoTickerSummary `json:"top_payers"`
}
