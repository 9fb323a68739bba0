package response

import "time"

type RateResponse struct {
	BaseCurrency  string    `json:"base_currency"`
	QuoteCurrency string    `json:"quote_currency"`
	Pair          string    `json:"pair"`
	Rate          float64   `json:"rate"`
	Timestamp     time.Time `json:"timestamp"`
	Source        string    `json:"source"`
}

type RatePoint struct {
	Rate      float64   `json:"rate"`
	Timestamp time.Time `json:"timestamp"`
}

type HistoryResponse struct {
	BaseCurrency  string      `json:"base_currency"`
	QuoteCurrency string      `json:"quote_currency"`
	From          time.Time   `json:"from"`
	To            time.Time   `json:"to"`
	Count         int         `json:"count"`
	Rates         []RatePoint `json:"rates"`
}

type Statistics struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
	Count int64   `json:"count"`
}

type StatisticsResponse struct {
	BaseCurrency  string     `json:"base_currency"`
	QuoteCurrency string     `json:"quote_currency"`
	Statistics    Statistics `json:"statistics"`
}

type CurrenciesResponse struct {
	Currencies []string `json:"currencies"`
	Total      int      `json:"total"`
}
