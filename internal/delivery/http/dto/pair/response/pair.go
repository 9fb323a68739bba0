package response

import "time"

type SupportedPair struct {
	Pair          string `json:"pair"`
	BaseCurrency  string `json:"base_currency"`
	QuoteCurrency string `json:"quote_currency"`
}

type SupportedPairsResponse struct {
	Pairs []SupportedPair `json:"pairs"`
	Total int             `json:"total"`
}

type TrackedPair struct {
	ID            int64      `json:"id"`
	Pair          string     `json:"pair"`
	BaseCurrency  string     `json:"base_currency"`
	QuoteCurrency string     `json:"quote_currency"`
	Active        bool       `json:"active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

type TrackedPairsResponse struct {
	Pairs []TrackedPair `json:"pairs"`
	Total int           `json:"total"`
}
