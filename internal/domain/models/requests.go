package models

import "strings"

// RunRequest is the body of POST /run-now; any of the three symbol fields may carry the list.
type RunRequest struct {
	Symbols  string `json:"symbols" form:"symbols" query:"symbols"`
	Symbol   string `json:"symbol" form:"symbol" query:"symbol"`
	Tickers  string `json:"tickers" form:"tickers" query:"tickers"`
	Interval string `json:"interval" form:"interval" query:"interval" validate:"omitempty,max=8"`
	Start    string `json:"start" form:"start" query:"start" validate:"omitempty,datetime=2006-01-02"`
	End      string `json:"end" form:"end" query:"end" validate:"omitempty,datetime=2006-01-02"`
}

// RawSymbols returns the non-empty symbol fields in precedence order.
func (r RunRequest) RawSymbols() []string {
	var out []string
	for _, v := range []string{r.Symbols, r.Symbol, r.Tickers} {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

// SignalsQuery filters GET /api/signals.
type SignalsQuery struct {
	Symbol string `query:"symbol" validate:"omitempty,max=32"`
	Limit  int    `query:"limit" default:"50" validate:"gte=1,lte=1000"`
}
