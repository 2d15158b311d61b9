package deribit

import "encoding/json"

// rpcEnvelope is the JSON-RPC wrapper every public endpoint returns.
type rpcEnvelope struct {
	Result json.RawMessage `json:"result"`
}

// TickerResult is the payload of /public/ticker.
type TickerResult struct {
	InstrumentName string  `json:"instrument_name"`
	LastPrice      float64 `json:"last_price"`
	MarkPrice      float64 `json:"mark_price"`
}

// InstrumentResult is one record of /public/get_instruments.
type InstrumentResult struct {
	InstrumentName      string  `json:"instrument_name"`
	Kind                string  `json:"kind"`
	OptionType          string  `json:"option_type"`
	Strike              float64 `json:"strike"`
	ExpirationTimestamp int64   `json:"expiration_timestamp"` // epoch millis
}

// BookSummaryResult is one record of /public/get_book_summary_by_instrument.
// Pointer fields stay nil when the exchange has no two-sided market.
type BookSummaryResult struct {
	InstrumentName string   `json:"instrument_name"`
	BidPrice       *float64 `json:"bid_price"`
	AskPrice       *float64 `json:"ask_price"`
	MarkIV         *float64 `json:"mark_iv"`
}

// GreeksResult is the payload of /public/get_greeks. All fields are
// optional: the exchange omits Greeks for illiquid instruments.
type GreeksResult struct {
	Delta *float64 `json:"delta"`
	Gamma *float64 `json:"gamma"`
	Vega  *float64 `json:"vega"`
	Theta *float64 `json:"theta"`
	Rho   *float64 `json:"rho"`
}
