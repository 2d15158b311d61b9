package models

import "time"

// Instrument represents a single non-expired option instrument.
// Immutable once fetched; a refresh replaces the whole set.
type Instrument struct {
	Name     string     `json:"instrument"`
	Asset    Asset      `json:"asset"`
	Expiry   string     `json:"expiry"` // DDMONYY label, e.g. "27SEP24"
	ExpiryAt time.Time  `json:"expiry_at"`
	Strike   float64    `json:"strike"`
	Type     OptionType `json:"type"`
}

// Quote holds the two-sided market for an instrument. Fields are nil
// when the exchange has no data for that side.
type Quote struct {
	Bid *float64 `json:"bid"`
	Ask *float64 `json:"ask"`
	IV  *float64 `json:"iv"` // mark implied volatility, percent
}

// Greeks holds option sensitivities. All optional: the exchange omits
// them for illiquid instruments.
type Greeks struct {
	Delta *float64 `json:"delta"`
	Gamma *float64 `json:"gamma"`
	Vega  *float64 `json:"vega"`
	Theta *float64 `json:"theta"`
	Rho   *float64 `json:"rho"`
}

// ChainRow joins an Instrument with its quote and Greeks. It is the
// unit iterated, filtered and displayed.
type ChainRow struct {
	Instrument
	Quote  Quote   `json:"quote"`
	Greeks *Greeks `json:"greeks"`
}

// ChainFilter holds the selection criteria applied to a chain.
type ChainFilter struct {
	Type         OptionType
	ExpirySubstr string  // case-insensitive, unanchored
	MinIV        float64 // percent, rows with absent IV never match
}
