package models

// PayoffPoint is one sample of a short position's profit/loss curve.
type PayoffPoint struct {
	Price  float64 `json:"price"`  // underlying price
	Profit float64 `json:"profit"` // seller P/L at that price
}

// RiskSummary holds the derived risk metrics for a short position.
// MaxLoss is meaningful only when Unlimited is false (short put);
// a short call's loss is unbounded.
type RiskSummary struct {
	MaxProfit float64 `json:"max_profit"`
	Breakeven float64 `json:"breakeven"`
	MaxLoss   float64 `json:"max_loss"`
	Unlimited bool    `json:"max_loss_unlimited"`
}
