// Package payoff computes a seller's profit/loss curve, breakeven and
// risk metrics for a single short option position. Everything here is
// a pure function of its inputs.
package payoff

import (
	"math"

	apperrors "deribit-dashboard/internal/errors"
	"deribit-dashboard/internal/models"
)

// Curve sampling: underlying prices span 50%-150% of spot at 1% steps.
const (
	curveLowFactor  = 0.50
	curveHighFactor = 1.50
	curveStepFactor = 0.01
)

// MinContracts is the smallest sellable contract count.
const MinContracts = 0.1

// Premium returns the bid/ask midpoint a seller would collect. When
// either side of the market is absent the premium is 0 and ok is
// false; callers surface that as a warning, not an error, and the
// payoff is still computed (degenerate, shifted by zero premium).
func Premium(q models.Quote) (float64, bool) {
	if q.Bid == nil || q.Ask == nil {
		return 0, false
	}
	return (*q.Bid + *q.Ask) / 2, true
}

// Curve generates the short-position profit/loss samples across
// 50%-150% of spot. Spot must be a positive finite number: anything
// else is an input-validation failure, not a degenerate curve.
func Curve(strike, premium float64, typ models.OptionType, contracts, spot float64) ([]models.PayoffPoint, error) {
	if spot <= 0 || math.IsNaN(spot) || math.IsInf(spot, 0) {
		return nil, apperrors.NewValidationError("spot", spot, "must be a positive finite price")
	}
	if contracts <= 0 || math.IsNaN(contracts) || math.IsInf(contracts, 0) {
		return nil, apperrors.NewValidationError("contracts", contracts, "must be a positive finite count")
	}

	steps := int(math.Round((curveHighFactor-curveLowFactor)/curveStepFactor)) + 1
	points := make([]models.PayoffPoint, 0, steps)
	for i := 0; i < steps; i++ {
		price := spot * (curveLowFactor + curveStepFactor*float64(i))
		profit := (premium - intrinsic(typ, strike, price)) * contracts
		points = append(points, models.PayoffPoint{Price: price, Profit: profit})
	}
	return points, nil
}

// Summary derives the seller's risk metrics. A short call's loss is
// unbounded; a short put's worst case is the strike (underlying at
// zero) per contract.
func Summary(strike, premium float64, typ models.OptionType, contracts float64) models.RiskSummary {
	s := models.RiskSummary{
		MaxProfit: premium * contracts,
	}
	switch typ {
	case models.OptionPut:
		s.Breakeven = strike - premium
		s.MaxLoss = strike * contracts
	default:
		s.Breakeven = strike + premium
		s.Unlimited = true
	}
	return s
}

// At evaluates the seller's profit at a single underlying price.
func At(strike, premium float64, typ models.OptionType, contracts, price float64) float64 {
	return (premium - intrinsic(typ, strike, price)) * contracts
}

// intrinsic is the in-the-money payoff of the option at price,
// ignoring premium.
func intrinsic(typ models.OptionType, strike, price float64) float64 {
	if typ == models.OptionPut {
		return math.Max(strike-price, 0)
	}
	return math.Max(price-strike, 0)
}
