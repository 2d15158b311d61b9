package server

import (
	"net/http"
	"strconv"

	apperrors "deribit-dashboard/internal/errors"
	"deribit-dashboard/internal/models"
	"deribit-dashboard/internal/payoff"
)

// chainParams are the presentation-layer inputs for the chain views.
// Defaults mirror the dashboard's initial control state: BTC calls,
// any expiry, no IV floor.
type chainParams struct {
	asset   models.Asset
	filter  models.ChainFilter
	refresh bool
}

func parseChainParams(r *http.Request) (chainParams, error) {
	q := r.URL.Query()
	p := chainParams{
		asset: models.AssetBTC,
		filter: models.ChainFilter{
			Type: models.OptionCall,
		},
		refresh: parseRefresh(r),
	}

	if raw := q.Get("asset"); raw != "" {
		asset, err := models.ParseAsset(raw)
		if err != nil {
			return p, apperrors.NewValidationError("asset", raw, err.Error())
		}
		p.asset = asset
	}
	if raw := q.Get("type"); raw != "" {
		typ, err := models.ParseOptionType(raw)
		if err != nil {
			return p, apperrors.NewValidationError("type", raw, err.Error())
		}
		p.filter.Type = typ
	}
	p.filter.ExpirySubstr = q.Get("expiry")
	if raw := q.Get("min_iv"); raw != "" {
		minIV, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return p, apperrors.NewValidationError("min_iv", raw, "not a number")
		}
		if minIV < 0 || minIV > 200 {
			return p, apperrors.NewValidationError("min_iv", raw, "must be between 0 and 200")
		}
		p.filter.MinIV = minIV
	}
	return p, nil
}

// payoffParams are the presentation-layer inputs for the payoff view.
type payoffParams struct {
	asset      models.Asset
	instrument string
	contracts  float64
	refresh    bool
}

func parsePayoffParams(r *http.Request) (payoffParams, error) {
	q := r.URL.Query()
	p := payoffParams{
		asset:     models.AssetBTC,
		contracts: 1.0,
		refresh:   parseRefresh(r),
	}

	if raw := q.Get("asset"); raw != "" {
		asset, err := models.ParseAsset(raw)
		if err != nil {
			return p, apperrors.NewValidationError("asset", raw, err.Error())
		}
		p.asset = asset
	}
	p.instrument = q.Get("instrument")
	if p.instrument == "" {
		return p, apperrors.NewValidationError("instrument", "", "required")
	}
	if raw := q.Get("contracts"); raw != "" {
		contracts, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return p, apperrors.NewValidationError("contracts", raw, "not a number")
		}
		if contracts < payoff.MinContracts {
			return p, apperrors.NewValidationError("contracts", raw, "minimum is 0.1")
		}
		p.contracts = contracts
	}
	return p, nil
}

func parseRefresh(r *http.Request) bool {
	switch r.URL.Query().Get("refresh") {
	case "1", "true":
		return true
	}
	return false
}
