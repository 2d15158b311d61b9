package server

import (
	"context"
	"net/http"
	"strings"

	"deribit-dashboard/internal/chain"
	apperrors "deribit-dashboard/internal/errors"
	"deribit-dashboard/internal/models"
	"deribit-dashboard/internal/payoff"
)

// spotResponse reports the perpetual last price. Available is false
// when the upstream fetch failed; the frontend shows its
// "data unavailable" state instead of a price.
type spotResponse struct {
	Asset     models.Asset `json:"asset"`
	Price     float64      `json:"price"`
	Available bool         `json:"available"`
}

func (s *Server) handleSpot(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("asset")
	asset := models.AssetBTC
	if raw != "" {
		parsed, err := models.ParseAsset(raw)
		if err != nil {
			writeError(w, apperrors.NewValidationError("asset", raw, err.Error()))
			return
		}
		asset = parsed
	}
	price, ok := s.market.SpotPrice(r.Context(), asset, parseRefresh(r))
	writeJSON(w, http.StatusOK, spotResponse{Asset: asset, Price: price, Available: ok})
}

// chainResponse carries the filtered chain rows. Rows is always
// non-nil: an empty chain is a valid result, not an error.
type chainResponse struct {
	Asset         models.Asset      `json:"asset"`
	Spot          float64           `json:"spot"`
	SpotAvailable bool              `json:"spot_available"`
	Rows          []models.ChainRow `json:"rows"`
}

func (s *Server) handleChain(w http.ResponseWriter, r *http.Request) {
	p, err := parseChainParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	spot, spotOK := s.market.SpotPrice(r.Context(), p.asset, p.refresh)
	rows := s.filteredChain(r.Context(), p)
	writeJSON(w, http.StatusOK, chainResponse{
		Asset:         p.asset,
		Spot:          spot,
		SpotAvailable: spotOK,
		Rows:          rows,
	})
}

// greeksRow is the flattened instrument/strike/Greeks view.
type greeksRow struct {
	Instrument string         `json:"instrument"`
	Strike     float64        `json:"strike"`
	Expiry     string         `json:"expiry"`
	Greeks     *models.Greeks `json:"greeks"`
}

func (s *Server) handleGreeks(w http.ResponseWriter, r *http.Request) {
	p, err := parseChainParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rows := s.filteredChain(r.Context(), p)
	out := make([]greeksRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, greeksRow{
			Instrument: row.Name,
			Strike:     row.Strike,
			Expiry:     row.Expiry,
			Greeks:     row.Greeks,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// smilePoint is one (strike, IV) sample of the volatility smile.
type smilePoint struct {
	Strike float64 `json:"strike"`
	IV     float64 `json:"iv"`
}

// smileSeries groups smile points by expiry so the frontend can color
// per expiry, with the spot price for the reference line.
type smileSeries struct {
	Expiry string       `json:"expiry"`
	Points []smilePoint `json:"points"`
}

type smileResponse struct {
	Asset         models.Asset  `json:"asset"`
	Spot          float64       `json:"spot"`
	SpotAvailable bool          `json:"spot_available"`
	Series        []smileSeries `json:"series"`
}

func (s *Server) handleSmile(w http.ResponseWriter, r *http.Request) {
	p, err := parseChainParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	spot, spotOK := s.market.SpotPrice(r.Context(), p.asset, p.refresh)
	rows := s.filteredChain(r.Context(), p)

	series := make([]smileSeries, 0)
	index := make(map[string]int)
	for _, row := range rows {
		if row.Quote.IV == nil {
			continue
		}
		i, ok := index[row.Expiry]
		if !ok {
			i = len(series)
			index[row.Expiry] = i
			series = append(series, smileSeries{Expiry: row.Expiry, Points: []smilePoint{}})
		}
		series[i].Points = append(series[i].Points, smilePoint{Strike: row.Strike, IV: *row.Quote.IV})
	}
	writeJSON(w, http.StatusOK, smileResponse{
		Asset:         p.asset,
		Spot:          spot,
		SpotAvailable: spotOK,
		Series:        series,
	})
}

// payoffResponse carries the seller's P/L curve plus annotations the
// frontend needs (spot, strike, premium). PremiumMissing flags the
// degenerate zero-premium curve produced when the market is one-sided.
type payoffResponse struct {
	Instrument     string               `json:"instrument"`
	Asset          models.Asset         `json:"asset"`
	Type           models.OptionType    `json:"type"`
	Strike         float64              `json:"strike"`
	Expiry         string               `json:"expiry"`
	Spot           float64              `json:"spot"`
	Contracts      float64              `json:"contracts"`
	Premium        float64              `json:"premium"`
	PremiumMissing bool                 `json:"premium_missing"`
	Points         []models.PayoffPoint `json:"points"`
	Risk           models.RiskSummary   `json:"risk"`
}

// dataUnavailableResponse is returned when the spot price cannot be
// fetched and the curve therefore cannot be sampled.
type dataUnavailableResponse struct {
	Instrument    string `json:"instrument"`
	DataAvailable bool   `json:"data_available"`
}

func (s *Server) handlePayoff(w http.ResponseWriter, r *http.Request) {
	p, err := parsePayoffParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	inst, ok := s.findInstrument(r.Context(), p)
	if !ok {
		writeError(w, apperrors.Wrapf(apperrors.ErrInstrumentNotFound, "instrument %q", p.instrument))
		return
	}

	spot, spotOK := s.market.SpotPrice(r.Context(), p.asset, p.refresh)
	if !spotOK {
		writeJSON(w, http.StatusOK, dataUnavailableResponse{Instrument: inst.Name, DataAvailable: false})
		return
	}

	rows := s.enricher.Enrich(r.Context(), []models.Instrument{inst})
	row := rows[0]

	premium, havePremium := payoff.Premium(row.Quote)
	points, err := payoff.Curve(inst.Strike, premium, inst.Type, p.contracts, spot)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, payoffResponse{
		Instrument:     inst.Name,
		Asset:          p.asset,
		Type:           inst.Type,
		Strike:         inst.Strike,
		Expiry:         inst.Expiry,
		Spot:           spot,
		Contracts:      p.contracts,
		Premium:        premium,
		PremiumMissing: !havePremium,
		Points:         points,
		Risk:           payoff.Summary(inst.Strike, premium, inst.Type, p.contracts),
	})
}

// filteredChain runs the full data pass: instrument listing, a cheap
// pre-filter on instrument-only predicates (type, expiry) to avoid
// enriching rows the filter would drop anyway, enrichment, then the
// full filter with sort. Re-applying the instrument predicates after
// enrichment is idempotent, so the final set matches the contract.
func (s *Server) filteredChain(ctx context.Context, p chainParams) []models.ChainRow {
	instruments := s.market.OptionsChain(ctx, p.asset, p.refresh)

	substr := strings.ToUpper(p.filter.ExpirySubstr)
	pre := make([]models.Instrument, 0, len(instruments))
	for _, inst := range instruments {
		if inst.Type != p.filter.Type {
			continue
		}
		if substr != "" && !strings.Contains(strings.ToUpper(inst.Expiry), substr) {
			continue
		}
		pre = append(pre, inst)
	}

	rows := s.enricher.Enrich(ctx, pre)
	return chain.Filter(rows, p.filter)
}

// findInstrument resolves a payoff request's instrument name against
// the current chain.
func (s *Server) findInstrument(ctx context.Context, p payoffParams) (models.Instrument, bool) {
	for _, inst := range s.market.OptionsChain(ctx, p.asset, p.refresh) {
		if inst.Name == p.instrument {
			return inst, true
		}
	}
	return models.Instrument{}, false
}
