package deribit

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"deribit-dashboard/internal/cache"
	"deribit-dashboard/internal/metrics"
	"deribit-dashboard/internal/models"
)

// Cache TTLs bounding the request rate against the exchange.
const (
	DefaultSpotTTL  = 60 * time.Second
	DefaultChainTTL = 300 * time.Second
)

// Cache key kinds.
const (
	kindSpot  = "spot"
	kindChain = "chain"
)

// MarketData is the cached market-data service. Transport and parse
// failures are swallowed here: callers receive the documented absent
// or empty result and the failure is logged, never raised.
type MarketData struct {
	client   *Client
	store    cache.Store
	logger   zerolog.Logger
	spotTTL  time.Duration
	chainTTL time.Duration
}

// NewMarketData creates a market-data service over client with the
// given cache store and TTLs. Non-positive TTLs fall back to defaults.
func NewMarketData(client *Client, store cache.Store, logger zerolog.Logger, spotTTL, chainTTL time.Duration) *MarketData {
	if spotTTL <= 0 {
		spotTTL = DefaultSpotTTL
	}
	if chainTTL <= 0 {
		chainTTL = DefaultChainTTL
	}
	return &MarketData{
		client:   client,
		store:    store,
		logger:   logger,
		spotTTL:  spotTTL,
		chainTTL: chainTTL,
	}
}

// SpotPrice returns the last traded price of the asset's perpetual
// swap. ok is false when the price is unavailable. refresh bypasses
// the cache for this call; the fresh result still repopulates it.
func (m *MarketData) SpotPrice(ctx context.Context, asset models.Asset, refresh bool) (float64, bool) {
	key := cache.Key(kindSpot, string(asset))
	if !refresh {
		if raw, ok := m.store.Get(ctx, key); ok {
			var price float64
			if err := json.Unmarshal(raw, &price); err == nil {
				metrics.CacheRequests.WithLabelValues(kindSpot, "hit").Inc()
				return price, true
			}
		}
	}
	metrics.CacheRequests.WithLabelValues(kindSpot, "miss").Inc()

	ticker, err := m.client.Ticker(ctx, asset.PerpetualInstrument())
	if err != nil {
		m.logger.Warn().Err(err).Str("asset", string(asset)).Msg("spot price unavailable")
		return 0, false
	}
	if raw, err := json.Marshal(ticker.LastPrice); err == nil {
		m.store.Set(ctx, key, raw, m.spotTTL)
	}
	return ticker.LastPrice, true
}

// OptionsChain returns all non-expired option instruments for the
// asset, or an empty slice when the listing is unavailable. refresh
// bypasses the cache for this call.
func (m *MarketData) OptionsChain(ctx context.Context, asset models.Asset, refresh bool) []models.Instrument {
	key := cache.Key(kindChain, string(asset))
	if !refresh {
		if raw, ok := m.store.Get(ctx, key); ok {
			var chain []models.Instrument
			if err := json.Unmarshal(raw, &chain); err == nil {
				metrics.CacheRequests.WithLabelValues(kindChain, "hit").Inc()
				return chain
			}
		}
	}
	metrics.CacheRequests.WithLabelValues(kindChain, "miss").Inc()

	records, err := m.client.Instruments(ctx, string(asset))
	if err != nil {
		m.logger.Warn().Err(err).Str("asset", string(asset)).Msg("options chain unavailable")
		return []models.Instrument{}
	}

	chain := make([]models.Instrument, 0, len(records))
	for _, rec := range records {
		inst, ok := mapInstrument(asset, rec)
		if !ok {
			m.logger.Debug().Str("instrument", rec.InstrumentName).Msg("skipping malformed instrument record")
			continue
		}
		chain = append(chain, inst)
	}

	if raw, err := json.Marshal(chain); err == nil {
		m.store.Set(ctx, key, raw, m.chainTTL)
	}
	return chain
}

// Summary fetches the quote summary for one instrument. Best-effort:
// a failure affects only the calling row.
func (m *MarketData) Summary(ctx context.Context, instrument string) (models.Quote, error) {
	summary, err := m.client.BookSummary(ctx, instrument)
	if err != nil {
		return models.Quote{}, err
	}
	return models.Quote{
		Bid: summary.BidPrice,
		Ask: summary.AskPrice,
		IV:  summary.MarkIV,
	}, nil
}

// Greeks fetches the Greeks for one instrument. Best-effort per row.
func (m *MarketData) Greeks(ctx context.Context, instrument string) (*models.Greeks, error) {
	result, err := m.client.OptionGreeks(ctx, instrument)
	if err != nil {
		return nil, err
	}
	return &models.Greeks{
		Delta: result.Delta,
		Gamma: result.Gamma,
		Vega:  result.Vega,
		Theta: result.Theta,
		Rho:   result.Rho,
	}, nil
}

// mapInstrument converts a raw exchange record into a domain
// Instrument. Records with a non-positive strike, an unknown option
// type or a missing expiration are dropped.
func mapInstrument(asset models.Asset, rec InstrumentResult) (models.Instrument, bool) {
	if rec.Strike <= 0 || rec.ExpirationTimestamp <= 0 {
		return models.Instrument{}, false
	}
	optType, err := models.ParseOptionType(rec.OptionType)
	if err != nil {
		return models.Instrument{}, false
	}
	expiryAt := time.UnixMilli(rec.ExpirationTimestamp).UTC()
	return models.Instrument{
		Name:     rec.InstrumentName,
		Asset:    asset,
		Expiry:   FormatExpiry(expiryAt),
		ExpiryAt: expiryAt,
		Strike:   rec.Strike,
		Type:     optType,
	}, true
}

// FormatExpiry renders an expiry time as the Deribit-style DDMONYY
// label, e.g. 27SEP24.
func FormatExpiry(t time.Time) string {
	return strings.ToUpper(t.UTC().Format("02Jan06"))
}
