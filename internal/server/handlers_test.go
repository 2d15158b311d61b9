package server

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"deribit-dashboard/internal/models"
)

func f(v float64) *float64 { return &v }

// fakeMarket serves a fixed instrument set and spot price.
type fakeMarket struct {
	spot   float64
	spotOK bool
	chain  []models.Instrument
}

func (m *fakeMarket) SpotPrice(context.Context, models.Asset, bool) (float64, bool) {
	return m.spot, m.spotOK
}

func (m *fakeMarket) OptionsChain(context.Context, models.Asset, bool) []models.Instrument {
	return m.chain
}

// fakeEnricher attaches canned quotes by instrument name.
type fakeEnricher struct {
	quotes map[string]models.Quote
	greeks map[string]*models.Greeks
}

func (e *fakeEnricher) Enrich(_ context.Context, instruments []models.Instrument) []models.ChainRow {
	rows := make([]models.ChainRow, len(instruments))
	for i, inst := range instruments {
		rows[i] = models.ChainRow{
			Instrument: inst,
			Quote:      e.quotes[inst.Name],
			Greeks:     e.greeks[inst.Name],
		}
	}
	return rows
}

func inst(name string, typ models.OptionType, expiry string, strike float64) models.Instrument {
	return models.Instrument{
		Name:   name,
		Asset:  models.AssetBTC,
		Expiry: expiry,
		Strike: strike,
		Type:   typ,
	}
}

func newTestServer() *Server {
	market := &fakeMarket{
		spot:   60000,
		spotOK: true,
		chain: []models.Instrument{
			inst("BTC-27SEP24-70000-C", models.OptionCall, "27SEP24", 70000),
			inst("BTC-27SEP24-60000-C", models.OptionCall, "27SEP24", 60000),
			inst("BTC-27SEP24-60000-P", models.OptionPut, "27SEP24", 60000),
			inst("BTC-25OCT24-65000-C", models.OptionCall, "25OCT24", 65000),
			inst("BTC-27SEP24-90000-C", models.OptionCall, "27SEP24", 90000),
		},
	}
	delta := 0.42
	enricher := &fakeEnricher{
		quotes: map[string]models.Quote{
			"BTC-27SEP24-70000-C": {Bid: f(0.02), Ask: f(0.03), IV: f(58)},
			"BTC-27SEP24-60000-C": {Bid: f(0.04), Ask: f(0.06), IV: f(62)},
			"BTC-27SEP24-60000-P": {Bid: f(0.05), Ask: f(0.07), IV: f(70)},
			"BTC-25OCT24-65000-C": {Bid: f(0.03), Ask: f(0.05), IV: f(55)},
			// 90000-C: one-sided market, no quote data at all.
		},
		greeks: map[string]*models.Greeks{
			"BTC-27SEP24-60000-C": {Delta: &delta},
		},
	}
	return New(":0", market, enricher, zerolog.Nop())
}

func doGet(t *testing.T, s *Server, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestSpotEndpoint(t *testing.T) {
	s := newTestServer()
	rec := doGet(t, s, "/api/v1/spot?asset=BTC")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp spotResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Available || resp.Price != 60000 {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestSpotEndpointRejectsUnknownAsset(t *testing.T) {
	s := newTestServer()
	if rec := doGet(t, s, "/api/v1/spot?asset=DOGE"); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestChainEndpointFiltersAndSorts(t *testing.T) {
	s := newTestServer()
	rec := doGet(t, s, "/api/v1/chain?asset=BTC&type=Call&expiry=SEP&min_iv=50")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp chainResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	// 60000-C and 70000-C pass; the put, the OCT expiry and the
	// quote-less 90000-C do not. Sorted ascending by strike.
	if len(resp.Rows) != 2 {
		t.Fatalf("got %d rows, want 2: %+v", len(resp.Rows), resp.Rows)
	}
	if resp.Rows[0].Name != "BTC-27SEP24-60000-C" || resp.Rows[1].Name != "BTC-27SEP24-70000-C" {
		t.Fatalf("wrong order: %s, %s", resp.Rows[0].Name, resp.Rows[1].Name)
	}
}

func TestChainEndpointEmptyResultIsOK(t *testing.T) {
	s := newTestServer()
	rec := doGet(t, s, "/api/v1/chain?asset=BTC&type=Call&min_iv=150")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for empty chain", rec.Code)
	}
	var resp chainResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Rows == nil || len(resp.Rows) != 0 {
		t.Fatalf("rows = %v, want []", resp.Rows)
	}
}

func TestChainEndpointValidatesMinIV(t *testing.T) {
	s := newTestServer()
	if rec := doGet(t, s, "/api/v1/chain?min_iv=300"); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGreeksEndpoint(t *testing.T) {
	s := newTestServer()
	rec := doGet(t, s, "/api/v1/chain/greeks?asset=BTC&type=Call&expiry=SEP&min_iv=50")
	var rows []greeksRow
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Greeks == nil || rows[0].Greeks.Delta == nil {
		t.Error("60000-C should carry greeks")
	}
	if rows[1].Greeks != nil {
		t.Error("70000-C has no greeks; field should be null")
	}
}

func TestSmileEndpoint(t *testing.T) {
	s := newTestServer()
	rec := doGet(t, s, "/api/v1/chain/smile?asset=BTC&type=Call&min_iv=50")
	var resp smileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Series) != 2 {
		t.Fatalf("got %d series, want 2 (SEP and OCT)", len(resp.Series))
	}
	if !resp.SpotAvailable || resp.Spot != 60000 {
		t.Errorf("spot = (%v, %v)", resp.Spot, resp.SpotAvailable)
	}
}

func TestPayoffEndpoint(t *testing.T) {
	s := newTestServer()
	rec := doGet(t, s, "/api/v1/payoff?asset=BTC&instrument=BTC-27SEP24-60000-C&contracts=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp payoffResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.PremiumMissing {
		t.Error("premium should be available")
	}
	if math.Abs(resp.Premium-0.05) > 1e-9 {
		t.Errorf("premium = %v, want 0.05", resp.Premium)
	}
	if len(resp.Points) != 101 {
		t.Errorf("got %d points, want 101", len(resp.Points))
	}
	if !resp.Risk.Unlimited {
		t.Error("short call risk should be unlimited")
	}
	if math.Abs(resp.Risk.Breakeven-60000.05) > 1e-6 {
		t.Errorf("breakeven = %v, want 60000.05", resp.Risk.Breakeven)
	}
}

func TestPayoffEndpointMissingPremiumIsWarningNotError(t *testing.T) {
	s := newTestServer()
	rec := doGet(t, s, "/api/v1/payoff?asset=BTC&instrument=BTC-27SEP24-90000-C")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp payoffResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.PremiumMissing || resp.Premium != 0 {
		t.Fatalf("premium = (%v, missing=%v), want (0, true)", resp.Premium, resp.PremiumMissing)
	}
	if len(resp.Points) != 101 {
		t.Error("degenerate curve should still be computed")
	}
}

func TestPayoffEndpointValidation(t *testing.T) {
	s := newTestServer()
	tests := []struct {
		url  string
		want int
	}{
		{"/api/v1/payoff?instrument=BTC-27SEP24-60000-C&contracts=0.05", http.StatusBadRequest},
		{"/api/v1/payoff?instrument=BTC-27SEP24-60000-C&contracts=abc", http.StatusBadRequest},
		{"/api/v1/payoff?contracts=1", http.StatusBadRequest},
		{"/api/v1/payoff?instrument=BTC-UNKNOWN-1-C", http.StatusNotFound},
	}
	for _, tt := range tests {
		if rec := doGet(t, s, tt.url); rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.url, rec.Code, tt.want)
		}
	}
}

func TestPayoffEndpointSpotUnavailable(t *testing.T) {
	market := &fakeMarket{
		spotOK: false,
		chain:  []models.Instrument{inst("BTC-27SEP24-60000-C", models.OptionCall, "27SEP24", 60000)},
	}
	s := New(":0", market, &fakeEnricher{}, zerolog.Nop())

	rec := doGet(t, s, "/api/v1/payoff?instrument=BTC-27SEP24-60000-C")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp dataUnavailableResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.DataAvailable {
		t.Fatal("data_available should be false when spot is absent")
	}
}
