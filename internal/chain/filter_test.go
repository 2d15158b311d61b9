package chain

import (
	"reflect"
	"testing"

	"deribit-dashboard/internal/models"
)

func f(v float64) *float64 { return &v }

func row(name string, typ models.OptionType, expiry string, strike float64, iv *float64) models.ChainRow {
	return models.ChainRow{
		Instrument: models.Instrument{
			Name:   name,
			Asset:  models.AssetBTC,
			Expiry: expiry,
			Strike: strike,
			Type:   typ,
		},
		Quote: models.Quote{IV: iv},
	}
}

func TestFilterPredicates(t *testing.T) {
	rows := []models.ChainRow{
		row("BTC-27SEP24-70000-C", models.OptionCall, "27SEP24", 70000, f(55)),
		row("BTC-27SEP24-60000-C", models.OptionCall, "27SEP24", 60000, f(62)),
		row("BTC-27SEP24-60000-P", models.OptionPut, "27SEP24", 60000, f(70)),
		row("BTC-25OCT24-60000-C", models.OptionCall, "25OCT24", 60000, f(48)),
		row("BTC-27SEP24-80000-C", models.OptionCall, "27SEP24", 80000, nil),
	}

	got := Filter(rows, models.ChainFilter{
		Type:         models.OptionCall,
		ExpirySubstr: "SEP",
		MinIV:        50,
	})

	wantNames := []string{"BTC-27SEP24-60000-C", "BTC-27SEP24-70000-C"}
	if len(got) != len(wantNames) {
		t.Fatalf("got %d rows, want %d", len(got), len(wantNames))
	}
	for i, name := range wantNames {
		if got[i].Name != name {
			t.Errorf("row %d = %s, want %s", i, got[i].Name, name)
		}
	}
}

func TestFilterExpirySubstringIsCaseInsensitive(t *testing.T) {
	rows := []models.ChainRow{
		row("BTC-27SEP24-60000-C", models.OptionCall, "27SEP24", 60000, f(60)),
	}
	for _, substr := range []string{"sep", "SEP", "27sep24", "Sep24"} {
		got := Filter(rows, models.ChainFilter{Type: models.OptionCall, ExpirySubstr: substr})
		if len(got) != 1 {
			t.Errorf("substring %q matched %d rows, want 1", substr, len(got))
		}
	}
}

func TestFilterAbsentIVNeverMatches(t *testing.T) {
	rows := []models.ChainRow{
		row("a", models.OptionCall, "27SEP24", 60000, nil),
		row("b", models.OptionCall, "27SEP24", 61000, nil),
	}
	got := Filter(rows, models.ChainFilter{Type: models.OptionCall, MinIV: 0})
	if len(got) != 0 {
		t.Fatalf("rows without IV passed the filter: %d", len(got))
	}
}

func TestFilterEmptyResultIsNotAnError(t *testing.T) {
	rows := []models.ChainRow{
		row("a", models.OptionCall, "27SEP24", 60000, f(40)),
	}
	got := Filter(rows, models.ChainFilter{Type: models.OptionCall, MinIV: 90})
	if got == nil {
		t.Fatal("Filter returned nil, want empty slice")
	}
	if len(got) != 0 {
		t.Fatalf("got %d rows, want 0", len(got))
	}
}

func TestFilterStableSortOnEqualStrikes(t *testing.T) {
	// Same strike, distinct expiries: fetch order must survive.
	rows := []models.ChainRow{
		row("first", models.OptionCall, "27SEP24", 60000, f(60)),
		row("second", models.OptionCall, "25OCT24", 60000, f(60)),
		row("lower", models.OptionCall, "27SEP24", 50000, f(60)),
	}
	got := Filter(rows, models.ChainFilter{Type: models.OptionCall})
	wantNames := []string{"lower", "first", "second"}
	for i, name := range wantNames {
		if got[i].Name != name {
			t.Fatalf("row %d = %s, want %s", i, got[i].Name, name)
		}
	}
}

func TestFilterIdempotent(t *testing.T) {
	rows := []models.ChainRow{
		row("a", models.OptionCall, "27SEP24", 70000, f(55)),
		row("b", models.OptionCall, "27SEP24", 60000, f(62)),
		row("c", models.OptionPut, "27SEP24", 60000, f(70)),
	}
	filter := models.ChainFilter{Type: models.OptionCall, ExpirySubstr: "SEP", MinIV: 50}

	once := Filter(rows, filter)
	twice := Filter(once, filter)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("filter is not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}
