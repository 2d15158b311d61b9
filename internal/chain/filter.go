package chain

import (
	"sort"
	"strings"

	"deribit-dashboard/internal/models"
)

// Filter applies the selection criteria and sorts the surviving rows
// ascending by strike. The sort is stable: equal strikes keep their
// original fetch order. Rows without an IV never pass the MinIV
// predicate, so an illiquid chain can legitimately filter to empty.
func Filter(rows []models.ChainRow, f models.ChainFilter) []models.ChainRow {
	substr := strings.ToUpper(f.ExpirySubstr)

	out := make([]models.ChainRow, 0, len(rows))
	for _, row := range rows {
		if row.Type != f.Type {
			continue
		}
		if substr != "" && !strings.Contains(strings.ToUpper(row.Expiry), substr) {
			continue
		}
		if row.Quote.IV == nil || *row.Quote.IV < f.MinIV {
			continue
		}
		out = append(out, row)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Strike < out[j].Strike
	})
	return out
}
